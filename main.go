// ABOUTME: Entry point for the rosterdesk admin console
// ABOUTME: Routes to the console TUI or session/login management commands
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/harperreed/rosterdesk/api"
	"github.com/harperreed/rosterdesk/console"
	"github.com/harperreed/rosterdesk/models"
	"github.com/harperreed/rosterdesk/session"
)

const version = "0.3.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	server := flag.String("server", "", "Backend server URL (default: ROSTERDESK_SERVER)")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("rosterdesk version %s\n", version)
		os.Exit(0)
	}

	baseURL := *server
	if baseURL == "" {
		baseURL = session.ServerURL()
	}

	args := flag.Args()
	command := ""
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "", "console":
		runConsole(baseURL)

	case "login":
		if err := loginCommand(baseURL); err != nil {
			log.Fatalf("Login failed: %v", err)
		}

	case "logout":
		if err := session.Clear(); err != nil {
			log.Fatalf("Logout failed: %v", err)
		}
		fmt.Println("Logged out.")

	case "passwd":
		if err := passwdCommand(baseURL); err != nil {
			log.Fatalf("Password change failed: %v", err)
		}

	case "logins":
		if err := loginsCommand(baseURL, args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "stats":
		if err := statsCommand(baseURL); err != nil {
			log.Fatalf("Error: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runConsole(baseURL string) {
	sess, err := session.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}

	client := api.NewClient(baseURL, sess.Token)
	program := tea.NewProgram(console.New(client, sess), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		log.Fatalf("Console failed: %v", err)
	}

	if m, ok := final.(console.Model); ok {
		if dead, reason := m.SessionDead(); dead {
			_ = session.Clear()
			log.Fatalf("Session is no longer valid (%s), run `rosterdesk login` again", reason)
		}
	}
}

func loginCommand(baseURL string) error {
	user, err := prompt("Username: ")
	if err != nil {
		return err
	}
	password, err := promptSecret("Password: ")
	if err != nil {
		return err
	}

	token := api.BasicToken(user, password)
	client := api.NewClient(baseURL, token)
	permissions, err := client.FetchPermissions(context.Background(), user)
	if err != nil {
		return err
	}

	sess := &session.Session{User: user, Token: token, Permissions: permissions}
	if err := sess.Save(); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (user: %s, absence: %s, criminal: %s)\n",
		user, permissions.User, permissions.Absence, permissions.Criminal)
	return nil
}

func passwdCommand(baseURL string) error {
	sess, err := session.Load()
	if err != nil {
		return err
	}

	password, err := promptSecret("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptSecret("Repeat password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	client := api.NewClient(baseURL, sess.Token)
	if err := client.UpdateLoginPassword(context.Background(), sess.User, password); err != nil {
		return err
	}

	// Replace the credential in place and persist it.
	sess.Token = api.BasicToken(sess.User, password)
	if err := sess.Save(); err != nil {
		return err
	}
	fmt.Println("Password changed.")
	return nil
}

func loginsCommand(baseURL string, args []string) error {
	sess, err := session.Load()
	if err != nil {
		return err
	}
	if !sess.Permissions.User.CanWrite() {
		return fmt.Errorf("login administration requires write access to users")
	}
	client := api.NewClient(baseURL, sess.Token)

	if len(args) == 0 {
		return fmt.Errorf("logins requires a subcommand (add, remove)")
	}

	switch args[0] {
	case "add":
		return addLoginCommand(client, args[1:])
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("logins remove requires a user name")
		}
		if err := client.DeleteLogin(context.Background(), args[1]); err != nil {
			return err
		}
		fmt.Printf("Removed login %s\n", args[1])
		return nil
	default:
		return fmt.Errorf("unknown logins subcommand: %s", args[0])
	}
}

func addLoginCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("logins add", flag.ContinueOnError)
	accessUser := fs.Int("user", 0, "User access level (0=none, 1=read-only, 2=read-write)")
	accessAbsence := fs.Int("absence", 0, "Absence access level")
	accessCriminal := fs.Int("criminal", 0, "Criminal access level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("logins add requires a user name")
	}
	user := fs.Arg(0)

	password, err := promptSecret("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptSecret("Repeat password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	login := models.NewLogin{
		User:           user,
		Password:       password,
		AccessUser:     models.Permission(*accessUser),
		AccessAbsence:  models.Permission(*accessAbsence),
		AccessCriminal: models.Permission(*accessCriminal),
	}
	if err := client.CreateLogin(context.Background(), login); err != nil {
		return err
	}
	fmt.Printf("Created login %s\n", user)
	return nil
}

func statsCommand(baseURL string) error {
	sess, err := session.Load()
	if err != nil {
		return err
	}
	client := api.NewClient(baseURL, sess.Token)
	stats, err := client.Stats(context.Background())
	if err != nil {
		return err
	}
	if stats.Name != "" {
		fmt.Printf("%s %s\n", stats.Name, stats.Version)
	}
	fmt.Printf("Users:            %d\n", stats.Users)
	fmt.Printf("Criminal records: %d\n", stats.Criminals)
	return nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptSecret(label string) (string, error) {
	fmt.Print(label)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printUsage() {
	fmt.Printf(`rosterdesk v%s - Terminal console for the record system

USAGE:
  rosterdesk [global flags] [command]

GLOBAL FLAGS:
  --version              Show version and exit
  --server <url>         Backend server URL (default: ROSTERDESK_SERVER)

COMMANDS:
  console                Start the interactive console (default)
  login                  Authenticate and store a session
  logout                 Clear the stored session
  passwd                 Change the own password
  logins add <user>      Create a login (--user/--absence/--criminal levels)
  logins remove <user>   Delete a login
  stats                  Print system statistics
`, version)
}
