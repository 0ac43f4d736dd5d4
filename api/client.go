// ABOUTME: HTTP client for the record system backend
// ABOUTME: Injects Basic auth, unwraps the Ok/Err envelope, no retries
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/rosterdesk/models"
	"github.com/harperreed/rosterdesk/schema"
)

// Client talks to the backend REST service. Every call is a single attempt;
// the caller decides whether a failure means a modal error or a logout.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given base URL using the Basic
// credential token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// BasicToken derives the Basic credential from user and password.
func BasicToken(user, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
}

// SetToken replaces the credential in place after a password change.
// Requests already in flight keep the token they were issued with.
func (c *Client) SetToken(token string) {
	c.token = token
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Ok  json.RawMessage `json:"Ok"`
	Err string          `json:"Err"`
}

// call performs one request and unwraps the envelope. The body, if any, is
// sent JSON-encoded.
func (c *Client) call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-Request-Id", uuid.NewString())

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		if res.StatusCode == http.StatusOK {
			return nil, &TransportError{Err: fmt.Errorf("malformed response: %w", err)}
		}
		return nil, &RemoteError{Kind: res.Status}
	}

	if res.StatusCode != http.StatusOK || env.Err != "" {
		kind := env.Err
		if kind == "" {
			kind = res.Status
		}
		return nil, &RemoteError{Kind: kind}
	}
	return env.Ok, nil
}

// decode unwraps a call result into the given type.
func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &TransportError{Err: fmt.Errorf("malformed payload: %w", err)}
	}
	return v, nil
}

// toRecord flattens a decoded JSON object into a field-name to string-value
// record. Null fields become empty strings.
func toRecord(obj map[string]any) models.Record {
	rec := make(models.Record, len(obj))
	for k, v := range obj {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			rec[k] = s
		} else {
			rec[k] = fmt.Sprint(v)
		}
	}
	return rec
}

func (c *Client) records(ctx context.Context, path string) ([]models.Record, error) {
	raw, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	objs, err := decode[[]map[string]any](raw)
	if err != nil {
		return nil, err
	}
	recs := make([]models.Record, 0, len(objs))
	for _, obj := range objs {
		recs = append(recs, toRecord(obj))
	}
	return recs, nil
}

// Groups fetches the first-level group labels of the kind (roles, dates, or
// accounts), in backend order.
func (c *Client) Groups(ctx context.Context, kind schema.Kind) ([]string, error) {
	raw, err := c.call(ctx, http.MethodGet, schema.GroupListPath(kind), nil)
	if err != nil {
		return nil, err
	}
	return decode[[]string](raw)
}

// SearchByGroup fetches the member records of one group.
func (c *Client) SearchByGroup(ctx context.Context, kind schema.Kind, label string) ([]models.Record, error) {
	return c.records(ctx, schema.SearchByGroupPath(kind, label))
}

// SearchByText fetches records matching a free-text query.
func (c *Client) SearchByText(ctx context.Context, kind schema.Kind, query string) ([]models.Record, error) {
	return c.records(ctx, schema.SearchByTextPath(kind, query))
}

// Fetch loads one record by its natural key. The payload goes through the
// kind's typed wire shape, so a renamed backend field fails here instead of
// surfacing as a silently empty form.
func (c *Client) Fetch(ctx context.Context, kind schema.Kind, key models.Record) (models.Record, error) {
	raw, err := c.call(ctx, http.MethodGet, schema.FetchPath(kind, key), nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord(kind, raw)
}

// decodeRecord flattens a typed wire shape into a record. Optional fields
// stay absent when empty, matching how search results arrive.
func decodeRecord(kind schema.Kind, raw json.RawMessage) (models.Record, error) {
	switch kind {
	case schema.KindUser:
		u, err := decode[models.User](raw)
		if err != nil {
			return nil, err
		}
		return models.Record{
			"forename": u.Forename,
			"surname":  u.Surname,
			"account":  u.Account,
			"role":     u.Role,
		}, nil

	case schema.KindAbsence:
		a, err := decode[models.Absence](raw)
		if err != nil {
			return nil, err
		}
		rec := models.Record{"account": a.Account, "date": a.Date}
		if a.Time != "" {
			rec["time"] = a.Time
		}
		return rec, nil

	case schema.KindCriminal:
		cr, err := decode[models.Criminal](raw)
		if err != nil {
			return nil, err
		}
		rec := models.Record{"account": cr.Account, "kind": cr.Kind}
		if cr.Data != "" {
			rec["data"] = cr.Data
		}
		return rec, nil
	}
	return nil, fmt.Errorf("unknown record kind %v", kind)
}

// Create posts a new record of the kind.
func (c *Client) Create(ctx context.Context, kind schema.Kind, rec models.Record) error {
	_, err := c.call(ctx, http.MethodPost, schema.CreatePath(kind), rec)
	return err
}

// Update replaces the record identified by original's natural key with the
// full field set of rec.
func (c *Client) Update(ctx context.Context, kind schema.Kind, original, rec models.Record) error {
	_, err := c.call(ctx, http.MethodPut, schema.UpdatePath(kind, original), rec)
	return err
}

// Delete removes the record identified by its natural key.
func (c *Client) Delete(ctx context.Context, kind schema.Kind, key models.Record) error {
	_, err := c.call(ctx, http.MethodDelete, schema.DeletePath(kind, key), nil)
	return err
}

// Stats fetches the system summary.
func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	raw, err := c.call(ctx, http.MethodGet, "/stats", nil)
	if err != nil {
		return models.Stats{}, err
	}
	return decode[models.Stats](raw)
}

// FetchPermissions returns the permission grants of a login. This is the
// session-establishing call: an error here means the credential is bad.
func (c *Client) FetchPermissions(ctx context.Context, user string) (models.Permissions, error) {
	raw, err := c.call(ctx, http.MethodGet, "/login/fetch/"+url.PathEscape(user), nil)
	if err != nil {
		return models.Permissions{}, err
	}
	return decode[models.Permissions](raw)
}

// CreateLogin registers a new login credential.
func (c *Client) CreateLogin(ctx context.Context, login models.NewLogin) error {
	_, err := c.call(ctx, http.MethodPost, "/login", login)
	return err
}

// UpdateLoginPassword replaces the password of an existing login.
func (c *Client) UpdateLoginPassword(ctx context.Context, user, password string) error {
	_, err := c.call(ctx, http.MethodPut, "/login", models.NewLogin{User: user, Password: password})
	return err
}

// DeleteLogin removes a login credential.
func (c *Client) DeleteLogin(ctx context.Context, user string) error {
	_, err := c.call(ctx, http.MethodDelete, "/login/"+url.PathEscape(user), nil)
	return err
}
