// Package eventapi is the HTTP client for the event store backend. It attaches the
// session credential to every call, maps non-2xx responses onto the browser's error
// taxonomy and clears the credential when the backend answers 401.
package eventapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"

	domainauth "github.com/target/mmk-event-browser/internal/domain/auth"
	"github.com/target/mmk-event-browser/internal/domain/model"
	apperrors "github.com/target/mmk-event-browser/internal/errors"
	"github.com/target/mmk-event-browser/internal/ports"
	"github.com/target/mmk-event-browser/internal/query"
)

const (
	pathEvents    = "/api/events"
	pathDashboard = "/api/dashboard"

	// maxErrorBody bounds how much of a failed response is read for the message.
	maxErrorBody = 4096

	defaultTimeout = 15 * time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials ports.CredentialStore
	// OnAuthExpired runs after a 401 from a credentialed request. When nil the client
	// deletes the credential from Credentials itself.
	OnAuthExpired func(ctx context.Context)
	Logger        *slog.Logger
	HTTPClient    *http.Client
	Limits        query.Limits
	// EmbedCredential places auth=<token> in export links. The backend's export
	// endpoints require it for plain browser downloads.
	EmbedCredential bool
}

// Client talks to the event store over HTTP.
type Client struct {
	base          *url.URL
	http          *http.Client
	creds         ports.CredentialStore
	onAuthExpired func(ctx context.Context)
	logger        *slog.Logger
	limits        query.Limits
	embed         bool
}

var _ ports.EventSource = (*Client)(nil)

// New builds a Client. BaseURL must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("event store base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse event store base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("event store base url must be http or https, got %q", base.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jarErr)
		}
		hc = &http.Client{Timeout: timeout, Jar: jar}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:          base,
		http:          hc,
		creds:         opts.Credentials,
		onAuthExpired: opts.OnAuthExpired,
		logger:        logger.With("component", "eventapi"),
		limits:        opts.Limits,
		embed:         opts.EmbedCredential,
	}, nil
}

// BaseURL returns the configured event store URL.
func (c *Client) BaseURL() string { return c.base.String() }

// ListEvents fetches one page of events for the given parameters.
func (c *Client) ListEvents(ctx context.Context, params query.Params) (model.EventPage, error) {
	var page model.EventPage
	if err := c.getJSON(ctx, pathEvents, params, &page); err != nil {
		return model.EventPage{}, err
	}
	if page.Data == nil {
		page.Data = []model.EventRecord{}
	}
	return page, nil
}

// GetEvent fetches the full record for id.
func (c *Client) GetEvent(ctx context.Context, id string) (model.EventDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.EventDetail{}, apperrors.ErrMissingID
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.getJSON(ctx, pathEvents+"/"+url.PathEscape(id), nil, &envelope); err != nil {
		return model.EventDetail{}, err
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return model.EventDetail{}, apperrors.NotFound(fmt.Sprintf("event %s not found", id))
	}

	detail := model.EventDetail{Raw: envelope.Data}
	if err := json.Unmarshal(envelope.Data, &detail.Record); err != nil {
		return model.EventDetail{}, apperrors.MalformedResponse(err, "decode event detail")
	}
	return detail, nil
}

// Dashboard fetches the aggregate summary.
func (c *Client) Dashboard(ctx context.Context) (model.DashboardSummary, error) {
	var summary model.DashboardSummary
	if err := c.getJSON(ctx, pathDashboard, nil, &summary); err != nil {
		return model.DashboardSummary{}, err
	}
	return summary, nil
}

// Probe checks cred against the backend without touching the credential store.
// A 401 yields ErrInvalidCredentials.
func (c *Client) Probe(ctx context.Context, cred domainauth.Credential) error {
	if cred.IsZero() {
		return apperrors.ErrNoCredential
	}
	resp, err := c.send(ctx, pathDashboard, nil, &cred)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return failure(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, params query.Params, out any) error {
	cred, err := c.credential(ctx)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, path, params, cred)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body)

	if err := c.check(ctx, resp, cred != nil); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.MalformedResponse(err, "decode "+path+" response")
	}
	return nil
}

// send issues a GET; transport failures come back as RequestFailed.
func (c *Client) send(ctx context.Context, path string, params query.Params, cred *domainauth.Credential) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, params), nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	if cred != nil {
		setAuthHeader(req, *cred)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeRequestFailed, "request "+path+" failed")
	}
	c.logger.DebugContext(ctx, "event store request",
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// check turns a non-2xx response into an error, expiring the session on 401.
func (c *Client) check(ctx context.Context, resp *http.Response, credentialed bool) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	err := failure(resp)
	if apperrors.IsAuthExpired(err) && credentialed {
		c.expire(ctx)
	}
	return err
}

func (c *Client) expire(ctx context.Context) {
	c.logger.WarnContext(ctx, "event store rejected credential; clearing session")
	if c.onAuthExpired != nil {
		c.onAuthExpired(ctx)
		return
	}
	if c.creds == nil {
		return
	}
	if err := c.creds.Delete(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear credential", "error", err)
	}
}

// credential reads the session credential; nil means "send unauthenticated".
func (c *Client) credential(ctx context.Context) (*domainauth.Credential, error) {
	if c.creds == nil {
		return nil, nil
	}
	cred, err := c.creds.Get(ctx)
	if errors.Is(err, ports.ErrCredentialNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if cred.IsZero() {
		return nil, nil
	}
	return &cred, nil
}

// endpoint joins an already-escaped path onto the base URL.
func (c *Client) endpoint(escapedPath string, params query.Params) string {
	u := *c.base
	raw := strings.TrimRight(u.EscapedPath(), "/") + escapedPath
	if unescaped, err := url.PathUnescape(raw); err == nil {
		u.Path = unescaped
		u.RawPath = raw
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

func setAuthHeader(req *http.Request, cred domainauth.Credential) {
	scheme := cred.Scheme
	if scheme == "" {
		scheme = domainauth.SchemeBasic
	}
	tok := &oauth2.Token{AccessToken: cred.Token, TokenType: string(scheme)}
	tok.SetAuthHeader(req)
}

// failure reads a bounded slice of the body; JSON {"message": ...} bodies are unwrapped.
func failure(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		switch {
		case strings.TrimSpace(envelope.Message) != "":
			body = []byte(envelope.Message)
		case strings.TrimSpace(envelope.Error) != "":
			body = []byte(envelope.Error)
		}
	}
	return apperrors.FromHTTPStatus(resp.StatusCode, body)
}

func closeBody(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBody))
	_ = body.Close()
}
