package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
)

// Row is one spreadsheet row keyed by column header (or payload key on writes).
type Row map[string]interface{}

// Operations reported to the call observer.
const (
	OpFetch  = "fetch"
	OpAppend = "append"
)

// Call outcomes reported to the call observer.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeFormat      = "format_error"
	OutcomeApplication = "application_error"
)

// CallObserver receives timing for every backend call.
type CallObserver interface {
	ObserveBackendCall(sheet, operation, outcome string, duration time.Duration)
}

// Config tunes the client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// Client talks to the spreadsheet web app. GET ?sheet=<name> returns every row,
// POST ?sheet=<name> appends one. Both answer with {status, data, message}.
type Client struct {
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	observer CallObserver
	logger   *zap.Logger
}

type envelope struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// NewClient constructs a client. A non-positive rate limit disables throttling.
func NewClient(cfg Config, httpClient *http.Client, observer CallObserver, logger *zap.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		http:     httpClient,
		limiter:  rate.NewLimiter(limit, burst),
		observer: observer,
		logger:   logger,
	}
}

// Fetch returns every row of the sheet.
func (c *Client) Fetch(ctx context.Context, sheet string) ([]Row, error) {
	data, err := c.do(ctx, http.MethodGet, sheet, nil)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return []Row{}, nil
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendFormat.Code, appErrors.ErrBackendFormat.Status,
			fmt.Sprintf("sheet %q: data is not a list of rows", sheet))
	}
	return rows, nil
}

// Append writes one row and returns the backend's data object, which may be nil.
func (c *Client) Append(ctx context.Context, sheet string, row Row) (Row, error) {
	body, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("marshal row: %w", err)
	}
	data, err := c.do(ctx, http.MethodPost, sheet, body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var result Row
	if err := json.Unmarshal(data, &result); err != nil {
		// Some deployments answer with a bare value such as true.
		return nil, nil
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, sheet string, body []byte) (json.RawMessage, error) {
	op := OpFetch
	if method == http.MethodPost {
		op = OpAppend
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.observe(sheet, op, OutcomeUnavailable, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "request cancelled before reaching backend")
	}

	endpoint, err := c.endpoint(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "invalid backend url")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "build backend request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(sheet, op, OutcomeUnavailable, time.Since(start))
		message := "failed to reach spreadsheet backend"
		if isTimeout(err) {
			message = "spreadsheet backend timed out"
		}
		c.logger.Warn("backend request failed", zap.String("sheet", sheet), zap.String("operation", op), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, message)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		c.observe(sheet, op, OutcomeUnavailable, duration)
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to read backend response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.observe(sheet, op, OutcomeUnavailable, duration)
		return nil, appErrors.Clone(appErrors.ErrBackendUnavailable, fmt.Sprintf("spreadsheet backend answered HTTP %d", resp.StatusCode))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		c.observe(sheet, op, OutcomeFormat, duration)
		return nil, appErrors.Clone(appErrors.ErrBackendFormat, "spreadsheet backend returned an empty body")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.observe(sheet, op, OutcomeFormat, duration)
		c.logger.Warn("backend returned non-JSON body", zap.String("sheet", sheet), zap.String("operation", op), zap.String("body", snippet(raw)))
		return nil, appErrors.Wrap(err, appErrors.ErrBackendFormat.Code, appErrors.ErrBackendFormat.Status, "spreadsheet backend returned a non-JSON body")
	}
	if env.Status != http.StatusOK {
		c.observe(sheet, op, OutcomeApplication, duration)
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("spreadsheet backend returned status %d", env.Status)
		}
		return nil, appErrors.Clone(appErrors.ErrBackendApplication, message)
	}

	c.observe(sheet, op, OutcomeOK, duration)
	return env.Data, nil
}

func (c *Client) endpoint(sheet string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("backend url %q must be absolute", c.baseURL)
	}
	q := u.Query()
	q.Set("sheet", sheet)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) observe(sheet, op, outcome string, d time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(sheet, op, outcome, d)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
