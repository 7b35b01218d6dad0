package sheetapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/pkg/dateutil"
	"github.com/username/attendance-dashboard/pkg/random"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultRetries        = 3
	defaultBackoff        = time.Second
	defaultMaxConcurrency = 8

	// backoff jitter, percent
	backoffJitter = 20.0

	summarySheet = "Summary"
)

// ErrRetrievalFailure marks a request that failed after all retries
var ErrRetrievalFailure = errors.New("retrieval failure")

// StatusError is a non-2xx response from the sheet API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether repeating the request may succeed
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Options configures the client
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	Retries        int
	Backoff        time.Duration
	MaxConcurrency int
}

// Client reads attendance sheets from the spreadsheet web API
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	retries        int
	backoff        time.Duration
	maxConcurrency int
	logger         *zap.Logger
}

// NewClient creates a new sheet API client
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", opts.BaseURL)
	}

	c := &Client{
		baseURL:        base,
		httpClient:     &http.Client{Timeout: opts.Timeout},
		retries:        opts.Retries,
		backoff:        opts.Backoff,
		maxConcurrency: opts.MaxConcurrency,
		logger:         logger,
	}
	if c.httpClient.Timeout <= 0 {
		c.httpClient.Timeout = defaultTimeout
	}
	if c.retries <= 0 {
		c.retries = defaultRetries
	}
	if c.backoff <= 0 {
		c.backoff = defaultBackoff
	}
	if c.maxConcurrency <= 0 {
		c.maxConcurrency = defaultMaxConcurrency
	}
	return c, nil
}

// FetchSummary returns the roster with its per-date status hints
func (c *Client) FetchSummary(ctx context.Context) (attendance.Roster, error) {
	env, err := c.get(ctx, url.Values{"sheet": {summarySheet}})
	if err != nil {
		return nil, fmt.Errorf("%w: summary: %w", ErrRetrievalFailure, err)
	}
	if env.Error != "" {
		return nil, fmt.Errorf("%w: summary API error: %s", ErrRetrievalFailure, env.Error)
	}

	objects, err := decodeObjects(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: summary: %w", ErrRetrievalFailure, err)
	}

	roster := make(attendance.Roster, 0, len(objects))
	for _, obj := range objects {
		entry := obj.toRosterEntry()
		if entry.UID == "" {
			c.logger.Debug("Skipping summary row without UID", zap.String("name", entry.Name))
			continue
		}
		roster = append(roster, entry)
	}

	c.logger.Info("Summary fetched", zap.Int("employees", len(roster)))

	return roster, nil
}

// FetchDaily returns the check events recorded on date.
//
// A missing sheet (404), an error payload or a payload for another sheet are
// reported as an empty day. Only transport failures and other error statuses
// surface as ErrRetrievalFailure.
func (c *Client) FetchDaily(ctx context.Context, date time.Time) ([]attendance.RawRow, error) {
	dateStr := dateutil.FormatDate(date)

	env, err := c.get(ctx, url.Values{"date": {dateStr}})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			c.logger.Warn("Daily sheet not found, using empty data", zap.String("date", dateStr))
			return nil, nil
		}
		return nil, fmt.Errorf("%w: daily %s: %w", ErrRetrievalFailure, dateStr, err)
	}

	if env.Error != "" {
		c.logger.Warn("Daily API error, using empty data",
			zap.String("date", dateStr),
			zap.String("error", env.Error))
		return nil, nil
	}
	if env.SheetName != "" && env.SheetName != dateStr {
		c.logger.Warn("Daily API returned another sheet, using empty data",
			zap.String("date", dateStr),
			zap.String("sheet", env.SheetName))
		return nil, nil
	}

	objects, err := decodeObjects(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: daily %s: %w", ErrRetrievalFailure, dateStr, err)
	}

	rows := make([]attendance.RawRow, 0, len(objects))
	for _, obj := range objects {
		row := obj.toRawRow()
		if row.UID == "" {
			continue
		}
		rows = append(rows, row)
	}

	c.logger.Debug("Daily sheet fetched",
		zap.String("date", dateStr),
		zap.Int("rows", len(rows)))

	return rows, nil
}

// DayResult is the outcome of one day of a range fetch
type DayResult struct {
	Date time.Time
	Rows []attendance.RawRow
	Err  error
}

// FetchDailyRange fetches every date concurrently and joins the results.
// Results are in the order of dates; a failed day carries its error and
// never fails the others.
func (c *Client) FetchDailyRange(ctx context.Context, dates []time.Time) []DayResult {
	results := make([]DayResult, len(dates))

	var g errgroup.Group
	g.SetLimit(c.maxConcurrency)

	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			rows, err := c.FetchDaily(ctx, date)
			results[i] = DayResult{Date: date, Rows: rows, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			c.logger.Warn("Daily fetch failed, day degraded",
				zap.String("date", dateutil.FormatDate(r.Date)),
				zap.Error(r.Err))
		}
	}

	c.logger.Info("Daily range fetched",
		zap.Int("days", len(dates)),
		zap.Int("failed", failed))

	return results
}

// FetchMonthlyLog returns the pre-aggregated log rows of month
func (c *Client) FetchMonthlyLog(ctx context.Context, month time.Time) ([]attendance.LogRow, error) {
	monthStr := dateutil.FormatMonth(month)

	env, err := c.get(ctx, url.Values{"summary_month": {monthStr}})
	if err != nil {
		return nil, fmt.Errorf("%w: log %s: %w", ErrRetrievalFailure, monthStr, err)
	}
	if env.Error != "" {
		return nil, fmt.Errorf("%w: log %s API error: %s", ErrRetrievalFailure, monthStr, env.Error)
	}

	objects, err := decodeObjects(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: log %s: %w", ErrRetrievalFailure, monthStr, err)
	}

	rows := make([]attendance.LogRow, 0, len(objects))
	for _, obj := range objects {
		rows = append(rows, obj.toLogRow())
	}

	c.logger.Info("Monthly log fetched",
		zap.String("month", monthStr),
		zap.Int("rows", len(rows)))

	return rows, nil
}

// get performs a GET with the given query, retrying transient failures
func (c *Client) get(ctx context.Context, query url.Values) (*envelope, error) {
	u := *c.baseURL
	q := u.Query()
	for k, v := range query {
		q[k] = v
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		var env envelope
		err := c.doRequestOnce(ctx, u.String(), &env)
		if err == nil {
			return &env, nil
		}

		lastErr = err
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.Warn("Request failed, retrying",
			zap.String("query", u.RawQuery),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.retries),
			zap.Error(err))

		if attempt < c.retries {
			wait := random.Jitter(c.backoff*time.Duration(attempt), backoffJitter)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.retries, lastErr)
}

// doRequestOnce performs a single HTTP request
func (c *Client) doRequestOnce(ctx context.Context, rawURL string, result *envelope) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
