// Package api is the HTTP transport for the exam-prep merge server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"tableflip.dev/exammerge/pkg/logging"
)

const (
	pathCatalog      = "/api/end_data"
	pathPreviewUnits = "/api/preview_units"
	pathUnits        = "/api/units"
	pathUnitNames    = "/api/unit_names"
	pathGradeSchools = "/api/grade_schools"
	pathMergeAll     = "/api/merge_all"
	pathMergeFinal   = "/api/merge_final"
	pathMergePrefix  = "/merge/"
	pathReload       = "/reload"

	// maxErrorBody caps how much of a failed response is kept for the error text.
	maxErrorBody = 512
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: http %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: http %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// HTTPStatusCode exposes the response status for errors.As callers.
func (e *StatusError) HTTPStatusCode() int { return e.Code }

// Client talks to the merge server. The zero value is not usable; use New.
type Client struct {
	base *url.URL
	http *http.Client
	log  *logging.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout sets the per-request timeout on the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New builds a client rooted at baseURL (e.g. "http://localhost:5000").
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("api: server url required")
	}
	u, err := url.Parse(strings.TrimRight(trimmed, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "api: parse server url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: server url %q must be absolute", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: 2 * time.Minute},
		log:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured server root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// CatalogRow is one row of the end_data catalog.
type CatalogRow struct {
	Grade     int     `json:"grade"`
	School    string  `json:"school"`
	Timestamp *string `json:"timestamp"`
}

// Catalog fetches the full exam-scope catalog.
func (c *Client) Catalog(ctx context.Context) ([]CatalogRow, error) {
	var rows []CatalogRow
	if err := c.getJSON(ctx, pathCatalog, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UnitRow is a unit as returned by preview_units.
type UnitRow struct {
	Code    string  `json:"code"`
	Title   *string `json:"title"`
	HasFile bool    `json:"has_file"`
}

// PreviewResponse is the body of preview_units.
type PreviewResponse struct {
	Grade  int       `json:"grade"`
	School string    `json:"school"`
	Units  []UnitRow `json:"units"`
}

type scopeRequest struct {
	Grade  int    `json:"grade"`
	School string `json:"school"`
}

// PreviewUnits lists the units of a grade/school with their material flag.
func (c *Client) PreviewUnits(ctx context.Context, grade int, school string) (PreviewResponse, error) {
	var out PreviewResponse
	err := c.postJSON(ctx, pathPreviewUnits, scopeRequest{Grade: grade, School: school}, &out)
	return out, err
}

// Units lists bare unit codes for a grade/school.
func (c *Client) Units(ctx context.Context, grade int, school string) ([]string, error) {
	var out []string
	if err := c.postJSON(ctx, pathUnits, scopeRequest{Grade: grade, School: school}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type unitNamesRequest struct {
	Grade int      `json:"grade"`
	Codes []string `json:"codes"`
}

// UnitNames maps unit codes to titles.
func (c *Client) UnitNames(ctx context.Context, grade int, codes []string) (map[string]string, error) {
	out := map[string]string{}
	if codes == nil {
		codes = []string{}
	}
	if err := c.postJSON(ctx, pathUnitNames, unitNamesRequest{Grade: grade, Codes: codes}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type gradeRequest struct {
	Grade int `json:"grade"`
}

// GradeSchools lists the schools that have end data for grade.
func (c *Client) GradeSchools(ctx context.Context, grade int) ([]string, error) {
	var out []string
	if err := c.postJSON(ctx, pathGradeSchools, gradeRequest{Grade: grade}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type typedRequest struct {
	Grade  int    `json:"grade"`
	School string `json:"school"`
	Type   string `json:"type"`
}

// Merge requests the scoped merge for one material category.
func (c *Client) Merge(ctx context.Context, category string, grade int, school string) ([]byte, error) {
	p := pathMergePrefix + url.PathEscape(category)
	return c.postBinary(ctx, p, scopeRequest{Grade: grade, School: school})
}

// MergeAll requests the whole-school merge for a category.
func (c *Client) MergeAll(ctx context.Context, category string, grade int, school string) ([]byte, error) {
	return c.postBinary(ctx, pathMergeAll, typedRequest{Grade: grade, School: school, Type: category})
}

// MergeFinal requests the fixed final mock exam bundle.
func (c *Client) MergeFinal(ctx context.Context, grade int, school string) ([]byte, error) {
	return c.postBinary(ctx, pathMergeFinal, scopeRequest{Grade: grade, School: school})
}

// Reload asks the server to re-ingest its catalog.
func (c *Client) Reload(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, pathReload, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, p string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, p, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s", p)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, p string, in, out any) error {
	resp, err := c.do(ctx, http.MethodPost, p, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s", p)
	}
	return nil
}

func (c *Client) postBinary(ctx context.Context, p string, in any) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPost, p, in)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", p)
	}
	return body, nil
}

// do sends the request and returns the response only when the status is 2xx.
func (c *Client) do(ctx context.Context, method, p string, in any) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s", p)
		}
		body = bytes.NewReader(data)
	}
	target := c.base.String() + p
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", method, p)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", method, "path", p, "error", err)
		return nil, errors.Wrapf(err, "%s %s", method, p)
	}
	c.log.Debug("request done", "method", method, "path", p, "status", resp.StatusCode, "elapsed", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method: method,
			Path:   p,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	return resp, nil
}
