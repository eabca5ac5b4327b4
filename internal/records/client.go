// Package records provides typed HTTP operations against the record store's
// employees collection.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/employee-directory/internal/logging"
	"github.com/jonathan/employee-directory/internal/metrics"
	"github.com/jonathan/employee-directory/internal/requestid"
	"github.com/jonathan/employee-directory/internal/types"
)

// DefaultBaseURL is the record store's API root when none is configured.
const DefaultBaseURL = "http://127.0.0.1:8090/api/"

// DefaultPerPage is the list page size used when callers do not choose one.
const DefaultPerPage = 20

const collectionPath = "collections/employees/records"

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "http://127.0.0.1:8090/api/".
	BaseURL string
	// Timeout bounds each request. Zero leaves the transport's defaults in place.
	Timeout time.Duration
	// Headers are added to every request.
	Headers map[string]string
	// HTTPClient overrides the client used to send requests.
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    *metrics.Recorder
}

// DefaultOptions returns options pointing at a local record store.
func DefaultOptions() *Options {
	return &Options{
		BaseURL: DefaultBaseURL,
	}
}

// Client issues requests against the employees collection. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	collection *url.URL
	httpClient *http.Client
	headers    map[string]string
	logger     *zap.Logger
	metrics    *metrics.Recorder
}

// New creates a Client. The base URL must be absolute.
func New(opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &Error{
			Op:      "configure client",
			URL:     baseURL,
			Message: "invalid base URL",
			Cause:   err,
		}
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		collection: base.JoinPath(collectionPath),
		httpClient: httpClient,
		headers:    opts.Headers,
		logger:     logging.OrNop(opts.Logger).Named("records.client"),
		metrics:    opts.Metrics,
	}, nil
}

// CollectionURL returns the absolute URL of the employees collection.
func (c *Client) CollectionURL() string {
	return c.collection.String()
}

// List returns one page of employees.
func (c *Client) List(ctx context.Context, page, perPage int) (*types.EmployeePage, error) {
	if page < 1 || perPage < 1 {
		return nil, ErrInvalidPagination
	}

	rawQuery := url.Values{
		"page":    {strconv.Itoa(page)},
		"perPage": {strconv.Itoa(perPage)},
	}.Encode()

	var result types.EmployeePage
	if err := c.do(ctx, request{op: "fetch employees", method: http.MethodGet, rawQuery: rawQuery}, &result); err != nil {
		return nil, err
	}
	if err := checkPage("fetch employees", &result, perPage); err != nil {
		return nil, err
	}
	return &result, nil
}

// Query lists employees with a precompiled query string such as the one built
// by query.BuildSearchFilter. The string is sent verbatim.
func (c *Client) Query(ctx context.Context, rawQuery string) (*types.EmployeePage, error) {
	var result types.EmployeePage
	if err := c.do(ctx, request{op: "query employees", method: http.MethodGet, rawQuery: rawQuery}, &result); err != nil {
		return nil, err
	}
	if err := checkPage("query employees", &result, 0); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns a single employee. A missing record yields a StatusError for
// which IsNotFound reports true; an empty id yields ErrEmptyID.
func (c *Client) Get(ctx context.Context, id string) (*types.Employee, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyID
	}

	var emp types.Employee
	if err := c.do(ctx, request{op: "fetch employee " + id, method: http.MethodGet, id: id}, &emp); err != nil {
		return nil, err
	}
	return &emp, nil
}

// Create stores a new employee and returns it with the id the store assigned.
// The body is JSON unless a profile picture is attached, in which case it is multipart.
func (c *Client) Create(ctx context.Context, in types.EmployeeInput) (*types.Employee, error) {
	req := request{op: "post employee", method: http.MethodPost}

	if in.ProfilePicture != nil {
		body, contentType, err := multipartBody(in)
		if err != nil {
			return nil, &Error{Op: req.op, URL: c.CollectionURL(), Message: "failed to encode multipart body", Cause: err}
		}
		req.body = body
		req.contentType = contentType
	} else {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, &Error{Op: req.op, URL: c.CollectionURL(), Message: "failed to encode body", Cause: err}
		}
		req.body = bytes.NewReader(payload)
	}

	var emp types.Employee
	if err := c.do(ctx, req, &emp); err != nil {
		return nil, err
	}
	return &emp, nil
}

// Update applies a partial patch; only the keys present in patch are sent.
func (c *Client) Update(ctx context.Context, id string, patch types.Patch) (*types.Employee, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyID
	}

	op := "update employee " + id
	if patch == nil {
		patch = types.Patch{}
	}
	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, &Error{Op: op, URL: c.recordURL(id), Message: "failed to encode body", Cause: err}
	}

	var emp types.Employee
	if err := c.do(ctx, request{op: op, method: http.MethodPatch, id: id, body: bytes.NewReader(payload)}, &emp); err != nil {
		return nil, err
	}
	return &emp, nil
}

// Delete removes an employee. No body is expected back.
func (c *Client) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyID
	}
	return c.do(ctx, request{op: "delete employee " + id, method: http.MethodDelete, id: id}, nil)
}

type request struct {
	op          string
	method      string
	id          string
	rawQuery    string
	body        io.Reader
	contentType string
}

func (c *Client) recordURL(id string) string {
	return c.collection.JoinPath(id).String()
}

// do is the shared request builder. It sets the JSON headers, sends the request,
// classifies a non-success status and decodes a success body into out.
func (c *Client) do(ctx context.Context, r request, out any) error {
	target := *c.collection
	if r.id != "" {
		target = *c.collection.JoinPath(r.id)
	}
	target.RawQuery = r.rawQuery
	urlStr := target.String()

	req, err := http.NewRequestWithContext(ctx, r.method, urlStr, r.body)
	if err != nil {
		return &Error{Op: r.op, URL: urlStr, Message: "failed to create request", Cause: err}
	}

	contentType := r.contentType
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	requestID := requestid.From(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(requestid.Header, requestID)
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	log := c.logger.With(
		zap.String("op", r.op),
		zap.String("method", r.method),
		zap.String("url", urlStr),
		zap.String("request_id", requestID),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveStoreRequest(metricOp(r), 0, time.Since(start))
		log.Debug("request failed", zap.Error(err))
		return &Error{Op: r.op, URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	elapsed := time.Since(start)
	c.metrics.ObserveStoreRequest(metricOp(r), resp.StatusCode, elapsed)
	log.Debug("request completed", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", elapsed))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Op:         r.op,
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			URL:        urlStr,
			Message:    storeMessage(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: r.op, URL: urlStr, Message: "failed to decode response body", Cause: err}
	}
	return nil
}

// metricOp collapses per-id operation names into a bounded label set.
func metricOp(r request) string {
	switch r.method {
	case http.MethodGet:
		if r.id != "" {
			return "get"
		}
		if r.op == "query employees" {
			return "query"
		}
		return "list"
	case http.MethodPost:
		return "create"
	case http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(r.method)
	}
}

// storeMessage reads the "message" field of an error body, if any.
func storeMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

// checkPage verifies the list invariants: page >= 1, items <= perPage and
// totalPages == ceil(totalItems/perPage). requested is the perPage asked for,
// or 0 when the query string chose it.
func checkPage(op string, p *types.EmployeePage, requested int) error {
	if p.Page < 1 {
		return &PageError{Op: op, Message: fmt.Sprintf("page %d is below 1", p.Page)}
	}
	if p.PerPage < 1 {
		return &PageError{Op: op, Message: fmt.Sprintf("perPage %d is below 1", p.PerPage)}
	}
	if requested > 0 && len(p.Items) > requested {
		return &PageError{Op: op, Message: fmt.Sprintf("%d items exceed the requested perPage %d", len(p.Items), requested)}
	}
	if len(p.Items) > p.PerPage {
		return &PageError{Op: op, Message: fmt.Sprintf("%d items exceed perPage %d", len(p.Items), p.PerPage)}
	}
	if want := types.ExpectedTotalPages(p.TotalItems, p.PerPage); p.TotalPages != want {
		return &PageError{Op: op, Message: fmt.Sprintf("totalPages %d does not match %d items at %d per page", p.TotalPages, p.TotalItems, p.PerPage)}
	}
	if p.Items == nil {
		p.Items = []types.Employee{}
	}
	return nil
}
