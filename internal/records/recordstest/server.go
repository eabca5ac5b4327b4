// Package recordstest provides an in-memory record store speaking the employees
// collection's HTTP protocol, for use in tests.
package recordstest

import (
	"encoding/json"
	"fmt"
	"math"
	"mime"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// CollectionPath is the path the fake serves, relative to its API root.
const CollectionPath = "/api/collections/employees/records"

const (
	collectionID   = "pbc_employees"
	collectionName = "employees"
	timeLayout     = "2006-01-02 15:04:05.000Z"
)

var requiredFields = []string{"name", "email", "department", "designation", "joining_date"}

// Request is a request the fake received.
type Request struct {
	Method      string
	Path        string
	RawQuery    string
	ContentType string
	RequestID   string
	Body        map[string]any
}

// Server is a fake record store. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	// Now supplies creation timestamps. Defaults to time.Now in UTC.
	Now func() time.Time

	mu       sync.Mutex
	records  map[string]map[string]any
	order    []string
	requests []Request
	failures []int
	seq      int
}

// New starts a fake store. It is closed automatically when the test ends.
func New(tb testing.TB) *Server {
	s := &Server{
		Now:     func() time.Time { return time.Now().UTC() },
		records: make(map[string]map[string]any),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	tb.Cleanup(s.Close)
	return s
}

// BaseURL returns the API root to configure a client with.
func (s *Server) BaseURL() string {
	return s.URL + "/api/"
}

// Seed inserts a record directly, bypassing the request log. It returns the id.
func (s *Server) Seed(fields map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(cloneMap(fields))
}

// Record returns a copy of a stored record.
func (s *Server) Record(id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return cloneMap(rec), true
}

// Len returns the number of stored records.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestCount returns how many requests with the given method were received.
// An empty method counts all requests.
func (s *Server) RequestCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if method == "" || r.Method == method {
			n++
		}
	}
	return n
}

// FailNext makes the next requests answer with the given statuses, in order.
func (s *Server) FailNext(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, statuses...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Request{
		Method:      r.Method,
		Path:        r.URL.Path,
		RawQuery:    r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
		RequestID:   r.Header.Get("X-Request-ID"),
	}

	if len(s.failures) > 0 {
		status := s.failures[0]
		s.failures = s.failures[1:]
		s.requests = append(s.requests, entry)
		writeError(w, status, "Injected failure.")
		return
	}

	var body map[string]any
	if r.Method == http.MethodPost || r.Method == http.MethodPatch {
		var err error
		body, err = decodeBody(r)
		if err != nil {
			s.requests = append(s.requests, entry)
			writeError(w, http.StatusBadRequest, "Failed to load the submitted data due to invalid formatting.")
			return
		}
		entry.Body = cloneMap(body)
	}
	s.requests = append(s.requests, entry)

	rest, ok := strings.CutPrefix(r.URL.Path, CollectionPath)
	if !ok {
		writeError(w, http.StatusNotFound, "Missing collection context.")
		return
	}
	id := strings.Trim(rest, "/")

	switch {
	case id == "" && r.Method == http.MethodGet:
		s.list(w, r)
	case id == "" && r.Method == http.MethodPost:
		s.create(w, body)
	case id != "" && r.Method == http.MethodGet:
		s.get(w, id)
	case id != "" && r.Method == http.MethodPatch:
		s.update(w, id, body)
	case id != "" && r.Method == http.MethodDelete:
		s.remove(w, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	perPage := intParam(q.Get("perPage"), 30)

	match, err := parseFilter(q.Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Something went wrong while processing your request. Invalid filter parameters.")
		return
	}

	items := make([]map[string]any, 0, len(s.order))
	for _, id := range s.order {
		if rec := s.records[id]; match(rec) {
			items = append(items, rec)
		}
	}

	if q.Get("sort") == "-created" {
		sort.SliceStable(items, func(i, j int) bool {
			return str(items[i]["created"]) > str(items[j]["created"])
		})
	}

	total := len(items)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	out := make([]map[string]any, 0, end-start)
	for _, rec := range items[start:end] {
		out = append(out, cloneMap(rec))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":       page,
		"perPage":    perPage,
		"totalItems": total,
		"totalPages": int(math.Ceil(float64(total) / float64(perPage))),
		"items":      out,
	})
}

func (s *Server) get(w http.ResponseWriter, id string) {
	rec, ok := s.records[id]
	if !ok {
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) create(w http.ResponseWriter, body map[string]any) {
	if _, ok := body["id"]; ok {
		writeError(w, http.StatusBadRequest, "Failed to create record.")
		return
	}
	for _, field := range requiredFields {
		if str(body[field]) == "" {
			writeError(w, http.StatusBadRequest, "Failed to create record.")
			return
		}
	}
	id := s.insert(body)
	writeJSON(w, http.StatusOK, s.records[id])
}

func (s *Server) update(w http.ResponseWriter, id string, body map[string]any) {
	rec, ok := s.records[id]
	if !ok {
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}
	for key, value := range body {
		switch key {
		case "id", "created", "updated", "collectionId", "collectionName":
			continue
		}
		rec[key] = value
	}
	rec["updated"] = s.Now().Format(timeLayout)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) remove(w http.ResponseWriter, id string) {
	if _, ok := s.records[id]; !ok {
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// insert stores rec under a new id. Callers hold s.mu.
func (s *Server) insert(rec map[string]any) string {
	s.seq++
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:15]
	now := s.Now().Add(time.Duration(s.seq) * time.Millisecond).Format(timeLayout)
	if c := str(rec["created"]); c != "" {
		now = c
	}
	rec["id"] = id
	rec["collectionId"] = collectionID
	rec["collectionName"] = collectionName
	rec["created"] = now
	rec["updated"] = now
	s.records[id] = rec
	s.order = append(s.order, id)
	return id
}

func decodeBody(r *http.Request) (map[string]any, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return decodeMultipart(r)
	}
	body := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}

func decodeMultipart(r *http.Request) (map[string]any, error) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return nil, err
	}
	body := map[string]any{}
	for key, values := range r.MultipartForm.Value {
		switch key {
		case "notification_preferences":
			body[key] = toAnySlice(values)
		case "is_remote":
			b, err := strconv.ParseBool(values[0])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			body[key] = b
		case "performance_rating", "years_of_experience":
			n, err := strconv.ParseFloat(values[0], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			body[key] = n
		default:
			body[key] = values[0]
		}
	}
	for key, files := range r.MultipartForm.File {
		if len(files) > 0 {
			body[key] = files[0].Filename
		}
	}
	return body, nil
}

// parseFilter understands the subset of the filter grammar the application
// sends: OR-joined `field~"value"` clauses, optionally parenthesized, and a
// single `field>="value"` comparison.
func parseFilter(filter string) (func(map[string]any) bool, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return func(map[string]any) bool { return true }, nil
	}
	if strings.HasPrefix(filter, "(") && strings.HasSuffix(filter, ")") {
		filter = filter[1 : len(filter)-1]
	}

	type clause struct {
		field, op, value string
	}
	var clauses []clause
	for _, part := range strings.Split(filter, "||") {
		part = strings.TrimSpace(part)
		var c clause
		switch {
		case strings.Contains(part, ">="):
			c.op = ">="
		case strings.Contains(part, "~"):
			c.op = "~"
		default:
			return nil, fmt.Errorf("unsupported clause %q", part)
		}
		field, value, _ := strings.Cut(part, c.op)
		value = strings.TrimSpace(value)
		if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
			return nil, fmt.Errorf("unquoted value in %q", part)
		}
		c.field = strings.TrimSpace(field)
		c.value = value[1 : len(value)-1]
		clauses = append(clauses, c)
	}

	return func(rec map[string]any) bool {
		for _, c := range clauses {
			got := str(rec[c.field])
			switch c.op {
			case "~":
				if strings.Contains(strings.ToLower(got), strings.ToLower(c.value)) {
					return true
				}
			case ">=":
				if got >= c.value {
					return true
				}
			}
		}
		return false
	}, nil
}

func intParam(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func str(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if list, ok := v.([]any); ok {
			v = append([]any(nil), list...)
		}
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"code":    status,
		"message": message,
		"data":    map[string]any{},
	})
}
