package records

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/employee-directory/internal/metrics"
	"github.com/jonathan/employee-directory/internal/query"
	"github.com/jonathan/employee-directory/internal/records/recordstest"
	"github.com/jonathan/employee-directory/internal/requestid"
	"github.com/jonathan/employee-directory/internal/types"
)

func newTestClient(t *testing.T, store *recordstest.Server) *Client {
	t.Helper()
	c, err := New(&Options{BaseURL: store.BaseURL()})
	require.NoError(t, err)
	return c
}

func seedEmployee(store *recordstest.Server, name string) string {
	return store.Seed(map[string]any{
		"name":         name,
		"email":        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@company.com",
		"department":   "Engineering",
		"designation":  "Engineer",
		"joining_date": "2024-01-15",
	})
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(&Options{BaseURL: "not-a-url"})
	require.Error(t, err)

	var recErr *Error
	assert.ErrorAs(t, err, &recErr)
	assert.Contains(t, err.Error(), "invalid base URL")
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8090/api/collections/employees/records", c.CollectionURL())

	c, err = New(&Options{BaseURL: "http://store.internal/api"})
	require.NoError(t, err)
	assert.Equal(t, "http://store.internal/api/collections/employees/records", c.CollectionURL())
}

func TestList_Pagination(t *testing.T) {
	store := recordstest.New(t)
	for i := 0; i < 45; i++ {
		seedEmployee(store, fmt.Sprintf("Employee %02d", i))
	}
	c := newTestClient(t, store)

	tests := []struct {
		page, perPage int
		wantItems     int
		wantPages     int
	}{
		{1, 20, 20, 3},
		{3, 20, 5, 3},
		{4, 20, 0, 3},
		{1, 45, 45, 1},
		{2, 7, 7, 7},
		{1, 1, 1, 45},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page=%d,perPage=%d", tt.page, tt.perPage), func(t *testing.T) {
			page, err := c.List(context.Background(), tt.page, tt.perPage)
			require.NoError(t, err)
			assert.Equal(t, tt.page, page.Page)
			assert.Equal(t, 45, page.TotalItems)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Len(t, page.Items, tt.wantItems)
			assert.LessOrEqual(t, len(page.Items), tt.perPage)
			assert.Equal(t, types.ExpectedTotalPages(page.TotalItems, tt.perPage), page.TotalPages)
		})
	}
}

func TestList_InvalidPagination(t *testing.T) {
	store := recordstest.New(t)
	c := newTestClient(t, store)

	_, err := c.List(context.Background(), 0, 20)
	assert.ErrorIs(t, err, ErrInvalidPagination)
	_, err = c.List(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidPagination)
	assert.Zero(t, store.RequestCount(""))
}

func TestList_EmptyCollection(t *testing.T) {
	store := recordstest.New(t)
	c := newTestClient(t, store)

	page, err := c.List(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalPages)
}

func TestGet(t *testing.T) {
	store := recordstest.New(t)
	id := seedEmployee(store, "Jane Smith")
	c := newTestClient(t, store)

	emp, err := c.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, emp.ID)
	assert.Equal(t, "Jane Smith", emp.Name)
	assert.Equal(t, "employees", emp.CollectionName)
	assert.NotEmpty(t, emp.Created)
}

func TestGet_NotFound(t *testing.T) {
	store := recordstest.New(t)
	c := newTestClient(t, store)

	_, err := c.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "failed to fetch employee missing: 404 Not Found")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "The requested resource wasn't found.", se.Message)
}

func TestEmptyID_IsCheckedBeforeRequest(t *testing.T) {
	store := recordstest.New(t)
	c := newTestClient(t, store)
	ctx := context.Background()

	_, err := c.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyID)
	_, err = c.Update(ctx, "  ", types.Patch{"is_remote": true})
	assert.ErrorIs(t, err, ErrEmptyID)
	assert.ErrorIs(t, c.Delete(ctx, ""), ErrEmptyID)

	assert.False(t, IsNotFound(err))
	assert.Zero(t, store.RequestCount(""))
}

func TestStatusError_CarriesStatusAndText(t *testing.T) {
	statuses := []int{
		http.StatusBadRequest,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusTeapot,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			store := recordstest.New(t)
			c := newTestClient(t, store)
			ctx := context.Background()

			calls := []func() error{
				func() error { _, err := c.List(ctx, 1, 20); return err },
				func() error { _, err := c.Get(ctx, "abc"); return err },
				func() error { _, err := c.Create(ctx, types.EmployeeInput{Name: "x"}); return err },
				func() error { _, err := c.Update(ctx, "abc", types.Patch{"bio": ""}); return err },
				func() error { return c.Delete(ctx, "abc") },
			}
			for _, call := range calls {
				store.FailNext(status)
				err := call()
				require.Error(t, err)
				assert.Contains(t, err.Error(), fmt.Sprintf("%d %s", status, http.StatusText(status)))

				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, status, se.Status)
				assert.Equal(t, http.StatusText(status), se.StatusText)
			}
		})
	}
}

func TestCreate_JSON(t *testing.T) {
	store := recordstest.New(t)
	c := newTestClient(t, store)

	emp, err := c.Create(context.Background(), types.EmployeeInput{
		Name:        "John Doe",
		Email:       "john.doe@company.com",
		Department:  "Engineering",
		Designation: "Senior Software Engineer",
		JoiningDate: "2024-01-15",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, emp.ID)
	assert.Equal(t, "John Doe", emp.Name)

	reqs := store.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "application/json", reqs[0].ContentType)
	assert.Len(t, reqs[0].Body, 5)
	assert.NotContains(t, reqs[0].Body, "id")
	assert.NotEmpty(t, reqs[0].RequestID)
}

func TestCreate_MultipartWithProfilePicture(t *testing.T) {
	store := recordstest.New(t)
	c := newTestClient(t, store)

	emp, err := c.Create(context.Background(), types.EmployeeInput{
		Name:                    "John Doe",
		Email:                   "john.doe@company.com",
		Department:              "Engineering",
		Designation:             "Engineer",
		JoiningDate:             "2024-01-15",
		IsRemote:                true,
		Skills:                  "Go, SQL",
		PerformanceRating:       8,
		NotificationPreferences: []string{"email_notifications", "sms_notifications"},
		ProfilePicture: &types.Upload{
			Filename:    "john.png",
			ContentType: "image/png",
			Content:     strings.NewReader("\x89PNG"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "john.png", emp.ProfilePicture)
	assert.True(t, emp.IsRemote)
	assert.Equal(t, 8, emp.PerformanceRating)
	assert.Equal(t, []string{"email_notifications", "sms_notifications"}, emp.NotificationPreferences)

	reqs := store.Requests()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasPrefix(reqs[0].ContentType, "multipart/form-data; boundary="))
	assert.Equal(t, "Go, SQL", reqs[0].Body["skills"])
	assert.NotContains(t, reqs[0].Body, "bio")
}

func TestUpdate_SendsOnlySuppliedKeys(t *testing.T) {
	store := recordstest.New(t)
	id := store.Seed(map[string]any{
		"name":         "Jane Smith",
		"email":        "jane@company.com",
		"department":   "Marketing",
		"designation":  "Manager",
		"joining_date": "2023-02-01",
		"bio":          "Hello",
		"skills":       "SEO, Writing",
	})
	before, _ := store.Record(id)
	c := newTestClient(t, store)

	emp, err := c.Update(context.Background(), id, types.Patch{"is_remote": true})
	require.NoError(t, err)
	assert.True(t, emp.IsRemote)

	after, _ := store.Record(id)
	for key, value := range before {
		if key == "updated" {
			continue
		}
		assert.Equal(t, value, after[key], key)
	}

	reqs := store.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPatch, reqs[0].Method)
	assert.Equal(t, map[string]any{"is_remote": true}, reqs[0].Body)
}

func TestDelete(t *testing.T) {
	store := recordstest.New(t)
	id := seedEmployee(store, "Jane Smith")
	c := newTestClient(t, store)
	ctx := context.Background()

	require.NoError(t, c.Delete(ctx, id))
	assert.Zero(t, store.Len())

	_, err := c.Get(ctx, id)
	assert.True(t, IsNotFound(err))

	err = c.Delete(ctx, id)
	assert.True(t, IsNotFound(err))
}

func TestDelete_FailureLeavesRecord(t *testing.T) {
	store := recordstest.New(t)
	id := seedEmployee(store, "Jane Smith")
	c := newTestClient(t, store)

	store.FailNext(http.StatusInternalServerError)
	require.Error(t, c.Delete(context.Background(), id))
	assert.Equal(t, 1, store.Len())
}

func TestQuery_SearchFilter(t *testing.T) {
	store := recordstest.New(t)
	seedEmployee(store, "John Doe")
	seedEmployee(store, "Johnny Cash")
	seedEmployee(store, "Jane Smith")
	store.Seed(map[string]any{
		"name": "Ada Lovelace", "email": "ada@company.com", "department": "Product",
		"designation": "Analyst", "joining_date": "2022-01-01", "skills": "Go, JOHNSON scripting",
	})
	c := newTestClient(t, store)

	page, err := c.Query(context.Background(), query.BuildSearchFilter("john"))
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalItems)

	page, err = c.Query(context.Background(), query.BuildSearchFilter("jane smith"))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Jane Smith", page.Items[0].Name)

	page, err = c.Query(context.Background(), query.BuildSearchFilter("engineering"))
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalItems)
}

func TestQuery_MonthToDateAndRecent(t *testing.T) {
	store := recordstest.New(t)
	store.Seed(map[string]any{"name": "Old", "created": "2024-02-27 09:00:00.000Z"})
	store.Seed(map[string]any{"name": "New", "created": "2024-03-02 09:00:00.000Z"})
	store.Seed(map[string]any{"name": "Newest", "created": "2024-03-10 09:00:00.000Z"})
	c := newTestClient(t, store)

	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	page, err := c.Query(context.Background(), query.BuildMonthToDateFilter(now))
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)

	page, err = c.Query(context.Background(), query.RecentlyAdded(2))
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Newest", page.Items[0].Name)
	assert.Equal(t, "New", page.Items[1].Name)
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"abc","name":"Jane"}`))
	}))
	defer server.Close()

	c, err := New(&Options{BaseURL: server.URL + "/api/", Headers: map[string]string{"X-Tenant": "acme"}})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "acme", got.Get("X-Tenant"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
}

func TestRequestID_ReusedFromContext(t *testing.T) {
	store := recordstest.New(t)
	c := newTestClient(t, store)
	id := seedEmployee(store, "Jane Roe")

	ctx := requestid.With(context.Background(), "6f1c2b7e-3d4a-4c55-9a0e-1b2c3d4e5f60")
	_, err := c.Get(ctx, id)
	require.NoError(t, err)
	_, err = c.List(ctx, 1, 10)
	require.NoError(t, err)

	reqs := store.Requests()
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		assert.Equal(t, "6f1c2b7e-3d4a-4c55-9a0e-1b2c3d4e5f60", r.RequestID)
	}
}

func TestList_InconsistentPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"perPage":2,"totalItems":5,"totalPages":2,"items":[]}`))
	}))
	defer server.Close()

	c, err := New(&Options{BaseURL: server.URL + "/api/"})
	require.NoError(t, err)

	_, err = c.List(context.Background(), 1, 2)
	var pageErr *PageError
	require.ErrorAs(t, err, &pageErr)
	assert.Contains(t, err.Error(), "totalPages 2")
}

func TestList_TooManyItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"page":1,"perPage":30,"totalItems":3,"totalPages":1,"items":[{"id":"a"},{"id":"b"},{"id":"c"}]}`))
	}))
	defer server.Close()

	c, err := New(&Options{BaseURL: server.URL + "/api/"})
	require.NoError(t, err)

	_, err = c.List(context.Background(), 1, 2)
	var pageErr *PageError
	assert.ErrorAs(t, err, &pageErr)
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL + "/api/"
	server.Close()

	c, err := New(&Options{BaseURL: baseURL})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "abc")
	var recErr *Error
	require.ErrorAs(t, err, &recErr)
	assert.NotNil(t, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "failed to fetch employee abc: HTTP request failed")
}

func TestDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c, err := New(&Options{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "abc")
	var recErr *Error
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "failed to decode response body", recErr.Message)
}

func TestMetricsRecorded(t *testing.T) {
	store := recordstest.New(t)
	id := seedEmployee(store, "Jane Smith")
	rec := metrics.New()

	c, err := New(&Options{BaseURL: store.BaseURL(), Metrics: rec})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), id)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "missing")
	require.Error(t, err)

	count, err := testutil.GatherAndCount(rec.Registry(), "employee_directory_store_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
