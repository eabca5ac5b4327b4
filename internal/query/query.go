// Package query compiles list, search and dashboard query strings for the employees collection.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SearchPageSize caps the number of results returned by a global search.
const SearchPageSize = 20

// RecentlyAddedCount is the number of records shown in the dashboard's recent list.
const RecentlyAddedCount = 5

// SearchFields are matched by a global search, in this order.
var SearchFields = []string{"name", "email", "department", "designation", "skills"}

// componentFixups restores the characters encodeURIComponent leaves alone
// but url.QueryEscape encodes.
var componentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s the way encodeURIComponent does:
// spaces become %20 and !'()* are kept literal.
func EncodeComponent(s string) string {
	return componentFixups.Replace(url.QueryEscape(s))
}

// BuildSearchFilter builds the query string for a case-insensitive substring search of text
// across SearchFields. Empty text yields an empty string, which callers must not send.
func BuildSearchFilter(text string) string {
	if text == "" {
		return ""
	}

	encoded := EncodeComponent(text)
	clauses := make([]string, 0, len(SearchFields))
	for _, field := range SearchFields {
		clauses = append(clauses, fmt.Sprintf(`%s~"%s"`, field, encoded))
	}

	return fmt.Sprintf("filter=(%s)&page=1&perPage=%d", strings.Join(clauses, "||"), SearchPageSize)
}

// FirstDayOfMonth returns the first calendar day of now's month in now's location as YYYY-MM-DD.
func FirstDayOfMonth(now time.Time) string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.Format(time.DateOnly)
}

// BuildMonthToDateFilter builds the query counting records created on or after
// the first day of now's month. Only the count in the page metadata is used.
func BuildMonthToDateFilter(now time.Time) string {
	return fmt.Sprintf(`filter=created>="%s"&page=1&perPage=1`, FirstDayOfMonth(now))
}

// ListQuery describes a page request against the collection.
type ListQuery struct {
	Page    int
	PerPage int
	Sort    string
	Filter  string
}

// Encode renders the query in the collection's parameter order: filter, sort, page, perPage.
// The filter is inserted verbatim; callers encode values inside it.
func (q ListQuery) Encode() string {
	parts := make([]string, 0, 4)
	if q.Filter != "" {
		parts = append(parts, "filter="+q.Filter)
	}
	if q.Sort != "" {
		parts = append(parts, "sort="+url.QueryEscape(q.Sort))
	}
	if q.Page > 0 {
		parts = append(parts, "page="+strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		parts = append(parts, "perPage="+strconv.Itoa(q.PerPage))
	}
	return strings.Join(parts, "&")
}

// Page returns the plain pagination query.
func Page(page, perPage int) string {
	return ListQuery{Page: page, PerPage: perPage}.Encode()
}

// TotalCount returns the cheapest query whose metadata carries the total item count.
func TotalCount() string {
	return Page(1, 1)
}

// RecentlyAdded returns the query for the n most recently created records.
func RecentlyAdded(n int) string {
	return ListQuery{Sort: "-created", Page: 1, PerPage: n}.Encode()
}
