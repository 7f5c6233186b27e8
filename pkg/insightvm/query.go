package insightvm

import (
	"net/url"
	"strconv"
	"strings"
)

// maxPageSize is the console API's ceiling on page size. Oversized
// requests are a caller convenience mistake, not a failure, so the clamp
// is silent.
const maxPageSize = 500

// QueryParams represents query parameters for collection requests.
type QueryParams struct {
	// Page is the zero-based page index.
	Page int
	// Size is the number of records per page, clamped to maxPageSize.
	Size int
	// Sort holds criteria in "property[,ASC|DESC]" form, sent repeated.
	Sort []string
	// Filters holds endpoint-specific parameters such as active=true.
	Filters map[string][]string

	pageSet bool
}

// NewQueryParams creates a new empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
	}
}

// WithPage sets the zero-based page index.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page
	q.pageSet = true

	return q
}

// WithSize sets the page size.
func (q *QueryParams) WithSize(size int) *QueryParams {
	q.Size = size

	return q
}

// WithSort appends a sort criterion.
func (q *QueryParams) WithSort(sort ...string) *QueryParams {
	q.Sort = append(q.Sort, sort...)

	return q
}

// WithFilter appends values for a filter parameter.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}

// ToValues converts QueryParams to url.Values. Size values above the
// console maximum are clamped here, before the request is issued.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	if q.Page > 0 || q.pageSet {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if q.Size > 0 {
		size := q.Size
		if size > maxPageSize {
			size = maxPageSize
		}

		values.Set("size", strconv.Itoa(size))
	}

	for _, sort := range q.Sort {
		values.Add("sort", sort)
	}

	for key, vals := range q.Filters {
		if len(vals) > 0 {
			values.Set(key, strings.Join(vals, ","))
		}
	}

	return values
}

// Clone returns a copy that can be mutated without affecting the
// original. The pagination sweep uses this so callers' params survive.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := &QueryParams{
		Page:    q.Page,
		Size:    q.Size,
		Sort:    append([]string(nil), q.Sort...),
		Filters: make(map[string][]string, len(q.Filters)),
		pageSet: q.pageSet,
	}

	for key, vals := range q.Filters {
		clone.Filters[key] = append([]string(nil), vals...)
	}

	return clone
}
