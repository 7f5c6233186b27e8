package insightvm

import (
	"context"
	"fmt"
)

// PageLister fetches one page of a collection at the given path. The
// concrete client implements this for every collection endpoint; tests
// implement it with canned pages.
type PageLister[T any] interface {
	ListWithPath(ctx context.Context, path string, params *QueryParams) (*PageOf[T], error)
}

// FetchAll retrieves an entire collection by sweeping pages in order,
// starting at page 0. The sweep stops at the first empty page or when the
// page index reaches the server-reported total, whichever signal arrives
// first: page metadata is authoritative once present, but the empty-page
// check guards against servers that report stale or absent totals.
//
// There is no snapshot consistency: if the remote collection mutates
// between page fetches the result may be incomplete or contain
// duplicates. Callers needing consistency must filter server-side on a
// monotonic field instead.
func FetchAll[T any](ctx context.Context, lister PageLister[T], path string, params *QueryParams) ([]T, error) {
	sweep := params.Clone()
	if sweep.Size == 0 {
		sweep.Size = maxPageSize
	}

	var all []T

	for page := 0; ; page++ {
		sweep.WithPage(page)

		result, err := lister.ListWithPath(ctx, path, sweep)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d of %s: %w", page, path, err)
		}

		if len(result.Resources) == 0 {
			break
		}

		all = append(all, result.Resources...)

		if result.Page.TotalPages > 0 && int64(page) >= result.Page.TotalPages-1 {
			break
		}
	}

	return all, nil
}

// PageIterator iterates over a paginated collection one resource at a
// time, fetching pages lazily.
type PageIterator[T any] struct {
	ctx       context.Context
	lister    PageLister[T]
	path      string
	params    *QueryParams
	buffer    []T
	index     int
	nextPage  int
	exhausted bool
	err       error
}

// NewPageIterator creates an iterator over the collection at path.
func NewPageIterator[T any](ctx context.Context, lister PageLister[T], path string, params *QueryParams) *PageIterator[T] {
	return &PageIterator[T]{
		ctx:    ctx,
		lister: lister,
		path:   path,
		params: params.Clone(),
	}
}

// HasNext reports whether another resource is available. It may fetch the
// next page to find out; a fetch failure ends iteration and is reported
// by Next, All, and Err, never silently dropped.
func (it *PageIterator[T]) HasNext() bool {
	if it.index < len(it.buffer) {
		return true
	}

	if it.exhausted || it.err != nil {
		return false
	}

	if err := it.fetchNextPage(); err != nil {
		return false
	}

	return it.index < len(it.buffer)
}

// Next returns the next resource. It returns ErrNoMoreItems once the
// collection is exhausted, or the fetch error that ended iteration early.
func (it *PageIterator[T]) Next() (T, error) {
	var zero T

	if it.index >= len(it.buffer) {
		if it.err != nil {
			return zero, it.err
		}

		if it.exhausted {
			return zero, ErrNoMoreItems
		}

		if err := it.fetchNextPage(); err != nil {
			return zero, err
		}

		if it.index >= len(it.buffer) {
			return zero, ErrNoMoreItems
		}
	}

	item := it.buffer[it.index]
	it.index++

	return item, nil
}

// All drains the iterator, returning every remaining resource in order. A
// page-fetch failure mid-drain fails the whole call rather than returning
// a truncated collection.
func (it *PageIterator[T]) All() ([]T, error) {
	var all []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return nil, err
		}

		all = append(all, item)
	}

	if it.err != nil {
		return nil, it.err
	}

	return all, nil
}

// Err returns the page-fetch error that ended iteration early, if any.
func (it *PageIterator[T]) Err() error {
	return it.err
}

func (it *PageIterator[T]) fetchNextPage() error {
	it.params.WithPage(it.nextPage)

	result, err := it.lister.ListWithPath(it.ctx, it.path, it.params)
	if err != nil {
		it.err = fmt.Errorf("fetching page %d of %s: %w", it.nextPage, it.path, err)

		return it.err
	}

	it.buffer = result.Resources
	it.index = 0

	// Same stop signals as FetchAll: an empty page always ends the
	// sweep, and the reported total ends it without one extra fetch.
	if len(result.Resources) == 0 ||
		(result.Page.TotalPages > 0 && int64(it.nextPage) >= result.Page.TotalPages-1) {
		it.exhausted = true
	}

	it.nextPage++

	return nil
}
