package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/talltechy/insightvm-go/internal/http"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// pageLister adapts the HTTP executor to insightvm.PageLister, so the
// generic pagination sweep can drive any collection endpoint.
type pageLister[T any] struct {
	httpClient *http.Client
}

// ListWithPath implements insightvm.PageLister.
func (l *pageLister[T]) ListWithPath(ctx context.Context, path string, params *insightvm.QueryParams) (*insightvm.PageOf[T], error) {
	return listPage[T](ctx, l.httpClient, path, params)
}

// listPage fetches and decodes a single page of a collection.
func listPage[T any](ctx context.Context, httpClient *http.Client, path string, params *insightvm.QueryParams) (*insightvm.PageOf[T], error) {
	resp, err := httpClient.Get(ctx, path, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	var page insightvm.PageOf[T]

	err = json.Unmarshal(resp.Body, &page)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", path, err)
	}

	return &page, nil
}

// listAll sweeps every page of a collection into one slice.
func listAll[T any](ctx context.Context, httpClient *http.Client, path string, params *insightvm.QueryParams) ([]T, error) {
	return insightvm.FetchAll(ctx, &pageLister[T]{httpClient: httpClient}, path, params)
}

// getJSON fetches a single resource and decodes it into T.
func getJSON[T any](ctx context.Context, httpClient *http.Client, path string) (*T, error) {
	resp, err := httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", path, err)
	}

	var result T

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", path, err)
	}

	return &result, nil
}

// postJSON sends body to path and decodes the response into T.
func postJSON[T any](ctx context.Context, httpClient *http.Client, path string, body interface{}) (*T, error) {
	resp, err := httpClient.Post(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("posting %s: %w", path, err)
	}

	var result T

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", path, err)
	}

	return &result, nil
}
