package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/talltechy/insightvm-go/internal/http"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// AssetsClient implements insightvm.AssetsClient.
type AssetsClient struct {
	httpClient *http.Client
}

// NewAssetsClient creates a new assets client.
func NewAssetsClient(httpClient *http.Client) *AssetsClient {
	return &AssetsClient{httpClient: httpClient}
}

// Get implements insightvm.AssetsClient.Get.
func (c *AssetsClient) Get(ctx context.Context, assetID int64) (*insightvm.Asset, error) {
	return getJSON[insightvm.Asset](ctx, c.httpClient, fmt.Sprintf("assets/%d", assetID))
}

// List implements insightvm.AssetsClient.List.
func (c *AssetsClient) List(ctx context.Context, params *insightvm.QueryParams) (*insightvm.PageOf[insightvm.Asset], error) {
	return listPage[insightvm.Asset](ctx, c.httpClient, "assets", params)
}

// ListAll implements insightvm.AssetsClient.ListAll.
func (c *AssetsClient) ListAll(ctx context.Context, params *insightvm.QueryParams) ([]insightvm.Asset, error) {
	return listAll[insightvm.Asset](ctx, c.httpClient, "assets", params)
}

// Search implements insightvm.AssetsClient.Search. Unlike plain lists the
// search endpoint takes the criteria as a POST body, with pagination
// still in the query string.
func (c *AssetsClient) Search(ctx context.Context, criteria *insightvm.SearchCriteria, params *insightvm.QueryParams) (*insightvm.PageOf[insightvm.Asset], error) {
	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   "assets/search",
		Query:  params.ToValues(),
		Body:   criteria,
	})
	if err != nil {
		return nil, fmt.Errorf("searching assets: %w", err)
	}

	var page insightvm.PageOf[insightvm.Asset]

	err = json.Unmarshal(resp.Body, &page)
	if err != nil {
		return nil, fmt.Errorf("parsing asset search response: %w", err)
	}

	return &page, nil
}

// SearchAll implements insightvm.AssetsClient.SearchAll, sweeping every
// page of a search result.
func (c *AssetsClient) SearchAll(ctx context.Context, criteria *insightvm.SearchCriteria) ([]insightvm.Asset, error) {
	lister := &searchLister{assets: c, criteria: criteria}

	return insightvm.FetchAll(ctx, lister, "assets/search", nil)
}

// Delete implements insightvm.AssetsClient.Delete.
func (c *AssetsClient) Delete(ctx context.Context, assetID int64) error {
	_, err := c.httpClient.Delete(ctx, fmt.Sprintf("assets/%d", assetID))
	if err != nil {
		return fmt.Errorf("deleting asset %d: %w", assetID, err)
	}

	return nil
}

// searchLister adapts the POST-based search endpoint to the pagination
// sweep, which only varies the page index between calls.
type searchLister struct {
	assets   *AssetsClient
	criteria *insightvm.SearchCriteria
}

// ListWithPath implements insightvm.PageLister.
func (l *searchLister) ListWithPath(ctx context.Context, _ string, params *insightvm.QueryParams) (*insightvm.PageOf[insightvm.Asset], error) {
	return l.assets.Search(ctx, l.criteria, params)
}
