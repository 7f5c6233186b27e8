package client

import (
	"context"
	"fmt"

	"github.com/talltechy/insightvm-go/internal/http"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// SitesClient implements insightvm.SitesClient.
type SitesClient struct {
	httpClient *http.Client
}

// NewSitesClient creates a new sites client.
func NewSitesClient(httpClient *http.Client) *SitesClient {
	return &SitesClient{httpClient: httpClient}
}

// Get implements insightvm.SitesClient.Get.
func (c *SitesClient) Get(ctx context.Context, siteID int64) (*insightvm.Site, error) {
	return getJSON[insightvm.Site](ctx, c.httpClient, fmt.Sprintf("sites/%d", siteID))
}

// List implements insightvm.SitesClient.List.
func (c *SitesClient) List(ctx context.Context, params *insightvm.QueryParams) (*insightvm.PageOf[insightvm.Site], error) {
	return listPage[insightvm.Site](ctx, c.httpClient, "sites", params)
}

// ListAll implements insightvm.SitesClient.ListAll.
func (c *SitesClient) ListAll(ctx context.Context, params *insightvm.QueryParams) ([]insightvm.Site, error) {
	return listAll[insightvm.Site](ctx, c.httpClient, "sites", params)
}

// Create implements insightvm.SitesClient.Create.
func (c *SitesClient) Create(ctx context.Context, request *insightvm.SiteCreateRequest) (*insightvm.CreatedReference, error) {
	ref, err := postJSON[insightvm.CreatedReference](ctx, c.httpClient, "sites", request)
	if err != nil {
		return nil, fmt.Errorf("creating site: %w", err)
	}

	return ref, nil
}

// Update implements insightvm.SitesClient.Update.
func (c *SitesClient) Update(ctx context.Context, siteID int64, request *insightvm.SiteUpdateRequest) error {
	_, err := c.httpClient.Put(ctx, fmt.Sprintf("sites/%d", siteID), request)
	if err != nil {
		return fmt.Errorf("updating site %d: %w", siteID, err)
	}

	return nil
}

// Delete implements insightvm.SitesClient.Delete.
func (c *SitesClient) Delete(ctx context.Context, siteID int64) error {
	_, err := c.httpClient.Delete(ctx, fmt.Sprintf("sites/%d", siteID))
	if err != nil {
		return fmt.Errorf("deleting site %d: %w", siteID, err)
	}

	return nil
}

// Assets implements insightvm.SitesClient.Assets.
func (c *SitesClient) Assets(ctx context.Context, siteID int64, params *insightvm.QueryParams) (*insightvm.PageOf[insightvm.Asset], error) {
	return listPage[insightvm.Asset](ctx, c.httpClient, fmt.Sprintf("sites/%d/assets", siteID), params)
}

// StartScan implements insightvm.SitesClient.StartScan, returning the new
// scan's identifier.
func (c *SitesClient) StartScan(ctx context.Context, siteID int64, request *insightvm.ScanRequest) (int64, error) {
	ref, err := postJSON[insightvm.CreatedReference](ctx, c.httpClient, fmt.Sprintf("sites/%d/scans", siteID), request)
	if err != nil {
		return 0, fmt.Errorf("starting scan for site %d: %w", siteID, err)
	}

	return ref.ID, nil
}

// MassDelete implements insightvm.SitesClient.MassDelete. Under dry-run it
// fetches each site's current summary instead of deleting, so the preview
// reflects live console state at plan time.
func (c *SitesClient) MassDelete(ctx context.Context, plan insightvm.Plan[int64]) (*insightvm.Result[int64], error) {
	return insightvm.ExecutePlan(ctx, plan,
		func(ctx context.Context, siteID int64) error {
			return c.Delete(ctx, siteID)
		},
		func(ctx context.Context, siteID int64) (any, error) {
			site, err := c.Get(ctx, siteID)
			if err != nil {
				return nil, err
			}

			return site, nil
		})
}
