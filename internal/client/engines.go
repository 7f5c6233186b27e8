package client

import (
	"context"
	"fmt"

	"github.com/talltechy/insightvm-go/internal/constants"
	"github.com/talltechy/insightvm-go/internal/http"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// EnginesClient implements insightvm.EnginesClient.
type EnginesClient struct {
	httpClient *http.Client
	cache      insightvm.Cache
}

// NewEnginesClient creates a new scan engines client. A nil cache
// disables the engine lookup cache.
func NewEnginesClient(httpClient *http.Client, cache insightvm.Cache) *EnginesClient {
	return &EnginesClient{httpClient: httpClient, cache: cache}
}

// Get implements insightvm.EnginesClient.Get.
func (c *EnginesClient) Get(ctx context.Context, engineID int64) (*insightvm.ScanEngine, error) {
	return getJSON[insightvm.ScanEngine](ctx, c.httpClient, fmt.Sprintf("scan_engines/%d", engineID))
}

// List implements insightvm.EnginesClient.List. The console returns the
// full engine roster in one response; results are served through the
// read-through cache when one is configured.
func (c *EnginesClient) List(ctx context.Context) ([]insightvm.ScanEngine, error) {
	return insightvm.CachedJSON(ctx, c.cache, "scan_engines", constants.EnginesCacheTTL,
		func(ctx context.Context) ([]insightvm.ScanEngine, error) {
			page, err := listPage[insightvm.ScanEngine](ctx, c.httpClient, "scan_engines", nil)
			if err != nil {
				return nil, err
			}

			return page.Resources, nil
		})
}
