package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/talltechy/insightvm-go/internal/constants"
	"github.com/talltechy/insightvm-go/internal/http"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// ScanTemplatesClient implements insightvm.ScanTemplatesClient.
type ScanTemplatesClient struct {
	httpClient *http.Client
	cache      insightvm.Cache
}

// NewScanTemplatesClient creates a new scan templates client. A nil cache
// disables the template lookup cache.
func NewScanTemplatesClient(httpClient *http.Client, cache insightvm.Cache) *ScanTemplatesClient {
	return &ScanTemplatesClient{httpClient: httpClient, cache: cache}
}

// Get implements insightvm.ScanTemplatesClient.Get. Template identifiers
// are strings and are escaped before being placed in the path.
func (c *ScanTemplatesClient) Get(ctx context.Context, templateID string) (*insightvm.ScanTemplate, error) {
	return getJSON[insightvm.ScanTemplate](ctx, c.httpClient, fmt.Sprintf("scan_templates/%s", url.PathEscape(templateID)))
}

// List implements insightvm.ScanTemplatesClient.List. Templates change
// rarely, so results are served through the read-through cache when one
// is configured.
func (c *ScanTemplatesClient) List(ctx context.Context) ([]insightvm.ScanTemplate, error) {
	return insightvm.CachedJSON(ctx, c.cache, "scan_templates", constants.TemplatesCacheTTL,
		func(ctx context.Context) ([]insightvm.ScanTemplate, error) {
			page, err := listPage[insightvm.ScanTemplate](ctx, c.httpClient, "scan_templates", nil)
			if err != nil {
				return nil, err
			}

			return page.Resources, nil
		})
}
