// Package client implements the insightvm.Client interface against a
// Security Console.
package client

import (
	"github.com/talltechy/insightvm-go/internal/auth"
	"github.com/talltechy/insightvm-go/internal/constants"
	"github.com/talltechy/insightvm-go/internal/http"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// Client implements the insightvm.Client interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     insightvm.Logger
	cache      insightvm.Cache

	// Resource clients
	assets        insightvm.AssetsClient
	sites         insightvm.SitesClient
	scans         insightvm.ScansClient
	reports       insightvm.ReportsClient
	engines       insightvm.EnginesClient
	scanTemplates insightvm.ScanTemplatesClient
}

// New creates a new console API client from config. The config is assumed
// validated; consoleclient.New is the validating entry point.
func New(config *insightvm.Config) (*Client, error) {
	if config == nil {
		return nil, insightvm.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, insightvm.ErrEndpointRequired
	}

	provider, err := auth.NewBasicProvider(config.Username, config.Password)
	if err != nil {
		return nil, insightvm.ErrCredentialsRequired
	}

	httpClient := http.NewClient(config.Endpoint, provider, createHTTPClientOptions(config)...)

	// Caching is opt-in: no CacheConfig means no cache, not the default
	// backend.
	var cache insightvm.Cache

	if config.Cache != nil {
		cache, err = insightvm.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, err
		}
	}

	client := &Client{
		httpClient: httpClient,
		baseURL:    config.Endpoint,
		logger:     config.Logger,
		cache:      cache,
	}

	client.initializeResourceClients()

	return client, nil
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *insightvm.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.ConnectTimeout > 0 || config.ReadTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeouts(config.ConnectTimeout, config.ReadTimeout))
	}

	if config.SkipTLSVerify {
		httpOpts = append(httpOpts, http.WithTLSSkipVerify(true))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// Assets implements insightvm.Client.Assets.
func (c *Client) Assets() insightvm.AssetsClient {
	return c.assets
}

// Sites implements insightvm.Client.Sites.
func (c *Client) Sites() insightvm.SitesClient {
	return c.sites
}

// Scans implements insightvm.Client.Scans.
func (c *Client) Scans() insightvm.ScansClient {
	return c.scans
}

// Reports implements insightvm.Client.Reports.
func (c *Client) Reports() insightvm.ReportsClient {
	return c.reports
}

// Engines implements insightvm.Client.Engines.
func (c *Client) Engines() insightvm.EnginesClient {
	return c.engines
}

// ScanTemplates implements insightvm.Client.ScanTemplates.
func (c *Client) ScanTemplates() insightvm.ScanTemplatesClient {
	return c.scanTemplates
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.assets = NewAssetsClient(c.httpClient)
	c.sites = NewSitesClient(c.httpClient)
	c.scans = NewScansClient(c.httpClient)
	c.reports = NewReportsClient(c.httpClient, c.cache)
	c.engines = NewEnginesClient(c.httpClient, c.cache)
	c.scanTemplates = NewScanTemplatesClient(c.httpClient, c.cache)
}
