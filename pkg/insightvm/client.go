package insightvm

import (
	"context"
	"time"
)

// Logger interface for logging. The HTTP layer logs request/response
// pairs through this when debug is enabled; credentials are never logged.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
//
// Endpoint and the credential pair are required. The config is consumed
// once at construction; the resulting client holds an immutable copy and
// no process-wide state, so independent clients with different configs
// can coexist.
//
// SkipTLSVerify is only honored when the environment variable
// IVM_DEV_MODE is set to "true" or "1"; do not use it in production.
type Config struct {
	// Endpoint is the base URL of the console, e.g.
	// "https://console.example.com:3780". consoleclient.New normalizes
	// this by trimming a trailing slash and adding "https://" when no
	// scheme is present.
	Endpoint string `validate:"required"`

	// Username and Password form the Basic auth credential pair.
	Username string `validate:"required"`
	Password string `validate:"required"`

	// SkipTLSVerify disables certificate verification. Gated on
	// IVM_DEV_MODE; see above.
	SkipTLSVerify bool

	// ConnectTimeout bounds connection establishment; ReadTimeout
	// bounds the full request/response exchange. Zero values use the
	// package defaults.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// RetryMax is the maximum number of retries for transient failures
	// (>=500, 429, and connection errors). Zero disables retries.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// PageSizeLimit caps page sizes below the console's own maximum.
	// Zero uses the console maximum (500).
	PageSizeLimit int

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Debug enables verbose HTTP request/response logging when a
	// Logger is provided.
	Debug bool

	// Logger is an optional structured logger.
	Logger Logger

	// Cache configures the optional read-through response cache used
	// for slow-changing lookups (report templates, scan templates,
	// scan engines). Nil disables it.
	Cache *CacheConfig
}

// AssetsClient provides access to asset operations.
type AssetsClient interface {
	Get(ctx context.Context, assetID int64) (*Asset, error)
	List(ctx context.Context, params *QueryParams) (*PageOf[Asset], error)
	ListAll(ctx context.Context, params *QueryParams) ([]Asset, error)
	Search(ctx context.Context, criteria *SearchCriteria, params *QueryParams) (*PageOf[Asset], error)
	SearchAll(ctx context.Context, criteria *SearchCriteria) ([]Asset, error)
	Delete(ctx context.Context, assetID int64) error
}

// SitesClient provides access to site operations.
type SitesClient interface {
	Get(ctx context.Context, siteID int64) (*Site, error)
	List(ctx context.Context, params *QueryParams) (*PageOf[Site], error)
	ListAll(ctx context.Context, params *QueryParams) ([]Site, error)
	Create(ctx context.Context, request *SiteCreateRequest) (*CreatedReference, error)
	Update(ctx context.Context, siteID int64, request *SiteUpdateRequest) error
	Delete(ctx context.Context, siteID int64) error
	Assets(ctx context.Context, siteID int64, params *QueryParams) (*PageOf[Asset], error)
	StartScan(ctx context.Context, siteID int64, request *ScanRequest) (int64, error)
	MassDelete(ctx context.Context, plan Plan[int64]) (*Result[int64], error)
}

// ScansClient provides access to scan operations. WaitForCompletion
// blocks until the scan reaches a terminal status or the policy budget
// elapses; it never stops the scan itself.
type ScansClient interface {
	Get(ctx context.Context, scanID int64) (*Scan, error)
	List(ctx context.Context, active *bool, params *QueryParams) (*PageOf[Scan], error)
	ListAll(ctx context.Context, active *bool, params *QueryParams) ([]Scan, error)
	ListForSite(ctx context.Context, siteID int64, params *QueryParams) (*PageOf[Scan], error)
	Stop(ctx context.Context, scanID int64) error
	Pause(ctx context.Context, scanID int64) error
	Resume(ctx context.Context, scanID int64) error
	WaitForCompletion(ctx context.Context, scanID int64, policy PollPolicy) (*Scan, error)
}

// EnginesClient provides access to scan engine lookups. List is served
// through the read-through cache when one is configured.
type EnginesClient interface {
	Get(ctx context.Context, engineID int64) (*ScanEngine, error)
	List(ctx context.Context) ([]ScanEngine, error)
}

// ScanTemplatesClient provides access to scan template lookups. List is
// served through the read-through cache when one is configured.
type ScanTemplatesClient interface {
	Get(ctx context.Context, templateID string) (*ScanTemplate, error)
	List(ctx context.Context) ([]ScanTemplate, error)
}

// ReportsClient provides access to report operations. Download returns
// the raw (typically gzip-compressed) bytes of a generated instance.
type ReportsClient interface {
	Get(ctx context.Context, reportID int64) (*Report, error)
	List(ctx context.Context, params *QueryParams) (*PageOf[Report], error)
	ListAll(ctx context.Context, params *QueryParams) ([]Report, error)
	Create(ctx context.Context, request *ReportCreateRequest) (*CreatedReference, error)
	Delete(ctx context.Context, reportID int64) error
	Generate(ctx context.Context, reportID int64) (int64, error)
	GetInstance(ctx context.Context, reportID, instanceID int64) (*ReportInstance, error)
	WaitForGeneration(ctx context.Context, reportID, instanceID int64, policy PollPolicy) (*ReportInstance, error)
	Download(ctx context.Context, reportID, instanceID int64) ([]byte, error)
	GenerateAndDownload(ctx context.Context, reportID int64, policy PollPolicy) ([]byte, error)
	Templates(ctx context.Context) ([]ReportTemplate, error)
}

// Client is the top-level console API client.
type Client interface {
	Assets() AssetsClient
	Sites() SitesClient
	Scans() ScansClient
	Reports() ReportsClient
	Engines() EnginesClient
	ScanTemplates() ScanTemplatesClient
}
