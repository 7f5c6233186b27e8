package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// OutputFilePerm is the permission for files the CLI writes.
	OutputFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultConnectTimeout is the default timeout for establishing a connection.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultReadTimeout is the default timeout for reading a full response.
	DefaultReadTimeout = 90 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Polling intervals and budgets.
const (
	// DefaultPollInterval is the default interval between status checks.
	DefaultPollInterval = 30 * time.Second

	// DefaultScanPollTimeout is the default budget for waiting on a scan.
	DefaultScanPollTimeout = 4 * time.Hour

	// DefaultReportPollTimeout is the default budget for waiting on a report.
	DefaultReportPollTimeout = 1 * time.Hour
)

// Cache TTLs.
const (
	// TemplatesCacheTTL is the TTL for report and scan template lookups.
	TemplatesCacheTTL = 10 * time.Minute

	// EnginesCacheTTL is the TTL for scan engine lookups. Shorter than
	// the template TTL because engine status changes as scans run.
	EnginesCacheTTL = 5 * time.Minute
)

// API path constants.
const (
	// APIPrefix is the versioned prefix every endpoint lives under.
	APIPrefix = "/api/3"
)

// Version is the client library version reported in the User-Agent.
const Version = "1.0.0"

// Display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"
)

// Output format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)
