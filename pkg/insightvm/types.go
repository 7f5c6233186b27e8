package insightvm

import (
	"time"
)

// Link represents a hypermedia link returned alongside resources.
type Link struct {
	Href string `json:"href"          yaml:"href"`
	Rel  string `json:"rel,omitempty" yaml:"rel,omitempty"`
}

// Page represents the pagination metadata block the console returns with
// every collection response. Page numbers are zero-based.
type Page struct {
	Number         int64 `json:"number"         yaml:"number"`
	Size           int64 `json:"size"           yaml:"size"`
	TotalResources int64 `json:"totalResources" yaml:"totalResources"`
	TotalPages     int64 `json:"totalPages"     yaml:"totalPages"`
}

// PageOf represents one bounded slice of a collection. Resource order is
// preserved exactly as returned by the server.
type PageOf[T any] struct {
	Resources []T    `json:"resources"       yaml:"resources"`
	Page      Page   `json:"page"            yaml:"page"`
	Links     []Link `json:"links,omitempty" yaml:"links,omitempty"`
}

// CreatedReference is the console's response to a create call: the new
// resource's identifier plus self links.
type CreatedReference struct {
	ID    int64  `json:"id"              yaml:"id"`
	Links []Link `json:"links,omitempty" yaml:"links,omitempty"`
}

// VulnerabilityCounts summarizes findings by severity.
type VulnerabilityCounts struct {
	Critical int64 `json:"critical" yaml:"critical"`
	Severe   int64 `json:"severe"   yaml:"severe"`
	Moderate int64 `json:"moderate" yaml:"moderate"`
	Total    int64 `json:"total"    yaml:"total"`
}

// Asset represents a scanned host known to the console.
type Asset struct {
	ID              int64               `json:"id"                 yaml:"id"`
	HostName        string              `json:"hostName,omitempty" yaml:"hostName,omitempty"`
	IP              string              `json:"ip,omitempty"       yaml:"ip,omitempty"`
	MAC             string              `json:"mac,omitempty"      yaml:"mac,omitempty"`
	OS              string              `json:"os,omitempty"       yaml:"os,omitempty"`
	RiskScore       float64             `json:"riskScore"          yaml:"riskScore"`
	Assessed        bool                `json:"assessedForVulnerabilities" yaml:"assessedForVulnerabilities"`
	Vulnerabilities VulnerabilityCounts `json:"vulnerabilities"    yaml:"vulnerabilities"`
	Links           []Link              `json:"links,omitempty"    yaml:"links,omitempty"`
}

// SearchCriteria is the body of an asset search: a match mode ("all" or
// "any") over field filters.
type SearchCriteria struct {
	Match   string         `json:"match"   yaml:"match"`
	Filters []SearchFilter `json:"filters" yaml:"filters"`
}

// SearchFilter is a single field predicate within a search.
type SearchFilter struct {
	Field    string `json:"field"           yaml:"field"`
	Operator string `json:"operator"        yaml:"operator"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Site represents a logical grouping of assets with scan configuration.
type Site struct {
	ID           int64   `json:"id"                     yaml:"id"`
	Name         string  `json:"name"                   yaml:"name"`
	Description  string  `json:"description,omitempty"  yaml:"description,omitempty"`
	Assets       int64   `json:"assets"                 yaml:"assets"`
	Importance   string  `json:"importance,omitempty"   yaml:"importance,omitempty"`
	RiskScore    float64 `json:"riskScore"              yaml:"riskScore"`
	ScanEngine   int64   `json:"scanEngine,omitempty"   yaml:"scanEngine,omitempty"`
	ScanTemplate string  `json:"scanTemplate,omitempty" yaml:"scanTemplate,omitempty"`
	Type         string  `json:"type,omitempty"         yaml:"type,omitempty"`
	LastScanTime string  `json:"lastScanTime,omitempty" yaml:"lastScanTime,omitempty"`
	Links        []Link  `json:"links,omitempty"        yaml:"links,omitempty"`
}

// SiteCreateRequest is the payload for creating a site.
type SiteCreateRequest struct {
	Name        string           `json:"name"                     yaml:"name"`
	Description string           `json:"description,omitempty"    yaml:"description,omitempty"`
	Importance  string           `json:"importance,omitempty"     yaml:"importance,omitempty"`
	EngineID    int64            `json:"engineId,omitempty"       yaml:"engineId,omitempty"`
	TemplateID  string           `json:"scanTemplateId,omitempty" yaml:"scanTemplateId,omitempty"`
	Scan        *SiteScanTargets `json:"scan,omitempty"           yaml:"scan,omitempty"`
}

// SiteScanTargets holds included/excluded addresses for a site.
type SiteScanTargets struct {
	Assets *SiteAssetTargets `json:"assets,omitempty" yaml:"assets,omitempty"`
}

// SiteAssetTargets lists included and excluded scan targets.
type SiteAssetTargets struct {
	IncludedTargets *AddressList `json:"includedTargets,omitempty" yaml:"includedTargets,omitempty"`
	ExcludedTargets *AddressList `json:"excludedTargets,omitempty" yaml:"excludedTargets,omitempty"`
}

// AddressList is a set of addresses or address ranges.
type AddressList struct {
	Addresses []string `json:"addresses" yaml:"addresses"`
}

// SiteUpdateRequest is the payload for updating a site.
type SiteUpdateRequest struct {
	Name        string `json:"name"                     yaml:"name"`
	Description string `json:"description,omitempty"    yaml:"description,omitempty"`
	Importance  string `json:"importance,omitempty"     yaml:"importance,omitempty"`
	EngineID    int64  `json:"engineId,omitempty"       yaml:"engineId,omitempty"`
	TemplateID  string `json:"scanTemplateId,omitempty" yaml:"scanTemplateId,omitempty"`
}

// Scan represents one scan run, past or present.
type Scan struct {
	ID              int64               `json:"id"                   yaml:"id"`
	ScanName        string              `json:"scanName,omitempty"   yaml:"scanName,omitempty"`
	ScanType        string              `json:"scanType,omitempty"   yaml:"scanType,omitempty"`
	SiteID          int64               `json:"siteId,omitempty"     yaml:"siteId,omitempty"`
	SiteName        string              `json:"siteName,omitempty"   yaml:"siteName,omitempty"`
	Status          string              `json:"status"               yaml:"status"`
	StartTime       string              `json:"startTime,omitempty"  yaml:"startTime,omitempty"`
	EndTime         string              `json:"endTime,omitempty"    yaml:"endTime,omitempty"`
	Duration        string              `json:"duration,omitempty"   yaml:"duration,omitempty"`
	Assets          int64               `json:"assets"               yaml:"assets"`
	EngineID        int64               `json:"engineId,omitempty"   yaml:"engineId,omitempty"`
	EngineName      string              `json:"engineName,omitempty" yaml:"engineName,omitempty"`
	Message         string              `json:"message,omitempty"    yaml:"message,omitempty"`
	Vulnerabilities VulnerabilityCounts `json:"vulnerabilities"      yaml:"vulnerabilities"`
	Links           []Link              `json:"links,omitempty"      yaml:"links,omitempty"`
}

// ScanRequest is the payload for starting a scan against a site.
type ScanRequest struct {
	Name             string   `json:"name,omitempty"             yaml:"name,omitempty"`
	TemplateID       string   `json:"templateId,omitempty"       yaml:"templateId,omitempty"`
	Hosts            []string `json:"hosts,omitempty"            yaml:"hosts,omitempty"`
	AssetGroupIDs    []int64  `json:"assetGroupIds,omitempty"    yaml:"assetGroupIds,omitempty"`
	EngineID         int64    `json:"engineId,omitempty"         yaml:"engineId,omitempty"`
	OverrideBlackout bool     `json:"overrideBlackout,omitempty" yaml:"overrideBlackout,omitempty"`
}

// Report represents a report configuration.
type Report struct {
	ID       int64  `json:"id"                 yaml:"id"`
	Name     string `json:"name"               yaml:"name"`
	Format   string `json:"format,omitempty"   yaml:"format,omitempty"`
	Template string `json:"template,omitempty" yaml:"template,omitempty"`
	Links    []Link `json:"links,omitempty"    yaml:"links,omitempty"`
}

// ReportCreateRequest is the payload for creating a report configuration.
type ReportCreateRequest struct {
	Name     string       `json:"name"               yaml:"name"`
	Format   string       `json:"format"             yaml:"format"`
	Template string       `json:"template,omitempty" yaml:"template,omitempty"`
	Scope    *ReportScope `json:"scope,omitempty"    yaml:"scope,omitempty"`
}

// ReportScope limits a report to specific sites or assets.
type ReportScope struct {
	Sites  []int64 `json:"sites,omitempty"  yaml:"sites,omitempty"`
	Assets []int64 `json:"assets,omitempty" yaml:"assets,omitempty"`
}

// ReportInstance represents one generation run of a report. The status
// field evolves until generation reaches a terminal state; Size and URI
// are populated once complete.
type ReportInstance struct {
	ID        int64       `json:"id"                  yaml:"id"`
	Status    string      `json:"status"              yaml:"status"`
	Generated string      `json:"generated,omitempty" yaml:"generated,omitempty"`
	Size      *ReportSize `json:"size,omitempty"      yaml:"size,omitempty"`
	URI       string      `json:"uri,omitempty"       yaml:"uri,omitempty"`
	Links     []Link      `json:"links,omitempty"     yaml:"links,omitempty"`
}

// ReportSize describes generated report output size.
type ReportSize struct {
	Bytes     float64 `json:"bytes"     yaml:"bytes"`
	Formatted string  `json:"formatted" yaml:"formatted"`
}

// ReportTemplate describes an available report template.
type ReportTemplate struct {
	ID          string `json:"id"                    yaml:"id"`
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string `json:"type,omitempty"        yaml:"type,omitempty"`
	BuiltIn     bool   `json:"builtin"               yaml:"builtin"`
}

// ScanEngine represents a scan engine paired with the console.
type ScanEngine struct {
	ID             int64   `json:"id"                       yaml:"id"`
	Name           string  `json:"name"                     yaml:"name"`
	Address        string  `json:"address,omitempty"        yaml:"address,omitempty"`
	Port           int     `json:"port,omitempty"           yaml:"port,omitempty"`
	Status         string  `json:"status,omitempty"         yaml:"status,omitempty"`
	ProductVersion string  `json:"productVersion,omitempty" yaml:"productVersion,omitempty"`
	ContentVersion string  `json:"contentVersion,omitempty" yaml:"contentVersion,omitempty"`
	Sites          []int64 `json:"sites,omitempty"          yaml:"sites,omitempty"`
	Links          []Link  `json:"links,omitempty"          yaml:"links,omitempty"`
}

// ScanTemplate describes a built-in or custom scan template. Template
// identifiers are strings, for example "full-audit-without-web-spider".
type ScanTemplate struct {
	ID            string `json:"id"                    yaml:"id"`
	Name          string `json:"name"                  yaml:"name"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	DiscoveryOnly bool   `json:"discoveryOnly"         yaml:"discoveryOnly"`
	Links         []Link `json:"links,omitempty"       yaml:"links,omitempty"`
}

// Timestamp parses a console timestamp, which is RFC 3339.
func Timestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}

	return parsed, true
}
