package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/talltechy/insightvm-go/internal/constants"
	"github.com/talltechy/insightvm-go/internal/http"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// Static errors for err113 compliance.
var (
	ErrReportNotComplete = errors.New("report generation did not complete")
)

// ReportStatusMap translates report instance statuses into generic
// operation states.
var ReportStatusMap = insightvm.StatusMap{
	"unknown":  insightvm.StatePending,
	"running":  insightvm.StateRunning,
	"complete": insightvm.StateComplete,
	"failed":   insightvm.StateFailed,
	"aborted":  insightvm.StateCancelled,
}

// ReportsClient implements insightvm.ReportsClient.
type ReportsClient struct {
	httpClient *http.Client
	cache      insightvm.Cache
}

// NewReportsClient creates a new reports client. A nil cache disables the
// template lookup cache.
func NewReportsClient(httpClient *http.Client, cache insightvm.Cache) *ReportsClient {
	return &ReportsClient{httpClient: httpClient, cache: cache}
}

// Get implements insightvm.ReportsClient.Get.
func (c *ReportsClient) Get(ctx context.Context, reportID int64) (*insightvm.Report, error) {
	return getJSON[insightvm.Report](ctx, c.httpClient, fmt.Sprintf("reports/%d", reportID))
}

// List implements insightvm.ReportsClient.List.
func (c *ReportsClient) List(ctx context.Context, params *insightvm.QueryParams) (*insightvm.PageOf[insightvm.Report], error) {
	return listPage[insightvm.Report](ctx, c.httpClient, "reports", params)
}

// ListAll implements insightvm.ReportsClient.ListAll.
func (c *ReportsClient) ListAll(ctx context.Context, params *insightvm.QueryParams) ([]insightvm.Report, error) {
	return listAll[insightvm.Report](ctx, c.httpClient, "reports", params)
}

// Create implements insightvm.ReportsClient.Create.
func (c *ReportsClient) Create(ctx context.Context, request *insightvm.ReportCreateRequest) (*insightvm.CreatedReference, error) {
	ref, err := postJSON[insightvm.CreatedReference](ctx, c.httpClient, "reports", request)
	if err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}

	return ref, nil
}

// Delete implements insightvm.ReportsClient.Delete.
func (c *ReportsClient) Delete(ctx context.Context, reportID int64) error {
	_, err := c.httpClient.Delete(ctx, fmt.Sprintf("reports/%d", reportID))
	if err != nil {
		return fmt.Errorf("deleting report %d: %w", reportID, err)
	}

	return nil
}

// Generate implements insightvm.ReportsClient.Generate, returning the new
// instance's identifier. Generation continues asynchronously on the
// console; use WaitForGeneration to observe it.
func (c *ReportsClient) Generate(ctx context.Context, reportID int64) (int64, error) {
	ref, err := postJSON[insightvm.CreatedReference](ctx, c.httpClient, fmt.Sprintf("reports/%d/generate", reportID), nil)
	if err != nil {
		return 0, fmt.Errorf("generating report %d: %w", reportID, err)
	}

	return ref.ID, nil
}

// GetInstance implements insightvm.ReportsClient.GetInstance.
func (c *ReportsClient) GetInstance(ctx context.Context, reportID, instanceID int64) (*insightvm.ReportInstance, error) {
	return getJSON[insightvm.ReportInstance](ctx, c.httpClient, fmt.Sprintf("reports/%d/history/%d", reportID, instanceID))
}

// WaitForGeneration implements insightvm.ReportsClient.WaitForGeneration.
// It returns the final instance whatever terminal status generation
// reached; callers branch on Status for failed or aborted runs.
func (c *ReportsClient) WaitForGeneration(ctx context.Context, reportID, instanceID int64, policy insightvm.PollPolicy) (*insightvm.ReportInstance, error) {
	var lastInstance *insightvm.ReportInstance

	fetch := func(ctx context.Context) (*insightvm.Operation, error) {
		instance, err := c.GetInstance(ctx, reportID, instanceID)
		if err != nil {
			return nil, err
		}

		lastInstance = instance

		return &insightvm.Operation{
			ID:     strconv.FormatInt(instance.ID, 10),
			Status: instance.Status,
		}, nil
	}

	_, err := insightvm.WaitForTerminal(ctx, fetch, ReportStatusMap, policy)
	if err != nil {
		return nil, fmt.Errorf("waiting for report %d instance %d: %w", reportID, instanceID, err)
	}

	return lastInstance, nil
}

// Download implements insightvm.ReportsClient.Download. The output is
// returned verbatim; generated reports are typically gzip-compressed.
func (c *ReportsClient) Download(ctx context.Context, reportID, instanceID int64) ([]byte, error) {
	resp, err := c.httpClient.GetRaw(ctx, fmt.Sprintf("reports/%d/history/%d/output", reportID, instanceID), nil)
	if err != nil {
		return nil, fmt.Errorf("downloading report %d instance %d: %w", reportID, instanceID, err)
	}

	return resp.Body, nil
}

// GenerateAndDownload implements insightvm.ReportsClient.GenerateAndDownload:
// kick off generation, wait for it to finish, then fetch the output.
func (c *ReportsClient) GenerateAndDownload(ctx context.Context, reportID int64, policy insightvm.PollPolicy) ([]byte, error) {
	instanceID, err := c.Generate(ctx, reportID)
	if err != nil {
		return nil, err
	}

	instance, err := c.WaitForGeneration(ctx, reportID, instanceID, policy)
	if err != nil {
		return nil, err
	}

	if ReportStatusMap.StateOf(instance.Status) != insightvm.StateComplete {
		return nil, fmt.Errorf("%w: report %d instance %d ended %s", ErrReportNotComplete, reportID, instanceID, instance.Status)
	}

	return c.Download(ctx, reportID, instanceID)
}

// Templates implements insightvm.ReportsClient.Templates. Templates change
// rarely, so results are served through the read-through cache when one is
// configured.
func (c *ReportsClient) Templates(ctx context.Context) ([]insightvm.ReportTemplate, error) {
	return insightvm.CachedJSON(ctx, c.cache, "report_templates", constants.TemplatesCacheTTL,
		func(ctx context.Context) ([]insightvm.ReportTemplate, error) {
			page, err := listPage[insightvm.ReportTemplate](ctx, c.httpClient, "report_templates", nil)
			if err != nil {
				return nil, err
			}

			return page.Resources, nil
		})
}
