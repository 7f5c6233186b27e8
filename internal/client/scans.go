package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/talltechy/insightvm-go/internal/http"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// ScanStatusMap translates console scan statuses into generic operation
// states. "integrating" is the post-scan data import phase and still
// counts as running; anything the console adds later falls through to
// running as well.
var ScanStatusMap = insightvm.StatusMap{
	"dispatched":  insightvm.StatePending,
	"queued":      insightvm.StatePending,
	"running":     insightvm.StateRunning,
	"integrating": insightvm.StateRunning,
	"paused":      insightvm.StateRunning,
	"finished":    insightvm.StateComplete,
	"error":       insightvm.StateFailed,
	"failed":      insightvm.StateFailed,
	"stopped":     insightvm.StateCancelled,
	"aborted":     insightvm.StateCancelled,
}

// ScansClient implements insightvm.ScansClient.
type ScansClient struct {
	httpClient *http.Client
}

// NewScansClient creates a new scans client.
func NewScansClient(httpClient *http.Client) *ScansClient {
	return &ScansClient{httpClient: httpClient}
}

// Get implements insightvm.ScansClient.Get.
func (c *ScansClient) Get(ctx context.Context, scanID int64) (*insightvm.Scan, error) {
	return getJSON[insightvm.Scan](ctx, c.httpClient, fmt.Sprintf("scans/%d", scanID))
}

// List implements insightvm.ScansClient.List. A non-nil active restricts
// the listing to running (or not running) scans.
func (c *ScansClient) List(ctx context.Context, active *bool, params *insightvm.QueryParams) (*insightvm.PageOf[insightvm.Scan], error) {
	params = params.Clone()
	if active != nil {
		params.WithFilter("active", strconv.FormatBool(*active))
	}

	return listPage[insightvm.Scan](ctx, c.httpClient, "scans", params)
}

// ListAll implements insightvm.ScansClient.ListAll.
func (c *ScansClient) ListAll(ctx context.Context, active *bool, params *insightvm.QueryParams) ([]insightvm.Scan, error) {
	params = params.Clone()
	if active != nil {
		params.WithFilter("active", strconv.FormatBool(*active))
	}

	return listAll[insightvm.Scan](ctx, c.httpClient, "scans", params)
}

// ListForSite implements insightvm.ScansClient.ListForSite.
func (c *ScansClient) ListForSite(ctx context.Context, siteID int64, params *insightvm.QueryParams) (*insightvm.PageOf[insightvm.Scan], error) {
	return listPage[insightvm.Scan](ctx, c.httpClient, fmt.Sprintf("sites/%d/scans", siteID), params)
}

// Stop implements insightvm.ScansClient.Stop.
func (c *ScansClient) Stop(ctx context.Context, scanID int64) error {
	return c.setStatus(ctx, scanID, "stop")
}

// Pause implements insightvm.ScansClient.Pause.
func (c *ScansClient) Pause(ctx context.Context, scanID int64) error {
	return c.setStatus(ctx, scanID, "pause")
}

// Resume implements insightvm.ScansClient.Resume.
func (c *ScansClient) Resume(ctx context.Context, scanID int64) error {
	return c.setStatus(ctx, scanID, "resume")
}

func (c *ScansClient) setStatus(ctx context.Context, scanID int64, status string) error {
	_, err := c.httpClient.Post(ctx, fmt.Sprintf("scans/%d/%s", scanID, status), nil)
	if err != nil {
		return fmt.Errorf("setting scan %d status to %s: %w", scanID, status, err)
	}

	return nil
}

// WaitForCompletion implements insightvm.ScansClient.WaitForCompletion.
// It observes the scan until it reaches a terminal status; it never stops
// or pauses the scan itself. Cancelling ctx abandons the wait while the
// scan keeps running on the console.
func (c *ScansClient) WaitForCompletion(ctx context.Context, scanID int64, policy insightvm.PollPolicy) (*insightvm.Scan, error) {
	var lastScan *insightvm.Scan

	fetch := func(ctx context.Context) (*insightvm.Operation, error) {
		scan, err := c.Get(ctx, scanID)
		if err != nil {
			return nil, err
		}

		lastScan = scan

		return &insightvm.Operation{
			ID:     strconv.FormatInt(scan.ID, 10),
			Status: scan.Status,
		}, nil
	}

	_, err := insightvm.WaitForTerminal(ctx, fetch, ScanStatusMap, policy)
	if err != nil {
		return nil, fmt.Errorf("waiting for scan %d: %w", scanID, err)
	}

	return lastScan, nil
}
