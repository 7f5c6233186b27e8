package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/talltechy/insightvm-go/internal/constants"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// NewScansCommand creates the scans command group.
func NewScansCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scans",
		Aliases: []string{"scan"},
		Short:   "Manage scans",
		Long:    "List, inspect, control, and monitor InsightVM scans",
	}

	cmd.AddCommand(newScansListCommand())
	cmd.AddCommand(newScansGetCommand())
	cmd.AddCommand(newScansStopCommand())
	cmd.AddCommand(newScansPauseCommand())
	cmd.AddCommand(newScansResumeCommand())
	cmd.AddCommand(newScansWatchCommand())
	cmd.AddCommand(newScansTemplatesCommand())

	return cmd
}

func newScansTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List available scan templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			templates, err := client.ScanTemplates().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list scan templates: %w", err)
			}

			return renderOutput(templates, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Name", "Discovery Only")

				for _, template := range templates {
					discoveryOnly := "no"
					if template.DiscoveryOnly {
						discoveryOnly = "yes"
					}

					_ = table.Append(template.ID, template.Name, discoveryOnly)
				}

				_ = table.Render()

				return nil
			})
		},
	}
}

func newScansListCommand() *cobra.Command {
	var (
		active bool
		all    bool
		site   int64
		size   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scans",
		Long:  "List scans across the console, or for one site with --site",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()
			params := insightvm.NewQueryParams().WithSize(size)

			var activeFilter *bool
			if cmd.Flags().Changed("active") {
				activeFilter = &active
			}

			var scans []insightvm.Scan

			switch {
			case site != 0:
				result, err := client.Scans().ListForSite(ctx, site, params)
				if err != nil {
					return fmt.Errorf("failed to list scans: %w", err)
				}

				scans = result.Resources
			case all:
				scans, err = client.Scans().ListAll(ctx, activeFilter, params)
				if err != nil {
					return fmt.Errorf("failed to list scans: %w", err)
				}
			default:
				result, err := client.Scans().List(ctx, activeFilter, params)
				if err != nil {
					return fmt.Errorf("failed to list scans: %w", err)
				}

				scans = result.Resources
			}

			return renderOutput(scans, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Name", "Site", "Status", "Started", "Assets")

				for _, scan := range scans {
					_ = table.Append(
						formatCount(scan.ID),
						scan.ScanName,
						scan.SiteName,
						scan.Status,
						scan.StartTime,
						formatCount(scan.Assets),
					)
				}

				_ = table.Render()

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "only active scans (or --active=false for past scans)")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")
	cmd.Flags().Int64Var(&site, "site", 0, "list scans for this site only")
	cmd.Flags().IntVar(&size, "size", 0, "page size (max 500)")

	return cmd
}

func newScansGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SCAN_ID",
		Short: "Get scan details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			scan, err := client.Scans().Get(context.Background(), ids[0])
			if err != nil {
				return fmt.Errorf("failed to get scan: %w", err)
			}

			return renderScanDetails(scan)
		},
	}
}

func renderScanDetails(scan *insightvm.Scan) error {
	return renderOutput(scan, func() error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("ID", formatCount(scan.ID))
		_ = table.Append("Name", scan.ScanName)
		_ = table.Append("Type", scan.ScanType)
		_ = table.Append("Site", scan.SiteName)
		_ = table.Append("Status", scan.Status)
		_ = table.Append("Started", orNA(scan.StartTime))
		_ = table.Append("Ended", orNA(scan.EndTime))
		_ = table.Append("Duration", orNA(scan.Duration))
		_ = table.Append("Assets", formatCount(scan.Assets))
		_ = table.Append("Engine", scan.EngineName)

		if scan.Message != "" {
			_ = table.Append("Message", scan.Message)
		}

		_ = table.Render()

		return nil
	})
}

func newScansStopCommand() *cobra.Command {
	return newScanActionCommand("stop", "Stop a running scan", func(ctx context.Context, client insightvm.Client, scanID int64) error {
		return client.Scans().Stop(ctx, scanID)
	})
}

func newScansPauseCommand() *cobra.Command {
	return newScanActionCommand("pause", "Pause a running scan", func(ctx context.Context, client insightvm.Client, scanID int64) error {
		return client.Scans().Pause(ctx, scanID)
	})
}

func newScansResumeCommand() *cobra.Command {
	return newScanActionCommand("resume", "Resume a paused scan", func(ctx context.Context, client insightvm.Client, scanID int64) error {
		return client.Scans().Resume(ctx, scanID)
	})
}

func newScanActionCommand(action, short string, run func(ctx context.Context, client insightvm.Client, scanID int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   action + " SCAN_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			if err := run(context.Background(), client, ids[0]); err != nil {
				return fmt.Errorf("failed to %s scan: %w", action, err)
			}

			fmt.Printf("Scan %d %s requested\n", ids[0], action)

			return nil
		},
	}
}

func newScansWatchCommand() *cobra.Command {
	var (
		interval time.Duration
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch SCAN_ID",
		Short: "Wait for a scan to finish",
		Long: `Poll a scan until it reaches a terminal status (finished, stopped,
aborted, or failed) or the timeout elapses. Watching never stops the
scan itself; interrupting the watch leaves the scan running.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Waiting for scan %d (checking every %s, timeout %s)...\n",
				ids[0], interval, timeout)

			scan, err := client.Scans().WaitForCompletion(context.Background(), ids[0], insightvm.PollPolicy{
				Interval: interval,
				Timeout:  timeout,
			})
			if err != nil {
				var timeoutErr *insightvm.WaitTimeoutError
				if errors.As(err, &timeoutErr) {
					return fmt.Errorf("scan %d still %q after %s", ids[0],
						timeoutErr.LastStatus, timeoutErr.Elapsed.Round(time.Second))
				}

				return fmt.Errorf("failed to watch scan: %w", err)
			}

			return renderScanDetails(scan)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", constants.DefaultPollInterval, "poll interval")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.DefaultScanPollTimeout, "overall wait budget")

	return cmd
}
