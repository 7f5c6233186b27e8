package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// NewAssetsCommand creates the assets command group.
func NewAssetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assets",
		Aliases: []string{"asset"},
		Short:   "Manage assets",
		Long:    "List, inspect, search, and delete InsightVM assets",
	}

	cmd.AddCommand(newAssetsListCommand())
	cmd.AddCommand(newAssetsGetCommand())
	cmd.AddCommand(newAssetsSearchCommand())
	cmd.AddCommand(newAssetsDeleteCommand())

	return cmd
}

func newAssetsListCommand() *cobra.Command {
	var (
		all  bool
		size int
		page int
		sort []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets",
		Long:  "List assets, one page at a time or the entire collection with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()
			params := insightvm.NewQueryParams().WithPage(page).WithSize(size).WithSort(sort...)

			var assets []insightvm.Asset

			if all {
				assets, err = client.Assets().ListAll(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list assets: %w", err)
				}
			} else {
				result, err := client.Assets().List(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list assets: %w", err)
				}

				assets = result.Resources
			}

			return renderAssetsTable(assets)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")
	cmd.Flags().IntVar(&size, "size", 0, "page size (max 500)")
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page number")
	cmd.Flags().StringSliceVar(&sort, "sort", nil, "sort criteria, e.g. riskScore,DESC")

	return cmd
}

func newAssetsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ASSET_ID",
		Short: "Get asset details",
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

			asset, err := client.Assets().Get(context.Background(), ids[0])
			if err != nil {
				return fmt.Errorf("failed to get asset: %w", err)
			}

			return renderOutput(asset, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("ID", formatCount(asset.ID))
				_ = table.Append("Host Name", asset.HostName)
				_ = table.Append("IP", asset.IP)
				_ = table.Append("MAC", asset.MAC)
				_ = table.Append("OS", asset.OS)
				_ = table.Append("Risk Score", strconv.FormatFloat(asset.RiskScore, 'f', 0, 64))
				_ = table.Append("Assessed", strconv.FormatBool(asset.Assessed))
				_ = table.Append("Critical Vulns", formatCount(asset.Vulnerabilities.Critical))
				_ = table.Append("Severe Vulns", formatCount(asset.Vulnerabilities.Severe))
				_ = table.Append("Moderate Vulns", formatCount(asset.Vulnerabilities.Moderate))
				_ = table.Append("Total Vulns", formatCount(asset.Vulnerabilities.Total))

				_ = table.Render()

				return nil
			})
		},
	}
}

func newAssetsSearchCommand() *cobra.Command {
	var (
		match   string
		filters []string
		all     bool
		size    int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search assets by criteria",
		Long: `Search assets with field filters of the form FIELD:OPERATOR[:VALUE],
for example --filter ip-address:is:10.0.0.1 or --filter host-name:is-not-empty.
Multiple filters combine per --match (all or any).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseSearchCriteria(match, filters)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var assets []insightvm.Asset

			if all {
				assets, err = client.Assets().SearchAll(ctx, criteria)
				if err != nil {
					return fmt.Errorf("failed to search assets: %w", err)
				}
			} else {
				result, err := client.Assets().Search(ctx, criteria, insightvm.NewQueryParams().WithSize(size))
				if err != nil {
					return fmt.Errorf("failed to search assets: %w", err)
				}

				assets = result.Resources
			}

			return renderAssetsTable(assets)
		},
	}

	cmd.Flags().StringVar(&match, "match", "all", "filter combination mode (all, any)")
	cmd.Flags().StringSliceVar(&filters, "filter", nil, "search filter FIELD:OPERATOR[:VALUE] (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page of results")
	cmd.Flags().IntVar(&size, "size", 0, "page size (max 500)")

	_ = cmd.MarkFlagRequired("filter")

	return cmd
}

func newAssetsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ASSET_ID",
		Short: "Delete an asset",
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

			if err := client.Assets().Delete(context.Background(), ids[0]); err != nil {
				return fmt.Errorf("failed to delete asset: %w", err)
			}

			fmt.Printf("Asset %d deleted\n", ids[0])

			return nil
		},
	}
}

// parseSearchCriteria builds search criteria from FIELD:OPERATOR[:VALUE]
// flag values.
func parseSearchCriteria(match string, filters []string) (*insightvm.SearchCriteria, error) {
	criteria := &insightvm.SearchCriteria{Match: match}

	for _, raw := range filters {
		filter, err := parseSearchFilter(raw)
		if err != nil {
			return nil, err
		}

		criteria.Filters = append(criteria.Filters, filter)
	}

	return criteria, nil
}

// parseSearchFilter splits FIELD:OPERATOR[:VALUE] on the first two colons
// only, so values containing colons (IPv6 addresses, timestamps) survive.
func parseSearchFilter(raw string) (insightvm.SearchFilter, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return insightvm.SearchFilter{}, fmt.Errorf("invalid filter %q: %w", raw, ErrFilterFormat)
	}

	filter := insightvm.SearchFilter{
		Field:    parts[0],
		Operator: parts[1],
	}

	if len(parts) == 3 {
		filter.Value = parts[2]
	}

	return filter, nil
}

// renderAssetsTable prints assets in the configured output format.
func renderAssetsTable(assets []insightvm.Asset) error {
	return renderOutput(assets, func() error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Host Name", "IP", "OS", "Risk Score", "Vulns")

		for _, asset := range assets {
			_ = table.Append(
				formatCount(asset.ID),
				asset.HostName,
				asset.IP,
				asset.OS,
				strconv.FormatFloat(asset.RiskScore, 'f', 0, 64),
				formatCount(asset.Vulnerabilities.Total),
			)
		}

		_ = table.Render()

		return nil
	})
}
