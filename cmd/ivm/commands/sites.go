package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// NewSitesCommand creates the sites command group.
func NewSitesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sites",
		Aliases: []string{"site"},
		Short:   "Manage sites",
		Long:    "List, inspect, create, scan, and delete InsightVM sites",
	}

	cmd.AddCommand(newSitesListCommand())
	cmd.AddCommand(newSitesGetCommand())
	cmd.AddCommand(newSitesCreateCommand())
	cmd.AddCommand(newSitesUpdateCommand())
	cmd.AddCommand(newSitesDeleteCommand())
	cmd.AddCommand(newSitesAssetsCommand())
	cmd.AddCommand(newSitesScanCommand())

	return cmd
}

func newSitesListCommand() *cobra.Command {
	var (
		all  bool
		size int
		page int
		sort []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sites",
		Long:  "List sites, one page at a time or the entire collection with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()
			params := insightvm.NewQueryParams().WithPage(page).WithSize(size).WithSort(sort...)

			var sites []insightvm.Site

			if all {
				sites, err = client.Sites().ListAll(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list sites: %w", err)
				}
			} else {
				result, err := client.Sites().List(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list sites: %w", err)
				}

				sites = result.Resources
			}

			return renderOutput(sites, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Name", "Type", "Assets", "Risk Score", "Last Scan")

				for _, site := range sites {
					_ = table.Append(
						formatCount(site.ID),
						site.Name,
						site.Type,
						formatCount(site.Assets),
						strconv.FormatFloat(site.RiskScore, 'f', 0, 64),
						orNA(site.LastScanTime),
					)
				}

				_ = table.Render()

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")
	cmd.Flags().IntVar(&size, "size", 0, "page size (max 500)")
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page number")
	cmd.Flags().StringSliceVar(&sort, "sort", nil, "sort criteria, e.g. name,ASC")

	return cmd
}

func newSitesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SITE_ID",
		Short: "Get site details",
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

			site, err := client.Sites().Get(context.Background(), ids[0])
			if err != nil {
				return fmt.Errorf("failed to get site: %w", err)
			}

			return renderOutput(site, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("ID", formatCount(site.ID))
				_ = table.Append("Name", site.Name)
				_ = table.Append("Description", site.Description)
				_ = table.Append("Type", site.Type)
				_ = table.Append("Importance", site.Importance)
				_ = table.Append("Assets", formatCount(site.Assets))
				_ = table.Append("Risk Score", strconv.FormatFloat(site.RiskScore, 'f', 0, 64))
				_ = table.Append("Scan Template", site.ScanTemplate)
				_ = table.Append("Last Scan", orNA(site.LastScanTime))

				_ = table.Render()

				return nil
			})
		},
	}
}

func newSitesCreateCommand() *cobra.Command {
	var (
		description string
		importance  string
		template    string
		engineID    int64
		targets     []string
		excluded    []string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a site",
		Long:  "Create a site with the given name and scan targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			request := &insightvm.SiteCreateRequest{
				Name:        args[0],
				Description: description,
				Importance:  importance,
				TemplateID:  template,
				EngineID:    engineID,
			}

			if len(targets) > 0 || len(excluded) > 0 {
				assetTargets := &insightvm.SiteAssetTargets{}

				if len(targets) > 0 {
					assetTargets.IncludedTargets = &insightvm.AddressList{Addresses: targets}
				}

				if len(excluded) > 0 {
					assetTargets.ExcludedTargets = &insightvm.AddressList{Addresses: excluded}
				}

				request.Scan = &insightvm.SiteScanTargets{Assets: assetTargets}
			}

			created, err := client.Sites().Create(context.Background(), request)
			if err != nil {
				return fmt.Errorf("failed to create site: %w", err)
			}

			fmt.Printf("Site created with ID %d\n", created.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "site description")
	cmd.Flags().StringVar(&importance, "importance", "", "site importance (very_low, low, normal, high, very_high)")
	cmd.Flags().StringVar(&template, "template", "", "scan template ID")
	cmd.Flags().Int64Var(&engineID, "engine", 0, "scan engine ID")
	cmd.Flags().StringSliceVar(&targets, "targets", nil, "included scan targets (addresses or ranges)")
	cmd.Flags().StringSliceVar(&excluded, "excluded-targets", nil, "excluded scan targets")

	return cmd
}

func newSitesUpdateCommand() *cobra.Command {
	var (
		name        string
		description string
		importance  string
		template    string
		engineID    int64
	)

	cmd := &cobra.Command{
		Use:   "update SITE_ID",
		Short: "Update a site",
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

			ctx := context.Background()

			// The console replaces the configuration wholesale, so start
			// from the current site and overlay the provided flags.
			site, err := client.Sites().Get(ctx, ids[0])
			if err != nil {
				return fmt.Errorf("failed to get site: %w", err)
			}

			request := &insightvm.SiteUpdateRequest{
				Name:        site.Name,
				Description: site.Description,
				Importance:  site.Importance,
				TemplateID:  site.ScanTemplate,
				EngineID:    site.ScanEngine,
			}

			if name != "" {
				request.Name = name
			}

			if description != "" {
				request.Description = description
			}

			if importance != "" {
				request.Importance = importance
			}

			if template != "" {
				request.TemplateID = template
			}

			if engineID != 0 {
				request.EngineID = engineID
			}

			if err := client.Sites().Update(ctx, ids[0], request); err != nil {
				return fmt.Errorf("failed to update site: %w", err)
			}

			fmt.Printf("Site %d updated\n", ids[0])

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new site name")
	cmd.Flags().StringVar(&description, "description", "", "new site description")
	cmd.Flags().StringVar(&importance, "importance", "", "new site importance")
	cmd.Flags().StringVar(&template, "template", "", "new scan template ID")
	cmd.Flags().Int64Var(&engineID, "engine", 0, "new scan engine ID")

	return cmd
}

func newSitesDeleteCommand() *cobra.Command {
	var (
		dryRun          bool
		continueOnError bool
	)

	cmd := &cobra.Command{
		Use:   "delete SITE_ID [SITE_ID...]",
		Short: "Delete one or more sites",
		Long: `Delete sites by ID. With multiple IDs the deletions run in the
given order; --continue-on-error keeps going past failures, and
--dry-run previews what would be deleted without deleting anything.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Sites().MassDelete(context.Background(), insightvm.Plan[int64]{
				Targets:         ids,
				DryRun:          dryRun,
				ContinueOnError: continueOnError,
			})
			if err != nil {
				return fmt.Errorf("failed to delete sites: %w", err)
			}

			return renderBulkResult(result, "deleted")
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview without deleting")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "keep going after a failed deletion")

	return cmd
}

// renderBulkResult prints a bulk mutation outcome: a preview table under
// dry-run, otherwise the succeeded/failed partition.
func renderBulkResult(result *insightvm.Result[int64], verb string) error {
	return renderOutput(result, func() error {
		if result.DryRun {
			table := tablewriter.NewWriter(os.Stdout)
			table.Header("ID", "Name", "Action")

			for _, entry := range result.Preview {
				name := ""
				if site, ok := entry.Detail.(*insightvm.Site); ok {
					name = site.Name
				}

				_ = table.Append(formatCount(entry.Target), name, "would be "+verb)
			}

			for _, failure := range result.Failed {
				_ = table.Append(formatCount(failure.Target), "", "lookup failed: "+failure.Message)
			}

			_ = table.Render()

			return nil
		}

		for _, id := range result.Succeeded {
			fmt.Printf("Site %d %s\n", id, verb)
		}

		for _, failure := range result.Failed {
			fmt.Fprintf(os.Stderr, "Site %d failed: %s\n", failure.Target, failure.Message)
		}

		if result.FailureCount() > 0 {
			return fmt.Errorf("%d of %d sites failed", result.FailureCount(),
				result.SuccessCount()+result.FailureCount())
		}

		return nil
	})
}

func newSitesAssetsCommand() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "assets SITE_ID",
		Short: "List a site's assets",
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

			page, err := client.Sites().Assets(context.Background(), ids[0],
				insightvm.NewQueryParams().WithSize(size))
			if err != nil {
				return fmt.Errorf("failed to list site assets: %w", err)
			}

			return renderAssetsTable(page.Resources)
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "page size (max 500)")

	return cmd
}

func newSitesScanCommand() *cobra.Command {
	var (
		name  string
		hosts []string
	)

	cmd := &cobra.Command{
		Use:   "scan SITE_ID",
		Short: "Start a scan of a site",
		Long:  "Start a scan of the site, optionally limited to specific hosts",
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

			scanID, err := client.Sites().StartScan(context.Background(), ids[0], &insightvm.ScanRequest{
				Name:  name,
				Hosts: hosts,
			})
			if err != nil {
				return fmt.Errorf("failed to start scan: %w", err)
			}

			fmt.Printf("Scan started with ID %d\n", scanID)
			fmt.Printf("Monitor with: ivm scans watch %d\n", scanID)

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "scan name")
	cmd.Flags().StringSliceVar(&hosts, "hosts", nil, "limit the scan to these hosts")

	return cmd
}
