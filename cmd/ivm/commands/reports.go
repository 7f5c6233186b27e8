package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/talltechy/insightvm-go/internal/constants"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// NewReportsCommand creates the reports command group.
func NewReportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Manage reports",
		Long:    "List, create, generate, and download InsightVM reports",
	}

	cmd.AddCommand(newReportsListCommand())
	cmd.AddCommand(newReportsCreateCommand())
	cmd.AddCommand(newReportsDeleteCommand())
	cmd.AddCommand(newReportsGenerateCommand())
	cmd.AddCommand(newReportsDownloadCommand())
	cmd.AddCommand(newReportsTemplatesCommand())

	return cmd
}

func newReportsListCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List report configurations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var reports []insightvm.Report

			if all {
				reports, err = client.Reports().ListAll(ctx, nil)
				if err != nil {
					return fmt.Errorf("failed to list reports: %w", err)
				}
			} else {
				result, err := client.Reports().List(ctx, nil)
				if err != nil {
					return fmt.Errorf("failed to list reports: %w", err)
				}

				reports = result.Resources
			}

			return renderOutput(reports, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Name", "Template", "Format")

				for _, report := range reports {
					_ = table.Append(
						formatCount(report.ID),
						report.Name,
						report.Template,
						report.Format,
					)
				}

				_ = table.Render()

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")

	return cmd
}

func newReportsCreateCommand() *cobra.Command {
	var (
		format   string
		template string
		sites    []int64
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a report configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			request := &insightvm.ReportCreateRequest{
				Name:     args[0],
				Format:   format,
				Template: template,
			}

			if len(sites) > 0 {
				request.Scope = &insightvm.ReportScope{Sites: sites}
			}

			created, err := client.Reports().Create(context.Background(), request)
			if err != nil {
				return fmt.Errorf("failed to create report: %w", err)
			}

			fmt.Printf("Report created with ID %d\n", created.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "pdf", "report format (pdf, html, csv, ...)")
	cmd.Flags().StringVar(&template, "template", "", "report template ID")
	cmd.Flags().Int64SliceVar(&sites, "sites", nil, "limit the report to these sites")

	return cmd
}

func newReportsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete REPORT_ID",
		Short: "Delete a report configuration",
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

			if err := client.Reports().Delete(context.Background(), ids[0]); err != nil {
				return fmt.Errorf("failed to delete report: %w", err)
			}

			fmt.Printf("Report %d deleted\n", ids[0])

			return nil
		},
	}
}

func newReportsGenerateCommand() *cobra.Command {
	var (
		wait       bool
		outputFile string
		interval   time.Duration
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate REPORT_ID",
		Short: "Generate a report",
		Long: `Start generation of a report. With --wait the command polls until
generation completes; with --output-file it additionally downloads the
generated output (implies --wait).`,
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

			ctx := context.Background()
			policy := insightvm.PollPolicy{Interval: interval, Timeout: timeout}

			if outputFile != "" {
				data, err := client.Reports().GenerateAndDownload(ctx, ids[0], policy)
				if err != nil {
					return fmt.Errorf("failed to generate report: %w", err)
				}

				return writeReportFile(outputFile, data)
			}

			instanceID, err := client.Reports().Generate(ctx, ids[0])
			if err != nil {
				return fmt.Errorf("failed to generate report: %w", err)
			}

			fmt.Printf("Report generation started, instance %d\n", instanceID)

			if !wait {
				return nil
			}

			instance, err := client.Reports().WaitForGeneration(ctx, ids[0], instanceID, policy)
			if err != nil {
				return fmt.Errorf("failed waiting for report: %w", err)
			}

			fmt.Printf("Generation %s\n", instance.Status)

			if instance.Size != nil {
				fmt.Printf("Output size: %s\n", instance.Size.Formatted)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait for generation to finish")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "download the generated output to this file")
	cmd.Flags().DurationVar(&interval, "interval", constants.DefaultPollInterval, "poll interval")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.DefaultReportPollTimeout, "overall wait budget")

	return cmd
}

func newReportsDownloadCommand() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "download REPORT_ID INSTANCE_ID",
		Short: "Download a generated report instance",
		Long:  "Download the raw output of an already generated report instance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			data, err := client.Reports().Download(context.Background(), ids[0], ids[1])
			if err != nil {
				return fmt.Errorf("failed to download report: %w", err)
			}

			if outputFile == "" {
				_, err = os.Stdout.Write(data)

				return err
			}

			return writeReportFile(outputFile, data)
		},
	}

	cmd.Flags().StringVar(&outputFile, "output-file", "", "write the output to this file instead of stdout")

	return cmd
}

func newReportsTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List available report templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			templates, err := client.Reports().Templates(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list report templates: %w", err)
			}

			return renderOutput(templates, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Name", "Type", "Built-in")

				for _, template := range templates {
					builtIn := "no"
					if template.BuiltIn {
						builtIn = "yes"
					}

					_ = table.Append(template.ID, template.Name, template.Type, builtIn)
				}

				_ = table.Render()

				return nil
			})
		},
	}
}

// writeReportFile writes downloaded report bytes to disk. Generated
// output is typically gzip-compressed.
func writeReportFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, constants.OutputFilePerm); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	fmt.Printf("Wrote %d bytes to %s\n", len(data), path)

	return nil
}
