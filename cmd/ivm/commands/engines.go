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

// NewEnginesCommand creates the engines command group.
func NewEnginesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "engines",
		Aliases: []string{"engine"},
		Short:   "Manage scan engines",
		Long:    "List and inspect the scan engines paired with the console",
	}

	cmd.AddCommand(newEnginesListCommand())
	cmd.AddCommand(newEnginesGetCommand())

	return cmd
}

func newEnginesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scan engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			engines, err := client.Engines().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list scan engines: %w", err)
			}

			return renderOutput(engines, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Name", "Address", "Port", "Status", "Version")

				for _, engine := range engines {
					_ = table.Append(formatCount(engine.ID), engine.Name, orNA(engine.Address),
						strconv.Itoa(engine.Port), orNA(engine.Status), orNA(engine.ProductVersion))
				}

				_ = table.Render()

				return nil
			})
		},
	}
}

func newEnginesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ENGINE_ID",
		Short: "Get scan engine details",
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

			engine, err := client.Engines().Get(context.Background(), ids[0])
			if err != nil {
				return fmt.Errorf("failed to get scan engine: %w", err)
			}

			return renderEngineDetails(engine)
		},
	}
}

func renderEngineDetails(engine *insightvm.ScanEngine) error {
	return renderOutput(engine, func() error {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		sites := make([]string, 0, len(engine.Sites))
		for _, siteID := range engine.Sites {
			sites = append(sites, formatCount(siteID))
		}

		_ = table.Append("ID", formatCount(engine.ID))
		_ = table.Append("Name", engine.Name)
		_ = table.Append("Address", orNA(engine.Address))
		_ = table.Append("Port", strconv.Itoa(engine.Port))
		_ = table.Append("Status", orNA(engine.Status))
		_ = table.Append("Product Version", orNA(engine.ProductVersion))
		_ = table.Append("Content Version", orNA(engine.ContentVersion))
		_ = table.Append("Sites", orNA(strings.Join(sites, ", ")))
		_ = table.Render()

		return nil
	})
}
