package commands

import (
	"os"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the ivm CLI version, git commit, and build date",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := struct {
				Version   string `json:"version"   yaml:"version"`
				Commit    string `json:"commit"    yaml:"commit"`
				BuildDate string `json:"buildDate" yaml:"buildDate"`
				GoVersion string `json:"goVersion" yaml:"goVersion"`
			}{
				Version:   version,
				Commit:    commit,
				BuildDate: date,
				GoVersion: runtime.Version(),
			}

			return renderOutput(info, func() error {
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("Version", info.Version)
				_ = table.Append("Commit", info.Commit)
				_ = table.Append("Build Date", info.BuildDate)
				_ = table.Append("Go Version", info.GoVersion)

				_ = table.Render()

				return nil
			})
		},
	}
}
