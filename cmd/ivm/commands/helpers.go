// Package commands implements the ivm CLI commands.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
	"github.com/talltechy/insightvm-go/internal/constants"
	"github.com/talltechy/insightvm-go/pkg/consoleclient"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Static errors for err113 compliance.
var (
	ErrNoConsoleConfigured = errors.New("no console endpoint configured (use --console or set console in the config file)")
	ErrNoUsername          = errors.New("no username configured (use --username or set username in the config file)")
	ErrFilterFormat        = errors.New("expected FIELD:OPERATOR[:VALUE]")
)

// CreateClient builds a console client from the resolved configuration.
// The password comes from IVM_PASSWORD or the config file; when absent it
// is prompted for on the terminal, never echoed.
func CreateClient() (insightvm.Client, error) {
	endpoint := viper.GetString("console")
	if endpoint == "" {
		return nil, ErrNoConsoleConfigured
	}

	username := viper.GetString("username")
	if username == "" {
		return nil, ErrNoUsername
	}

	password := viper.GetString("password")

	if password == "" {
		prompted, err := promptPassword(username)
		if err != nil {
			return nil, err
		}

		password = prompted
	}

	return consoleclient.New(&insightvm.Config{
		Endpoint:      endpoint,
		Username:      username,
		Password:      password,
		SkipTLSVerify: viper.GetBool("skip-ssl-validation"),
		RetryMax:      constants.DefaultRetryMax,
		Debug:         viper.GetBool("verbose"),
		Logger:        newStderrLogger(),
	})
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(username string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", username)

	data, err := term.ReadPassword(int(os.Stdin.Fd()))

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	return string(data), nil
}

// renderOutput encodes value as JSON or YAML per the output flag, or
// calls renderTable for the default table format.
func renderOutput(value interface{}, renderTable func() error) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("encoding YAML output: %w", err)
		}

		return nil
	default:
		return renderTable()
	}
}

// parseIDs converts command arguments into numeric identifiers.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))

	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid identifier %q: %w", arg, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// formatCount renders a numeric table cell.
func formatCount(n int64) string {
	return strconv.FormatInt(n, 10)
}

// orNA substitutes a placeholder for empty table cells.
func orNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

// stderrLogger writes structured log lines to stderr for --verbose runs.
type stderrLogger struct{}

func newStderrLogger() insightvm.Logger {
	return &stderrLogger{}
}

func (l *stderrLogger) log(level, msg string, fields map[string]interface{}) {
	fmt.Fprintf(os.Stderr, "[%s] %s", level, msg)

	for key, value := range fields {
		fmt.Fprintf(os.Stderr, " %s=%v", key, value)
	}

	fmt.Fprintln(os.Stderr)
}

func (l *stderrLogger) Debug(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *stderrLogger) Info(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *stderrLogger) Warn(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *stderrLogger) Error(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}
