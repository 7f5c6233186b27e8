// Package consoleclient provides the main entry point for creating
// InsightVM Security Console API clients.
package consoleclient

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/talltechy/insightvm-go/internal/client"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// New creates a new console API client.
func New(config *insightvm.Config) (insightvm.Client, error) {
	if config == nil {
		return nil, insightvm.ErrConfigRequired
	}

	err := validateConfig(config)
	if err != nil {
		return nil, err
	}

	// Normalize endpoint
	endpoint := strings.TrimSuffix(config.Endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	config.Endpoint = endpoint

	if config.SkipTLSVerify && !isDevelopmentEnvironment() {
		return nil, fmt.Errorf("%w (set IVM_DEV_MODE=true)", insightvm.ErrSkipTLSOnlyInDev)
	}

	consoleClient, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return consoleClient, nil
}

// NewWithCredentials creates a new client from an endpoint and a
// username/password pair.
func NewWithCredentials(endpoint, username, password string) (insightvm.Client, error) {
	return New(&insightvm.Config{
		Endpoint: endpoint,
		Username: username,
		Password: password,
	})
}

// validateConfig checks the required config fields, mapping validator
// failures onto the package's sentinel errors.
func validateConfig(config *insightvm.Config) error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		for _, fieldErr := range invalid {
			switch fieldErr.Field() {
			case "Endpoint":
				return insightvm.ErrEndpointRequired
			case "Username", "Password":
				return insightvm.ErrCredentialsRequired
			}
		}
	}

	return fmt.Errorf("validating config: %w", err)
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("IVM_DEV_MODE")

	return devMode == "true" || devMode == "1"
}
