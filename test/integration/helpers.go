//go:build integration

// Package integration holds tests that run against a live InsightVM
// Security Console. They are gated behind the integration build tag and
// skip unless the IVM_CONSOLE, IVM_USERNAME, and IVM_PASSWORD environment
// variables are set.
package integration

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/talltechy/insightvm-go/pkg/consoleclient"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// TestConfig holds connection details for integration tests.
type TestConfig struct {
	Console  string
	Username string
	Password string
	Verbose  bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Console:  os.Getenv("IVM_CONSOLE"),
		Username: os.Getenv("IVM_USERNAME"),
		Password: os.Getenv("IVM_PASSWORD"),
		Verbose:  os.Getenv("IVM_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips the test when no console is configured.
func (c *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if c.Console == "" || c.Username == "" || c.Password == "" {
		t.Skip("integration test requires IVM_CONSOLE, IVM_USERNAME, and IVM_PASSWORD")
	}
}

// NewClient builds a client for the configured console.
func (c *TestConfig) NewClient(t *testing.T) insightvm.Client {
	t.Helper()

	client, err := consoleclient.New(&insightvm.Config{
		Endpoint: c.Console,
		Username: c.Username,
		Password: c.Password,
		Debug:    c.Verbose,
		Cache:    insightvm.DefaultCacheConfig(),
	})
	require.NoError(t, err)

	return client
}

// GenerateTestName returns a unique name for resources created during a
// test run, so leaked resources are identifiable.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("ivm-test-%s-%d", prefix, time.Now().UnixNano())
}
