// Package consoleclient provides the primary entry point for constructing
// an InsightVM Security Console API client that implements the
// insightvm.Client interface.
//
// It layers configuration, HTTP transport, and Basic authentication on top
// of the resource interfaces and types defined in the insightvm package.
// Most applications should import consoleclient to build a client, then
// use the returned insightvm.Client to access resource-specific clients,
// for example Sites(), Scans(), Reports().
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/talltechy/insightvm-go/pkg/consoleclient"
//	  "github.com/talltechy/insightvm-go/pkg/insightvm"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := consoleclient.New(&insightvm.Config{
//	    Endpoint: "https://console.example.com:3780",
//	    Username: "user",
//	    Password: "pass",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the insightvm.Client interface
//	  sites, err := cli.Sites().List(ctx, insightvm.NewQueryParams().WithSize(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = sites
//	}
//
// # TLS and development mode
//
// For local development against a console with a self-signed certificate,
// you can set Config.SkipTLSVerify=true. This is gated by the environment
// variable IVM_DEV_MODE to avoid accidental insecure usage in production
// environments.
//
// # Helpers
//
// The package also provides the convenience constructor NewWithCredentials
// that wraps New with the appropriate configuration.
package consoleclient
