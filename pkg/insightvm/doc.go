// Package insightvm provides types, interfaces, and helpers for working
// with the Rapid7 InsightVM (Nexpose) Security Console v3 API.
//
// # Overview
//
// The insightvm package defines the domain types (e.g., Asset, Site, Scan,
// Report) and the interfaces for resource-oriented clients (e.g.,
// AssetsClient, SitesClient, ScansClient, ReportsClient). A concrete
// implementation of these clients is provided by the consoleclient package,
// which wires configuration, transport, and authentication. Most consumers
// should import consoleclient to construct a client and then interact with
// the resource client interfaces exposed here.
//
// Getting a client
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
//	  cli, err := consoleclient.New(&insightvm.Config{
//	    Endpoint: "https://console.example.com:3780",
//	    Username: "user",
//	    Password: "pass",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of sites
//	  sites, err := cli.Sites().List(ctx, insightvm.NewQueryParams().WithSize(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = sites
//	}
//
// # Queries and pagination
//
// Use QueryParams to express common list options (page, size, sort,
// filters). The console caps page sizes at 500; larger requests are clamped.
// The package also provides helpers for iterating or collecting paginated
// results:
//
//	it := insightvm.NewPageIterator(ctx, lister, "sites", insightvm.NewQueryParams())
//	for it.HasNext() {
//	  site, err := it.Next()
//	  if err != nil { break }
//	  _ = site
//	}
//
// or fetch every resource across all pages at once with FetchAll. The
// resource clients expose the same sweep through their ListAll methods.
//
// # Long-running operations
//
// Scans and report generation run asynchronously on the console.
// WaitForTerminal polls a status endpoint until the operation reaches a
// terminal state, tolerating transient transport faults between checks.
// The resource clients expose it through WaitForCompletion and
// WaitForGeneration.
//
// # Bulk mutations
//
// ExecutePlan applies one mutation across many targets with dry-run
// preview, continue-on-error, and fail-fast modes. Sites().MassDelete is
// built on it.
//
// # Errors
//
// API errors are represented by APIError; transport faults and request
// timeouts by TransportError. Helpers such as IsNotFound, IsUnauthorized,
// IsTimeout, and IsTransient make it easy to branch on common cases.
package insightvm
