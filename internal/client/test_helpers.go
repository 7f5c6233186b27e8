package client

import (
	"encoding/json"
	"net/http"

	internalhttp "github.com/talltechy/insightvm-go/internal/http"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// NewTestClient creates a new test client with the given base URL.
func NewTestClient(baseURL string) *Client {
	// Create HTTP client without auth provider for testing
	httpClient := internalhttp.NewClient(baseURL, nil)

	client := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}

	client.initializeResourceClients()

	return client
}

// NewTestClientWithCache creates a test client with a cache wired in.
func NewTestClientWithCache(baseURL string, cache insightvm.Cache) *Client {
	client := NewTestClient(baseURL)
	client.cache = cache
	client.initializeResourceClients()

	return client
}

// writePage encodes one page of resources the way the console does.
func writePage[T any](writer http.ResponseWriter, resources []T, number, size, totalResources int64) {
	totalPages := totalResources / size
	if totalResources%size != 0 {
		totalPages++
	}

	page := insightvm.PageOf[T]{
		Resources: resources,
		Page: insightvm.Page{
			Number:         number,
			Size:           size,
			TotalResources: totalResources,
			TotalPages:     totalPages,
		},
	}

	writer.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(writer).Encode(page)
}

// BoolPtr is a helper function that returns a pointer to the given bool.
func BoolPtr(b bool) *bool {
	return &b
}
