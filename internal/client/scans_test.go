package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

func TestScansGet(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/3/scans/9001", request.URL.Path)

		scan := insightvm.Scan{ID: 9001, Status: "running", SiteID: 12}
		_ = json.NewEncoder(writer).Encode(scan)
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	scan, err := client.Scans().Get(context.Background(), 9001)
	require.NoError(t, err)
	assert.Equal(t, "running", scan.Status)
}

func TestScansListActiveFilter(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/3/scans", request.URL.Path)
		assert.Equal(t, "true", request.URL.Query().Get("active"))

		writePage(writer, []insightvm.Scan{{ID: 9001, Status: "running"}}, 0, 500, 1)
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	page, err := client.Scans().List(context.Background(), BoolPtr(true), nil)
	require.NoError(t, err)
	assert.Len(t, page.Resources, 1)
}

func TestScansListForSite(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/3/sites/12/scans", request.URL.Path)

		writePage(writer, []insightvm.Scan{{ID: 1}, {ID: 2}}, 0, 500, 2)
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	page, err := client.Scans().ListForSite(context.Background(), 12, nil)
	require.NoError(t, err)
	assert.Len(t, page.Resources, 2)
}

func TestScansLifecycleActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action string
		fn     func(insightvm.ScansClient, context.Context) error
	}{
		{
			name:   "stop",
			action: "stop",
			fn: func(c insightvm.ScansClient, ctx context.Context) error {
				return c.Stop(ctx, 9001)
			},
		},
		{
			name:   "pause",
			action: "pause",
			fn: func(c insightvm.ScansClient, ctx context.Context) error {
				return c.Pause(ctx, 9001)
			},
		},
		{
			name:   "resume",
			action: "resume",
			fn: func(c insightvm.ScansClient, ctx context.Context) error {
				return c.Resume(ctx, 9001)
			},
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, "/api/3/scans/9001/"+testCase.action, request.URL.Path)
				assert.Equal(t, "POST", request.Method)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := NewTestClient(server.URL)

			err := testCase.fn(client.Scans(), context.Background())
			require.NoError(t, err)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestScansWaitForCompletion(t *testing.T) {
	t.Parallel()
	t.Run("waits through transitions to finished", func(t *testing.T) {
		t.Parallel()

		statuses := []string{"dispatched", "running", "integrating", "finished"}

		var calls atomic.Int64

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			index := calls.Load()
			if index >= int64(len(statuses)) {
				index = int64(len(statuses)) - 1
			}

			calls.Add(1)

			scan := insightvm.Scan{ID: 9001, Status: statuses[index], Assets: 44}
			_ = json.NewEncoder(writer).Encode(scan)
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		scan, err := client.Scans().WaitForCompletion(context.Background(), 9001, insightvm.PollPolicy{
			Interval: 5 * time.Millisecond,
			Timeout:  time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "finished", scan.Status)
		assert.Equal(t, int64(44), scan.Assets)
		assert.Equal(t, int64(4), calls.Load())
	})

	t.Run("timeout carries last observed status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_ = json.NewEncoder(writer).Encode(insightvm.Scan{ID: 9001, Status: "running"})
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		_, err := client.Scans().WaitForCompletion(context.Background(), 9001, insightvm.PollPolicy{
			Interval: 5 * time.Millisecond,
			Timeout:  30 * time.Millisecond,
		})
		require.Error(t, err)

		var timeoutErr *insightvm.WaitTimeoutError

		require.True(t, errors.As(err, &timeoutErr))
		assert.Equal(t, "running", timeoutErr.LastStatus)
		assert.Equal(t, insightvm.StateRunning, timeoutErr.LastState)
	})

	t.Run("unknown status keeps waiting", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			status := "re-verifying" // not in the vocabulary
			if calls.Add(1) >= 3 {
				status = "finished"
			}

			_ = json.NewEncoder(writer).Encode(insightvm.Scan{ID: 9001, Status: status})
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		scan, err := client.Scans().WaitForCompletion(context.Background(), 9001, insightvm.PollPolicy{
			Interval: 5 * time.Millisecond,
			Timeout:  time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "finished", scan.Status)
	})

	t.Run("API failure aborts the wait", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{"status": 404, "message": "Scan not found"})
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		_, err := client.Scans().WaitForCompletion(context.Background(), 404404, insightvm.PollPolicy{
			Interval: 5 * time.Millisecond,
			Timeout:  time.Second,
		})
		require.Error(t, err)
		assert.True(t, insightvm.IsNotFound(err))
	})

	t.Run("stopped scan is terminal", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_ = json.NewEncoder(writer).Encode(insightvm.Scan{ID: 9001, Status: "stopped"})
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		scan, err := client.Scans().WaitForCompletion(context.Background(), 9001, insightvm.PollPolicy{
			Interval: 5 * time.Millisecond,
			Timeout:  time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "stopped", scan.Status)
	})
}
