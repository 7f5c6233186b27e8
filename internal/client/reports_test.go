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

func TestReportsCreate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/3/reports", request.URL.Path)
		assert.Equal(t, "POST", request.Method)

		var body insightvm.ReportCreateRequest

		err := json.NewDecoder(request.Body).Decode(&body)
		require.NoError(t, err)
		assert.Equal(t, "monthly", body.Name)
		assert.Equal(t, "pdf", body.Format)

		writer.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(writer).Encode(insightvm.CreatedReference{ID: 31})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	ref, err := client.Reports().Create(context.Background(), &insightvm.ReportCreateRequest{
		Name:   "monthly",
		Format: "pdf",
		Scope:  &insightvm.ReportScope{Sites: []int64{12}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(31), ref.ID)
}

func TestReportsGenerate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/3/reports/31/generate", request.URL.Path)
		assert.Equal(t, "POST", request.Method)

		writer.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(writer).Encode(insightvm.CreatedReference{ID: 105})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	instanceID, err := client.Reports().Generate(context.Background(), 31)
	require.NoError(t, err)
	assert.Equal(t, int64(105), instanceID)
}

func TestReportsGetInstance(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/3/reports/31/history/105", request.URL.Path)

		_ = json.NewEncoder(writer).Encode(insightvm.ReportInstance{ID: 105, Status: "running"})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	instance, err := client.Reports().GetInstance(context.Background(), 31, 105)
	require.NoError(t, err)
	assert.Equal(t, "running", instance.Status)
}

func TestReportsWaitForGeneration(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		status := "running"
		if calls.Add(1) >= 3 {
			status = "complete"
		}

		_ = json.NewEncoder(writer).Encode(insightvm.ReportInstance{ID: 105, Status: status})
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	instance, err := client.Reports().WaitForGeneration(context.Background(), 31, 105, insightvm.PollPolicy{
		Interval: 5 * time.Millisecond,
		Timeout:  time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "complete", instance.Status)
}

func TestReportsDownload(t *testing.T) {
	t.Parallel()

	payload := []byte{0x1f, 0x8b, 0x08, 0x00, 0x01, 0x02, 0x03, 0x04}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/3/reports/31/history/105/output", request.URL.Path)

		writer.Header().Set("Content-Type", "application/octet-stream")
		_, _ = writer.Write(payload)
	}))
	defer server.Close()

	client := NewTestClient(server.URL)

	data, err := client.Reports().Download(context.Background(), 31, 105)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestReportsGenerateAndDownload(t *testing.T) {
	t.Parallel()
	t.Run("full flow", func(t *testing.T) {
		t.Parallel()

		payload := []byte("report-bytes")

		var polls atomic.Int64

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			switch request.URL.Path {
			case "/api/3/reports/31/generate":
				writer.WriteHeader(http.StatusCreated)
				_ = json.NewEncoder(writer).Encode(insightvm.CreatedReference{ID: 105})
			case "/api/3/reports/31/history/105":
				status := "running"
				if polls.Add(1) >= 2 {
					status = "complete"
				}

				_ = json.NewEncoder(writer).Encode(insightvm.ReportInstance{ID: 105, Status: status})
			case "/api/3/reports/31/history/105/output":
				_, _ = writer.Write(payload)
			default:
				t.Errorf("unexpected path %s", request.URL.Path)
			}
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		data, err := client.Reports().GenerateAndDownload(context.Background(), 31, insightvm.PollPolicy{
			Interval: 5 * time.Millisecond,
			Timeout:  time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("failed generation is not downloaded", func(t *testing.T) {
		t.Parallel()

		var downloads atomic.Int64

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			switch request.URL.Path {
			case "/api/3/reports/31/generate":
				writer.WriteHeader(http.StatusCreated)
				_ = json.NewEncoder(writer).Encode(insightvm.CreatedReference{ID: 106})
			case "/api/3/reports/31/history/106":
				_ = json.NewEncoder(writer).Encode(insightvm.ReportInstance{ID: 106, Status: "failed"})
			default:
				downloads.Add(1)
			}
		}))
		defer server.Close()

		client := NewTestClient(server.URL)

		_, err := client.Reports().GenerateAndDownload(context.Background(), 31, insightvm.PollPolicy{
			Interval: 5 * time.Millisecond,
			Timeout:  time.Second,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrReportNotComplete))
		assert.Equal(t, int64(0), downloads.Load())
	})
}

func TestReportsTemplates(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/3/report_templates", request.URL.Path)
		calls.Add(1)

		writePage(writer, []insightvm.ReportTemplate{
			{ID: "audit-report", Name: "Audit Report", BuiltIn: true},
			{ID: "executive-overview", Name: "Executive Overview", BuiltIn: true},
		}, 0, 500, 2)
	}))
	defer server.Close()

	client := NewTestClientWithCache(server.URL, insightvm.NewMemoryCache(10))

	templates, err := client.Reports().Templates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "audit-report", templates[0].ID)

	// Second lookup is served from the cache.
	templates, err = client.Reports().Templates(context.Background())
	require.NoError(t, err)
	assert.Len(t, templates, 2)
	assert.Equal(t, int64(1), calls.Load())
}
