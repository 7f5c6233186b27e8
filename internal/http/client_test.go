package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talltechy/insightvm-go/internal/auth"
	ivmhttp "github.com/talltechy/insightvm-go/internal/http"
	"github.com/talltechy/insightvm-go/pkg/insightvm"
)

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

func basicProvider(t *testing.T) *auth.BasicProvider {
	t.Helper()

	provider, err := auth.NewBasicProvider("admin", "s3cret")
	require.NoError(t, err)

	return provider
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/3/sites/42", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Accept"))

			username, password, ok := request.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "admin", username)
			assert.Equal(t, "s3cret", password)

			response := map[string]interface{}{"id": 42, "name": "test-site"}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		client := ivmhttp.NewClient(server.URL, basicProvider(t))

		req := &ivmhttp.Request{
			Method: "GET",
			Path:   "sites/42",
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]interface{}

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "test-site", result["name"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/api/3/sites", request.URL.Path)
			assert.Equal(t, "page=2", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := ivmhttp.NewClient(server.URL, nil)

		req := &ivmhttp.Request{
			Method: "GET",
			Path:   "sites",
			Query:  url.Values{"page": []string{"2"}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "test-site", body["name"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := ivmhttp.NewClient(server.URL, nil)

		req := &ivmhttp.Request{
			Method: "POST",
			Path:   "sites",
			Body:   map[string]string{"name": "test-site"},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{
				"status":  404,
				"message": "Site not found",
			})
		}))
		defer server.Close()

		client := ivmhttp.NewClient(server.URL, nil)

		req := &ivmhttp.Request{
			Method: "GET",
			Path:   "sites/999999",
		}

		resp, err := client.Do(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		var apiErr *insightvm.APIError

		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 404, apiErr.StatusCode)
		assert.Equal(t, "Site not found", apiErr.Message)
		assert.True(t, insightvm.IsNotFound(err))
	})

	t.Run("absolute path bypasses API prefix", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/ping", request.URL.Path)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := ivmhttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/ping", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := ivmhttp.NewClient(server.URL, nil)

		req := &ivmhttp.Request{
			Method: "GET",
			Path:   "sites",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
			},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := ivmhttp.NewClient(server.URL, basicProvider(t), ivmhttp.WithLogger(logger), ivmhttp.WithDebug(true))

		req := &ivmhttp.Request{
			Method: "GET",
			Path:   "sites",
		}

		_, err := client.Do(context.Background(), req)
		require.NoError(t, err)

		// Should have logged request and response, without credentials
		require.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])

		for _, entry := range logger.logs {
			fields, ok := entry["fields"].(map[string]interface{})
			require.True(t, ok)

			for _, value := range fields {
				if s, isString := value.(string); isString {
					assert.NotContains(t, s, "s3cret")
				}
			}
		}
	})
}

func TestClient_DoRaw(t *testing.T) {
	t.Parallel()

	// Simulated gzip-compressed report output.
	payload := []byte{0x1f, 0x8b, 0x08, 0x00, 0xde, 0xad, 0xbe, 0xef}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/3/reports/1/history/2/output", request.URL.Path)
		// Raw requests must not ask for JSON.
		assert.NotEqual(t, "application/json", request.Header.Get("Accept"))

		writer.Header().Set("Content-Type", "application/octet-stream")
		_, _ = writer.Write(payload)
	}))
	defer server.Close()

	client := ivmhttp.NewClient(server.URL, basicProvider(t))

	resp, err := client.GetRaw(context.Background(), "reports/1/history/2/output", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, payload, resp.Body)
}

func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*ivmhttp.Client, context.Context) (*ivmhttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *ivmhttp.Client, ctx context.Context) (*ivmhttp.Response, error) {
				return c.Get(ctx, "test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *ivmhttp.Client, ctx context.Context) (*ivmhttp.Response, error) {
				return c.Post(ctx, "test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *ivmhttp.Client, ctx context.Context) (*ivmhttp.Response, error) {
				return c.Put(ctx, "test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *ivmhttp.Client, ctx context.Context) (*ivmhttp.Response, error) {
				return c.Delete(ctx, "test")
			},
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/api/3/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := ivmhttp.NewClient(server.URL, nil)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := ivmhttp.NewClient(server.URL, nil, ivmhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 3, attempts)
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := ivmhttp.NewClient(server.URL, nil, ivmhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 2, attempts)
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++

			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := ivmhttp.NewClient(server.URL, nil, ivmhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "test", nil)
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, 1, attempts) // Should not retry
	})

	t.Run("no retries by default", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++

			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := ivmhttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "test", nil)
		require.Error(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, 1, attempts)
	})
}

func TestClient_TransportErrors(t *testing.T) {
	t.Parallel()
	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		// Grab a port nothing listens on.
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		deadURL := server.URL
		server.Close()

		client := ivmhttp.NewClient(deadURL, nil)

		resp, err := client.Get(context.Background(), "sites", nil)
		require.Error(t, err)
		assert.Nil(t, resp)

		var transportErr *insightvm.TransportError

		require.True(t, errors.As(err, &transportErr))
		assert.False(t, transportErr.TimedOut)
		assert.True(t, insightvm.IsTransient(err))
	})

	t.Run("request timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			time.Sleep(200 * time.Millisecond)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := ivmhttp.NewClient(server.URL, nil, ivmhttp.WithTimeouts(0, 20*time.Millisecond))

		resp, err := client.Get(context.Background(), "sites", nil)
		require.Error(t, err)
		assert.Nil(t, resp)

		var transportErr *insightvm.TransportError

		require.True(t, errors.As(err, &transportErr))
		assert.True(t, transportErr.TimedOut)
		assert.True(t, insightvm.IsTimeout(err))
	})

	t.Run("context deadline exceeded", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			time.Sleep(200 * time.Millisecond)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		client := ivmhttp.NewClient(server.URL, nil)

		_, err := client.Get(ctx, "sites", nil)
		require.Error(t, err)

		var transportErr *insightvm.TransportError

		require.True(t, errors.As(err, &transportErr))
		assert.True(t, transportErr.TimedOut)
	})
}
