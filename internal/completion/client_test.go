package completion

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

	"github.com/spherical-ai/profile-assistant/internal/domain"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Endpoint: url,
		APIKey:   "sk-test",
		Timeout:  timeout,
		Retry:    fastRetry(),
	}, nil)
	require.NoError(t, err)
	return c
}

func writeCompletion(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{
		ID:      "cmpl-1",
		Choices: []Choice{{Message: Message{Role: "assistant", Content: text}, FinishReason: "stop"}},
	})
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantError bool
		model     string
	}{
		{"default model", Config{APIKey: "sk-test"}, false, defaultModel},
		{"custom model", Config{APIKey: "sk-test", Model: "gpt-4o-mini"}, false, "gpt-4o-mini"},
		{"missing key", Config{}, true, ""},
		{"blank key", Config{APIKey: "  "}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg, nil)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.model, client.Model())
			assert.Equal(t, defaultTimeout, client.timeout)
		})
	}
}

func TestClient_CompleteRequestShape(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "  Jon built ZARA's design system.  ")
	}))
	defer srv.Close()

	text, err := newTestClient(t, srv.URL, time.Second).Complete(context.Background(), "be brief", "What did Jon build?")
	require.NoError(t, err)

	assert.Equal(t, "Jon built ZARA's design system.", text)
	assert.Equal(t, defaultModel, got.Model)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.InDelta(t, defaultTemperature, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, Message{Role: "system", Content: "be brief"}, got.Messages[0])
	assert.Equal(t, Message{Role: "user", Content: "What did Jon build?"}, got.Messages[1])
}

func TestClient_CompleteWithoutSystemPrompt(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeCompletion(w, "ok")
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, time.Second).Complete(context.Background(), "", "hello")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeCompletion(w, "third time lucky")
	}))
	defer srv.Close()

	text, err := newTestClient(t, srv.URL, time.Second).Complete(context.Background(), "", "q")
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "non-retryable status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad key", http.StatusUnauthorized)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsType(err, domain.ErrorTypeAPI))
				assert.Contains(t, err.Error(), "401")
			},
		},
		{
			name: "retries exhausted",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsType(err, domain.ErrorTypeAPI))
				assert.Contains(t, err.Error(), "HTTP 429")
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
			check: func(t *testing.T, err error) {
				assert.True(t, domain.IsType(err, domain.ErrorTypeParse))
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrEmptyCompletion))
			},
		},
		{
			name: "blank text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeCompletion(w, "   ")
			},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrEmptyCompletion))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			text, err := newTestClient(t, srv.URL, time.Second).Complete(context.Background(), "", "q")
			require.Error(t, err)
			assert.Empty(t, text)
			tc.check(t, err)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := newTestClient(t, srv.URL, 50*time.Millisecond).Complete(context.Background(), "", "q")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCalculateBackoff(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 5, InitialBackoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, calculateBackoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, calculateBackoff(1, cfg))
	assert.Equal(t, 300*time.Millisecond, calculateBackoff(2, cfg))
	assert.True(t, shouldRetry(http.StatusBadGateway))
	assert.False(t, shouldRetry(http.StatusBadRequest))
}
