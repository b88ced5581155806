package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/answer", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["question"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"question is required","message":"question is required"}`))
			return
		}
		assert.Equal(t, "trace-1", r.Header.Get("X-Trace-ID"))
		_, _ = w.Write([]byte(`{"answer":"Figma daily.","stage":"keyword","stageNumber":1,"intentKey":"skills_design_tools","latencyMs":2}`))
	})
	mux.HandleFunc("POST /api/v1/fit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":"Product Designer","score":92,"title":"Excellent fit!","description":"d",
			"role":{"category":"design","key":"pd","title":"Product Designer","score":92},"keywordHits":0,
			"explanation":"e","explanationSource":"default"}`))
	})
	mux.HandleFunc("GET /api/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"projects":[{"id":"1","order":"1","title":"ZARA","skillsUsed":["UX"]}]}`))
	})
	mux.HandleFunc("GET /broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream down`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Answer(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL+"/", WithHTTPClient(srv.Client()), WithTraceID("trace-1"))

	ans, err := c.Answer(context.Background(), "figma?")
	require.NoError(t, err)
	assert.Equal(t, "Figma daily.", ans.Answer)
	assert.Equal(t, "keyword", ans.Stage)
	assert.Equal(t, 1, ans.StageNumber)
	assert.Equal(t, "skills_design_tools", ans.IntentKey)
}

func TestClient_AnswerError(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()))

	_, err := c.Answer(context.Background(), "")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "question is required", apiErr.Message)
}

func TestClient_NonJSONError(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()))

	err := c.do(context.Background(), http.MethodGet, "/broken", nil, &struct{}{})
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClient_FitAndProjects(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()))
	ctx := context.Background()

	fit, err := c.Fit(ctx, "Product Designer")
	require.NoError(t, err)
	assert.Equal(t, 92, fit.Score)
	assert.Equal(t, "Excellent fit!", fit.Title)
	require.NotNil(t, fit.Role)
	assert.Equal(t, "design", fit.Role.Category)

	list, err := c.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ZARA", list[0].Title)
	assert.Equal(t, []string{"UX"}, list[0].SkillsUsed)
}
