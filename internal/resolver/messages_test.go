package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messagesDoc = `{
  "welcome_messages": {"company_fit_prompt": "Type a role to compare."},
  "error_messages": {"out_of_scope": "Off topic, sorry.", "general_fallback": ""}
}`

func TestParseSystemMessages(t *testing.T) {
	msgs, err := ParseSystemMessages([]byte(messagesDoc))
	require.NoError(t, err)

	assert.Equal(t, "Type a role to compare.", msgs.CompanyFitPrompt)
	assert.Equal(t, "Off topic, sorry.", msgs.OutOfScope)
	assert.Equal(t, DefaultGeneralFallback, msgs.GeneralFallback, "blank field keeps default")
	assert.Equal(t, DefaultErrorMessage, msgs.ErrorMessage)

	msgs, err = ParseSystemMessages([]byte("not json"))
	assert.Error(t, err)
	assert.Equal(t, DefaultSystemMessages(), msgs)
}

func TestLoadSystemMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/data/system-message_kb.json" {
			_, _ = w.Write([]byte(messagesDoc))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ctx := context.Background()

	msgs := LoadSystemMessages(ctx, srv.URL+"/data/system-message_kb.json", srv.Client(), nil)
	assert.Equal(t, "Off topic, sorry.", msgs.OutOfScope)

	msgs = LoadSystemMessages(ctx, srv.URL+"/missing.json", srv.Client(), nil)
	assert.Equal(t, DefaultSystemMessages(), msgs)

	assert.Equal(t, DefaultSystemMessages(), LoadSystemMessages(ctx, "", nil, nil))

	path := filepath.Join(t.TempDir(), "messages.json")
	require.NoError(t, os.WriteFile(path, []byte(messagesDoc), 0o600))
	msgs = LoadSystemMessages(ctx, path, nil, nil)
	assert.Equal(t, "Type a role to compare.", msgs.CompanyFitPrompt)
}
