package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/edushare-client/pkg/errors"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func TestAuthorizedCallFailsBeforeIOWithoutToken(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(ts.Close)

	api := New(ts.URL+"/api", ts.Client(), staticTokens(""), nil)
	err := api.Get(context.Background(), "/documents", nil, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrMissingToken))
	assert.False(t, called)
}

func TestBearerHeaderAndRequestID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	t.Cleanup(ts.Close)

	api := New(ts.URL+"/api", ts.Client(), staticTokens("tok-123"), nil)
	var out map[string]string
	require.NoError(t, api.Get(context.Background(), "/documents", nil, &out))
	assert.Equal(t, "yes", out["ok"])
}

func TestUnauthenticatedCallSendsNoBearer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	t.Cleanup(ts.Close)

	api := New(ts.URL+"/api", ts.Client(), staticTokens("tok-123"), nil)
	var out map[string]string
	require.NoError(t, api.GetOpen(context.Background(), "/test", &out))
}

func TestErrorMapping(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "document introuvable"})
	}))
	t.Cleanup(ts.Close)

	api := New(ts.URL+"/api", ts.Client(), staticTokens("tok"), nil)
	err := api.Get(context.Background(), "/documents/x", nil, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Contains(t, err.Error(), "document introuvable")
}

func TestNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	api := New(ts.URL+"/api", nil, staticTokens("tok"), nil)
	err := api.Get(context.Background(), "/documents", nil, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNetwork))
}
