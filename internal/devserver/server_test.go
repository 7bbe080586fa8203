package devserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edushare-client/internal/models"
)

func postLogin(t *testing.T, url, username, password string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(url+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestLoginDoesNotRevealWhichCredentialWasWrong(t *testing.T) {
	srv := New(Config{}, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	unknownUser := postLogin(t, ts.URL, "ghost", "whatever")
	defer unknownUser.Body.Close()
	wrongPassword := postLogin(t, ts.URL, "admin", "whatever")
	defer wrongPassword.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, unknownUser.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)

	a, _ := io.ReadAll(unknownUser.Body)
	b, _ := io.ReadAll(wrongPassword.Body)
	assert.JSONEq(t, string(a), string(b))
}

func TestDownloadRejectsBadQueryToken(t *testing.T) {
	srv := New(Config{}, nil)
	srv.SeedDocument(models.Document{ID: "d1", Title: "TD1", Type: models.TypeTD, Subject: "Algorithmique"}, []byte("x"))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/documents/download/d1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/documents/download/d1?token=forged")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	srv := New(Config{}, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/test")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "edushare_http_requests_total")
}
