package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// apiURL is the base URL for the nidgate API.
// Override with NIDGATE_API_URL env var.
var apiURL = "http://localhost:8090/api/v1"

func TestMain(m *testing.M) {
	if os.Getenv("NIDGATE_E2E") == "" {
		fmt.Println("Skipping e2e tests (set NIDGATE_E2E=1 to run)")
		os.Exit(0)
	}
	if u := os.Getenv("NIDGATE_API_URL"); u != "" {
		apiURL = u
	}
	os.Exit(m.Run())
}

// uniqueName returns a client name that will not collide with rows left over
// from earlier runs.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func doRequest(t *testing.T, method, url, apiKey string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func httpGet(t *testing.T, url, apiKey string) (*http.Response, []byte) {
	t.Helper()
	return doRequest(t, http.MethodGet, url, apiKey, nil)
}

func httpPost(t *testing.T, url, apiKey string, body any) (*http.Response, []byte) {
	t.Helper()
	return doRequest(t, http.MethodPost, url, apiKey, body)
}

func httpDelete(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	return doRequest(t, http.MethodDelete, url, "", nil)
}

func parseJSON(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), "body: %s", raw)
	return m
}

// requireJSONList decodes a bare JSON array response.
func requireJSONList(t *testing.T, raw []byte, v *[]map[string]any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), "body: %s", raw)
}

// createClient registers a fresh client and returns its id and API key.
func createClient(t *testing.T, name string) (string, string) {
	t.Helper()

	resp, raw := httpPost(t, apiURL+"/clients", "", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create client: %s", raw)

	body := parseJSON(t, raw)
	id, _ := body["id"].(string)
	key, _ := body["api_key"].(string)
	require.NotEmpty(t, id)
	require.NotEmpty(t, key)
	return id, key
}
