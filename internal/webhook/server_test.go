package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h *countingHandler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer("topsecret", NewDispatcher(h, time.Second, nil)).Router())
	t.Cleanup(srv.Close)
	return srv
}

func decodeOK(t *testing.T, resp *http.Response) {
	t.Helper()
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["ok"])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &countingHandler{})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeOK(t, resp)
}

func TestWebhook_WrongSecret(t *testing.T) {
	h := &countingHandler{}
	srv := newTestServer(t, h)

	body := `{"update_id":1,"message":{"message_id":1,"text":"/start ad1"}}`
	resp, err := http.Post(srv.URL+"/webhook/wrong", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, h.count(), "rejected requests must not reach handlers")
}

func TestWebhook_MalformedBody(t *testing.T) {
	h := &countingHandler{}
	srv := newTestServer(t, h)

	resp, err := http.Post(srv.URL+"/webhook/topsecret", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, h.count())
}

func TestWebhook_DispatchesUpdate(t *testing.T) {
	h := &countingHandler{}
	srv := newTestServer(t, h)

	body := `{
		"update_id": 10,
		"chat_join_request": {
			"chat": {"id": -100},
			"from": {"id": 42},
			"date": 0
		}
	}`
	resp, err := http.Post(srv.URL+"/webhook/topsecret", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeOK(t, resp)
	assert.Equal(t, 1, h.count())
}

func TestWebhook_HandlerFailureStillAcknowledged(t *testing.T) {
	h := &countingHandler{err: assert.AnError}
	srv := newTestServer(t, h)

	body := `{"update_id":11,"chat_join_request":{"chat":{"id":-100},"from":{"id":42},"date":0}}`
	resp, err := http.Post(srv.URL+"/webhook/topsecret", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeOK(t, resp)
}

func TestWebhook_UnrecognizedUpdateAccepted(t *testing.T) {
	h := &countingHandler{}
	srv := newTestServer(t, h)

	// An edited_message is a valid update this bot does not act on.
	body := `{"update_id":12,"edited_message":{"message_id":5,"text":"hi"}}`
	resp, err := http.Post(srv.URL+"/webhook/topsecret", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, h.count())
}
