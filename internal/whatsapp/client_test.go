package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"whatsapp-responder/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path   string
	Header http.Header
	Body   map[string]interface{}
}

// newTestClient returns a client pointed at a test Graph server that answers
// with status and body, plus a func returning every request it saw.
func newTestClient(t *testing.T, status int, body string) (*Client, func() []capturedRequest) {
	t.Helper()

	var mu sync.Mutex
	var reqs []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &decoded))

		mu.Lock()
		reqs = append(reqs, capturedRequest{Path: r.URL.Path, Header: r.Header.Clone(), Body: decoded})
		mu.Unlock()

		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		GraphBaseURL:    server.URL + "/v17.0",
		PhoneNumberID:   "1000",
		WhatsAppToken:   "test-token",
		WhatsAppTimeout: time.Second,
	}
	return NewClient(cfg), func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), reqs...)
	}
}

const okBody = `{"messaging_product":"whatsapp","contacts":[{"input":"966511111111","wa_id":"966511111111"}],"messages":[{"id":"wamid.OUT"}]}`

func TestClient_SendMessage(t *testing.T) {
	client, requests := newTestClient(t, http.StatusOK, okBody)

	err := client.SendMessage(context.Background(), "966511111111", "hello")
	require.NoError(t, err)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/v17.0/1000/messages", reqs[0].Path)
	assert.Equal(t, "Bearer test-token", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                "966511111111",
		"type":              "text",
		"text":              map[string]interface{}{"body": "hello"},
	}, reqs[0].Body)
}

func TestClient_SendButton(t *testing.T) {
	client, requests := newTestClient(t, http.StatusOK, okBody)

	err := client.SendButton(context.Background(), "966511111111", "shop here", "Visit Store", "https://askr-aj.com/")
	require.NoError(t, err)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "interactive", reqs[0].Body["type"])
	assert.Equal(t, map[string]interface{}{
		"type": "cta_url",
		"body": map[string]interface{}{"text": "shop here"},
		"action": map[string]interface{}{
			"name": "cta_url",
			"parameters": map[string]interface{}{
				"display_text": "Visit Store",
				"url":          "https://askr-aj.com/",
			},
		},
	}, reqs[0].Body["interactive"])
}

func TestClient_SendMenu(t *testing.T) {
	t.Run("reply buttons", func(t *testing.T) {
		client, requests := newTestClient(t, http.StatusOK, okBody)

		err := client.SendMenu(context.Background(), "966511111111", "welcome", []MenuButton{
			{ID: "link", Title: "Store"},
			{ID: "support_request", Title: "Agent"},
		})
		require.NoError(t, err)

		reqs := requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, "individual", reqs[0].Body["recipient_type"])
		interactive := reqs[0].Body["interactive"].(map[string]interface{})
		assert.Equal(t, "button", interactive["type"])
		buttons := interactive["action"].(map[string]interface{})["buttons"].([]interface{})
		require.Len(t, buttons, 2)
		assert.Equal(t, map[string]interface{}{
			"type":  "reply",
			"reply": map[string]interface{}{"id": "support_request", "title": "Agent"},
		}, buttons[1])
	})

	t.Run("too many buttons", func(t *testing.T) {
		client, requests := newTestClient(t, http.StatusOK, okBody)

		err := client.SendMenu(context.Background(), "966511111111", "welcome", []MenuButton{
			{ID: "a", Title: "A"}, {ID: "b", Title: "B"}, {ID: "c", Title: "C"}, {ID: "d", Title: "D"},
		})
		require.Error(t, err)
		assert.Equal(t, KindInvalid, KindOf(err))
		assert.Empty(t, requests())
	})
}

func TestClient_MarkAsRead(t *testing.T) {
	client, requests := newTestClient(t, http.StatusOK, `{"success":true}`)

	require.NoError(t, client.MarkAsRead(context.Background(), "wamid.IN"))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]interface{}{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        "wamid.IN",
	}, reqs[0].Body)

	err := client.MarkAsRead(context.Background(), "")
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestClient_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusUnauthorized,
			`{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`)

		err := client.SendMessage(context.Background(), "966511111111", "hello")
		require.Error(t, err)

		var sendErr *SendError
		require.True(t, errors.As(err, &sendErr))
		assert.Equal(t, KindAPI, sendErr.Kind)
		assert.Equal(t, http.StatusUnauthorized, sendErr.StatusCode)
		assert.Equal(t, 190, sendErr.APICode)
		assert.Contains(t, sendErr.Body, "OAuthException")
		assert.EqualError(t, sendErr.Unwrap(), "Invalid OAuth access token.")
	})

	t.Run("api error without json body", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusBadGateway, "bad gateway")

		err := client.SendMessage(context.Background(), "966511111111", "hello")
		assert.Equal(t, KindAPI, KindOf(err))
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("transport error", func(t *testing.T) {
		cfg := &config.Config{
			GraphBaseURL:    "http://invalid.localhost:0",
			PhoneNumberID:   "1000",
			WhatsAppTimeout: time.Second,
		}
		err := NewClient(cfg).SendMessage(context.Background(), "966511111111", "hello")
		assert.Equal(t, KindTransport, KindOf(err))
	})

	t.Run("request timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		cfg := &config.Config{GraphBaseURL: server.URL, PhoneNumberID: "1000", WhatsAppTimeout: 10 * time.Millisecond}
		err := NewClient(cfg).SendMessage(context.Background(), "966511111111", "hello")
		assert.Equal(t, KindTransport, KindOf(err))
	})

	t.Run("missing recipient", func(t *testing.T) {
		client, requests := newTestClient(t, http.StatusOK, okBody)
		err := client.SendMessage(context.Background(), "", "hello")
		assert.Equal(t, KindInvalid, KindOf(err))
		assert.Empty(t, requests())
	})

	t.Run("plain errors have unknown kind", func(t *testing.T) {
		assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
		assert.Equal(t, KindUnknown, KindOf(nil))
	})
}

type recordedSend struct {
	to, messageID, content, msgType string
	err                             error
}

type fakeRecorder struct {
	sends []recordedSend
}

func (f *fakeRecorder) RecordOutgoing(_ context.Context, to, messageID, content, msgType string, sendErr error) {
	f.sends = append(f.sends, recordedSend{to, messageID, content, msgType, sendErr})
}

func TestClient_Recorder(t *testing.T) {
	t.Run("records replies but not read receipts", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusOK, okBody)
		rec := &fakeRecorder{}
		client.Recorder = rec

		require.NoError(t, client.MarkAsRead(context.Background(), "wamid.IN"))
		require.NoError(t, client.SendButton(context.Background(), "966511111111", "map", "Open Map", "https://maps.example"))

		require.Len(t, rec.sends, 1)
		assert.Equal(t, "966511111111", rec.sends[0].to)
		assert.Equal(t, "wamid.OUT", rec.sends[0].messageID)
		assert.Equal(t, "interactive", rec.sends[0].msgType)
		assert.Equal(t, "map\nhttps://maps.example", rec.sends[0].content)
		assert.NoError(t, rec.sends[0].err)
	})

	t.Run("records failures", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusInternalServerError, "oops")
		rec := &fakeRecorder{}
		client.Recorder = rec

		require.Error(t, client.SendMessage(context.Background(), "966511111111", "hello"))
		require.Len(t, rec.sends, 1)
		assert.Empty(t, rec.sends[0].messageID)
		assert.Equal(t, KindAPI, KindOf(rec.sends[0].err))
	})
}
