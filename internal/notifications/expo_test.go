package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidAddress(t *testing.T) {
	g := NewExpoGateway("")

	assert.True(t, g.IsValidAddress("ExponentPushToken[abc123]"))
	assert.True(t, g.IsValidAddress("ExpoPushToken[xyz]"))
	assert.False(t, g.IsValidAddress(""))
	assert.False(t, g.IsValidAddress("ExponentPushToken[]"))
	assert.False(t, g.IsValidAddress("FCMToken[abc]"))
	assert.False(t, g.IsValidAddress("ExponentPushToken[abc"))
}

func TestChunk(t *testing.T) {
	msgs := make([]PushMessage, 250)

	chunks := Chunk(msgs, 100)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)

	assert.Nil(t, Chunk(nil, 100))

	// Non-positive size falls back to the provider default.
	chunks = Chunk(msgs, 0)
	require.Len(t, chunks, 3)

	chunks = Chunk(msgs[:5], 2)
	require.Len(t, chunks, 3)
}

func TestExpoGatewaySend(t *testing.T) {
	var gotBody []PushMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		tickets := make([]map[string]string, len(gotBody))
		for i := range tickets {
			tickets[i] = map[string]string{"status": "ok", "id": "t"}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": tickets})
	}))
	defer srv.Close()

	g := NewExpoGateway(srv.URL)
	tickets, err := g.Send(context.Background(), []PushMessage{
		{To: "ExponentPushToken[a]", Title: "New post in Oakwood Tower", Body: "hello"},
		{To: "ExponentPushToken[b]", Title: "New post in Oakwood Tower", Body: "hello"},
	})
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "ok", tickets[0].Status)
	require.Len(t, gotBody, 2)
	assert.Equal(t, "ExponentPushToken[a]", gotBody[0].To)
}

func TestExpoGatewaySend_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewExpoGateway(srv.URL)
	_, err := g.Send(context.Background(), []PushMessage{{To: "ExponentPushToken[a]"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
