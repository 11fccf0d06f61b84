// Package notifications delivers creation notices to building residents via
// push and publishes feed events for connected clients.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// DefaultChunkSize is the largest batch the push provider accepts per request.
const DefaultChunkSize = 100

var expoTokenRe = regexp.MustCompile(`^(ExponentPushToken|ExpoPushToken)\[[^\]]+\]$`)

// PushMessage is one notification addressed to a single device token.
type PushMessage struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
	Sound string         `json:"sound,omitempty"`
}

// PushTicket is the provider's per-message receipt.
type PushTicket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Gateway abstracts the push provider so the dispatcher can be tested
// without network access.
type Gateway interface {
	// IsValidAddress reports whether the token is deliverable.
	IsValidAddress(token string) bool
	// Send delivers one chunk of messages and returns a ticket per message.
	Send(ctx context.Context, messages []PushMessage) ([]PushTicket, error)
}

// ExpoGateway talks to the Expo push HTTP endpoint.
type ExpoGateway struct {
	url    string
	client *http.Client
}

// NewExpoGateway creates a gateway targeting the given push endpoint URL.
func NewExpoGateway(url string) *ExpoGateway {
	return &ExpoGateway{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *ExpoGateway) IsValidAddress(token string) bool {
	return expoTokenRe.MatchString(token)
}

func (g *ExpoGateway) Send(ctx context.Context, messages []PushMessage) ([]PushTicket, error) {
	body, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("marshal push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send push chunk: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read push response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("push endpoint returned %d: %s", resp.StatusCode, raw)
	}

	var parsed struct {
		Data []PushTicket `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode push response: %w", err)
	}
	return parsed.Data, nil
}

// Chunk splits messages into provider-sized batches. A size of zero or less
// falls back to DefaultChunkSize.
func Chunk(messages []PushMessage, size int) [][]PushMessage {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks [][]PushMessage
	for len(messages) > 0 {
		n := size
		if len(messages) < n {
			n = len(messages)
		}
		chunks = append(chunks, messages[:n])
		messages = messages[n:]
	}
	return chunks
}
