package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neighborly/internal/cache"
	"neighborly/internal/config"
	"neighborly/internal/database"
	"neighborly/internal/middleware"
)

type testEnv struct {
	app *fiber.App
	srv *Server
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Port:           "0",
		JWTSecret:      "test-secret-test-secret-test-secret",
		Env:            "test",
		PushGatewayURL: "http://127.0.0.1:1/push",
		PushChunkSize:  100,
	}
	middleware.InitMiddleware(cfg)

	db, err := database.ConnectTest()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	srv := NewServerWithDeps(cfg, db, rdb)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	srv.SetupRoutes(app)

	return &testEnv{app: app, srv: srv}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

func (e *testEnv) signup(t *testing.T, name, building string) (string, uint) {
	t.Helper()
	resp, body := e.request(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     name,
		"email":    fmt.Sprintf("%s@example.com", name),
		"password": "password123",
		"building": building,
		"block":    "A",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "signup failed: %v", body)
	token := body["token"].(string)
	user := body["user"].(map[string]any)
	return token, uint(user["id"].(float64))
}

func TestAuthFlow(t *testing.T) {
	env := setupEnv(t)

	token, _ := env.signup(t, "asha", "Oakwood Tower")
	require.NotEmpty(t, token)

	t.Run("login works", func(t *testing.T) {
		resp, body := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "asha@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		resp, _ := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "asha@example.com",
			"password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		resp, _ := env.request(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
			"name":     "impostor",
			"email":    "asha@example.com",
			"password": "password123",
			"building": "Oakwood Tower",
			"block":    "B",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("feed requires auth", func(t *testing.T) {
		resp, _ := env.request(t, http.MethodGet, "/api/feed", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestPostLifecycle(t *testing.T) {
	env := setupEnv(t)
	author, _ := env.signup(t, "ben", "Oakwood Tower")
	neighbor, _ := env.signup(t, "carmen", "Oakwood Tower")
	outsider, _ := env.signup(t, "dev", "Maple Court")

	resp, body := env.request(t, http.MethodPost, "/api/posts", author, map[string]any{
		"text":     "Elevator maintenance on Monday",
		"category": "Maintenance",
		"block":    "A",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %v", body)
	postID := uint(body["id"].(float64))
	assert.Equal(t, "Oakwood Tower", body["building"])

	t.Run("neighbor sees it in feed", func(t *testing.T) {
		resp, body := env.request(t, http.MethodGet, "/api/feed", neighbor, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		items := body["items"].([]any)
		require.Len(t, items, 1)
	})

	t.Run("outsider feed is empty", func(t *testing.T) {
		resp, body := env.request(t, http.MethodGet, "/api/feed", outsider, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, body["items"])
	})

	t.Run("outsider cannot fetch it directly", func(t *testing.T) {
		resp, _ := env.request(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), outsider, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("comments", func(t *testing.T) {
		resp, _ := env.request(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID), neighbor, map[string]any{
			"text": "Thanks for the heads-up",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, _ = env.request(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", postID), author, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("report then duplicate report", func(t *testing.T) {
		resp, body := env.request(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/report", postID), neighbor, map[string]any{
			"reason": "outdated",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(1), body["report_count"])

		resp, _ = env.request(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/report", postID), neighbor, map[string]any{
			"reason": "outdated again",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("pin requires admin", func(t *testing.T) {
		resp, _ := env.request(t, http.MethodPut, fmt.Sprintf("/api/posts/%d/pin", postID), author, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("author deletes own post", func(t *testing.T) {
		resp, _ := env.request(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", postID), neighbor, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = env.request(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", postID), author, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestPollVoting(t *testing.T) {
	env := setupEnv(t)
	author, _ := env.signup(t, "elif", "Oakwood Tower")
	voter, _ := env.signup(t, "farid", "Oakwood Tower")

	resp, body := env.request(t, http.MethodPost, "/api/polls", author, map[string]any{
		"question": "Should we repaint the lobby?",
		"options":  []string{"Yes", "No"},
		"category": "Other",
		"block":    "A",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create failed: %v", body)
	pollID := uint(body["id"].(float64))

	vote := func(idx int) map[string]any {
		resp, body := env.request(t, http.MethodPost, fmt.Sprintf("/api/polls/%d/vote", pollID), voter, map[string]any{
			"option_index": idx,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "vote failed: %v", body)
		return body
	}

	tally := func(body map[string]any, idx int) float64 {
		options := body["options"].([]any)
		return options[idx].(map[string]any)["vote_count"].(float64)
	}

	body = vote(0)
	assert.Equal(t, float64(1), tally(body, 0))
	assert.Equal(t, float64(0), tally(body, 1))
	assert.Equal(t, float64(0), body["viewer_vote"])

	// Re-voting moves the vote rather than stacking a second one.
	body = vote(1)
	assert.Equal(t, float64(0), tally(body, 0))
	assert.Equal(t, float64(1), tally(body, 1))
	assert.Equal(t, float64(1), body["viewer_vote"])

	t.Run("out of range index rejected", func(t *testing.T) {
		resp, _ := env.request(t, http.MethodPost, fmt.Sprintf("/api/polls/%d/vote", pollID), voter, map[string]any{
			"option_index": 5,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUserSettings(t *testing.T) {
	env := setupEnv(t)
	token, _ := env.signup(t, "gina", "Cedar Heights")

	t.Run("mute categories", func(t *testing.T) {
		resp, body := env.request(t, http.MethodPut, "/api/users/me/settings", token, map[string]any{
			"muted_categories": []string{"Buy/Sell"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		muted := body["muted_categories"].([]any)
		assert.Equal(t, "Buy/Sell", muted[0])
	})

	t.Run("invalid category rejected", func(t *testing.T) {
		resp, _ := env.request(t, http.MethodPut, "/api/users/me/settings", token, map[string]any{
			"muted_categories": []string{"Gossip"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("push token format enforced", func(t *testing.T) {
		resp, _ := env.request(t, http.MethodPut, "/api/users/me/push-token", token, map[string]any{
			"push_token": "not-a-token",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, _ = env.request(t, http.MethodPut, "/api/users/me/push-token", token, map[string]any{
			"push_token": "ExponentPushToken[abc]",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("rename", func(t *testing.T) {
		resp, body := env.request(t, http.MethodPut, "/api/users/me", token, map[string]any{
			"name": "Gina R.",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Gina R.", body["name"])
	})
}

func TestMutedCategoryHiddenFromFeed(t *testing.T) {
	env := setupEnv(t)
	author, _ := env.signup(t, "hana", "Oakwood Tower")
	viewer, _ := env.signup(t, "ivan", "Oakwood Tower")

	resp, _ := env.request(t, http.MethodPost, "/api/posts", author, map[string]any{
		"text":     "Selling a bookshelf",
		"category": "Buy/Sell",
		"block":    "A",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPut, "/api/users/me/settings", viewer, map[string]any{
		"muted_categories": []string{"Buy/Sell"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.request(t, http.MethodGet, "/api/feed", viewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["items"])

	// The explicit category filter overrides the viewer's mute.
	resp, body = env.request(t, http.MethodGet, "/api/feed?category=Buy%2FSell", viewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"].([]any), 1)
}
