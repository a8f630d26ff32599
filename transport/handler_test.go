package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"newsdesk/news"
	"newsdesk/repositories"
	"newsdesk/runtime/workers"
	"newsdesk/services"
	"newsdesk/store"
)

const (
	testKeyword  = "quantum2026"
	testPassword = "Str0ng&Secret#2026"
)

// newTestServer wires the full stack behind an httptest server, with the
// snapshot fanout worker running so live queries actually deliver.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	messageStore := store.NewBadgerStore(db, slog.Default())

	catalog, err := news.LoadCatalog()
	require.NoError(t, err)
	index, err := news.NewIndex(catalog)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	authService := services.NewAuthService(repositories.NewUserRepository(db),
		[]byte("test-secret"), time.Hour)
	newsService := services.NewNewsService(catalog, index, testKeyword, slog.Default())
	chatService := services.NewChatService(messageStore, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	fanout := workers.NewSnapshotFanout(slog.Default(), messageStore)
	go func() { _ = fanout.Run(ctx) }()

	handler := New(slog.Default(), authService, newsService, chatService, nil, 16)
	server := httptest.NewServer(handler.SetupRouter())
	t.Cleanup(server.Close)
	return server
}

func signUp(t *testing.T, server *httptest.Server, email string) sessionResponse {
	t.Helper()
	body, _ := json.Marshal(credentialsRequest{Email: email, Password: testPassword})
	resp, err := http.Post(server.URL+"/api/signup", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session sessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	return session
}

func TestHandler_SignupAndLogin(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	session := signUp(t, server, "reader@example.com")
	req.NotEmpty(session.Token)
	req.NotEmpty(session.UserID)
	req.NotEmpty(session.DisplayName)

	// Duplicate signup conflicts.
	body, _ := json.Marshal(credentialsRequest{Email: "reader@example.com", Password: testPassword})
	resp, err := http.Post(server.URL+"/api/signup", "application/json", bytes.NewReader(body))
	req.NoError(err)
	resp.Body.Close()
	req.Equal(http.StatusConflict, resp.StatusCode)

	// Login round-trips the same account.
	resp, err = http.Post(server.URL+"/api/login", "application/json", bytes.NewReader(body))
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var login sessionResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&login))
	req.Equal(session.UserID, login.UserID)
}

func TestHandler_LoginRejectsBadCredentials(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)
	signUp(t, server, "reader@example.com")

	body, _ := json.Marshal(credentialsRequest{Email: "reader@example.com", Password: "Wrong&Pass#2026x"})
	resp, err := http.Post(server.URL+"/api/login", "application/json", bytes.NewReader(body))
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_SignupRejectsMalformedBody(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/signup", "application/json",
		strings.NewReader("{not json"))
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_NewsFeedAndSearch(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/news")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var feed newsResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&feed))
	req.NotEmpty(feed.Articles)
	req.False(feed.ChatEntry)

	resp, err = http.Get(server.URL + "/api/news/search?q=battery")
	req.NoError(err)
	defer resp.Body.Close()

	var search newsResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&search))
	req.NotEmpty(search.Articles)
	req.False(search.ChatEntry)
}

func TestHandler_SecretKeywordSignalsChatEntry(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/news/search?q=" + testKeyword)
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	var search newsResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&search))
	req.True(search.ChatEntry)
	req.Empty(search.Articles)
}

func TestHandler_ChatSocketRequiresToken(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/ws/chat")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(server.URL + "/ws/chat?token=garbage")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_ChatSocketForbidsNonMembers(t *testing.T) {
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	messageStore := store.NewBadgerStore(db, slog.Default())
	req.NoError(messageStore.SetAllowList(context.Background(), []string{"someone-else"}))

	authService := services.NewAuthService(repositories.NewUserRepository(db),
		[]byte("test-secret"), time.Hour)
	handler := New(slog.Default(), authService, nil,
		services.NewChatService(messageStore, slog.Default()), nil, 16)
	server := httptest.NewServer(handler.SetupRouter())
	t.Cleanup(server.Close)

	session := signUp(t, server, "outsider@example.com")
	resp, err := http.Get(fmt.Sprintf("%s/ws/chat?token=%s", server.URL, session.Token))
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusForbidden, resp.StatusCode)
}
