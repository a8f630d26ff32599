// Package transport is the HTTP and WebSocket display surface: it renders
// nothing itself, it feeds ordered visible message lists to clients and
// relays their send/hide/search actions to the services.
package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"newsdesk/domain"
	"newsdesk/errors"
	"newsdesk/services"
)

type Handler struct {
	Log  *slog.Logger
	Auth services.IAuthService
	News services.INewsService
	Chat services.IChatService

	AllowedOrigins []string
	// Outbound frame buffer per chat connection.
	ConnectionBufferSize int
}

func New(log *slog.Logger, auth services.IAuthService, news services.INewsService,
	chat services.IChatService, allowedOrigins []string, connectionBufferSize int) *Handler {
	return &Handler{
		Log:                  log,
		Auth:                 auth,
		News:                 news,
		Chat:                 chat,
		AllowedOrigins:       allowedOrigins,
		ConnectionBufferSize: connectionBufferSize,
	}
}

func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/signup", h.HandleSignup).Methods(http.MethodPost)
	api.HandleFunc("/login", h.HandleLogin).Methods(http.MethodPost)
	api.HandleFunc("/news", h.HandleNews).Methods(http.MethodGet)
	api.HandleFunc("/news/search", h.HandleSearch).Methods(http.MethodGet)
	r.HandleFunc("/ws/chat", h.HandleChatSocket).Methods(http.MethodGet)
	return r
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	h.handleCredentials(w, r, h.Auth.Register)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.handleCredentials(w, r, h.Auth.Login)
}

func (h *Handler) handleCredentials(w http.ResponseWriter, r *http.Request,
	authenticate func(email, password string) (services.Session, error)) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := authenticate(req.Email, req.Password)
	if err != nil {
		h.writeError(w, errors.MapToHTTPStatus(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, sessionResponse{
		Token:       session.Token,
		UserID:      session.Identity.ID,
		DisplayName: session.Identity.DisplayName,
	})
}

type newsResponse struct {
	Articles []domain.Article `json:"articles"`
	// ChatEntry signals the client to switch to the hidden room. It is only
	// ever true for the secret keyword; a fruitless search stays false.
	ChatEntry bool `json:"chatEntry"`
}

func (h *Handler) HandleNews(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, newsResponse{Articles: h.News.List()})
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	result, err := h.News.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, errors.MapToHTTPStatus(err), "search failed")
		return
	}
	h.writeJSON(w, http.StatusOK, newsResponse{Articles: result.Articles, ChatEntry: result.ChatEntry})
}

// identity resolves the authenticated viewer from the Authorization header,
// falling back to the "token" query parameter for WebSocket dials where
// browsers cannot set headers.
func (h *Handler) identity(r *http.Request) (domain.Identity, error) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || token == r.Header.Get("Authorization") {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return domain.Identity{}, errors.ErrMissingIdentity
	}
	return h.Auth.Identify(token)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Log.Error("failed to write response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
