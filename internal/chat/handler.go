package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/tkrell/backend/internal/middleware"
	"github.com/tkrell/backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST API already authenticates; cross-origin websocket
	// upgrades are allowed so the web and mobile clients both work.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	store *Store
	hub   *Hub
}

func NewHandler(store *Store, hub *Hub) *Handler {
	return &Handler{store: store, hub: hub}
}

// StartConversation handles POST /conversations.
func (h *Handler) StartConversation(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)

	var req models.StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.OtherUserID == 0 || req.OtherUserID == userID {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "A valid other_user_id is required"})
		return
	}

	conversation, err := h.store.GetOrCreateConversation(userID, req.OtherUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start conversation"})
		return
	}
	writeJSON(w, http.StatusOK, conversation)
}

// ListConversations handles GET /conversations.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)

	conversations, err := h.store.ListConversations(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load conversations"})
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

// GetMessages handles GET /conversations/{id}/messages.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	conversationID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid conversation id"})
		return
	}

	limit := intQueryParam(r, "limit", 50)
	offset := intQueryParam(r, "offset", 0)

	messages, err := h.store.GetMessages(conversationID, userID, limit, offset)
	if errors.Is(err, ErrNotParticipant) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Conversation not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load messages"})
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// SendMessage handles POST /conversations/{id}/messages. The message is
// persisted first, then pushed to the other party's open sockets.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	conversationID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid conversation id"})
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Content is required"})
		return
	}
	if req.MessageType != "" && !models.ValidMessageTypes[req.MessageType] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid message_type"})
		return
	}

	message, err := h.store.SendMessage(conversationID, userID, req)
	if errors.Is(err, ErrNotParticipant) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Conversation not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to send message"})
		return
	}

	if otherID, err := h.store.OtherParticipant(conversationID, userID); err == nil {
		h.hub.NotifyMessage(otherID, message)
	}

	writeJSON(w, http.StatusCreated, message)
}

// MarkRead handles POST /conversations/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	conversationID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid conversation id"})
		return
	}

	var req models.MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	err = h.store.MarkRead(conversationID, userID, req.MessageIDs)
	if errors.Is(err, ErrNotParticipant) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Conversation not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to mark messages read"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SearchUsers handles GET /users/search?q=.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Query parameter q is required"})
		return
	}

	results, err := h.store.SearchUsers(query, userID, intQueryParam(r, "limit", 10))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to search users"})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// ServeWS handles GET /ws?token=. Browsers cannot set an Authorization
// header on a websocket upgrade, so the JWT rides in the query string.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Token is required"})
		return
	}

	userID, err := middleware.ParseToken(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[chat] websocket upgrade failed: %v", err)
		return
	}

	h.hub.RegisterClient(conn, userID)
}

func getUserID(r *http.Request) int64 {
	return r.Context().Value("user_id").(int64)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func intQueryParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
