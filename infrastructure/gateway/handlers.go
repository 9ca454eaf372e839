package gateway

import (
	"groupchat/api"
	"groupchat/domain"
	"groupchat/errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.AuthResponse{Token: result.Token, UserID: result.UserID})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.AuthResponse{Token: result.Token, UserID: result.UserID})
}

func (h *Handler) SignInAnonymously(w http.ResponseWriter, r *http.Request) {
	result, err := h.authService.SignInAnonymously(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.AuthResponse{Token: result.Token, UserID: result.UserID})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.authService.Me(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromUserProfile(profile))
}

func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req api.CreateChatRequest
	if !decode(w, r, &req) {
		return
	}
	chatID, err := h.chatService.CreateChat(r.Context(), domain.CreateChatCommand{
		Name:           req.Name,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.CreateChatResponse{ChatID: chatID.String()})
}

func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chatService.ListChats(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ListChatsResponse{Chats: api.FromChatViews(chats)})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req api.SendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.chatService.SendMessage(r.Context(), domain.SendMessageCommand{
		ChatID:  domain.ChatID(chi.URLParam(r, "chatID")),
		Content: req.Content,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.SendMessageResponse{})
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatService.ListMessages(r.Context(), domain.ChatID(chi.URLParam(r, "chatID")))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ListMessagesResponse{Messages: api.FromMessageViews(messages)})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := errors.HTTPStatus(err)
	if code == http.StatusInternalServerError {
		h.log.Error("Request failed", "error", err)
	}
	writeError(w, code, errors.PublicMessage(err))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, api.ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
