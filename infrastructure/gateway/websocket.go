package gateway

import (
	"context"
	goerrors "errors"
	"groupchat/api"
	"groupchat/domain"
	"groupchat/errors"
	"groupchat/sink"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
)

// SubscribeMessages upgrades to a websocket pushing the full message list of
// the chat, first immediately then after every message sent to it.
func (h *Handler) SubscribeMessages(w http.ResponseWriter, r *http.Request) {
	chatID := domain.ChatID(chi.URLParam(r, "chatID"))
	streamSink := sink.NewStreamSink(h.connectionBufferSize)

	// Guard failures are still plain HTTP errors, before the upgrade
	unsubscribe, err := h.chatService.SubscribeMessages(r.Context(), chatID, streamSink)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer unsubscribe()

	h.stream(w, r, streamSink, func(ctx context.Context) (any, error) {
		messages, err := h.chatService.ListMessages(ctx, chatID)
		if err != nil {
			return nil, err
		}
		return api.ListMessagesResponse{Messages: api.FromMessageViews(messages)}, nil
	})
}

// SubscribeChats upgrades to a websocket pushing the caller's chat list on every change.
func (h *Handler) SubscribeChats(w http.ResponseWriter, r *http.Request) {
	streamSink := sink.NewStreamSink(h.connectionBufferSize)

	unsubscribe, err := h.chatService.SubscribeChats(r.Context(), streamSink)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer unsubscribe()

	h.stream(w, r, streamSink, func(ctx context.Context) (any, error) {
		chats, err := h.chatService.ListChats(ctx)
		if err != nil {
			return nil, err
		}
		return api.ListChatsResponse{Chats: api.FromChatViews(chats)}, nil
	})
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, streamSink *sink.StreamSink,
	snapshot func(ctx context.Context) (any, error)) {
	// Cross origin upgrades are refused with 403 unless the origin matches a pattern
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// Clients never write, reading only detects the close frame
	ctx := conn.CloseRead(r.Context())

	push := func() bool {
		payload, err := snapshot(ctx)
		if err != nil {
			if ctx.Err() == nil {
				h.log.Warn("Snapshot failed", "error", err)
				_ = wsjson.Write(ctx, conn, api.ErrorResponse{Error: errors.PublicMessage(err)})
				conn.Close(websocket.StatusInternalError, "snapshot failed")
			}
			return false
		}
		if err := wsjson.Write(ctx, conn, payload); err != nil {
			if !goerrors.Is(err, context.Canceled) {
				h.log.Debug("Websocket write failed", "error", err)
			}
			return false
		}
		return true
	}

	if !push() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-streamSink.Events():
			if !push() {
				return
			}
		}
	}
}
