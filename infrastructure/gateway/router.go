// Package gateway exposes the chat services as an HTTP/JSON API with
// websocket subscriptions. It shares the services and error mapping of the gRPC transport.
package gateway

import (
	"groupchat/auth"
	"groupchat/contract"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 30 * time.Second

type Handler struct {
	log                  *slog.Logger
	authService          contract.IAuthService
	chatService          contract.IChatService
	connectionBufferSize int
	originPatterns       []string
}

// NewHandler builds the HTTP handlers. Websocket upgrades are accepted from the
// page's own host and from hosts matching originPatterns, e.g. "chat.example.com"
// or "*.example.com".
func NewHandler(log *slog.Logger, authService contract.IAuthService, chatService contract.IChatService,
	connectionBufferSize int, originPatterns []string) *Handler {
	return &Handler{
		log:                  log,
		authService:          authService,
		chatService:          chatService,
		connectionBufferSize: connectionBufferSize,
		originPatterns:       originPatterns,
	}
}

// NewRouter mounts the public auth routes and the authenticated chat routes.
// Websocket routes are kept out of the request timeout.
func NewRouter(log *slog.Logger, tokens auth.TokenManager, h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/anonymous", h.SignInAnonymously)
	})

	r.With(AuthMiddleware(tokens), middleware.Timeout(requestTimeout)).Get("/me", h.Me)

	r.Route("/chats", func(r chi.Router) {
		r.Use(AuthMiddleware(tokens))

		r.Get("/ws", h.SubscribeChats)
		r.Get("/{chatID}/messages/ws", h.SubscribeMessages)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Post("/", h.CreateChat)
			r.Get("/", h.ListChats)
			r.Post("/{chatID}/messages", h.SendMessage)
			r.Get("/{chatID}/messages", h.ListMessages)
		})
	})
	return r
}

// RequestLogger logs one line per request with the structured logger.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
