package gateway

import (
	"groupchat/auth"
	"net/http"
)

// AuthMiddleware validates the JWT of the Authorization header. Browsers cannot
// set headers on a websocket upgrade, so the token query parameter is accepted too.
func AuthMiddleware(tokens auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				tokenStr = r.URL.Query().Get("token")
			}
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "authorization token is missing")
				return
			}
			claims, err := tokens.ValidateToken(tokenStr)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
