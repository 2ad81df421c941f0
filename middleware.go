package accounts

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey int

const callerIDKey contextKey = iota

// CallerID returns the account identifier resolved from the bearer token,
// when the request passed through RequireAuth.
func CallerID(ctx context.Context) (ID, bool) {
	id, ok := ctx.Value(callerIDKey).(ID)
	return id, ok
}

// RequireAuth verifies the Authorization header and makes the token's
// account ID available to the wrapped handler via CallerID. Requests
// without a valid bearer token get a 401.
func RequireAuth(next http.Handler, signingKey []byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(w)
			return
		}

		id, err := parseToken(parts[1], signingKey)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), callerIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": ErrInvalidToken.Error(),
	})
}
