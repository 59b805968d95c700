package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sftpflow/sftpflow/internal/utils"
)

var errUnauthorized = errors.New("unauthorized")

// Auth requires a valid HMAC-signed bearer token on every request except CORS
// preflights. The trigger endpoints are machine-to-machine, so no claims
// beyond validity are inspected.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenStr == "" {
				utils.JSONError(w, http.StatusUnauthorized, errUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				utils.JSONError(w, http.StatusUnauthorized, errUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
