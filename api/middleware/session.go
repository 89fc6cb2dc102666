package middleware

import (
	"net/http"

	"github.com/angelmondragon/foodcart/api/responses"
	"github.com/angelmondragon/foodcart/pkg/auth/session"
	"github.com/angelmondragon/foodcart/pkg/config"
	pkgerrors "github.com/angelmondragon/foodcart/pkg/errors"
	"github.com/angelmondragon/foodcart/pkg/logger"
)

// CartSession binds every request to a cart session cookie, minting one when
// the browser has none or sends a malformed value.
func CartSession(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(cfg.CookieName); err == nil && session.ValidID(cookie.Value) {
				sessionID = cookie.Value
			}

			if sessionID == "" {
				minted, err := session.NewID()
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start session"))
					return
				}
				sessionID = minted
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(cfg.IdleTTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
