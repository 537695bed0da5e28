package rbac

import (
	"log/slog"
	"net/http"

	"github.com/ownerassign/ownerassign/internal/shared"
)

// Middleware wires capability checks for HTTP handlers.
type Middleware struct {
	Source CapabilitySource
	Logger *slog.Logger
}

// RequireCapability rejects requests whose session user lacks capability with
// 403. On success the resolved capabilities are placed in the request context.
func (m Middleware) RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := shared.ActorID(r.Context())
			if userID == 0 {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			caps, err := m.Source.Capabilities(r.Context(), userID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac resolve capabilities", slog.Int64("user_id", userID), slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !caps.Can(capability) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithCapabilities(r.Context(), caps)))
		})
	}
}
