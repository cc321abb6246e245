package access

import (
	"context"
	"errors"
	"net/http"

	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionProfile is what the gate needs from a caller's profile.
type SessionProfile struct {
	ID       uuid.UUID
	FullName string
	Role     string
	IsActive bool
}

// ErrProfileNotFound is returned by a ProfileLoader when the caller has no profile.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileLoader re-reads the caller's profile on every request so role changes
// and deactivations take effect immediately.
type ProfileLoader interface {
	LoadSessionProfile(ctx context.Context, userID uuid.UUID) (SessionProfile, error)
}

// LoadProfile must run after httpkit.AuthRequired. It rejects callers whose
// profile is missing, inactive or carries an unknown role with 401. Loader
// failures are reported as upstream errors.
func LoadProfile(loader ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpkit.GetIdentity(c)
		if !id.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		profile, err := loader.LoadSessionProfile(c.Request.Context(), id.UserID())
		if err != nil && !errors.Is(err, ErrProfileNotFound) {
			httpkit.HandleError(c, apperr.Upstream(err))
			c.Abort()
			return
		}
		if err != nil || !profile.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if _, ok := ParseRole(profile.Role); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		httpkit.SetProfile(c, profile.Role, profile.FullName)
		c.Next()
	}
}

// RequireAction aborts with 403 unless the caller's role is granted action.
func RequireAction(action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := ParseRole(c.GetString(httpkit.ContextRoleKey))
		if !ok || !Can(role, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RoleOf returns the caller's role from an identity.
func RoleOf(id httpkit.Identity) Role {
	if id == nil {
		return ""
	}
	role, _ := ParseRole(id.Role())
	return role
}
