// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated user's identity.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access user information without depending on Gin.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// Role returns the role stored on the caller's profile.
	Role() string
	// FullName returns the profile display name, if loaded.
	FullName() string
	// HasRole checks if the user has a specific role.
	HasRole(role string) bool
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	role          string
	fullName      string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID { return i.userID }

func (i *identity) Role() string { return i.role }

func (i *identity) FullName() string { return i.fullName }

func (i *identity) HasRole(role string) bool { return i.role != "" && i.role == role }

func (i *identity) IsAuthenticated() bool { return i.authenticated }

// NewIdentity builds an authenticated identity. Mostly useful for tests and
// background jobs that act on behalf of a user.
func NewIdentity(userID uuid.UUID, role, fullName string) Identity {
	return &identity{userID: userID, role: role, fullName: fullName, authenticated: true}
}

// SetProfile stores the freshly loaded profile values on the request context.
func SetProfile(c *gin.Context, role, fullName string) {
	c.Set(ContextRoleKey, role)
	c.Set(ContextFullNameKey, fullName)
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	role := c.GetString(ContextRoleKey)
	fullName := c.GetString(ContextFullNameKey)

	return &identity{
		userID:        uid,
		role:          role,
		fullName:      fullName,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
