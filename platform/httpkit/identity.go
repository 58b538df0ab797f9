// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated staff user's identity.
// Handlers read it without depending on the JWT claim layout.
type Identity interface {
	UserID() uuid.UUID
	Roles() []string
	HasRole(role string) bool
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID { return i.userID }

func (i *identity) Roles() []string { return i.roles }

func (i *identity) HasRole(role string) bool { return slices.Contains(i.roles, role) }

func (i *identity) IsAuthenticated() bool { return i.authenticated }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	var roleList []string
	if roles, ok := c.Get(ContextRolesKey); ok {
		roleList, _ = roles.([]string)
	}

	return &identity{userID: uid, roles: roleList, authenticated: true}
}

// MustGetIdentity aborts with 401 and returns nil when the caller is anonymous.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return nil
	}
	return id
}
