package auth

import (
	"strings"

	"git.mbbs.network/mbbs/mbbs/src/models"
	"github.com/google/uuid"
)

// Length of the short-lived credential the resource server accepts.
const resourceTokenLength = 8

// NewToken mints a fresh API token for a user.
func NewToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// ResourceToken derives the resource-download token from a user's API
// token: its first 8 characters, by convention with the resource server.
func ResourceToken(user *models.User) string {
	if user == nil || user.Token == "" {
		return ""
	}
	if len(user.Token) < resourceTokenLength {
		return user.Token
	}
	return user.Token[:resourceTokenLength]
}
