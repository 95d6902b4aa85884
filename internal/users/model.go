package users

import (
	"strings"
	"time"
)

// AnonymousID identifies visitors without an account.
const AnonymousID = "0"

// User is an account holder and the subject of the user export unit.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	PictureURL string    `json:"pictureUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsAnonymousID reports whether id can never own personal data.
func IsAnonymousID(id string) bool {
	id = strings.TrimSpace(id)
	return id == "" || id == AnonymousID
}
