package users

import (
	"time"

	"gdpr-backend/internal/entities"
)

// Field keys exposed for the user export unit.
const (
	FieldID         = "id"
	FieldEmail      = "email"
	FieldName       = "name"
	FieldGivenName  = "given_name"
	FieldFamilyName = "family_name"
	FieldPictureURL = "picture_url"
	FieldCreatedAt  = "created_at"
	FieldUpdatedAt  = "updated_at"
)

var fieldDefinitions = []entities.FieldDefinition{
	{Key: FieldID, Label: "User ID"},
	{Key: FieldEmail, Label: "Email"},
	{Key: FieldName, Label: "Name"},
	{Key: FieldGivenName, Label: "Given name"},
	{Key: FieldFamilyName, Label: "Family name"},
	{Key: FieldPictureURL, Label: "Picture"},
	{Key: FieldCreatedAt, Label: "Created"},
	{Key: FieldUpdatedAt, Label: "Changed"},
}

// FieldDefinitions lists the exportable user fields in their natural order.
func FieldDefinitions() []entities.FieldDefinition {
	return append([]entities.FieldDefinition(nil), fieldDefinitions...)
}

// FieldValue returns the string form of a user field. Unknown keys report false.
func FieldValue(u User, key string) (string, bool) {
	switch key {
	case FieldID:
		return u.ID, true
	case FieldEmail:
		return u.Email, true
	case FieldName:
		return u.FullName, true
	case FieldGivenName:
		return u.GivenName, true
	case FieldFamilyName:
		return u.FamilyName, true
	case FieldPictureURL:
		return u.PictureURL, true
	case FieldCreatedAt:
		return formatTime(u.CreatedAt), true
	case FieldUpdatedAt:
		return formatTime(u.UpdatedAt), true
	default:
		return "", false
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
