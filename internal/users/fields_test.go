package users

import (
	"testing"
	"time"
)

func TestFieldValue(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	u := User{ID: "42", Email: "a@example.com", FullName: "Ada Lovelace", CreatedAt: created}

	cases := map[string]string{
		FieldID:        "42",
		FieldEmail:     "a@example.com",
		FieldName:      "Ada Lovelace",
		FieldCreatedAt: "2024-05-01T12:00:00Z",
		FieldUpdatedAt: "",
	}
	for key, want := range cases {
		got, ok := FieldValue(u, key)
		if !ok {
			t.Fatalf("expected %s to be known", key)
		}
		if got != want {
			t.Fatalf("field %s: expected %q, got %q", key, want, got)
		}
	}
	if _, ok := FieldValue(u, "nickname"); ok {
		t.Fatalf("expected unknown field to report false")
	}
}

func TestFieldDefinitionsAreCopied(t *testing.T) {
	defs := FieldDefinitions()
	if len(defs) == 0 || defs[0].Key != FieldID {
		t.Fatalf("unexpected definitions: %+v", defs)
	}
	defs[0].Label = "changed"
	if FieldDefinitions()[0].Label != "User ID" {
		t.Fatalf("expected definitions to be immutable")
	}
	for _, d := range defs {
		if _, ok := FieldValue(User{}, d.Key); !ok {
			t.Fatalf("definition %s has no value accessor", d.Key)
		}
	}
}
