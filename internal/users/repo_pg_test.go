package users

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "email", "full_name", "given_name", "family_name", "picture_url", "created_at", "updated_at"}).
		AddRow("42", "a@example.com", "Ada Lovelace", "", "", "", created, created)
	mock.ExpectQuery("FROM users").WithArgs("42").WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	user, err := repo.GetByID(context.Background(), "42")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.Email != "a@example.com" || user.FullName != "Ada Lovelace" || user.GivenName != "" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !user.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %s", user.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM users").WithArgs("7").WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "7"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpsertPassesEmptyColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("42", "a@example.com", "Ada", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Upsert(context.Background(), User{ID: "42", Email: "a@example.com", FullName: "Ada"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
