package credentials

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/osenouci/tokenkeeper/internal/common"
	"github.com/osenouci/tokenkeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+credentials\s*\(user_id,\s*kind,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("c-1", now)
	mock.ExpectQuery(q).
		WithArgs("u-1", models.CredentialLocal, "alice@example.com", "$argon2id$hash").
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), &models.Credential{
		UserID:       "u-1",
		Kind:         models.CredentialLocal,
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$hash",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "c-1" || got.Email != "alice@example.com" {
		t.Fatalf("unexpected credential: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT`).WillReturnError(errors.New("unique violation"))

	_, err := repo.Create(context.Background(), &models.Credential{})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestFindByEmail_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*user_id,\s*kind,\s*email,\s*password_hash,\s*created_at\s+FROM\s+credentials\s+WHERE\s+email\s*=\s*\$1\s+AND\s+kind\s*=\s*\$2`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "kind", "email", "password_hash", "created_at"}).
		AddRow("c-1", "u-1", models.CredentialGoogle, "bob@example.com", "", now)
	mock.ExpectQuery(q).
		WithArgs("bob@example.com", models.CredentialGoogle).
		WillReturnRows(rows)

	got, err := repo.FindByEmail(context.Background(), "bob@example.com", models.CredentialGoogle)
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.UserID != "u-1" || got.Kind != models.CredentialGoogle {
		t.Fatalf("unexpected credential: %+v", got)
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("missing@example.com", models.CredentialLocal).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@example.com", models.CredentialLocal)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
