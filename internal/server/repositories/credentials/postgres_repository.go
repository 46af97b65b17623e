package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/osenouci/tokenkeeper/internal/common"
	"github.com/osenouci/tokenkeeper/internal/dbx"
	"github.com/osenouci/tokenkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, cred *models.Credential) (*models.Credential, error) {

	query :=
		`INSERT INTO credentials (user_id, kind, email, password_hash)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		cred.UserID, cred.Kind, cred.Email, cred.PasswordHash).
		Scan(&cred.ID, &cred.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cred, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Credential, error) {

	query :=
		`SELECT id, user_id, kind, email, password_hash, created_at FROM credentials
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email, kind string) (*models.Credential, error) {

	query :=
		`SELECT id, user_id, kind, email, password_hash, created_at FROM credentials
		 WHERE email = $1 AND kind = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, email, kind))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Credential, error) {
	cred := &models.Credential{}
	err := row.Scan(&cred.ID, &cred.UserID, &cred.Kind, &cred.Email, &cred.PasswordHash, &cred.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cred, nil
}
