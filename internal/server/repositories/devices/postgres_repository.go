package devices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

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

func (r *PostgresRepository) CreateOrReplace(ctx context.Context, name, signature, userID, credentialID string) (*models.Device, error) {

	// Two statements, delete first: a data-modifying CTE gives no ordering
	// guarantee against the insert's unique check on (name, user_id), so the
	// re-registration path would hit a duplicate-key error. Callers run both
	// statements inside one transaction. A plain upsert is not an option
	// because the record needs a new ID to invalidate the old tokens' binding.
	del := `DELETE FROM devices WHERE name = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, del, name, userID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	query :=
		`INSERT INTO devices (name, signature, user_id, credential_id, access_token, refresh_token)
	     VALUES ($1, $2, $3, $4, '', '')
	     RETURNING id, created_at, updated_at
		 `

	device := &models.Device{
		Name:         name,
		Signature:    signature,
		UserID:       userID,
		CredentialID: credentialID,
	}

	err := r.db.QueryRowContext(ctx, query, name, signature, userID, credentialID).
		Scan(&device.ID, &device.CreatedAt, &device.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return device, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Device, error) {

	// Presented tokens may carry arbitrary text as deviceId; anything that is
	// not a UUID cannot exist in the registry.
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT id, user_id, credential_id, name, signature, access_token, refresh_token, created_at, updated_at
	     FROM devices
		 WHERE id = $1
		 `

	device := &models.Device{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&device.ID, &device.UserID, &device.CredentialID, &device.Name, &device.Signature,
		&device.AccessToken, &device.RefreshToken, &device.CreatedAt, &device.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return device, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Device, error) {

	query :=
		`SELECT id, user_id, credential_id, name, signature, access_token, refresh_token, created_at, updated_at
	     FROM devices
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Device
	for rows.Next() {
		device := &models.Device{}
		if err := rows.Scan(
			&device.ID, &device.UserID, &device.CredentialID, &device.Name, &device.Signature,
			&device.AccessToken, &device.RefreshToken, &device.CreatedAt, &device.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string) error {

	query :=
		`UPDATE devices
	     SET access_token  = COALESCE(NULLIF($2, ''), access_token),
	         refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
	         updated_at    = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, accessToken, refreshToken)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, name, userID string) error {

	query := `DELETE FROM devices WHERE name = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, name, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
