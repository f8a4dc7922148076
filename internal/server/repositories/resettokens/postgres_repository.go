package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quickbyte/quickbyte-auth/internal/common"
	"github.com/quickbyte/quickbyte-auth/internal/dbx"
	"github.com/quickbyte/quickbyte-auth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token string) (*models.ResetPasswordToken, error) {

	query :=
		`INSERT INTO reset_password_tokens (token)
         VALUES ($1)
		 RETURNING id
		 `

	record := &models.ResetPasswordToken{Token: token}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&record.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.ResetPasswordToken, error) {
	query :=
		`SELECT id, token, used FROM reset_password_tokens
		 WHERE token = $1
		 `

	record := &models.ResetPasswordToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&record.ID, &record.Token, &record.Used)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, token string) error {
	// The used = FALSE predicate is the single-use guard: of two concurrent
	// resets only one update reports an affected row.
	query :=
		`UPDATE reset_password_tokens SET used = TRUE
		 WHERE token = $1 AND used = FALSE
		 `

	res, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorResetTokenAlreadyUsed
	}

	return nil
}
