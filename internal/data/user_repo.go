package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/biplus/ui-api/internal/data/pgxutil"
	"github.com/biplus/ui-api/internal/domain/model"
	apperrors "github.com/biplus/ui-api/internal/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepo provides CRUD operations for the identity table in Postgres.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const userColumns = `username, name, email, password_hash, role, folders, created_at, updated_at`

func (r *UserRepo) mapWriteErr(err error, username string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFoundf("user %q not found", username)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperrors.Conflictf("username %q already exists", username)
	}
	return err
}

// List returns every identity record, ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
		if err != nil {
			return err
		}
		defer rows.Close()
		users, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns the record for username.
func (r *UserRepo) Get(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
		if err != nil {
			return err
		}
		defer rows.Close()
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFoundf("user %q not found", username)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// Create inserts a record. Duplicate usernames map to a conflict error.
func (r *UserRepo) Create(ctx context.Context, user model.User) (*model.User, error) {
	var created model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (username, name, email, password_hash, role, folders)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+userColumns,
			user.Username, user.Name, user.Email, user.PasswordHash, user.Role, user.Folders)
		if err != nil {
			return err
		}
		defer rows.Close()
		created, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		if mapped := r.mapWriteErr(err, user.Username); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &created, nil
}

// Update replaces the stored record for user.Username.
func (r *UserRepo) Update(ctx context.Context, user model.User) (*model.User, error) {
	var updated model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE users
			SET name = $2, email = $3, password_hash = $4, role = $5, folders = $6, updated_at = now()
			WHERE username = $1
			RETURNING `+userColumns,
			user.Username, user.Name, user.Email, user.PasswordHash, user.Role, user.Folders)
		if err != nil {
			return err
		}
		defer rows.Close()
		updated, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		if mapped := r.mapWriteErr(err, user.Username); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &updated, nil
}

// Delete removes the record for username.
func (r *UserRepo) Delete(ctx context.Context, username string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFoundf("user %q not found", username)
	}
	return nil
}
