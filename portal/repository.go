package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"estately/db"
)

var (
	// ErrUserNotFound signals that no portal account matches the lookup.
	ErrUserNotFound = errors.New("portal: user not found")
	// ErrDuplicateLogin signals that the login is already taken.
	ErrDuplicateLogin = errors.New("portal: login already exists")
)

// Repository handles data access for portal accounts. Methods take a
// db.Querier so provisioning can join the caller's transaction.
type Repository interface {
	Create(ctx context.Context, q db.Querier, params CreateUserParams) (User, error)
	GetByLogin(ctx context.Context, q db.Querier, login string) (User, error)
	GetByID(ctx context.Context, q db.Querier, userID string) (User, error)
	SetPasswordHash(ctx context.Context, q db.Querier, userID, hash string) error
}

// CreateUserParams contains write parameters for creating portal accounts.
type CreateUserParams struct {
	Login        string
	Name         string
	PasswordHash string
	Role         Role
	AgentID      *string
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct{}

func NewRepository() *PGRepository {
	return &PGRepository{}
}

func (r *PGRepository) Create(ctx context.Context, q db.Querier, params CreateUserParams) (User, error) {
	const insertSQL = `
		INSERT INTO portal_users (id, login, name, password_hash, role, agent_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING id, login, name, password_hash, role, agent_id, active, created_at, updated_at
	`
	user, err := scanUser(q.QueryRow(ctx, insertSQL,
		uuid.NewString(), params.Login, params.Name, params.PasswordHash, params.Role, params.AgentID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateLogin
		}
		return User{}, fmt.Errorf("portal: create user: %w", err)
	}
	return user, nil
}

func (r *PGRepository) GetByLogin(ctx context.Context, q db.Querier, login string) (User, error) {
	const selectSQL = `
		SELECT id, login, name, password_hash, role, agent_id, active, created_at, updated_at
		FROM portal_users
		WHERE login = $1
	`
	user, err := scanUser(q.QueryRow(ctx, selectSQL, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("portal: get user by login: %w", err)
	}
	return user, nil
}

func (r *PGRepository) GetByID(ctx context.Context, q db.Querier, userID string) (User, error) {
	const selectSQL = `
		SELECT id, login, name, password_hash, role, agent_id, active, created_at, updated_at
		FROM portal_users
		WHERE id = $1
	`
	user, err := scanUser(q.QueryRow(ctx, selectSQL, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("portal: get user by id: %w", err)
	}
	return user, nil
}

func (r *PGRepository) SetPasswordHash(ctx context.Context, q db.Querier, userID, hash string) error {
	tag, err := q.Exec(ctx, `
		UPDATE portal_users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, hash, userID)
	if err != nil {
		return fmt.Errorf("portal: set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user    User
		agentID *string
	)
	err := row.Scan(
		&user.ID,
		&user.Login,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&agentID,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	user.AgentID = agentID
	return user, nil
}
