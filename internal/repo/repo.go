package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID          int        `json:"id"`
	Login       string     `json:"login"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Institution string     `json:"institution"`
	Approved    bool       `json:"approved"`
	Admin       bool       `json:"admin"`
	Onboarded   bool       `json:"onboarded"`
	Archived    bool       `json:"archived"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserUpdate carries the admin-editable flags; nil fields are left unchanged.
type UserUpdate struct {
	Approved *bool `json:"approved"`
	Admin    *bool `json:"admin"`
	Archived *bool `json:"archived"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)
	GetUser(ctx context.Context, id int) (User, error)
	ListUsers(ctx context.Context, pendingOnly bool) ([]User, error)
	UpdateUser(ctx context.Context, id int, upd UserUpdate) (User, error)
	Onboard(ctx context.Context, id int, name, institution string) (User, error)
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const schema = `CREATE TABLE IF NOT EXISTS users (
	id          SERIAL PRIMARY KEY,
	login       TEXT NOT NULL UNIQUE,
	email       TEXT NOT NULL UNIQUE,
	password    TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	institution TEXT NOT NULL DEFAULT '',
	approved    BOOLEAN NOT NULL DEFAULT FALSE,
	admin       BOOLEAN NOT NULL DEFAULT FALSE,
	onboarded   BOOLEAN NOT NULL DEFAULT FALSE,
	archived    BOOLEAN NOT NULL DEFAULT FALSE,
	approved_at TIMESTAMPTZ,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func (r *PostgresUserRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

const userColumns = "id, login, email, name, institution, approved, admin, onboarded, archived, approved_at, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (User, error) {
	var u User
	var approvedAt sql.NullTime
	err := s.Scan(&u.ID, &u.Login, &u.Email, &u.Name, &u.Institution,
		&u.Approved, &u.Admin, &u.Onboarded, &u.Archived, &approvedAt, &u.CreatedAt)
	if approvedAt.Valid {
		u.ApprovedAt = &approvedAt.Time
	}
	return u, err
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *PostgresUserRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1 AND NOT archived"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", ErrNotFound
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresUserRepository) GetUser(ctx context.Context, id int) (User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id=$1"
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresUserRepository) ListUsers(ctx context.Context, pendingOnly bool) ([]User, error) {
	query := "SELECT " + userColumns + " FROM users"
	if pendingOnly {
		query += " WHERE NOT approved AND NOT archived"
	}
	query += " ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresUserRepository) UpdateUser(ctx context.Context, id int, upd UserUpdate) (User, error) {
	query := `UPDATE users SET
		approved    = COALESCE($2::boolean, approved),
		approved_at = CASE WHEN $2::boolean IS TRUE AND NOT approved THEN now()
		                   WHEN $2::boolean IS FALSE THEN NULL ELSE approved_at END,
		admin       = COALESCE($3::boolean, admin),
		archived    = COALESCE($4::boolean, archived)
		WHERE id=$1 RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, nullBool(upd.Approved), nullBool(upd.Admin), nullBool(upd.Archived)))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresUserRepository) Onboard(ctx context.Context, id int, name, institution string) (User, error) {
	query := `UPDATE users SET
		name        = COALESCE(NULLIF($2, ''), name),
		institution = COALESCE(NULLIF($3, ''), institution),
		onboarded   = TRUE
		WHERE id=$1 RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, name, institution))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
