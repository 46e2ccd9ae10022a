package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mini-linkedin/internal/domain"
)

// ErrDuplicateKey señala una violación de unicidad (email ya registrado).
var ErrDuplicateKey = errors.New("duplicate key")

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, id, name, bio string) error
	Search(ctx context.Context, query string) ([]domain.User, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, name, email, bio, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Bio,
		user.PasswordHash,
		user.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateKey
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, name, email, bio, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, name, email, bio, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, id, name, bio string) error {
	const query = `
		UPDATE users
		SET name = $2, bio = $3
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, name, bio)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) Search(ctx context.Context, query string) ([]domain.User, error) {
	const sql = `
		SELECT id, name, email, bio, password_hash, created_at
		FROM users
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, sql, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Bio, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Bio,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
