package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/championship-system/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// LockForUpdate reads the user with SELECT ... FOR UPDATE; exec must be a transaction.
	LockForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.User, error)
	UpdatePlan(ctx context.Context, id int, plan models.Plan) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, plan)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Plan,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if code, constraint, ok := asPQError(err); ok && code == pqUniqueViolation && constraint == "users_email_key" {
			return ErrUserEmailConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) findOne(ctx context.Context, exec SQLExecutor, query string, arg interface{}) (*models.User, error) {
	if exec == nil {
		exec = r.db
	}
	u := &models.User{}
	err := exec.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Plan,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, plan, created_at FROM users WHERE id = $1`
	return r.findOne(ctx, nil, query, id)
}

func (r *postgresUserRepository) LockForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, plan, created_at FROM users WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, exec, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, plan, created_at FROM users WHERE lower(email) = lower($1)`
	return r.findOne(ctx, nil, query, email)
}

func (r *postgresUserRepository) UpdatePlan(ctx context.Context, id int, plan models.Plan) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET plan = $1 WHERE id = $2`, plan, id)
	if err != nil {
		return fmt.Errorf("failed to update user plan: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
