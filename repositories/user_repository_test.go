package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship-system/models"
)

func TestUserRepository_Create_EmailConflict(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewPostgresUserRepository(conn)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Org", "org@example.com", "hash", models.PlanStarter).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err = repo.Create(context.Background(), &models.User{Name: "Org", Email: "org@example.com", PasswordHash: "hash", Plan: models.PlanStarter})
	assert.ErrorIs(t, err, ErrUserEmailConflict)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewPostgresUserRepository(conn)

	mock.ExpectQuery("FROM users WHERE lower").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "plan", "created_at"}))

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_LockForUpdate_UsesTransaction(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewPostgresUserRepository(conn)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM users WHERE id = \\$1 FOR UPDATE").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "plan", "created_at"}).
			AddRow(5, "Org", "org@example.com", "hash", string(models.PlanPro), time.Now()))
	mock.ExpectCommit()

	tx, err := conn.Begin()
	require.NoError(t, err)
	u, err := repo.LockForUpdate(context.Background(), tx, 5)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.Equal(t, models.PlanPro, u.Plan)
	require.NoError(t, mock.ExpectationsWereMet())
}
