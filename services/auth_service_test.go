package services

import (
	"context"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship-system/models"
	"github.com/Dosada05/championship-system/repositories"
	"github.com/Dosada05/championship-system/utils"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	name := gofakeit.Name()
	email := gofakeit.Email()
	password := gofakeit.Password(true, true, true, false, false, 12)

	var stored models.User
	users := &fakeUserRepo{
		CreateFunc: func(ctx context.Context, user *models.User) error {
			user.ID = 21
			stored = *user
			return nil
		},
		GetByEmailFunc: func(ctx context.Context, e string) (*models.User, error) {
			if e != stored.Email {
				return nil, repositories.ErrUserNotFound
			}
			copied := stored
			return &copied, nil
		},
	}
	svc := NewAuthService(users, discardLogger())

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "  " + name + " ",
		Email:    " " + strings.ToUpper(email),
		Password: password,
	})
	require.NoError(t, err)
	assert.Equal(t, 21, user.ID)
	assert.Equal(t, name, user.Name)
	assert.Equal(t, strings.ToLower(email), user.Email)
	assert.Equal(t, models.PlanStarter, user.Plan)
	assert.Empty(t, user.PasswordHash)
	assert.True(t, utils.CheckPasswordHash(password, stored.PasswordHash))

	loggedIn, err := svc.Login(context.Background(), LoginInput{Email: email, Password: password})
	require.NoError(t, err)
	assert.Equal(t, 21, loggedIn.ID)
	assert.Empty(t, loggedIn.PasswordHash)

	_, err = svc.Login(context.Background(), LoginInput{Email: email, Password: password + "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: password})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"blank name", RegisterInput{Name: " ", Email: "a@b.com", Password: "long-enough"}, ErrNameRequired},
		{"bad email", RegisterInput{Name: "Ana", Email: "not-an-email", Password: "long-enough"}, ErrInvalidEmail},
		{"short password", RegisterInput{Name: "Ana", Email: "a@b.com", Password: "short"}, ErrPasswordTooShort},
		{"unknown plan", RegisterInput{Name: "Ana", Email: "a@b.com", Password: "long-enough", Plan: "Gold"}, ErrInvalidPlan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(&fakeUserRepo{}, discardLogger())
			_, err := svc.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	users := &fakeUserRepo{CreateFunc: func(ctx context.Context, user *models.User) error {
		return repositories.ErrUserEmailConflict
	}}
	svc := NewAuthService(users, discardLogger())

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrUserEmailConflict)
}

func TestAuthService_ChangePlan(t *testing.T) {
	current := models.PlanStarter
	users := &fakeUserRepo{
		UpdatePlanFunc: func(ctx context.Context, id int, plan models.Plan) error {
			current = plan
			return nil
		},
		GetByIDFunc: func(ctx context.Context, id int) (*models.User, error) {
			return &models.User{ID: id, Plan: current, PasswordHash: "hash"}, nil
		},
	}
	svc := NewAuthService(users, discardLogger())

	user, err := svc.ChangePlan(context.Background(), 3, models.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, user.Plan)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.ChangePlan(context.Background(), 3, "Platinum")
	assert.ErrorIs(t, err, ErrInvalidPlan)
}
