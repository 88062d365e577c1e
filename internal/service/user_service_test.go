package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key"

type userRepoStub struct {
	createFn        func(ctx context.Context, user *models.User) error
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	updateFn        func(ctx context.Context, user *models.User) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:  func(context.Context, *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) { return nil, models.NewNotFoundError("User", id) },
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", username)
		},
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", email)
		},
		updateFn: func(context.Context, *models.User) error { return nil },
	}
}

func hashOf(t *testing.T, password string) *string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	s := string(hash)
	return &s
}

func TestRegisterHashesPassword(t *testing.T) {
	var created *models.User
	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, user *models.User) error {
		created = user
		return nil
	}
	svc := NewUserService(repo, testSecret)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "ada",
		Email:    "Ada@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "ada", user.Username)
	assert.Equal(t, "ada@example.com", user.Email)
	require.NotNil(t, user.PasswordHash)
	assert.NotContains(t, *user.PasswordHash, "correct horse")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("correct horse")))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(noopUserRepo(), testSecret)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Email: "a@b.c", Password: "longenough"}},
		{"bad email", RegisterInput{Username: "ada", Email: "not-an-email", Password: "longenough"}},
		{"short password", RegisterInput{Username: "ada", Email: "a@b.c", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}
}

func TestLoginFailureModesAreUniform(t *testing.T) {
	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		switch username {
		case "ada":
			return &models.User{ID: 1, Username: "ada", PasswordHash: hashOf(t, "right-password")}, nil
		case "fed":
			// Federated account, no local password.
			return &models.User{ID: 2, Username: "fed"}, nil
		default:
			return nil, models.NewNotFoundError("User", username)
		}
	}
	svc := NewUserService(repo, testSecret)

	_, unknownErr := svc.Login(context.Background(), "ghost", "whatever")
	_, wrongErr := svc.Login(context.Background(), "ada", "wrong-password")
	_, federatedErr := svc.Login(context.Background(), "fed", "whatever")

	for _, err := range []error{unknownErr, wrongErr, federatedErr} {
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeUnauthorized, appErr.Code)
	}
	// Identical messages: login must not reveal which usernames exist.
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t, unknownErr.Error(), federatedErr.Error())
}

func TestLoginSuccess(t *testing.T) {
	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		return &models.User{ID: 1, Username: username, PasswordHash: hashOf(t, "right-password")}, nil
	}
	svc := NewUserService(repo, testSecret)

	user, err := svc.Login(context.Background(), "ada", "right-password")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	svc := NewUserService(noopUserRepo(), testSecret)

	signed, err := svc.GenerateToken(&models.User{ID: 42, Username: "ada"})
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "ada", claims["username"])
}
