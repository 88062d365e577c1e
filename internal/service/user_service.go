package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

// UserService handles registration, password authentication and token
// issuance.
type UserService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	AvatarURL string
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, jwtSecret string) *UserService {
	return &UserService{userRepo: userRepo, jwtSecret: []byte(jwtSecret)}
}

// Register creates a password-backed account. The plaintext password never
// leaves this function; only the bcrypt hash is stored.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	hashStr := string(hash)

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: &hashStr,
		AvatarURL:    in.AvatarURL,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies a password and returns the user. All failure modes —
// unknown username, federated account without a password, wrong password —
// collapse into one Unauthorized error so login cannot be used to probe
// which usernames exist.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	invalid := models.NewUnauthorizedError("Invalid username or password")

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	if !user.HasPassword() {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, invalid
	}
	return user, nil
}

// GenerateToken issues a signed JWT for the user. The subject claim is the
// numeric user ID; the username claim is what authorship checks compare
// against.
func (s *UserService) GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}

// GetByID returns the user for the given id.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
