package auth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ykuznetsov/settleup/internal/user"
)

// Service handles signup and login.
type Service struct {
	users *user.Repository
	jwt   *JWTManager
}

// NewService creates a new auth service.
func NewService(users *user.Repository, jwt *JWTManager) *Service {
	return &Service{users: users, jwt: jwt}
}

// Signup registers a new user and returns the user with a session token.
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*user.User, string, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", user.ErrEmailAlreadyInUse
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u, err := s.users.Create(ctx, req.Username, req.Email, hash)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwt.Generate(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", u.ID).Msg("user registered")
	return u, token, nil
}

// Login verifies credentials and returns the user with a session token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*user.User, string, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := CheckPassword(req.Password, u.PasswordHash); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.Generate(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// Me returns the user for an authenticated user ID.
func (s *Service) Me(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}
