package service

import (
	"context"
	"errors"
	"strings"

	"restaurant-service/internal/auth"
	"restaurant-service/internal/entity"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/validation"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid email or password")

type UserService struct {
	users     repository.UserStore
	tokens    *auth.TokenIssuer
	validator *validation.Validator
}

// NewUserService creates a new instance of UserService.
func NewUserService(users repository.UserStore, tokens *auth.TokenIssuer) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		validator: validation.New(),
	}
}

// Register validates in, hashes the password and stores the user.
func (s *UserService) Register(ctx context.Context, in entity.RegisterInput) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}

	user, err := s.users.Create(ctx, &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating user %s", in.Username)
		return nil, err
	}

	logger.Info().Msgf("Registered user %d", user.ID)
	return user, nil
}

// Login checks the credentials and returns a signed access token.
func (s *UserService) Login(ctx context.Context, in entity.LoginInput) (string, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Struct(in); err != nil {
		return "", err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn().Msgf("Login attempt for unknown email %s", in.Email)
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		logger.Warn().Msgf("Wrong password for user %d", user.ID)
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID)
}

// Me returns the profile of the token holder. A user deleted after the
// token was issued yields repository.ErrNotFound.
func (s *UserService) Me(ctx context.Context, userID int) (*entity.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info().Msgf("Deleted user %d", id)
	return nil
}
