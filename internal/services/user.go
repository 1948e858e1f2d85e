package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService manages portal users.
type UserService struct {
	repos *Repositories
	cost  int
	log   zerolog.Logger
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// FindByEmail returns the active user with email or store.ErrNotFound.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	u, ok := lo.Find(users, func(u *models.User) bool { return u.Email == email })
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

// HashPassword returns the bcrypt hash of password at the configured cost.
func (s *UserService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// SetPasswordHash stores an already hashed password.
func (s *UserService) SetPasswordHash(ctx context.Context, userID, hash string) error {
	_, err := s.repos.Users.Update(ctx, userID, func(u *models.User) { u.PasswordHash = hash })
	return err
}

// Authenticate checks email and password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.HasCredential() || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, merchantID string) validation.Result[[]*models.User] {
	list, err := s.repos.Users.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[[]*models.User](s.log, err)
	}
	return validation.OK(list, "")
}

func (s *UserService) Get(ctx context.Context, merchantID, id string) validation.Result[*models.User] {
	u, err := lookup[models.User](ctx, s.repos.Users, models.EntityUser, merchantID, id, true)
	if err != nil {
		return failure[*models.User](s.log, err)
	}
	return validation.OK(u, "")
}

// Create adds a merchant user. Without a password the user sets one through the
// credential flow.
func (s *UserService) Create(ctx context.Context, merchantID string, req UserRequest) validation.Result[*models.User] {
	if _, err := activeMerchant(ctx, s.repos, merchantID); err != nil {
		return failure[*models.User](s.log, err)
	}
	u, err := s.add(ctx, &models.User{
		MerchantID: merchantID,
		Email:      normalizeEmail(req.Email),
		Name:       strings.TrimSpace(req.Name),
		Role:       req.Role,
	}, req)
	if err != nil {
		return failure[*models.User](s.log, err)
	}
	return validation.OK(u, "User created successfully.")
}

func (s *UserService) add(ctx context.Context, u *models.User, req UserRequest) (*models.User, error) {
	if v := validation.Struct(req); !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	_, err := s.FindByEmail(ctx, u.Email)
	switch {
	case err == nil:
		v := make(validation.Violations)
		v.Add("email", "email is already registered")
		return nil, &ValidationError{Violations: v}
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	if req.Password != "" {
		hash, err := s.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	created, err := s.repos.Users.Add(ctx, u)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

// ByID returns the user with id, deleted ones included.
func (s *UserService) ByID(ctx context.Context, id string) (*models.User, error) {
	return s.repos.Users.GetByID(ctx, id)
}
