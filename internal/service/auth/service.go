package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/docbook/docbook-api/internal/model"
	"github.com/docbook/docbook-api/internal/repository"
	"github.com/docbook/docbook-api/pkg/auth"
	apperrors "github.com/docbook/docbook-api/pkg/errors"
	"github.com/docbook/docbook-api/pkg/security"
)

// Service authenticates the three principal kinds. Each kind has its own
// issue/verify pair; there is no shared session state to consult.
type Service struct {
	users   repository.UserRepository
	doctors repository.DoctorRepository
	tokens  *auth.TokenService
	hasher  security.PasswordHasher

	adminEmail    string
	adminPassword string
}

func NewService(
	users repository.UserRepository,
	doctors repository.DoctorRepository,
	tokens *auth.TokenService,
	hasher security.PasswordHasher,
	adminEmail, adminPassword string,
) *Service {
	return &Service{
		users:         users,
		doctors:       doctors,
		tokens:        tokens,
		hasher:        hasher,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
	}
}

func (s *Service) RegisterUser(ctx context.Context, req *model.RegisterRequest) (string, error) {
	if existing, _ := s.users.GetByEmail(ctx, req.Email); existing != nil {
		return "", apperrors.Conflict("email already registered")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return "", apperrors.Validation(err.Error())
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return s.tokens.Generate(auth.PrincipalUser, user.ID)
}

func (s *Service) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", apperrors.Unauthorized("invalid credentials")
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", apperrors.Unauthorized("invalid credentials")
	}

	return s.tokens.Generate(auth.PrincipalUser, user.ID)
}

func (s *Service) LoginDoctor(ctx context.Context, email, password string) (string, error) {
	doctor, err := s.doctors.GetByEmail(ctx, email)
	if err != nil {
		return "", apperrors.Unauthorized("invalid credentials")
	}

	if err := s.hasher.Compare(doctor.PasswordHash, password); err != nil {
		return "", apperrors.Unauthorized("invalid credentials")
	}

	return s.tokens.Generate(auth.PrincipalDoctor, doctor.ID)
}

// LoginAdmin compares against the configured credential pair and, on
// match, signs the concatenated pair as the token.
func (s *Service) LoginAdmin(email, password string) (string, error) {
	if email != s.adminEmail || password != s.adminPassword {
		return "", apperrors.Unauthorized("invalid email or password")
	}
	return s.tokens.GenerateAdmin(email, password)
}

func (s *Service) VerifyUserToken(token string) (uuid.UUID, error) {
	id, err := s.tokens.Verify(auth.PrincipalUser, token)
	if err != nil {
		return uuid.Nil, apperrors.Unauthorized("not authorized, please login again")
	}
	return id, nil
}

func (s *Service) VerifyDoctorToken(token string) (uuid.UUID, error) {
	id, err := s.tokens.Verify(auth.PrincipalDoctor, token)
	if err != nil {
		return uuid.Nil, apperrors.Unauthorized("not authorized, please login again")
	}
	return id, nil
}

func (s *Service) VerifyAdminToken(token string) error {
	if err := s.tokens.VerifyAdmin(token, s.adminEmail, s.adminPassword); err != nil {
		return apperrors.Unauthorized("not authorized, please login again")
	}
	return nil
}
