package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"interiorerp/internal/middleware"
	"interiorerp/internal/models"
	"interiorerp/internal/repositories"
)

type LoginResult struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

type CreateUserInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// SwitchTenant moves an Admin's active tenant and re-issues their token.
	SwitchTenant(ctx context.Context, u *models.User, tenantID string) (*LoginResult, error)
	ListTenants(ctx context.Context, u *models.User) ([]models.Tenant, error)
	CreateUser(ctx context.Context, actor *models.User, in CreateUserInput) (*models.User, error)
	HashPassword(password string) (string, error)
}

type authService struct {
	users   repositories.UserRepository
	tenants repositories.TenantRepository
	secret  []byte
	ttl     time.Duration
	log     *logrus.Logger
}

func NewAuthService(users repositories.UserRepository, tenants repositories.TenantRepository, secret string, ttl time.Duration, log *logrus.Logger) AuthService {
	return &authService{users: users, tenants: tenants, secret: []byte(secret), ttl: ttl, log: log}
}

func (s *authService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login fails closed: an unknown email, an empty hash or a mismatch all give
// ErrUnauthorized. A profile without an active tenant is healed to its own id.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		s.log.Infof("[auth][login][deny] no profile for email=%q", email)
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	ph := strings.TrimSpace(u.PasswordHash)
	if ph == "" {
		s.log.Warnf("[auth][login][deny] empty password hash user=%s", u.ID)
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ph), []byte(strings.TrimSpace(password))); err != nil {
		s.log.Infof("[auth][login][deny] bcrypt mismatch user=%s", u.ID)
		return nil, ErrUnauthorized
	}

	if u.TenantID == "" {
		if err := s.users.UpdateTenant(ctx, u.ID, u.ID); err != nil {
			return nil, fmt.Errorf("heal tenant of %s: %w", u.ID, err)
		}
		u.TenantID = u.ID
		s.log.Infof("[auth][login] healed empty tenant of user=%s", u.ID)
	}
	return s.issue(u)
}

func (s *authService) issue(u *models.User) (*LoginResult, error) {
	token, err := middleware.NewAccessToken(s.secret, u, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{AccessToken: token, User: u}, nil
}

func (s *authService) SwitchTenant(ctx context.Context, u *models.User, tenantID string) (*LoginResult, error) {
	if u.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}
	allowed := tenantID == u.ID || u.InTenant(tenantID)
	if !allowed {
		t, err := s.tenants.GetByID(ctx, tenantID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrForbidden
		}
		if err != nil {
			return nil, err
		}
		allowed = t.OwnerID == u.ID
	}
	if !allowed {
		s.log.Warnf("[auth][tenant][deny] user=%s tenant=%s", u.ID, tenantID)
		return nil, ErrForbidden
	}
	if err := s.users.UpdateTenant(ctx, u.ID, tenantID); err != nil {
		return nil, err
	}
	switched := *u
	switched.TenantID = tenantID
	s.log.Infof("[auth][tenant][ok] user=%s tenant=%s", u.ID, tenantID)
	return s.issue(&switched)
}

func (s *authService) ListTenants(ctx context.Context, u *models.User) ([]models.Tenant, error) {
	if u.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	owned, err := s.tenants.ListByOwner(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if owned == nil {
		owned = []models.Tenant{}
	}
	return owned, nil
}

func (s *authService) CreateUser(ctx context.Context, actor *models.User, in CreateUserInput) (*models.User, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if !in.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}
	hash, err := s.HashPassword(strings.TrimSpace(in.Password))
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        in.Phone,
		Role:         in.Role,
		TenantID:     actor.TenantID,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Infof("[auth][user][create][ok] id=%s role=%s tenant=%s by=%s", u.ID, u.Role, u.TenantID, actor.ID)
	return u, nil
}
