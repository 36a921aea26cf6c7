package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/medrec/medrec/internal/platform/apperr"
	"github.com/medrec/medrec/internal/platform/auth"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type Service struct {
	repo   Repository
	tokens *auth.TokenService
}

func NewService(repo Repository, tokens *auth.TokenService) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a new staff account. New users get the STAFF role; ADMIN
// accounts are provisioned through the CLI.
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, error) {
	return s.create(ctx, email, password, name, []string{auth.RoleStaff})
}

// CreateWithRoles provisions an account with an explicit role set. Used by the
// admin CLI, not exposed over HTTP.
func (s *Service) CreateWithRoles(ctx context.Context, email, password, name string, roles []string) (*User, error) {
	for _, r := range roles {
		if r != auth.RoleAdmin && r != auth.RoleStaff {
			return nil, apperr.Validation(map[string]string{"roles": fmt.Sprintf("Unknown role: %s", r)})
		}
	}
	return s.create(ctx, email, password, name, roles)
}

func (s *Service) create(ctx context.Context, email, password, name string, roles []string) (*User, error) {
	fields := map[string]string{}
	if email == "" {
		fields["email"] = "Missing required field: email"
	} else if !emailPattern.MatchString(email) {
		fields["email"] = "Invalid email format"
	}
	if password == "" {
		fields["password"] = "Missing required field: password"
	}
	if name == "" {
		fields["name"] = "Missing required field: name"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	// Best-effort fast path; the unique index on users.email is authoritative
	// and Create translates its violation to the same conflict.
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email already exists")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		IsActive:     true,
		Roles:        roles,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues an access token carrying the user's
// role snapshot. Unknown email, wrong password and deactivated accounts are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	fields := map[string]string{}
	if email == "" {
		fields["email"] = "Missing required field: email"
	}
	if password == "" {
		fields["password"] = "Missing required field: password"
	}
	if len(fields) > 0 {
		return "", nil, apperr.Validation(fields)
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, apperr.ErrUnauthenticated
		}
		return "", nil, err
	}
	if !u.IsActive {
		return "", nil, apperr.ErrUnauthenticated
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, apperr.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(strconv.FormatInt(u.ID, 10), u.Roles)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
