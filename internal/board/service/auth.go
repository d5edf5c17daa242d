package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/uplist/uplist/internal/board/domain"
	"github.com/uplist/uplist/internal/board/store"
	"github.com/uplist/uplist/pkg/idx"
	"github.com/uplist/uplist/pkg/passwordx"
	"github.com/uplist/uplist/pkg/slogx"
	"github.com/uplist/uplist/pkg/tokenx"
)

var (
	// ErrInvalidCredentials covers every login failure: unknown email, wrong
	// password. Callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidToken covers refresh/logout failures on bad or revoked tokens.
	ErrInvalidToken = errors.New("invalid_token")

	// ErrSamePassword rejects a password change to the current password.
	ErrSamePassword = errors.New("same_password")
)

// AuthService owns login, token rotation, and account management.
type AuthService struct {
	Store  store.Store
	Tokens *tokenx.Service
}

func identityFor(a domain.Admin) tokenx.Identity {
	return tokenx.Identity{
		SubjectID:   a.ID,
		Email:       a.Email,
		Role:        a.Role,
		DisplayName: a.DisplayName,
	}
}

// Login verifies the credentials and issues a token pair. When the email is
// unknown a dummy hash comparison still runs so the response time does not
// reveal whether the account exists. rememberMe adds a long-lived session
// token to the pair.
func (s *AuthService) Login(ctx context.Context, email, password string, rememberMe bool) (domain.Admin, *tokenx.TokenPair, error) {
	l := slogx.FromContext(ctx)

	admin, err := s.Store.Admins().GetAdminByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			passwordx.Verify(password, "")
			return domain.Admin{}, nil, ErrInvalidCredentials
		}
		return domain.Admin{}, nil, err
	}

	if !passwordx.Verify(password, admin.PasswordHash) {
		l.Info("login failed", slog.String("admin_id", admin.ID))
		return domain.Admin{}, nil, ErrInvalidCredentials
	}

	pair, err := s.Tokens.CreateTokenPair(identityFor(admin), rememberMe)
	if err != nil {
		return domain.Admin{}, nil, err
	}

	l.Info("login succeeded", slog.String("admin_id", admin.ID))
	return admin, pair, nil
}

// Refresh rotates a refresh token: the presented token must verify, carry the
// refresh type, not be revoked, and its subject must still exist in the
// store. The old token's ID is revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, raw string) (domain.Admin, *tokenx.TokenPair, error) {
	claims, err := s.Tokens.Verify(raw)
	if err != nil {
		return domain.Admin{}, nil, ErrInvalidToken
	}
	if !tokenx.ValidateTokenType(claims, tokenx.TypeRefresh) {
		return domain.Admin{}, nil, ErrInvalidToken
	}
	if s.Tokens.IsRevoked(claims.ID) {
		return domain.Admin{}, nil, ErrInvalidToken
	}

	// The account may have been deleted since the token was issued.
	admin, err := s.Store.Admins().GetAdminByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Admin{}, nil, ErrInvalidToken
		}
		return domain.Admin{}, nil, err
	}

	s.Tokens.Revoke(claims.ID, claims.ExpiresAt.Time)

	pair, err := s.Tokens.CreateTokenPair(identityFor(admin), false)
	if err != nil {
		return domain.Admin{}, nil, err
	}

	slogx.FromContext(ctx).Info("refresh token rotated", slog.String("admin_id", admin.ID))
	return admin, pair, nil
}

// Logout revokes every presented token that still verifies. Tokens that fail
// verification are skipped silently; logout never errors on bad input.
func (s *AuthService) Logout(ctx context.Context, raws ...string) {
	revoked := 0
	for _, raw := range raws {
		if raw == "" {
			continue
		}
		claims, err := s.Tokens.Verify(raw)
		if err != nil {
			continue
		}
		s.Tokens.Revoke(claims.ID, claims.ExpiresAt.Time)
		revoked++
	}
	slogx.FromContext(ctx).Info("logout", slog.Int("tokens_revoked", revoked))
}

// ChangePassword re-verifies the current password before accepting a new one.
// The new password must pass the policy and differ from the current one.
// Policy violations surface as errors wrapping passwordx.ErrPolicy.
func (s *AuthService) ChangePassword(ctx context.Context, adminID, current, next string) error {
	admin, err := s.Store.Admins().GetAdminByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			passwordx.Verify(current, "")
			return ErrInvalidCredentials
		}
		return err
	}

	if !passwordx.Verify(current, admin.PasswordHash) {
		return ErrInvalidCredentials
	}
	if current == next {
		return ErrSamePassword
	}

	hash, err := passwordx.Hash(next)
	if err != nil {
		return err
	}

	if err := s.Store.Admins().UpdatePasswordHash(ctx, adminID, hash); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("admin_id", adminID))
	return nil
}

// CreateAdmin provisions a new account. The password must pass the policy;
// the email must not be taken (store.ErrAlreadyExists).
func (s *AuthService) CreateAdmin(ctx context.Context, email, displayName, role, password string) (domain.Admin, error) {
	if role != domain.RoleAdmin && role != domain.RoleUser {
		role = domain.RoleUser
	}

	hash, err := passwordx.Hash(password)
	if err != nil {
		return domain.Admin{}, err
	}

	now := time.Now().UTC()
	admin := domain.Admin{
		ID:           idx.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		DisplayName:  displayName,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Admins().CreateAdmin(ctx, admin); err != nil {
		return domain.Admin{}, err
	}

	slogx.FromContext(ctx).Info("admin created",
		slog.String("admin_id", admin.ID),
		slog.String("role", admin.Role),
	)
	return admin, nil
}

// ListAdmins returns all accounts, newest first.
func (s *AuthService) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	return s.Store.Admins().ListAdmins(ctx)
}

// DeleteAdmin removes an account by ID.
func (s *AuthService) DeleteAdmin(ctx context.Context, adminID string) error {
	return s.Store.Admins().DeleteAdmin(ctx, adminID)
}

// Bootstrap creates the first admin account when the store is empty. It is a
// no-op on an already-populated store so restarts stay idempotent.
func (s *AuthService) Bootstrap(ctx context.Context, email, displayName, password string) error {
	empty, err := s.Store.Admins().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	admin, err := s.CreateAdmin(ctx, email, displayName, domain.RoleAdmin, password)
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("bootstrap admin created", slog.String("admin_id", admin.ID))
	return nil
}
