package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hrcore/internal/domain/audit"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too short")
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleNotAssigned    = errors.New("role not assigned")
)

const minPasswordLength = 8

const permissionCacheTTL = 30 * time.Second

type Service struct {
	Store *Store
	Audit *audit.Service
	cache *permissionCache
}

func NewService(store *Store, auditSvc *audit.Service) *Service {
	return &Service{Store: store, Audit: auditSvc, cache: newPermissionCache(permissionCacheTTL)}
}

// Register creates an account with no organization. The new user bootstraps
// an org of their own or waits to be invited into one.
func (s *Service) Register(ctx context.Context, email, password string) (User, error) {
	if len(password) < minPasswordLength {
		return User{}, ErrWeakPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	id, err := s.Store.CreateUser(ctx, email, hash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return User{ID: id, Email: email}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	user, err := s.Store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// HasPermission is default-deny: missing data, a resolver error, or no role
// granting the key all yield false. It never mutates state beyond the cache.
func (s *Service) HasPermission(ctx context.Context, userID, orgID, permissionKey string) bool {
	if userID == "" || orgID == "" || permissionKey == "" {
		return false
	}
	keys, ok := s.cache.Get(orgID, userID)
	if !ok {
		resolved, err := s.Store.PermissionKeys(ctx, orgID, userID)
		if err != nil {
			slog.Warn("permission resolution failed", "org", orgID, "user", userID, "err", err)
			return false
		}
		s.cache.Set(orgID, userID, resolved)
		keys = resolved
	}
	_, granted := keys[permissionKey]
	return granted
}

func (s *Service) HasRole(ctx context.Context, userID, orgID, roleName string) bool {
	has, err := s.Store.UserHasRole(ctx, orgID, userID, roleName)
	if err != nil {
		slog.Warn("role check failed", "org", orgID, "user", userID, "err", err)
		return false
	}
	return has
}

func (s *Service) ListRoles(ctx context.Context, orgID string) ([]Role, error) {
	return s.Store.ListRoles(ctx, orgID)
}

func (s *Service) AssignRole(ctx context.Context, orgID, actorUserID, userID, roleName string) error {
	roleID, err := s.Store.RoleIDByName(ctx, orgID, roleName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoleNotFound
		}
		return err
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.Store.assignRoleTx(ctx, tx, orgID, userID, roleID); err != nil {
		return err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "role.assign", "user_role", userID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.cache.Invalidate(orgID, userID)
	return nil
}

func (s *Service) RevokeRole(ctx context.Context, orgID, actorUserID, userID, roleName string) error {
	roleID, err := s.Store.RoleIDByName(ctx, orgID, roleName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoleNotFound
		}
		return err
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	revoked, err := s.Store.revokeRoleTx(ctx, tx, orgID, userID, roleID)
	if err != nil {
		return err
	}
	if !revoked {
		return ErrRoleNotAssigned
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "role.revoke", "user_role", userID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.cache.Invalidate(orgID, userID)
	return nil
}
