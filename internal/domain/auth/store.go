package auth

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (User, error) {
	var out User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, password_hash
    FROM users
    WHERE email = $1 AND deleted_at IS NULL
  `, email).Scan(&out.ID, &out.Email, &out.PasswordHash)
	return out, err
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash)
    VALUES ($1, $2)
    RETURNING id
  `, email, passwordHash).Scan(&id)
	return id, err
}

// PermissionKeys resolves the union of permission keys granted to the user
// through non-deleted role assignments in the org.
func (s *Store) PermissionKeys(ctx context.Context, orgID, userID string) (map[string]struct{}, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT p.key
    FROM user_roles ur
    JOIN role_permissions rp ON rp.role_id = ur.role_id
    JOIN permissions p ON p.id = rp.permission_id
    JOIN roles r ON r.id = ur.role_id
    WHERE ur.org_id = $1 AND ur.user_id = $2
      AND ur.deleted_at IS NULL AND r.deleted_at IS NULL
  `, orgID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := map[string]struct{}{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys[key] = struct{}{}
	}
	return keys, rows.Err()
}

func (s *Store) UserHasRole(ctx context.Context, orgID, userID, roleName string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM user_roles ur
    JOIN roles r ON r.id = ur.role_id
    WHERE ur.org_id = $1 AND ur.user_id = $2 AND r.name = $3
      AND ur.deleted_at IS NULL AND r.deleted_at IS NULL
  `, orgID, userID, roleName).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Store) ListRoles(ctx context.Context, orgID string) ([]Role, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name
    FROM roles
    WHERE org_id = $1 AND deleted_at IS NULL
    ORDER BY name
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (s *Store) RoleIDByName(ctx context.Context, orgID, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    SELECT id FROM roles WHERE org_id = $1 AND name = $2 AND deleted_at IS NULL
  `, orgID, name).Scan(&id)
	return id, err
}

func (s *Store) assignRoleTx(ctx context.Context, tx pgx.Tx, orgID, userID, roleID string) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO user_roles (org_id, user_id, role_id)
    VALUES ($1, $2, $3)
    ON CONFLICT (org_id, user_id, role_id)
    DO UPDATE SET deleted_at = NULL
  `, orgID, userID, roleID)
	return err
}

func (s *Store) revokeRoleTx(ctx context.Context, tx pgx.Tx, orgID, userID, roleID string) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    UPDATE user_roles
    SET deleted_at = now()
    WHERE org_id = $1 AND user_id = $2 AND role_id = $3 AND deleted_at IS NULL
  `, orgID, userID, roleID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
