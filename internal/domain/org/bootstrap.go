package org

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"hrcore/internal/domain/audit"
	"hrcore/internal/domain/auth"
)

var ErrNameRequired = errors.New("organization name required")

type Bootstrapper struct {
	Store *Store
	Audit *audit.Service
}

func NewBootstrapper(store *Store, auditSvc *audit.Service) *Bootstrapper {
	return &Bootstrapper{Store: store, Audit: auditSvc}
}

// Bootstrap creates an organization for a user with no memberships: the org
// row, the default roles with their permission mappings, a primary membership,
// and the owner role assignment, all in one transaction. Calling it again
// creates another org; preventing that is the caller's concern.
func (b *Bootstrapper) Bootstrap(ctx context.Context, userID, orgName string) (string, error) {
	name := strings.TrimSpace(orgName)
	if name == "" {
		return "", ErrNameRequired
	}

	tx, err := b.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var orgID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO organizations (name) VALUES ($1) RETURNING id
  `, name).Scan(&orgID); err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO organization_members (org_id, user_id, is_primary)
    VALUES ($1, $2, true)
  `, orgID, userID); err != nil {
		return "", err
	}

	ownerRoleID, err := seedRolesTx(ctx, tx, orgID)
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO user_roles (org_id, user_id, role_id)
    VALUES ($1, $2, $3)
  `, orgID, userID, ownerRoleID); err != nil {
		return "", err
	}

	if err := b.Audit.Record(ctx, tx, orgID, userID, "org.bootstrap", "organization", orgID); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return orgID, nil
}

func seedRolesTx(ctx context.Context, tx pgx.Tx, orgID string) (string, error) {
	var ownerRoleID string
	for roleName, permissionKeys := range auth.RolePermissions {
		var roleID string
		if err := tx.QueryRow(ctx, `
      INSERT INTO roles (org_id, name) VALUES ($1, $2) RETURNING id
    `, orgID, roleName).Scan(&roleID); err != nil {
			return "", err
		}
		if roleName == auth.RoleOwner {
			ownerRoleID = roleID
		}
		for _, key := range permissionKeys {
			if _, err := tx.Exec(ctx, `
        INSERT INTO role_permissions (role_id, permission_id)
        SELECT $1, id FROM permissions WHERE key = $2
      `, roleID, key); err != nil {
				return "", err
			}
		}
	}
	return ownerRoleID, nil
}
