package org

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoOrganization = errors.New("no organization linked to user")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// ResolveOrg returns the org a user acts within: the primary membership wins,
// oldest membership breaks ties.
func (s *Store) ResolveOrg(ctx context.Context, userID string) (string, error) {
	var orgID string
	err := s.DB.QueryRow(ctx, `
    SELECT m.org_id
    FROM organization_members m
    JOIN organizations o ON o.id = m.org_id
    WHERE m.user_id = $1 AND m.deleted_at IS NULL AND o.deleted_at IS NULL
    ORDER BY m.is_primary DESC, m.created_at ASC
    LIMIT 1
  `, userID).Scan(&orgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoOrganization
		}
		return "", err
	}
	return orgID, nil
}

func (s *Store) GetOrganization(ctx context.Context, orgID string) (Organization, error) {
	var out Organization
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, created_at
    FROM organizations
    WHERE id = $1 AND deleted_at IS NULL
  `, orgID).Scan(&out.ID, &out.Name, &out.CreatedAt)
	return out, err
}

func (s *Store) ListMemberships(ctx context.Context, userID string) ([]Membership, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT m.id, m.org_id, o.name, m.user_id, m.is_primary, m.created_at
    FROM organization_members m
    JOIN organizations o ON o.id = m.org_id
    WHERE m.user_id = $1 AND m.deleted_at IS NULL AND o.deleted_at IS NULL
    ORDER BY m.is_primary DESC, m.created_at ASC
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.ID, &m.OrgID, &m.OrgName, &m.UserID, &m.IsPrimary, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) IsMember(ctx context.Context, orgID, userID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM organization_members
    WHERE org_id = $1 AND user_id = $2 AND deleted_at IS NULL
  `, orgID, userID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
