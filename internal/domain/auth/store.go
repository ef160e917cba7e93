package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// OrgRolePermissions drives from the override marker table so a role whose
// override grants nothing still surfaces as an (empty) entry instead of
// falling back to its built-in set.
func (s *Store) OrgRolePermissions(ctx context.Context, orgID string) (map[string][]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT o.role_name, COALESCE(p.permission_code, '')
    FROM role_permission_overrides o
    LEFT JOIN role_permissions p
      ON p.org_id = o.org_id AND p.role_name = o.role_name
    WHERE o.org_id = $1
    ORDER BY o.role_name, p.permission_code
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var role, code string
		if err := rows.Scan(&role, &code); err != nil {
			return nil, err
		}
		if _, ok := out[role]; !ok {
			out[role] = []string{}
		}
		if code != "" {
			out[role] = append(out[role], code)
		}
	}
	return out, rows.Err()
}

func (s *Store) RolePermissionSet(ctx context.Context, orgID, role string) ([]string, bool, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT permission_code
    FROM role_permissions
    WHERE org_id = $1 AND role_name = $2
    ORDER BY permission_code
  `, orgID, role)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, false, err
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(codes) == 0 {
		// Distinguish "no override" from "override that grants nothing"
		// via the marker row written by ReplaceRolePermissions.
		var count int
		if err := s.DB.QueryRow(ctx, `
      SELECT COUNT(1) FROM role_permission_overrides
      WHERE org_id = $1 AND role_name = $2
    `, orgID, role).Scan(&count); err != nil {
			return nil, false, err
		}
		return []string{}, count > 0, nil
	}
	return codes, true, nil
}

func (s *Store) ReplaceRolePermissions(ctx context.Context, orgID, role string, codes []string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    INSERT INTO role_permission_overrides (org_id, role_name)
    VALUES ($1, $2)
    ON CONFLICT (org_id, role_name) DO UPDATE SET updated_at = now()
  `, orgID, role); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM role_permissions WHERE org_id = $1 AND role_name = $2", orgID, role); err != nil {
		return err
	}
	for _, code := range codes {
		if _, err := tx.Exec(ctx, `
      INSERT INTO role_permissions (org_id, role_name, permission_code)
      VALUES ($1, $2, $3)
    `, orgID, role, code); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
