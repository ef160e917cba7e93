package scope

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ActiveUserIDs(ctx context.Context, orgID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id
    FROM users
    WHERE org_id = $1 AND status = 'active'
    ORDER BY id
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// SubordinateUserIDs joins through the supervisor_links relation keyed by
// user ids with a time-bounded validity window. Name-based matching is
// forbidden here: two users sharing a display name are unrelated.
func (s *Store) SubordinateUserIDs(ctx context.Context, orgID, supervisorID string, at time.Time) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id
    FROM supervisor_links l
    JOIN users u ON u.id = l.subordinate_id AND u.org_id = l.org_id
    WHERE l.org_id = $1
      AND l.supervisor_id = $2
      AND l.valid_from <= $3
      AND (l.valid_to IS NULL OR l.valid_to > $3)
      AND u.status = 'active'
    ORDER BY u.id
  `, orgID, supervisorID, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (s *Store) DepartmentUserIDs(ctx context.Context, orgID, userID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT peer.id
    FROM users self
    JOIN users peer ON peer.org_id = self.org_id AND peer.department_id = self.department_id
    WHERE self.org_id = $1 AND self.id = $2 AND peer.status = 'active'
    ORDER BY peer.id
  `, orgID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanIDs(rows rowScanner) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
