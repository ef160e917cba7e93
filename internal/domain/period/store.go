package period

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context, orgID string) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, org_id, name, start_date, end_date, status, created_at
    FROM evaluation_periods
    WHERE org_id = $1
    ORDER BY start_date DESC
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (s *Store) Get(ctx context.Context, orgID, periodID string) (Period, error) {
	var p Period
	err := s.DB.QueryRow(ctx, `
    SELECT id, org_id, name, start_date, end_date, status, created_at
    FROM evaluation_periods
    WHERE org_id = $1 AND id = $2
  `, orgID, periodID).Scan(&p.ID, &p.OrgID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrNotFound
	}
	if err != nil {
		return Period{}, err
	}
	return p, nil
}

func (s *Store) Create(ctx context.Context, p Period) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_periods (org_id, name, start_date, end_date, status)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, p.OrgID, p.Name, p.StartDate, p.EndDate, p.Status).Scan(&id)
	return id, err
}

func (s *Store) UpdateStatus(ctx context.Context, orgID, periodID, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_periods
    SET status = $1
    WHERE org_id = $2 AND id = $3
  `, status, orgID, periodID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
