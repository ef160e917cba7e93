package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jung-kurt/gofpdf"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/scoring"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrUserNotFound     = errors.New("user not found")
	ErrPeriodNotFound   = errors.New("period not found")
)

// StoreAPI supplies the display fields the rendered report needs.
type StoreAPI interface {
	UserDisplay(ctx context.Context, orgID, userID string) (UserDisplay, error)
	PeriodName(ctx context.Context, orgID, periodID string) (string, error)
}

type UserDisplay struct {
	FirstName string
	LastName  string
	Email     string
}

// Service renders evaluation summaries as PDF documents. The numbers come
// from the scoring aggregator; this layer only formats them.
type Service struct {
	store   StoreAPI
	scoring *scoring.Service
	perms   *auth.Service
}

func NewService(store StoreAPI, scoringSvc *scoring.Service, perms *auth.Service) *Service {
	return &Service{store: store, scoring: scoringSvc, perms: perms}
}

// EvaluationSummaryPDF renders the user's evaluation summary for the period.
// The caller needs report:export on top of the evaluation:read scope the
// scoring service enforces.
func (s *Service) EvaluationSummaryPDF(ctx context.Context, caller auth.Context, userID, periodID string) ([]byte, error) {
	permSet, err := s.perms.EffectivePermissions(ctx, caller.OrgID, caller.Roles)
	if err != nil {
		return nil, err
	}
	if !permSet.Has(auth.PermReportExport) {
		return nil, ErrPermissionDenied
	}

	summary, err := s.scoring.Summarize(ctx, caller, userID, periodID)
	if err != nil {
		return nil, err
	}
	display, err := s.store.UserDisplay(ctx, caller.OrgID, userID)
	if err != nil {
		return nil, translateNotFound(err, ErrUserNotFound)
	}
	periodName, err := s.store.PeriodName(ctx, caller.OrgID, periodID)
	if err != nil {
		return nil, translateNotFound(err, ErrPeriodNotFound)
	}
	return render(display, periodName, summary)
}

func render(display UserDisplay, periodName string, summary scoring.Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(80, 10, "Evaluation Summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s", display.FirstName, display.LastName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", display.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", periodName))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(50, 8, "Bucket")
	pdf.Cell(50, 8, "Average")
	pdf.Cell(40, 8, "Weight")
	pdf.Cell(40, 8, "Weighted")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	for _, bucket := range scoring.Buckets {
		result, ok := summary.PerBucket[bucket]
		if !ok {
			continue
		}
		pdf.Cell(50, 8, bucket)
		pdf.Cell(50, 8, result.Average.Round(2).String())
		pdf.Cell(40, 8, result.Weight.String()+"%")
		pdf.Cell(40, 8, result.Weighted.Round(2).String())
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 9, fmt.Sprintf("Weighted Total: %s", summary.WeightedTotal.String()))
	pdf.Ln(9)
	pdf.Cell(0, 9, fmt.Sprintf("Final Rating: %s", summary.FinalRating))
	if summary.Flags.Fail {
		pdf.Ln(9)
		pdf.SetTextColor(200, 0, 0)
		pdf.Cell(0, 9, "Policy override applied: evaluation failed")
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Store reads report display fields with pgx.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) UserDisplay(ctx context.Context, orgID, userID string) (UserDisplay, error) {
	var d UserDisplay
	err := s.DB.QueryRow(ctx, `
    SELECT first_name, last_name, email FROM users WHERE org_id = $1 AND id = $2
  `, orgID, userID).Scan(&d.FirstName, &d.LastName, &d.Email)
	return d, err
}

func (s *Store) PeriodName(ctx context.Context, orgID, periodID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, `
    SELECT name FROM evaluation_periods WHERE org_id = $1 AND id = $2
  `, orgID, periodID).Scan(&name)
	return name, err
}

func translateNotFound(err, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return err
}
