package period

import (
	"context"
	"time"
)

type StoreAPI interface {
	List(ctx context.Context, orgID string) ([]Period, error)
	Get(ctx context.Context, orgID, periodID string) (Period, error)
	Create(ctx context.Context, p Period) (string, error)
	UpdateStatus(ctx context.Context, orgID, periodID, status string) error
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, orgID string) ([]Period, error) {
	return s.store.List(ctx, orgID)
}

func (s *Service) Get(ctx context.Context, orgID, periodID string) (Period, error) {
	return s.store.Get(ctx, orgID, periodID)
}

func (s *Service) Create(ctx context.Context, orgID, name string, start, end time.Time) (Period, error) {
	p := Period{OrgID: orgID, Name: name, StartDate: start, EndDate: end, Status: StatusActive}
	id, err := s.store.Create(ctx, p)
	if err != nil {
		return Period{}, err
	}
	p.ID = id
	return p, nil
}

// UpdateStatus moves a period to completed or cancelled. A period that has
// left active status no longer admits remands of its goals.
func (s *Service) UpdateStatus(ctx context.Context, orgID, periodID, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	return s.store.UpdateStatus(ctx, orgID, periodID, status)
}
