package purchase

import (
	"context"

	"github.com/go-faster/errors"

	"lootshop/internal/domain/catalog"
	"lootshop/internal/reconcile"
)

// Service turns a chosen item and its price view into a backend purchase.
// It is fire-and-forget past submission: retry and timeout policy belong to
// the backend collaborator.
type Service struct {
	backend Backend
}

// NewService creates a purchase Service backed by the given collaborator.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Purchase builds the request for the item and submits it. A backend decline
// (insufficient balance, invalid item) surfaces as the backend client's typed
// error and is never retried here.
func (s *Service) Purchase(ctx context.Context, userID string, item catalog.Item, view reconcile.PriceView) (*User, error) {
	req, err := Build(item, view)
	if err != nil {
		return nil, err
	}

	user, err := s.backend.Purchase(ctx, userID, req)
	if err != nil {
		return nil, errors.Wrap(err, "submit purchase")
	}
	return user, nil
}

// Refund asks the backend to refund an owned record.
func (s *Service) Refund(ctx context.Context, userID, recordID string) (*User, error) {
	user, err := s.backend.Refund(ctx, userID, recordID)
	if err != nil {
		return nil, errors.Wrap(err, "submit refund")
	}
	return user, nil
}

// GetUser fetches the backend-held account state.
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.backend.GetUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return user, nil
}
