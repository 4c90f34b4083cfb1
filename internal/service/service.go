package service

import (
	"context"
	"fmt"

	"storefront/cart/internal/cart"
	"storefront/cart/internal/client"
	"storefront/cart/internal/state"

	log "github.com/sirupsen/logrus"
)

// Service ties a cart store to persisted session state so that a short-lived
// process can pick up where the previous one stopped.
type Service struct {
	store        *cart.Store
	backend      client.BackendClient
	stateManager state.StateManager
	session      string
	feeProductID string
}

func NewService(
	store *cart.Store,
	backend client.BackendClient,
	stateManager state.StateManager,
	session string,
	feeProductID string,
) *Service {
	return &Service{
		store:        store,
		backend:      backend,
		stateManager: stateManager,
		session:      session,
		feeProductID: feeProductID,
	}
}

func (s *Service) Store() *cart.Store {
	return s.store
}

func (s *Service) Backend() client.BackendClient {
	return s.backend
}

// Restore reloads the saved list, resolves the fee product id and fetches
// the cart. Backend failures here are logged, not returned.
func (s *Service) Restore(ctx context.Context) error {
	st, err := s.stateManager.Load(ctx, s.session)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	s.store.RestoreSaved(st.Saved)

	if s.feeProductID == "" {
		feeID, err := s.backend.GetFeeProductID(ctx)
		if err != nil {
			log.Warnf("⚠️ Could not fetch fee product id: %v", err)
		} else {
			s.feeProductID = feeID
		}
	}
	s.store.SetFeeProductID(s.feeProductID)

	if err := s.store.InitializeCart(ctx); err != nil {
		log.Warnf("⚠️ Could not load cart: %v", err)
	}
	return nil
}

// Run executes op against the store and persists session state afterwards,
// also when op failed.
func (s *Service) Run(ctx context.Context, op func(ctx context.Context, store *cart.Store) error) error {
	opErr := op(ctx, s.store)

	if err := s.Persist(ctx); err != nil {
		if opErr != nil {
			log.Errorf("❌ Failed to persist session: %v", err)
			return opErr
		}
		return err
	}
	return opErr
}

func (s *Service) Persist(ctx context.Context) error {
	st := &state.SessionState{
		SessionCookie: s.backend.SessionCookie(),
		Saved:         s.store.Saved(),
	}
	if err := s.stateManager.Save(ctx, s.session, st); err != nil {
		return err
	}
	log.Debugf("Persisted session %s with %d saved items", s.session, len(st.Saved))
	return nil
}

// Logout clears the store and forgets the persisted session.
func (s *Service) Logout(ctx context.Context) error {
	s.store.Reset()
	if err := s.stateManager.Delete(ctx, s.session); err != nil {
		return err
	}
	log.Infof("👋 Session %s cleared", s.session)
	return nil
}
