// Package cart keeps the client's view of the shopping cart in step with the
// backend. The backend is authoritative: every successful call replaces the
// local items and totals wholesale, and failures leave them untouched.
//
// Calls are not serialized. Two overlapping mutations race and the response
// that arrives last wins, unless Options.DiscardStaleResponses is set.
package cart

import (
	"context"
	"errors"
	"sync"

	"storefront/cart/internal/client"
	"storefront/cart/internal/domain"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxQuantity = 99

	TitleAddFailed      = "Failed to Add to Cart"
	TitleUpdateFailed   = "Failed to Update Quantity"
	TitleCheckoutFailed = "Checkout Failed"
)

// Notifier shows a user-facing message, e.g. a toast.
type Notifier interface {
	Notify(title, description string)
}

type NotifierFunc func(title, description string)

func (f NotifierFunc) Notify(title, description string) { f(title, description) }

// Navigator leaves the storefront for an external page such as the payment
// provider's checkout session.
type Navigator interface {
	Navigate(url string) error
}

type NavigatorFunc func(url string) error

func (f NavigatorFunc) Navigate(url string) error { return f(url) }

type Options struct {
	FeeProductID string
	MaxQuantity  int

	// DiscardStaleResponses drops a response when a later-issued call has
	// already been applied.
	DiscardStaleResponses bool
}

// CheckoutError is returned when the backend answered the checkout call
// without a session url.
type CheckoutError struct {
	Status  string
	Message string
}

func (e *CheckoutError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "checkout session could not be created"
}

// Snapshot is a point-in-time copy of the store state.
type Snapshot struct {
	Items         []domain.CartItem
	Saved         []domain.CartItem
	BackendTotals domain.BackendTotals
	IsLoading     bool
	Error         string
}

type Store struct {
	backend   client.BackendClient
	notifier  Notifier
	navigator Navigator

	mu            sync.RWMutex
	opts          Options
	items         []domain.CartItem
	saved         []domain.CartItem
	backendTotals domain.BackendTotals
	inFlight      int
	lastErr       string
	issuedSeq     uint64
	appliedSeq    uint64
	epoch         uint64 // Bumped by Reset

	subMu       sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// NewStore creates an empty store. notifier and navigator may be nil.
func NewStore(backend client.BackendClient, notifier Notifier, navigator Navigator, opts Options) *Store {
	if opts.MaxQuantity < 1 {
		opts.MaxQuantity = DefaultMaxQuantity
	}
	if notifier == nil {
		notifier = NotifierFunc(func(string, string) {})
	}

	return &Store{
		backend:     backend,
		notifier:    notifier,
		navigator:   navigator,
		opts:        opts,
		items:       []domain.CartItem{},
		saved:       []domain.CartItem{},
		subscribers: make(map[int]func(Snapshot)),
	}
}

// SetFeeProductID sets the id of the synthetic delivery fee line once it is
// known, typically after asking the backend.
func (s *Store) SetFeeProductID(id string) {
	s.mu.Lock()
	s.opts.FeeProductID = id
	s.mu.Unlock()
}

// InitializeCart loads the current cart from the backend.
func (s *Store) InitializeCart(ctx context.Context) error {
	return s.sync(ctx, s.backend.GetCart)
}

// Add puts qty units of a product into the cart. A qty below 1 adds one.
func (s *Store) Add(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		qty = 1
	}

	err := s.sync(ctx, func(ctx context.Context) (*domain.CartDTO, error) {
		return s.backend.AddItem(ctx, productID, qty)
	})
	if err != nil {
		s.notifier.Notify(TitleAddFailed, err.Error())
		return err
	}
	return nil
}

// UpdateQty sets the quantity of a cart line. Zero or less removes the line,
// anything else is clamped to [1, MaxQuantity].
func (s *Store) UpdateQty(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return s.Remove(ctx, id)
	}

	clamped := min(max(qty, 1), s.maxQuantity())

	err := s.sync(ctx, func(ctx context.Context) (*domain.CartDTO, error) {
		return s.backend.ChangeQuantity(ctx, id, clamped)
	})
	if err != nil {
		s.notifier.Notify(TitleUpdateFailed, err.Error())
		return err
	}
	return nil
}

// Remove deletes a line by id. The id is not checked locally, the backend
// decides.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.sync(ctx, func(ctx context.Context) (*domain.CartDTO, error) {
		return s.backend.DeleteItem(ctx, id)
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.sync(ctx, s.backend.ClearCart)
}

// SaveForLater moves a line to the front of the saved list. It is local only:
// the backend still has the line until the next call replaces the cart.
// Unknown ids and the fee line are ignored.
func (s *Store) SaveForLater(id string) {
	s.mu.Lock()
	idx := -1
	for i, item := range s.items {
		if domain.SameID(item.ID, id) {
			idx = i
			break
		}
	}
	if idx < 0 || s.isFeeLocked(s.items[idx]) {
		s.mu.Unlock()
		return
	}

	item := s.items[idx]
	items := make([]domain.CartItem, 0, len(s.items)-1)
	items = append(items, s.items[:idx]...)
	items = append(items, s.items[idx+1:]...)
	s.items = items
	s.saved = append([]domain.CartItem{item}, s.saved...)
	s.mu.Unlock()

	s.publish()
}

// MoveToCart adds a saved item back with quantity 1 and drops it from the
// saved list once the backend accepted it. On failure the saved list is left
// as it was.
func (s *Store) MoveToCart(ctx context.Context, id string) error {
	item, ok := s.findSaved(id)
	if !ok {
		return nil
	}

	if err := s.Add(ctx, item.ProductID, 1); err != nil {
		log.WithField("id", id).Errorf("Failed to move saved item back to cart: %v", err)
		return err
	}

	s.mu.Lock()
	saved := make([]domain.CartItem, 0, len(s.saved))
	for _, si := range s.saved {
		if !domain.SameID(si.ID, id) {
			saved = append(saved, si)
		}
	}
	s.saved = saved
	s.mu.Unlock()

	s.publish()
	return nil
}

// CheckoutLink asks the backend for a payment session and navigates to it.
// It does nothing for an empty cart. The session url is returned as well.
func (s *Store) CheckoutLink(ctx context.Context) (string, error) {
	if s.Totals().Count == 0 {
		return "", nil
	}

	tok := s.begin()
	session, err := s.backend.NewCheckoutSession(ctx)
	if err == nil && !session.Succeeded() {
		err = &CheckoutError{Status: session.Status, Message: session.Message}
	}
	if err == nil && s.navigator != nil {
		err = s.navigator.Navigate(session.SessionURL)
	}
	s.finish(tok, err)

	if err != nil {
		s.notifier.Notify(TitleCheckoutFailed, err.Error())
		return "", err
	}
	return session.SessionURL, nil
}

// Reset empties the store, e.g. after logout. Calls started before Reset
// still return to their callers, but their responses and errors no longer
// touch the store and they do not count towards IsLoading.
func (s *Store) Reset() {
	s.mu.Lock()
	s.items = []domain.CartItem{}
	s.saved = []domain.CartItem{}
	s.backendTotals = domain.BackendTotals{}
	s.inFlight = 0
	s.lastErr = ""
	s.appliedSeq = s.issuedSeq
	s.epoch++
	s.mu.Unlock()

	s.publish()
}

// RestoreSaved replaces the saved list, e.g. with one persisted by an
// earlier session.
func (s *Store) RestoreSaved(items []domain.CartItem) {
	s.mu.Lock()
	s.saved = append([]domain.CartItem{}, items...)
	s.mu.Unlock()

	s.publish()
}

// Subscribe registers fn to be called with a snapshot after every state
// change. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CartItem{}, s.items...)
}

func (s *Store) Saved() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CartItem{}, s.saved...)
}

func (s *Store) BackendTotals() domain.BackendTotals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backendTotals
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// Err returns the message of the last failed call, "" after a success.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// sync is the single path for calls that return a cart: it tracks loading
// and error state and replaces local state with the response on success.
func (s *Store) sync(ctx context.Context, call func(context.Context) (*domain.CartDTO, error)) error {
	tok := s.begin()

	dto, err := call(ctx)
	if err == nil && dto == nil {
		err = &client.ClientError{Op: "decode cart", Err: errors.New("empty response")}
	}
	if err != nil {
		s.finish(tok, err)
		return err
	}

	s.mu.Lock()
	if tok.epoch == s.epoch {
		s.inFlight = max(0, s.inFlight-1)
	}
	s.replaceLocked(tok, dto)
	s.mu.Unlock()

	s.publish()
	return nil
}

// callToken identifies one backend call: its issue order and the Reset
// epoch it was started in.
type callToken struct {
	seq   uint64
	epoch uint64
}

func (s *Store) begin() callToken {
	s.mu.Lock()
	s.inFlight++
	s.lastErr = ""
	s.issuedSeq++
	tok := callToken{seq: s.issuedSeq, epoch: s.epoch}
	s.mu.Unlock()

	s.publish()
	return tok
}

func (s *Store) finish(tok callToken, err error) {
	s.mu.Lock()
	if tok.epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.inFlight = max(0, s.inFlight-1)
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()

	s.publish()
}

func (s *Store) replaceLocked(tok callToken, dto *domain.CartDTO) {
	if tok.epoch != s.epoch {
		log.Debugf("Discarding cart response %d started before reset", tok.seq)
		return
	}
	if s.opts.DiscardStaleResponses && tok.seq < s.appliedSeq {
		log.Debugf("Discarding cart response %d, %d already applied", tok.seq, s.appliedSeq)
		return
	}
	s.appliedSeq = max(s.appliedSeq, tok.seq)

	items := make([]domain.CartItem, 0, len(dto.Items))
	for _, item := range dto.Items {
		if item.Qty < 1 {
			log.Warnf("Dropping cart line %s with quantity %d", item.ID, item.Qty)
			continue
		}
		items = append(items, item)
	}

	s.items = items
	s.backendTotals = dto.BackendTotals()
}

// HasSaved reports whether id is in the saved list.
func (s *Store) HasSaved(id string) bool {
	_, ok := s.findSaved(id)
	return ok
}

func (s *Store) findSaved(id string) (domain.CartItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.saved {
		if domain.SameID(item.ID, id) {
			return item, true
		}
	}
	return domain.CartItem{}, false
}

func (s *Store) maxQuantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.MaxQuantity
}

func (s *Store) isFeeLocked(item domain.CartItem) bool {
	return s.opts.FeeProductID != "" && domain.SameID(item.ProductID, s.opts.FeeProductID)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:         append([]domain.CartItem{}, s.items...),
		Saved:         append([]domain.CartItem{}, s.saved...),
		BackendTotals: s.backendTotals,
		IsLoading:     s.inFlight > 0,
		Error:         s.lastErr,
	}
}

func (s *Store) publish() {
	s.subMu.Lock()
	if len(s.subscribers) == 0 {
		s.subMu.Unlock()
		return
	}
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	snap := s.Snapshot()
	for _, fn := range subs {
		fn(snap)
	}
}
