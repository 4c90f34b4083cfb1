package cart

import (
	"context"
	"encoding/json"
	"sync"

	"storefront/cart/internal/domain"
)

type call struct {
	op        string
	productID string
	qty       int
}

// fakeBackend answers cart calls from per-operation funcs and records every
// call it receives.
type fakeBackend struct {
	mu    sync.Mutex
	calls []call

	getCart  func(ctx context.Context) (*domain.CartDTO, error)
	addItem  func(ctx context.Context, productID string, qty int) (*domain.CartDTO, error)
	changeQt func(ctx context.Context, productID string, qty int) (*domain.CartDTO, error)
	deleteIt func(ctx context.Context, id string) (*domain.CartDTO, error)
	clear    func(ctx context.Context) (*domain.CartDTO, error)
	checkout func(ctx context.Context) (*domain.CheckoutSession, error)
}

func (f *fakeBackend) record(c call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeBackend) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call{}, f.calls...)
}

func (f *fakeBackend) GetCart(ctx context.Context) (*domain.CartDTO, error) {
	f.record(call{op: "get"})
	return f.getCart(ctx)
}

func (f *fakeBackend) AddItem(ctx context.Context, productID string, qty int) (*domain.CartDTO, error) {
	f.record(call{op: "add", productID: productID, qty: qty})
	return f.addItem(ctx, productID, qty)
}

func (f *fakeBackend) ChangeQuantity(ctx context.Context, productID string, qty int) (*domain.CartDTO, error) {
	f.record(call{op: "change", productID: productID, qty: qty})
	return f.changeQt(ctx, productID, qty)
}

func (f *fakeBackend) DeleteItem(ctx context.Context, id string) (*domain.CartDTO, error) {
	f.record(call{op: "delete", productID: id})
	return f.deleteIt(ctx, id)
}

func (f *fakeBackend) ClearCart(ctx context.Context) (*domain.CartDTO, error) {
	f.record(call{op: "clear"})
	return f.clear(ctx)
}

func (f *fakeBackend) NewCheckoutSession(ctx context.Context) (*domain.CheckoutSession, error) {
	f.record(call{op: "checkout"})
	return f.checkout(ctx)
}

func (f *fakeBackend) GetFeeProductID(context.Context) (string, error) {
	return "", nil
}

func (f *fakeBackend) GetProducts(context.Context, domain.ProductQuery) (*domain.ProductPage, error) {
	return &domain.ProductPage{}, nil
}

func (f *fakeBackend) GetProduct(context.Context, string) (*domain.Product, error) {
	return &domain.Product{}, nil
}

func (f *fakeBackend) SessionCookie() string {
	return ""
}

// dtoJSON decodes a cart the way the backend client would.
func dtoJSON(raw string) *domain.CartDTO {
	var dto domain.CartDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		panic(err)
	}
	return &dto
}

func ptr[T any](v T) *T {
	return &v
}

type recordedToast struct {
	title       string
	description string
}

type toastRecorder struct {
	mu     sync.Mutex
	toasts []recordedToast
}

func (r *toastRecorder) Notify(title, description string) {
	r.mu.Lock()
	r.toasts = append(r.toasts, recordedToast{title: title, description: description})
	r.mu.Unlock()
}

func (r *toastRecorder) Toasts() []recordedToast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedToast{}, r.toasts...)
}
