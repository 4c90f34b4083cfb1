package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/cart/internal/config"
	"storefront/cart/internal/domain"
	"storefront/cart/internal/proxy"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	cartPath         = "/cart"
	addItemPath      = "/cart/add"
	changeStockPath  = "/changeStock"
	deleteItemPath   = "/delete/{id}"
	clearCartPath    = "/clear"
	checkoutPath     = "/new-cart"
	frontendConfPath = "/api/config"
	productsPath     = "/products"
	productPath      = "/products/{id}"
)

// BackendClient talks to the storefront backend. Every cart call returns the
// full authoritative cart.
type BackendClient interface {
	GetCart(ctx context.Context) (*domain.CartDTO, error)
	AddItem(ctx context.Context, productID string, qty int) (*domain.CartDTO, error)
	ChangeQuantity(ctx context.Context, productID string, qty int) (*domain.CartDTO, error)
	DeleteItem(ctx context.Context, id string) (*domain.CartDTO, error)
	ClearCart(ctx context.Context) (*domain.CartDTO, error)
	NewCheckoutSession(ctx context.Context) (*domain.CheckoutSession, error)

	GetFeeProductID(ctx context.Context) (string, error)
	GetProducts(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// SessionCookie returns the current session cookie value, "" if none.
	SessionCookie() string
}

type backendClient struct {
	rl         ratelimit.Limiter
	config     config.BackendConfig
	baseURL    *url.URL
	httpClient *resty.Client
	jar        http.CookieJar

	proxySupplier proxy.Supplier
}

type quantityRequest struct {
	ProductID any `json:"productId"`
	Quantity  int `json:"quantity"`
}

func NewBackendClient(cfg config.BackendConfig, proxySupplier proxy.Supplier) (BackendClient, error) {
	baseURL, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url %q: %w", cfg.BaseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if cfg.SessionCookie != "" {
		jar.SetCookies(baseURL, []*http.Cookie{{
			Name:  cfg.SessionCookieName,
			Value: cfg.SessionCookie,
			Path:  "/",
		}})
	}

	httpClient := resty.New().
		SetBaseURL(baseURL.String()).
		SetCookieJar(jar).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	if cfg.UserAgent != "" {
		httpClient.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(time.Duration(cfg.Timeout) * time.Second)
	}

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			httpClient.SetProxy(proxyURL)
			log.Infof("🔗 Using proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &backendClient{
		rl:            rl,
		config:        cfg,
		baseURL:       baseURL,
		httpClient:    httpClient,
		jar:           jar,
		proxySupplier: proxySupplier,
	}, nil
}

func (c *backendClient) GetCart(ctx context.Context) (*domain.CartDTO, error) {
	return c.cartCall(ctx, c.newRequest(ctx), http.MethodGet, cartPath)
}

func (c *backendClient) AddItem(ctx context.Context, productID string, qty int) (*domain.CartDTO, error) {
	req := c.newRequest(ctx).SetBody(quantityRequest{ProductID: wireID(productID), Quantity: qty})
	return c.cartCall(ctx, req, http.MethodPost, addItemPath)
}

func (c *backendClient) ChangeQuantity(ctx context.Context, productID string, qty int) (*domain.CartDTO, error) {
	req := c.newRequest(ctx).SetBody(quantityRequest{ProductID: wireID(productID), Quantity: qty})
	return c.cartCall(ctx, req, http.MethodPut, changeStockPath)
}

func (c *backendClient) DeleteItem(ctx context.Context, id string) (*domain.CartDTO, error) {
	req := c.newRequest(ctx).SetPathParam("id", id)
	return c.cartCall(ctx, req, http.MethodDelete, deleteItemPath)
}

func (c *backendClient) ClearCart(ctx context.Context) (*domain.CartDTO, error) {
	return c.cartCall(ctx, c.newRequest(ctx), http.MethodDelete, clearCartPath)
}

func (c *backendClient) NewCheckoutSession(ctx context.Context) (*domain.CheckoutSession, error) {
	body, err := c.do(ctx, c.newRequest(ctx), http.MethodGet, checkoutPath)
	if err != nil {
		return nil, err
	}

	var session domain.CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, &ClientError{Op: "decode checkout session", Err: err}
	}
	return &session, nil
}

func (c *backendClient) GetFeeProductID(ctx context.Context) (string, error) {
	body, err := c.do(ctx, c.newRequest(ctx), http.MethodGet, frontendConfPath)
	if err != nil {
		return "", err
	}

	var conf struct {
		CustomFeeID json.Number `json:"customFeeId"`
	}
	if err := json.Unmarshal(body, &conf); err != nil {
		return "", &ClientError{Op: "decode frontend config", Err: err}
	}
	return conf.CustomFeeID.String(), nil
}

func (c *backendClient) SessionCookie() string {
	for _, cookie := range c.jar.Cookies(c.baseURL) {
		if cookie.Name == c.config.SessionCookieName {
			return cookie.Value
		}
	}
	return ""
}

func (c *backendClient) newRequest(ctx context.Context) *resty.Request {
	return c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
}

func (c *backendClient) cartCall(ctx context.Context, req *resty.Request, method, path string) (*domain.CartDTO, error) {
	body, err := c.do(ctx, req, method, path)
	if err != nil {
		return nil, err
	}

	var dto domain.CartDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, &ClientError{Op: "decode cart", Err: err}
	}
	return &dto, nil
}

// do executes the request and classifies the response. A 2xx that was
// redirected or came back as HTML is a login page, not a success.
func (c *backendClient) do(ctx context.Context, req *resty.Request, method, path string) ([]byte, error) {
	c.rl.Take()

	logger := log.WithFields(log.Fields{
		"method":     method,
		"path":       path,
		"request_id": req.Header.Get("X-Request-ID"),
	})
	logger.Debug("Calling backend")

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &ClientError{Op: "request cancelled", Err: ctx.Err()}
		}
		c.rotateProxy()
		return nil, &ClientError{Op: "request failed", Err: err}
	}

	code := resp.StatusCode()
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		logger.Warnf("Backend rejected session with %d", code)
		return nil, &AuthRequiredError{StatusCode: code, Reason: "status"}
	case code == http.StatusBadRequest:
		return nil, &BadRequestError{Body: strings.TrimSpace(resp.String())}
	case code >= 300 && code < 400:
		// Redirect not followed, login flow as well
		return nil, &AuthRequiredError{StatusCode: code, Reason: "redirect"}
	case code < 200 || code > 299:
		return nil, newHTTPError(code)
	}

	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.Response != nil {
		logger.Warnf("Backend redirected to %s, session is not authenticated", raw.Request.URL.Path)
		authErr := &AuthRequiredError{StatusCode: code, Reason: "redirect"}
		if isHTML(resp.Header().Get("Content-Type")) {
			authErr.Page = loginPageTitle(resp.String())
		}
		return nil, authErr
	}

	if isHTML(resp.Header().Get("Content-Type")) {
		page := loginPageTitle(resp.String())
		logger.Warnf("Backend answered with HTML page %q instead of JSON", page)
		return nil, &AuthRequiredError{StatusCode: code, Reason: "html", Page: page}
	}

	logger.Debugf("Backend answered %d", code)
	return []byte(resp.String()), nil
}

// rotateProxy switches to the next proxy after a transport failure. The
// failed call is not retried, the next one goes through the new proxy.
func (c *backendClient) rotateProxy() {
	if c.proxySupplier == nil {
		return
	}
	if next := c.proxySupplier.Get(); next != "" {
		log.Infof("🔄 Switching to proxy: %s", next)
		c.httpClient.SetProxy(next)
	}
}

// wireID sends numeric ids as JSON numbers, which is what the backend binds
// productId to.
func wireID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}
