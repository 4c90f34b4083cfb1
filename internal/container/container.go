package container

import (
	"context"
	"fmt"
	"strings"

	"storefront/cart/internal/cart"
	"storefront/cart/internal/client"
	"storefront/cart/internal/config"
	"storefront/cart/internal/proxy"
	"storefront/cart/internal/service"
	"storefront/cart/internal/state"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Client       client.BackendClient
	StateManager state.StateManager
	Store        *cart.Store

	Service *service.Service

	redis *redis.Client
}

// New creates a new container with all dependencies initialized. The
// persisted session cookie is used unless one is configured explicitly.
func New(ctx context.Context, cfg *config.Config, notifier cart.Notifier, navigator cart.Navigator) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Debug("✅ Connected to Redis")

		container.redis = rdb
		container.StateManager = state.NewRedisStateManager(rdb, cfg.Redis.KeyPrefix)
	} else {
		log.Warn("⚠️ Redis disabled, saved items and session cookie last for this run only")
		container.StateManager = state.NewMemoryStateManager()
	}

	backendCfg := cfg.Backend
	if backendCfg.SessionCookie == "" {
		st, err := container.StateManager.Load(ctx, cfg.Redis.Session)
		if err != nil {
			container.Close()
			return nil, err
		}
		backendCfg.SessionCookie = st.SessionCookie
	}

	var proxySupplier proxy.Supplier
	if len(backendCfg.Proxies) > 0 {
		probeURL := strings.TrimRight(backendCfg.BaseURL, "/") + "/api/config"
		proxySupplier = proxy.NewSupplier(ctx, backendCfg.Proxies, probeURL)
	}

	backendClient, err := client.NewBackendClient(backendCfg, proxySupplier)
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize backend client: %w", err)
	}
	container.Client = backendClient

	container.Store = cart.NewStore(backendClient, notifier, navigator, cart.Options{
		FeeProductID:          cfg.Cart.FeeProductID,
		MaxQuantity:           cfg.Cart.MaxQuantity,
		DiscardStaleResponses: cfg.Cart.DiscardStaleResponses,
	})

	container.Service = service.NewService(
		container.Store,
		backendClient,
		container.StateManager,
		cfg.Redis.Session,
		cfg.Cart.FeeProductID,
	)

	return container, nil
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
