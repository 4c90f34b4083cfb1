package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const maxParallelProbes = 8

// Supplier hands out outbound proxies in round-robin order.
type Supplier interface {
	Get() string
}

type supplier struct {
	mu      sync.Mutex
	proxies []string
	next    int
}

// NewSupplier probes every configured proxy against probeURL and keeps the
// ones that answered, preserving configuration order.
func NewSupplier(ctx context.Context, proxies []string, probeURL string) Supplier {
	if len(proxies) == 0 {
		return &supplier{}
	}

	reachable := make([]bool, len(proxies))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelProbes)
	for i, proxyURL := range proxies {
		g.Go(func() error {
			reachable[i] = probe(ctx, proxyURL, probeURL)
			return nil
		})
	}
	_ = g.Wait()

	working := make([]string, 0, len(proxies))
	for i, ok := range reachable {
		if ok {
			working = append(working, proxies[i])
		}
	}

	log.Infof("🔗 %d of %d proxies reachable", len(working), len(proxies))
	return &supplier{proxies: working}
}

func (s *supplier) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.proxies) == 0 {
		return ""
	}

	p := s.proxies[s.next]
	s.next = (s.next + 1) % len(s.proxies)
	return p
}

func probe(ctx context.Context, proxyURL, probeURL string) bool {
	c := resty.New().
		SetTimeout(5 * time.Second).
		SetProxy(proxyURL)
	defer c.Close()

	resp, err := c.R().SetContext(ctx).Get(probeURL)
	if err != nil {
		log.Warnf("Proxy %s unreachable: %v", proxyURL, err)
		return false
	}
	if resp.IsError() {
		log.Warnf("Proxy %s answered %s", proxyURL, resp.Status())
		return false
	}
	return true
}
