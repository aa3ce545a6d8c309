package resolver

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const lookupTimeout = 3 * time.Second

// LookupFunc resolves a hostname to its addresses.
type LookupFunc func(ctx context.Context, host string) ([]string, error)

// Resolver maps serials to addresses. A configured host entry wins; without
// one the serial itself is looked up, since devices register it as their
// hostname. Successful lookups are cached for the resolver's lifetime.
type Resolver struct {
	hosts  map[string]string
	lookup LookupFunc
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]string
}

func NewResolver(hosts map[string]string, logger *zap.Logger) *Resolver {
	return NewResolverWithLookup(hosts, net.DefaultResolver.LookupHost, logger)
}

func NewResolverWithLookup(hosts map[string]string, lookup LookupFunc, logger *zap.Logger) *Resolver {
	normalized := make(map[string]string, len(hosts))
	for serial, host := range hosts {
		normalized[strings.ToUpper(serial)] = host
	}
	return &Resolver{
		hosts:  normalized,
		lookup: lookup,
		logger: logger.With(zap.String("component", "resolver")),
		cache:  map[string]string{},
	}
}

func (r *Resolver) ResolveAddresses(ctx context.Context, serials []string) map[string]string {
	out := make(map[string]string, len(serials))
	for _, serial := range serials {
		if address, ok := r.Resolve(ctx, serial); ok {
			out[serial] = address
		}
	}
	return out
}

func (r *Resolver) Resolve(ctx context.Context, serial string) (string, bool) {
	key := strings.ToUpper(serial)

	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return cached, true
	}

	host, configured := r.hosts[key]
	if !configured {
		host = serial
	}
	if ip := net.ParseIP(host); ip != nil {
		r.store(key, host)
		return host, true
	}

	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	addresses, err := r.lookup(lookupCtx, host)
	if err != nil || len(addresses) == 0 {
		if configured {
			r.logger.Warn("host lookup failed", zap.String("serial", serial), zap.String("host", host), zap.Error(err))
		} else {
			r.logger.Debug("serial lookup failed", zap.String("serial", serial), zap.Error(err))
		}
		return "", false
	}

	address := preferIPv4(addresses)
	r.logger.Debug("address resolved", zap.String("serial", serial), zap.String("address", address))
	r.store(key, address)
	return address, true
}

// store never replaces an entry.
func (r *Resolver) store(key, address string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cache[key]; !ok {
		r.cache[key] = address
	}
}

func preferIPv4(addresses []string) string {
	for _, address := range addresses {
		if ip := net.ParseIP(address); ip != nil && ip.To4() != nil {
			return address
		}
	}
	return addresses[0]
}
