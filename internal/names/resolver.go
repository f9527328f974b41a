package names

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Story91/Gambly/internal/store"
)

const (
	// Resolved names (and explicit misses) are cached for an hour so the
	// naming services are not hammered for addresses with no name.
	nameCacheTTL = 1 * time.Hour

	// noNameSentinel marks a cached negative result. Absence of the cache
	// entry means "not yet attempted or expired".
	noNameSentinel = "null"

	// Each outbound lookup is bounded; a timeout is a miss, never an error.
	lookupTimeout = 2 * time.Second
)

// Source is one external naming service. An empty name with a nil error
// means the service answered and the address has no name there.
type Source interface {
	Name() string
	Lookup(ctx context.Context, address string) (string, error)
}

// Resolver maps addresses to display names through a chain of sources
// with a store-backed TTL cache in front. Resolution is strictly
// best-effort: every failure mode collapses to "no display name".
type Resolver struct {
	store   store.Store
	sources []Source
}

func NewResolver(s store.Store, sources ...Source) *Resolver {
	return &Resolver{store: s, sources: sources}
}

// Resolve returns the display name for an address, trying the cache, then
// each source in order, short-circuiting on the first hit. The outcome,
// positive or negative, is cached for an hour.
func (r *Resolver) Resolve(ctx context.Context, address string) (string, bool) {
	cacheKey := store.NameCacheKey(address)

	cached, found, err := r.store.Get(ctx, cacheKey)
	if err != nil {
		slog.Warn("Name cache read failed, falling through to lookup", "address", address, "error", err)
	} else if found {
		if cached == noNameSentinel {
			return "", false
		}
		return cached, true
	}

	name := r.lookup(ctx, address)

	cacheValue := name
	if cacheValue == "" {
		cacheValue = noNameSentinel
	}
	if err := r.store.SetEx(ctx, cacheKey, cacheValue, nameCacheTTL); err != nil {
		slog.Warn("Name cache write failed", "address", address, "error", err)
	}

	return name, name != ""
}

// ResolveAll resolves a page of addresses in parallel. Addresses without
// a name are simply absent from the result. The fan-out is bounded by the
// caller's page size.
func (r *Resolver) ResolveAll(ctx context.Context, addresses []string) map[string]string {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		resolved = make(map[string]string)
	)

	for _, address := range addresses {
		wg.Add(1)
		go func(address string) {
			defer wg.Done()
			if name, ok := r.Resolve(ctx, address); ok {
				mu.Lock()
				resolved[address] = name
				mu.Unlock()
			}
		}(address)
	}

	wg.Wait()
	return resolved
}

func (r *Resolver) lookup(ctx context.Context, address string) string {
	for _, source := range r.sources {
		lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
		name, err := source.Lookup(lookupCtx, address)
		cancel()
		if err != nil {
			slog.Debug("Name lookup failed", "source", source.Name(), "address", address, "error", err)
			continue
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// HTTPSource resolves names from a JSON HTTP resolver API shaped like
// GET {baseURL}/{address} -> {"name": "..."}.
type HTTPSource struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewHTTPSource(name, baseURL string) *HTTPSource {
	return &HTTPSource{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: lookupTimeout},
	}
}

func (s *HTTPSource) Name() string { return s.name }

func (s *HTTPSource) Lookup(ctx context.Context, address string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+address, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil // Answered: no name registered
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Name string `json:"name"`
		ENS  string `json:"ens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if body.Name != "" {
		return body.Name, nil
	}
	return body.ENS, nil
}
