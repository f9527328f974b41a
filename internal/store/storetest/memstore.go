// Package storetest provides an in-memory Store double for unit tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Story91/Gambly/internal/store"
)

// MemStore implements store.Store in memory. It mirrors the semantics the
// repositories rely on: atomic hash increments, sorted-set upserts and
// TTL expiry. FailWith forces every subsequent call to fail, for testing
// degraded paths.
type MemStore struct {
	mu      sync.Mutex
	hashes  map[string]map[string]string
	zsets   map[string]map[string]float64
	values  map[string]memValue
	failErr error

	now func() time.Time
}

type memValue struct {
	value     string
	expiresAt time.Time
}

func New() *MemStore {
	return &MemStore{
		hashes: make(map[string]map[string]string),
		zsets:  make(map[string]map[string]float64),
		values: make(map[string]memValue),
		now:    time.Now,
	}
}

// FailWith makes every following call return err. Pass nil to recover.
func (m *MemStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// SetNow overrides the clock used for TTL expiry.
func (m *MemStore) SetNow(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	out := make(map[string]string, len(m.hashes[key]))
	for f, v := range m.hashes[key] {
		out[f] = v
	}
	return out, nil
}

func (m *MemStore) HSet(ctx context.Context, key string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	h := m.hash(key)
	for f, v := range fields {
		h[f] = fmt.Sprintf("%v", v)
	}
	return nil
}

func (m *MemStore) HSetNX(ctx context.Context, key, field string, value interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return false, m.failErr
	}
	h := m.hash(key)
	if _, ok := h[field]; ok {
		return false, nil
	}
	h[field] = fmt.Sprintf("%v", value)
	return true, nil
}

func (m *MemStore) HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return 0, m.failErr
	}
	h := m.hash(key)
	current, _ := strconv.ParseInt(h[field], 10, 64)
	current += incr
	h[field] = strconv.FormatInt(current, 10)
	return current, nil
}

func (m *MemStore) HGet(ctx context.Context, key, field string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return "", m.failErr
	}
	return m.hashes[key][field], nil
}

func (m *MemStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return false, m.failErr
	}
	if _, ok := m.hashes[key]; ok {
		return true, nil
	}
	if _, ok := m.zsets[key]; ok {
		return true, nil
	}
	_, ok := m.values[key]
	return ok, nil
}

func (m *MemStore) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var keys []string
	for key := range m.hashes {
		if matchPattern(pattern, key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	z, ok := m.zsets[key]
	if !ok {
		z = make(map[string]float64)
		m.zsets[key] = z
	}
	z[member] = score
	return nil
}

func (m *MemStore) ZCard(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return 0, m.failErr
	}
	return int64(len(m.zsets[key])), nil
}

func (m *MemStore) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]store.ZMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	members := make([]store.ZMember, 0, len(m.zsets[key]))
	for member, score := range m.zsets[key] {
		members = append(members, store.ZMember{Member: member, Score: score})
	}
	// Highest score first; Redis breaks score ties by member lexicographic
	// order, reversed for ZREVRANGE.
	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}
		return members[i].Member > members[j].Member
	})
	if start < 0 {
		start = 0
	}
	if start >= int64(len(members)) {
		return nil, nil
	}
	if stop < 0 || stop >= int64(len(members)) {
		stop = int64(len(members)) - 1
	}
	return members[start : stop+1], nil
}

func (m *MemStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return "", false, m.failErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", false, nil
	}
	if !v.expiresAt.IsZero() && m.now().After(v.expiresAt) {
		delete(m.values, key)
		return "", false, nil
	}
	return v.value, true, nil
}

func (m *MemStore) SetEx(ctx context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	v := memValue{value: value}
	if ttl > 0 {
		v.expiresAt = m.now().Add(ttl)
	}
	m.values[key] = v
	return nil
}

func (m *MemStore) hash(key string) map[string]string {
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	return h
}

// matchPattern supports the single-star glob shape the repositories use.
func matchPattern(pattern, key string) bool {
	i := strings.IndexByte(pattern, '*')
	if i < 0 {
		return pattern == key
	}
	prefix, suffix := pattern[:i], pattern[i+1:]
	return len(key) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(key, prefix) &&
		strings.HasSuffix(key, suffix)
}
