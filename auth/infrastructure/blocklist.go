package infrastructure

import (
	"context"
	"sync"
	"time"
)

// Blocklist records revoked session tokens until their natural expiry, so
// a logged-out token is rejected even though its JWT signature still
// verifies (POST /auth/logout adds entries; NewAuthMiddleware checks them).
type Blocklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// ValkeyBlocklist stores revocations as keys with a TTL matching the
// token's remaining lifetime, so entries self-expire without a sweeper.
type ValkeyBlocklist struct {
	client *ValkeyClient
}

func NewValkeyBlocklist(client *ValkeyClient) *ValkeyBlocklist {
	return &ValkeyBlocklist{client: client}
}

func (b *ValkeyBlocklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}
	key := b.client.Key("revoked", token)
	cmd := b.client.inner.B().Set().Key(key).Value("1").Ex(ttl).Build()
	return b.client.inner.Do(ctx, cmd).Error()
}

func (b *ValkeyBlocklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := b.client.Key("revoked", token)
	cmd := b.client.inner.B().Exists().Key(key).Build()
	n, err := b.client.inner.Do(ctx, cmd).ToInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryBlocklist is the fallback used when Cache.ValkeyEnabled is false.
// Expired entries are swept lazily on access rather than by a background
// goroutine, since revocation traffic is low volume.
type MemoryBlocklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryBlocklist() *MemoryBlocklist {
	return &MemoryBlocklist{revoked: make(map[string]time.Time)}
}

func (b *MemoryBlocklist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[token] = time.Now().Add(ttl)
	return nil
}

func (b *MemoryBlocklist) IsRevoked(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expiresAt, ok := b.revoked[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		delete(b.revoked, token)
		return false, nil
	}
	return true, nil
}
