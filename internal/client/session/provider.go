package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/kv"
)

// Provider answers who is logged in. Empty strings mean "nobody".
type Provider interface {
	Token(ctx context.Context) (string, error)
	Identity(ctx context.Context) (string, error)
}

// KVProvider keeps the session in the key-value layer.
type KVProvider struct {
	store kv.Store
	now   func() time.Time
}

func NewKVProvider(store kv.Store) *KVProvider {
	return &KVProvider{store: store, now: time.Now}
}

// Save stores token together with the identity read from its claims.
func (p *KVProvider) Save(ctx context.Context, token string) error {
	claims, err := parseClaims(token)
	if err != nil {
		return err
	}
	identity := claims.identity()
	if identity == "" {
		return fmt.Errorf("%w: no email or subject claim", ErrInvalidToken)
	}

	if err := p.store.Set(ctx, kv.KeySessionToken, []byte(token)); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	if err := p.store.Set(ctx, kv.KeySessionIdentity, []byte(identity)); err != nil {
		return fmt.Errorf("save session identity: %w", err)
	}
	return nil
}

// Token returns the stored token unless it has expired.
func (p *KVProvider) Token(ctx context.Context) (string, error) {
	b, err := p.store.Get(ctx, kv.KeySessionToken)
	if err != nil || len(b) == 0 {
		return "", err
	}
	claims, err := parseClaims(string(b))
	if err != nil || claims.expired(p.now()) {
		return "", nil
	}
	return string(b), nil
}

// Identity returns the last known identity, even after the token expired, so
// an offline start can still find its cached data.
func (p *KVProvider) Identity(ctx context.Context) (string, error) {
	b, err := p.store.Get(ctx, kv.KeySessionIdentity)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *KVProvider) Clear(ctx context.Context) error {
	for _, key := range []string{kv.KeySessionToken, kv.KeySessionIdentity} {
		if err := p.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}
