package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/tokopos/terminal-api/pkg/config"
	"github.com/tokopos/terminal-api/pkg/enums"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	redisclient "github.com/tokopos/terminal-api/pkg/redis"
)

const currencyPreference = "currency"

// DefaultCurrency is used until a terminal picks one explicitly.
const DefaultCurrency = enums.CurrencyIDR

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Publish(ctx context.Context, channel string, payload any) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
	PreferenceKey(sessionID, name string) string
	CurrencyChannel(sessionID string) string
}

type subscription interface {
	Channel(opts ...redislib.ChannelOption) <-chan *redislib.Message
	Close() error
}

type subscriber interface {
	Subscribe(ctx context.Context, channel string) (*redislib.PubSub, error)
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, sessionID string) (bool, error)
}

// TerminalSessions is the full session surface the HTTP layer consumes.
type TerminalSessions interface {
	AccessSessionChecker
	UpstreamToken(ctx context.Context, sessionID string) (string, error)
	Currency(ctx context.Context, sessionID string) (enums.Currency, error)
	SetCurrency(ctx context.Context, sessionID string, currency enums.Currency) error
	WatchCurrency(ctx context.Context, sessionID string) (<-chan enums.Currency, error)
}

// Manager owns terminal sessions and their preferences in Redis: the upstream
// bearer token tied to each session, and the display currency with a pub/sub
// stream for live updates.
type Manager struct {
	store  sessionStore
	keyer  sessionKeyer
	pubsub subscriber
	ttl    time.Duration
}

var _ TerminalSessions = (*Manager)(nil)

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store:  client,
		keyer:  client,
		pubsub: client,
		ttl:    cfg.TTL,
	}, nil
}

// Create stores the upstream token under a fresh session.
func (m *Manager) Create(ctx context.Context, sessionID, upstreamToken string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(upstreamToken) == "" {
		return fmt.Errorf("upstream token is required")
	}
	return m.store.Set(ctx, m.keyer.SessionKey(sessionID), upstreamToken, m.ttl)
}

// HasSession reports whether the session is still live.
func (m *Manager) HasSession(ctx context.Context, sessionID string) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, fmt.Errorf("session id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UpstreamToken returns the upstream bearer token for the session.
func (m *Manager) UpstreamToken(ctx context.Context, sessionID string) (string, error) {
	token, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	return token, nil
}

// Revoke deletes the session and its preferences.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx,
		m.keyer.SessionKey(sessionID),
		m.keyer.PreferenceKey(sessionID, currencyPreference),
	)
}

// Currency returns the session's display currency, falling back to the
// default when none was chosen yet.
func (m *Manager) Currency(ctx context.Context, sessionID string) (enums.Currency, error) {
	raw, err := m.store.Get(ctx, m.keyer.PreferenceKey(sessionID, currencyPreference))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return DefaultCurrency, nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load currency preference")
	}
	currency, parseErr := enums.ParseCurrency(raw)
	if parseErr != nil {
		return DefaultCurrency, nil
	}
	return currency, nil
}

// SetCurrency stores the preference and broadcasts the change to watchers.
func (m *Manager) SetCurrency(ctx context.Context, sessionID string, currency enums.Currency) error {
	if !currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	key := m.keyer.PreferenceKey(sessionID, currencyPreference)
	if err := m.store.Set(ctx, key, currency.String(), m.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store currency preference")
	}
	if err := m.store.Publish(ctx, m.keyer.CurrencyChannel(sessionID), currency.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish currency change")
	}
	return nil
}

// WatchCurrency streams currency changes for the session until the context is
// canceled. The channel is closed when the watch ends.
func (m *Manager) WatchCurrency(ctx context.Context, sessionID string) (<-chan enums.Currency, error) {
	sub, err := m.pubsub.Subscribe(ctx, m.keyer.CurrencyChannel(sessionID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe currency channel")
	}
	return watchSubscription(ctx, sub), nil
}

func watchSubscription(ctx context.Context, sub subscription) <-chan enums.Currency {
	out := make(chan enums.Currency)
	go func() {
		defer close(out)
		defer sub.Close()
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				currency, err := enums.ParseCurrency(msg.Payload)
				if err != nil {
					continue
				}
				select {
				case out <- currency:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
