package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrRateLimited = errors.New("too many messages, slow down")

// SendRateLimiter limita cuántos mensajes puede enviar un usuario por ventana.
type SendRateLimiter interface {
	Allow(ctx context.Context, userID string) bool
}

const (
	sendLimiterPrefix  = "msg:rl:"
	sendLimiterTimeout = 300 * time.Millisecond
)

// La ventana es fija por usuario: la primera petición arma el TTL del contador.
const redisSendAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisSendRateLimiter struct {
	client     redisEvaler
	logger     *zap.Logger
	ttlSeconds int
	max        int
}

// NewRedisSendRateLimiter comparte el contador entre instancias; sin cliente devuelve nil.
func NewRedisSendRateLimiter(client *redis.Client, window time.Duration, limit int, logger *zap.Logger) SendRateLimiter {
	if client == nil {
		return nil
	}
	if limit <= 0 {
		limit = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisSendRateLimiter{
		client:     client,
		logger:     logger,
		ttlSeconds: windowSeconds(window),
		max:        limit,
	}
}

// windowSeconds redondea hacia arriba: EXPIRE no acepta fracciones.
func windowSeconds(window time.Duration) int {
	if window <= 0 {
		return 60
	}
	return int(math.Ceil(window.Seconds()))
}

// Allow falla abierto si Redis no responde a tiempo.
func (l *redisSendRateLimiter) Allow(ctx context.Context, userID string) bool {
	if l == nil || l.client == nil {
		return true
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, sendLimiterTimeout)
	defer cancel()

	count, err := l.client.Eval(ctx, redisSendAllowScript, []string{sendLimiterPrefix + userID}, l.ttlSeconds).Int()
	if err != nil {
		l.logger.Warn("send rate limiter unavailable", zap.String("user_id", userID), zap.Error(err))
		return true
	}
	return count <= l.max
}

type memorySendRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
	now    func() time.Time
}

// NewMemorySendRateLimiter crea un rate limiter en memoria para una sola instancia.
func NewMemorySendRateLimiter(window time.Duration, max int) SendRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memorySendRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *memorySendRateLimiter) Allow(_ context.Context, userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := l.prune(userID, now.Add(-l.window))
	if len(kept) >= l.max {
		return false
	}
	l.hits[userID] = append(kept, now)
	return true
}

// prune descarta los envíos fuera de la ventana y borra la clave si queda vacía.
func (l *memorySendRateLimiter) prune(userID string, cutoff time.Time) []time.Time {
	entries := l.hits[userID]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.hits, userID)
		return nil
	}
	l.hits[userID] = kept
	return kept
}
