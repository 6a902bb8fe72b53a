package fakeapi

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LoginLimiter decide si un cliente puede intentar otro login.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type memoryLoginLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewLoginLimiter limita por clave (IP) con un token bucket en memoria.
func NewLoginLimiter(perMinute, burst int) LoginLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &memoryLoginLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *memoryLoginLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// loginCounter es el subconjunto de redis que usa el limitador.
type loginCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

const loginKeyPrefix = "allowance:login:"

// redisLoginLimiter cuenta intentos por IP en ventanas fijas de un minuto,
// compartidas entre instancias del dev server.
type redisLoginLimiter struct {
	client    loginCounter
	perMinute int64
	logger    *zap.Logger
	now       func() time.Time
}

func NewRedisLoginLimiter(client *redis.Client, perMinute int, logger *zap.Logger) LoginLimiter {
	if client == nil {
		return nil
	}
	if perMinute <= 0 {
		perMinute = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisLoginLimiter{
		client:    client,
		perMinute: int64(perMinute),
		logger:    logger,
		now:       time.Now,
	}
}

// loginKey usa la forma canonica de la IP para que "::ffff:10.0.0.1" y
// "10.0.0.1" compartan contador.
func loginKey(ip string, window int64) string {
	ip = strings.TrimSpace(ip)
	if parsed := net.ParseIP(ip); parsed != nil {
		ip = parsed.String()
	} else {
		ip = strings.ToLower(ip)
	}
	return loginKeyPrefix + ip + ":" + strconv.FormatInt(window, 10)
}

// Allow falla abierto si redis no responde.
func (l *redisLoginLimiter) Allow(ctx context.Context, ip string) bool {
	if l == nil || l.client == nil {
		return true
	}
	if strings.TrimSpace(ip) == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	key := loginKey(ip, l.now().Unix()/60)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("login limiter unavailable", zap.String("ip", ip), zap.Error(err))
		return true
	}
	if count == 1 {
		// la ventana siguiente usa otra clave; el TTL solo limpia
		if err := l.client.Expire(ctx, key, 2*time.Minute).Err(); err != nil {
			l.logger.Warn("login limiter expire failed", zap.String("key", key), zap.Error(err))
		}
	}
	if count > l.perMinute {
		l.logger.Info("login attempts throttled", zap.String("ip", ip), zap.Int64("count", count))
		return false
	}
	return true
}
