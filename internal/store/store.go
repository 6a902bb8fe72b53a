package store

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"allowance-client/internal/api"
	"allowance-client/internal/cache"
	"allowance-client/internal/config"
	"allowance-client/internal/session"
)

// Options permite reemplazar dependencias en tests.
type Options struct {
	Logger     *zap.Logger
	Registerer prometheus.Registerer
	// Persister, si no es nil, ignora cfg.SessionBackend.
	Persister session.Persister
	// HTTPBase es el RoundTripper de fondo del Transport.
	HTTPBase http.RoundTripper
}

// Store es el contenedor de estado del cliente: sesion, cache y clientes por
// recurso. Se construye una vez al arrancar y se cierra al salir.
type Store struct {
	logger  *zap.Logger
	session *session.Store
	cache   *cache.Cache
	redis   *redis.Client

	auth         *api.AuthClient
	rates        *api.RatesClient
	ads          *api.AdsClient
	transactions *api.TransactionsClient
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store: nil config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Store{logger: logger}

	persister := opts.Persister
	if persister == nil {
		p, redisClient, err := newPersister(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		persister = p
		s.redis = redisClient
	}
	s.session = session.New(ctx, persister, logger)
	s.cache = cache.New(logger, cache.NewMetrics(reg))

	transport, err := api.NewTransport(api.TransportConfig{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
		Tokens:  s.session,
		Logger:  logger,
		Metrics: api.NewMetrics(reg),
		Base:    opts.HTTPBase,
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	s.auth = api.NewAuthClient(transport, s.cache)
	s.rates = api.NewRatesClient(transport, s.cache)
	s.ads = api.NewAdsClient(transport, s.cache)
	s.transactions = api.NewTransactionsClient(transport, s.cache)
	return s, nil
}

// newPersister elige el backend de sesion. Si redis no responde se usa el
// archivo local.
func newPersister(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Persister, *redis.Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.SessionBackend)) {
	case "", "file":
		p, err := session.NewFilePersister(cfg.SessionDir)
		return p, nil, err
	case "memory":
		return session.NewMemoryPersister(), nil, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, nil, fmt.Errorf("session backend redis requires REDIS_ADDR")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using file session", zap.Error(err))
			_ = client.Close()
			p, err := session.NewFilePersister(cfg.SessionDir)
			return p, nil, err
		}
		return session.NewRedisPersister(client), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

// Close libera el cliente redis si se abrio uno.
func (s *Store) Close() error {
	if s.redis == nil {
		return nil
	}
	err := s.redis.Close()
	s.redis = nil
	return err
}

func (s *Store) Session() *session.Store {
	return s.session
}

func (s *Store) Cache() *cache.Cache {
	return s.cache
}
