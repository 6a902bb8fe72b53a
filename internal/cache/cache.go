package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FetchFunc trae el valor desde la red.
type FetchFunc func(ctx context.Context) (any, error)

// State es la vista de una entrada para la capa de presentacion.
type State struct {
	Data      any
	Loading   bool
	Err       error
	FetchedAt time.Time
	Stale     bool
}

type entry struct {
	data      any
	hasData   bool
	err       error
	fetchedAt time.Time
	stale     bool
	tags      []Tag
}

// Cache guarda resultados de queries por Key y deduplica fetches en vuelo.
// Los valores devueltos se comparten entre llamadores y son de solo lectura.
type Cache struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	inflight map[Key]string
	seq      uint64
	epoch    uint64
	group    singleflight.Group
	metrics  *Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func New(logger *zap.Logger, metrics *Metrics) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries:  make(map[Key]*entry),
		inflight: make(map[Key]string),
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// GetOrFetch devuelve la entrada fresca o se une al fetch en vuelo para la
// misma clave; si no hay ninguno lo inicia. El fetch compartido corre sin la
// cancelacion del llamador: un ctx cancelado solo deja de esperar.
func (c *Cache) GetOrFetch(ctx context.Context, key Key, tags []Tag, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.hasData && !e.stale && e.err == nil {
		data := e.data
		c.mu.Unlock()
		c.metrics.hit(key.Endpoint)
		return data, nil
	}
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.tags = tags

	flightID, joined := c.inflight[key]
	if !joined {
		c.seq++
		flightID = key.String() + "#" + strconv.FormatUint(c.seq, 10)
		c.inflight[key] = flightID
	}
	// DoChan no ejecuta fetch de forma sincronica, asi que se puede llamar
	// con el lock tomado.
	detached := context.WithoutCancel(ctx)
	epoch := c.epoch
	ch := c.group.DoChan(flightID, func() (any, error) {
		v, err := fetch(detached)
		c.store(key, flightID, epoch, v, err)
		return v, err
	})
	c.mu.Unlock()

	if joined {
		c.metrics.join(key.Endpoint)
	} else {
		c.metrics.miss(key.Endpoint)
	}

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// store escribe el resultado. Gana la ultima respuesta en llegar; solo el fetch
// vigente (no separado por Invalidate) limpia la marca stale.
func (c *Cache) store(key Key, flightID string, epoch uint64, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || epoch != c.epoch {
		// Reset durante el fetch: el resultado se descarta.
		return
	}
	current := c.inflight[key] == flightID
	if current {
		delete(c.inflight, key)
	}
	if err != nil {
		e.err = err
		c.logger.Debug("cache fetch failed", zap.String("key", key.String()), zap.Error(err))
		return
	}
	e.data = v
	e.hasData = true
	e.err = nil
	e.fetchedAt = c.now()
	if current {
		e.stale = false
	}
}

// Invalidate marca como stale todas las entradas con alguno de los tags y
// separa sus fetches en vuelo para que la proxima lectura vuelva a pedir.
func (c *Cache) Invalidate(tags ...Tag) int {
	if len(tags) == 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	marked := 0
	for key, e := range c.entries {
		matched, ok := matchTag(e.tags, tags)
		if !ok {
			continue
		}
		e.stale = true
		delete(c.inflight, key)
		marked++
		c.metrics.invalidated(matched, 1)
	}
	if marked > 0 {
		c.logger.Debug("cache invalidated", zap.Int("entries", marked), zap.Any("tags", tags))
	}
	return marked
}

// Reset descarta todo el cache, por ejemplo al cerrar sesion.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*entry)
	c.inflight = make(map[Key]string)
	c.epoch++
}

func (c *Cache) State(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	_, loading := c.inflight[key]
	if !ok {
		return State{Loading: loading}
	}
	return State{
		Data:      e.data,
		Loading:   loading,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
		Stale:     e.stale,
	}
}

func matchTag(have, want []Tag) (Tag, bool) {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return w, true
			}
		}
	}
	return "", false
}

// Query es la version tipada de GetOrFetch.
func Query[T any](ctx context.Context, c *Cache, key Key, tags []Tag, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.GetOrFetch(ctx, key, tags, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected %T for %s", v, key)
	}
	return out, nil
}
