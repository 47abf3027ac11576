package catalog

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/reservaestilo/booking-api/internal/clock"
	"github.com/reservaestilo/booking-api/internal/domain/booking"
	"github.com/reservaestilo/booking-api/internal/httperr"
)

const (
	redisKey       = "catalog:services"
	refreshTimeout = 20 * time.Second
)

// Cache mantiene el snapshot del catálogo compartido por todas las
// sesiones, con TTL corto. Habiendo un snapshot, los lectores nunca
// esperan a la planilla: un snapshot vencido se sirve igual y el
// refresh corre de fondo (uno a la vez). Si la planilla falla se sigue
// sirviendo el último snapshot bueno. Con Redis configurado, instancias
// hermanas comparten el snapshot.
type Cache struct {
	fetcher *Fetcher
	rdb     *redis.Client // nil = sin capa compartida
	clock   clock.Clock
	ttl     time.Duration

	mu         sync.RWMutex
	services   []booking.ServiceOffering
	fetchedAt  time.Time
	refreshing bool
}

func NewCache(fetcher *Fetcher, rdb *redis.Client, clk clock.Clock, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Cache{
		fetcher: fetcher,
		rdb:     rdb,
		clock:   clk,
		ttl:     ttl,
	}
}

// List retorna el catálogo vigente. Solo la primera carga del proceso
// espera por la planilla; después de eso la respuesta es inmediata.
func (c *Cache) List(ctx context.Context) ([]booking.ServiceOffering, error) {
	c.mu.RLock()
	services := c.services
	stale := c.clock.Now().Sub(c.fetchedAt) >= c.ttl
	c.mu.RUnlock()

	if services != nil {
		if stale {
			c.refreshInBackground()
		}
		return services, nil
	}

	return c.firstLoad(ctx)
}

// ByID busca un servicio por su id.
func (c *Cache) ByID(ctx context.Context, id string) (booking.ServiceOffering, error) {
	services, err := c.List(ctx)
	if err != nil {
		return booking.ServiceOffering{}, err
	}

	for _, s := range services {
		if s.ID == id {
			return s, nil
		}
	}
	return booking.ServiceOffering{}, httperr.ErrBusiness(httperr.CodeServiceNotFound)
}

// firstLoad puebla el snapshot inicial. Es la única ruta donde un
// lector espera la descarga: todavía no hay nada que servir.
func (c *Cache) firstLoad(ctx context.Context) ([]booking.ServiceOffering, error) {
	services, err := c.fetcher.Fetch(ctx)
	if err == nil {
		c.swap(ctx, services, true)
		return services, nil
	}

	log.Printf("catálogo: carga inicial falló: %v", err)

	if shared, ok := c.sharedSnapshot(ctx); ok {
		c.swap(ctx, shared, false)
		return shared, nil
	}

	// Otro lector pudo haber poblado el snapshot mientras tanto.
	c.mu.RLock()
	cached := c.services
	c.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}
	return nil, err
}

// refreshInBackground dispara un refresh si no hay otro en vuelo.
// Nunca descarga con el lock tomado: los lectores siguen pasando.
func (c *Cache) refreshInBackground() {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return
	}
	c.refreshing = true
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			c.refreshing = false
			c.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		services, err := c.fetcher.Fetch(ctx)
		if err == nil {
			c.swap(ctx, services, true)
			return
		}

		log.Printf("catálogo: refresh falló, se mantiene el último snapshot: %v", err)

		// La planilla no respondió: probamos el snapshot compartido.
		if shared, ok := c.sharedSnapshot(ctx); ok {
			c.swap(ctx, shared, false)
		}
	}()
}

// swap instala el snapshot nuevo. El lock cubre solo el intercambio.
func (c *Cache) swap(ctx context.Context, services []booking.ServiceOffering, share bool) {
	c.mu.Lock()
	c.services = services
	c.fetchedAt = c.clock.Now()
	c.mu.Unlock()

	if share {
		c.shareSnapshot(ctx, services)
	}
}

func (c *Cache) shareSnapshot(ctx context.Context, services []booking.ServiceOffering) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(services)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, redisKey, raw, c.ttl).Err(); err != nil {
		log.Printf("catálogo: redis set falló: %v", err)
	}
}

func (c *Cache) sharedSnapshot(ctx context.Context) ([]booking.ServiceOffering, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, redisKey).Bytes()
	if err != nil {
		return nil, false
	}
	var services []booking.ServiceOffering
	if err := json.Unmarshal(raw, &services); err != nil {
		return nil, false
	}
	return services, true
}
