package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservaestilo/booking-api/internal/clock"
	"github.com/reservaestilo/booking-api/internal/httperr"
)

// catalogServer sirve el CSV de prueba contando las descargas. Puede
// ponerse en modo falla o responder con demora configurable.
type catalogServer struct {
	*httptest.Server
	hits    atomic.Int64
	failing atomic.Bool
	delayMs atomic.Int64
}

func newCatalogServer(t *testing.T) *catalogServer {
	t.Helper()
	cs := &catalogServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		if d := cs.delayMs.Load(); d > 0 {
			time.Sleep(time.Duration(d) * time.Millisecond)
		}
		if cs.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	t.Cleanup(cs.Close)
	return cs
}

func TestCache_RefreshOnTTL(t *testing.T) {
	srv := newCatalogServer(t)
	clk := clock.NewManual(time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC))
	cache := NewCache(NewFetcher(srv.URL), nil, clk, 60*time.Second)

	ctx := context.Background()

	services, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 3)
	assert.EqualValues(t, 1, srv.hits.Load())

	// dentro del TTL: se sirve el snapshot, sin tocar la planilla
	clk.Advance(30 * time.Second)
	_, err = cache.List(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, srv.hits.Load())

	// vencido el TTL: la respuesta sale igual y el refresh corre de fondo
	clk.Advance(31 * time.Second)
	services, err = cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 3)

	require.Eventually(t, func() bool {
		return srv.hits.Load() >= 2
	}, 3*time.Second, 10*time.Millisecond, "el refresh de fondo nunca descargó")
}

// Con un snapshot bueno cargado, un lector jamás espera detrás de un
// refresh lento: el snapshot viejo se sirve de inmediato.
func TestCache_ReadersDontBlockOnRefresh(t *testing.T) {
	srv := newCatalogServer(t)
	clk := clock.NewManual(time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC))
	cache := NewCache(NewFetcher(srv.URL), nil, clk, 60*time.Second)

	ctx := context.Background()

	_, err := cache.List(ctx)
	require.NoError(t, err)

	// la planilla se pone lenta y el TTL vence
	srv.delayMs.Store(2000)
	clk.Advance(2 * time.Minute)

	started := time.Now()
	services, err := cache.List(ctx)
	elapsed := time.Since(started)

	require.NoError(t, err)
	assert.Len(t, services, 3)
	assert.Less(t, elapsed, 500*time.Millisecond,
		"el lector esperó %v detrás del refresh", elapsed)

	// el refresh igual termina de fondo
	require.Eventually(t, func() bool {
		return srv.hits.Load() >= 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestCache_SingleFlightRefresh(t *testing.T) {
	srv := newCatalogServer(t)
	clk := clock.NewManual(time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC))
	cache := NewCache(NewFetcher(srv.URL), nil, clk, 60*time.Second)

	ctx := context.Background()

	_, err := cache.List(ctx)
	require.NoError(t, err)

	srv.delayMs.Store(300)
	clk.Advance(2 * time.Minute)

	// varios lectores concurrentes sobre un snapshot vencido: a lo sumo
	// un refresh en vuelo
	for i := 0; i < 10; i++ {
		go func() { _, _ = cache.List(ctx) }()
	}
	_, err = cache.List(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return srv.hits.Load() >= 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.EqualValues(t, 2, srv.hits.Load())
}

func TestCache_ServesLastGoodOnFailure(t *testing.T) {
	srv := newCatalogServer(t)
	clk := clock.NewManual(time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC))
	cache := NewCache(NewFetcher(srv.URL), nil, clk, 60*time.Second)

	ctx := context.Background()

	_, err := cache.List(ctx)
	require.NoError(t, err)

	// la planilla se cae y el TTL vence: se sigue sirviendo lo último bueno
	srv.failing.Store(true)
	clk.Advance(2 * time.Minute)

	services, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 3)
}

func TestCache_FirstFetchFailureIsError(t *testing.T) {
	srv := newCatalogServer(t)
	srv.failing.Store(true)
	clk := clock.NewManual(time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC))
	cache := NewCache(NewFetcher(srv.URL), nil, clk, 60*time.Second)

	_, err := cache.List(context.Background())
	assert.Error(t, err)
}

func TestCache_ByID(t *testing.T) {
	srv := newCatalogServer(t)
	clk := clock.NewManual(time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC))
	cache := NewCache(NewFetcher(srv.URL), nil, clk, 60*time.Second)

	ctx := context.Background()

	svc, err := cache.ByID(ctx, "corte-y-barba")
	require.NoError(t, err)
	assert.Equal(t, "Corte y Barba", svc.Name)
	assert.Equal(t, 75, svc.DurationMin)

	_, err = cache.ByID(ctx, "manicure")
	assert.True(t, httperr.IsBusiness(err, httperr.CodeServiceNotFound))
}
