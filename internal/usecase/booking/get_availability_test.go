package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservaestilo/booking-api/internal/clock"
	domain "github.com/reservaestilo/booking-api/internal/domain/booking"
	"github.com/reservaestilo/booking-api/internal/httperr"
)

func availabilityWindow() domain.Window {
	return domain.Window{OpenMin: 600, CloseMin: 1200, StepMin: 30, LeadMin: 60}
}

func newAvailabilityEnv(t *testing.T) (*GetAvailability, *fakeCalendar, *clock.Manual) {
	t.Helper()
	cal := newFakeCalendar()
	clk := clock.NewManual(time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC))
	cat := &fakeCatalog{services: map[string]domain.ServiceOffering{
		"corte-caballero": {
			ID:          "corte-caballero",
			Name:        "Corte Caballero",
			DurationMin: 30,
			TotalPrice:  15000,
			Deposit:     5000,
			Balance:     10000,
		},
	}}
	uc := NewGetAvailability(cal, cat, clk, time.UTC, availabilityWindow(), 30)
	return uc, cal, clk
}

func TestGetAvailability_FullDay(t *testing.T) {
	uc, _, _ := newAvailabilityEnv(t)

	slots, err := uc.Execute(context.Background(), AvailabilityInput{
		ServiceID: "corte-caballero",
		Date:      "2026-09-10",
	})
	require.NoError(t, err)

	assert.Len(t, slots, 20)
	assert.Equal(t, "10:00", slots[0])
	assert.Equal(t, "19:30", slots[len(slots)-1])
}

func TestGetAvailability_UnknownService(t *testing.T) {
	uc, _, _ := newAvailabilityEnv(t)

	_, err := uc.Execute(context.Background(), AvailabilityInput{
		ServiceID: "manicure",
		Date:      "2026-09-10",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeServiceNotFound))
}

func TestGetAvailability_InvalidDates(t *testing.T) {
	uc, _, _ := newAvailabilityEnv(t)

	cases := map[string]string{
		"formato":   "10-09-2026",
		"pasado":    "2026-08-31",
		"horizonte": "2026-10-15",
	}
	for name, date := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), AvailabilityInput{
				ServiceID: "corte-caballero",
				Date:      date,
			})
			assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidRequest))
		})
	}
}

func TestGetAvailability_CalendarDown(t *testing.T) {
	uc, cal, _ := newAvailabilityEnv(t)
	cal.failList = true

	_, err := uc.Execute(context.Background(), AvailabilityInput{
		ServiceID: "corte-caballero",
		Date:      "2026-09-10",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeCalendarUnavailable))
}

// Un hold pendiente es un evento real: su turno desaparece de la oferta
// para cualquier otra consulta, y reaparece al liberarlo.
func TestGetAvailability_PendingHoldBlocksSlot(t *testing.T) {
	uc, cal, clk := newAvailabilityEnv(t)
	mgr := NewHoldManager(cal, clk, testTTL, time.UTC)

	req := testRequest()
	req.Date = "2026-09-10"
	req.Time = "14:30"
	req.DurationMin = 30

	hold, err := mgr.Create(context.Background(), req)
	require.NoError(t, err)

	slots, err := uc.Execute(context.Background(), AvailabilityInput{
		ServiceID: "corte-caballero",
		Date:      "2026-09-10",
	})
	require.NoError(t, err)
	assert.NotContains(t, slots, "14:30")
	assert.Contains(t, slots, "14:00")
	assert.Contains(t, slots, "15:00")

	require.NoError(t, mgr.Release(context.Background(), hold))

	slots, err = uc.Execute(context.Background(), AvailabilityInput{
		ServiceID: "corte-caballero",
		Date:      "2026-09-10",
	})
	require.NoError(t, err)
	assert.Contains(t, slots, "14:30")
}

func TestGetAvailability_SameDayLeadTime(t *testing.T) {
	uc, _, clk := newAvailabilityEnv(t)

	// hoy a las 13:10 + 60 min de antelación: el primer turno es 14:30
	clk.Set(time.Date(2026, 9, 1, 13, 10, 0, 0, time.UTC))

	slots, err := uc.Execute(context.Background(), AvailabilityInput{
		ServiceID: "corte-caballero",
		Date:      "2026-09-01",
	})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, "14:30", slots[0])
}
