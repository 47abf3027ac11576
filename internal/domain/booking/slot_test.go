package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWindow = Window{
	OpenMin:  10 * 60,
	CloseMin: 20 * 60,
	StepMin:  30,
	LeadMin:  60,
}

func day(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
}

func at(d time.Time, hour, min int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, d.Location())
}

func TestFreeSlots_FullDayNoBusy(t *testing.T) {
	d := day(t)

	// jornada 10:00-20:00, grilla 30, duración 45: el último inicio que
	// cabe antes del cierre es 19:00 (19:00+45 = 19:45)
	slots := FreeSlots(FreeSlotsInput{
		Day:         d,
		DurationMin: 45,
		Now:         at(d.AddDate(0, 0, -1), 12, 0), // consulta del día anterior
		Window:      testWindow,
	})

	require.Len(t, slots, 19)
	assert.Equal(t, "10:00", slots[0])
	assert.Equal(t, "19:00", slots[len(slots)-1])
}

func TestFreeSlots_ExactClosingFit(t *testing.T) {
	d := day(t)

	// duración 30: 19:30+30 = 20:00 calza exacto con el cierre
	slots := FreeSlots(FreeSlotsInput{
		Day:         d,
		DurationMin: 30,
		Now:         at(d.AddDate(0, 0, -1), 12, 0),
		Window:      testWindow,
	})

	require.NotEmpty(t, slots)
	assert.Equal(t, "19:30", slots[len(slots)-1])
}

func TestFreeSlots_BusyIntervalHalfOpen(t *testing.T) {
	d := day(t)

	slots := FreeSlots(FreeSlotsInput{
		Day:         d,
		DurationMin: 30,
		Busy: []BusyInterval{
			{Start: at(d, 14, 0), End: at(d, 15, 0)},
		},
		Now:    at(d.AddDate(0, 0, -1), 12, 0),
		Window: testWindow,
	})

	// [13:30,14:00) toca el borde pero no solapa; 15:00 arranca justo
	// cuando el ocupado termina
	assert.Contains(t, slots, "13:30")
	assert.NotContains(t, slots, "14:00")
	assert.NotContains(t, slots, "14:30")
	assert.Contains(t, slots, "15:00")
}

func TestFreeSlots_SameDayLeadTime(t *testing.T) {
	d := day(t)

	// ahora = 13:10 del mismo día, antelación 60: el primer inicio
	// ofrecible es 14:30 (14:00 < 14:10)
	slots := FreeSlots(FreeSlotsInput{
		Day:         d,
		DurationMin: 30,
		Now:         at(d, 13, 10),
		Window:      testWindow,
	})

	require.NotEmpty(t, slots)
	assert.Equal(t, "14:30", slots[0])
	assert.NotContains(t, slots, "14:00")
}

func TestFreeSlots_LeadTimeIgnoredForFutureDays(t *testing.T) {
	d := day(t)

	slots := FreeSlots(FreeSlotsInput{
		Day:         d,
		DurationMin: 30,
		Now:         at(d.AddDate(0, 0, -1), 19, 50), // casi cierre, pero de ayer
		Window:      testWindow,
	})

	require.NotEmpty(t, slots)
	assert.Equal(t, "10:00", slots[0])
}

func TestFreeSlots_NoRoomIsEmptyNotError(t *testing.T) {
	d := day(t)

	slots := FreeSlots(FreeSlotsInput{
		Day:         d,
		DurationMin: 30,
		Busy: []BusyInterval{
			{Start: at(d, 10, 0), End: at(d, 20, 0)},
		},
		Now:    at(d.AddDate(0, 0, -1), 12, 0),
		Window: testWindow,
	})

	assert.Empty(t, slots)
}

func TestFreeSlots_DurationLongerThanDay(t *testing.T) {
	d := day(t)

	slots := FreeSlots(FreeSlotsInput{
		Day:         d,
		DurationMin: 11 * 60,
		Now:         at(d.AddDate(0, 0, -1), 12, 0),
		Window:      testWindow,
	})

	assert.Empty(t, slots)
}

func TestBusyInterval_Overlaps(t *testing.T) {
	d := day(t)
	busy := BusyInterval{Start: at(d, 14, 0), End: at(d, 15, 0)}

	assert.False(t, busy.Overlaps(at(d, 13, 0), at(d, 14, 0)), "borde izquierdo no solapa")
	assert.False(t, busy.Overlaps(at(d, 15, 0), at(d, 16, 0)), "borde derecho no solapa")
	assert.True(t, busy.Overlaps(at(d, 14, 30), at(d, 14, 45)))
	assert.True(t, busy.Overlaps(at(d, 13, 0), at(d, 16, 0)))
}
