package booking

import "time"

// BusyInterval es un intervalo ocupado [Start, End) del calendario.
// Nunca se persiste: se deriva fresco en cada consulta.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}

// Window describe la jornada de atención y la grilla de turnos.
// Open y Close son minutos desde medianoche local.
type Window struct {
	OpenMin  int
	CloseMin int
	StepMin  int
	LeadMin  int
}

type FreeSlotsInput struct {
	Day         time.Time // medianoche local del día consultado
	DurationMin int
	Busy        []BusyInterval
	Now         time.Time
	Window      Window
}

// FreeSlots recorre la jornada en pasos fijos de grilla y retorna, en orden
// ascendente, los inicios "HH:MM" cuyo intervalo completo cabe antes del
// cierre y no choca con ningún intervalo ocupado. Si el día consultado es
// hoy, descarta además los inicios anteriores a now + antelación mínima.
// Función pura: traer los intervalos ocupados es responsabilidad del caller.
func FreeSlots(in FreeSlotsInput) []string {
	if in.DurationMin <= 0 {
		return nil
	}

	duration := time.Duration(in.DurationMin) * time.Minute
	step := time.Duration(in.Window.StepMin) * time.Minute
	if step <= 0 {
		step = 30 * time.Minute
	}

	cur := in.Day.Add(time.Duration(in.Window.OpenMin) * time.Minute)
	closing := in.Day.Add(time.Duration(in.Window.CloseMin) * time.Minute)

	sameDay := in.Now.Year() == in.Day.Year() && in.Now.YearDay() == in.Day.YearDay()
	earliest := in.Now.Add(time.Duration(in.Window.LeadMin) * time.Minute)

	var slots []string
	for ; !cur.Add(duration).After(closing); cur = cur.Add(step) {
		if sameDay && cur.Before(earliest) {
			continue
		}

		end := cur.Add(duration)
		conflict := false
		for _, b := range in.Busy {
			if b.Overlaps(cur, end) {
				conflict = true
				break
			}
		}

		if !conflict {
			slots = append(slots, cur.Format("15:04"))
		}
	}

	return slots
}
