package googlecalendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/reservaestilo/booking-api/internal/domain/booking"
)

// Gateway implementa booking.CalendarGateway sobre Google Calendar v3
// con credenciales de cuenta de servicio.
type Gateway struct {
	service    *calendar.Service
	calendarID string
	loc        *time.Location
}

func New(ctx context.Context, credentialsFile, calendarID string, loc *time.Location) (*Gateway, error) {
	service, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Gateway{
		service:    service,
		calendarID: calendarID,
		loc:        loc,
	}, nil
}

func (g *Gateway) ListBusy(ctx context.Context, from, to time.Time) ([]booking.BusyInterval, error) {
	events, err := g.service.Events.List(g.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var busy []booking.BusyInterval
	for _, item := range events.Items {
		// Eventos de día completo (sin DateTime) no bloquean turnos.
		if item.Start == nil || item.Start.DateTime == "" || item.End == nil || item.End.DateTime == "" {
			continue
		}
		if item.Status == "cancelled" {
			continue
		}

		start, err1 := time.Parse(time.RFC3339, item.Start.DateTime)
		end, err2 := time.Parse(time.RFC3339, item.End.DateTime)
		if err1 != nil || err2 != nil {
			continue
		}

		busy = append(busy, booking.BusyInterval{
			Start: start.In(g.loc),
			End:   end.In(g.loc),
		})
	}

	return busy, nil
}

func (g *Gateway) InsertEvent(ctx context.Context, ev booking.EventInput) (string, error) {
	googleEvent := &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
	}

	created, err := g.service.Events.Insert(g.calendarID, googleEvent).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}

	return created.Id, nil
}

func (g *Gateway) PatchEvent(ctx context.Context, eventID string, patch booking.EventPatch) error {
	googleEvent := &calendar.Event{
		Summary:     patch.Summary,
		Description: patch.Description,
		ColorId:     patch.ColorID,
	}

	_, err := g.service.Events.Patch(g.calendarID, eventID, googleEvent).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to patch event: %w", err)
	}

	return nil
}

// DeleteEvent es idempotente: un evento ya borrado no es un error.
func (g *Gateway) DeleteEvent(ctx context.Context, eventID string) error {
	err := g.service.Events.Delete(g.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		if apiErr, ok := err.(*googleapi.Error); ok {
			if apiErr.Code == 404 || apiErr.Code == 410 {
				return nil
			}
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}
