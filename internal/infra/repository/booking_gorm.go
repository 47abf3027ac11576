package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reservaestilo/booking-api/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// SaveConfirmed persiste el registro local de una reserva confirmada.
// El event_id es único: reintentos sobre el mismo hold no duplican filas.
func (r *BookingGormRepository) SaveConfirmed(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(b).Error
}

func (r *BookingGormRepository) ListByDate(
	ctx context.Context,
	dayStart time.Time,
	dayEnd time.Time,
) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
		Order("start_time ASC").
		Find(&bookings).Error
	return bookings, err
}
