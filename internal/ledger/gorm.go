package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/consultahub/consulta-scheduler/internal/models"
)

// uniqueViolation is the Postgres SQLSTATE raised when the reservations
// composite unique index rejects a duplicate insert.
const uniqueViolation = "23505"

type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) TryReserve(
	ctx context.Context,
	providerID uint,
	date string,
	hm string,
	bookingID uint,
) error {

	res := models.Reservation{
		ProviderID: providerID,
		Date:       date,
		Time:       hm,
		BookingID:  bookingID,
	}

	err := l.db.WithContext(ctx).Create(&res).Error
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlotTaken
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlotTaken
	}

	return err
}

func (l *GormLedger) Release(
	ctx context.Context,
	providerID uint,
	date string,
	hm string,
) error {

	return l.db.WithContext(ctx).
		Where("provider_id = ? AND date = ? AND time = ?", providerID, date, hm).
		Delete(&models.Reservation{}).Error
}

func (l *GormLedger) IsReserved(
	ctx context.Context,
	providerID uint,
	date string,
	hm string,
) (bool, error) {

	var count int64
	if err := l.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("provider_id = ? AND date = ? AND time = ?", providerID, date, hm).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (l *GormLedger) ListForPeriod(
	ctx context.Context,
	providerID uint,
	fromDate string,
	toDate string,
) ([]models.Reservation, error) {

	var out []models.Reservation
	if err := l.db.WithContext(ctx).
		Where("provider_id = ? AND date >= ? AND date < ?", providerID, fromDate, toDate).
		Order("date ASC, time ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}

// Compile-time check
var _ Ledger = (*GormLedger)(nil)
