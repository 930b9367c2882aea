package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/consultahub/consulta-scheduler/internal/models"
)

type slotKey struct {
	providerID uint
	date       string
	hm         string
}

// MemoryLedger is a mutex-guarded in-memory implementation, used by unit tests
// and single-process runs without Postgres.
type MemoryLedger struct {
	mu       sync.Mutex
	reserved map[slotKey]uint
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{reserved: make(map[slotKey]uint)}
}

func (l *MemoryLedger) TryReserve(
	ctx context.Context,
	providerID uint,
	date string,
	hm string,
	bookingID uint,
) error {

	l.mu.Lock()
	defer l.mu.Unlock()

	key := slotKey{providerID, date, hm}
	if _, taken := l.reserved[key]; taken {
		return ErrSlotTaken
	}

	l.reserved[key] = bookingID
	return nil
}

func (l *MemoryLedger) Release(
	ctx context.Context,
	providerID uint,
	date string,
	hm string,
) error {

	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.reserved, slotKey{providerID, date, hm})
	return nil
}

func (l *MemoryLedger) IsReserved(
	ctx context.Context,
	providerID uint,
	date string,
	hm string,
) (bool, error) {

	l.mu.Lock()
	defer l.mu.Unlock()

	_, taken := l.reserved[slotKey{providerID, date, hm}]
	return taken, nil
}

func (l *MemoryLedger) ListForPeriod(
	ctx context.Context,
	providerID uint,
	fromDate string,
	toDate string,
) ([]models.Reservation, error) {

	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.Reservation
	for key, bookingID := range l.reserved {
		if key.providerID != providerID {
			continue
		}
		if key.date < fromDate || key.date >= toDate {
			continue
		}
		out = append(out, models.Reservation{
			ProviderID: key.providerID,
			Date:       key.date,
			Time:       key.hm,
			BookingID:  bookingID,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})

	return out, nil
}

// Compile-time check
var _ Ledger = (*MemoryLedger)(nil)
