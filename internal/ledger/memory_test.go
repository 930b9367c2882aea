package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	require.NoError(t, l.TryReserve(ctx, 1, "2025-02-03", "14:00", 10))

	err := l.TryReserve(ctx, 1, "2025-02-03", "14:00", 11)
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Other slot / other provider are independent.
	require.NoError(t, l.TryReserve(ctx, 1, "2025-02-03", "14:30", 12))
	require.NoError(t, l.TryReserve(ctx, 2, "2025-02-03", "14:00", 13))

	taken, err := l.IsReserved(ctx, 1, "2025-02-03", "14:00")
	require.NoError(t, err)
	assert.True(t, taken)

	require.NoError(t, l.Release(ctx, 1, "2025-02-03", "14:00"))

	taken, err = l.IsReserved(ctx, 1, "2025-02-03", "14:00")
	require.NoError(t, err)
	assert.False(t, taken)

	// Release is idempotent.
	require.NoError(t, l.Release(ctx, 1, "2025-02-03", "14:00"))

	// Freed slot can be taken again.
	require.NoError(t, l.TryReserve(ctx, 1, "2025-02-03", "14:00", 14))
}

func TestTryReserveConcurrent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	const attempts = 50

	var wg sync.WaitGroup
	wins := make(chan uint, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(bookingID uint) {
			defer wg.Done()
			if err := l.TryReserve(ctx, 7, "2025-02-03", "14:00", bookingID); err == nil {
				wins <- bookingID
			}
		}(uint(i + 1))
	}

	wg.Wait()
	close(wins)

	var winners []uint
	for id := range wins {
		winners = append(winners, id)
	}

	// Exactly one reservation attempt may succeed.
	require.Len(t, winners, 1)

	taken, err := l.IsReserved(ctx, 7, "2025-02-03", "14:00")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestListForPeriod(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	require.NoError(t, l.TryReserve(ctx, 1, "2025-01-31", "09:00", 1))
	require.NoError(t, l.TryReserve(ctx, 1, "2025-02-10", "10:00", 2))
	require.NoError(t, l.TryReserve(ctx, 1, "2025-02-10", "09:00", 3))
	require.NoError(t, l.TryReserve(ctx, 1, "2025-03-01", "09:00", 4))
	require.NoError(t, l.TryReserve(ctx, 2, "2025-02-10", "09:00", 5))

	out, err := l.ListForPeriod(ctx, 1, "2025-02-01", "2025-03-01")
	require.NoError(t, err)
	require.Len(t, out, 2)

	// Ordered by date then time.
	assert.Equal(t, "09:00", out[0].Time)
	assert.Equal(t, "10:00", out[1].Time)
	assert.Equal(t, uint(3), out[0].BookingID)
}
