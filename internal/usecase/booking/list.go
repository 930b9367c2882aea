package booking

import (
	"context"

	domain "github.com/consultahub/consulta-scheduler/internal/domain/booking"
	"github.com/consultahub/consulta-scheduler/internal/dto"
	"github.com/consultahub/consulta-scheduler/internal/timezone"
)

type ListBookings struct {
	repo domain.Repository
}

func NewListBookings(repo domain.Repository) *ListBookings {
	return &ListBookings{repo: repo}
}

// Execute lists a participant's bookings with the derived status applied:
// past confirmed/postponed rows read as completed without any stored change.
func (uc *ListBookings) Execute(
	ctx context.Context,
	userID uint,
	role string,
) ([]dto.BookingListDTO, error) {

	bookings, err := uc.repo.ListBookingsForParticipant(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BookingListDTO, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]

		loc := timezone.Location(b.Provider.Timezone)
		now := timezone.NowIn(b.Provider.Timezone)

		out = append(out, dto.BookingListDTO{
			ID:             b.ID,
			Date:           b.Date,
			Time:           b.Time,
			Status:         string(domain.EffectiveStatus(b, now, loc)),
			ProviderName:   b.Provider.Name,
			ClientName:     b.Client.Name,
			Notes:          b.Notes,
			PostponeReason: b.PostponeReason,
		})
	}

	return out, nil
}
