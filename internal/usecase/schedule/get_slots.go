package schedule

import (
	"context"
	"time"

	"github.com/consultahub/consulta-scheduler/internal/calendar"
	domain "github.com/consultahub/consulta-scheduler/internal/domain/booking"
	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/ledger"
	"github.com/consultahub/consulta-scheduler/internal/schedule"
	"github.com/consultahub/consulta-scheduler/internal/timezone"
)

type GetSlots struct {
	repo         domain.Repository
	ledger       ledger.Ledger
	materializer *schedule.Materializer
}

func NewGetSlots(
	repo domain.Repository,
	ldg ledger.Ledger,
	materializer *schedule.Materializer,
) *GetSlots {
	return &GetSlots{
		repo:         repo,
		ledger:       ldg,
		materializer: materializer,
	}
}

// Execute materializes a provider's slot calendar for one month. The result is
// a read-only projection; an "available" flag may go stale the instant it is
// returned, and losing that race surfaces as slot_unavailable at booking time.
func (uc *GetSlots) Execute(
	ctx context.Context,
	providerID uint,
	year int,
	month time.Month,
) ([]schedule.Slot, error) {

	provider, err := uc.repo.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, httperr.ErrBusiness("provider_not_found")
	}

	loc := timezone.Location(provider.Timezone)
	monthStart, monthEnd := calendar.MonthBounds(year, month, loc)

	fromDate := monthStart.Format(calendar.DateLayout)
	toDate := monthEnd.Format(calendar.DateLayout)

	rules, err := uc.repo.ListRules(ctx, providerID)
	if err != nil {
		return nil, err
	}

	customSlots, err := uc.repo.ListCustomSlots(ctx, providerID, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	reservations, err := uc.ledger.ListForPeriod(ctx, providerID, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	return uc.materializer.Materialize(schedule.Input{
		ProviderID:   providerID,
		Rules:        rules,
		CustomSlots:  customSlots,
		Reservations: reservations,
		Year:         year,
		Month:        month,
		Now:          timezone.NowIn(provider.Timezone),
		Loc:          loc,
	}), nil
}
