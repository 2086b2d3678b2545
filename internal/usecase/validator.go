package usecase

import (
	"errors"
	"fmt"

	"github.com/fairyhunter13/kafka-order-processor/internal/cache"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// StatusNotFound marks a partner or unit with no row in the reference
// store. It counts as non-ACTIVE for the skip decision.
const StatusNotFound = "NOT_FOUND"

// Validator decides whether an event's trading partner and business
// unit allow processing. Lookups are cache-aside: only found rows are
// cached, so a missing row is re-checked on the next event.
type Validator struct {
	Repo     domain.ReferenceDataRepository
	Partners *cache.Cache[domain.TradingPartner]
	Units    *cache.Cache[domain.BusinessUnit]
}

// NewValidator constructs a Validator with its dependencies.
func NewValidator(repo domain.ReferenceDataRepository, partners *cache.Cache[domain.TradingPartner], units *cache.Cache[domain.BusinessUnit]) *Validator {
	return &Validator{Repo: repo, Partners: partners, Units: units}
}

// Validation is the outcome of partner/unit validation for one event.
type Validation struct {
	Process       bool
	PartnerStatus string
	UnitStatus    string
	SkipReason    string
}

// ValidateEvent skips the event only when both sides resolve to a
// non-ACTIVE status; a single ACTIVE side is enough to proceed.
func (v *Validator) ValidateEvent(ctx domain.Context, ev domain.OrderEvent) (Validation, error) {
	partnerStatus, err := v.partnerStatus(ctx, ev.TradingPartnerName)
	if err != nil {
		return Validation{}, fmt.Errorf("op=validate.partner: %w", err)
	}
	unitStatus, err := v.unitStatus(ctx, ev.BusinessUnitName)
	if err != nil {
		return Validation{}, fmt.Errorf("op=validate.unit: %w", err)
	}

	out := Validation{PartnerStatus: partnerStatus, UnitStatus: unitStatus}
	if partnerStatus == domain.StatusActive || unitStatus == domain.StatusActive {
		out.Process = true
		return out, nil
	}
	out.SkipReason = fmt.Sprintf("BOTH INACTIVE - partner '%s' %s, unit '%s' %s",
		ev.TradingPartnerName, partnerStatus, ev.BusinessUnitName, unitStatus)
	return out, nil
}

func (v *Validator) partnerStatus(ctx domain.Context, name string) (string, error) {
	if p, ok := v.Partners.Get(name); ok {
		return p.Status, nil
	}
	p, err := v.Repo.FindTradingPartnerByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return StatusNotFound, nil
	}
	if err != nil {
		return "", err
	}
	v.Partners.Set(name, p)
	return p.Status, nil
}

func (v *Validator) unitStatus(ctx domain.Context, name string) (string, error) {
	if u, ok := v.Units.Get(name); ok {
		return u.Status, nil
	}
	u, err := v.Repo.FindBusinessUnitByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return StatusNotFound, nil
	}
	if err != nil {
		return "", err
	}
	v.Units.Set(name, u)
	return u.Status, nil
}
