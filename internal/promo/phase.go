// Package promo classifies flash sales by lifecycle phase and issues voucher codes for them.
package promo

import (
	"time"

	"github.com/and161185/neverland-admin/internal/model"
)

// Phase is the lifecycle state of a flash sale relative to a reference time.
type Phase string

const (
	Scheduled Phase = "scheduled"
	Active    Phase = "active"
	Past      Phase = "past"
)

// PhaseOf classifies sale at now. Both window ends count as active.
func PhaseOf(sale model.FlashSale, now time.Time) Phase {
	switch {
	case sale.StartTime.After(now):
		return Scheduled
	case sale.EndTime.Before(now):
		return Past
	default:
		return Active
	}
}

// Partition splits sales into disjoint phase groups, keeping input order inside each group.
type Partition struct {
	Scheduled []model.FlashSale `json:"scheduled"`
	Active    []model.FlashSale `json:"active"`
	Past      []model.FlashSale `json:"past"`
}

// Len returns the total number of classified sales.
func (p Partition) Len() int { return len(p.Scheduled) + len(p.Active) + len(p.Past) }

// Classify assigns every sale to exactly one phase.
// A sale with start after end is still classified by the same rules.
func Classify(sales []model.FlashSale, now time.Time) Partition {
	p := Partition{
		Scheduled: []model.FlashSale{},
		Active:    []model.FlashSale{},
		Past:      []model.FlashSale{},
	}
	for _, s := range sales {
		switch PhaseOf(s, now) {
		case Scheduled:
			p.Scheduled = append(p.Scheduled, s)
		case Past:
			p.Past = append(p.Past, s)
		default:
			p.Active = append(p.Active, s)
		}
	}
	return p
}
