package model

import (
	"fmt"
	"strings"

	"github.com/and161185/neverland-admin/internal/errs"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errs.ErrValidation, fmt.Sprintf(format, args...))
}

// Validate checks catalog fields.
func (g *Game) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return invalid("game title is required")
	}
	if strings.TrimSpace(g.Category) == "" {
		return invalid("game category is required")
	}
	for i, p := range g.Packages {
		if p.Price < 0 {
			return invalid("package[%d] negative price", i)
		}
		if strings.TrimSpace(p.Amount) == "" {
			return invalid("package[%d] amount is required", i)
		}
	}
	return nil
}

// Validate checks order totals and status.
func (o *Order) Validate() error {
	if o.Total < 0 {
		return invalid("order total must be >= 0")
	}
	for i, it := range o.Items {
		if it.Quantity < 0 {
			return invalid("item[%d] quantity must be >= 0", i)
		}
		if it.Price < 0 {
			return invalid("item[%d] negative price", i)
		}
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
	if !o.Status.Valid() {
		return invalid("unknown order status %q", o.Status)
	}
	return nil
}

// Validate checks the discount range and the time window.
func (f *FlashSale) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return invalid("flash sale name is required")
	}
	if f.Discount < 1 || f.Discount > 99 {
		return invalid("discount must be within 1..99, got %d", f.Discount)
	}
	if f.StartTime.IsZero() || f.EndTime.IsZero() {
		return invalid("flash sale start and end are required")
	}
	if !f.StartTime.Before(f.EndTime) {
		return invalid("flash sale must start before it ends")
	}
	return nil
}

// Validate checks the rating range.
func (t *Testimonial) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return invalid("testimonial name is required")
	}
	if t.Rating < 1 || t.Rating > 5 {
		return invalid("rating must be within 1..5, got %d", t.Rating)
	}
	if strings.TrimSpace(t.Comment) == "" {
		return invalid("testimonial comment is required")
	}
	return nil
}

// Validate checks that both question and answer are present.
func (f *FAQ) Validate() error {
	if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
		return invalid("faq question and answer are required")
	}
	return nil
}

// Validate checks the account role.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return invalid("user name is required")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !u.Role.Valid() {
		return invalid("unknown role %q", u.Role)
	}
	return nil
}
