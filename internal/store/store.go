// Package store is the administrative state of the storefront.
//
// It keeps one collection per record type in memory, mirrors every change to
// a durable cache and forwards writes to the remote records service while it
// is believed reachable. When the remote fails, commands still succeed on the
// local copy and report OriginLocal.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/neverland-admin/internal/cache"
	"github.com/and161185/neverland-admin/internal/errs"
	"github.com/and161185/neverland-admin/internal/feed"
	"github.com/and161185/neverland-admin/internal/gateway"
	"github.com/and161185/neverland-admin/internal/ids"
	"github.com/and161185/neverland-admin/internal/model"
	"github.com/and161185/neverland-admin/internal/promo"
	"github.com/and161185/neverland-admin/internal/seed"
	"github.com/and161185/neverland-admin/internal/stats"
)

// Options configures a Store. Zero values select offline, in-memory defaults.
type Options struct {
	Gateway     gateway.Gateway // nil keeps every collection local
	Cache       cache.Cache     // nil uses an in-memory cache
	Logger      *zap.Logger
	Now         func() time.Time
	VoucherSeed uint64
}

// Store bundles the collections with the sync state and the activity logs.
type Store struct {
	Games        *Collection[model.Game, *model.Game]
	Orders       *Collection[model.Order, *model.Order]
	FlashSales   *Collection[model.FlashSale, *model.FlashSale]
	Testimonials *Collection[model.Testimonial, *model.Testimonial]
	FAQs         *Collection[model.FAQ, *model.FAQ]
	Users        *Collection[model.User, *model.User]

	env      *env
	notes    *feed.Notifications
	vouchers *promo.VoucherBook
}

// Notification texts pushed on availability transitions.
const (
	MsgRemoteDown = "Remote service unreachable, changes are saved locally only"
	MsgRemoteUp   = "Remote service reachable again"
)

// New loads every collection from the cache, falling back to the bundled seed data.
func New(ctx context.Context, o Options) *Store {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Cache == nil {
		o.Cache = cache.NewMemory()
	}
	gen := ids.NewGenerator(o.Now)
	e := &env{
		log:      o.Logger,
		cache:    o.Cache,
		sync:     NewSyncState(),
		activity: feed.NewActivity(gen, o.Now),
		ids:      gen,
		now:      o.Now,
	}
	s := &Store{
		env:      e,
		notes:    feed.NewNotifications(gen, o.Now),
		vouchers: promo.NewVoucherBook(o.VoucherSeed),
	}

	gw := o.Gateway
	if gw == nil {
		e.sync.MarkDown(errors.New("no remote configured"))
	}
	e.sync.OnChange(func(up bool, cause error) {
		if up {
			e.log.Info("remote available")
			s.notes.Push(MsgRemoteUp)
			return
		}
		e.log.Warn("remote unavailable", zap.Error(cause))
		s.notes.Push(MsgRemoteDown)
	})

	s.Games = newCollection[model.Game](ctx, e, model.CollectionGames, "Game", gw, seed.Games())
	s.Orders = newCollection[model.Order](ctx, e, model.CollectionOrders, "Order", gw, []model.Order{})
	s.FlashSales = newCollection[model.FlashSale](ctx, e, model.CollectionFlashSales, "Flash sale", gw, []model.FlashSale{})
	s.Testimonials = newCollection[model.Testimonial](ctx, e, model.CollectionTestimonials, "Testimonial", gw, seed.Testimonials())
	s.FAQs = newCollection[model.FAQ](ctx, e, model.CollectionFAQs, "FAQ", gw, seed.FAQs())
	s.Users = newCollection[model.User](ctx, e, model.CollectionUsers, "User", nil, []model.User{})
	return s
}

// RemoteAvailable reports whether writes currently go to the remote.
func (s *Store) RemoteAvailable() bool { return s.env.sync.Available() }

// Sync exposes the availability state.
func (s *Store) Sync() *SyncState { return s.env.sync }

// RefreshAll re-fetches every remote collection concurrently.
// It reports whether all of them came from the remote.
func (s *Store) RefreshAll(ctx context.Context) (bool, error) {
	type refresher interface {
		Refresh(context.Context) (Origin, error)
	}
	cols := []refresher{s.Games, s.Orders, s.FlashSales, s.Testimonials, s.FAQs}

	var wg sync.WaitGroup
	var mu sync.Mutex
	remote := true
	var failures []error
	for _, c := range cols {
		wg.Add(1)
		go func() {
			defer wg.Done()
			origin, err := c.Refresh(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
			}
			if origin != OriginRemote {
				remote = false
			}
		}()
	}
	wg.Wait()
	return remote, errors.Join(failures...)
}

// UpdateOrderStatus moves an order to status.
// Setting the current status again is a no-op; disallowed moves return errs.ErrInvalidTransition.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (Saved[model.Order], error) {
	if !status.Valid() {
		return Saved[model.Order]{}, fmt.Errorf("%w: unknown order status %q", errs.ErrValidation, status)
	}
	return s.Orders.modify(ctx, id, func(cur model.Order) (model.Order, bool, error) {
		if cur.Status == status {
			return cur, false, nil
		}
		if !cur.Status.CanTransition(status) {
			return cur, false, fmt.Errorf("order %s: %s -> %s: %w", id, cur.Status, status, errs.ErrInvalidTransition)
		}
		cur.Status = status
		return cur, true, nil
	}, func(o *model.Order) string {
		return fmt.Sprintf("Order #%s status updated to %s", o.ID, o.Status)
	})
}

// UpdateUserRole changes the role of a user.
func (s *Store) UpdateUserRole(ctx context.Context, id string, role model.Role) (Saved[model.User], error) {
	if !role.Valid() {
		return Saved[model.User]{}, fmt.Errorf("%w: unknown role %q", errs.ErrValidation, role)
	}
	return s.Users.modify(ctx, id, func(cur model.User) (model.User, bool, error) {
		if cur.Role == role {
			return cur, false, nil
		}
		cur.Role = role
		return cur, true, nil
	}, func(u *model.User) string {
		return fmt.Sprintf("User role updated to %s", u.Role)
	})
}

// Statistics derives dashboard figures from the current orders and users.
func (s *Store) Statistics() stats.Summary {
	sum := stats.Compute(s.Orders.List(), s.env.now())
	sum.ActiveUsers = s.Users.Len()
	return sum
}

// PromotionPhases classifies the flash sales at the current time.
func (s *Store) PromotionPhases() promo.Partition {
	return promo.Classify(s.FlashSales.List(), s.env.now())
}

// ActiveVouchers returns a voucher code per currently active flash sale, keyed by sale id.
func (s *Store) ActiveVouchers() map[string]string {
	return s.vouchers.Codes(s.PromotionPhases().Active)
}

// Activity returns the activity feed, newest first.
func (s *Store) Activity() []model.ActivityEvent { return s.env.activity.Items() }

// PushNotification adds an unread notification.
func (s *Store) PushNotification(message string) model.Notification { return s.notes.Push(message) }

// MarkNotificationRead flags a notification as read.
func (s *Store) MarkNotificationRead(id int64) { s.notes.MarkRead(id) }

// ClearNotifications removes all notifications.
func (s *Store) ClearNotifications() { s.notes.Clear() }

// Notifications returns the notifications, newest first.
func (s *Store) Notifications() []model.Notification { return s.notes.Items() }

// UnreadNotifications counts unread notifications.
func (s *Store) UnreadNotifications() int { return s.notes.Unread() }

// Close releases the cache.
func (s *Store) Close() error { return s.env.cache.Close() }
