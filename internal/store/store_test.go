package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/neverland-admin/internal/cache"
	"github.com/and161185/neverland-admin/internal/errs"
	"github.com/and161185/neverland-admin/internal/model"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, gw *fakeGateway, c cache.Cache) *Store {
	t.Helper()
	o := Options{Cache: c, Logger: zaptest.NewLogger(t), Now: func() time.Time { return fixedNow }, VoucherSeed: 7}
	if gw != nil {
		o.Gateway = gw
	}
	return New(context.Background(), o)
}

func TestNew_SeedsDefaults(t *testing.T) {
	s := newTestStore(t, newFakeGateway(), nil)
	assert.Equal(t, 10, s.Games.Len())
	assert.Equal(t, 8, s.Testimonials.Len())
	assert.Equal(t, 6, s.FAQs.Len())
	assert.Zero(t, s.Orders.Len())
	assert.Zero(t, s.Users.Len())
	assert.True(t, s.RemoteAvailable())
}

func TestNew_WithoutGatewayIsOffline(t *testing.T) {
	s := newTestStore(t, nil, nil)
	require.False(t, s.RemoteAvailable())
	require.Empty(t, s.Notifications(), "starting offline is not a transition")

	res, err := s.FAQs.Add(context.Background(), model.FAQ{Question: "q", Answer: "a"})
	require.NoError(t, err)
	require.Equal(t, OriginLocal, res.Origin)
}

func TestAdd_Remote_ReadAfterWrite(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)

	res, err := s.Games.Add(context.Background(), model.Game{Title: "Honor of Kings", Category: "MOBA"})
	require.NoError(t, err)
	require.Equal(t, OriginRemote, res.Origin)
	require.Equal(t, "srv-1", res.Record.ID)
	require.Equal(t, int64(1), res.Record.Version)

	list := s.Games.List()
	require.Len(t, list, 11)
	require.Equal(t, "srv-1", list[0].ID, "new records are prepended")
	require.Equal(t, "Honor of Kings", list[0].Title)

	act := s.Activity()
	require.Len(t, act, 1)
	require.Equal(t, "Game added: Honor of Kings", act[0].Message)
}

func TestAdd_AlwaysFailingGateway(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	gw.setFail(errDown)
	mem := cache.NewMemory()
	s := newTestStore(t, gw, mem)

	res, err := s.Games.Add(ctx, model.Game{Title: "X"})
	require.NoError(t, err)
	require.Equal(t, OriginLocal, res.Origin)
	require.Equal(t, "X", res.Record.Title)
	require.True(t, model.IsLocalID(res.Record.ID))
	require.False(t, s.RemoteAvailable())
	require.Equal(t, 1, gw.count("create"))

	_, err = s.Games.Add(ctx, model.Game{Title: "Y"})
	require.NoError(t, err)
	require.Equal(t, 1, gw.count("create"), "no remote call once the remote is marked down")

	// persisted
	reloaded := cache.Load(ctx, mem, zaptest.NewLogger(t), cache.Key(model.CollectionGames), []model.Game{})
	require.Len(t, reloaded, 12)
	require.Equal(t, "Y", reloaded[0].Title)
	require.Equal(t, res.Record.ID, reloaded[1].ID)
}

func TestCircuitBreaker_AllWritesSkipRemote(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)

	added, err := s.FAQs.Add(ctx, model.FAQ{Question: "q", Answer: "a"})
	require.NoError(t, err)
	require.Equal(t, OriginRemote, added.Origin)

	gw.setFail(errDown)
	_, err = s.FAQs.Update(ctx, added.Record.ID, model.FAQ{Question: "q2", Answer: "a2"})
	require.NoError(t, err)
	require.False(t, s.RemoteAvailable())
	before := gw.total()

	gw.setFail(nil)
	_, err = s.FAQs.Add(ctx, model.FAQ{Question: "q3", Answer: "a3"})
	require.NoError(t, err)
	_, err = s.FAQs.Update(ctx, added.Record.ID, model.FAQ{Question: "q4", Answer: "a4"})
	require.NoError(t, err)
	_, err = s.FAQs.Remove(ctx, added.Record.ID)
	require.NoError(t, err)
	require.Equal(t, before, gw.total(), "writes must not contact the remote")
}

func TestAvailabilityTransitions_Notify(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	gw.setFail(errDown)
	s := newTestStore(t, gw, nil)

	_, _ = s.Games.Add(ctx, model.Game{Title: "a"})
	_, _ = s.Games.Add(ctx, model.Game{Title: "b"})
	notes := s.Notifications()
	require.Len(t, notes, 1)
	require.Equal(t, MsgRemoteDown, notes[0].Message)

	gw.setFail(nil)
	origin, err := s.FAQs.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, OriginRemote, origin)
	require.True(t, s.RemoteAvailable())
	require.Equal(t, MsgRemoteUp, s.Notifications()[0].Message)
}

func TestUpdate_UnknownIDIsNoop(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)
	res, err := s.Games.Update(context.Background(), "missing", model.Game{Title: "z"})
	require.NoError(t, err)
	require.Equal(t, OriginNone, res.Origin)
	require.False(t, res.Changed())
	require.Zero(t, gw.total())
	require.Empty(t, s.Activity())
}

func TestRemove_UnknownIDIsNoop(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)
	res, err := s.FAQs.Remove(context.Background(), "missing")
	require.NoError(t, err)
	require.Equal(t, OriginNone, res.Origin)
	require.Zero(t, gw.total())
	require.Equal(t, 6, s.FAQs.Len())
}

func TestUpdate_RemoteBumpsVersion(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)

	added, err := s.FAQs.Add(ctx, model.FAQ{Question: "q", Answer: "a"})
	require.NoError(t, err)

	res, err := s.FAQs.Update(ctx, added.Record.ID, model.FAQ{Question: "q2", Answer: "a2"})
	require.NoError(t, err)
	require.Equal(t, OriginRemote, res.Origin)
	require.Equal(t, int64(2), res.Record.Version)
	require.Equal(t, int64(1), gw.lastUpdateBase)

	got, ok := s.FAQs.Get(added.Record.ID)
	require.True(t, ok)
	require.Equal(t, "q2", got.Question)
	require.Equal(t, "FAQ updated: q2", s.Activity()[0].Message)
}

func TestUpdate_StaleBaseVersionRejectedLocally(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)
	added, err := s.FAQs.Add(ctx, model.FAQ{Question: "q", Answer: "a"})
	require.NoError(t, err)

	stale := model.FAQ{Meta: model.Meta{Version: 9}, Question: "other", Answer: "x"}
	_, err = s.FAQs.Update(ctx, added.Record.ID, stale)
	require.ErrorIs(t, err, errs.ErrVersionConflict)
	require.Zero(t, gw.count("update"))

	got, _ := s.FAQs.Get(added.Record.ID)
	require.Equal(t, "q", got.Question)
}

func TestUpdate_RemoteConflictSurfacesWithoutSideEffects(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)
	added, err := s.FAQs.Add(ctx, model.FAQ{Question: "q", Answer: "a"})
	require.NoError(t, err)
	actBefore := len(s.Activity())

	gw.updateErr = errs.ErrVersionConflict
	_, err = s.FAQs.Update(ctx, added.Record.ID, model.FAQ{Question: "q2", Answer: "a2"})
	require.ErrorIs(t, err, errs.ErrVersionConflict)
	require.True(t, s.RemoteAvailable(), "a conflict proves the remote is reachable")

	got, _ := s.FAQs.Get(added.Record.ID)
	require.Equal(t, "q", got.Question)
	require.Len(t, s.Activity(), actBefore)
}

func TestUpdate_LocalFallbackKeepsVersion(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)
	added, err := s.FAQs.Add(ctx, model.FAQ{Question: "q", Answer: "a"})
	require.NoError(t, err)

	gw.updateErr = errDown
	res, err := s.FAQs.Update(ctx, added.Record.ID, model.FAQ{Question: "q2", Answer: "a2"})
	require.NoError(t, err)
	require.Equal(t, OriginLocal, res.Origin)
	require.Equal(t, added.Record.ID, res.Record.ID)
	require.Equal(t, int64(1), res.Record.Version)
	require.False(t, s.RemoteAvailable())
}

func TestLocalIDsNeverReachRemote(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	gw.setFail(errDown)
	s := newTestStore(t, gw, nil)

	local, err := s.Games.Add(ctx, model.Game{Title: "offline"})
	require.NoError(t, err)

	gw.setFail(nil)
	_, err = s.FAQs.Refresh(ctx)
	require.NoError(t, err)
	require.True(t, s.RemoteAvailable())

	calls := gw.total()
	res, err := s.Games.Update(ctx, local.Record.ID, model.Game{Title: "offline 2"})
	require.NoError(t, err)
	require.Equal(t, OriginLocal, res.Origin)
	rm, err := s.Games.Remove(ctx, local.Record.ID)
	require.NoError(t, err)
	require.Equal(t, OriginLocal, rm.Origin)
	require.Equal(t, calls, gw.total())
	require.True(t, s.RemoteAvailable())
}

func TestRemove_RegardlessOfRemote(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)

	a, _ := s.FAQs.Add(ctx, model.FAQ{Question: "a", Answer: "a"})
	b, _ := s.FAQs.Add(ctx, model.FAQ{Question: "b", Answer: "b"})

	gw.deleteErr = errs.ErrVersionConflict
	res, err := s.FAQs.Remove(ctx, a.Record.ID)
	require.NoError(t, err)
	require.Equal(t, OriginLocal, res.Origin)
	require.True(t, s.RemoteAvailable())

	gw.deleteErr = errDown
	res, err = s.FAQs.Remove(ctx, b.Record.ID)
	require.NoError(t, err)
	require.Equal(t, OriginLocal, res.Origin)
	require.False(t, s.RemoteAvailable())

	_, okA := s.FAQs.Get(a.Record.ID)
	_, okB := s.FAQs.Get(b.Record.ID)
	require.False(t, okA)
	require.False(t, okB)
	require.Equal(t, "FAQ deleted: b", s.Activity()[0].Message)
}

func TestRemove_RemoteNotFoundCountsAsRemote(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)
	a, _ := s.FAQs.Add(ctx, model.FAQ{Question: "a", Answer: "a"})
	gw.deleteErr = errs.ErrNotFound
	res, err := s.FAQs.Remove(ctx, a.Record.ID)
	require.NoError(t, err)
	require.Equal(t, OriginRemote, res.Origin)
	require.True(t, s.RemoteAvailable())
}

func TestRefresh_ReplacesAndKeepsLocalOnly(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	gw.setFail(errDown)
	s := newTestStore(t, gw, nil)

	local, err := s.FAQs.Add(ctx, model.FAQ{Question: "offline", Answer: "x"})
	require.NoError(t, err)

	gw.setFail(nil)
	gw.lists[model.CollectionFAQs] = []json.RawMessage{
		json.RawMessage(`{"id":"r2","version":4,"question":"remote 2","answer":"b"}`),
		json.RawMessage(`{"id":"r1","version":1,"question":"remote 1","answer":"a"}`),
	}
	origin, err := s.FAQs.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, OriginRemote, origin)

	list := s.FAQs.List()
	require.Len(t, list, 3)
	require.Equal(t, local.Record.ID, list[0].ID)
	require.Equal(t, "r2", list[1].ID)
	require.Equal(t, int64(4), list[1].Version)
}

func TestRefresh_FailureKeepsLocalData(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	gw.setFail(errDown)
	s := newTestStore(t, gw, nil)

	origin, err := s.FAQs.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, OriginLocal, origin)
	require.Equal(t, 6, s.FAQs.Len())
	require.False(t, s.RemoteAvailable())
}

func TestRefresh_MalformedRecordIsFailure(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	gw.lists[model.CollectionFAQs] = []json.RawMessage{json.RawMessage(`{"question":"no id"}`)}
	s := newTestStore(t, gw, nil)

	origin, err := s.FAQs.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, OriginLocal, origin)
	require.Equal(t, 6, s.FAQs.Len())
	require.False(t, s.RemoteAvailable())
}

func TestRefreshAll(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)
	remote, err := s.RefreshAll(context.Background())
	require.NoError(t, err)
	require.True(t, remote)
	require.Equal(t, 5, gw.count("list"))
	require.Zero(t, s.Games.Len(), "remote lists replace seed data")

	gw.setFail(errDown)
	remote, err = s.RefreshAll(context.Background())
	require.NoError(t, err)
	require.False(t, remote)
}

func TestUsers_LocalOnly(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)

	u, err := s.Users.Add(ctx, model.User{Name: "Budi", Email: "b@x.id", Role: model.RoleUser})
	require.NoError(t, err)
	require.Equal(t, OriginLocal, u.Origin)

	res, err := s.UpdateUserRole(ctx, u.Record.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, res.Record.Role)
	require.Equal(t, "User role updated to admin", s.Activity()[0].Message)

	_, err = s.UpdateUserRole(ctx, u.Record.ID, "root")
	require.ErrorIs(t, err, errs.ErrValidation)

	origin, err := s.Users.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, OriginNone, origin)
	require.Zero(t, gw.total())
	require.True(t, s.RemoteAvailable())
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	s := newTestStore(t, gw, nil)
	o, err := s.Orders.Add(ctx, model.Order{UserName: "Ani", Total: 15000, Status: model.OrderPending})
	require.NoError(t, err)
	id := o.Record.ID

	res, err := s.UpdateOrderStatus(ctx, id, model.OrderPaid)
	require.NoError(t, err)
	require.Equal(t, OriginRemote, res.Origin)
	require.Equal(t, model.OrderPaid, res.Record.Status)
	require.Equal(t, "Order #"+id+" status updated to paid", s.Activity()[0].Message)

	res, err = s.UpdateOrderStatus(ctx, id, model.OrderPaid)
	require.NoError(t, err)
	require.Equal(t, OriginNone, res.Origin)

	_, err = s.UpdateOrderStatus(ctx, id, model.OrderPending)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	_, err = s.UpdateOrderStatus(ctx, id, "refunded")
	require.ErrorIs(t, err, errs.ErrValidation)

	res, err = s.UpdateOrderStatus(ctx, "missing", model.OrderPaid)
	require.NoError(t, err)
	require.False(t, res.Changed())
}

func TestCacheRoundTrip_ReinitYieldsEqualCollection(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemory()
	gw := newFakeGateway()
	s := newTestStore(t, gw, mem)

	for _, q := range []string{"one", "two", "three"} {
		_, err := s.FAQs.Add(ctx, model.FAQ{Question: q, Answer: q})
		require.NoError(t, err)
	}
	_, err := s.Orders.Add(ctx, model.Order{Total: 5, Status: model.OrderPending, CreatedAt: fixedNow})
	require.NoError(t, err)

	s2 := newTestStore(t, gw, mem)
	require.Equal(t, s.FAQs.List(), s2.FAQs.List())
	require.Equal(t, s.Orders.List(), s2.Orders.List())
	require.Equal(t, s.Games.List(), s2.Games.List())
}

func TestCacheWriteFailure_LeavesStateUntouched(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(t, gw, brokenCache{cache.NewMemory()})

	_, err := s.FAQs.Add(context.Background(), model.FAQ{Question: "q", Answer: "a"})
	require.Error(t, err)
	require.Equal(t, 6, s.FAQs.Len())
	require.Empty(t, s.Activity())
}

func TestPromotionScenario_ActiveThenDeleted(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemory()
	s := newTestStore(t, newFakeGateway(), mem)

	res, err := s.FlashSales.Add(ctx, model.FlashSale{
		Name: "Half Price", Discount: 50,
		StartTime: fixedNow.Add(-time.Hour), EndTime: fixedNow.Add(time.Hour),
	})
	require.NoError(t, err)

	p := s.PromotionPhases()
	require.Len(t, p.Active, 1)
	require.Equal(t, res.Record.ID, p.Active[0].ID)
	codes := s.ActiveVouchers()
	require.True(t, strings.HasPrefix(codes[res.Record.ID], "HAL"))

	_, err = s.FlashSales.Remove(ctx, res.Record.ID)
	require.NoError(t, err)
	require.Zero(t, s.PromotionPhases().Len())
	cached := cache.Load(ctx, mem, zaptest.NewLogger(t), cache.Key(model.CollectionFlashSales), []model.FlashSale{{}})
	require.Empty(t, cached)
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeGateway(), nil)
	_, _ = s.Orders.Add(ctx, model.Order{Total: 15000, Status: model.OrderPaid, CreatedAt: fixedNow})
	_, _ = s.Orders.Add(ctx, model.Order{Total: 30000, Items: []model.OrderItem{{Title: "50 Diamonds", Quantity: 2, Price: 15000}}, Status: model.OrderPending, CreatedAt: fixedNow.AddDate(0, 0, -1)})
	_, _ = s.Users.Add(ctx, model.User{Name: "a", Role: model.RoleUser})

	st := s.Statistics()
	require.Equal(t, 2, st.TotalOrders)
	require.Equal(t, 1, st.OrdersToday)
	require.Equal(t, 3, st.TotalSales)
	require.Equal(t, int64(45000), st.Revenue)
	require.Equal(t, 1, st.ActiveUsers)
	require.Equal(t, st, s.Statistics())
}

func TestNotifications_Facade(t *testing.T) {
	s := newTestStore(t, newFakeGateway(), nil)
	n := s.PushNotification("low stock")
	require.Equal(t, 1, s.UnreadNotifications())
	s.MarkNotificationRead(n.ID)
	s.MarkNotificationRead(n.ID)
	require.Zero(t, s.UnreadNotifications())
	s.ClearNotifications()
	require.Empty(t, s.Notifications())
}

func TestSyncState_TransitionsOnlyOnce(t *testing.T) {
	st := NewSyncState()
	var seen []bool
	st.OnChange(func(up bool, _ error) { seen = append(seen, up) })
	require.False(t, st.MarkUp())
	require.True(t, st.MarkDown(errors.New("x")))
	require.False(t, st.MarkDown(errors.New("y")))
	require.True(t, st.MarkUp())
	require.Equal(t, []bool{false, true}, seen)
}

func TestReadsAndRejectedEdits_LeaveStoredRecordUntouched(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil, nil)
	before, ok := s.Games.Get("1")
	require.True(t, ok)
	require.NotEmpty(t, before.Packages)
	price := before.Packages[0].Price

	got, _ := s.Games.Get("1")
	got.Packages[0].Price = -5
	got.Tags = append(got.Tags[:0], "changed")
	list := s.Games.List()
	for i := range list {
		if list[i].ID == "1" {
			list[i].Packages[0].Price = -6
		}
	}

	_, err := s.Games.Modify(ctx, "1", func(g *model.Game) error {
		g.Packages[0].Price = -7
		return errs.ErrValidation
	})
	require.ErrorIs(t, err, errs.ErrValidation)

	after, _ := s.Games.Get("1")
	require.Equal(t, price, after.Packages[0].Price)
	require.Equal(t, before, after)
}

func TestAdd_LocalOrderStampedAndCountedToday(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil, nil)

	res, err := s.Orders.Add(ctx, model.Order{Total: 15000, Status: model.OrderPending})
	require.NoError(t, err)
	require.Equal(t, OriginLocal, res.Origin)
	require.True(t, res.Record.CreatedAt.Equal(fixedNow))

	st := s.Statistics()
	require.Equal(t, 1, st.OrdersToday)
	require.Equal(t, int64(15000), st.MonthRevenue)
}
