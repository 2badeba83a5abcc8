package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/neverland-admin/internal/ids"
)

func TestBounded_PrependAndEvict(t *testing.T) {
	b := NewBounded[int](3)
	for i := 1; i <= 5; i++ {
		b.Push(i)
	}
	require.Equal(t, []int{5, 4, 3}, b.Snapshot())
	require.Equal(t, 3, b.Len())
}

func TestActivity_Cap101Evicts(t *testing.T) {
	a := NewActivity(ids.NewGenerator(nil), nil)
	for i := 0; i < ActivityCap+1; i++ {
		a.Record("game", fmt.Sprintf("event %d", i))
	}
	items := a.Items()
	require.Len(t, items, ActivityCap)
	require.Equal(t, "event 100", items[0].Message)
	require.Equal(t, "event 1", items[len(items)-1].Message)
	for i := 1; i < len(items); i++ {
		require.Greater(t, items[i-1].ID, items[i].ID, "ids must be newest first")
	}
}

func TestNotifications_CapMarkReadClear(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := NewNotifications(ids.NewGenerator(func() time.Time { return now }), func() time.Time { return now })
	var first int64
	for i := 0; i < NotificationCap+5; i++ {
		nt := n.Push(fmt.Sprintf("n%d", i))
		if i == NotificationCap+4 {
			first = nt.ID
		}
	}
	require.Len(t, n.Items(), NotificationCap)
	require.Equal(t, NotificationCap, n.Unread())

	n.MarkRead(first)
	n.MarkRead(first)
	n.MarkRead(-1)
	require.Equal(t, NotificationCap-1, n.Unread())
	require.True(t, n.Items()[0].Read)

	n.Clear()
	require.Empty(t, n.Items())
	require.Zero(t, n.Unread())
}

func TestSnapshot_IsCopy(t *testing.T) {
	n := NewNotifications(ids.NewGenerator(nil), nil)
	n.Push("a")
	s := n.Items()
	s[0].Read = true
	require.False(t, n.Items()[0].Read)
}
