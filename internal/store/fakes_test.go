package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/and161185/neverland-admin/internal/cache"
	"github.com/and161185/neverland-admin/internal/errs"
	"github.com/and161185/neverland-admin/internal/gateway"
)

// fakeGateway keeps records per collection and counts calls per operation.
type fakeGateway struct {
	mu sync.Mutex

	fail      error // returned by every call when set
	updateErr error
	deleteErr error

	calls  map[string]int
	lists  map[string][]json.RawMessage
	nextID int

	lastUpdateBase int64
}

var _ gateway.Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{calls: map[string]int{}, lists: map[string][]json.RawMessage{}}
}

func (f *fakeGateway) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeGateway) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func (f *fakeGateway) List(_ context.Context, collection string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.fail != nil {
		return nil, f.fail
	}
	return f.lists[collection], nil
}

func (f *fakeGateway) Create(_ context.Context, _ string, record json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.fail != nil {
		return nil, f.fail
	}
	f.nextID++
	return stamp(record, fmt.Sprintf("srv-%d", f.nextID), 1)
}

func (f *fakeGateway) Update(_ context.Context, _ string, id string, base int64, record json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	f.lastUpdateBase = base
	if f.fail != nil {
		return nil, f.fail
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return stamp(record, id, base+1)
}

func (f *fakeGateway) Delete(context.Context, string, string, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.fail != nil {
		return f.fail
	}
	return f.deleteErr
}

func stamp(record json.RawMessage, id string, ver int64) (json.RawMessage, error) {
	var doc map[string]any
	if err := json.Unmarshal(record, &doc); err != nil {
		return nil, err
	}
	doc["id"] = id
	doc["version"] = ver
	return json.Marshal(doc)
}

var errDown = fmt.Errorf("%w: connection refused", errs.ErrUnavailable)

// brokenCache fails every write.
type brokenCache struct{ *cache.Memory }

func (brokenCache) Put(context.Context, string, []byte) error { return errors.New("disk full") }
