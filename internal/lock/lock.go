// Package lock serializes reservations and cancellations per resource.
//
// Keys are always taken in the global (Kind, ID) order so that two requests
// touching overlapping resource sets cannot deadlock.
package lock

import (
	"context"
	"fmt"
	"sort"
)

const (
	KindFlight = "flight"
	KindRoom   = "room"
)

type Key struct {
	Kind string
	ID   int64
}

func RoomKey(id int64) Key   { return Key{Kind: KindRoom, ID: id} }
func FlightKey(id int64) Key { return Key{Kind: KindFlight, ID: id} }

func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

func (k Key) Less(other Key) bool {
	if k.Kind != other.Kind {
		return k.Kind < other.Kind
	}
	return k.ID < other.ID
}

// Locker grants exclusive access to a single key. Lock blocks for at most the
// implementation's wait bound and then fails with *domain.BusyError.
type Locker interface {
	Lock(ctx context.Context, key Key) (unlock func(), err error)
}

// Sort returns the distinct keys in acquisition order.
func Sort(keys []Key) []Key {
	sorted := make([]Key, 0, len(keys))
	seen := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	return sorted
}

// AcquireAll locks every key in order. On failure the keys already held are
// released before the error is returned. The returned func releases in reverse order.
func AcquireAll(ctx context.Context, locker Locker, keys ...Key) (func(), error) {
	ordered := Sort(keys)
	unlocks := make([]func(), 0, len(ordered))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}

	for _, key := range ordered {
		unlock, err := locker.Lock(ctx, key)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}
