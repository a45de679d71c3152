package service

import (
	"time"

	"k9harmony/pkg/model"
)

// slotIndex groups the live locks of one trainer by slot key. Order within a key follows the table.
type slotIndex struct {
	byKey   map[string][]*model.SlotLock
	live    []*model.SlotLock
	expired []*model.SlotLock
}

func buildIndex(locks []*model.SlotLock, now time.Time) *slotIndex {
	idx := &slotIndex{byKey: make(map[string][]*model.SlotLock)}
	for _, l := range locks {
		if !l.IsLive(now) {
			idx.expired = append(idx.expired, l)
			continue
		}
		idx.live = append(idx.live, l)
		idx.byKey[l.SlotKey] = append(idx.byKey[l.SlotKey], l)
	}
	return idx
}

// conflicting returns live locks that claim the slot key or overlap [start, end), in table order.
func (idx *slotIndex) conflicting(key string, start, end time.Time) []*model.SlotLock {
	if end.IsZero() || !end.After(start) {
		return idx.byKey[key]
	}
	var out []*model.SlotLock
	for _, l := range idx.live {
		if l.SlotKey == key || l.Covers(start, end) {
			out = append(out, l)
		}
	}
	return out
}

func (idx *slotIndex) heldBy(key, holder string) *model.SlotLock {
	for _, l := range idx.byKey[key] {
		if l.Holder == holder {
			return l
		}
	}
	return nil
}
