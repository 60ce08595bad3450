package tracker

import (
	"sort"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// DefaultCapacity is the number of daily entries retained.
const DefaultCapacity = 30

// Ring is a bounded, date-keyed queue of prediction entries kept in ascending
// date order. When full, the entry with the oldest date is evicted first.
type Ring struct {
	capacity int
	entries  []model.PredictionEntry
}

// NewRing builds a ring from persisted entries. Duplicate dates keep the last
// occurrence and entries beyond capacity are evicted oldest first.
func NewRing(capacity int, entries []model.PredictionEntry) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r := &Ring{capacity: capacity}
	for _, e := range entries {
		r.Put(e)
	}
	return r
}

// Put inserts e, replacing any entry with the same date, and returns the
// entries evicted to stay within capacity.
func (r *Ring) Put(e model.PredictionEntry) (evicted []model.PredictionEntry) {
	if i, ok := r.index(e.Date); ok {
		r.entries[i] = e
		return nil
	}
	i := sort.Search(len(r.entries), func(i int) bool { return r.entries[i].Date > e.Date })
	r.entries = append(r.entries, model.PredictionEntry{})
	copy(r.entries[i+1:], r.entries[i:])
	r.entries[i] = e

	if over := len(r.entries) - r.capacity; over > 0 {
		evicted = append(evicted, r.entries[:over]...)
		r.entries = append([]model.PredictionEntry(nil), r.entries[over:]...)
	}
	return evicted
}

// Get returns the entry for date.
func (r *Ring) Get(date string) (model.PredictionEntry, bool) {
	i, ok := r.index(date)
	if !ok {
		return model.PredictionEntry{}, false
	}
	return r.entries[i], true
}

// Len returns the number of entries held.
func (r *Ring) Len() int { return len(r.entries) }

// Entries returns a copy of the entries, oldest first.
func (r *Ring) Entries() []model.PredictionEntry {
	return append([]model.PredictionEntry(nil), r.entries...)
}

func (r *Ring) index(date string) (int, bool) {
	i := sort.Search(len(r.entries), func(i int) bool { return r.entries[i].Date >= date })
	if i < len(r.entries) && r.entries[i].Date == date {
		return i, true
	}
	return 0, false
}
