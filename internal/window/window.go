// Package window controls which items of an episode's stream the policy may
// see and pick from.
package window

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/piwi3910/StuffGen/internal/model"
)

// ErrUnknownItem is returned when Take is called with an item that is not
// currently visible.
var ErrUnknownItem = errors.New("item not in visibility window")

// Window is the visibility contract shared by every mode.
type Window interface {
	// Visible returns the items the policy may choose from, in window order.
	Visible() []model.Item
	// Take consumes a visible item and refills the window.
	Take(id int) (model.Item, error)
	// Len returns the number of items not yet consumed, visible or not.
	Len() int
}

// Lookahead exposes the first k remaining items of the stream. Taking an item
// removes it and the window slides forward.
type Lookahead struct {
	k     int
	items []model.Item
}

// NewLookahead returns a lookahead window of size k over items.
func NewLookahead(items []model.Item, k int) *Lookahead {
	rest := make([]model.Item, len(items))
	copy(rest, items)
	return &Lookahead{k: k, items: rest}
}

// Visible returns at most k items in stream order.
func (w *Lookahead) Visible() []model.Item {
	n := min(w.k, len(w.items))
	out := make([]model.Item, n)
	copy(out, w.items[:n])
	return out
}

// Take removes the item with the given id from the visible prefix.
func (w *Lookahead) Take(id int) (model.Item, error) {
	n := min(w.k, len(w.items))
	for i := 0; i < n; i++ {
		if w.items[i].ID == id {
			item := w.items[i]
			w.items = append(w.items[:i], w.items[i+1:]...)
			return item, nil
		}
	}
	return model.Item{}, fmt.Errorf("%w: %d", ErrUnknownItem, id)
}

// Len returns the number of remaining items.
func (w *Lookahead) Len() int {
	return len(w.items)
}

// SemiOnline exposes at most k accessible items drawn at random from a known
// pool. Every item leaving the window is replaced by a random pool item while
// the pool lasts.
type SemiOnline struct {
	k       int
	visible []model.Item
	pool    []model.Item
	rng     *rand.Rand
}

// NewSemiOnline fills an accessible window of size k from pool using rng.
func NewSemiOnline(pool []model.Item, k int, rng *rand.Rand) *SemiOnline {
	rest := make([]model.Item, len(pool))
	copy(rest, pool)
	w := &SemiOnline{k: k, pool: rest, rng: rng}
	for len(w.visible) < w.k && len(w.pool) > 0 {
		w.refill()
	}
	return w
}

func (w *SemiOnline) refill() {
	i := w.rng.Intn(len(w.pool))
	w.visible = append(w.visible, w.pool[i])
	w.pool = append(w.pool[:i], w.pool[i+1:]...)
}

// Visible returns the accessible items.
func (w *SemiOnline) Visible() []model.Item {
	out := make([]model.Item, len(w.visible))
	copy(out, w.visible)
	return out
}

// Take consumes an accessible item and draws a replacement from the pool.
func (w *SemiOnline) Take(id int) (model.Item, error) {
	for i, item := range w.visible {
		if item.ID != id {
			continue
		}
		w.visible = append(w.visible[:i], w.visible[i+1:]...)
		if len(w.pool) > 0 {
			w.refill()
		}
		return item, nil
	}
	return model.Item{}, fmt.Errorf("%w: %d", ErrUnknownItem, id)
}

// Len returns the number of items still accessible or in the pool.
func (w *SemiOnline) Len() int {
	return len(w.visible) + len(w.pool)
}

// New returns the window the settings' mode calls for.
func New(s model.Settings, items []model.Item, rng *rand.Rand) Window {
	if s.Mode == model.ModeSemiOnline {
		return NewSemiOnline(items, s.AccessibleK, rng)
	}
	return NewLookahead(items, s.LookaheadK)
}
