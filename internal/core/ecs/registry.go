package ecs

// Filter matches entities whose active-component set contains Mask.
type Filter struct {
	Mask Mask
}

// NewFilter builds a filter over the given component IDs.
func NewFilter(ids ...ComponentID) Filter {
	return Filter{Mask: MaskOf(ids...)}
}

// Matches reports whether e is live and satisfies the filter.
func (f Filter) Matches(w *World, e Entity) bool {
	pos, ok := w.position[e.ID]
	return ok && w.registry[pos].mask.Contains(f.Mask)
}

// Each calls fn for every live entity matching the filter. Structural
// mutation is rejected until Each returns; queue it on Commands instead.
func (f Filter) Each(w *World, fn func(Entity)) {
	done := w.enter()
	defer done()
	for i := 0; i < len(w.registry); i++ {
		en := w.registry[i]
		if en.mask.Contains(f.Mask) {
			fn(en.entity)
		}
	}
}

// Count returns the number of live entities matching the filter.
func (f Filter) Count(w *World) int {
	n := 0
	for _, en := range w.registry {
		if en.mask.Contains(f.Mask) {
			n++
		}
	}
	return n
}
