package ecs

// Run1 calls fn for every live entity holding A. The pointer is only valid
// for the duration of the call.
func Run1[A any](w *World, a Component[A], fn func(Entity, *A)) {
	ta, ok := a.table(w)
	if !ok {
		return
	}
	target := a.Mask()
	done := w.enter()
	defer done()
	for i := 0; i < len(w.registry); i++ {
		en := w.registry[i]
		if !en.mask.Contains(target) {
			continue
		}
		rec := w.index[en.entity.ID]
		fn(en.entity, &ta.values[rec.slots[a.id]])
	}
}

// Run2 calls fn for every live entity holding both A and B.
func Run2[A, B any](w *World, a Component[A], b Component[B], fn func(Entity, *A, *B)) {
	ta, okA := a.table(w)
	tb, okB := b.table(w)
	if !okA || !okB {
		return
	}
	target := a.Mask().Or(b.Mask())
	done := w.enter()
	defer done()
	for i := 0; i < len(w.registry); i++ {
		en := w.registry[i]
		if !en.mask.Contains(target) {
			continue
		}
		rec := w.index[en.entity.ID]
		fn(en.entity, &ta.values[rec.slots[a.id]], &tb.values[rec.slots[b.id]])
	}
}

// Run3 calls fn for every live entity holding A, B and C.
func Run3[A, B, C any](w *World, a Component[A], b Component[B], c Component[C], fn func(Entity, *A, *B, *C)) {
	ta, okA := a.table(w)
	tb, okB := b.table(w)
	tc, okC := c.table(w)
	if !okA || !okB || !okC {
		return
	}
	target := a.Mask().Or(b.Mask()).Or(c.Mask())
	done := w.enter()
	defer done()
	for i := 0; i < len(w.registry); i++ {
		en := w.registry[i]
		if !en.mask.Contains(target) {
			continue
		}
		rec := w.index[en.entity.ID]
		fn(en.entity,
			&ta.values[rec.slots[a.id]],
			&tb.values[rec.slots[b.id]],
			&tc.values[rec.slots[c.id]],
		)
	}
}

// Run4 calls fn for every live entity holding A, B, C and D.
func Run4[A, B, C, D any](w *World, a Component[A], b Component[B], c Component[C], d Component[D], fn func(Entity, *A, *B, *C, *D)) {
	ta, okA := a.table(w)
	tb, okB := b.table(w)
	tc, okC := c.table(w)
	td, okD := d.table(w)
	if !okA || !okB || !okC || !okD {
		return
	}
	target := a.Mask().Or(b.Mask()).Or(c.Mask()).Or(d.Mask())
	done := w.enter()
	defer done()
	for i := 0; i < len(w.registry); i++ {
		en := w.registry[i]
		if !en.mask.Contains(target) {
			continue
		}
		rec := w.index[en.entity.ID]
		fn(en.entity,
			&ta.values[rec.slots[a.id]],
			&tb.values[rec.slots[b.id]],
			&tc.values[rec.slots[c.id]],
			&td.values[rec.slots[d.id]],
		)
	}
}
