package ecs

// Mask is the active-component set of an entity: bit i is set when the entity
// holds a value of component i.
type Mask [MaxComponents / 64]uint64

func (m *Mask) Set(id ComponentID) {
	m[id>>6] |= 1 << (id & 63)
}

func (m *Mask) Unset(id ComponentID) {
	m[id>>6] &^= 1 << (id & 63)
}

func (m Mask) Has(id ComponentID) bool {
	return m[id>>6]&(1<<(id&63)) != 0
}

// Contains reports whether every bit of sub is also set in m.
func (m Mask) Contains(sub Mask) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

// Or returns the union of both masks.
func (m Mask) Or(o Mask) Mask {
	return Mask{m[0] | o[0], m[1] | o[1], m[2] | o[2], m[3] | o[3]}
}

func (m Mask) IsZero() bool {
	return m == Mask{}
}

// MaskOf builds a mask from component IDs.
func MaskOf(ids ...ComponentID) Mask {
	var m Mask
	for _, id := range ids {
		m.Set(id)
	}
	return m
}
