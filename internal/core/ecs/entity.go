package ecs

import (
	"fmt"
	"math"
)

// EntityID is the numeric identity of an entity. IDs are handed out in
// increasing order and never reused until the allocator is seeded again.
type EntityID uint32

// Entity is a value handle. Copying or dropping it has no effect on the World.
type Entity struct {
	ID EntityID
}

func (e Entity) String() string { return fmt.Sprintf("entity(%d)", e.ID) }

const maxEntityID = math.MaxUint32

// Allocator hands out entity identities. It replaces a process-wide counter so
// every World (and every test) owns its own sequence.
type Allocator struct {
	next uint64 // one past the last allocated ID; > maxEntityID means exhausted
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns a fresh entity one greater than the previous allocation.
func (a *Allocator) Next() (Entity, error) {
	if a.next > maxEntityID {
		return Entity{}, ErrIdentityExhausted
	}
	id := EntityID(a.next)
	a.next++
	return Entity{ID: id}, nil
}

// Force hands out the given identity and moves the counter past it. The
// counter only ever moves forward here; use Seed to rewind.
func (a *Allocator) Force(id EntityID) Entity {
	if uint64(id)+1 > a.next {
		a.next = uint64(id) + 1
	}
	return Entity{ID: id}
}

// Seed sets the identity the next call to Next returns.
func (a *Allocator) Seed(id EntityID) {
	a.next = uint64(id)
}

// Issued reports whether id is below the allocation counter, i.e. it could
// have been handed out.
func (a *Allocator) Issued(id EntityID) bool {
	return uint64(id) < a.next
}

// Peek reports the identity Next would return, or false when exhausted.
func (a *Allocator) Peek() (EntityID, bool) {
	if a.next > maxEntityID {
		return 0, false
	}
	return EntityID(a.next), true
}
