package ecs

// Spawn is triggered on the World's bus after a new entity's components are
// stored.
type Spawn struct {
	Entity Entity
}

// Despawn is triggered after the entity leaves the registry but before its
// components are dropped, so handlers can still read them with Get.
type Despawn struct {
	Entity Entity
}
