// Profiling:
// go build ./cmd/profile
// ./profile && go tool pprof -http=":8000" ./profile mem.pprof

package main

import (
	"github.com/modosynth/modosynth/internal/core/ecs"
	"github.com/pkg/profile"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

type tag struct{}

func main() {
	rounds := 50
	iters := 200
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

// run spawns, integrates and despawns every other entity, which keeps the
// swap-remove fix-up on the hot path.
func run(rounds, iters, numEntities int) {
	for r := 0; r < rounds; r++ {
		schema := ecs.NewSchema()
		pos := ecs.Register[position](schema)
		vel := ecs.Register[velocity](schema)
		tg := ecs.Register[tag](schema)
		w := ecs.NewWorld(schema, ecs.WithCapacity(numEntities))

		for it := 0; it < iters; it++ {
			for i := 0; i < numEntities; i++ {
				values := []ecs.Value{pos.Value(position{}), vel.Value(velocity{X: 1, Y: 1})}
				if i%2 == 0 {
					values = append(values, tg.Value(tag{}))
				}
				if _, err := w.Spawn(values...); err != nil {
					panic(err)
				}
			}
			ecs.Run2(w, pos, vel, func(_ ecs.Entity, p *position, v *velocity) {
				p.X += v.X
				p.Y += v.Y
			})
			ecs.NewFilter(tg.ID()).Each(w, w.MarkForDestruction)
			if _, err := w.Commands().Flush(); err != nil {
				panic(err)
			}
			for _, e := range w.Entities() {
				if err := w.Despawn(e); err != nil {
					panic(err)
				}
			}
		}
	}
}
