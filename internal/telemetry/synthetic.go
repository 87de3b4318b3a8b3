package telemetry

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Generator produces synthetic telemetry windows for demo fleets and the
// "generate sample" action. Higher wear pushes every sensor value up, so the
// endpoint returns different RULs for different engines.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a Generator whose output is fully determined by seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Window returns a window where each value is 0.2 + wear*0.6 plus up to 0.1
// of noise, rounded to 4 decimals. wear is clamped to [0, 1].
func (g *Generator) Window(wear float64) Window {
	wear = math.Max(0, math.Min(1, wear))
	base := 0.2 + wear*0.6

	g.mu.Lock()
	defer g.mu.Unlock()

	var w Window
	for i := range w {
		for j := range w[i] {
			v := base + g.rng.Float64()*0.1
			w[i][j] = math.Round(v*1e4) / 1e4
		}
	}
	return w
}
