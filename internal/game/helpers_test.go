package game

import (
	"io"
	"log/slog"
)

// fixedRand returns the same draw every time so scenarios are exact.
type fixedRand struct{ f float64 }

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(int) int     { return 0 }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSim(f float64) Sim {
	return Sim{Rand: fixedRand{f: f}, Balance: DefaultBalance()}
}

func idealPrefs(archetype string, stage int) map[string]float64 {
	out := map[string]float64{}
	for i, dim := range StageDims[stage] {
		out[dim] = recipes[archetype].Ideal[stage][i]
	}
	return out
}

func dexConfig() ProjectConfig {
	return ProjectConfig{
		Title:     "Moon Swap",
		Archetype: "dex",
		Narrative: "defi",
		Chain:     "ethereum",
		Audience:  "degens",
		Scale:     1,
		Budget:    50_000,
	}
}
