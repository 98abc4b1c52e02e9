package game

import "math"

type Tier string

const (
	TierPerfect Tier = "perfect"
	TierMid     Tier = "mid"
	TierBad     Tier = "bad"
	TierUnknown Tier = "unknown"
)

const (
	categoricalWeight = 0.55
	sliderWeight      = 0.45
	unconfiguredFit   = 50.0
)

type Tags struct {
	Archetype string `json:"archetype"`
	Narrative string `json:"narrative"`
	Chain     string `json:"chain"`
	Audience  string `json:"audience"`
}

func (p *Project) Tags() Tags {
	return Tags{Archetype: p.Archetype, Narrative: p.Narrative, Chain: p.Chain, Audience: p.Audience}
}

func tierScore(t Tier) float64 {
	switch t {
	case TierPerfect:
		return 100
	case TierBad:
		return 20
	default:
		return 60
	}
}

func tierOf(perfect, bad []string, v string) Tier {
	switch {
	case contains(perfect, v):
		return TierPerfect
	case contains(bad, v):
		return TierBad
	default:
		return TierMid
	}
}

// ComboTiers returns the true tiers for narrative, chain and audience.
// Unknown archetypes score mid on every dimension.
func ComboTiers(t Tags) (narrative, chain, audience Tier) {
	r, ok := recipes[t.Archetype]
	if !ok {
		return TierMid, TierMid, TierMid
	}
	return tierOf(r.Perfect.Narratives, r.Bad.Narratives, t.Narrative),
		tierOf(r.Perfect.Chains, r.Bad.Chains, t.Chain),
		tierOf(r.Perfect.Audiences, r.Bad.Audiences, t.Audience)
}

func CategoricalScore(t Tags) float64 {
	n, c, a := ComboTiers(t)
	return (tierScore(n) + tierScore(c) + tierScore(a)) / 3
}

// StageFit scores slider prefs against the archetype's ideal vector for a
// stage, 0..100. Missing dimensions count as 50.
func StageFit(archetype string, stage int, prefs map[string]float64) float64 {
	if stage < 0 || stage >= StageCount {
		return 0
	}
	r, ok := recipes[archetype]
	if !ok {
		return unconfiguredFit
	}
	dims := StageDims[stage]
	var dist float64
	for i, dim := range dims {
		v, ok := prefs[dim]
		if !ok {
			v = 50
		}
		dist += math.Abs(clamp(v, 0, 100) - r.Ideal[stage][i])
	}
	return clamp(100-dist/float64(len(dims)), 0, 100)
}

// Match blends the categorical tiers with slider fit across all stages.
// Stages without prefs count as a neutral fit.
func Match(t Tags, prefs map[string]map[string]float64) float64 {
	var fits float64
	for stage, key := range StageKeys {
		p, ok := prefs[key]
		if !ok || len(p) == 0 {
			fits += unconfiguredFit
			continue
		}
		fits += StageFit(t.Archetype, stage, p)
	}
	fits /= StageCount
	return clamp(round(categoricalWeight*CategoricalScore(t)+sliderWeight*fits), 0, 100)
}

func StageFitMultiplier(fit float64) float64 {
	return clamp(0.6+0.8*fit/100, 0.6, 1.4)
}

// IdealPrefs reveals a stage's ideal slider vector once the archetype is known.
func IdealPrefs(s *State, archetype string, stage int) (map[string]float64, bool) {
	r, ok := recipes[archetype]
	if !ok || stage < 0 || stage >= StageCount || !s.ArchetypeKnown(archetype) {
		return nil, false
	}
	out := make(map[string]float64, len(StageDims[stage]))
	for i, dim := range StageDims[stage] {
		out[dim] = r.Ideal[stage][i]
	}
	return out, true
}

type ComboBreakdown struct {
	Archetype string `json:"archetype"`
	Known     bool   `json:"known"`
	Narrative Tier   `json:"narrative"`
	Chain     Tier   `json:"chain"`
	Audience  Tier   `json:"audience"`
	Match     *int   `json:"match,omitempty"`
}

// KnownComboBreakdown reports tiers only for archetypes the studio has
// discovered through a postmortem.
func KnownComboBreakdown(s *State, t Tags, prefs map[string]map[string]float64) ComboBreakdown {
	out := ComboBreakdown{
		Archetype: t.Archetype,
		Narrative: TierUnknown,
		Chain:     TierUnknown,
		Audience:  TierUnknown,
	}
	if !s.ArchetypeKnown(t.Archetype) {
		return out
	}
	out.Known = true
	out.Narrative, out.Chain, out.Audience = ComboTiers(t)
	m := int(Match(t, prefs))
	out.Match = &m
	return out
}

func (s *State) ArchetypeKnown(archetype string) bool {
	return contains(s.Knowledge.KnownArchetypes, archetype)
}
