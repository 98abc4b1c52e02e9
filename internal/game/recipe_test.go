package game

import "testing"

func TestMatchPerfectCombo(t *testing.T) {
	tags := dexConfig().Tags()
	prefs := map[string]map[string]float64{}
	for stage, key := range StageKeys {
		prefs[key] = idealPrefs("dex", stage)
	}
	if got := Match(tags, prefs); got != 100 {
		t.Fatalf("match=%v want 100", got)
	}
	if a, b := Match(tags, prefs), Match(tags, prefs); a != b {
		t.Fatalf("match not deterministic: %v vs %v", a, b)
	}
}

func TestMatchUnconfiguredStagesAreNeutral(t *testing.T) {
	tags := Tags{Archetype: "dex", Narrative: "rwa", Chain: "cosmos", Audience: "institutions"}
	// categorical 20, slider fit 50: 0.55*20 + 0.45*50 = 33.5
	if got := Match(tags, nil); got != 34 {
		t.Fatalf("match=%v want 34", got)
	}
}

func TestStageFitMissingDimsCountFifty(t *testing.T) {
	fit := StageFit("dex", 0, map[string]float64{"tokenomics": 70})
	// |50-55| + |50-60| over three dims
	if want := 100 - 15.0/3; fit != want {
		t.Fatalf("fit=%v want %v", fit, want)
	}
}

func TestStageFitMultiplierBounds(t *testing.T) {
	if got := StageFitMultiplier(0); got != 0.6 {
		t.Fatalf("multiplier(0)=%v", got)
	}
	if got := StageFitMultiplier(100); got != 1.4 {
		t.Fatalf("multiplier(100)=%v", got)
	}
}

func TestKnownComboBreakdownHidesUnknownArchetypes(t *testing.T) {
	s := &State{}
	tags := dexConfig().Tags()
	got := KnownComboBreakdown(s, tags, nil)
	if got.Known || got.Narrative != TierUnknown || got.Chain != TierUnknown || got.Audience != TierUnknown || got.Match != nil {
		t.Fatalf("unknown archetype leaked: %+v", got)
	}

	s.Knowledge.KnownArchetypes = []string{"dex"}
	got = KnownComboBreakdown(s, tags, nil)
	if !got.Known || got.Narrative != TierPerfect || got.Match == nil {
		t.Fatalf("known archetype hidden: %+v", got)
	}
	if _, ok := IdealPrefs(s, "lending", 0); ok {
		t.Fatalf("ideal prefs revealed for an unknown archetype")
	}
}
