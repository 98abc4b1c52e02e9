package game

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeRepairsSave(t *testing.T) {
	history := make([]KPISnapshot, 45)
	s := &State{
		Version:   0,
		Time:      TimeState{ElapsedHours: math.NaN(), Speed: -3},
		Resources: Resources{Reputation: 300, Cash: 10},
		Team:      Team{Members: []*TeamMember{{ID: "m1", SalaryWeekly: -5}, nil}},
		Active: Active{
			Projects: []*Project{{
				ID:            "p1",
				Started:       true,
				Scale:         9,
				StageIndex:    5,
				StageProgress: 150,
				StageTeam:     map[string]map[string]string{"launch": {"auditor": "ghost", "growth": "m1"}},
			}},
			Products: []*Product{{ID: "x", History: history}},
		},
		StageQueue: []StageRequest{{ProjectID: "p1", Stage: 2}, {ProjectID: "p1", Stage: 2}, {ProjectID: "gone"}},
		Research:   ResearchState{Task: &ResearchTask{NodeID: "time_travel", HoursTotal: 10}},
		World:      World{EventPityWeeks: -4},
	}
	Normalize(s)

	if s.Version != SaveVersion || s.Time.ElapsedHours != 0 || s.Time.Speed != MinSpeed {
		t.Fatalf("time not repaired: v=%d %+v", s.Version, s.Time)
	}
	if s.Resources.Reputation != 100 {
		t.Fatalf("reputation=%v", s.Resources.Reputation)
	}
	if len(s.Team.Members) != 1 || s.Team.Members[0].SalaryWeekly != 0 {
		t.Fatalf("members not cleaned: %+v", s.Team.Members)
	}
	p := s.Active.Projects[0]
	if p.Scale != 3 || p.StageIndex != 2 || p.StageProgress != MaxProgress || !p.StagePaused {
		t.Fatalf("project not clamped: %+v", p)
	}
	if _, ok := p.StageTeam["launch"]["auditor"]; ok {
		t.Fatalf("dangling member kept")
	}
	if p.StageTeam["launch"]["growth"] != "m1" {
		t.Fatalf("valid assignment dropped")
	}
	if len(s.StageQueue) != 1 || s.StageQueue[0] != (StageRequest{ProjectID: "p1", Stage: 2}) {
		t.Fatalf("queue=%+v", s.StageQueue)
	}
	if s.Research.Task != nil || s.EngineVersion("core") != 1 {
		t.Fatalf("research not repaired: %+v", s.Research)
	}
	prod := s.Active.Products[0]
	if len(prod.History) != HistoryCap || prod.KPI.TokenPrice != MinTokenPrice || prod.Scale != 1 {
		t.Fatalf("product not repaired: %+v", prod)
	}
	if s.World.EventPityWeeks != 0 {
		t.Fatalf("pity=%d", s.World.EventPityWeeks)
	}
}

func TestCrisisIsRecoverable(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	s.Resources.SecurityRisk = 100
	CheckGameState(s)
	if s.Flags.GameOver != "" {
		t.Fatalf("crisis ended the game")
	}
	if s.Resources.SecurityRisk != CrisisReset || s.Flags.Crises != 1 {
		t.Fatalf("crisis not applied: %+v %+v", s.Resources, s.Flags)
	}
	if s.Resources.Cash != 225_000 || s.Resources.Reputation != 0 || s.Resources.Fans != 80 {
		t.Fatalf("crisis penalty wrong: %+v", s.Resources)
	}
}

func TestBankruptcyStopsTheGame(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	s.Resources.Cash = -150_000
	CheckGameState(s)
	if s.Flags.GameOver != "bankrupt" {
		t.Fatalf("gameOver=%q", s.Flags.GameOver)
	}
	s.Time.Paused = false
	if got := Advance(s, 48, ClockHooks{}); got != 0 {
		t.Fatalf("clock advanced after game over")
	}
	if _, err := CreateProject(s, dexConfig()); !errors.Is(err, ErrGameOver) {
		t.Fatalf("got %v, want ErrGameOver", err)
	}
	if _, err := Hire(s, s.Team.Candidates[0].ID); !errors.Is(err, ErrGameOver) {
		t.Fatalf("got %v, want ErrGameOver", err)
	}
}

func TestMoneyFormat(t *testing.T) {
	tests := map[float64]string{0: "$0", 1234: "$1,234", -25000: "-$25,000", 1234567.4: "$1,234,567"}
	for in, want := range tests {
		if got := money(in); got != want {
			t.Fatalf("money(%v)=%q want %q", in, got, want)
		}
	}
}
