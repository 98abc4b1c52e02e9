package game

import (
	"errors"
	"testing"
)

func TestCreateProjectValidation(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	bad := []ProjectConfig{
		func() ProjectConfig { c := dexConfig(); c.Title = "  "; return c }(),
		func() ProjectConfig { c := dexConfig(); c.Archetype = "casino"; return c }(),
		func() ProjectConfig { c := dexConfig(); c.Scale = 4; return c }(),
		func() ProjectConfig { c := dexConfig(); c.Budget = 4_999; return c }(),
	}
	for _, cfg := range bad {
		if _, err := CreateProject(s, cfg); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("config %+v: got %v, want ErrInvalidInput", cfg, err)
		}
	}
	cfg := dexConfig()
	cfg.Budget = s.Resources.Cash + 1
	if _, err := CreateProject(s, cfg); !errors.Is(err, ErrInsufficientCash) {
		t.Fatalf("got %v, want ErrInsufficientCash", err)
	}
	if len(s.Active.Projects) != 0 {
		t.Fatalf("rejected configs created %d projects", len(s.Active.Projects))
	}
}

func TestPausedStageDoesNotProgress(t *testing.T) {
	e := NewEngine(nil, fixedRand{f: 0.5}, DefaultBalance(), quietLogger())
	member := e.Team().Members[0].ID
	p, err := e.CreateProject(dexConfig())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := e.StartProject(p.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if req, ok := e.PeekStageRequest(); !ok || req != (StageRequest{ProjectID: p.ID, Stage: 0}) {
		t.Fatalf("stage request missing: %+v %v", req, ok)
	}

	e.Advance(48)
	view, _ := e.Project(p.ID)
	if view.Stage.Progress != 0 || !view.Stage.Paused {
		t.Fatalf("paused stage moved: %+v", view.Stage)
	}

	if err := e.ConfigureStage(p.ID, idealPrefs("dex", 0)); !errors.Is(err, ErrNoTeam) {
		t.Fatalf("got %v, want ErrNoTeam", err)
	}
	if err := e.SetProjectTeam(p.ID, 0, "lead", member); err != nil {
		t.Fatalf("team: %v", err)
	}
	if err := e.ConfigureStage(p.ID, idealPrefs("dex", 0)); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if _, ok := e.PeekStageRequest(); ok {
		t.Fatalf("stage request should be consumed by configure")
	}

	e.Advance(24)
	view, _ = e.Project(p.ID)
	if view.Stage.Progress <= 0 || view.Stage.Paused {
		t.Fatalf("configured stage did not progress: %+v", view.Stage)
	}
}

func TestProjectPipelineLaunchesProduct(t *testing.T) {
	e := NewEngine(nil, fixedRand{f: 0.5}, DefaultBalance(), quietLogger())
	member := e.Team().Members[0].ID
	p, err := e.CreateProject(dexConfig())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := e.StartProject(p.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	roles := []string{"lead", "engineer", "auditor"}
	for stage := 0; stage < StageCount; stage++ {
		if err := e.SetProjectTeam(p.ID, stage, roles[stage], member); err != nil {
			t.Fatalf("stage %d team: %v", stage, err)
		}
		if err := e.ConfigureStage(p.ID, idealPrefs("dex", stage)); err != nil {
			t.Fatalf("stage %d configure: %v", stage, err)
		}
		e.Advance(24 * 15)
		if stage == StageCount-1 {
			break
		}
		view, err := e.Project(p.ID)
		if err != nil {
			t.Fatalf("stage %d: %v", stage, err)
		}
		if view.Stage.Index != stage+1 || !view.Stage.Paused {
			t.Fatalf("stage %d did not hand over: %+v", stage, view.Stage)
		}
	}

	if _, err := e.Project(p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("finished project still active: %v", err)
	}
	products := e.Products()
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	if products[0].Scores.Match != 100 {
		t.Fatalf("match=%v want 100", products[0].Scores.Match)
	}
	ratings := e.DrainRatings()
	if len(ratings) == 0 || ratings[0].Institution != "ChainBeat" {
		t.Fatalf("unexpected ratings %+v", ratings)
	}
	for _, r := range ratings {
		if r.Score < 1 || r.Score > 10 {
			t.Fatalf("rating out of range: %+v", r)
		}
	}
	if len(e.DrainRatings()) != 0 {
		t.Fatalf("ratings should drain once")
	}
	if snap := e.Snapshot(); len(snap.History.ProjectsDone) != 1 {
		t.Fatalf("project record missing")
	}
}

func TestAbandonProjectTwice(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	p, err := CreateProject(s, dexConfig())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := StartProject(s, p.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := AbandonProject(s, p.ID); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if len(s.StageQueue) != 0 {
		t.Fatalf("queue entries survived abandon: %+v", s.StageQueue)
	}
	if err := AbandonProject(s, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second abandon: got %v, want ErrNotFound", err)
	}
}

func TestFireClearsAssignments(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	member := s.Team.Members[0].ID
	p, _ := CreateProject(s, dexConfig())
	if err := SetProjectTeam(s, p.ID, 0, "lead", member); err != nil {
		t.Fatalf("team: %v", err)
	}
	if err := Fire(s, member); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if _, ok := p.StageTeam["product"]["lead"]; ok {
		t.Fatalf("fired member still assigned")
	}
	if err := Fire(s, member); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
