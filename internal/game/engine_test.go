package game

import "testing"

func TestEngineReportsEachDay(t *testing.T) {
	e := NewEngine(nil, fixedRand{f: 0.5}, DefaultBalance(), quietLogger())
	var reports []DayReport
	e.OnDay(func(r DayReport) { reports = append(reports, r) })

	if got := e.Advance(24 * 7); got != 7 {
		t.Fatalf("settled %d days", got)
	}
	if len(reports) != 7 {
		t.Fatalf("got %d reports, want 7", len(reports))
	}
	if last := reports[6].Now; last.Week != 2 || last.Day != 1 {
		t.Fatalf("last report at %+v", last)
	}
}

func TestEngineTickUsesSpeed(t *testing.T) {
	e := NewEngine(nil, fixedRand{f: 0.5}, DefaultBalance(), quietLogger())
	if got := e.SetSpeed(2); got != 2 {
		t.Fatalf("speed=%v", got)
	}
	if got := e.Tick(6, 2); got != 1 {
		t.Fatalf("tick settled %d days, want 1", got)
	}
	e.Pause()
	if got := e.Tick(60, 2); got != 0 {
		t.Fatalf("paused engine settled %d days", got)
	}
	if err := e.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	e := NewEngine(nil, fixedRand{f: 0.5}, DefaultBalance(), quietLogger())
	snap := e.Snapshot()
	snap.Resources.Cash = 0
	snap.Team.Members[0].Name = "changed"
	fresh := e.Snapshot()
	if fresh.Resources.Cash == 0 || fresh.Team.Members[0].Name == "changed" {
		t.Fatalf("snapshot shares memory with the engine")
	}
}

func TestEstimateDailyCashDelta(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	s.Active.Products = append(s.Active.Products, &Product{ID: "a", KPI: KPI{Profit: 700}})
	est := EstimateDailyCashDelta(s, DefaultBalance())
	want := 700 - weeklyPayroll(s)/DaysPerWeek
	if est.Net != want || est.Products != 700 {
		t.Fatalf("estimate=%+v want net %v", est, want)
	}
}
