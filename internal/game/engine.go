package game

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// DayReport is published to observers after every settled day.
type DayReport struct {
	Now       Calendar  `json:"now"`
	Resources Resources `json:"resources"`
	Events    []string  `json:"events,omitempty"`
	Products  int       `json:"products"`
	Projects  int       `json:"projects"`
	GameOver  string    `json:"gameOver,omitempty"`
}

// Engine serializes access to one studio. Values it returns are copies;
// callers never hold pointers into the live state.
type Engine struct {
	mu        sync.Mutex
	state     *State
	sim       Sim
	log       *slog.Logger
	observers []func(DayReport)
}

func NewEngine(state *State, r Rand, balance Balance, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = NewRand(0)
	}
	if state == nil {
		state = NewState(r)
	} else {
		Normalize(state)
	}
	return &Engine{
		state: state,
		sim:   Sim{Rand: r, Balance: balance},
		log:   logger,
	}
}

func clone[T any](v T) T {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

// OnDay registers fn to receive a report after each settled day. fn runs
// after the engine lock is released.
func (e *Engine) OnDay(fn func(DayReport)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

func (e *Engine) Balance() Balance {
	return e.sim.Balance
}

// Snapshot returns a deep copy of the persisted state.
func (e *Engine) Snapshot() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return clone(e.state)
}

// Replace swaps in a loaded state. Any open negotiation is dropped.
func (e *Engine) Replace(s *State) {
	Normalize(s)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
	e.log.Info("state replaced", "date", s.Now.DateISO, "cash", s.Resources.Cash)
}

func (e *Engine) GameOver() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Flags.GameOver
}

// Advance moves simulated time forward by hours and returns the number of
// settled days.
func (e *Engine) Advance(hours float64) int {
	e.mu.Lock()
	var reports []DayReport
	hooks := ClockHooks{
		Day: func(s *State) {
			TickDay(e.sim, s)
			if s.Flags.GameOver != "" {
				e.log.Warn("game over", "reason", s.Flags.GameOver, "date", s.Now.DateISO, "cash", s.Resources.Cash)
			}
			reports = append(reports, DayReport{
				Now:       s.Now,
				Resources: s.Resources,
				Products:  len(s.Active.Products),
				Projects:  len(s.Active.Projects),
				GameOver:  s.Flags.GameOver,
			})
		},
		Week: func(s *State) {
			fired := TickWeek(e.sim, s)
			if n := len(reports); n > 0 {
				reports[n-1].Events = fired
				reports[n-1].Resources = s.Resources
			}
			e.log.Info("week settled",
				"year", s.Now.Year,
				"week", s.Now.Week,
				"cash", s.Resources.Cash,
				"products", len(s.Active.Products),
				"events", fired,
			)
		},
	}
	days := Advance(e.state, hours, hooks)
	observers := e.observers
	e.mu.Unlock()

	for _, r := range reports {
		for _, fn := range observers {
			fn(r)
		}
	}
	return days
}

// Tick converts elapsed wall-clock seconds into simulated hours using the
// configured rate and the player's speed.
func (e *Engine) Tick(realSeconds, hoursPerSecond float64) int {
	e.mu.Lock()
	speed := clampSpeed(e.state.Time.Speed)
	e.mu.Unlock()
	return e.Advance(realSeconds * hoursPerSecond * speed)
}

func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Time.Paused = true
}

func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.state.playable(); err != nil {
		return err
	}
	e.state.Time.Paused = false
	return nil
}

func (e *Engine) SetSpeed(v float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Time.Speed = clampSpeed(v)
	return e.state.Time.Speed
}

func (e *Engine) CreateProject(cfg ProjectConfig) (Project, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := CreateProject(e.state, cfg)
	if err != nil {
		return Project{}, err
	}
	e.log.Info("project created", "project_id", p.ID, "archetype", p.Archetype, "budget", p.Budget)
	return clone(*p), nil
}

func (e *Engine) StartProject(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return StartProject(e.state, id)
}

func (e *Engine) ConfigureStage(id string, prefs map[string]float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ConfigureStage(e.state, id, prefs)
}

func (e *Engine) SetProjectTeam(id string, stage int, role, memberID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SetProjectTeam(e.state, id, stage, role, memberID)
}

func (e *Engine) AbandonProject(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return AbandonProject(e.state, id)
}

type ProjectView struct {
	Project   Project        `json:"project"`
	Stage     StageInfo      `json:"stage"`
	Combo     ComboBreakdown `json:"combo"`
	Product   float64        `json:"productScore"`
	Tech      float64        `json:"techScore"`
	DailyBurn float64        `json:"dailyBurn"`
}

func (e *Engine) Project(id string) (ProjectView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	p, _ := s.Project(id)
	if p == nil {
		return ProjectView{}, fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	return clone(ProjectView{
		Project:   *p,
		Stage:     ProjectStage(s, e.sim.Balance, p),
		Combo:     KnownComboBreakdown(s, p.Tags(), p.StagePrefs),
		Product:   ProjectProductScore(s, p),
		Tech:      ProjectTechScore(s, p),
		DailyBurn: dailyBurn(e.sim.Balance, p),
	}), nil
}

func (e *Engine) Projects() []Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Project, 0, len(e.state.Active.Projects))
	for _, p := range e.state.Active.Projects {
		out = append(out, *p)
	}
	return clone(out)
}

func (e *Engine) Products() []Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Product, 0, len(e.state.Active.Products))
	for _, p := range e.state.Active.Products {
		out = append(out, *p)
	}
	return clone(out)
}

func (e *Engine) UpdateOps(id string, ops Ops) (Ops, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return UpdateOps(e.state, id, ops)
}

func (e *Engine) AbandonProduct(id, policy, confirm string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := AbandonLiveProduct(e.state, id, policy, confirm)
	if err == nil {
		e.log.Info("product abandoned", "product_id", id, "policy", policy)
	}
	return err
}

type TeamView struct {
	Members    []TeamMember `json:"members"`
	Candidates []TeamMember `json:"candidates"`
	Payroll    float64      `json:"payrollWeekly"`
}

func (e *Engine) Team() TeamView {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := TeamView{Members: []TeamMember{}, Candidates: []TeamMember{}, Payroll: weeklyPayroll(e.state)}
	for _, m := range e.state.Team.Members {
		v.Members = append(v.Members, *m)
	}
	for _, m := range e.state.Team.Candidates {
		v.Candidates = append(v.Candidates, *m)
	}
	return v
}

func (e *Engine) Hire(candidateID string) (TeamMember, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, err := Hire(e.state, candidateID)
	if err != nil {
		return TeamMember{}, err
	}
	return *m, nil
}

func (e *Engine) Fire(memberID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Fire(e.state, memberID)
}

type ResearchStatus struct {
	Nodes      []ResearchView `json:"nodes"`
	Task       *ResearchTask  `json:"task"`
	TechPoints float64        `json:"techPoints"`
	Engines    map[string]int `json:"engines"`
}

func (e *Engine) Research() ResearchStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return clone(ResearchStatus{
		Nodes:      ResearchOverview(e.state),
		Task:       e.state.Research.Task,
		TechPoints: e.state.Resources.TechPoints,
		Engines:    e.state.Research.Engines,
	})
}

func (e *Engine) StartResearch(nodeID, assigneeID, targetID string) (ResearchTask, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := StartResearch(e.state, nodeID, assigneeID, targetID)
	if err != nil {
		return ResearchTask{}, err
	}
	return *t, nil
}

type MarketView struct {
	Leads       []Lead       `json:"leads"`
	Negotiation *Negotiation `json:"negotiation,omitempty"`
	Moves       []string     `json:"moves,omitempty"`
}

func (e *Engine) Market() MarketView {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := MarketView{Leads: append([]Lead{}, e.state.Market.Leads...)}
	if n := e.state.Negotiation; n != nil {
		cp := *n
		v.Negotiation = &cp
		v.Moves = Moves(n)
	}
	return v
}

func (e *Engine) StartNegotiation(leadID string) (Negotiation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, err := StartNegotiation(e.state, leadID)
	if err != nil {
		return Negotiation{}, err
	}
	return *n, nil
}

func (e *Engine) NegotiationMove(move string) (NegotiationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res, err := NegotiationMove(e.sim, e.state, move)
	if err != nil {
		return res, err
	}
	if res.Session != nil {
		cp := *res.Session
		res.Session = &cp
	}
	if res.Done {
		e.log.Info("negotiation finished", "outcome", res.Outcome, "project_id", res.ProjectID)
	}
	return res, nil
}

func (e *Engine) Inbox() []InboxView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return clone(Inbox(e.state))
}

func (e *Engine) ResolveInbox(itemID, choice string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ResolveInbox(e.state, itemID, choice)
}

func (e *Engine) PeekStageRequest() (StageRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return PeekStageRequest(e.state)
}

func (e *Engine) PopStageRequest() (StageRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return PopStageRequest(e.state)
}

func (e *Engine) DrainRatings() []DeliveryRating {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := DrainRatings(e.state)
	if out == nil {
		out = []DeliveryRating{}
	}
	return out
}

// PreviewMatch shows what the studio knows about a combo before committing.
func (e *Engine) PreviewMatch(t Tags, prefs map[string]map[string]float64) ComboBreakdown {
	e.mu.Lock()
	defer e.mu.Unlock()
	return KnownComboBreakdown(e.state, t, prefs)
}

func (e *Engine) CashEstimate() CashEstimate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EstimateDailyCashDelta(e.state, e.sim.Balance)
}
