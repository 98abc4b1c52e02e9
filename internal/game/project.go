package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

type ProjectConfig struct {
	Title     string  `json:"title"`
	Archetype string  `json:"archetype"`
	Narrative string  `json:"narrative"`
	Chain     string  `json:"chain"`
	Audience  string  `json:"audience"`
	Scale     int     `json:"scale"`
	Budget    float64 `json:"budget"`
}

func (c ProjectConfig) Validate() error {
	if err := ValidateTitle(c.Title); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	switch {
	case !contains(Archetypes, c.Archetype):
		return fmt.Errorf("%w: unknown archetype %q", ErrInvalidInput, c.Archetype)
	case !contains(Narratives, c.Narrative):
		return fmt.Errorf("%w: unknown narrative %q", ErrInvalidInput, c.Narrative)
	case !contains(Chains, c.Chain):
		return fmt.Errorf("%w: unknown chain %q", ErrInvalidInput, c.Chain)
	case !contains(Audiences, c.Audience):
		return fmt.Errorf("%w: unknown audience %q", ErrInvalidInput, c.Audience)
	case c.Scale < 1 || c.Scale > 3:
		return fmt.Errorf("%w: scale must be 1-3", ErrInvalidInput)
	case math.IsNaN(c.Budget) || c.Budget < MinProjectBudget:
		return fmt.Errorf("%w: budget must be at least %s", ErrInvalidInput, money(MinProjectBudget))
	}
	return nil
}

func (c ProjectConfig) Tags() Tags {
	return Tags{Archetype: c.Archetype, Narrative: c.Narrative, Chain: c.Chain, Audience: c.Audience}
}

// CreateProject registers a project without starting it.
func CreateProject(s *State, cfg ProjectConfig) (*Project, error) {
	if err := s.playable(); err != nil {
		return nil, err
	}
	cfg.Title = strings.TrimSpace(cfg.Title)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !s.Resources.CanAfford(cfg.Budget) {
		return nil, fmt.Errorf("%w: budget %s exceeds cash", ErrInsufficientCash, money(cfg.Budget))
	}
	p := newProject(s, cfg)
	s.Active.Projects = append(s.Active.Projects, p)
	logf(s, "info", "Drafted %q (%s, scale %d).", p.Title, p.Archetype, p.Scale)
	return p, nil
}

func newProject(s *State, cfg ProjectConfig) *Project {
	return &Project{
		ID:          uuid.NewString(),
		Title:       cfg.Title,
		Archetype:   cfg.Archetype,
		Narrative:   cfg.Narrative,
		Chain:       cfg.Chain,
		Audience:    cfg.Audience,
		Scale:       cfg.Scale,
		StagePaused: true,
		StagePrefs:  map[string]map[string]float64{},
		StageTeam:   map[string]map[string]string{},
		Budget:      cfg.Budget,
		CreatedAt:   s.Now.DayNum,
	}
}

// StartProject pays the kickoff share of the budget and opens stage 0,
// which stays paused until it is configured.
func StartProject(s *State, id string) error {
	if err := s.playable(); err != nil {
		return err
	}
	p, _ := s.Project(id)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	if p.Started {
		return fmt.Errorf("%w: project %q already started", ErrAlreadyDone, p.Title)
	}
	kickoff := math.Round(p.Budget * KickoffShare)
	if !s.Resources.CanAfford(kickoff) {
		return fmt.Errorf("%w: kickoff costs %s", ErrInsufficientCash, money(kickoff))
	}
	s.Resources.Adjust(Delta{ResCash: -kickoff})
	p.CostSpent += kickoff
	p.Started = true
	enterStage(s, p, 0)
	logf(s, "info", "Kicked off %q.", p.Title)
	return nil
}

func enterStage(s *State, p *Project, stage int) {
	p.StageIndex = stage
	p.StageProgress = 0
	p.StagePaused = true
	enqueueStage(s, p)
}

func queued(q []StageRequest, r StageRequest) bool {
	for _, x := range q {
		if x == r {
			return true
		}
	}
	return false
}

func enqueueStage(s *State, p *Project) {
	req := StageRequest{ProjectID: p.ID, Stage: p.StageIndex}
	if !queued(s.StageQueue, req) {
		s.StageQueue = append(s.StageQueue, req)
	}
}

func dequeueProject(s *State, projectID string, stage int) {
	out := s.StageQueue[:0]
	for _, q := range s.StageQueue {
		if q.ProjectID == projectID && (stage < 0 || q.Stage == stage) {
			continue
		}
		out = append(out, q)
	}
	s.StageQueue = out
}

func PeekStageRequest(s *State) (StageRequest, bool) {
	if len(s.StageQueue) == 0 {
		return StageRequest{}, false
	}
	return s.StageQueue[0], true
}

func PopStageRequest(s *State) (StageRequest, bool) {
	req, ok := PeekStageRequest(s)
	if ok {
		s.StageQueue = s.StageQueue[1:]
	}
	return req, ok
}

func DrainRatings(s *State) []DeliveryRating {
	out := s.RatingQueue
	s.RatingQueue = nil
	return out
}

// SetProjectTeam assigns memberID to a role slot, or clears it when
// memberID is empty.
func SetProjectTeam(s *State, projectID string, stage int, role, memberID string) error {
	if err := s.playable(); err != nil {
		return err
	}
	p, _ := s.Project(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	if _, ok := stageRole(stage, role); !ok {
		return fmt.Errorf("%w: stage %d has no role %q", ErrInvalidInput, stage, role)
	}
	if memberID != "" {
		if m, _ := s.Member(memberID); m == nil {
			return fmt.Errorf("%w: member %s", ErrNotFound, memberID)
		}
	}
	key := StageKeys[stage]
	if p.StageTeam == nil {
		p.StageTeam = map[string]map[string]string{}
	}
	if memberID == "" {
		delete(p.StageTeam[key], role)
		return nil
	}
	if p.StageTeam[key] == nil {
		p.StageTeam[key] = map[string]string{}
	}
	p.StageTeam[key][role] = memberID
	return nil
}

// ConfigureStage stores slider prefs for the current stage and lets
// progress accrue. At least one role of the stage must be staffed.
func ConfigureStage(s *State, projectID string, prefs map[string]float64) error {
	if err := s.playable(); err != nil {
		return err
	}
	p, _ := s.Project(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	if !p.Started {
		return fmt.Errorf("%w: project %q not started", ErrInvalidInput, p.Title)
	}
	stage := p.StageIndex
	clean := make(map[string]float64, len(StageDims[stage]))
	for _, dim := range StageDims[stage] {
		v, ok := prefs[dim]
		if !ok {
			v = 50
		}
		clean[dim] = round(clamp(v, 0, 100))
	}
	for k := range prefs {
		if !contains(StageDims[stage], k) {
			return fmt.Errorf("%w: stage %s has no slider %q", ErrInvalidInput, StageKeys[stage], k)
		}
	}
	if len(assigned(s, p, stage)) == 0 {
		return fmt.Errorf("%w: %s", ErrNoTeam, StageKeys[stage])
	}
	if p.StagePrefs == nil {
		p.StagePrefs = map[string]map[string]float64{}
	}
	p.StagePrefs[StageKeys[stage]] = clean
	if p.StagePaused {
		p.StagePaused = false
		applyFastStart(s, p, stage)
	}
	dequeueProject(s, p.ID, stage)
	return nil
}

func applyFastStart(s *State, p *Project, stage int) {
	if p.StageProgress > 0 {
		return
	}
	for _, m := range assigned(s, p, stage) {
		if m.Perk == "fast_start" && !m.PerkUsed {
			m.PerkUsed = true
			p.StageProgress = 10
			logf(s, "good", "%s hit the ground running on %q.", m.Name, p.Title)
			return
		}
	}
}

// assigned resolves a stage's role slots against the roster. Slots whose
// member no longer exists are treated as unassigned.
func assigned(s *State, p *Project, stage int) map[string]*TeamMember {
	out := map[string]*TeamMember{}
	roles := p.StageTeam[StageKeys[stage]]
	for _, r := range StageRoles[stage] {
		if m, _ := s.Member(roles[r.Key]); m != nil {
			out[r.Key] = m
		}
	}
	return out
}

// roleSkill averages each role's primary skill; empty roles count as zero.
func roleSkill(s *State, p *Project, stage int) float64 {
	members := assigned(s, p, stage)
	var sum float64
	for _, r := range StageRoles[stage] {
		if m, ok := members[r.Key]; ok {
			sum += m.Skills.Get(r.Skill)
		}
	}
	return sum / float64(len(StageRoles[stage]))
}

// StageRate is the progress percentage gained per hour in the current stage.
func StageRate(s *State, b Balance, p *Project) float64 {
	stage := p.StageIndex
	base := MaxProgress / (b.StageBaseHours * float64(clampInt(p.Scale, 1, 3)))
	skill := clamp(roleSkill(s, p, stage)/50, 0.35, 1.8)
	fit := StageFitMultiplier(StageFit(p.Archetype, stage, p.StagePrefs[StageKeys[stage]]))
	core := 1 + 0.06*float64(s.EngineVersion("core")-1)
	perk := 1.0
	for _, m := range assigned(s, p, stage) {
		if m.Perk == "mentor" {
			perk = 1.05
			break
		}
	}
	return base * skill * fit * core * perk
}

func dailyBurn(b Balance, p *Project) float64 {
	days := StageCount * b.StageBaseHours * float64(clampInt(p.Scale, 1, 3)) / HoursPerDay
	return p.Budget * (1 - KickoffShare) / days
}

// TickProjects advances every started, configured project by hours.
func TickProjects(sim Sim, s *State, hours float64) {
	if hours <= 0 {
		return
	}
	var done []*Project
	for _, p := range s.Active.Projects {
		if !p.Started || p.StagePaused {
			continue
		}
		burn := dailyBurn(sim.Balance, p) * hours / HoursPerDay
		s.Resources.Adjust(Delta{ResCash: -burn})
		p.CostSpent += burn

		p.StageProgress = math.Min(MaxProgress, p.StageProgress+StageRate(s, sim.Balance, p)*hours)
		if p.StageProgress < MaxProgress {
			continue
		}
		if p.StageIndex < StageCount-1 {
			enterStage(s, p, p.StageIndex+1)
			logf(s, "info", "%q moved to %s.", p.Title, StageKeys[p.StageIndex])
			continue
		}
		done = append(done, p)
	}
	for _, p := range done {
		completeProject(sim, s, p)
	}
}

func completeProject(sim Sim, s *State, p *Project) {
	scores := Scores{
		Match:    Match(p.Tags(), p.StagePrefs),
		Product:  ProjectProductScore(s, p),
		Tech:     ProjectTechScore(s, p),
		Security: stageSkillScore(s, p, 2, "security", s.EngineVersion("security")),
		Growth:   stageSkillScore(s, p, 2, "growth", s.EngineVersion("growth")),
	}
	scores.Quality = round(0.5*scores.Match + 0.25*scores.Product + 0.25*scores.Tech)

	prod := launchProduct(s, p, scores)

	reviewers := clampInt(1+int(s.Resources.Reputation/40), 1, MaxRatings)
	for i := 0; i < reviewers; i++ {
		score := int(round(scores.Quality/10 + randRange(sim.Rand, -1, 1)))
		s.RatingQueue = append(s.RatingQueue, DeliveryRating{
			ProjectID:   p.ID,
			Title:       p.Title,
			Institution: ReviewInstitutions[i],
			Score:       clampInt(score, 1, 10),
		})
	}

	rec := ProjectRecord{
		ID:           p.ID,
		ProductID:    prod.ID,
		Title:        p.Title,
		Archetype:    p.Archetype,
		Narrative:    p.Narrative,
		Chain:        p.Chain,
		Audience:     p.Audience,
		Scale:        p.Scale,
		Scores:       scores,
		CostSpent:    p.CostSpent,
		StagePrefs:   copyPrefs(p.StagePrefs),
		CompletedDay: s.Now.DayNum,
		DateISO:      s.Now.DateISO,
	}
	if p.Contract != nil {
		rec.Client = p.Contract.Client
		payContract(s, p)
	}
	s.History.ProjectsDone = append(s.History.ProjectsDone, rec)

	s.Resources.Adjust(Delta{
		ResTechPoints: 5*float64(p.Scale) + scores.Quality/10,
		ResReputation: (scores.Quality - 50) / 10,
	})
	removeProject(s, p.ID)
	logf(s, "good", "Shipped %q: match %.0f%%, quality %.0f.", p.Title, scores.Match, scores.Quality)
}

func payContract(s *State, p *Project) {
	c := p.Contract
	late := s.Now.Stamp().TotalWeeks() - c.DeadlineWeek
	factor := 1.0
	if late > 0 {
		factor = math.Max(0.4, 1-0.1*float64(late))
	}
	payout := math.Round(c.Fee * (1 - c.DepositPct) * factor)
	s.Resources.Adjust(Delta{ResCash: payout})
	if late > 0 {
		logf(s, "warn", "%s paid %s for %q, %d week(s) late.", c.Client, money(payout), p.Title, late)
		return
	}
	logf(s, "good", "%s paid %s for %q.", c.Client, money(payout), p.Title)
}

func copyPrefs(in map[string]map[string]float64) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(in))
	for stage, prefs := range in {
		cp := make(map[string]float64, len(prefs))
		for k, v := range prefs {
			cp[k] = v
		}
		out[stage] = cp
	}
	return out
}

func removeProject(s *State, id string) bool {
	_, idx := s.Project(id)
	if idx < 0 {
		return false
	}
	s.Active.Projects = append(s.Active.Projects[:idx], s.Active.Projects[idx+1:]...)
	dequeueProject(s, id, -1)
	if s.SelectedTarget == id {
		s.SelectedTarget = ""
	}
	return true
}

// AbandonProject drops a project without refunding what was spent.
func AbandonProject(s *State, id string) error {
	if err := s.playable(); err != nil {
		return err
	}
	p, _ := s.Project(id)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	removeProject(s, id)
	logf(s, "warn", "Abandoned %q after spending %s.", p.Title, money(p.CostSpent))
	return nil
}

// stageSkillScore scores one skill of a finished stage's team, 0..100.
func stageSkillScore(s *State, p *Project, stage int, skill string, engine int) float64 {
	members := assigned(s, p, stage)
	var best float64
	for _, m := range members {
		best = math.Max(best, m.Skills.Get(skill))
	}
	return clamp(round(best+4*float64(engine-1)), 0, 100)
}
