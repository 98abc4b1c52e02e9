package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Sim carries the collaborators the simulation consumes besides state.
type Sim struct {
	Rand    Rand
	Balance Balance
}

func NewState(r Rand) *State {
	s := &State{
		Version:   SaveVersion,
		Time:      TimeState{Speed: 1},
		Resources: StartingResources(),
		Research:  ResearchState{Engines: defaultEngines()},
	}
	s.Now = CalendarAt(0)
	for i := 0; i < 2; i++ {
		s.Team.Members = append(s.Team.Members, newMember(r))
	}
	refreshMarket(r, s)
	logf(s, "info", "Studio opened on %s with %s in the bank.", s.Now.DateISO, money(s.Resources.Cash))
	return s
}

func defaultEngines() map[string]int {
	return map[string]int{"core": 1, "security": 1, "growth": 1}
}

func logf(s *State, tone, format string, args ...any) {
	entry := LogEntry{
		ID:   uuid.NewString(),
		At:   WeekLabel(s.Now),
		Tone: tone,
		Text: fmt.Sprintf(format, args...),
	}
	s.Log = append([]LogEntry{entry}, s.Log...)
	if len(s.Log) > LogCap {
		s.Log = s.Log[:LogCap]
	}
}

func money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + "$" + b.String()
}

func (s *State) Project(id string) (*Project, int) {
	for i, p := range s.Active.Projects {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func (s *State) Product(id string) (*Product, int) {
	for i, p := range s.Active.Products {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func (s *State) Member(id string) (*TeamMember, int) {
	if id == "" {
		return nil, -1
	}
	for i, m := range s.Team.Members {
		if m.ID == id {
			return m, i
		}
	}
	return nil, -1
}

func (s *State) Record(id string) (*ProjectRecord, int) {
	for i := range s.History.ProjectsDone {
		r := &s.History.ProjectsDone[i]
		if r.ID == id || r.ProductID == id {
			return r, i
		}
	}
	return nil, -1
}

func (s *State) Lead(id string) (*Lead, int) {
	for i := range s.Market.Leads {
		if s.Market.Leads[i].ID == id {
			return &s.Market.Leads[i], i
		}
	}
	return nil, -1
}

func (s *State) EngineVersion(key string) int {
	if v, ok := s.Research.Engines[key]; ok && v > 0 {
		return v
	}
	return 1
}

func (s *State) HasNode(id string) bool {
	return contains(s.Research.Unlocked, id)
}

func (s *State) playable() error {
	if s.Flags.GameOver != "" {
		return fmt.Errorf("%w: %s", ErrGameOver, s.Flags.GameOver)
	}
	return nil
}

// Normalize repairs a decoded save in place: missing collections are
// defaulted, numbers are clamped and dangling member references are dropped.
func Normalize(s *State) *State {
	s.Version = SaveVersion
	if s.Time.ElapsedHours < 0 || math.IsNaN(s.Time.ElapsedHours) || math.IsInf(s.Time.ElapsedHours, 0) {
		s.Time.ElapsedHours = 0
	}
	s.Time.Speed = clampSpeed(s.Time.Speed)
	s.Now = CalendarAt(s.Time.ElapsedHours)
	s.Resources.Clamp()

	members := s.Team.Members[:0]
	for _, m := range s.Team.Members {
		if m != nil && m.ID != "" {
			m.SalaryWeekly = math.Max(0, m.SalaryWeekly)
			members = append(members, m)
		}
	}
	s.Team.Members = members

	if s.Research.Engines == nil {
		s.Research.Engines = defaultEngines()
	}
	for k, v := range defaultEngines() {
		if s.Research.Engines[k] < v {
			s.Research.Engines[k] = v
		}
	}
	if t := s.Research.Task; t != nil {
		if _, ok := researchNodes[t.NodeID]; !ok || t.HoursTotal <= 0 {
			s.Research.Task = nil
		} else {
			t.HoursDone = clamp(t.HoursDone, 0, t.HoursTotal)
			if _, i := s.Member(t.AssigneeID); i < 0 {
				t.AssigneeID = ""
			}
		}
	}

	projects := s.Active.Projects[:0]
	for _, p := range s.Active.Projects {
		if p == nil || p.ID == "" {
			continue
		}
		normalizeProject(s, p)
		projects = append(projects, p)
	}
	s.Active.Projects = projects

	products := s.Active.Products[:0]
	for _, p := range s.Active.Products {
		if p == nil || p.ID == "" {
			continue
		}
		normalizeProduct(p)
		products = append(products, p)
	}
	s.Active.Products = products

	queue := s.StageQueue[:0]
	for _, q := range s.StageQueue {
		if p, _ := s.Project(q.ProjectID); p != nil && p.StageIndex == q.Stage && p.StagePaused && !queued(queue, q) {
			queue = append(queue, q)
		}
	}
	s.StageQueue = queue
	for _, p := range s.Active.Projects {
		if p.Started && p.StagePaused {
			enqueueStage(s, p)
		}
	}

	if len(s.Inbox.Items) > InboxCap {
		s.Inbox.Items = s.Inbox.Items[:InboxCap]
	}
	for i := range s.Inbox.Items {
		if s.Inbox.Items[i].ExpiresInWeeks <= 0 {
			s.Inbox.Items[i].ExpiresInWeeks = defaultExpiryWeeks
		}
	}
	s.World.EventPityWeeks = clampInt(s.World.EventPityWeeks, 0, 99)
	if len(s.Log) > LogCap {
		s.Log = s.Log[:LogCap]
	}
	return s
}

func normalizeProject(s *State, p *Project) {
	p.Scale = clampInt(p.Scale, 1, 3)
	p.StageIndex = clampInt(p.StageIndex, 0, StageCount-1)
	p.StageProgress = clamp(p.StageProgress, 0, MaxProgress)
	p.Budget = math.Max(0, p.Budget)
	p.CostSpent = math.Max(0, p.CostSpent)
	if p.StagePrefs == nil {
		p.StagePrefs = map[string]map[string]float64{}
	}
	for _, prefs := range p.StagePrefs {
		for k, v := range prefs {
			prefs[k] = clamp(v, 0, 100)
		}
	}
	if p.StageTeam == nil {
		p.StageTeam = map[string]map[string]string{}
	}
	for _, roles := range p.StageTeam {
		for role, id := range roles {
			if _, i := s.Member(id); i < 0 {
				delete(roles, role)
			}
		}
	}
	if _, ok := p.StagePrefs[StageKeys[p.StageIndex]]; !ok && p.Started {
		p.StagePaused = true
	}
}

func normalizeProduct(p *Product) {
	p.Scale = clampInt(p.Scale, 1, 3)
	p.Ops = clampOps(p.Ops)
	p.KPI.DAU = math.Max(0, p.KPI.DAU)
	p.KPI.TVL = math.Max(0, p.KPI.TVL)
	if !(p.KPI.TokenPrice > MinTokenPrice) {
		p.KPI.TokenPrice = MinTokenPrice
	}
	if p.LaunchDAU <= 0 {
		p.LaunchDAU = math.Max(1, p.KPI.DAU)
	}
	if len(p.History) > HistoryCap {
		p.History = p.History[len(p.History)-HistoryCap:]
	}
}
