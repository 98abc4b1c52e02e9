package game

type StageInfo struct {
	Index      int                `json:"index"`
	Key        string             `json:"key"`
	Progress   float64            `json:"progress"`
	Paused     bool               `json:"paused"`
	Configured bool               `json:"configured"`
	Roles      map[string]string  `json:"roles"`
	Prefs      map[string]float64 `json:"prefs,omitempty"`
	RatePerDay float64            `json:"ratePerDay"`
}

func ProjectStage(s *State, b Balance, p *Project) StageInfo {
	key := StageKeys[p.StageIndex]
	prefs, configured := p.StagePrefs[key]
	roles := map[string]string{}
	for role, m := range assigned(s, p, p.StageIndex) {
		roles[role] = m.ID
	}
	info := StageInfo{
		Index:      p.StageIndex,
		Key:        key,
		Progress:   p.StageProgress,
		Paused:     p.StagePaused,
		Configured: configured,
		Roles:      roles,
		Prefs:      prefs,
	}
	if p.Started && !p.StagePaused {
		info.RatePerDay = StageRate(s, b, p) * HoursPerDay
	}
	return info
}

// teamScore averages a stage's roles over the given skills; empty roles
// count as zero.
func teamScore(s *State, p *Project, stage int, skills ...string) float64 {
	members := assigned(s, p, stage)
	var sum float64
	for _, r := range StageRoles[stage] {
		m, ok := members[r.Key]
		if !ok {
			continue
		}
		var v float64
		for _, k := range skills {
			v += m.Skills.Get(k)
		}
		sum += v / float64(len(skills))
	}
	return sum / float64(len(StageRoles[stage]))
}

func stageFitOrNeutral(p *Project, stage int) float64 {
	prefs, ok := p.StagePrefs[StageKeys[stage]]
	if !ok {
		return unconfiguredFit
	}
	return StageFit(p.Archetype, stage, prefs)
}

// ProjectProductScore rates product and design work, 0..100.
func ProjectProductScore(s *State, p *Project) float64 {
	skill := teamScore(s, p, 0, "product", "design")
	return clamp(round(0.6*skill+0.4*stageFitOrNeutral(p, 0)), 0, 100)
}

// ProjectTechScore rates implementation work, 0..100.
func ProjectTechScore(s *State, p *Project) float64 {
	skill := teamScore(s, p, 1, "contract", "protocol", "infra")
	engine := 3 * float64(s.EngineVersion("core")-1)
	return clamp(round(0.6*skill+0.4*stageFitOrNeutral(p, 1)+engine), 0, 100)
}

type CashEstimate struct {
	Products float64 `json:"products"`
	Payroll  float64 `json:"payroll"`
	Projects float64 `json:"projects"`
	Net      float64 `json:"net"`
}

// EstimateDailyCashDelta projects tomorrow's cash change from the latest
// product KPIs, payroll and active project burn.
func EstimateDailyCashDelta(s *State, b Balance) CashEstimate {
	var est CashEstimate
	for _, p := range s.Active.Products {
		est.Products += p.KPI.Profit
	}
	est.Payroll = -weeklyPayroll(s) / DaysPerWeek
	for _, p := range s.Active.Projects {
		if p.Started && !p.StagePaused {
			est.Projects -= dailyBurn(b, p)
		}
	}
	est.Net = est.Products + est.Payroll + est.Projects
	return est
}

type ResearchView struct {
	ResearchNode
	Status    string  `json:"status"`
	CostNow   float64 `json:"costNow"`
	HoursNow  float64 `json:"hoursNow"`
	EngineVer int     `json:"engineVersion,omitempty"`
}

func ResearchOverview(s *State) []ResearchView {
	nodes := ResearchNodes()
	out := make([]ResearchView, 0, len(nodes))
	for _, n := range nodes {
		cost, hours := nodeCost(s, n)
		v := ResearchView{ResearchNode: n, Status: ResearchNodeStatus(s, n.ID), CostNow: cost, HoursNow: hours}
		if n.Kind == NodeEngine {
			v.EngineVer = s.EngineVersion(n.EngineKey)
		}
		out = append(out, v)
	}
	return out
}
