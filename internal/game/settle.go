package game

import (
	"math"

	"github.com/google/uuid"
)

// TickDay settles one simulated day: project and research work, the
// product economy, payroll, then the crisis and bankruptcy checks.
func TickDay(sim Sim, s *State) {
	TickProjects(sim, s, HoursPerDay)
	TickResearch(s, HoursPerDay)
	TickProducts(sim, s)
	if payroll := weeklyPayroll(s); payroll > 0 {
		s.Resources.Adjust(Delta{ResCash: -payroll / DaysPerWeek})
	}
	CheckGameState(s)
}

// TickWeek runs after the first day of a new week has been settled.
func TickWeek(sim Sim, s *State) []string {
	if s.Flags.GameOver != "" {
		return nil
	}
	PruneInbox(s)
	refreshMarket(sim.Rand, s)
	fired := RollEvents(sim, s)
	logf(s, "info", "Week %d of year %d begins.", s.Now.Week, s.Now.Year)
	return fired
}

// refreshMarket replaces last week's leads and candidates. A lead under
// negotiation survives the refresh.
func refreshMarket(r Rand, s *State) {
	var leads []Lead
	if s.Negotiation != nil {
		if l, _ := s.Lead(s.Negotiation.LeadID); l != nil {
			leads = append(leads, *l)
		}
	}
	for i, n := 0, randInt(r, 2, 4); i < n; i++ {
		leads = append(leads, newLead(r))
	}
	s.Market.Leads = leads

	s.Team.Candidates = s.Team.Candidates[:0]
	for i := 0; i < candidatesPerWeek; i++ {
		s.Team.Candidates = append(s.Team.Candidates, newMember(r))
	}
}

func newLead(r Rand) Lead {
	client, _ := pick(r, clientNames)
	arch, _ := pick(r, Archetypes)
	narr, _ := pick(r, Narratives)
	chain, _ := pick(r, Chains)
	aud, _ := pick(r, Audiences)
	return Lead{
		ID:            uuid.NewString(),
		Client:        client,
		Archetype:     arch,
		Narrative:     narr,
		Chain:         chain,
		Audience:      aud,
		Fee:           float64(randInt(r, 40, 160) * 1000),
		DeadlineWeeks: randInt(r, 2, 6),
		Scope:         randInt(r, 20, 100),
		Cooperation:   randInt(r, 20, 90),
		Attention:     randInt(r, 10, 90),
	}
}

// CheckGameState applies a recoverable crisis when a risk maxes out and
// ends the game when cash falls below the bankruptcy line.
func CheckGameState(s *State) {
	if s.Flags.GameOver != "" {
		return
	}
	for _, key := range []Resource{ResSecurityRisk, ResComplianceRisk} {
		if s.Resources.Get(key) < 100 {
			continue
		}
		s.Resources.Adjust(Delta{
			ResCash:       -CrisisCash,
			ResReputation: -15,
			ResFans:       -math.Round(s.Resources.Fans * 0.2),
			key:           CrisisReset - s.Resources.Get(key),
		})
		s.Flags.Crises++
		logf(s, "bad", "Crisis: %s maxed out. Fines paid, reputation hit.", key)
	}
	if s.Resources.Cash < GameOverCash {
		s.Flags.GameOver = "bankrupt"
		s.Time.Paused = true
		logf(s, "bad", "The studio is bankrupt with %s in the bank.", money(s.Resources.Cash))
	}
}
