package game

import (
	"fmt"
	"math"
)

const (
	MoveAnchor = "anchor"
	MoveTrade  = "trade"
	MoveFreeze = "freeze"
	MoveWBS    = "wbs"
	MoveWalk   = "walk"
	MoveSign   = "sign"
	MoveCancel = "cancel"

	OutcomeSign   = "sign"
	OutcomeCancel = "cancel"
	OutcomeFail   = "fail"

	negotiationRounds = 4
	minFeeFactor      = 0.65
	maxFeeFactor      = 1.6
)

type Terms struct {
	Fee           float64 `json:"fee"`
	DeadlineWeeks int     `json:"deadlineWeeks"`
	Scope         int     `json:"scope"`
	DepositPct    float64 `json:"depositPct"`
	ScopeClarity  float64 `json:"scopeClarity"`
}

type NegotiationStats struct {
	Patience float64 `json:"patience"`
	Trust    float64 `json:"trust"`
	Pressure float64 `json:"pressure"`
}

type Negotiation struct {
	LeadID    string           `json:"leadId"`
	Client    string           `json:"client"`
	Base      Terms            `json:"base"`
	Terms     Terms            `json:"terms"`
	Stats     NegotiationStats `json:"stats"`
	Round     int              `json:"round"`
	MaxRounds int              `json:"maxRounds"`
	Last      string           `json:"last,omitempty"`
}

type NegotiationResult struct {
	Done      bool         `json:"done"`
	Outcome   string       `json:"outcome,omitempty"`
	Message   string       `json:"message"`
	ProjectID string       `json:"projectId,omitempty"`
	Session   *Negotiation `json:"session,omitempty"`
}

func Moves(n *Negotiation) []string {
	moves := []string{}
	if n.Round <= n.MaxRounds {
		moves = append(moves, MoveAnchor, MoveTrade, MoveFreeze, MoveWBS, MoveWalk)
	}
	return append(moves, MoveSign, MoveCancel)
}

// StartNegotiation opens a session over a market lead's terms.
func StartNegotiation(s *State, leadID string) (*Negotiation, error) {
	if err := s.playable(); err != nil {
		return nil, err
	}
	if s.Negotiation != nil {
		return nil, fmt.Errorf("%w: already negotiating with %s", ErrInvalidInput, s.Negotiation.Client)
	}
	lead, _ := s.Lead(leadID)
	if lead == nil {
		return nil, fmt.Errorf("%w: lead %s", ErrNotFound, leadID)
	}
	rush := lead.DeadlineWeeks <= 2
	rushF := 0.0
	if rush {
		rushF = 1
	}
	trust := clamp(35+math.Round(s.Resources.Reputation/4)+math.Round(s.Resources.Network/6), 20, 95)
	for _, m := range s.Team.Members {
		if m.Perk == "closer" {
			trust = clamp(trust+8, 20, 95)
			break
		}
	}
	base := Terms{
		Fee:           math.Round(lead.Fee),
		DeadlineWeeks: clampInt(lead.DeadlineWeeks, 1, 8),
		Scope:         clampInt(lead.Scope, 10, 120),
	}
	n := &Negotiation{
		LeadID: lead.ID,
		Client: lead.Client,
		Base:   base,
		Terms: Terms{
			Fee:           base.Fee,
			DeadlineWeeks: base.DeadlineWeeks,
			Scope:         base.Scope,
			DepositPct:    0.2,
			ScopeClarity:  40,
		},
		Stats: NegotiationStats{
			Patience: clamp(55+math.Round(float64(lead.Cooperation)/4)-10*rushF, 25, 90),
			Trust:    trust,
			Pressure: clamp(35+25*rushF+math.Round(float64(lead.Attention)/6), 20, 95),
		},
		Round:     1,
		MaxRounds: negotiationRounds,
	}
	s.Negotiation = n
	return n, nil
}

func clampTerms(n *Negotiation) {
	x := &n.Terms
	x.DepositPct = clamp(x.DepositPct, 0.1, 0.5)
	x.DeadlineWeeks = clampInt(x.DeadlineWeeks, 1, 8)
	x.Scope = clampInt(x.Scope, 10, 140)
	x.Fee = clamp(math.Round(x.Fee), math.Round(n.Base.Fee*minFeeFactor), math.Round(n.Base.Fee*maxFeeFactor))
	x.ScopeClarity = clamp(math.Round(x.ScopeClarity), 0, 100)
	n.Stats.Patience = clamp(n.Stats.Patience, 0, 100)
	n.Stats.Trust = clamp(n.Stats.Trust, 0, 100)
	n.Stats.Pressure = clamp(n.Stats.Pressure, 0, 100)
}

func opponentReact(r Rand, n *Negotiation) (string, bool) {
	st := &n.Stats
	x := &n.Terms
	if st.Patience <= 0 {
		return "They stopped answering.", false
	}
	pAccept := clamp(0.25+st.Pressure/160+st.Trust/260, 0.15, 0.75)
	pCounter := clamp(0.35+(100-st.Trust)/220, 0.15, 0.65)
	roll := r.Float64()
	switch {
	case roll < pAccept:
		st.Trust += float64(randInt(r, 1, 4))
		return "They nod along.", true
	case roll < pAccept+pCounter:
		x.Fee = math.Round(x.Fee * (0.95 - float64(randInt(r, 0, 2))/100))
		x.DepositPct -= 0.03
		st.Patience -= float64(randInt(r, 3, 7))
		return "They counter with a lower fee and deposit.", true
	case chance(r, 0.5):
		x.Scope += randInt(r, 4, 10)
		st.Patience -= float64(randInt(r, 4, 9))
		return "They slip a few extra features into scope.", true
	default:
		st.Patience -= float64(randInt(r, 2, 6))
		return "They stall for time.", true
	}
}

// NegotiationMove applies one player move and the counterparty's reply.
// The session ends on sign, cancel, failure or when the rounds run out.
func NegotiationMove(sim Sim, s *State, move string) (NegotiationResult, error) {
	if err := s.playable(); err != nil {
		return NegotiationResult{}, err
	}
	n := s.Negotiation
	if n == nil {
		return NegotiationResult{}, ErrNoNegotiation
	}
	r := sim.Rand
	st := &n.Stats
	x := &n.Terms

	switch move {
	case MoveCancel:
		s.Negotiation = nil
		return NegotiationResult{Done: true, Outcome: OutcomeCancel, Message: "You walk away politely."}, nil
	case MoveSign:
		clampTerms(n)
		return signNegotiation(s, n, "Signed on the current terms.")
	case MoveAnchor:
		x.Fee = math.Round(x.Fee * 1.12)
		st.Patience -= float64(randInt(r, 6, 12))
		st.Trust -= float64(randInt(r, 2, 6))
		st.Pressure += float64(randInt(r, 1, 4))
		n.Last = "You anchor high."
	case MoveTrade:
		x.Fee = math.Round(x.Fee * 0.97)
		x.DepositPct += 0.05
		if x.DeadlineWeeks < 6 {
			if chance(r, clamp(0.7+st.Trust/220+st.Pressure/320, 0.55, 0.95)) {
				x.DeadlineWeeks++
			}
			if x.DeadlineWeeks < 6 && st.Trust >= 70 && st.Patience >= 55 && chance(r, 0.18) {
				x.DeadlineWeeks++
			}
		}
		st.Trust += float64(randInt(r, 2, 6))
		st.Patience -= float64(randInt(r, 2, 5))
		n.Last = "You trade a little fee for time and deposit."
	case MoveFreeze:
		x.ScopeClarity += float64(randInt(r, 18, 30))
		st.Trust += float64(randInt(r, 4, 9))
		st.Patience -= float64(randInt(r, 1, 4))
		n.Last = "You freeze the scope in writing."
	case MoveWBS:
		x.Fee = math.Round(x.Fee * 1.05)
		st.Trust += float64(randInt(r, 3, 7))
		st.Patience -= float64(randInt(r, 1, 3))
		n.Last = "You walk them through a work breakdown."
	case MoveWalk:
		st.Pressure += float64(randInt(r, 8, 14))
		st.Patience -= float64(randInt(r, 10, 18))
		if st.Trust < 25 && chance(r, 0.55) {
			st.Patience = 0
		} else {
			st.Trust -= float64(randInt(r, 0, 4))
		}
		n.Last = "You threaten to walk."
	default:
		return NegotiationResult{}, fmt.Errorf("%w: unknown move %q", ErrInvalidInput, move)
	}
	clampTerms(n)

	reply, ok := opponentReact(r, n)
	clampTerms(n)
	if !ok {
		return failNegotiation(s, n, reply), nil
	}
	n.Last += " " + reply
	n.Round++
	if n.Round > n.MaxRounds {
		if n.Stats.Trust < 15 && chance(r, 0.55) {
			return failNegotiation(s, n, "Out of rounds and out of trust."), nil
		}
		return signNegotiation(s, n, "Out of rounds; they sign what is on the table.")
	}
	return NegotiationResult{Message: n.Last, Session: n}, nil
}

func failNegotiation(s *State, n *Negotiation, reason string) NegotiationResult {
	s.Negotiation = nil
	removeLead(s, n.LeadID)
	s.Resources.Adjust(Delta{ResReputation: -1})
	logf(s, "bad", "Negotiation with %s failed: %s", n.Client, reason)
	return NegotiationResult{Done: true, Outcome: OutcomeFail, Message: reason}
}

func signNegotiation(s *State, n *Negotiation, msg string) (NegotiationResult, error) {
	lead, _ := s.Lead(n.LeadID)
	if lead == nil {
		s.Negotiation = nil
		return NegotiationResult{}, fmt.Errorf("%w: lead %s expired", ErrNotFound, n.LeadID)
	}
	x := n.Terms
	cfg := ProjectConfig{
		Title:     fmt.Sprintf("%s for %s", lead.Archetype, n.Client),
		Archetype: lead.Archetype,
		Narrative: lead.Narrative,
		Chain:     lead.Chain,
		Audience:  lead.Audience,
		Scale:     clampInt(1+x.Scope/50, 1, 3),
		Budget:    math.Max(MinProjectBudget, math.Round(x.Fee*0.5)),
	}
	p := newProject(s, cfg)
	p.Contract = &Contract{
		Client:       n.Client,
		Fee:          x.Fee,
		DepositPct:   x.DepositPct,
		DeadlineWeek: s.Now.Stamp().TotalWeeks() + x.DeadlineWeeks,
		Scope:        x.Scope,
	}
	s.Active.Projects = append(s.Active.Projects, p)
	deposit := math.Round(x.Fee * x.DepositPct)
	s.Resources.Adjust(Delta{ResCash: deposit, ResNetwork: 1})
	removeLead(s, n.LeadID)
	s.Negotiation = nil
	logf(s, "good", "Signed %s: fee %s, %d weeks, deposit %s.", n.Client, money(x.Fee), x.DeadlineWeeks, money(deposit))
	return NegotiationResult{Done: true, Outcome: OutcomeSign, Message: msg, ProjectID: p.ID}, nil
}

func removeLead(s *State, id string) {
	if _, i := s.Lead(id); i >= 0 {
		s.Market.Leads = append(s.Market.Leads[:i], s.Market.Leads[i+1:]...)
	}
}
