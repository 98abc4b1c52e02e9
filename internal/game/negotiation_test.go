package game

import (
	"errors"
	"testing"
)

func TestNegotiationEndsWithinRoundLimit(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	sim := testSim(0.5)
	lead := s.Market.Leads[0]
	cash := s.Resources.Cash

	n, err := StartNegotiation(s, lead.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	base := n.Base.Fee
	var res NegotiationResult
	for i := 0; i < negotiationRounds; i++ {
		res, err = NegotiationMove(sim, s, MoveAnchor)
		if err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
		if res.Done {
			break
		}
		x := res.Session.Terms
		if x.Fee < base*minFeeFactor-1 || x.Fee > base*maxFeeFactor+1 {
			t.Fatalf("fee %v outside bounds of base %v", x.Fee, base)
		}
		if x.DepositPct < 0.1 || x.DepositPct > 0.5 || x.Scope < 10 || x.Scope > 140 {
			t.Fatalf("terms out of range: %+v", x)
		}
	}
	if !res.Done || res.Outcome != OutcomeSign {
		t.Fatalf("negotiation still open after %d rounds: %+v", negotiationRounds, res)
	}
	if s.Negotiation != nil {
		t.Fatalf("session not cleared")
	}
	if l, _ := s.Lead(lead.ID); l != nil {
		t.Fatalf("signed lead still on the market")
	}
	p, _ := s.Project(res.ProjectID)
	if p == nil || p.Contract == nil || p.Started {
		t.Fatalf("contract project not created correctly: %+v", p)
	}
	if s.Resources.Cash <= cash {
		t.Fatalf("deposit not paid: cash %v -> %v", cash, s.Resources.Cash)
	}
}

func TestNegotiationCancelKeepsLead(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	sim := testSim(0.5)
	if _, err := NegotiationMove(sim, s, MoveAnchor); !errors.Is(err, ErrNoNegotiation) {
		t.Fatalf("got %v, want ErrNoNegotiation", err)
	}
	lead := s.Market.Leads[0]
	if _, err := StartNegotiation(s, lead.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := NegotiationMove(sim, s, "bribe"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
	res, err := NegotiationMove(sim, s, MoveCancel)
	if err != nil || res.Outcome != OutcomeCancel {
		t.Fatalf("cancel: %+v %v", res, err)
	}
	if l, _ := s.Lead(lead.ID); l == nil {
		t.Fatalf("cancel removed the lead")
	}
}

func TestNegotiatedLeadSurvivesMarketRefresh(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	lead := s.Market.Leads[0]
	if _, err := StartNegotiation(s, lead.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	refreshMarket(fixedRand{f: 0.5}, s)
	if l, _ := s.Lead(lead.ID); l == nil {
		t.Fatalf("lead under negotiation dropped by refresh")
	}
}

func assertNegotiationFailed(t *testing.T, s *State, res NegotiationResult, leadID string, rep float64) {
	t.Helper()
	if !res.Done || res.Outcome != OutcomeFail {
		t.Fatalf("want failed negotiation, got %+v", res)
	}
	if s.Negotiation != nil {
		t.Fatalf("session not cleared")
	}
	if l, _ := s.Lead(leadID); l != nil {
		t.Fatalf("failed lead still on the market")
	}
	if s.Resources.Reputation != rep-1 {
		t.Fatalf("reputation %v, want %v", s.Resources.Reputation, rep-1)
	}
}

func TestNegotiationFailsWhenPatienceRunsOut(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	lead := s.Market.Leads[0]
	rep := s.Resources.Reputation
	n, err := StartNegotiation(s, lead.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	n.Stats.Patience = 5

	res, err := NegotiationMove(testSim(0.5), s, MoveAnchor)
	if err != nil {
		t.Fatalf("anchor: %v", err)
	}
	assertNegotiationFailed(t, s, res, lead.ID, rep)
}

func TestNegotiationWalkWithLowTrustCanEndTalks(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	lead := s.Market.Leads[0]
	rep := s.Resources.Reputation
	n, err := StartNegotiation(s, lead.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	n.Stats.Trust = 20
	n.Stats.Patience = 90

	res, err := NegotiationMove(testSim(0.5), s, MoveWalk)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	assertNegotiationFailed(t, s, res, lead.ID, rep)
}

func TestNegotiationOutOfRoundsWithoutTrustFails(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	lead := s.Market.Leads[0]
	rep := s.Resources.Reputation
	n, err := StartNegotiation(s, lead.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	n.Round = n.MaxRounds
	n.Stats.Trust = 10
	n.Stats.Patience = 90
	n.Stats.Pressure = 20

	// freeze lifts trust to 14, the counter-offer keeps it there, and the
	// final round resolves against a client who still does not trust us.
	res, err := NegotiationMove(testSim(0.5), s, MoveFreeze)
	if err != nil {
		t.Fatalf("freeze: %v", err)
	}
	assertNegotiationFailed(t, s, res, lead.ID, rep)
}
