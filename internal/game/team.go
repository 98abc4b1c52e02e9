package game

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

const candidatesPerWeek = 3

func newMember(r Rand) *TeamMember {
	base := func() float64 { return float64(randInt(r, 20, 60)) }
	sk := Skills{
		Product: base(), Design: base(), Protocol: base(), Contract: base(),
		Infra: base(), Security: base(), Growth: base(), Compliance: base(),
	}
	for i := 0; i < 2; i++ {
		key, _ := pick(r, SkillKeys)
		sk.set(key, float64(randInt(r, 60, 90)))
	}
	first, _ := pick(r, firstNames)
	last, _ := pick(r, lastNames)
	perk, _ := pick(r, perks)
	return &TeamMember{
		ID:           uuid.NewString(),
		Name:         first + " " + last,
		Skills:       sk,
		SalaryWeekly: math.Round(1500 + sk.Average()*60),
		Perk:         perk,
	}
}

func (s *Skills) set(key string, v float64) {
	v = clamp(v, 0, 100)
	switch key {
	case "product":
		s.Product = v
	case "design":
		s.Design = v
	case "protocol":
		s.Protocol = v
	case "contract":
		s.Contract = v
	case "infra":
		s.Infra = v
	case "security":
		s.Security = v
	case "growth":
		s.Growth = v
	case "compliance":
		s.Compliance = v
	}
}

func (s Skills) Average() float64 {
	var sum float64
	for _, k := range SkillKeys {
		sum += s.Get(k)
	}
	return sum / float64(len(SkillKeys))
}

func weeklyPayroll(s *State) float64 {
	var sum float64
	for _, m := range s.Team.Members {
		sum += m.SalaryWeekly
	}
	return sum
}

// Hire moves a candidate onto the roster for one week of salary up front.
func Hire(s *State, candidateID string) (*TeamMember, error) {
	if err := s.playable(); err != nil {
		return nil, err
	}
	idx := -1
	for i, c := range s.Team.Candidates {
		if c.ID == candidateID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: candidate %s", ErrNotFound, candidateID)
	}
	c := s.Team.Candidates[idx]
	if !s.Resources.CanAfford(c.SalaryWeekly) {
		return nil, fmt.Errorf("%w: signing costs %s", ErrInsufficientCash, money(c.SalaryWeekly))
	}
	s.Resources.Adjust(Delta{ResCash: -c.SalaryWeekly})
	s.Team.Candidates = append(s.Team.Candidates[:idx], s.Team.Candidates[idx+1:]...)
	s.Team.Members = append(s.Team.Members, c)
	logf(s, "good", "Hired %s (%s/week).", c.Name, money(c.SalaryWeekly))
	return c, nil
}

// Fire removes a member and clears every role slot and research
// assignment that referenced them.
func Fire(s *State, memberID string) error {
	if err := s.playable(); err != nil {
		return err
	}
	m, idx := s.Member(memberID)
	if m == nil {
		return fmt.Errorf("%w: member %s", ErrNotFound, memberID)
	}
	s.Team.Members = append(s.Team.Members[:idx], s.Team.Members[idx+1:]...)
	for _, p := range s.Active.Projects {
		for _, roles := range p.StageTeam {
			for role, id := range roles {
				if id == memberID {
					delete(roles, role)
				}
			}
		}
	}
	if t := s.Research.Task; t != nil && t.AssigneeID == memberID {
		t.AssigneeID = ""
	}
	logf(s, "warn", "%s left the studio.", m.Name)
	return nil
}
