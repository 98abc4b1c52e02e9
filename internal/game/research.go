package game

import (
	"fmt"
	"math"
	"sort"
)

const (
	NodeKnowledge  = "knowledge"
	NodePostmortem = "postmortem"
	NodeEngine     = "engine"

	TaskNode   = "node"
	TaskEngine = "engine"

	StatusDone      = "done"
	StatusActive    = "active"
	StatusLocked    = "locked"
	StatusAvailable = "available"

	postmortemMatchThreshold = 70
	unassignedResearchRate   = 0.5
)

type ResearchNode struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	EngineKey string   `json:"engineKey,omitempty"`
	Cost      float64  `json:"cost"`
	Hours     float64  `json:"hours"`
	Skill     string   `json:"skill"`
	Requires  []string `json:"requires,omitempty"`
}

var researchNodes = map[string]ResearchNode{
	"audit_playbook":  {ID: "audit_playbook", Kind: NodeKnowledge, Cost: 15, Hours: 72, Skill: "security"},
	"growth_loops":    {ID: "growth_loops", Kind: NodeKnowledge, Cost: 15, Hours: 72, Skill: "growth"},
	"treasury_ops":    {ID: "treasury_ops", Kind: NodeKnowledge, Cost: 25, Hours: 96, Skill: "protocol", Requires: []string{"growth_loops"}},
	"compliance_desk": {ID: "compliance_desk", Kind: NodeKnowledge, Cost: 25, Hours: 96, Skill: "compliance", Requires: []string{"audit_playbook"}},
	"postmortem":      {ID: "postmortem", Kind: NodePostmortem, Cost: 10, Hours: 48, Skill: "product"},
	"engine_core":     {ID: "engine_core", Kind: NodeEngine, EngineKey: "core", Cost: 20, Hours: 96, Skill: "protocol"},
	"engine_security": {ID: "engine_security", Kind: NodeEngine, EngineKey: "security", Cost: 20, Hours: 96, Skill: "security", Requires: []string{"audit_playbook"}},
	"engine_growth":   {ID: "engine_growth", Kind: NodeEngine, EngineKey: "growth", Cost: 20, Hours: 96, Skill: "growth", Requires: []string{"growth_loops"}},
}

func ResearchNodes() []ResearchNode {
	out := make([]ResearchNode, 0, len(researchNodes))
	for _, n := range researchNodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// nodeCost scales engine upgrades with the engine's current version.
func nodeCost(s *State, n ResearchNode) (cost, hours float64) {
	if n.Kind == NodeEngine {
		v := float64(s.EngineVersion(n.EngineKey))
		return n.Cost * v, n.Hours * v
	}
	return n.Cost, n.Hours
}

func ResearchNodeStatus(s *State, id string) string {
	n, ok := researchNodes[id]
	if !ok {
		return StatusLocked
	}
	if t := s.Research.Task; t != nil && t.NodeID == id {
		return StatusActive
	}
	if n.Kind == NodeKnowledge && s.HasNode(id) {
		return StatusDone
	}
	for _, req := range n.Requires {
		if !s.HasNode(req) {
			return StatusLocked
		}
	}
	return StatusAvailable
}

type postmortemTarget struct {
	ids       []string
	title     string
	archetype string
	match     float64
}

func findPostmortemTarget(s *State, id string) (postmortemTarget, bool) {
	if p, _ := s.Product(id); p != nil {
		t := postmortemTarget{ids: []string{p.ID}, title: p.Title, archetype: p.Archetype, match: p.Scores.Match}
		if p.ProjectID != "" {
			t.ids = append(t.ids, p.ProjectID)
		}
		return t, true
	}
	if r, _ := s.Record(id); r != nil {
		return postmortemTarget{ids: []string{r.ID, r.ProductID}, title: r.Title, archetype: r.Archetype, match: r.Scores.Match}, true
	}
	return postmortemTarget{}, false
}

func (s *State) postmortemed(ids []string) bool {
	for _, id := range ids {
		if id != "" && contains(s.Knowledge.PostmortemedProductIDs, id) {
			return true
		}
	}
	return false
}

// StartResearch occupies the single studio-wide research slot.
func StartResearch(s *State, nodeID, assigneeID, targetID string) (*ResearchTask, error) {
	if err := s.playable(); err != nil {
		return nil, err
	}
	if s.Research.Task != nil {
		return nil, fmt.Errorf("%w: %s", ErrResearchBusy, s.Research.Task.NodeID)
	}
	n, ok := researchNodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: research node %s", ErrNotFound, nodeID)
	}
	switch ResearchNodeStatus(s, nodeID) {
	case StatusDone:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDone, nodeID)
	case StatusLocked:
		return nil, fmt.Errorf("%w: %s requires %v", ErrLocked, nodeID, n.Requires)
	}
	if assigneeID != "" {
		if m, _ := s.Member(assigneeID); m == nil {
			return nil, fmt.Errorf("%w: member %s", ErrNotFound, assigneeID)
		}
	}
	if n.Kind == NodePostmortem {
		if targetID == "" {
			return nil, fmt.Errorf("%w: postmortem needs a target product or project", ErrInvalidInput)
		}
		t, ok := findPostmortemTarget(s, targetID)
		if !ok {
			return nil, fmt.Errorf("%w: postmortem target %s", ErrNotFound, targetID)
		}
		if s.postmortemed(t.ids) {
			return nil, fmt.Errorf("%w: %q already has a postmortem", ErrAlreadyDone, t.title)
		}
	}
	cost, hours := nodeCost(s, n)
	if s.Resources.TechPoints < cost {
		return nil, fmt.Errorf("%w: %s needs %.0f", ErrInsufficientTechPoints, nodeID, cost)
	}
	s.Resources.Adjust(Delta{ResTechPoints: -cost})
	task := &ResearchTask{
		Kind:       TaskNode,
		NodeID:     nodeID,
		HoursTotal: hours,
		AssigneeID: assigneeID,
	}
	if n.Kind == NodeEngine {
		task.Kind = TaskEngine
		task.EngineKey = n.EngineKey
	}
	if n.Kind == NodePostmortem {
		task.TargetID = targetID
	}
	s.Research.Task = task
	logf(s, "info", "Research started: %s.", nodeID)
	return task, nil
}

func researchRate(s *State, t *ResearchTask) float64 {
	m, _ := s.Member(t.AssigneeID)
	if m == nil {
		return unassignedResearchRate
	}
	return math.Max(unassignedResearchRate, m.Skills.Get(researchNodes[t.NodeID].Skill)/50)
}

// TickResearch advances the active task by hours of work.
func TickResearch(s *State, hours float64) {
	t := s.Research.Task
	if t == nil || hours <= 0 {
		return
	}
	t.HoursDone = math.Min(t.HoursTotal, t.HoursDone+hours*researchRate(s, t))
	if t.HoursDone < t.HoursTotal {
		return
	}
	s.Research.Task = nil
	completeResearch(s, t)
}

func completeResearch(s *State, t *ResearchTask) {
	n := researchNodes[t.NodeID]
	switch n.Kind {
	case NodeKnowledge:
		if !s.HasNode(n.ID) {
			s.Research.Unlocked = append(s.Research.Unlocked, n.ID)
		}
		logf(s, "good", "Research complete: %s.", n.ID)
	case NodeEngine:
		if s.Research.Engines == nil {
			s.Research.Engines = defaultEngines()
		}
		s.Research.Engines[n.EngineKey] = s.EngineVersion(n.EngineKey) + 1
		logf(s, "good", "%s engine upgraded to v%d.", n.EngineKey, s.Research.Engines[n.EngineKey])
	case NodePostmortem:
		target, ok := findPostmortemTarget(s, t.TargetID)
		if !ok {
			logf(s, "warn", "Postmortem target vanished before the review finished.")
			return
		}
		for _, id := range target.ids {
			if id != "" && !contains(s.Knowledge.PostmortemedProductIDs, id) {
				s.Knowledge.PostmortemedProductIDs = append(s.Knowledge.PostmortemedProductIDs, id)
			}
		}
		if target.match >= postmortemMatchThreshold && !s.ArchetypeKnown(target.archetype) {
			s.Knowledge.KnownArchetypes = append(s.Knowledge.KnownArchetypes, target.archetype)
			logf(s, "good", "Postmortem of %q revealed the %s recipe.", target.title, target.archetype)
			return
		}
		logf(s, "info", "Postmortem of %q finished; the match was too weak to learn from.", target.title)
	}
}
