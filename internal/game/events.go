package game

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

const (
	defaultExpiryWeeks = 2
	maxEventsPerWeek   = 2
	pityWeeks          = 2
	quietWeekKey       = "quiet_week"
)

type EventChoice struct {
	Key   string
	Label string
	Apply func(s *State, payload map[string]float64) string
}

type EventDef struct {
	Key            string
	Kind           string
	Title          string
	ExpiresInWeeks int
	When           func(s *State) bool
	Gen            func(r Rand, s *State) map[string]float64
	Choices        []EventChoice
}

func always(*State) bool { return true }

var eventDefs = []EventDef{
	{
		Key: "exploit_rumor", Kind: "security", Title: "Exploit rumor on crypto Twitter",
		When: func(s *State) bool { return len(s.Active.Products) > 0 },
		Gen: func(r Rand, _ *State) map[string]float64 {
			return map[string]float64{"cost": float64(randInt(r, 5, 12) * 1000)}
		},
		Choices: []EventChoice{
			{Key: "audit", Label: "Commission an emergency audit", Apply: func(s *State, p map[string]float64) string {
				s.Resources.Adjust(Delta{ResCash: -p["cost"], ResSecurityRisk: -15})
				return fmt.Sprintf("Emergency audit cost %s and calmed the rumor.", money(p["cost"]))
			}},
			{Key: "ignore", Label: "Ignore it", Apply: func(s *State, _ map[string]float64) string {
				s.Resources.Adjust(Delta{ResSecurityRisk: 8})
				return "The rumor festers."
			}},
		},
	},
	{
		Key: "whale_interest", Kind: "market", Title: "A whale wants a private call",
		When: func(s *State) bool {
			for _, p := range s.Active.Products {
				if p.KPI.TVL > 50_000 {
					return true
				}
			}
			return false
		},
		Gen: func(r Rand, _ *State) map[string]float64 {
			return map[string]float64{"fans": float64(randInt(r, 300, 900))}
		},
		Choices: []EventChoice{
			{Key: "court", Label: "Fly out and court them", Apply: func(s *State, p map[string]float64) string {
				s.Resources.Adjust(Delta{ResCash: -2_000, ResNetwork: 5, ResFans: p["fans"]})
				return "The whale tweeted about you."
			}},
			{Key: "decline", Label: "Politely decline", Apply: func(*State, map[string]float64) string {
				return "You kept your calendar clear."
			}},
		},
	},
	{
		Key: "regulator_letter", Kind: "compliance", Title: "A regulator sends a letter",
		ExpiresInWeeks: 3,
		When:           func(s *State) bool { return s.Resources.ComplianceRisk >= 35 },
		Gen: func(r Rand, _ *State) map[string]float64 {
			return map[string]float64{"fee": float64(randInt(r, 8, 15) * 1000)}
		},
		Choices: []EventChoice{
			{Key: "lawyer", Label: "Retain counsel", Apply: func(s *State, p map[string]float64) string {
				s.Resources.Adjust(Delta{ResCash: -p["fee"], ResComplianceRisk: -20})
				return fmt.Sprintf("Counsel billed %s and the letter was answered.", money(p["fee"]))
			}},
			{Key: "stall", Label: "Stall", Apply: func(s *State, _ map[string]float64) string {
				s.Resources.Adjust(Delta{ResComplianceRisk: 10, ResReputation: -3})
				return "The regulator noted your silence."
			}},
		},
	},
	{
		Key: "hackathon_invite", Kind: "social", Title: "Hackathon sponsorship slot",
		When: always,
		Gen: func(r Rand, _ *State) map[string]float64 {
			return map[string]float64{"cost": float64(randInt(r, 3, 6) * 1000)}
		},
		Choices: []EventChoice{
			{Key: "sponsor", Label: "Sponsor a track", Apply: func(s *State, p map[string]float64) string {
				s.Resources.Adjust(Delta{ResCash: -p["cost"], ResCommunity: 300, ResNetwork: 4, ResTechPoints: 3})
				return "Builders loved your track."
			}},
			{Key: "skip", Label: "Skip it", Apply: func(*State, map[string]float64) string {
				return "You skipped the hackathon."
			}},
		},
	},
	{
		Key: "meme_wave", Kind: "meme", Title: "Your logo became a meme",
		ExpiresInWeeks: 1,
		When:           always,
		Gen: func(r Rand, _ *State) map[string]float64 {
			return map[string]float64{"fans": float64(randInt(r, 200, 800))}
		},
		Choices: []EventChoice{
			{Key: "ride", Label: "Ride the wave", Apply: func(s *State, p map[string]float64) string {
				s.Resources.Adjust(Delta{ResFans: p["fans"], ResComplianceRisk: 3})
				return fmt.Sprintf("Gained %.0f fans from the meme.", p["fans"])
			}},
			{Key: "ignore", Label: "Stay serious", Apply: func(*State, map[string]float64) string {
				return "The meme faded."
			}},
		},
	},
	{
		Key: "talent_poach", Kind: "social", Title: "A rival is poaching your team",
		When: func(s *State) bool { return len(s.Team.Members) >= 2 },
		Gen: func(r Rand, _ *State) map[string]float64 {
			return map[string]float64{"bonus": float64(randInt(r, 2, 5) * 1000)}
		},
		Choices: []EventChoice{
			{Key: "counter", Label: "Pay retention bonuses", Apply: func(s *State, p map[string]float64) string {
				s.Resources.Adjust(Delta{ResCash: -p["bonus"], ResReputation: 1})
				return "The team stayed."
			}},
			{Key: "shrug", Label: "Shrug", Apply: func(s *State, _ map[string]float64) string {
				s.Resources.Adjust(Delta{ResReputation: -2})
				return "Word got around that you do not fight for people."
			}},
		},
	},
	{
		Key: "grant_offer", Kind: "market", Title: "Ecosystem grant offer",
		When: func(s *State) bool { return s.Resources.Reputation >= 25 },
		Gen: func(r Rand, _ *State) map[string]float64 {
			return map[string]float64{"grant": float64(randInt(r, 10, 30) * 1000)}
		},
		Choices: []EventChoice{
			{Key: "accept", Label: "Accept the grant", Apply: func(s *State, p map[string]float64) string {
				s.Resources.Adjust(Delta{ResCash: p["grant"], ResComplianceRisk: 5})
				return fmt.Sprintf("Received a %s grant.", money(p["grant"]))
			}},
			{Key: "decline", Label: "Stay neutral", Apply: func(s *State, _ map[string]float64) string {
				s.Resources.Adjust(Delta{ResReputation: 1})
				return "Neutrality earned a little respect."
			}},
		},
	},
}

var quietWeek = EventDef{
	Key: quietWeekKey, Kind: "meme", Title: "Quiet week on the timeline",
	When: always,
	Choices: []EventChoice{
		{Key: "read", Label: "Catch up on threads", Apply: func(s *State, _ map[string]float64) string {
			s.Resources.Adjust(Delta{ResCommunity: 10})
			return "You caught up with the community."
		}},
		{Key: "ignore", Label: "Keep building", Apply: func(*State, map[string]float64) string {
			return "Heads down."
		}},
	},
}

func eventDef(key string) (EventDef, bool) {
	if key == quietWeekKey {
		return quietWeek, true
	}
	for _, d := range eventDefs {
		if d.Key == key {
			return d, true
		}
	}
	return EventDef{}, false
}

// RollEvents draws this week's inbox events. After pityWeeks empty weeks
// at least one event is guaranteed.
func RollEvents(sim Sim, s *State) []string {
	r := sim.Rand
	want := 0
	if s.World.EventPityWeeks >= pityWeeks || chance(r, sim.Balance.EventBaseChance) {
		want = 1
	}
	stressed := s.Resources.SecurityRisk > 60 || s.Resources.Cash < 0
	if stressed && chance(r, sim.Balance.EventStressChance) {
		want++
	}
	if want > maxEventsPerWeek {
		want = maxEventsPerWeek
	}

	pool := make([]EventDef, len(eventDefs))
	copy(pool, eventDefs)
	shuffle(r, pool)
	var added []string
	for _, d := range pool {
		if len(added) >= want {
			break
		}
		if d.When(s) && addInboxItem(r, s, d) {
			added = append(added, d.Key)
		}
	}
	if want > 0 && len(added) == 0 && addInboxItem(r, s, quietWeek) {
		added = append(added, quietWeek.Key)
	}

	if len(added) > 0 {
		s.World.EventPityWeeks = 0
	} else {
		s.World.EventPityWeeks = clampInt(s.World.EventPityWeeks+1, 0, 99)
	}
	return added
}

func addInboxItem(r Rand, s *State, d EventDef) bool {
	now := s.Now.Stamp()
	for _, it := range s.Inbox.Items {
		if it.DefKey == d.Key && it.Created == now {
			return false
		}
	}
	expires := d.ExpiresInWeeks
	if expires <= 0 {
		expires = defaultExpiryWeeks
	}
	var payload map[string]float64
	if d.Gen != nil {
		payload = d.Gen(r, s)
	}
	item := InboxItem{
		ID:             uuid.NewString(),
		DefKey:         d.Key,
		Created:        now,
		ExpiresInWeeks: expires,
		Payload:        payload,
	}
	s.Inbox.Items = append([]InboxItem{item}, s.Inbox.Items...)
	if len(s.Inbox.Items) > InboxCap {
		s.Inbox.Items = s.Inbox.Items[:InboxCap]
	}
	return true
}

func (it InboxItem) Expired(now Calendar) bool {
	return now.Stamp().TotalWeeks()-it.Created.TotalWeeks() > it.ExpiresInWeeks
}

type InboxView struct {
	InboxItem
	Title   string            `json:"title"`
	Kind    string            `json:"kind"`
	Choices map[string]string `json:"choices"`
	AgeWeek int               `json:"ageWeeks"`
}

// Inbox lists live items; expired ones are filtered, not deleted.
func Inbox(s *State) []InboxView {
	out := []InboxView{}
	for _, it := range s.Inbox.Items {
		if it.Expired(s.Now) {
			continue
		}
		d, ok := eventDef(it.DefKey)
		if !ok {
			continue
		}
		choices := make(map[string]string, len(d.Choices))
		for _, c := range d.Choices {
			choices[c.Key] = c.Label
		}
		out = append(out, InboxView{
			InboxItem: it,
			Title:     d.Title,
			Kind:      d.Kind,
			Choices:   choices,
			AgeWeek:   s.Now.Stamp().TotalWeeks() - it.Created.TotalWeeks(),
		})
	}
	return out
}

func PruneInbox(s *State) int {
	kept := s.Inbox.Items[:0]
	for _, it := range s.Inbox.Items {
		if !it.Expired(s.Now) {
			kept = append(kept, it)
		}
	}
	dropped := len(s.Inbox.Items) - len(kept)
	s.Inbox.Items = kept
	return dropped
}

func ResolveInbox(s *State, itemID, choiceKey string) (string, error) {
	if err := s.playable(); err != nil {
		return "", err
	}
	idx := -1
	for i, it := range s.Inbox.Items {
		if it.ID == itemID && !it.Expired(s.Now) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", fmt.Errorf("%w: inbox item %s", ErrNotFound, itemID)
	}
	it := s.Inbox.Items[idx]
	d, ok := eventDef(it.DefKey)
	if !ok {
		return "", fmt.Errorf("%w: event %s", ErrNotFound, it.DefKey)
	}
	var choice *EventChoice
	for i := range d.Choices {
		if d.Choices[i].Key == choiceKey {
			choice = &d.Choices[i]
			break
		}
	}
	if choice == nil {
		keys := make([]string, 0, len(d.Choices))
		for _, c := range d.Choices {
			keys = append(keys, c.Key)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("%w: choice must be one of %v", ErrInvalidInput, keys)
	}
	s.Inbox.Items = append(s.Inbox.Items[:idx], s.Inbox.Items[idx+1:]...)
	msg := choice.Apply(s, it.Payload)
	logf(s, "info", "%s: %s", d.Title, msg)
	return msg, nil
}
