package game

var (
	Archetypes = []string{"dex", "lending", "nft", "gamefi", "wallet", "bridge"}
	Narratives = []string{"defi", "ai", "rwa", "meme", "restaking", "social"}
	Chains     = []string{"ethereum", "solana", "l2", "bnb", "cosmos"}
	Audiences  = []string{"degens", "retail", "institutions", "builders"}
)

var StageKeys = [StageCount]string{"product", "implementation", "launch"}

// StageDims lists the slider dimensions configured for each stage.
var StageDims = [StageCount][]string{
	{"tokenomics", "ux", "architecture"},
	{"features", "testing", "performance"},
	{"audit", "marketing", "community"},
}

type Role struct {
	Key   string
	Skill string
}

var StageRoles = [StageCount][]Role{
	{{Key: "lead", Skill: "product"}, {Key: "architect", Skill: "protocol"}},
	{{Key: "engineer", Skill: "contract"}, {Key: "devops", Skill: "infra"}},
	{{Key: "auditor", Skill: "security"}, {Key: "growth", Skill: "growth"}},
}

var SkillKeys = []string{"product", "design", "protocol", "contract", "infra", "security", "growth", "compliance"}

var ReviewInstitutions = []string{"ChainBeat", "DeFi Weekly", "Token Review"}

// archetypeEconomics holds per-archetype unit economics for the KPI tick.
type archetypeEconomics struct {
	ARPU       float64
	TVLPerUser float64
	BaseDAU    float64
}

var economics = map[string]archetypeEconomics{
	"dex":     {ARPU: 0.45, TVLPerUser: 900, BaseDAU: 1800},
	"lending": {ARPU: 0.35, TVLPerUser: 2400, BaseDAU: 1100},
	"nft":     {ARPU: 0.60, TVLPerUser: 120, BaseDAU: 1500},
	"gamefi":  {ARPU: 0.25, TVLPerUser: 60, BaseDAU: 3200},
	"wallet":  {ARPU: 0.12, TVLPerUser: 40, BaseDAU: 4200},
	"bridge":  {ARPU: 0.30, TVLPerUser: 1600, BaseDAU: 900},
}

type comboSet struct {
	Narratives []string
	Chains     []string
	Audiences  []string
}

type recipe struct {
	Perfect comboSet
	Bad     comboSet
	Ideal   [StageCount][]float64
}

var recipes = map[string]recipe{
	"dex": {
		Perfect: comboSet{Narratives: []string{"defi", "meme"}, Chains: []string{"ethereum", "solana"}, Audiences: []string{"degens"}},
		Bad:     comboSet{Narratives: []string{"rwa"}, Chains: []string{"cosmos"}, Audiences: []string{"institutions"}},
		Ideal:   [StageCount][]float64{{70, 55, 60}, {65, 50, 80}, {60, 70, 55}},
	},
	"lending": {
		Perfect: comboSet{Narratives: []string{"defi", "rwa"}, Chains: []string{"ethereum", "l2"}, Audiences: []string{"institutions"}},
		Bad:     comboSet{Narratives: []string{"meme"}, Chains: []string{"bnb"}, Audiences: []string{"degens"}},
		Ideal:   [StageCount][]float64{{60, 40, 80}, {50, 85, 60}, {85, 35, 40}},
	},
	"nft": {
		Perfect: comboSet{Narratives: []string{"social", "meme"}, Chains: []string{"solana", "ethereum"}, Audiences: []string{"retail"}},
		Bad:     comboSet{Narratives: []string{"restaking"}, Chains: []string{"cosmos"}, Audiences: []string{"institutions"}},
		Ideal:   [StageCount][]float64{{40, 85, 45}, {75, 45, 50}, {40, 85, 80}},
	},
	"gamefi": {
		Perfect: comboSet{Narratives: []string{"ai", "social"}, Chains: []string{"l2", "bnb"}, Audiences: []string{"retail"}},
		Bad:     comboSet{Narratives: []string{"rwa"}, Chains: []string{"ethereum"}, Audiences: []string{"institutions"}},
		Ideal:   [StageCount][]float64{{55, 80, 50}, {85, 40, 70}, {35, 75, 90}},
	},
	"wallet": {
		Perfect: comboSet{Narratives: []string{"ai", "restaking"}, Chains: []string{"l2", "ethereum"}, Audiences: []string{"retail", "builders"}},
		Bad:     comboSet{Narratives: []string{"meme"}, Chains: []string{"bnb"}, Audiences: []string{"degens"}},
		Ideal:   [StageCount][]float64{{30, 90, 65}, {60, 70, 65}, {70, 55, 50}},
	},
	"bridge": {
		Perfect: comboSet{Narratives: []string{"restaking", "defi"}, Chains: []string{"cosmos", "l2"}, Audiences: []string{"builders"}},
		Bad:     comboSet{Narratives: []string{"social"}, Chains: []string{"solana"}, Audiences: []string{"retail"}},
		Ideal:   [StageCount][]float64{{50, 35, 90}, {45, 90, 75}, {95, 30, 45}},
	},
}

var clientNames = []string{
	"a DeFi startup",
	"a VC portfolio team",
	"an exchange incubator",
	"a Web2 studio going onchain",
	"an anonymous whale syndicate",
	"a friend-of-a-friend founder",
}

var firstNames = []string{"Ada", "Bo", "Chen", "Dara", "Eli", "Faye", "Gus", "Hana", "Ivo", "Jun", "Kai", "Lena", "Mo", "Nia", "Oli", "Pia"}
var lastNames = []string{"Kim", "Ortiz", "Novak", "Sato", "Okoye", "Berg", "Rossi", "Patel", "Moreau", "Lind"}

var perks = []string{"", "", "mentor", "closer", "fast_start"}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func validArchetype(v string) bool { return contains(Archetypes, v) }

func stageRole(stage int, role string) (Role, bool) {
	if stage < 0 || stage >= StageCount {
		return Role{}, false
	}
	for _, r := range StageRoles[stage] {
		if r.Key == role {
			return r, true
		}
	}
	return Role{}, false
}

func (s Skills) Get(key string) float64 {
	switch key {
	case "product":
		return s.Product
	case "design":
		return s.Design
	case "protocol":
		return s.Protocol
	case "contract":
		return s.Contract
	case "infra":
		return s.Infra
	case "security":
		return s.Security
	case "growth":
		return s.Growth
	case "compliance":
		return s.Compliance
	default:
		return 0
	}
}
