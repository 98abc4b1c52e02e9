package game

type Resource string

const (
	ResCash           Resource = "cash"
	ResReputation     Resource = "reputation"
	ResCommunity      Resource = "community"
	ResTechPoints     Resource = "techPoints"
	ResNetwork        Resource = "network"
	ResSecurityRisk   Resource = "securityRisk"
	ResComplianceRisk Resource = "complianceRisk"
	ResFans           Resource = "fans"
)

const (
	CashBound  = 999_999_999
	CountBound = 999_999_999
)

var AllResources = []Resource{
	ResCash, ResReputation, ResCommunity, ResTechPoints,
	ResNetwork, ResSecurityRisk, ResComplianceRisk, ResFans,
}

type Resources struct {
	Cash           float64 `json:"cash"`
	Reputation     float64 `json:"reputation"`
	Community      float64 `json:"community"`
	TechPoints     float64 `json:"techPoints"`
	Network        float64 `json:"network"`
	SecurityRisk   float64 `json:"securityRisk"`
	ComplianceRisk float64 `json:"complianceRisk"`
	Fans           float64 `json:"fans"`
}

type Delta map[Resource]float64

func StartingResources() Resources {
	return Resources{
		Cash:           250_000,
		Reputation:     10,
		Community:      50,
		TechPoints:     20,
		Network:        10,
		SecurityRisk:   5,
		ComplianceRisk: 5,
		Fans:           100,
	}
}

func Bounds(key Resource) (lo, hi float64) {
	switch key {
	case ResCash:
		return -CashBound, CashBound
	case ResReputation, ResNetwork, ResSecurityRisk, ResComplianceRisk:
		return 0, 100
	default:
		return 0, CountBound
	}
}

func (r *Resources) slot(key Resource) *float64 {
	switch key {
	case ResCash:
		return &r.Cash
	case ResReputation:
		return &r.Reputation
	case ResCommunity:
		return &r.Community
	case ResTechPoints:
		return &r.TechPoints
	case ResNetwork:
		return &r.Network
	case ResSecurityRisk:
		return &r.SecurityRisk
	case ResComplianceRisk:
		return &r.ComplianceRisk
	case ResFans:
		return &r.Fans
	default:
		return nil
	}
}

func (r *Resources) Get(key Resource) float64 {
	if p := r.slot(key); p != nil {
		return *p
	}
	return 0
}

// Adjust is the only way simulation code mutates resources.
func (r *Resources) Adjust(delta Delta) {
	for key, d := range delta {
		p := r.slot(key)
		if p == nil {
			continue
		}
		lo, hi := Bounds(key)
		*p = clamp(*p+d, lo, hi)
	}
}

// Clamp repairs out-of-range values, e.g. after loading an old save.
func (r *Resources) Clamp() {
	for _, key := range AllResources {
		p := r.slot(key)
		lo, hi := Bounds(key)
		*p = clamp(*p, lo, hi)
	}
}

func (r Resources) CanAfford(cash float64) bool {
	return r.Cash >= cash
}
