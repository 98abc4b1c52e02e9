package game

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

const (
	MaxFeeRateBps  = 100
	MaxBuybackPct  = 50
	MaxEmissions   = 100
	MaxWeeklySpend = 500_000
)

const (
	PolicySunset = "sunset"
	PolicyRug    = "rug"
)

func DefaultOps() Ops {
	return Ops{
		FeeRateBps: 30,
		BuybackPct: 10,
		Emissions:  20,
		Budgets: Budgets{
			Incentives: 2_000,
			Marketing:  5_000,
			Security:   3_000,
			Infra:      3_000,
			Compliance: 1_500,
			Support:    1_000,
			Referral:   1_000,
		},
	}
}

func clampOps(o Ops) Ops {
	spend := func(v float64) float64 { return round(clamp(v, 0, MaxWeeklySpend)) }
	return Ops{
		FeeRateBps: clamp(o.FeeRateBps, 0, MaxFeeRateBps),
		BuybackPct: clamp(o.BuybackPct, 0, MaxBuybackPct),
		Emissions:  clamp(o.Emissions, 0, MaxEmissions),
		Budgets: Budgets{
			Incentives: spend(o.Budgets.Incentives),
			Marketing:  spend(o.Budgets.Marketing),
			Security:   spend(o.Budgets.Security),
			Infra:      spend(o.Budgets.Infra),
			Compliance: spend(o.Budgets.Compliance),
			Support:    spend(o.Budgets.Support),
			Referral:   spend(o.Budgets.Referral),
		},
	}
}

func economicsFor(archetype string) archetypeEconomics {
	if e, ok := economics[archetype]; ok {
		return e
	}
	return archetypeEconomics{ARPU: 0.3, TVLPerUser: 500, BaseDAU: 1500}
}

func launchProduct(s *State, p *Project, scores Scores) *Product {
	econ := economicsFor(p.Archetype)
	dau := math.Round(econ.BaseDAU * float64(p.Scale) * (0.4 + scores.Quality/100))
	prod := &Product{
		ID:        uuid.NewString(),
		ProjectID: p.ID,
		Title:     p.Title,
		Archetype: p.Archetype,
		Narrative: p.Narrative,
		Chain:     p.Chain,
		Audience:  p.Audience,
		Scale:     p.Scale,
		Ops:       DefaultOps(),
		KPI: KPI{
			TokenPrice: 1,
			DAU:        dau,
			TVL:        math.Round(dau * econ.TVLPerUser),
		},
		Scores:    scores,
		LaunchDAU: dau,
		Launched:  s.Now.DayNum,
	}
	s.Active.Products = append(s.Active.Products, prod)
	return prod
}

// productMods are the studio-wide modifiers a product tick depends on.
type productMods struct {
	growth       float64
	fee          float64
	securityRisk float64
	securityGain float64
	complyGain   float64
}

func modsFor(s *State) productMods {
	m := productMods{growth: 1, fee: 1, securityGain: 1, complyGain: 1, securityRisk: s.Resources.SecurityRisk}
	if s.HasNode("growth_loops") {
		m.growth *= 1.1
	}
	m.growth *= 1 + 0.04*float64(s.EngineVersion("growth")-1)
	if s.HasNode("treasury_ops") {
		m.fee = 1.1
	}
	if s.HasNode("audit_playbook") {
		m.securityGain = 0.7
	}
	m.securityGain /= 1 + 0.1*float64(s.EngineVersion("security")-1)
	if s.HasNode("compliance_desk") {
		m.complyGain = 0.7
	}
	return m
}

// stepProduct computes one day of KPIs for p and returns the ledger
// delta the day produced.
func stepProduct(b Balance, r Rand, p *Product, mods productMods, day int) Delta {
	econ := economicsFor(p.Archetype)
	o := clampOps(p.Ops)
	k := p.KPI
	bud := o.Budgets

	satMkt := saturate(bud.Marketing, b.MarketingHalf)
	satInc := saturate(bud.Incentives, b.IncentivesHalf)
	satRef := saturate(bud.Referral, b.ReferralHalf)
	satSup := saturate(bud.Support, b.SupportHalf)

	baseInfra := k.DAU * b.InfraPerUser
	coverage := 1.0
	if baseInfra > 0 {
		coverage = clamp(bud.Infra/DaysPerWeek/baseInfra, 0, 1)
	}
	target := p.LaunchDAU * b.NeglectFloor *
		(0.5 + 0.5*coverage) *
		(1 + 1.5*satMkt + 1.0*satInc + 0.5*satRef + 0.2*satSup) *
		(1 - o.FeeRateBps/250) *
		mods.growth
	dau := math.Max(0, k.DAU+(target-k.DAU)*b.DAUDiffusion)

	tvlTarget := dau * econ.TVLPerUser * (1 + 0.8*satInc) * (1 - clamp(mods.securityRisk, 0, 100)/200)
	tvl := math.Max(0, k.TVL+(tvlTarget-k.TVL)*b.TVLDiffusion)

	revBase := dau * econ.ARPU
	revFee := tvl * o.FeeRateBps / 10_000 * b.VolumeTurnover * mods.fee
	revenue := revBase + revFee

	costs := Costs{
		Infra:      baseInfra + bud.Infra/DaysPerWeek,
		Security:   bud.Security / DaysPerWeek,
		Compliance: bud.Compliance / DaysPerWeek,
		Support:    bud.Support / DaysPerWeek,
		Marketing:  bud.Marketing / DaysPerWeek,
		Incentives: bud.Incentives / DaysPerWeek,
		Buyback:    revFee * o.BuybackPct / 100,
		Referral:   bud.Referral / DaysPerWeek,
	}
	profit := revenue - costs.Total()
	margin := 0.0
	switch {
	case revenue > 0:
		margin = profit / revenue * 100
	case costs.Total() > 0:
		margin = -100
	}

	dauChange := 0.0
	if k.DAU > 0 {
		dauChange = (dau - k.DAU) / k.DAU
	}
	drift := b.PriceDAUWeight*dauChange +
		b.BuybackWeight*o.BuybackPct/MaxBuybackPct -
		b.EmissionWeight*o.Emissions/MaxEmissions +
		randRange(r, -b.PriceNoise, b.PriceNoise)
	price := k.TokenPrice
	if !(price > MinTokenPrice) {
		price = MinTokenPrice
	}
	price = math.Max(MinTokenPrice, price*(1+drift))

	p.KPI = KPI{
		TokenPrice:  price,
		DAU:         dau,
		TVL:         tvl,
		Revenue:     revenue,
		RevenueFee:  revFee,
		RevenueBase: revBase,
		Profit:      profit,
		MarginPct:   margin,
		Costs:       costs,
	}
	p.History = append(p.History, KPISnapshot{
		Day:        day,
		TokenPrice: price,
		DAU:        dau,
		TVL:        tvl,
		Revenue:    revenue,
		Profit:     profit,
	})
	if len(p.History) > HistoryCap {
		p.History = p.History[len(p.History)-HistoryCap:]
	}

	secGrowth := tvl / 1e6 * 0.3
	if secGrowth > 0 {
		secGrowth *= mods.securityGain
	}
	complyGrowth := (revenue/50_000*0.2 + o.Emissions/MaxEmissions*0.1) * mods.complyGain
	return Delta{
		ResCash:           profit,
		ResSecurityRisk:   secGrowth - bud.Security/DaysPerWeek/2_500,
		ResComplianceRisk: complyGrowth - bud.Compliance/DaysPerWeek/2_500,
		ResFans:           dau * 0.002 * (1 + satMkt),
		ResCommunity:      dau * 0.001 * (1 + 2*satRef),
	}
}

// TickProducts runs one day of the economy for every live product.
func TickProducts(sim Sim, s *State) {
	mods := modsFor(s)
	total := Delta{}
	for _, p := range s.Active.Products {
		for key, v := range stepProduct(sim.Balance, sim.Rand, p, mods, s.Now.DayNum) {
			total[key] += v
		}
	}
	s.Resources.Adjust(total)
}

func UpdateOps(s *State, productID string, ops Ops) (Ops, error) {
	if err := s.playable(); err != nil {
		return Ops{}, err
	}
	p, _ := s.Product(productID)
	if p == nil {
		return Ops{}, fmt.Errorf("%w: product %s", ErrNotFound, productID)
	}
	p.Ops = clampOps(ops)
	return p.Ops, nil
}

// AbandonLiveProduct removes a product. The rug policy needs the product
// title typed back as confirm and costs reputation, fans and community.
func AbandonLiveProduct(s *State, productID, policy, confirm string) error {
	if err := s.playable(); err != nil {
		return err
	}
	p, idx := s.Product(productID)
	if p == nil {
		return fmt.Errorf("%w: product %s", ErrNotFound, productID)
	}
	switch policy {
	case PolicySunset:
		s.Active.Products = append(s.Active.Products[:idx], s.Active.Products[idx+1:]...)
		logf(s, "info", "Sunset %q.", p.Title)
	case PolicyRug:
		if confirm != p.Title {
			return fmt.Errorf("%w: type the product title to rug %q", ErrConfirmationRequired, p.Title)
		}
		s.Active.Products = append(s.Active.Products[:idx], s.Active.Products[idx+1:]...)
		s.Resources.Adjust(Delta{
			ResReputation:     -35,
			ResFans:           -s.Resources.Fans * 0.4,
			ResCommunity:      -s.Resources.Community * 0.3,
			ResComplianceRisk: 25,
		})
		logf(s, "bad", "Rugged %q. The community will not forget.", p.Title)
	default:
		return fmt.Errorf("%w: policy must be %s or %s", ErrInvalidInput, PolicySunset, PolicyRug)
	}
	if s.SelectedTarget == productID {
		s.SelectedTarget = ""
	}
	return nil
}
