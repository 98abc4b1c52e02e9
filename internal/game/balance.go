package game

import "fmt"

// Balance holds the tunable coefficients of the simulation.
type Balance struct {
	StageBaseHours float64 `yaml:"stage_base_hours" json:"stageBaseHours"`

	DAUDiffusion   float64 `yaml:"dau_diffusion" json:"dauDiffusion"`
	TVLDiffusion   float64 `yaml:"tvl_diffusion" json:"tvlDiffusion"`
	NeglectFloor   float64 `yaml:"neglect_floor" json:"neglectFloor"`
	InfraPerUser   float64 `yaml:"infra_per_user" json:"infraPerUser"`
	VolumeTurnover float64 `yaml:"volume_turnover" json:"volumeTurnover"`

	MarketingHalf  float64 `yaml:"marketing_half" json:"marketingHalf"`
	IncentivesHalf float64 `yaml:"incentives_half" json:"incentivesHalf"`
	ReferralHalf   float64 `yaml:"referral_half" json:"referralHalf"`
	SupportHalf    float64 `yaml:"support_half" json:"supportHalf"`

	PriceDAUWeight float64 `yaml:"price_dau_weight" json:"priceDauWeight"`
	BuybackWeight  float64 `yaml:"buyback_weight" json:"buybackWeight"`
	EmissionWeight float64 `yaml:"emission_weight" json:"emissionWeight"`
	PriceNoise     float64 `yaml:"price_noise" json:"priceNoise"`

	EventBaseChance   float64 `yaml:"event_base_chance" json:"eventBaseChance"`
	EventStressChance float64 `yaml:"event_stress_chance" json:"eventStressChance"`
}

func DefaultBalance() Balance {
	return Balance{
		StageBaseHours: 120,

		DAUDiffusion:   0.12,
		TVLDiffusion:   0.10,
		NeglectFloor:   0.40,
		InfraPerUser:   0.02,
		VolumeTurnover: 0.08,

		MarketingHalf:  20_000,
		IncentivesHalf: 20_000,
		ReferralHalf:   10_000,
		SupportHalf:    10_000,

		PriceDAUWeight: 0.5,
		BuybackWeight:  0.03,
		EmissionWeight: 0.04,
		PriceNoise:     0.01,

		EventBaseChance:   0.38,
		EventStressChance: 0.22,
	}
}

func (b Balance) Validate() error {
	rates := map[string]float64{
		"dau_diffusion":       b.DAUDiffusion,
		"tvl_diffusion":       b.TVLDiffusion,
		"neglect_floor":       b.NeglectFloor,
		"event_base_chance":   b.EventBaseChance,
		"event_stress_chance": b.EventStressChance,
	}
	for name, v := range rates {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in (0,1], got %v", ErrInvalidInput, name, v)
		}
	}
	nonNeg := map[string]float64{
		"infra_per_user":   b.InfraPerUser,
		"volume_turnover":  b.VolumeTurnover,
		"marketing_half":   b.MarketingHalf,
		"incentives_half":  b.IncentivesHalf,
		"referral_half":    b.ReferralHalf,
		"support_half":     b.SupportHalf,
		"price_dau_weight": b.PriceDAUWeight,
		"buyback_weight":   b.BuybackWeight,
		"emission_weight":  b.EmissionWeight,
		"price_noise":      b.PriceNoise,
	}
	for name, v := range nonNeg {
		if v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidInput, name, v)
		}
	}
	if b.StageBaseHours < 1 {
		return fmt.Errorf("%w: stage_base_hours must be >= 1", ErrInvalidInput)
	}
	return nil
}
