package game

import (
	"errors"
	"testing"
)

var neutralMods = productMods{growth: 1, fee: 1, securityGain: 1, complyGain: 1}

func idleProduct() *Product {
	return &Product{
		ID:        "prod",
		Title:     "Moon Swap",
		Archetype: "dex",
		Scale:     1,
		LaunchDAU: 1_000,
		KPI:       KPI{TokenPrice: 1, DAU: 1_000, TVL: 900_000},
	}
}

func TestHistoryIsCapped(t *testing.T) {
	p := idleProduct()
	p.Ops = DefaultOps()
	r := fixedRand{f: 0.5}
	for day := 0; day < 40; day++ {
		stepProduct(DefaultBalance(), r, p, neutralMods, day)
	}
	if len(p.History) != HistoryCap {
		t.Fatalf("history len=%d want %d", len(p.History), HistoryCap)
	}
	if p.History[len(p.History)-1].Day != 39 {
		t.Fatalf("newest snapshot day=%d", p.History[len(p.History)-1].Day)
	}
}

func TestTokenPriceFloor(t *testing.T) {
	p := idleProduct()
	p.KPI = KPI{TokenPrice: MinTokenPrice}
	p.Ops = Ops{Emissions: MaxEmissions}
	stepProduct(DefaultBalance(), fixedRand{f: 0.5}, p, neutralMods, 0)
	if p.KPI.TokenPrice != MinTokenPrice {
		t.Fatalf("price=%v want floor %v", p.KPI.TokenPrice, MinTokenPrice)
	}
}

func TestNeglectedProductDecays(t *testing.T) {
	p := idleProduct()
	r := fixedRand{f: 0.5}
	prevDAU, prevTVL := p.KPI.DAU, p.KPI.TVL
	for day := 0; day < 30; day++ {
		stepProduct(DefaultBalance(), r, p, neutralMods, day)
		if p.KPI.DAU >= prevDAU {
			t.Fatalf("day %d: dau %v did not fall from %v", day, p.KPI.DAU, prevDAU)
		}
		if p.KPI.TVL > prevTVL {
			t.Fatalf("day %d: tvl %v rose from %v", day, p.KPI.TVL, prevTVL)
		}
		prevDAU, prevTVL = p.KPI.DAU, p.KPI.TVL
	}
	if p.KPI.DAU > 700 {
		t.Fatalf("dau=%v after a month of neglect", p.KPI.DAU)
	}
}

func TestUpdateOpsClamps(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	s.Active.Products = append(s.Active.Products, idleProduct())
	got, err := UpdateOps(s, "prod", Ops{FeeRateBps: 500, BuybackPct: -1, Emissions: 40, Budgets: Budgets{Marketing: 1e9}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.FeeRateBps != MaxFeeRateBps || got.BuybackPct != 0 || got.Emissions != 40 || got.Budgets.Marketing != MaxWeeklySpend {
		t.Fatalf("ops not clamped: %+v", got)
	}
}

func TestRugNeedsConfirmation(t *testing.T) {
	s := NewState(fixedRand{f: 0.5})
	s.Active.Products = append(s.Active.Products, idleProduct())

	if err := AbandonLiveProduct(s, "prod", PolicyRug, "moon swap"); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("got %v, want ErrConfirmationRequired", err)
	}
	if len(s.Active.Products) != 1 {
		t.Fatalf("product removed without confirmation")
	}
	if err := AbandonLiveProduct(s, "prod", PolicyRug, "Moon Swap"); err != nil {
		t.Fatalf("rug: %v", err)
	}
	if s.Resources.Reputation != 0 || s.Resources.Fans != 60 || s.Resources.Community != 35 || s.Resources.ComplianceRisk != 30 {
		t.Fatalf("unexpected penalty: %+v", s.Resources)
	}
	if err := AbandonLiveProduct(s, "prod", PolicySunset, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestOverspendingProductReportsSignedLoss(t *testing.T) {
	p := idleProduct()
	p.Ops = DefaultOps()
	p.Ops.Budgets.Marketing = MaxWeeklySpend
	stepProduct(DefaultBalance(), fixedRand{f: 0.5}, p, neutralMods, 0)
	k := p.KPI
	if k.Profit >= 0 || k.MarginPct >= 0 {
		t.Fatalf("profit=%v margin=%v, want both negative", k.Profit, k.MarginPct)
	}
	if k.DAU < 0 || k.TVL < 0 || k.Revenue < 0 || k.Costs.Total() <= 0 {
		t.Fatalf("unsigned kpis went negative: %+v", k)
	}
}
