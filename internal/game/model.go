package game

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	SaveVersion = 1

	HoursPerDay  = 24
	DaysPerWeek  = 7
	WeeksPerYear = 52

	HistoryCap  = 30
	InboxCap    = 30
	LogCap      = 120
	StageCount  = 3
	MaxRatings  = 3
	MaxProgress = 100.0

	MinTokenPrice = 1e-6

	MinSpeed = 0.25
	MaxSpeed = 16.0

	MinProjectBudget = 5_000
	KickoffShare     = 0.20

	GameOverCash = -100_000
	CrisisCash   = 25_000
	CrisisReset  = 60
)

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInsufficientCash       = errors.New("insufficient cash")
	ErrInsufficientTechPoints = errors.New("insufficient tech points")
	ErrResearchBusy           = errors.New("a research task is already running")
	ErrLocked                 = errors.New("prerequisites not met")
	ErrAlreadyDone            = errors.New("already done")
	ErrNoTeam                 = errors.New("no team member assigned to this stage")
	ErrConfirmationRequired   = errors.New("confirmation required")
	ErrNoNegotiation          = errors.New("no negotiation in progress")
	ErrGameOver               = errors.New("game over")
)

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float64) float64 {
	return math.Round(v)
}

// saturate maps a non-negative spend onto [0,1) with half effect at half.
func saturate(spend, half float64) float64 {
	if spend <= 0 || half <= 0 {
		return 0
	}
	return spend / (spend + half)
}

func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	n := utf8.RuneCountInString(title)
	if n < 1 || n > 64 {
		return errors.New("title must be 1-64 characters")
	}
	return nil
}
