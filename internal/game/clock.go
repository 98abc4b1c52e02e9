package game

import (
	"fmt"
	"math"
	"time"
)

var epoch = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

// boundaryEpsilon absorbs float rounding in summed frame deltas so many
// small advances cross day boundaries exactly like one large advance.
const boundaryEpsilon = 1e-6

// CalendarAt derives calendar fields from elapsed hours. Day is the
// day-of-week index, 1..7, and a new week starts on Day 1.
func CalendarAt(elapsedHours float64) Calendar {
	if elapsedHours < 0 || math.IsNaN(elapsedHours) {
		elapsedHours = 0
	}
	total := int(math.Floor(elapsedHours / HoursPerDay))
	daysPerYear := DaysPerWeek * WeeksPerYear
	return Calendar{
		Year:    total/daysPerYear + 1,
		Week:    (total%daysPerYear)/DaysPerWeek + 1,
		Day:     total%DaysPerWeek + 1,
		DayNum:  total,
		DateISO: epoch.AddDate(0, 0, total).Format("2006-01-02"),
	}
}

func WeekLabel(c Calendar) string {
	return fmt.Sprintf("Y%d W%d D%d", c.Year, c.Week, c.Day)
}

func (c Calendar) Stamp() WeekStamp {
	return WeekStamp{Year: c.Year, Week: c.Week}
}

// TotalWeeks numbers weeks from the start of the game.
func (w WeekStamp) TotalWeeks() int {
	return (w.Year-1)*WeeksPerYear + (w.Week - 1)
}

type ClockHooks struct {
	Day  func(s *State)
	Week func(s *State)
}

// Advance moves the clock forward by deltaHours, settling each crossed day
// boundary in order. It returns the number of days settled.
func Advance(s *State, deltaHours float64, hooks ClockHooks) int {
	if s.Time.Paused || s.Flags.GameOver != "" {
		return 0
	}
	if deltaHours <= 0 || math.IsNaN(deltaHours) || math.IsInf(deltaHours, 0) {
		return 0
	}
	settled := 0
	remaining := deltaHours
	for remaining > 0 {
		day := math.Floor(s.Time.ElapsedHours / HoursPerDay)
		boundary := (day + 1) * HoursPerDay
		step := boundary - s.Time.ElapsedHours
		if remaining < step-boundaryEpsilon {
			s.Time.ElapsedHours += remaining
			if s.Time.ElapsedHours-day*HoursPerDay < boundaryEpsilon {
				s.Time.ElapsedHours = day * HoursPerDay
			}
			s.Now = CalendarAt(s.Time.ElapsedHours)
			break
		}
		remaining -= step
		s.Time.ElapsedHours = boundary
		s.Now = CalendarAt(s.Time.ElapsedHours)
		if hooks.Day != nil {
			hooks.Day(s)
		}
		if s.Now.Day == 1 && hooks.Week != nil {
			hooks.Week(s)
		}
		settled++
		if s.Flags.GameOver != "" {
			break
		}
	}
	return settled
}

func clampSpeed(v float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return 1
	}
	return clamp(v, MinSpeed, MaxSpeed)
}
