// Package stats turns timestamped records into period totals, growth
// percentages and fixed-size chart series.
package stats

import (
	"fmt"
	"math"
	"time"
)

type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
	All     Period = "all"
)

// ParsePeriod accepts weekly, monthly, yearly and all. An empty string
// yields def.
func ParsePeriod(s string, def Period) (Period, error) {
	switch p := Period(s); p {
	case "":
		return def, nil
	case Weekly, Monthly, Yearly, All:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Window returns the start of the current window and the start of the
// window before it. The previous window ends where the current one starts.
func Window(p Period, now time.Time) (start, previous time.Time) {
	switch p {
	case Weekly:
		return now.AddDate(0, 0, -7), now.AddDate(0, 0, -14)
	case Monthly:
		return now.AddDate(0, -1, 0), now.AddDate(0, -2, 0)
	case Yearly:
		return now.AddDate(-1, 0, 0), now.AddDate(-2, 0, 0)
	default:
		epoch := time.Unix(0, 0).In(now.Location())
		return epoch, epoch
	}
}

// Growth is the percentage change from previous to current. A previous
// value of zero reports 100 when current is positive and 0 otherwise.
func Growth(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// RoundGrowth is Growth rounded to the nearest whole percent.
func RoundGrowth(current, previous float64) float64 {
	return math.Round(Growth(current, previous))
}
