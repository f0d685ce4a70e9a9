package stats

import (
	"fmt"
	"time"
)

// Bucket is a half-open interval [Start, End).
type Bucket struct {
	Label string
	Start time.Time
	End   time.Time
}

func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

type Record struct {
	At    time.Time
	Value float64
}

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// Buckets lays out the chart series for p in now's location:
//
//	weekly   7 days ending today
//	monthly  4 weeks (Monday based) ending with the current week
//	yearly   the 12 months of the current year
//	all      6 months ending with the current month
func Buckets(p Period, now time.Time) []Bucket {
	switch p {
	case Weekly:
		today := startOfDay(now)
		out := make([]Bucket, 7)
		for i := range out {
			start := today.AddDate(0, 0, i-6)
			out[i] = Bucket{Label: start.Weekday().String()[:3], Start: start, End: start.AddDate(0, 0, 1)}
		}
		return out
	case Monthly:
		week := startOfWeek(now)
		out := make([]Bucket, 4)
		for i := range out {
			start := week.AddDate(0, 0, 7*(i-3))
			out[i] = Bucket{Label: fmt.Sprintf("Week %d", i+1), Start: start, End: start.AddDate(0, 0, 7)}
		}
		return out
	case Yearly:
		out := make([]Bucket, 12)
		for i := range out {
			start := time.Date(now.Year(), time.Month(i+1), 1, 0, 0, 0, 0, now.Location())
			out[i] = Bucket{Label: start.Month().String()[:3], Start: start, End: start.AddDate(0, 1, 0)}
		}
		return out
	default:
		month := startOfMonth(now)
		out := make([]Bucket, 6)
		for i := range out {
			start := month.AddDate(0, i-5, 0)
			out[i] = Bucket{Label: start.Format("Jan 06"), Start: start, End: start.AddDate(0, 1, 0)}
		}
		return out
	}
}

// Span is the interval covered by the series, useful for narrowing a query.
func Span(p Period, now time.Time) (from, to time.Time) {
	b := Buckets(p, now)
	return b[0].Start, b[len(b)-1].End
}

// Bucketize sums record values per bucket. Every bucket is reported, empty
// ones with a zero value, and records outside the series are ignored.
func Bucketize(records []Record, p Period, now time.Time) []Point {
	buckets := Buckets(p, now)
	points := make([]Point, len(buckets))
	for i, b := range buckets {
		points[i].Label = b.Label
	}
	for _, r := range records {
		at := r.At.In(now.Location())
		for i, b := range buckets {
			if b.Contains(at) {
				points[i].Value += r.Value
				break
			}
		}
	}
	return points
}

// Counts is Bucketize for records that each weigh one.
func Counts(times []time.Time, p Period, now time.Time) []Point {
	records := make([]Record, len(times))
	for i, t := range times {
		records[i] = Record{At: t, Value: 1}
	}
	return Bucketize(records, p, now)
}

// Labels extracts the labels of a series.
func Labels(points []Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Label
	}
	return out
}

// Values extracts the values of a series.
func Values(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// Sum adds the values of records in [from, to). A zero to means no upper bound.
func Sum(records []Record, from, to time.Time) float64 {
	var total float64
	for _, r := range records {
		if r.At.Before(from) {
			continue
		}
		if !to.IsZero() && !r.At.Before(to) {
			continue
		}
		total += r.Value
	}
	return total
}
