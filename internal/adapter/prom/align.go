package prom

import (
	"sort"
	"time"
)

// AlignedPoint is one timestamp with the value each series held there,
// keyed by the given label's value.
type AlignedPoint struct {
	Timestamp time.Time
	Values    map[string]float64
}

// Align converts a matrix result into one row per timestamp, keyed by the
// value of label on each series. Timestamps are the sorted union across all
// series; a series missing a timestamp contributes 0 there.
func Align(series []Series, label string) []AlignedPoint {
	seen := map[int64]struct{}{}
	for _, s := range series {
		for _, p := range s.Points {
			seen[p.Timestamp.Unix()] = struct{}{}
		}
	}

	stamps := make([]int64, 0, len(seen))
	for ts := range seen {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	// Index each series by timestamp once so alignment is a lookup,
	// not a rescan.
	indexed := make([]map[int64]float64, len(series))
	for i, s := range series {
		m := make(map[int64]float64, len(s.Points))
		for _, p := range s.Points {
			m[p.Timestamp.Unix()] = p.Value
		}
		indexed[i] = m
	}

	aligned := make([]AlignedPoint, 0, len(stamps))
	for _, ts := range stamps {
		row := AlignedPoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Values:    make(map[string]float64, len(series)),
		}
		for i, s := range series {
			key := s.Metric[label]
			row.Values[key] += indexed[i][ts]
		}
		aligned = append(aligned, row)
	}
	return aligned
}
