// Package cluster merges adjacent raw diff regions into fewer, larger,
// reportable bounding regions using union-find grouping.
package cluster

import (
	"sort"

	"designdiff/pkg/geometry"
)

// Severity ranks how strong a difference is. The ordering is total
// (Minor < Moderate < Major) so merged clusters can take the max of members.
type Severity int

const (
	SeverityMinor Severity = iota
	SeverityModerate
	SeverityMajor
)

func (s Severity) String() string {
	switch s {
	case SeverityModerate:
		return "moderate"
	case SeverityMajor:
		return "major"
	default:
		return "minor"
	}
}

// Region is one raw diff region in normalized 0..1 coordinates.
type Region struct {
	Bounds       geometry.Rect
	Severity     Severity
	Intensity    float64
	HasIntensity bool
}

// ClusteredRegion is the merged output: the bounding union of its members,
// the max severity, and the mean intensity.
type ClusteredRegion struct {
	Bounds      geometry.Rect `json:"bounds"`
	Severity    Severity      `json:"severity"`
	RegionCount int           `json:"region_count"`
	Intensity   float64       `json:"intensity"`
}

// Options configures spatial clustering.
type Options struct {
	GapThreshold   float64 // Max horizontal AND vertical gap, as fraction of image dimension
	MinClusterSize int     // Groups below this size stay as singleton clusters
}

// DefaultOptions returns default clustering options.
func DefaultOptions() Options {
	return Options{
		GapThreshold:   0.05,
		MinClusterSize: 1,
	}
}

// Regions merges regions whose bounding boxes are within GapThreshold of each
// other on both axes. Overlapping regions have gap zero. The result is sorted
// by severity descending, then area descending.
func Regions(regions []Region, opts Options) []ClusteredRegion {
	return mergeRegions(regions, opts, nil)
}

// mergeRegions is the shared union-find skeleton. When sameGroup is non-nil it
// must also approve a pair before the two regions are unioned (the
// image-aware variant gates on color-signature similarity).
func mergeRegions(regions []Region, opts Options, sameGroup func(i, j int) bool) []ClusteredRegion {
	if len(regions) == 0 {
		return nil
	}

	ds := newDisjointSet(len(regions))
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			dx, dy := regions[i].Bounds.Gap(regions[j].Bounds)
			if dx > opts.GapThreshold || dy > opts.GapThreshold {
				continue
			}
			if sameGroup != nil && !sameGroup(i, j) {
				continue
			}
			ds.union(i, j)
		}
	}

	// Collect members per root, in original index order for determinism.
	groups := make(map[int][]int)
	var roots []int
	for i := range regions {
		r := ds.find(i)
		if _, seen := groups[r]; !seen {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], i)
	}

	var clusters []ClusteredRegion
	for _, root := range roots {
		members := groups[root]
		if len(members) < opts.MinClusterSize {
			// Too small to merge; keep each member as its own cluster.
			for _, m := range members {
				clusters = append(clusters, singletonCluster(regions[m]))
			}
			continue
		}
		clusters = append(clusters, mergeGroup(regions, members))
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Severity != clusters[j].Severity {
			return clusters[i].Severity > clusters[j].Severity
		}
		ai, aj := clusters[i].Bounds.Area(), clusters[j].Bounds.Area()
		if ai != aj {
			return ai > aj
		}
		if clusters[i].Bounds.Y != clusters[j].Bounds.Y {
			return clusters[i].Bounds.Y < clusters[j].Bounds.Y
		}
		return clusters[i].Bounds.X < clusters[j].Bounds.X
	})
	return clusters
}

func mergeGroup(regions []Region, members []int) ClusteredRegion {
	bounds := regions[members[0]].Bounds
	severity := regions[members[0]].Severity
	var intensitySum float64
	for _, m := range members {
		r := regions[m]
		bounds = bounds.Union(r.Bounds)
		if r.Severity > severity {
			severity = r.Severity
		}
		intensitySum += regionIntensity(r)
	}
	return ClusteredRegion{
		Bounds:      bounds,
		Severity:    severity,
		RegionCount: len(members),
		Intensity:   intensitySum / float64(len(members)),
	}
}

func singletonCluster(r Region) ClusteredRegion {
	return ClusteredRegion{
		Bounds:      r.Bounds,
		Severity:    r.Severity,
		RegionCount: 1,
		Intensity:   regionIntensity(r),
	}
}

// regionIntensity returns the region's explicit intensity, or a severity-based
// fallback when none was recorded.
func regionIntensity(r Region) float64 {
	if r.HasIntensity {
		return r.Intensity
	}
	switch r.Severity {
	case SeverityMajor:
		return 1.0
	case SeverityModerate:
		return 0.66
	default:
		return 0.33
	}
}
