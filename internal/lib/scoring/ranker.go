package scoring

import (
	"sort"
	"sync"
	"time"

	"github.com/walksafe/server/internal/lib/feature"
	"github.com/walksafe/server/internal/lib/route"
)

// RankedRoute pairs a candidate route with its safety score
type RankedRoute struct {
	Route route.Route `json:"route"`
	Score Score       `json:"score"`
}

// Ranker orders candidate routes safest-first
type Ranker struct {
	scorer *Scorer
	index  route.ProximityIndex
}

// NewRanker creates a ranker backed by a default scorer
func NewRanker() *Ranker {
	return &Ranker{
		scorer: NewScorer(),
		index:  route.NewProximityIndex(),
	}
}

// NewRankerWithScorer creates a ranker using a custom-configured scorer
func NewRankerWithScorer(scorer *Scorer) *Ranker {
	return &Ranker{
		scorer: scorer,
		index:  route.NewProximityIndex(),
	}
}

// Rank scores every candidate route and returns them ordered by descending
// overall score. Equal scores favor the shorter route; fully equal
// candidates keep their input order. Route evaluations share no mutable
// state, so they run concurrently.
func (r *Ranker) Rank(routes []route.Route, lamps, incidents, policeStations []feature.PointFeature, now time.Time) []RankedRoute {
	ranked := make([]RankedRoute, len(routes))

	var wg sync.WaitGroup
	for i, candidate := range routes {
		wg.Add(1)
		go func(i int, candidate route.Route) {
			defer wg.Done()
			ranked[i] = RankedRoute{
				Route: candidate,
				Score: r.scorer.Score(candidate, lamps, incidents, policeStations, now),
			}
		}(i, candidate)
	}
	wg.Wait()

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score.Overall != ranked[j].Score.Overall {
			return ranked[i].Score.Overall > ranked[j].Score.Overall
		}
		return ranked[i].Score.Details.RouteLengthMeters < ranked[j].Score.Details.RouteLengthMeters
	})

	return ranked
}
