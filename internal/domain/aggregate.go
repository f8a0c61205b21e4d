package domain

import "sort"

const rankingSize = 10

// RankLocalities groups points by resolved locality, averages risk,
// resilience, green deficit, and livability index per group, and returns
// the top and bottom ten by mean livability index. Sorting is stable, so
// ties keep first-seen locality order.
func RankLocalities(points []SamplePoint) Rankings {
	type acc struct {
		sum   LocalitySummary
		count int
	}

	order := make([]string, 0)
	groups := make(map[string]*acc)
	for i := range points {
		p := &points[i]
		a, ok := groups[p.Locality]
		if !ok {
			a = &acc{sum: LocalitySummary{Locality: p.Locality}}
			groups[p.Locality] = a
			order = append(order, p.Locality)
		}
		a.sum.Risk += p.Risk
		a.sum.ResilienceScore += p.ResilienceScore
		a.sum.GreenDeficit += p.GreenDeficit
		a.sum.LivabilityIndex += p.LivabilityIndex
		a.count++
	}

	summaries := make([]LocalitySummary, 0, len(order))
	for _, name := range order {
		a := groups[name]
		n := float64(a.count)
		summaries = append(summaries, LocalitySummary{
			Locality:        name,
			Risk:            a.sum.Risk / n,
			ResilienceScore: a.sum.ResilienceScore / n,
			GreenDeficit:    a.sum.GreenDeficit / n,
			LivabilityIndex: a.sum.LivabilityIndex / n,
		})
	}

	top := make([]LocalitySummary, len(summaries))
	copy(top, summaries)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].LivabilityIndex > top[j].LivabilityIndex
	})

	bottom := make([]LocalitySummary, len(summaries))
	copy(bottom, summaries)
	sort.SliceStable(bottom, func(i, j int) bool {
		return bottom[i].LivabilityIndex < bottom[j].LivabilityIndex
	})

	return Rankings{
		MostLivable:  truncate(top, rankingSize),
		LeastLivable: truncate(bottom, rankingSize),
	}
}

func truncate(s []LocalitySummary, n int) []LocalitySummary {
	if len(s) > n {
		return s[:n]
	}
	return s
}
