package analytics

import (
	"sort"

	"f1insights/pkg/contracts/domain"
)

type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v float64) {
	m.sum += v
	m.n++
}

func (m *meanAcc) mean() float64 {
	return m.sum / float64(m.n)
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// meanPositionBy averages positionOrder grouped by key
func meanPositionBy(results []domain.Result, key func(domain.Result) int) map[int]float64 {
	acc := make(map[int]*meanAcc)
	for _, r := range results {
		k := key(r)
		a, ok := acc[k]
		if !ok {
			a = &meanAcc{}
			acc[k] = a
		}
		a.add(r.PositionOrder)
	}
	out := make(map[int]float64, len(acc))
	for k, a := range acc {
		out[k] = a.mean()
	}
	return out
}

func driverResults(results []domain.Result, driverID int) []domain.Result {
	var out []domain.Result
	for _, r := range results {
		if r.DriverID == driverID {
			out = append(out, r)
		}
	}
	return out
}

// Champion is the points leader of one season
type Champion struct {
	Year     int
	DriverID int
	Points   float64
}

// SeasonChampions sums results points per season and driver. Each season's
// champion is the first maximum in driverId order. Results of unknown races
// are ignored. The list is ordered by year.
func SeasonChampions(results []domain.Result, years map[int]int) []Champion {
	seasons := make(map[int]map[int]float64)
	for _, r := range results {
		year, ok := years[r.RaceID]
		if !ok {
			continue
		}
		points, ok := seasons[year]
		if !ok {
			points = make(map[int]float64)
			seasons[year] = points
		}
		points[r.DriverID] += r.Points
	}

	champions := make([]Champion, 0, len(seasons))
	for _, year := range sortedKeys(seasons) {
		points := seasons[year]
		best := Champion{Year: year}
		for i, id := range sortedKeys(points) {
			if i == 0 || points[id] > best.Points {
				best.DriverID, best.Points = id, points[id]
			}
		}
		champions = append(champions, best)
	}
	return champions
}

// Retention flags each champion that also won the previous listed season.
// The first season never counts as retained.
func Retention(champions []Champion) []bool {
	retained := make([]bool, len(champions))
	for i := 1; i < len(champions); i++ {
		retained[i] = champions[i].DriverID == champions[i-1].DriverID
	}
	return retained
}
