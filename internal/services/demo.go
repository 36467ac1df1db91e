package services

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"sales-dashboard/internal/models"
)

const (
	histogramSamples = 1000
	histogramBins    = 20
)

var ErrNoDesserts = errors.New("no desserts to rank")

var demoCategories = []string{"A", "B", "C", "D"}

func DefaultDesserts() []models.Dessert {
	return []models.Dessert{
		{Name: "pastel", Rating: 4, IsWidget: true},
		{Name: "helado", Rating: 5, IsWidget: false},
		{Name: "galletas", Rating: 3, IsWidget: true},
	}
}

// Demo produces the synthesized panels. Its generator is shared, so
// access is serialized.
type Demo struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDemo seeds the generator; a zero seed uses the clock.
func NewDemo(seed uint64) *Demo {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Demo{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (d *Demo) Panels() models.DemoPanels {
	d.mu.Lock()
	hist := Histogram(d.rng, histogramSamples, histogramBins)
	bars := CategoryBars(d.rng)
	d.mu.Unlock()

	desserts := DefaultDesserts()
	favorite, _ := FavoriteDessert(desserts)

	return models.DemoPanels{
		Table:     BasicTable(),
		Histogram: hist,
		Bars:      bars,
		Desserts:  desserts,
		Favorite:  favorite,
	}
}

func BasicTable() models.BasicTable {
	return models.BasicTable{
		Columns: []string{"A", "B", "C"},
		Rows: [][]int{
			{1, 5, 9},
			{2, 6, 10},
			{3, 7, 11},
			{4, 8, 12},
		},
	}
}

// Histogram draws n standard-normal samples into equal-width bins spanning
// the sample range. The last bin includes its upper edge.
func Histogram(rng *rand.Rand, n, bins int) []models.HistogramBin {
	if n <= 0 || bins <= 0 {
		return []models.HistogramBin{}
	}

	samples := make([]float64, n)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range samples {
		v := rng.NormFloat64()
		samples[i] = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(bins)
	out := make([]models.HistogramBin, bins)
	for i := range out {
		out[i].Low = lo + float64(i)*width
		out[i].High = lo + float64(i+1)*width
	}
	for _, v := range samples {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

func CategoryBars(rng *rand.Rand) []models.CategoryValue {
	out := make([]models.CategoryValue, len(demoCategories))
	for i, c := range demoCategories {
		out[i] = models.CategoryValue{Category: c, Value: rng.IntN(9) + 1}
	}
	return out
}

// FavoriteDessert returns the best rated dessert; the first one wins ties.
func FavoriteDessert(desserts []models.Dessert) (string, error) {
	if len(desserts) == 0 {
		return "", ErrNoDesserts
	}
	best := desserts[0]
	for _, d := range desserts[1:] {
		if d.Rating > best.Rating {
			best = d
		}
	}
	return best.Name, nil
}
