package services

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
)

func TestHistogram(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	bins := Histogram(rng, histogramSamples, histogramBins)

	require.Len(t, bins, histogramBins)
	total := 0
	for i, b := range bins {
		total += b.Count
		assert.Less(t, b.Low, b.High)
		if i > 0 {
			assert.InDelta(t, bins[i-1].High, b.Low, 1e-9)
		}
	}
	assert.Equal(t, histogramSamples, total)
}

func TestHistogram_Degenerate(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	assert.Empty(t, Histogram(rng, 0, 20))
	assert.Empty(t, Histogram(rng, 10, 0))

	one := Histogram(rng, 1, 4)
	total := 0
	for _, b := range one {
		total += b.Count
	}
	assert.Equal(t, 1, total)
}

func TestCategoryBars(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	bars := CategoryBars(rng)

	require.Len(t, bars, 4)
	for i, b := range bars {
		assert.Equal(t, demoCategories[i], b.Category)
		assert.GreaterOrEqual(t, b.Value, 1)
		assert.LessOrEqual(t, b.Value, 9)
	}
}

func TestFavoriteDessert(t *testing.T) {
	tests := []struct {
		name     string
		desserts []models.Dessert
		want     string
		wantErr  bool
	}{
		{"defaults", DefaultDesserts(), "helado", false},
		{"first wins ties", []models.Dessert{{Name: "flan", Rating: 5}, {Name: "churros", Rating: 5}}, "flan", false},
		{"empty", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FavoriteDessert(tt.desserts)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoDesserts)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDemo_PanelsAreDeterministicForSeed(t *testing.T) {
	a := NewDemo(7).Panels()
	b := NewDemo(7).Panels()

	assert.Equal(t, a, b)
	assert.Equal(t, "helado", a.Favorite)
	assert.Equal(t, []string{"A", "B", "C"}, a.Table.Columns)
	assert.Len(t, a.Table.Rows, 4)
}
