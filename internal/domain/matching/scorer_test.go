package matching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oclem/tenderwise/internal/domain/contract"
	"github.com/oclem/tenderwise/pkg/errors"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestScorer(cfg ScorerConfig) *Scorer {
	return NewScorer(cfg, fixedNow, nil)
}

func f(v float64) *float64 { return &v }

func makeRow(values map[string]string) Row {
	cols := []string{"objeto", "cpv", "provincia", "presupuesto", "importe_adjudicacion", "empresa", "fecha", "tipo"}
	r := Row{Columns: cols, Values: map[string]string{}}
	for k, v := range values {
		r.Values[k] = v
	}
	return r
}

func testTarget() *contract.ContractRecord {
	return &contract.ContractRecord{
		Subject:         "Servicio de mantenimiento integral de zonas verdes y arbolado urbano",
		CPV:             []contract.CPVCode{{Code: "77311000"}},
		Locality:        "Madrid",
		Budget:          f(250000),
		ContractType:    "Servicios",
		PublicationDate: "2024-03-15",
	}
}

func TestScore_EmptyDataset(t *testing.T) {
	// An empty corpus is the zero-match case, not a failure.
	s := newTestScorer(ScorerConfig{})
	got, err := s.Score(context.Background(), testTarget(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.Score(context.Background(), nil, []Row{makeRow(nil)})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTargetIncomplete))
}

func TestScore_CPVAndLocation(t *testing.T) {
	s := newTestScorer(ScorerConfig{})
	rows := []Row{
		makeRow(map[string]string{
			"cpv":       "77311000-3 Servicios de jardinería",
			"provincia": "Madrid",
		}),
		makeRow(map[string]string{
			"objeto": "Suministro de mobiliario de oficina para dependencias judiciales",
		}),
	}

	got, err := s.Score(context.Background(), testTarget(), rows)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Exact CPV (40) plus same locality (30).
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 70.0, got[0].Score)
	assert.True(t, got[0].Factors.CPV)
	assert.True(t, got[0].Factors.Location)
	assert.False(t, got[0].Factors.Price)
}

func TestScore_CPVPrefixTiers(t *testing.T) {
	s := newTestScorer(ScorerConfig{MinScore: 1})
	tests := []struct {
		name string
		cpv  string
		want float64
	}{
		{"exact eight digits", "77311000", 40},
		{"four digit division", "77319999", 30},
		{"two digit category", "77999999", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []Row{makeRow(map[string]string{"cpv": tt.cpv})}
			target := &contract.ContractRecord{CPV: []contract.CPVCode{{Code: "77311000"}}}
			got, err := s.Score(context.Background(), target, rows)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Score)
		})
	}
}

func TestScore_NearbyLocality(t *testing.T) {
	s := newTestScorer(ScorerConfig{MinScore: 1})
	target := &contract.ContractRecord{Locality: "Madrid"}
	rows := []Row{makeRow(map[string]string{"provincia": "Toledo"})}

	got, err := s.Score(context.Background(), target, rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 20.0, got[0].Score)
	assert.True(t, got[0].Factors.Location)
}

func TestScore_PriceBands(t *testing.T) {
	s := newTestScorer(ScorerConfig{MinScore: 1})
	target := &contract.ContractRecord{Budget: f(100000)}

	tests := []struct {
		price      string
		wantScore  float64
		priceMatch bool
	}{
		{"110000", 25, true},  // 10% off
		{"135000", 18, true},  // 35% off
		{"155000", 10, false}, // 55% off scores but is not a price match
	}
	for _, tt := range tests {
		rows := []Row{makeRow(map[string]string{"presupuesto": tt.price})}
		got, err := s.Score(context.Background(), target, rows)
		require.NoError(t, err)
		require.Len(t, got, 1, "price %s", tt.price)
		assert.Equal(t, tt.wantScore, got[0].Score, "price %s", tt.price)
		assert.Equal(t, tt.priceMatch, got[0].Factors.Price, "price %s", tt.price)
	}

	// 80% off scores nothing.
	rows := []Row{makeRow(map[string]string{"presupuesto": "180000"})}
	got, err := s.Score(context.Background(), target, rows)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScore_PriorityOrdersCPVFirst(t *testing.T) {
	// A CPV match with a modest score must outrank a high-scoring candidate
	// without one.
	s := newTestScorer(ScorerConfig{MinScore: 1})
	target := testTarget()
	rows := []Row{
		makeRow(map[string]string{
			// Locality + price + type + subject, no CPV.
			"provincia":   "Madrid",
			"presupuesto": "255000",
			"tipo":        "Servicios",
			"objeto":      "Servicio de mantenimiento integral de zonas verdes y arbolado urbano",
		}),
		makeRow(map[string]string{
			"cpv": "77311000",
		}),
	}

	got, err := s.Score(context.Background(), target, rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index, "CPV match must rank first")
	assert.Greater(t, got[1].Score, got[0].Score, "despite the lower raw score")
}

func TestScore_YearProximity(t *testing.T) {
	s := newTestScorer(ScorerConfig{MinScore: 1})
	target := &contract.ContractRecord{PublicationDate: "2024-03-15"}

	tests := []struct {
		date string
		want float64
	}{
		{"2023", 15},
		{"2022", 10},
		{"2020", 5},
		{"2017", 0},
	}
	for _, tt := range tests {
		rows := []Row{makeRow(map[string]string{"fecha": tt.date})}
		got, err := s.Score(context.Background(), target, rows)
		require.NoError(t, err)
		if tt.want == 0 {
			assert.Empty(t, got, "date %s", tt.date)
			continue
		}
		require.Len(t, got, 1, "date %s", tt.date)
		assert.Equal(t, tt.want, got[0].Score, "date %s", tt.date)
	}
}

func TestScore_RecencyBonus(t *testing.T) {
	s := newTestScorer(ScorerConfig{MinScore: 1})
	target := &contract.ContractRecord{Locality: "Madrid"}

	// Same locality (30) plus recency for a row ~half a year old.
	rows := []Row{makeRow(map[string]string{
		"provincia": "Madrid",
		"fecha":     "2023-12-03", // 181 days before the fixed clock
	})}
	got, err := s.Score(context.Background(), target, rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Greater(t, got[0].Score, 30.0)
	assert.Less(t, got[0].Score, 35.0)
}

func TestScore_CapsCandidates(t *testing.T) {
	s := newTestScorer(ScorerConfig{MaxCandidates: 3, MinScore: 1})
	target := &contract.ContractRecord{Locality: "Madrid"}
	rows := make([]Row, 10)
	for i := range rows {
		rows[i] = makeRow(map[string]string{"provincia": "Madrid"})
	}
	got, err := s.Score(context.Background(), target, rows)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestScore_DiscountComputedPerRow(t *testing.T) {
	s := newTestScorer(ScorerConfig{MinScore: 1})
	target := &contract.ContractRecord{Budget: f(100000)}
	rows := []Row{makeRow(map[string]string{
		"presupuesto":          "100000",
		"importe_adjudicacion": "85000",
		"empresa":              "Construcciones Norte SA",
	})}

	got, err := s.Score(context.Background(), target, rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].DiscountPercent)
	assert.InDelta(t, 15.0, *got[0].DiscountPercent, 1e-9)
	assert.Equal(t, "Construcciones Norte SA", got[0].Awardee)
}

func TestDiscountPercent(t *testing.T) {
	d := DiscountPercent(f(100000), f(85000))
	require.NotNil(t, d)
	assert.InDelta(t, 15.0, *d, 1e-9)

	assert.Nil(t, DiscountPercent(nil, f(85000)))
	assert.Nil(t, DiscountPercent(f(100000), nil))
	assert.Nil(t, DiscountPercent(f(0), f(85000)))
	assert.Nil(t, DiscountPercent(f(-5), f(85000)))
}

func TestScore_ContextCancelled(t *testing.T) {
	s := newTestScorer(ScorerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := make([]Row, 100)
	for i := range rows {
		rows[i] = makeRow(map[string]string{"provincia": "Madrid"})
	}
	_, err := s.Score(ctx, testTarget(), rows)
	assert.Error(t, err)
}
