package pricing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateReforestation(t *testing.T) {
	// Reforestation, vintage 2024, MRV 90:
	// round(98*0.4 + 85*0.3 + 90*0.3) = 92
	// 28 + (92-80)*0.5 + (2026-2024)*1 = 36.00
	eval := Evaluate(Input{
		ProjectType: "Reforestation",
		VintageYear: 2024,
		MRVScore:    90,
	})

	assert.Equal(t, 92, eval.IntegrityScore)
	assert.Equal(t, "36", eval.UnitPrice.String())
}

func TestEvaluateByProjectType(t *testing.T) {
	tests := []struct {
		projectType   string
		mrvScore      int
		wantScore     int
		wantUnitPrice string
	}{
		// round(70*0.4 + 95*0.3 + 88*0.3) = round(82.9) = 83
		// 12 + 3*0.5 + 0 = 13.5
		{"Solar", 88, 83, "13.5"},
		// round(70*0.4 + 95*0.3 + 96*0.3) = round(85.3) = 85
		// 14 + 5*0.5 + 0 = 16.5
		{"Wind", 96, 85, "16.5"},
		// round(75*0.4 + 95*0.3 + 92*0.3) = round(86.1) = 86
		// 18 + 6*0.5 + 0 = 21
		{"Methane Capture", 92, 86, "21"},
		// round(75*0.4 + 95*0.3 + 92*0.3) = 86
		// 15 + 6*0.5 + 0 = 18
		{"Direct Air Capture", 92, 86, "18"},
		// round(70*0.4 + 95*0.3 + 92*0.3) = round(84.1) = 84
		// 15 + 4*0.5 + 0 = 17
		{"Geothermal", 92, 84, "17"},
		{"Hydroelectric", 92, 84, "17"},
	}

	for _, tt := range tests {
		t.Run(tt.projectType, func(t *testing.T) {
			eval := Evaluate(Input{
				ProjectType: tt.projectType,
				VintageYear: ReferenceYear,
				MRVScore:    tt.mrvScore,
			})
			assert.Equal(t, tt.wantScore, eval.IntegrityScore)
			assert.Equal(t, tt.wantUnitPrice, eval.UnitPrice.String())
		})
	}
}

func TestIntegrityScoreBounds(t *testing.T) {
	types := []string{
		"Reforestation", "Renewable Energy", "Solar", "Wind", "Geothermal",
		"Hydroelectric", "Methane Capture", "Direct Air Capture", "Blue Carbon",
	}
	for _, projectType := range types {
		for mrv := MRVScoreMin; mrv <= MRVScoreMax; mrv++ {
			eval := Evaluate(Input{ProjectType: projectType, VintageYear: 2023, MRVScore: mrv})
			assert.GreaterOrEqual(t, eval.IntegrityScore, 0)
			assert.LessOrEqual(t, eval.IntegrityScore, 100)
		}
	}
}

func TestPriceNonDecreasingInIntegrity(t *testing.T) {
	// Above the premium threshold, a higher MRV score (and therefore a higher
	// integrity score) never lowers the price, all else equal.
	prev := Evaluate(Input{ProjectType: "Reforestation", VintageYear: 2024, MRVScore: MRVScoreMin})
	for mrv := MRVScoreMin + 1; mrv <= MRVScoreMax; mrv++ {
		cur := Evaluate(Input{ProjectType: "Reforestation", VintageYear: 2024, MRVScore: mrv})
		assert.True(t, cur.UnitPrice.GreaterThanOrEqual(prev.UnitPrice),
			fmt.Sprintf("price dropped from %s to %s at mrv=%d", prev.UnitPrice, cur.UnitPrice, mrv))
		prev = cur
	}
}

func TestVintageBonus(t *testing.T) {
	old := Evaluate(Input{ProjectType: "Wind", VintageYear: 2022, MRVScore: 92})
	current := Evaluate(Input{ProjectType: "Wind", VintageYear: ReferenceYear, MRVScore: 92})
	future := Evaluate(Input{ProjectType: "Wind", VintageYear: ReferenceYear + 1, MRVScore: 92})

	// Four years behind the reference year adds 4.00
	assert.Equal(t, "4", old.UnitPrice.Sub(current.UnitPrice).String())
	// Never a penalty for vintages at or past the reference year
	assert.True(t, future.UnitPrice.Equal(current.UnitPrice))
}

func TestEvaluateFallback(t *testing.T) {
	// An out-of-range verifier score must not block approval: the engine
	// substitutes the safe default pair.
	for _, mrv := range []int{0, MRVScoreMin - 1, MRVScoreMax + 1, 200} {
		eval := Evaluate(Input{ProjectType: "Reforestation", VintageYear: 2024, MRVScore: mrv})
		assert.Equal(t, DefaultIntegrityScore, eval.IntegrityScore)
		assert.Equal(t, "15", eval.UnitPrice.String())
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	in := Input{ProjectType: "Methane Capture", VintageYear: 2023, MRVScore: 91}
	first := Evaluate(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(in))
	}
}
