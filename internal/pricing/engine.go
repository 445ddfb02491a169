package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Scoring weights for the integrity composite.
const (
	additionalityWeight = 0.40
	permanenceWeight    = 0.30
	mrvWeight           = 0.30
)

// MRV confidence bounds. The verifier-supplied score must fall inside this
// closed interval; anything else trips the safe-default guard.
const (
	MRVScoreMin = 88
	MRVScoreMax = 96
)

// ReferenceYear anchors the vintage bonus calculation.
const ReferenceYear = 2026

// Quality premium per integrity point above the premium threshold.
const (
	premiumThreshold = 80
	premiumPerPoint  = 0.50
)

// Safe defaults returned when an evaluation cannot be completed. Pricing
// must never block an approval.
const (
	DefaultIntegrityScore = 75
	defaultUnitPrice      = 15.00
)

// Input carries the project attributes the engine evaluates. MRVScore is the
// external verifier's confidence, recorded once at review time, so the same
// project always prices identically.
type Input struct {
	ProjectType string
	VintageYear int
	MRVScore    int
}

// Evaluation is the computed integrity score and unit price for a project.
type Evaluation struct {
	IntegrityScore int             `json:"integrity_score"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

// DefaultEvaluation returns the never-block-approval fallback pair.
func DefaultEvaluation() Evaluation {
	return Evaluation{
		IntegrityScore: DefaultIntegrityScore,
		UnitPrice:      decimal.NewFromFloat(defaultUnitPrice),
	}
}

// Evaluate computes the integrity score and unit price for a project. It is a
// pure function of its input; an out-of-range MRV score yields the safe
// default pair instead of an error.
func Evaluate(in Input) Evaluation {
	if in.MRVScore < MRVScoreMin || in.MRVScore > MRVScoreMax {
		return DefaultEvaluation()
	}

	score := integrityScore(in.ProjectType, in.MRVScore)

	base := basePrice(in.ProjectType)

	premium := decimal.Zero
	if score > premiumThreshold {
		premium = decimal.NewFromFloat(premiumPerPoint).
			Mul(decimal.NewFromInt(int64(score - premiumThreshold)))
	}

	bonus := decimal.Zero
	if years := ReferenceYear - in.VintageYear; years > 0 {
		bonus = decimal.NewFromInt(int64(years))
	}

	return Evaluation{
		IntegrityScore: score,
		UnitPrice:      base.Add(premium).Add(bonus).Round(2),
	}
}

func integrityScore(projectType string, mrvScore int) int {
	additionality := additionalityScore(projectType)
	permanence := permanenceScore(projectType)

	weighted := float64(additionality)*additionalityWeight +
		float64(permanence)*permanenceWeight +
		float64(mrvScore)*mrvWeight

	return int(math.Round(weighted))
}

func additionalityScore(projectType string) int {
	switch projectType {
	case "Reforestation":
		return 98
	case "Renewable Energy", "Solar", "Wind", "Geothermal", "Hydroelectric":
		return 70
	default:
		return 75
	}
}

func permanenceScore(projectType string) int {
	switch projectType {
	case "Direct Air Capture", "Geothermal", "Renewable Energy", "Solar",
		"Wind", "Hydroelectric", "Methane Capture":
		return 95
	case "Reforestation":
		return 85
	default:
		return 75
	}
}

func basePrice(projectType string) decimal.Decimal {
	switch projectType {
	case "Reforestation":
		return decimal.NewFromInt(28)
	case "Methane Capture":
		return decimal.NewFromInt(18)
	case "Solar", "Renewable Energy":
		return decimal.NewFromInt(12)
	case "Wind":
		return decimal.NewFromInt(14)
	default:
		return decimal.NewFromInt(15)
	}
}
