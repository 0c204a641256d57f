package matching

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidConfiguration is returned by Config.Validate. It is a startup error
// and never surfaces from a scoring call.
var ErrInvalidConfiguration = errors.New("invalid matching configuration")

const weightTolerance = 1e-6

// Weights are the factor weights of the overall score. They must sum to 1.
type Weights struct {
	Skills     float64 `mapstructure:"skills" json:"skills"`
	Experience float64 `mapstructure:"experience" json:"experience"`
	Semantic   float64 `mapstructure:"semantic" json:"semantic"`
	Education  float64 `mapstructure:"education" json:"education"`
}

func (w Weights) Sum() float64 {
	return w.Skills + w.Experience + w.Semantic + w.Education
}

// Apply returns the weighted sum of the breakdown.
func (w Weights) Apply(b FactorBreakdown) float64 {
	return w.Skills*b.Skills +
		w.Experience*b.Experience +
		w.Semantic*b.Semantic +
		w.Education*b.Education
}

// Tiers holds the ascending cutoffs of the quality tiers.
type Tiers struct {
	Medium    float64 `mapstructure:"medium" json:"medium"`
	Good      float64 `mapstructure:"good" json:"good"`
	Excellent float64 `mapstructure:"excellent" json:"excellent"`
}

// Of returns the tier of score.
func (t Tiers) Of(score float64) Tier {
	switch {
	case score >= t.Excellent:
		return TierExcellent
	case score >= t.Good:
		return TierGood
	case score >= t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// Config holds every tunable of the engine.
type Config struct {
	Weights Weights `mapstructure:"weights" json:"weights"`
	Tiers   Tiers   `mapstructure:"tiers" json:"tiers"`
	// SemanticThreshold is the minimum cosine similarity for a missing job
	// skill to count as covered by a candidate skill.
	SemanticThreshold float64 `mapstructure:"semantic-threshold" json:"semantic_threshold"`
	// MinScore is the floor for a candidate to be listed in a batch result.
	MinScore      float64 `mapstructure:"min-score" json:"min_score"`
	LocationBonus float64 `mapstructure:"location-bonus" json:"location_bonus"`
	// EducationKeywords mark a requirement string as an education requirement.
	EducationKeywords     []string `mapstructure:"education-keywords" json:"education_keywords"`
	EducationMissingScore float64  `mapstructure:"education-missing-score" json:"education_missing_score"`
	// Workers bounds batch parallelism. Zero means one worker per CPU.
	Workers int `mapstructure:"workers" json:"workers"`
}

// DefaultEducationKeywords cover English and Spanish degree vocabulary.
var DefaultEducationKeywords = []string{
	"degree", "bachelor", "master", "phd", "doctorate", "university",
	"licenciatura", "maestría", "doctorado", "título", "grado",
}

// DefaultConfig returns the stock weights and thresholds.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Skills:     0.40,
			Experience: 0.25,
			Semantic:   0.25,
			Education:  0.10,
		},
		Tiers: Tiers{
			Medium:    0.30,
			Good:      0.60,
			Excellent: 0.80,
		},
		SemanticThreshold:     0.7,
		MinScore:              0.30,
		LocationBonus:         0.05,
		EducationKeywords:     append([]string(nil), DefaultEducationKeywords...),
		EducationMissingScore: 0.3,
	}
}

// Validate checks the weights and thresholds. Every violation wraps
// ErrInvalidConfiguration.
func (c Config) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"weights.skills", c.Weights.Skills},
		{"weights.experience", c.Weights.Experience},
		{"weights.semantic", c.Weights.Semantic},
		{"weights.education", c.Weights.Education},
		{"tiers.medium", c.Tiers.Medium},
		{"tiers.good", c.Tiers.Good},
		{"tiers.excellent", c.Tiers.Excellent},
		{"semantic-threshold", c.SemanticThreshold},
		{"min-score", c.MinScore},
		{"location-bonus", c.LocationBonus},
		{"education-missing-score", c.EducationMissingScore},
	}

	for _, v := range named {
		if math.IsNaN(v.value) || v.value < 0 || v.value > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidConfiguration, v.name, v.value)
		}
	}

	if sum := c.Weights.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights must sum to 1.0, got %.4f", ErrInvalidConfiguration, sum)
	}

	if !(c.Tiers.Medium <= c.Tiers.Good && c.Tiers.Good <= c.Tiers.Excellent) {
		return fmt.Errorf("%w: tier thresholds must be ascending (medium <= good <= excellent), got %.2f/%.2f/%.2f",
			ErrInvalidConfiguration, c.Tiers.Medium, c.Tiers.Good, c.Tiers.Excellent)
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfiguration, c.Workers)
	}

	for _, keyword := range c.EducationKeywords {
		if strings.TrimSpace(keyword) == "" {
			return fmt.Errorf("%w: education keywords must not be blank", ErrInvalidConfiguration)
		}
	}

	return nil
}
