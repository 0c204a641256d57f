package matching

import "math"

const maxExperienceBonus = 0.2

// ExperienceScore compares candidate years with the required years. A nil or
// non-positive requirement is always satisfied. Meeting the requirement scores
// 1; falling short scores the covered fraction.
func ExperienceScore(candidateYears float64, required *float64) float64 {
	if required == nil || *required <= 0 || math.IsNaN(*required) {
		return 1
	}

	req := *required
	years := math.Max(0, candidateYears)
	if math.IsNaN(years) {
		years = 0
	}

	if years >= req {
		bonus := math.Min(maxExperienceBonus, (years-req)/(2*req))
		return math.Min(1, 1+bonus)
	}

	return years / req
}
