package matching

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReportByTier groups the ranked matches by quality tier.
func (r *RankedBatchResult) ReportByTier() map[Tier][]map[string]string {
	report := make(map[Tier][]map[string]string)
	for _, m := range r.Matches {
		report[m.Tier] = append(report[m.Tier], map[string]string{
			"rank":      fmt.Sprintf("%d", m.Rank),
			"candidate": fmt.Sprintf("%s (%s)", m.CandidateName, m.CandidateID),
			"score":     fmt.Sprintf("%d%%", m.Percentage),
			"missing":   fmt.Sprintf("%v", m.MissingSkills),
		})
	}
	return report
}

// Labels returns one menu label per ranked match, in rank order.
func (r *RankedBatchResult) Labels() []string {
	labels := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		labels = append(labels, fmt.Sprintf("%s #%d %s / %d%% / %s", m.CandidateID, m.Rank, m.CandidateName, m.Percentage, m.Tier))
	}
	return labels
}

// DumpToTmpFile writes the result as indented JSON to a new temp file and
// returns its name.
func (r *RankedBatchResult) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}
