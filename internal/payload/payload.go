// Package payload reads candidate and job records from JSON or YAML files.
package payload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/spigell/candidate-matcher/internal/matching"
)

const (
	candidateKey  = "candidate"
	candidatesKey = "candidates"
	jobKey        = "job"
)

var (
	ErrEmptyPayload = errors.New("payload is empty")
	ErrMissingID    = errors.New("id is required")
)

// LoadCandidate reads one candidate. The record may sit at the top level or
// under a "candidate" key.
func LoadCandidate(path string) (*matching.Candidate, error) {
	settings, err := read(path)
	if err != nil {
		return nil, err
	}

	var candidate *matching.Candidate
	if err := decode(unwrap(settings, candidateKey), &candidate); err != nil {
		return nil, fmt.Errorf("decode candidate from %s: %w", path, err)
	}

	if err := normalizeCandidate(candidate); err != nil {
		return nil, fmt.Errorf("candidate from %s: %w", path, err)
	}

	return candidate, nil
}

// LoadCandidates reads the "candidates" list. Identifiers must be unique.
func LoadCandidates(path string) ([]*matching.Candidate, error) {
	settings, err := read(path)
	if err != nil {
		return nil, err
	}

	raw, ok := settings[candidatesKey]
	if !ok {
		return nil, fmt.Errorf("%s: %q list not found", path, candidatesKey)
	}

	var candidates []*matching.Candidate
	if err := decode(raw, &candidates); err != nil {
		return nil, fmt.Errorf("decode candidates from %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(candidates))
	for i, candidate := range candidates {
		if err := normalizeCandidate(candidate); err != nil {
			return nil, fmt.Errorf("candidate #%d from %s: %w", i+1, path, err)
		}
		if _, dup := seen[candidate.ID]; dup {
			return nil, fmt.Errorf("candidate #%d from %s: duplicate id %q", i+1, path, candidate.ID)
		}
		seen[candidate.ID] = struct{}{}
	}

	return candidates, nil
}

// LoadJob reads one job posting. The record may sit at the top level or under
// a "job" key.
func LoadJob(path string) (*matching.Job, error) {
	settings, err := read(path)
	if err != nil {
		return nil, err
	}

	var job *matching.Job
	if err := decode(unwrap(settings, jobKey), &job); err != nil {
		return nil, fmt.Errorf("decode job from %s: %w", path, err)
	}

	if job == nil {
		return nil, fmt.Errorf("job from %s: %w", path, ErrEmptyPayload)
	}
	job.ID = strings.TrimSpace(job.ID)
	if job.ID == "" {
		return nil, fmt.Errorf("job from %s: %w", path, ErrMissingID)
	}
	job.Skills = matching.NormalizeSkills(job.Skills)
	job.Type = ParseEmploymentType(string(job.Type))

	return job, nil
}

// ParseEmploymentType maps spellings like "full-time" or "Full time" to the
// canonical upper snake case form.
func ParseEmploymentType(s string) matching.EmploymentType {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return matching.EmploymentType(strings.ToUpper(s))
}

func read(path string) (map[string]any, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read payload %s: %w", path, err)
	}

	settings := v.AllSettings()
	if len(settings) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyPayload)
	}

	return settings, nil
}

// unwrap returns the value under key when the file wraps the record.
func unwrap(settings map[string]any, key string) any {
	if nested, ok := settings[key].(map[string]any); ok {
		return nested
	}
	return settings
}

func decode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

func normalizeCandidate(candidate *matching.Candidate) error {
	if candidate == nil {
		return ErrEmptyPayload
	}

	candidate.ID = strings.TrimSpace(candidate.ID)
	if candidate.ID == "" {
		return ErrMissingID
	}

	candidate.Skills = matching.NormalizeSkills(candidate.Skills)
	return nil
}
