package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const (
	// HashedName is the provider name of the local hashing embedder.
	HashedName = "hashed"
	// DefaultHashedDimension is used when a non-positive dimension is requested.
	DefaultHashedDimension = 256
	// HashedModel identifies the hashing scheme; vectors differ between versions.
	HashedModel = "fnv1a-trigram-v1"
)

// Hashed is a local, dependency-free provider based on feature hashing of
// word tokens and character trigrams. It needs no model download and is
// fully deterministic.
type Hashed struct {
	dim int
}

// NewHashed returns a hashing provider producing vectors of size dim.
func NewHashed(dim int) *Hashed {
	if dim <= 0 {
		dim = DefaultHashedDimension
	}
	return &Hashed{dim: dim}
}

func (h *Hashed) Embed(_ context.Context, text string) (Vector, error) {
	vec := make(Vector, h.dim)

	for _, token := range tokenize(text) {
		h.add(vec, "w:"+token, 1)

		padded := []rune("^" + token + "$")
		for i := 0; i+3 <= len(padded); i++ {
			h.add(vec, "t:"+string(padded[i:i+3]), 0.5)
		}
	}

	normalize(vec)
	return vec, nil
}

func (h *Hashed) Dimension() int { return h.dim }

func (h *Hashed) Name() string { return HashedName }

func (h *Hashed) Model() string { return HashedModel }

func (h *Hashed) add(vec Vector, feature string, weight float32) {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(feature))
	sum := hash.Sum32()

	idx := int(sum % uint32(h.dim))
	if sum&(1<<31) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

func normalize(vec Vector) {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
}
