package utils

import (
	"context"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

var editDistanceOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// FindClosestString returns the candidate with the smallest edit distance to v, ok is false
// if no candidate is at most maxDifferences edits away.
func FindClosestString(ctx context.Context, candidates []string, v string, maxDifferences int) (closest string, distance int, ok bool) {
	distance = maxDifferences + 1
	target := []rune(v)

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return "", 0, false
		}
		d := levenshtein.DistanceForStrings([]rune(candidate), target, editDistanceOptions)
		if d < distance {
			closest, distance, ok = candidate, d, true
		}
	}
	if !ok {
		return "", 0, false
	}
	return
}
