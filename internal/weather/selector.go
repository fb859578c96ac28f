package weather

import (
	"regexp"
	"strconv"
	"strings"
)

// plainDecimal excludes the Inf, NaN, hex and exponent forms strconv would accept.
var plainDecimal = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)$`)

// ParseProbability converts a percentage string such as "62.5%" to a float.
// Anything other than a plain decimal number is treated as 0.
func ParseProbability(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if !plainDecimal.MatchString(s) {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// SelectMostLikely returns the condition with the highest probability. Entries are
// scanned in declared order and a candidate only replaces the current maximum when it
// is strictly greater, so the earliest entry wins ties. ok is false for an empty set.
func SelectMostLikely(conds Conditions) (best NamedCondition, ok bool) {
	if len(conds) == 0 {
		return NamedCondition{}, false
	}

	best = conds[0]
	bestProb := ParseProbability(best.Entry.Probability)
	for _, nc := range conds[1:] {
		if p := ParseProbability(nc.Entry.Probability); p > bestProb {
			best, bestProb = nc, p
		}
	}
	return best, true
}
