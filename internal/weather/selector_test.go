package weather

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cond(name, prob string) NamedCondition {
	return NamedCondition{Name: name, Entry: RawConditionEntry{Probability: prob}}
}

func TestParseProbability(t *testing.T) {
	assert.Equal(t, 62.0, ParseProbability("62%"))
	assert.Equal(t, 62.5, ParseProbability(" 62.5 % "))
	assert.Equal(t, 40.0, ParseProbability("40"))
	assert.Equal(t, 0.0, ParseProbability("n/a"))
	assert.Equal(t, 0.0, ParseProbability(""))
	assert.Equal(t, 0.0, ParseProbability("NaN%"))
	assert.Equal(t, 0.5, ParseProbability(".5%"))
	for _, s := range []string{"Inf%", "+Inf", "-Infinity", "0x10%", "0x1p6", "1e3%", "1" + strings.Repeat("0", 400)} {
		assert.Equal(t, 0.0, ParseProbability(s), s)
	}
}

func TestSelectMostLikely_InfinityIsMalformed(t *testing.T) {
	conds := Conditions{
		cond("Hot", "62%"),
		cond("Cold", "Inf%"),
		cond("Very Hot", "0x1p6%"),
	}
	best, ok := SelectMostLikely(conds)
	require.True(t, ok)
	assert.Equal(t, "Hot", best.Name)
}

func TestSelectMostLikely(t *testing.T) {
	conds := Conditions{
		cond("Cold", "10%"),
		cond("Hot", "62%"),
		cond("Very Cold", "5%"),
		cond("Very Hot", "23%"),
	}
	best, ok := SelectMostLikely(conds)
	require.True(t, ok)
	assert.Equal(t, "Hot", best.Name)
}

func TestSelectMostLikely_TieKeepsEarliest(t *testing.T) {
	conds := Conditions{
		cond("Light Rain", "30%"),
		cond("Heavy Rain", "45%"),
		cond("Dry Day", "45%"),
	}
	best, ok := SelectMostLikely(conds)
	require.True(t, ok)
	assert.Equal(t, "Heavy Rain", best.Name)
}

func TestSelectMostLikely_MalformedCountsAsZero(t *testing.T) {
	conds := Conditions{
		cond("Broken", "about half"),
		cond("Low", "1%"),
	}
	best, ok := SelectMostLikely(conds)
	require.True(t, ok)
	assert.Equal(t, "Low", best.Name)

	best, ok = SelectMostLikely(Conditions{cond("Only", "??")})
	require.True(t, ok)
	assert.Equal(t, "Only", best.Name)
}

func TestSelectMostLikely_Empty(t *testing.T) {
	_, ok := SelectMostLikely(nil)
	assert.False(t, ok)
}

func TestSelectMostLikely_ResultIsMaximum(t *testing.T) {
	conds := Conditions{
		cond("a", "12%"), cond("b", "80.5%"), cond("c", "80.4%"), cond("d", "0%"), cond("e", "bad"),
	}
	best, ok := SelectMostLikely(conds)
	require.True(t, ok)
	for _, c := range conds {
		assert.GreaterOrEqual(t, ParseProbability(best.Entry.Probability), ParseProbability(c.Entry.Probability))
	}
}
