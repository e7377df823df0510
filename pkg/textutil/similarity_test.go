package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatioIdentical(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("The Matrix1999", "The Matrix1999"))
}

func TestRatioBothEmpty(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("", ""))
}

func TestRatioOneEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("Heat", ""))
	assert.Equal(t, 0.0, Ratio("", "Heat"))
}

func TestRatioPartialOverlap(t *testing.T) {
	// "bcd" is the longest common block: 2*3/(4+4) = 0.75.
	assert.InDelta(t, 0.75, Ratio("abcd", "bcde"), 1e-9)
}

func TestRatioDisjoint(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
}

func TestRatioSymmetricScore(t *testing.T) {
	a, b := "Alien 3", "Aliens"
	assert.InDelta(t, Ratio(a, b), Ratio(b, a), 1e-9)
}

func TestRatioYearSuffixDiscriminates(t *testing.T) {
	remake := Ratio("King Kong2005", "King Kong2005")
	original := Ratio("King Kong2005", "King Kong1933")
	assert.Greater(t, remake, original)
	assert.Greater(t, original, 0.5)
}
