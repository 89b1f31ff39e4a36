package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScoreBarAndLabel(t *testing.T) {
	assert.Equal(t, "████░", ScoreBar(4, 5))
	assert.Equal(t, "█████", ScoreBar(-5, 5))
	assert.Equal(t, "░░░░░", ScoreBar(0, 5))
	assert.Equal(t, "█████", ScoreBar(9, 5))

	assert.Equal(t, "+4/5", ScoreLabel(4, 5))
	assert.Equal(t, "-5/5", ScoreLabel(-5, 5))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 2.5, RoundTo(2.50004, 3))
	assert.Equal(t, 2.123, RoundTo(2.1234, 3))
	assert.Equal(t, -1.235, RoundTo(-1.2346, 3))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "101.50", FormatPrice(101.5, 2))
	assert.Equal(t, "2ч 5м", FormatDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "45м", FormatDuration(45*time.Minute))
}
