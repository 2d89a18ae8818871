package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 7.19, Round2(1000.0/139.0))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 2.5, Round2(2.499999))
}

func TestSum(t *testing.T) {
	assert.Equal(t, 0.3, Sum(0.1, 0.2))
	assert.Equal(t, 8.0, Sum(5, 3))
	assert.Equal(t, 0.0, Sum())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 15.0, Percent(100, 15))
	assert.Equal(t, 1.5, Percent(150, 1))
}

func TestNonNegative(t *testing.T) {
	assert.Equal(t, 0.0, NonNegative(-3))
	assert.Equal(t, 3.0, NonNegative(3))
}
