package morse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeBoundary(t *testing.T) {
	assert.Equal(t, Dot, Encode(299*time.Millisecond))
	assert.Equal(t, Dash, Encode(300*time.Millisecond))
}

func TestEncodeExtremes(t *testing.T) {
	assert.Equal(t, Dot, Encode(0))
	assert.Equal(t, Dot, Encode(150*time.Millisecond))
	assert.Equal(t, Dash, Encode(5*time.Second))
}

func TestClampBlankDelay(t *testing.T) {
	assert.Equal(t, MinBlankDelay, ClampBlankDelay(100*time.Millisecond))
	assert.Equal(t, MaxBlankDelay, ClampBlankDelay(10*time.Second))
	assert.Equal(t, 800*time.Millisecond, ClampBlankDelay(800*time.Millisecond))
}
