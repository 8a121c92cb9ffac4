package exposure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDefault(t *testing.T) {
	got, err := Compute(Default())
	require.NoError(t, err)
	// 2^-log2(31.36/10) = 10/31.36
	assert.InDelta(t, 10/31.36, got, 1e-12)
}

func TestComputeLinearInCompensation(t *testing.T) {
	s := Default()
	base, err := Compute(s)
	require.NoError(t, err)

	s.Compensation = 2
	doubled, err := Compute(s)
	require.NoError(t, err)
	assert.InDelta(t, 2*base, doubled, 1e-12)

	s.Compensation = 0
	zero, err := Compute(s)
	require.NoError(t, err)
	assert.Zero(t, zero)
}

func TestComputeScalesWithISO(t *testing.T) {
	s := Default()
	s.ISO = 200
	got, err := Compute(s)
	require.NoError(t, err)
	assert.InDelta(t, 2*10/31.36, got, 1e-12)
}

func TestComputeRejectsInvalid(t *testing.T) {
	cases := map[string]func(*Settings){
		"zero shutter":     func(s *Settings) { s.ShutterSpeed = 0 },
		"negative shutter": func(s *Settings) { s.ShutterSpeed = -1 },
		"zero fstop":       func(s *Settings) { s.FStop = 0 },
		"zero iso":         func(s *Settings) { s.ISO = 0 },
		"nan compensation": func(s *Settings) { s.Compensation = math.NaN() },
		"inf shutter":      func(s *Settings) { s.ShutterSpeed = math.Inf(1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := Default()
			mutate(&s)
			_, err := Compute(s)
			assert.ErrorIs(t, err, ErrInvalidSettings)
		})
	}
}
