// Package exposure maps photographic camera settings to the tone-mapping
// exposure scalar used by the renderer.
package exposure

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSettings is returned when a setting would make the exposure
// undefined (zero or negative denominators, NaN, Inf).
var ErrInvalidSettings = errors.New("invalid camera settings")

// Settings are the photographic parameters of the virtual camera.
type Settings struct {
	Compensation float64 // exposure compensation multiplier
	ShutterSpeed float64
	ISO          float64
	FStop        float64
}

// Default returns {1, 10, 100, 5.6}.
func Default() Settings {
	return Settings{
		Compensation: 1.0,
		ShutterSpeed: 10,
		ISO:          100,
		FStop:        5.6,
	}
}

// Validate reports the first setting that cannot produce a finite exposure.
func (s Settings) Validate() error {
	check := func(name string, v float64, positive bool) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidSettings, name, v)
		}
		if positive && v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidSettings, name, v)
		}
		return nil
	}
	if err := check("shutter speed", s.ShutterSpeed, true); err != nil {
		return err
	}
	if err := check("f-stop", s.FStop, true); err != nil {
		return err
	}
	if err := check("ISO", s.ISO, true); err != nil {
		return err
	}
	return check("compensation", s.Compensation, false)
}

// EV is log2(fStop² / shutterSpeed).
func (s Settings) EV() float64 {
	return math.Log2(s.FStop * s.FStop / s.ShutterSpeed)
}

// Compute returns 2^(-EV) * (ISO/100) * compensation.
func Compute(s Settings) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return math.Pow(2, -s.EV()) * (s.ISO / 100) * s.Compensation, nil
}
