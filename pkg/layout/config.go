package layout

import (
	"math"

	"github.com/DipokalLab/intellect/pkg/config"
)

// Config holds force parameters. Values follow d3-force conventions so the
// layout settles the way the browser version does.
type Config struct {
	LinkStrength float64 // <= 0 uses 1/min(degree) per link
	LinkDistance float64

	ChargeStrength float64 // Negative repels
	Theta          float64 // Barnes-Hut accuracy; 0 forces exact summation
	DistanceMin    float64
	DistanceMax    float64 // 0 means unbounded

	BandStrength    float64
	PersonBand      float64 // Fraction of height
	AchievementBand float64 // Fraction of height

	CollideRadiusPerson      float64
	CollideRadiusAchievement float64
	CollideStrength          float64
	CollideIterations        int

	// XStrength pulls unpinned nodes toward their year when Pin is off.
	XStrength float64
	Margin    float64 // Horizontal padding of the time axis

	Alpha         float64
	AlphaMin      float64
	AlphaDecay    float64
	AlphaTarget   float64
	VelocityDecay float64
	ReheatAlpha   float64

	Pin  bool
	Seed int64
}

// DefaultConfig mirrors d3's defaults for the parts the timeline does not
// tune.
func DefaultConfig() Config {
	return Config{
		LinkStrength:             0.05,
		LinkDistance:             60,
		ChargeStrength:           -30,
		Theta:                    0.9,
		DistanceMin:              1,
		BandStrength:             0.08,
		PersonBand:               0.35,
		AchievementBand:          0.65,
		CollideRadiusPerson:      22,
		CollideRadiusAchievement: 14,
		CollideStrength:          0.7,
		CollideIterations:        1,
		XStrength:                0.1,
		Margin:                   40,
		Alpha:                    1,
		AlphaMin:                 0.001,
		AlphaDecay:               1 - math.Pow(0.001, 1.0/300),
		VelocityDecay:            0.4,
		ReheatAlpha:              0.3,
		Pin:                      true,
		Seed:                     1,
	}
}

// FromConfig overlays user configuration on the defaults. Zero values keep
// the default.
func FromConfig(c config.LayoutConfig) Config {
	cfg := DefaultConfig()
	set := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	set(&cfg.LinkStrength, c.LinkStrength)
	set(&cfg.LinkDistance, c.LinkDistance)
	set(&cfg.ChargeStrength, c.ChargeStrength)
	set(&cfg.Theta, c.Theta)
	set(&cfg.BandStrength, c.BandStrength)
	set(&cfg.PersonBand, c.PersonBand)
	set(&cfg.AchievementBand, c.AchievementBand)
	set(&cfg.CollideStrength, c.CollideStrength)
	set(&cfg.VelocityDecay, c.VelocityDecay)
	set(&cfg.ReheatAlpha, c.ReheatAlpha)
	cfg.Pin = c.PinEnabled()
	if c.Seed != 0 {
		cfg.Seed = c.Seed
	}
	return cfg
}
