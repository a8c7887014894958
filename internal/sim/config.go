// Package sim is the simulation runtime: lane/vertex arbitration, the
// fleet tick loop, and the state machine driving each robot.
package sim

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds the tunable parameters of the tick model. Zero values
// are invalid; start from DefaultConfig.
type Config struct {
	// Speed is the distance a robot advances per tick, in lane length
	// units. Lanes with a lower SpeedLimit cap it per lane.
	Speed float64 `yaml:"speed" validate:"gt=0"`

	// BatteryCostPerLength is battery percent drained per length unit
	// traversed while Moving.
	BatteryCostPerLength float64 `yaml:"battery_cost_per_length" validate:"gte=0"`

	// ChargeRatePerTick is battery percent gained per tick while Charging.
	ChargeRatePerTick float64 `yaml:"charge_rate_per_tick" validate:"gt=0"`

	// LowBatteryThreshold is the percent below which a Moving robot
	// diverts to the nearest charger.
	LowBatteryThreshold float64 `yaml:"low_battery_threshold" validate:"gte=0,lte=100"`

	// ChargedThreshold is the percent at which a Charging robot stops
	// and becomes Idle.
	ChargedThreshold float64 `yaml:"charged_threshold" validate:"gt=0,lte=100"`

	// InitialBattery is the battery percent of a freshly spawned robot.
	InitialBattery float64 `yaml:"initial_battery" validate:"gt=0,lte=100"`
}

// DefaultConfig returns the stock parameters.
func DefaultConfig() Config {
	return Config{
		Speed:                0.5,
		BatteryCostPerLength: 0.5,
		ChargeRatePerTick:    1.0,
		LowBatteryThreshold:  20.0,
		ChargedThreshold:     95.0,
		InitialBattery:       100.0,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and cross-field consistency.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("sim config: %w", err)
	}
	if c.LowBatteryThreshold >= c.ChargedThreshold {
		return fmt.Errorf("sim config: low_battery_threshold %.1f must be below charged_threshold %.1f",
			c.LowBatteryThreshold, c.ChargedThreshold)
	}
	return nil
}
