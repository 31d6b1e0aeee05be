package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config carries every tunable the binary reads at startup. All values have
// defaults, so running without a config file is valid.
type Config struct {
	Port     string
	LogLevel string
	DBPath   string
	Auth     Auth
	Engine   Engine
	Actuator Actuator
	Breath   Breath
	Drive    Drive
}

// Auth configures operator token issuing.
type Auth struct {
	SigningKey string
	TokenTTL   time.Duration
}

// Engine configures the two background loops.
type Engine struct {
	Tick              time.Duration // breath engine period
	TelemetryInterval time.Duration // snapshot persistence period
}

// Actuator bounds the drive signal. MaxStepPerTick must exceed the fastest
// commanded slew (full stroke over the shortest inspiratory time) or the
// driver will lag the cycle; it exists to bound jumps, not to pace breaths.
type Actuator struct {
	MinPulseUS     int
	MaxPulseUS     int
	MaxStepPerTick float64 // command units per engine tick
}

// Breath holds cycle shaping knobs outside the clinical parameter ranges.
type Breath struct {
	// MinStrokeFraction is the stroke delivered at minimum tidal volume, as a
	// fraction of full calibrated travel. Must stay above zero so minimum
	// volume still produces visible motion.
	MinStrokeFraction float64
}

// Drive selects the physical output sink.
type Drive struct {
	Output string // "log" or "gpio"
	Pin    string // gpio pin name, e.g. GPIO18
}

const (
	defaultPort              = "8080"
	defaultLogLevel          = "info"
	defaultDBPath            = "vent.db"
	defaultSigningKey        = "change-me-before-deploying"
	defaultTokenTTL          = time.Hour
	defaultTick              = 20 * time.Millisecond // one 50 Hz servo frame
	defaultTelemetryInterval = time.Second
	defaultMinPulseUS        = 1000
	defaultMaxPulseUS        = 2000
	defaultMaxStepPerTick    = 50.0
	defaultMinStroke         = 0.25
	defaultDriveOutput       = "log"
	defaultDrivePin          = "GPIO18"
)

// Load reads configs/config.yml (or an explicit path) over registered
// defaults. A missing default file is not an error; an explicitly named
// missing file, or a malformed one, is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", defaultPort)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("db.path", defaultDBPath)
	v.SetDefault("auth.signing_key", defaultSigningKey)
	v.SetDefault("auth.token_ttl", defaultTokenTTL)
	v.SetDefault("engine.tick", defaultTick)
	v.SetDefault("engine.telemetry_interval", defaultTelemetryInterval)
	v.SetDefault("actuator.min_pulse_us", defaultMinPulseUS)
	v.SetDefault("actuator.max_pulse_us", defaultMaxPulseUS)
	v.SetDefault("actuator.max_step_per_tick", defaultMaxStepPerTick)
	v.SetDefault("breath.min_stroke_fraction", defaultMinStroke)
	v.SetDefault("drive.output", defaultDriveOutput)
	v.SetDefault("drive.pin", defaultDrivePin)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log_level"),
		DBPath:   v.GetString("db.path"),
		Auth: Auth{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
		},
		Engine: Engine{
			Tick:              v.GetDuration("engine.tick"),
			TelemetryInterval: v.GetDuration("engine.telemetry_interval"),
		},
		Actuator: Actuator{
			MinPulseUS:     v.GetInt("actuator.min_pulse_us"),
			MaxPulseUS:     v.GetInt("actuator.max_pulse_us"),
			MaxStepPerTick: v.GetFloat64("actuator.max_step_per_tick"),
		},
		Breath: Breath{
			MinStrokeFraction: v.GetFloat64("breath.min_stroke_fraction"),
		},
		Drive: Drive{
			Output: v.GetString("drive.output"),
			Pin:    v.GetString("drive.pin"),
		},
	}
}
