// Package config loads daemon configuration from an optional YAML file and
// REACTION_* environment variables.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/giantswarm/microerror"
	"github.com/spf13/viper"
)

const envPrefix = "REACTION"

const (
	keyServerHost      = "server.host"
	keyServerPort      = "server.port"
	keyMinSignal       = "measurement.min_signal"
	keyMaxSignal       = "measurement.max_signal"
	keyResponseTimeout = "measurement.response_timeout"
	keyReactionFloor   = "measurement.reaction_floor"
)

type Config struct {
	Server      ServerConfig
	Measurement MeasurementConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type MeasurementConfig struct {
	MinSignal       time.Duration
	MaxSignal       time.Duration
	ResponseTimeout time.Duration
	ReactionFloor   time.Duration
}

// New returns a viper instance carrying the defaults and env bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyServerHost, "127.0.0.1")
	v.SetDefault(keyServerPort, 8090)
	v.SetDefault(keyMinSignal, 7*time.Second)
	v.SetDefault(keyMaxSignal, 25*time.Second)
	v.SetDefault(keyResponseTimeout, 5*time.Second)
	v.SetDefault(keyReactionFloor, 100*time.Millisecond)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, when not empty, on top of the defaults and validates the
// result.
func Load(path string) (Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, microerror.Mask(err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates v.
func FromViper(v *viper.Viper) (Config, error) {
	c := Config{
		Server: ServerConfig{
			Host: v.GetString(keyServerHost),
			Port: v.GetInt(keyServerPort),
		},
		Measurement: MeasurementConfig{
			MinSignal:       v.GetDuration(keyMinSignal),
			MaxSignal:       v.GetDuration(keyMaxSignal),
			ResponseTimeout: v.GetDuration(keyResponseTimeout),
			ReactionFloor:   v.GetDuration(keyReactionFloor),
		},
	}
	if err := c.Validate(); err != nil {
		return Config{}, microerror.Mask(err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return microerror.Maskf(invalidConfigError, "%s must be within 1..65535, got %d", keyServerPort, c.Server.Port)
	}

	m := c.Measurement
	for key, d := range map[string]time.Duration{
		keyMinSignal:       m.MinSignal,
		keyMaxSignal:       m.MaxSignal,
		keyResponseTimeout: m.ResponseTimeout,
	} {
		if d <= 0 {
			return microerror.Maskf(invalidConfigError, "%s must be positive, got %v", key, d)
		}
	}
	if m.MinSignal > m.MaxSignal {
		return microerror.Maskf(invalidConfigError, "%s %v exceeds %s %v", keyMinSignal, m.MinSignal, keyMaxSignal, m.MaxSignal)
	}
	if m.ReactionFloor < 0 || m.ReactionFloor >= m.ResponseTimeout {
		return microerror.Maskf(invalidConfigError, "%s must be within [0, %v), got %v", keyReactionFloor, m.ResponseTimeout, m.ReactionFloor)
	}

	return nil
}

func (c Config) String() string {
	m := c.Measurement
	return fmt.Sprintf("listen=%s signal=[%v,%v] timeout=%v floor=%v",
		c.Server.Addr(), m.MinSignal, m.MaxSignal, m.ResponseTimeout, m.ReactionFloor)
}
