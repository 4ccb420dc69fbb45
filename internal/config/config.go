package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Bus struct {
	Name      string `yaml:"name"`       // i2creg name, e.g. "1"; empty picks the first bus
	Addr      uint16 `yaml:"addr"`       // 7-bit chip address
	SpeedHz   int64  `yaml:"speed_hz"`   // e.g. 400000
	TimeoutMs int    `yaml:"timeout_ms"` // per transaction
}

type Enable struct {
	Pin    string `yaml:"pin,omitempty"`    // periph pin name, e.g. "GPIO16"
	Chip   string `yaml:"chip,omitempty"`   // gpio character device, e.g. "gpiochip0"; wins over pin
	Offset int    `yaml:"offset,omitempty"` // line offset on chip
}

type Config struct {
	Driver    string `yaml:"driver"` // "i2c" | "sim"
	Bus       Bus    `yaml:"bus"`
	Enable    Enable `yaml:"enable"`
	SettleMs  int    `yaml:"settle_ms"`
	QueueSize int    `yaml:"queue_size"`
	BlinkRate uint8  `yaml:"blink_rate"`
	Backlight uint8  `yaml:"backlight"` // start level 0..10
	LogLevel  string `yaml:"log_level"`
	Addr      string `yaml:"addr"` // HTTP listen address; empty disables
}

// Default matches the Infinity60 wiring.
func Default() *Config {
	return &Config{
		Driver: "i2c",
		Bus: Bus{
			Addr:      0x74,
			SpeedHz:   400000,
			TimeoutMs: 10,
		},
		Enable:    Enable{Pin: "GPIO16"},
		SettleMs:  10,
		QueueSize: 5,
		BlinkRate: 5,
		Backlight: 10,
		LogLevel:  "info",
		Addr:      ":8080",
	}
}

// Load reads path over Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	switch c.Driver {
	case "i2c", "sim":
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.Bus.Addr == 0 || c.Bus.Addr > 0x7F {
		return fmt.Errorf("bus address 0x%X is not a 7-bit address", c.Bus.Addr)
	}
	if c.QueueSize < 0 || c.Bus.TimeoutMs < 0 {
		return fmt.Errorf("queue_size and timeout_ms must not be negative")
	}
	if c.BlinkRate > 7 {
		return fmt.Errorf("blink_rate %d out of range 0..7", c.BlinkRate)
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Bus.TimeoutMs) * time.Millisecond
}

func (c *Config) Settle() time.Duration {
	if c.SettleMs <= 0 {
		return -1
	}
	return time.Duration(c.SettleMs) * time.Millisecond
}
