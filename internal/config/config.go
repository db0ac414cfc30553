package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"pick3d/internal/pointer"
)

type Config struct {
	Gesture GestureConfig `yaml:"gesture"`
	Demo    DemoConfig    `yaml:"demo"`
}

type GestureConfig struct {
	TapTimeoutMS  int     `yaml:"tap_timeout_ms"`
	DoubleClickMS int     `yaml:"double_click_ms"`
	TouchSlop     float32 `yaml:"touch_slop"`
}

type DemoConfig struct {
	ObjectCount int   `yaml:"object_count"`
	Seed        int64 `yaml:"seed"`
	ShowOverlay bool  `yaml:"show_overlay"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Gesture: GestureConfig{
			TapTimeoutMS:  int(pointer.DefaultTapTimeout / time.Millisecond),
			DoubleClickMS: int(pointer.DefaultDoubleClickWindow / time.Millisecond),
			TouchSlop:     pointer.DefaultTouchSlop,
		},
		Demo: DemoConfig{
			ObjectCount: 64,
			Seed:        1,
			ShowOverlay: true,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Options converts the gesture section to pipeline options. Zero fields fall
// back to the pipeline defaults.
func (c *Config) Options() pointer.Options {
	return pointer.Options{
		TapTimeout:        time.Duration(c.Gesture.TapTimeoutMS) * time.Millisecond,
		DoubleClickWindow: time.Duration(c.Gesture.DoubleClickMS) * time.Millisecond,
		TouchSlop:         c.Gesture.TouchSlop,
	}
}

func (c *Config) validate() error {
	if c.Gesture.TapTimeoutMS < 0 {
		return fmt.Errorf("config: tap_timeout_ms must not be negative, got %d", c.Gesture.TapTimeoutMS)
	}
	if c.Gesture.DoubleClickMS < 0 {
		return fmt.Errorf("config: double_click_ms must not be negative, got %d", c.Gesture.DoubleClickMS)
	}
	if c.Gesture.TouchSlop < 0 {
		return fmt.Errorf("config: touch_slop must not be negative, got %g", c.Gesture.TouchSlop)
	}
	if c.Demo.ObjectCount < 0 {
		return fmt.Errorf("config: object_count must not be negative, got %d", c.Demo.ObjectCount)
	}
	return nil
}
