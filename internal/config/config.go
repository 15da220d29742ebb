package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Camera source kinds.
const (
	SourceMJPEG = "mjpeg"
	SourceWS    = "ws"
	SourceDir   = "dir"
)

type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	Session   SessionConfig   `yaml:"session"`
	Detection DetectionConfig `yaml:"detection"`
	Camera    CameraConfig    `yaml:"camera"`
	Report    ReportConfig    `yaml:"report"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// BackendConfig holds one URL per endpoint. The demo deployment split login
// onto a different host than process/signup, so they are not derived from a
// shared base.
type BackendConfig struct {
	VitalsURL string        `yaml:"vitals_url" env:"VITALSCAN_VITALS_URL"`
	SignupURL string        `yaml:"signup_url" env:"VITALSCAN_SIGNUP_URL"`
	LoginURL  string        `yaml:"login_url"  env:"VITALSCAN_LOGIN_URL"`
	Timeout   time.Duration `yaml:"timeout"    env:"VITALSCAN_BACKEND_TIMEOUT"`
}

type SessionConfig struct {
	Duration   time.Duration `yaml:"duration"    env:"VITALSCAN_SESSION_DURATION"`
	Tick       time.Duration `yaml:"tick"        env:"VITALSCAN_SESSION_TICK"`
	SendSignal bool          `yaml:"send_signal" env:"VITALSCAN_SEND_SIGNAL"`
}

type DetectionConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"VITALSCAN_POLL_INTERVAL"`
	CascadePath  string        `yaml:"cascade_path"  env:"VITALSCAN_CASCADE_PATH"`
	MinFace      int           `yaml:"min_face"`
	MaxFace      int           `yaml:"max_face"`
	Quality      float32       `yaml:"quality"`
	ScaleWidth   int           `yaml:"scale_width"`
}

type CameraConfig struct {
	Source        string        `yaml:"source"         env:"VITALSCAN_CAMERA_SOURCE"`
	URL           string        `yaml:"url"            env:"VITALSCAN_CAMERA_URL"`
	Dir           string        `yaml:"dir"            env:"VITALSCAN_CAMERA_DIR"`
	FrameInterval time.Duration `yaml:"frame_interval"`
}

type ReportConfig struct {
	Dir string `yaml:"dir" env:"VITALSCAN_REPORT_DIR"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"VITALSCAN_LOG_LEVEL"`
	File  string `yaml:"file"  env:"VITALSCAN_LOG_FILE"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr" env:"VITALSCAN_METRICS_ADDR"`
}

const defaultBackend = "http://127.0.0.1:5000"

func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			VitalsURL: defaultBackend + "/process",
			SignupURL: defaultBackend + "/signup",
			LoginURL:  defaultBackend + "/login",
			Timeout:   30 * time.Second,
		},
		Session: SessionConfig{
			Duration: 20 * time.Second,
			Tick:     time.Second,
		},
		Detection: DetectionConfig{
			PollInterval: time.Second,
			CascadePath:  "cascade/facefinder",
			MinFace:      40,
			MaxFace:      800,
			Quality:      5.0,
			ScaleWidth:   320,
		},
		Camera: CameraConfig{
			Source:        SourceMJPEG,
			URL:           "http://127.0.0.1:8081/stream.mjpg",
			FrameInterval: 33 * time.Millisecond,
		},
		Report: ReportConfig{Dir: "reports"},
		Log:    LogConfig{Level: "info", File: "vitalscan.log"},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load reads the YAML file at path over the defaults, then applies a local
// .env file and VITALSCAN_* environment overrides. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	if c.Session.Duration <= 0 || c.Session.Tick <= 0 {
		return errors.New("session: duration and tick must be positive")
	}
	if c.Session.Duration < c.Session.Tick {
		return errors.New("session: duration shorter than one tick")
	}
	if c.Detection.PollInterval <= 0 {
		return errors.New("detection: poll_interval must be positive")
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend: timeout must be positive")
	}
	switch c.Camera.Source {
	case SourceMJPEG, SourceWS:
		if c.Camera.URL == "" {
			return fmt.Errorf("camera: source %q requires url", c.Camera.Source)
		}
	case SourceDir:
		if c.Camera.Dir == "" {
			return errors.New("camera: source dir requires dir")
		}
	default:
		return fmt.Errorf("camera: unknown source %q", c.Camera.Source)
	}
	return nil
}

// Ticks is the number of countdown ticks in one session.
func (c *Config) Ticks() int {
	return int(c.Session.Duration / c.Session.Tick)
}
