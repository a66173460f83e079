package config

import (
	"os"
	"strings"

	"wasmbench/internal/runinfo"

	"gopkg.in/yaml.v3"
)

// Config captures all runtime options for the benchmark harness.
type Config struct {
	Seed            uint32             `yaml:"seed"`
	Tasks           []string           `yaml:"tasks"`
	Implementations Implementations    `yaml:"implementations"`
	VectorDir       string             `yaml:"vector_dir"`
	SampleDir       string             `yaml:"sample_dir"`
	ReportDir       string             `yaml:"report_dir"`
	Stats           StatsConfig        `yaml:"stats"`
	Storage         StorageConfig      `yaml:"storage"`
	Logging         Logging            `yaml:"logging"`
	RunInfo         *runinfo.BasicInfo `yaml:"-"`
}

// Implementations names the two runtimes being compared.
type Implementations struct {
	Baseline  string `yaml:"baseline"`
	Candidate string `yaml:"candidate"`
}

// StatsConfig holds thresholds for the statistical comparison engine.
type StatsConfig struct {
	Alpha      float64 `yaml:"alpha"`
	Power      float64 `yaml:"power"`
	MinSamples int     `yaml:"min_samples"`
}

// Logging controls log verbosity and the optional log file that mirrors
// stdout output.
type Logging struct {
	Verbose bool   `yaml:"verbose"`
	LogFile string `yaml:"log_file"`
}

// StorageConfig holds external storage settings.
type StorageConfig struct {
	S3  S3Config  `yaml:"s3"`
	GCS GCSConfig `yaml:"gcs"`
}

// CloudEnabled reports whether any cloud storage backend is enabled.
func (s StorageConfig) CloudEnabled() bool {
	return s.GCS.Enabled || s.S3.Enabled
}

// S3Config configures S3 uploads (AWS and S3-compatible endpoints).
type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// GCSConfig configures GCS uploads.
type GCSConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Load reads configuration from a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	normalizeConfig(&cfg)
	cfg.RunInfo = runinfo.FromEnv()
	return cfg, nil
}

const (
	alphaDefault      = 0.05
	powerDefault      = 0.8
	minSamplesDefault = 30
)

func normalizeConfig(cfg *Config) {
	if cfg.Stats.Alpha <= 0 || cfg.Stats.Alpha >= 1 {
		cfg.Stats.Alpha = alphaDefault
	}
	if cfg.Stats.Power <= 0 || cfg.Stats.Power >= 1 {
		cfg.Stats.Power = powerDefault
	}
	if cfg.Stats.MinSamples <= 0 {
		cfg.Stats.MinSamples = minSamplesDefault
	}
	if cfg.Implementations.Baseline == "" {
		cfg.Implementations.Baseline = "rust"
	}
	if cfg.Implementations.Candidate == "" {
		cfg.Implementations.Candidate = "tinygo"
	}
	if cfg.VectorDir == "" {
		cfg.VectorDir = "vectors"
	}
	if cfg.SampleDir == "" {
		cfg.SampleDir = "samples"
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = "reports"
	}
	normalized := cfg.Tasks[:0]
	for _, task := range cfg.Tasks {
		task = strings.TrimSpace(strings.ToLower(task))
		if task != "" {
			normalized = append(normalized, task)
		}
	}
	cfg.Tasks = normalized
}

func defaultConfig() Config {
	return Config{
		Seed: 42,
		Implementations: Implementations{
			Baseline:  "rust",
			Candidate: "tinygo",
		},
		VectorDir: "vectors",
		SampleDir: "samples",
		ReportDir: "reports",
		Stats: StatsConfig{
			Alpha:      alphaDefault,
			Power:      powerDefault,
			MinSamples: minSamplesDefault,
		},
		Logging: Logging{
			LogFile: "logs/wasmbench.log",
		},
	}
}
