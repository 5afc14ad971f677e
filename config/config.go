// Package config loads config.yaml.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Data struct {
		URL          string `yaml:"url"`
		Path         string `yaml:"path"`
		DisplayLimit int    `yaml:"display_limit"`
		Watch        bool   `yaml:"watch"`
	} `yaml:"data"`
	Model struct {
		Type        string  `yaml:"type"`
		Path        string  `yaml:"path"`
		Seed        int64   `yaml:"seed"`
		NEstimators int     `yaml:"n_estimators"`
		MaxDepth    int     `yaml:"max_depth"`
		TestRatio   float64 `yaml:"test_ratio"`
	} `yaml:"model"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Render struct {
		OutputDir string `yaml:"output_dir"`
		Size      int    `yaml:"size"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"render"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML file and fills zero values with defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Find looks for name in the working directory, then its parent, so binaries
// run from cmd/ still pick up the root config.
func Find(name string) (string, error) {
	for _, candidate := range []string{name, filepath.Join("..", name)} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadOrDefault loads name if it can be found and falls back to Default otherwise.
func LoadOrDefault(name string) (*Config, string, error) {
	path, err := Find(name)
	if err != nil {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 5001
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Http.MaxBodyBytes == 0 {
		c.Http.MaxBodyBytes = 1 << 20
	}
	if c.Data.Path == "" {
		c.Data.Path = "exoplanets.csv"
	}
	if c.Data.DisplayLimit == 0 {
		c.Data.DisplayLimit = 20
	}
	if c.Model.Type == "" {
		c.Model.Type = "random_forest"
	}
	if c.Model.Path == "" {
		c.Model.Path = "models/habitability_model.json"
	}
	if c.Model.Seed == 0 {
		c.Model.Seed = 42
	}
	if c.Model.NEstimators == 0 {
		c.Model.NEstimators = 100
	}
	if c.Model.TestRatio == 0 {
		c.Model.TestRatio = 0.2
	}
	if c.Render.OutputDir == "" {
		c.Render.OutputDir = filepath.Join("static", "generated")
	}
	if c.Render.Size == 0 {
		c.Render.Size = 400
	}
	if c.Render.CacheSize == 0 {
		c.Render.CacheSize = 128
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ResolvePaths rewrites relative file paths against dir, normally the
// directory the config file was found in.
func (c *Config) ResolvePaths(dir string) {
	if dir == "" || dir == "." {
		return
	}
	for _, p := range []*string{&c.Data.Path, &c.Model.Path, &c.Database.Path, &c.Render.OutputDir, &c.Log.File} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate 检查配置
func (c *Config) Validate() error {
	if c.Http.Port < 0 || c.Http.Port > 65535 {
		return errors.New("http.port out of range")
	}
	if c.Model.TestRatio <= 0 || c.Model.TestRatio >= 1 {
		return errors.New("model.test_ratio must be between 0 and 1")
	}
	if c.Model.NEstimators < 0 {
		return errors.New("model.n_estimators must not be negative")
	}
	if c.Render.Size < 16 {
		return errors.New("render.size must be at least 16")
	}
	return nil
}
