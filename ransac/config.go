package ransac

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	viamutils "go.viam.com/utils"
)

// Config is the JSON-loadable form of a RANSAC run's tunables.
type Config struct {
	MaxIters      int     `json:"max_iters"`
	MinimalSetLen int     `json:"minimal_set_len"`
	Seed          uint64  `json:"seed"`
	Sigma         float64 `json:"sigma"`
}

// LoadRansacConfig reads and validates a RANSAC configuration file.
func LoadRansacConfig(path string) (*Config, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening ransac config file")
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing ransac config JSON")
	}
	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the config carries usable RANSAC parameters.
func (c *Config) Validate(path string) error {
	if c.MaxIters <= 0 {
		return viamutils.NewConfigValidationFieldRequiredError(path, "max_iters")
	}
	if c.MinimalSetLen <= 0 {
		return viamutils.NewConfigValidationFieldRequiredError(path, "minimal_set_len")
	}
	if c.Sigma <= 0 {
		return viamutils.NewConfigValidationFieldRequiredError(path, "sigma")
	}
	return nil
}
