package calib

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	viamutils "go.viam.com/utils"

	"go.viam.com/slamcore/utils"
)

// Config is the JSON-loadable form of a camera's calibration.
type Config struct {
	Width         int        `json:"width_px"`
	Height        int        `json:"height_px"`
	Fx            float64    `json:"fx"`
	Fy            float64    `json:"fy"`
	Cx            float64    `json:"cx"`
	Cy            float64    `json:"cy"`
	Distortion    Distortion `json:"distortion"`
	Bf            float64    `json:"bf"`
	ThDepth       float64    `json:"th_depth"`
}

// LoadCalibConfig reads and validates a calibration file.
func LoadCalibConfig(path string) (*Config, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening calibration file")
	}
	guard := utils.NewGuard(func() { f.Close() })
	defer guard.OnFail()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing calibration JSON")
	}
	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	guard.Success()
	return &cfg, nil
}

// Validate checks that the config carries a usable projective camera model.
func (c *Config) Validate(path string) error {
	if c.Width <= 0 || c.Height <= 0 {
		return viamutils.NewConfigValidationError(path, errors.New("width_px and height_px must be positive"))
	}
	if c.Fx <= 0 {
		return viamutils.NewConfigValidationFieldRequiredError(path, "fx")
	}
	if c.Fy <= 0 {
		return viamutils.NewConfigValidationFieldRequiredError(path, "fy")
	}
	return nil
}

// Intrinsics builds an *Intrinsics from the config.
func (c *Config) Intrinsics() (*Intrinsics, error) {
	return NewIntrinsics(c.Width, c.Height, c.Fx, c.Fy, c.Cx, c.Cy, c.Distortion, c.Bf, c.ThDepth)
}
