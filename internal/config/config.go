// Package config loads tool configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"designdiff/internal/align"
	"designdiff/internal/metrics"
	"designdiff/internal/report"
	"designdiff/internal/scoring"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration. Zero values mean "use the default".
type Config struct {
	Threshold  float64 `yaml:"threshold"`
	IssueCount int     `yaml:"issue_count"`

	Weights *scoring.Weights `yaml:"weights"`

	Align struct {
		Disabled        bool `yaml:"disabled"`
		MaxShift        int  `yaml:"max_shift"`
		DownscaleMaxDim int  `yaml:"downscale_max_dim"`
	} `yaml:"align"`

	Pixel struct {
		BlockSize         int     `yaml:"block_size"`
		MinorThreshold    float64 `yaml:"minor_threshold"`
		ModerateThreshold float64 `yaml:"moderate_threshold"`
		MajorThreshold    float64 `yaml:"major_threshold"`
	} `yaml:"pixel"`

	Layout struct {
		MatchThreshold     float64 `yaml:"match_threshold"`
		GoodMatchThreshold float64 `yaml:"good_match_threshold"`
	} `yaml:"layout"`

	Color struct {
		SampleStride int `yaml:"sample_stride"`
		ClusterCount int `yaml:"cluster_count"`
		Iterations   int `yaml:"iterations"`
	} `yaml:"color"`

	Content struct {
		MatchThreshold float64 `yaml:"match_threshold"`
	} `yaml:"content"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

// ApplyRunner overlays the non-zero config values onto a runner.
func (c *Config) ApplyRunner(r *metrics.Runner) {
	if c.Align.Disabled {
		r.Pixel.Align.Enabled = false
	}
	if c.Align.MaxShift > 0 {
		r.Pixel.Align.MaxShift = c.Align.MaxShift
	}
	if c.Align.DownscaleMaxDim > 0 {
		r.Pixel.Align.DownscaleMaxDim = c.Align.DownscaleMaxDim
	}

	if c.Pixel.BlockSize > 0 {
		r.Pixel.BlockSize = c.Pixel.BlockSize
	}
	if c.Pixel.MinorThreshold > 0 {
		r.Pixel.MinorThreshold = c.Pixel.MinorThreshold
	}
	if c.Pixel.ModerateThreshold > 0 {
		r.Pixel.ModerateThreshold = c.Pixel.ModerateThreshold
	}
	if c.Pixel.MajorThreshold > 0 {
		r.Pixel.MajorThreshold = c.Pixel.MajorThreshold
	}

	if c.Layout.MatchThreshold > 0 {
		r.Layout.MatchThreshold = c.Layout.MatchThreshold
	}
	if c.Layout.GoodMatchThreshold > 0 {
		r.Layout.GoodMatchThreshold = c.Layout.GoodMatchThreshold
	}

	if c.Color.SampleStride > 0 {
		r.Color.SampleStride = c.Color.SampleStride
	}
	if c.Color.ClusterCount > 0 {
		r.Color.ClusterCount = c.Color.ClusterCount
	}
	if c.Color.Iterations > 0 {
		r.Color.Iterations = c.Color.Iterations
	}

	if c.Content.MatchThreshold > 0 {
		r.Content.MatchThreshold = c.Content.MatchThreshold
	}
}

// ReportParams returns report parameters with config overrides applied.
func (c *Config) ReportParams() report.Params {
	params := report.DefaultParams()
	if c.Threshold > 0 {
		params.Threshold = c.Threshold
	}
	if c.IssueCount > 0 {
		params.IssueCount = c.IssueCount
	}
	if c.Weights != nil {
		params.Weights = *c.Weights
	}
	return params
}

// AlignOptions is a convenience for callers aligning outside the pixel metric.
func (c *Config) AlignOptions() align.Options {
	opts := align.DefaultOptions()
	if c.Align.Disabled {
		opts.Enabled = false
	}
	if c.Align.MaxShift > 0 {
		opts.MaxShift = c.Align.MaxShift
	}
	if c.Align.DownscaleMaxDim > 0 {
		opts.DownscaleMaxDim = c.Align.DownscaleMaxDim
	}
	return opts
}
