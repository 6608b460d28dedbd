package allocation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyConfig holds the eligibility policy knobs for the engine.
type PolicyConfig struct {
	// BaselineQuality is the score assumed for requests that carry no
	// quality score.
	BaselineQuality float64 `json:"baseline_quality" yaml:"baseline_quality"`

	// ThresholdFactor scales the baseline to the eligibility threshold. A
	// request is eligible iff its effective score >= baseline * factor.
	ThresholdFactor float64 `json:"threshold_factor" yaml:"threshold_factor"`
}

func (p *PolicyConfig) SetupDefault() {
	if p.BaselineQuality <= 0 {
		p.BaselineQuality = 80
	}
	if p.ThresholdFactor <= 0 {
		p.ThresholdFactor = 0.8
	}
}

// EligibilityThreshold is the minimum effective quality score a request needs
// to receive any allocation (64 with the default policy).
func (p *PolicyConfig) EligibilityThreshold() float64 {
	return p.BaselineQuality * p.ThresholdFactor
}

// LoadPolicyConfig reads a policy config from a yaml file, fills defaults and
// validates the result.
func LoadPolicyConfig(path string) (*PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy config: %w", err)
	}

	config := &PolicyConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse policy config %s: %w", path, err)
	}
	config.SetupDefault()

	if config.BaselineQuality > 100 {
		return nil, fmt.Errorf("invalid policy config %s: baseline_quality must be in (0,100], got %v", path, config.BaselineQuality)
	}
	if config.ThresholdFactor > 1 {
		return nil, fmt.Errorf("invalid policy config %s: threshold_factor must be in (0,1], got %v", path, config.ThresholdFactor)
	}
	return config, nil
}
