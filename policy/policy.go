// Package policy holds the classification policy as data.
//
// The rule catalog fixes what is observed; the policy fixes the knobs the
// catalog is allowed to expose: the artifact size threshold, the severity
// of the size rule, and the policy identifier embedded in every report.
// Policies load from YAML so CI pipelines can tune thresholds without a
// rebuild, and a changed policy never changes which signals exist.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSizeThresholdBytes is the R-SIZE-01 trigger threshold (200 KiB).
const DefaultSizeThresholdBytes = 200 * 1024

// Policy parameterizes rule evaluation and classification.
type Policy struct {
	// Name is embedded in the report's classification block.
	Name string `yaml:"name"`

	// SizeThresholdBytes is the artifact size above which R-SIZE-01 fires.
	SizeThresholdBytes uint64 `yaml:"size-threshold-bytes"`

	// SizeSeverity is the severity assigned to R-SIZE-01: "Med" or "High".
	SizeSeverity string `yaml:"size-severity"`
}

// Default returns the default policy.
func Default() Policy {
	return Policy{
		Name:               "default",
		SizeThresholdBytes: DefaultSizeThresholdBytes,
		SizeSeverity:       "Med",
	}
}

// Load reads a policy from a YAML file. Omitted fields keep their
// defaults; present fields are validated.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML policy document.
func Parse(data []byte) (Policy, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("decode policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks the policy's fields.
func (p Policy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("policy name must not be empty")
	}
	if p.SizeSeverity != "Med" && p.SizeSeverity != "High" {
		return fmt.Errorf("size-severity must be Med or High, got %q", p.SizeSeverity)
	}
	if p.SizeThresholdBytes == 0 {
		return fmt.Errorf("size-threshold-bytes must be positive")
	}
	return nil
}
