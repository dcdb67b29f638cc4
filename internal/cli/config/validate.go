package config

import (
	"fmt"

	"github.com/reshape/code-gen/pkg/codegen"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := codegen.NewOptions(c.CodegenOptions()...).Validate(); err != nil {
		return err
	}

	switch c.OutputFormat {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("invalid output format %q (want %s or %s)", c.OutputFormat, OutputText, OutputJSON)
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", c.Concurrency)
	}
	return nil
}
