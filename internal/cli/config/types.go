// Package config provides configuration management for the reshape CLI.
package config

import (
	"github.com/reshape/code-gen/pkg/codegen"
)

// Default configuration values.
const (
	DefaultSelfClosing = string(codegen.SelfClosingClose)
	DefaultRuntimeName = codegen.DefaultRuntimeName
	DefaultRuntimeDir  = "helpers"
	DefaultOutput      = OutputText
	DefaultConcurrency = 4
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds all CLI configuration options.
type Config struct {
	SelfClosing  string `koanf:"self_closing"`
	ReturnString bool   `koanf:"return_string"`
	RuntimeName  string `koanf:"runtime_name"`
	ScopedLocals bool   `koanf:"scoped_locals"`
	RuntimeDir   string `koanf:"runtime_dir"`
	OutputFormat string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`
	Concurrency  int    `koanf:"concurrency"`
}

// CodegenOptions converts the configuration into compile options.
func (c *Config) CodegenOptions() []codegen.Option {
	return []codegen.Option{
		codegen.WithSelfClosing(codegen.SelfClosingMode(c.SelfClosing)),
		codegen.WithReturnString(c.ReturnString),
		codegen.WithRuntimeName(c.RuntimeName),
		codegen.WithScopedLocals(c.ScopedLocals),
	}
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		SelfClosing:  DefaultSelfClosing,
		RuntimeName:  DefaultRuntimeName,
		RuntimeDir:   DefaultRuntimeDir,
		OutputFormat: DefaultOutput,
		Concurrency:  DefaultConcurrency,
	}
}
