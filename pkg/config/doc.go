// Package config defines the root configuration for the saturn governance
// engine and its loading pipeline: YAML file, defaults, environment variable
// overrides (SATURN_SECTION_FIELD), and validation.
package config
