// Package config loads the run configuration for spielplan.
//
// Values are layered: built-in defaults, then the YAML config file
// (spielplan.yaml or $SPIELPLAN_CONFIG), then SPIELPLAN_* environment
// variables, which may also come from a .env file. The result is validated
// and passed explicitly to the pipeline.
package config
