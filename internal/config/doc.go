// Package config loads the dashboard server configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//	1. Default()
//	2. A YAML file: $SALESDASH_CONFIG, ./config.yaml or ./configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// Variables follow the section layout of Config under the SALESDASH prefix:
//
//	SALESDASH_SERVER_PORT=8080
//	SALESDASH_UPLOAD_MAX_BYTES=20971520
//	SALESDASH_SESSION_TTL=2h
//	SALESDASH_CHART_WIDTH=1280
//	SALESDASH_DATA_DAY_FIRST=false
//	SALESDASH_LOGGING_LEVEL=debug
//
// # Validation
//
// Struct tags are checked with go-playground/validator after all sources are
// merged; Load fails on out-of-range ports, non-positive timeouts or unknown
// enum values.
package config
