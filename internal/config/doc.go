// Package config provides centralized configuration management for the
// kpilens engine. It handles loading configuration from multiple sources,
// validation, and a type-safe API for the rest of the application.
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// All environment variables use the KPILENS_* prefix:
//
//	KPILENS_LOGGING_LEVEL=debug
//	KPILENS_CACHE_TTL=30m
//	KPILENS_RADAR_LIBRARY_PATH=spec/radar-dimensions.json
package config
