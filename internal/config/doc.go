// Package config provides centralized configuration for the F1 Insights
// dashboard, the report CLI and their shared analytics tuning.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values from the struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern F1_<SECTION>_<FIELD>:
//
//	F1_SERVER_PORT=8080
//	F1_PATHS_DATA_DIR=/srv/f1/data
//	F1_LOGGING_LEVEL=debug
//	F1_ANALYTICS_TARGET_YEAR=2026
//	F1_ANALYTICS_FOREST_TREES=50
//
// F1_CONFIG_FILE points at an explicit YAML file. Without it the loader looks
// for config.yaml and configs/config.yaml relative to the working directory.
//
// # Paths
//
// Relative directories resolve against the working directory when they exist
// there and against the executable directory otherwise:
//
//	paths, err := cfg.GetPaths()
//	tables, err := dataset.Load(ctx, paths.DataDir)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
package config
