// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with external services.
// This file contains the configuration loading helpers.
//
// Functions:
//   - fileExists: A simple helper to check if a file exists.
//   - LoadConfig: Implements a hierarchical configuration loader. It first reads a base
//     configuration file and then overwrites values with a second, environment-specific
//     file (e.g., .env.local.toml, .env.test.toml). The environment is determined by
//     an environment variable.
//   - ApplyEnvOverrides: Lets deployment secrets and toggles come from the process
//     environment instead of checked-in files.
package cloud

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Cloud Constants define key strings used for configuration loading.
const (
	ConfigFileBaseName  = ".env"              // The base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"             // The file extension for configuration files.
	ConfigSeparator     = "."                 // The separator used in config file names (e.g., ".env.local.toml").
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // The environment variable for specifying the config directory.
	EnvConfigRuntime    = "GCP_RUNTIME"       // The environment variable for specifying the runtime context (e.g., "local", "test", "prod").
)

// Environment variables that override values loaded from the TOML files.
const (
	EnvCatalogAPIKey         = "WORKOUT_CATALOG_API_KEY"
	EnvCatalogBaseURL        = "WORKOUT_CATALOG_BASE_URL"
	EnvCatalogHost           = "WORKOUT_CATALOG_HOST"
	EnvMediaProviderEnabled  = "WORKOUT_MEDIA_PROVIDER_ENABLED"
	EnvMediaLegacyEnabled    = "WORKOUT_MEDIA_LEGACY_ENABLED"
	EnvMediaMirrorBucket     = "WORKOUT_MEDIA_MIRROR_BUCKET"
	EnvServerPort            = "PORT"
	EnvGoogleCloudProjectID  = "GOOGLE_CLOUD_PROJECT"
	EnvTelemetryEnabled      = "WORKOUT_TELEMETRY_ENABLED"
	defaultRuntimeEnvironent = "test"
)

// fileExists checks if a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig provides a hierarchical configuration loading mechanism. It first loads a
// base configuration file and then merges or overwrites its values with an environment-specific
// configuration file. The paths and environment are determined by environment variables.
// Environment overrides are applied last.
//
// Inputs:
//   - baseConfig: A pointer to the target configuration struct that will be populated
//     from the TOML files.
//
// Outputs:
//   - error: An error if one of the existing files cannot be decoded.
func LoadConfig(baseConfig *Config) error {
	// Read the directory path for config files from an environment variable.
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	// Read the runtime environment (e.g., "local", "test"), defaulting to "test".
	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = defaultRuntimeEnvironent
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension
	slog.Debug("loading configuration", "base", baseConfigFileName, "environment", envConfigFileName)

	// Values in the environment specific file overwrite the base file.
	for _, fileName := range []string{baseConfigFileName, envConfigFileName} {
		if !fileExists(fileName) {
			continue
		}
		if _, err := toml.DecodeFile(fileName, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", fileName, err)
		}
	}

	return ApplyEnvOverrides(baseConfig)
}

// ApplyEnvOverrides copies deployment secrets and toggles from the process
// environment into the configuration. Unset variables leave the loaded values
// untouched; malformed booleans or ports are reported as errors.
func ApplyEnvOverrides(config *Config) error {
	if v, ok := os.LookupEnv(EnvCatalogAPIKey); ok {
		config.Catalog.APIKey = v
	}
	if v, ok := os.LookupEnv(EnvCatalogBaseURL); ok && v != "" {
		config.Catalog.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvCatalogHost); ok && v != "" {
		config.Catalog.Host = v
	}
	if v, ok := os.LookupEnv(EnvMediaMirrorBucket); ok {
		config.Media.MirrorBucket = v
	}
	if v, ok := os.LookupEnv(EnvGoogleCloudProjectID); ok && v != "" {
		config.Application.GoogleProjectId = v
	}

	bools := []struct {
		name   string
		target *bool
	}{
		{EnvMediaProviderEnabled, &config.Media.ProviderEnabled},
		{EnvMediaLegacyEnabled, &config.Media.LegacyFallbackEnabled},
		{EnvTelemetryEnabled, &config.Telemetry.Enabled},
	}
	for _, b := range bools {
		v, ok := os.LookupEnv(b.name)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean in %s: %w", b.name, err)
		}
		*b.target = parsed
	}

	if v, ok := os.LookupEnv(EnvServerPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return fmt.Errorf("invalid port in %s: %q", EnvServerPort, v)
		}
		config.Server.Port = port
	}
	return nil
}
