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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the external collaborators of the service: the exercise catalog, the
// description enrichment source, the media providers, the optional object
// store mirror and its Pub/Sub topic.
//
// Structs:
//   - Server: HTTP listener settings.
//   - Catalog: Configuration for the primary exercise catalog (keyed access).
//   - Enrichment: Configuration for the secondary description source.
//   - Media: Configuration for the media resolution tiers.
//   - Search: Paging bounds and response caching for the search endpoint.
//   - Telemetry: OpenTelemetry exporter toggles.
//   - TopicSubscription: Configuration for a single Pub/Sub topic subscription.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that returns a Config populated with defaults.
package cloud

import "time"

// Server holds the HTTP listener configuration.
type Server struct {
	Port                    int `toml:"port"`                       // The TCP port to listen on.
	ReadTimeoutInSeconds    int `toml:"read_timeout_in_seconds"`    // http.Server ReadTimeout.
	WriteTimeoutInSeconds   int `toml:"write_timeout_in_seconds"`   // http.Server WriteTimeout.
	ShutdownTimeoutInSecond int `toml:"shutdown_timeout_in_second"` // Grace period for in-flight requests on shutdown.
}

// Catalog represents the configuration of the primary exercise catalog.
type Catalog struct {
	Name             string `toml:"name"`               // Provenance tag for records from this catalog (e.g. "exercisedb").
	BaseURL          string `toml:"base_url"`           // Provider base URL, e.g. https://exercisedb.p.rapidapi.com.
	Host             string `toml:"host"`               // Value for the X-RapidAPI-Host header.
	APIKey           string `toml:"api_key"`            // Provider credential. Usually supplied by WORKOUT_CATALOG_API_KEY.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Per-call timeout.
}

// Enrichment represents the configuration of the description enrichment source.
type Enrichment struct {
	Name             string `toml:"name"`               // Provenance tag (e.g. "wger").
	BaseURL          string `toml:"base_url"`           // e.g. https://wger.de/api/v2
	Language         int    `toml:"language"`           // Language id used by the source for English.
	ResultLimit      int    `toml:"result_limit"`       // Upper bound of candidates requested per lookup.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Per-call timeout.
	RateLimit        int    `toml:"rate_limit"`         // Requests per second allowed against the source.
}

// Media represents the configuration of the media resolution tiers.
type Media struct {
	ProviderEnabled       bool   `toml:"provider_enabled"`        // Enables the keyed provider tier (uses the catalog credentials).
	ProviderResolution    string `toml:"provider_resolution"`     // Resolution requested from the provider image endpoint.
	LegacyFallbackEnabled bool   `toml:"legacy_fallback_enabled"` // Enables the legacy CDN tier.
	LegacyBaseURL         string `toml:"legacy_base_url"`         // Legacy CDN base, e.g. https://d205bpvrqc9yn1.cloudfront.net
	TimeoutInSeconds      int    `toml:"timeout_in_seconds"`      // Per-tier timeout.
	CacheMaxAgeInSeconds  int    `toml:"cache_max_age_in_seconds"`
	ProxyPath             string `toml:"proxy_path"`    // Path the normalizer uses to build proxied media URLs.
	MirrorBucket          string `toml:"mirror_bucket"` // Optional object store bucket that mirrors upstream media.
	MirrorPrefix          string `toml:"mirror_prefix"` // Object name prefix inside MirrorBucket.
}

// Search represents paging bounds for the search orchestrator.
type Search struct {
	DefaultLimit         int `toml:"default_limit"`
	MinLimit             int `toml:"min_limit"`
	MaxLimit             int `toml:"max_limit"`
	FetchMargin          int `toml:"fetch_margin"` // Extra records fetched to compensate for the equipment post-filter.
	CacheMaxAgeInSeconds int `toml:"cache_max_age_in_seconds"`
}

// Telemetry toggles the OpenTelemetry exporters.
type Telemetry struct {
	Enabled  bool   `toml:"enabled"`   // Export traces and metrics to Google Cloud.
	LogLevel string `toml:"log_level"` // debug, info, warn or error.
	LogFile  string `toml:"log_file"`  // Optional file that mirrors stdout logs.
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	Topic            string `toml:"topic"`              // The topic messages are published to.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Config represents the overall configuration for the application, loaded from TOML files.
// It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application, used as the telemetry service name.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
		ThreadPoolSize  int    `toml:"thread_pool_size"`  // Bound on concurrent enrichment calls per search request.
	} `toml:"application"`
	Server             Server                       `toml:"server"`
	Catalog            Catalog                      `toml:"catalog"`
	Enrichment         Enrichment                   `toml:"enrichment"`
	Media              Media                        `toml:"media"`
	Search             Search                       `toml:"search"`
	Telemetry          Telemetry                    `toml:"telemetry"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Keyed by a logical name (e.g., "MirrorTopic").
}

// MirrorTopicKey is the logical name of the subscription that feeds the media mirror workflow.
const MirrorTopicKey = "MirrorTopic"

// NewConfig is a constructor function that creates a new, initialized Config instance.
// Maps are initialized so the TOML decoder can populate them, and every
// numeric setting gets a sane default so a partially specified file still
// yields a working service.
//
// Outputs:
//   - *Config: A pointer to a new Config struct.
func NewConfig() *Config {
	c := &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
	c.Application.Name = "workout-content-service"
	c.Application.ThreadPoolSize = 4

	c.Server = Server{Port: 8080, ReadTimeoutInSeconds: 20, WriteTimeoutInSeconds: 30, ShutdownTimeoutInSecond: 5}
	c.Catalog = Catalog{
		Name:             "exercisedb",
		BaseURL:          "https://exercisedb.p.rapidapi.com",
		Host:             "exercisedb.p.rapidapi.com",
		TimeoutInSeconds: 8,
	}
	c.Enrichment = Enrichment{
		Name:             "wger",
		BaseURL:          "https://wger.de/api/v2",
		Language:         2,
		ResultLimit:      5,
		TimeoutInSeconds: 4,
		RateLimit:        10,
	}
	c.Media = Media{
		ProviderEnabled:       true,
		ProviderResolution:    "180",
		LegacyFallbackEnabled: true,
		LegacyBaseURL:         "https://d205bpvrqc9yn1.cloudfront.net",
		TimeoutInSeconds:      10,
		CacheMaxAgeInSeconds:  86400,
		ProxyPath:             "/api/v1/workouts/media",
		MirrorPrefix:          "media/",
	}
	c.Search = Search{DefaultLimit: 12, MinLimit: 6, MaxLimit: 24, FetchMargin: 6, CacheMaxAgeInSeconds: 300}
	c.Telemetry = Telemetry{LogLevel: "info"}
	return c
}

// Seconds converts a configured number of seconds into a time.Duration,
// falling back to def when the value is not positive.
func Seconds(value int, def time.Duration) time.Duration {
	if value <= 0 {
		return def
	}
	return time.Duration(value) * time.Second
}
