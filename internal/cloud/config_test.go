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

package cloud_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseToml = `
[application]
name = "workout-content-service"

[catalog]
base_url = "https://catalog.example.com"
host = "catalog.example.com"
timeout_in_seconds = 3

[media]
provider_enabled = true
legacy_fallback_enabled = true

[topic_subscriptions.MirrorTopic]
name = "media-mirror-sub"
topic = "media-mirror"
timeout_in_seconds = 60
`

const localToml = `
[catalog]
timeout_in_seconds = 9

[media]
legacy_fallback_enabled = false
`

func writeConfigs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseToml), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local.toml"), []byte(localToml), 0o600))
	return dir
}

func clearOverrides(t *testing.T) {
	for _, name := range []string{
		cloud.EnvCatalogAPIKey, cloud.EnvCatalogBaseURL, cloud.EnvCatalogHost,
		cloud.EnvMediaProviderEnabled, cloud.EnvMediaLegacyEnabled, cloud.EnvMediaMirrorBucket,
		cloud.EnvServerPort, cloud.EnvGoogleCloudProjectID, cloud.EnvTelemetryEnabled,
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestLoadConfigLayersRuntimeFile(t *testing.T) {
	clearOverrides(t)
	t.Setenv(cloud.EnvConfigFilePrefix, writeConfigs(t))
	t.Setenv(cloud.EnvConfigRuntime, "local")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))

	assert.Equal(t, "https://catalog.example.com", config.Catalog.BaseURL)
	assert.Equal(t, 9, config.Catalog.TimeoutInSeconds)
	assert.True(t, config.Media.ProviderEnabled)
	assert.False(t, config.Media.LegacyFallbackEnabled)
	assert.Equal(t, "media-mirror", config.TopicSubscriptions[cloud.MirrorTopicKey].Topic)
	// Defaults survive when neither file sets them.
	assert.Equal(t, 12, config.Search.DefaultLimit)
	assert.Equal(t, "https://d205bpvrqc9yn1.cloudfront.net", config.Media.LegacyBaseURL)
}

func TestLoadConfigMissingFilesKeepsDefaults(t *testing.T) {
	clearOverrides(t)
	t.Setenv(cloud.EnvConfigFilePrefix, t.TempDir())
	t.Setenv(cloud.EnvConfigRuntime, "")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))
	assert.Equal(t, "https://exercisedb.p.rapidapi.com", config.Catalog.BaseURL)
	assert.Equal(t, 8080, config.Server.Port)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	clearOverrides(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte("[catalog\nbase_url="), 0o600))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)

	assert.Error(t, cloud.LoadConfig(cloud.NewConfig()))
}

func TestApplyEnvOverrides(t *testing.T) {
	clearOverrides(t)
	t.Setenv(cloud.EnvCatalogAPIKey, "secret")
	t.Setenv(cloud.EnvMediaProviderEnabled, "false")
	t.Setenv(cloud.EnvMediaMirrorBucket, "mirror-bucket")
	t.Setenv(cloud.EnvServerPort, "9090")

	config := cloud.NewConfig()
	require.NoError(t, cloud.ApplyEnvOverrides(config))

	assert.Equal(t, "secret", config.Catalog.APIKey)
	assert.False(t, config.Media.ProviderEnabled)
	assert.True(t, config.Media.LegacyFallbackEnabled)
	assert.Equal(t, "mirror-bucket", config.Media.MirrorBucket)
	assert.Equal(t, 9090, config.Server.Port)
}

func TestApplyEnvOverridesInvalidValues(t *testing.T) {
	clearOverrides(t)
	t.Setenv(cloud.EnvMediaLegacyEnabled, "sometimes")
	assert.Error(t, cloud.ApplyEnvOverrides(cloud.NewConfig()))

	clearOverrides(t)
	t.Setenv(cloud.EnvServerPort, "http")
	assert.Error(t, cloud.ApplyEnvOverrides(cloud.NewConfig()))
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 3*time.Second, cloud.Seconds(3, time.Minute))
	assert.Equal(t, time.Minute, cloud.Seconds(0, time.Minute))
	assert.Equal(t, time.Minute, cloud.Seconds(-1, time.Minute))
}
