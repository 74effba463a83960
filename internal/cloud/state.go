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

// Package cloud provides a centralized way to manage and initialize clients
// for the external services the application talks to.
//
// The service only needs Google Cloud when the media mirror is configured.
// Without a mirror bucket, NewCloudServiceClients creates the shared HTTP
// client only, which keeps local runs free of credentials.
package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
)

// DefaultMirrorDedupeWindow collapses repeated mirror requests for the same id.
const DefaultMirrorDedupeWindow = time.Hour

// ServiceClients holds the clients shared by every request.
type ServiceClients struct {
	HTTPClient      *http.Client               // Shared, traced HTTP client for every outbound adapter.
	StorageClient   *storage.Client            // Client for Google Cloud Storage. Nil without a mirror bucket.
	PubsubClient    *pubsub.Client             // Client for Google Cloud Pub/Sub. Nil without a mirror bucket.
	MirrorStore     ObjectStore                // Mirror bucket. Nil when disabled.
	MirrorPublisher MirrorPublisher            // Publisher for mirror requests. Nil when disabled.
	PubSubListeners map[string]*PubSubListener // Active listeners, keyed by the logical name from the config.
}

// Close releases every client that was created.
func (c *ServiceClients) Close() {
	if p, ok := c.MirrorPublisher.(*PubSubMirrorPublisher); ok {
		p.Stop()
	}
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.HTTPClient != nil {
		c.HTTPClient.CloseIdleConnections()
	}
}

// NewCloudServiceClients initializes the clients required by config.
//
// Inputs:
//   - ctx: The context for client creation.
//   - config: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The initialized clients.
//   - error: Any error from creating the Google Cloud clients.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	cloud = &ServiceClients{
		HTTPClient:      NewHTTPClient(Seconds(config.Media.TimeoutInSeconds, 10*time.Second) * 2),
		PubSubListeners: make(map[string]*PubSubListener),
	}

	if config.Media.MirrorBucket == "" {
		slog.Info("media mirror disabled; running without Google Cloud clients")
		return cloud, nil
	}

	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	cloud.StorageClient = sc
	cloud.MirrorStore = NewGCSObjectStore(sc, config.Media.MirrorBucket,
		fmt.Sprintf("public, max-age=%d", config.Media.CacheMaxAgeInSeconds))

	if len(config.TopicSubscriptions) == 0 {
		return cloud, nil
	}

	pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		cloud.Close()
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	cloud.PubsubClient = pc

	// Commands are attached later, once the workflows are built.
	for subKey, values := range config.TopicSubscriptions {
		listener, err := NewPubSubListener(pc, values.Name, nil)
		if err != nil {
			cloud.Close()
			return nil, err
		}
		cloud.PubSubListeners[subKey] = listener
	}

	if mirror, ok := config.TopicSubscriptions[MirrorTopicKey]; ok && mirror.Topic != "" {
		cloud.MirrorPublisher = NewPubSubMirrorPublisher(pc, mirror.Topic, DefaultMirrorDedupeWindow)
	}
	return cloud, nil
}
