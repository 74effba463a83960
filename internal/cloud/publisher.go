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

package cloud

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"github.com/patrickmn/go-cache"
)

// MirrorPublisher asks the background mirror workflow to copy media for an exercise.
type MirrorPublisher interface {
	RequestMirror(ctx context.Context, id string)
}

// PubSubMirrorPublisher publishes model.MirrorRequest messages. Requests for
// the same id are collapsed for dedupeWindow so a popular exercise does not
// flood the topic.
type PubSubMirrorPublisher struct {
	topic *pubsub.Topic
	seen  *cache.Cache
}

// NewPubSubMirrorPublisher binds a publisher to topicID.
func NewPubSubMirrorPublisher(client *pubsub.Client, topicID string, dedupeWindow time.Duration) *PubSubMirrorPublisher {
	return &PubSubMirrorPublisher{
		topic: client.Topic(topicID),
		seen:  cache.New(dedupeWindow, 2*dedupeWindow),
	}
}

// RequestMirror publishes without blocking the caller. Failures are logged
// and forget the id so the next request retries.
func (p *PubSubMirrorPublisher) RequestMirror(ctx context.Context, id string) {
	if err := p.seen.Add(id, struct{}{}, cache.DefaultExpiration); err != nil {
		return
	}
	data, err := json.Marshal(model.MirrorRequest{ID: id})
	if err != nil {
		p.seen.Delete(id)
		return
	}
	// Detach from the request context; the HTTP response may finish first.
	publishCtx := context.WithoutCancel(ctx)
	result := p.topic.Publish(publishCtx, &pubsub.Message{Data: data})
	go func() {
		if _, err := result.Get(publishCtx); err != nil {
			p.seen.Delete(id)
			slog.WarnContext(publishCtx, "failed to publish mirror request", "id", id, "error", err)
		}
	}()
}

// Stop flushes pending messages.
func (p *PubSubMirrorPublisher) Stop() {
	p.topic.Stop()
}
