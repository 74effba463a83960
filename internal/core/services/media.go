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

// Package services contains the business logic for interacting with data sources.
// This file, `media.go`, defines the MediaService, the entry point of the
// media resolution proxy. Resolution itself is done by the tiered
// MediaResolutionWorkflow; the service adds mirror warming: when an id was
// served by an upstream tier, a mirror request is published so that later
// requests can be answered from the object store.
package services

import (
	"context"
	"strings"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/commands"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
)

// MediaResolver resolves media params to a stream.
type MediaResolver interface {
	Resolve(ctx context.Context, params model.MediaParams) (*model.MediaStream, error)
}

// MediaService resolves exercise media.
type MediaService struct {
	Resolver  MediaResolver
	Publisher cloud.MirrorPublisher // Optional.
}

func NewMediaService(resolver MediaResolver, publisher cloud.MirrorPublisher) *MediaService {
	return &MediaService{Resolver: resolver, Publisher: publisher}
}

// Resolve returns the media stream for params. The caller must close it.
func (s *MediaService) Resolve(ctx context.Context, params model.MediaParams) (*model.MediaStream, error) {
	stream, err := s.Resolver.Resolve(ctx, params)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(params.ID)
	if s.Publisher != nil && commands.ValidMirrorID(id) && stream.Tier != commands.TierMirror {
		s.Publisher.RequestMirror(ctx, id)
	}
	return stream, nil
}
