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
// This file, `catalog.go`, defines the ExerciseCatalog abstraction and the
// CatalogService, the keyed HTTP client for the primary exercise catalog.
//
// The catalog only supports one selector per request, so the service picks
// the most specific one available (search > target > bodyPart > none),
// fetches the full matching set and slices it locally.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
)

// maxErrorBody bounds how much of an upstream error body is kept.
const maxErrorBody = 512

// ExerciseCatalog is a source of raw exercise records.
type ExerciseCatalog interface {
	// Name is the provenance tag of records served by this catalog.
	Name() string
	// Fetch returns the page [Offset, Offset+Limit) of the records matching
	// the query's selector. A non-positive Limit returns everything after Offset.
	Fetch(ctx context.Context, query model.CatalogQuery) ([]model.Exercise, error)
	ListBodyParts(ctx context.Context) ([]string, error)
	ListTargets(ctx context.Context) ([]string, error)
	ListEquipment(ctx context.Context) ([]string, error)
}

// CatalogService is the HTTP client for the primary exercise catalog.
type CatalogService struct {
	Client  cloud.HTTPDoer
	Config  cloud.Catalog
	Timeout time.Duration
}

// NewCatalogService creates a catalog client from configuration.
func NewCatalogService(client cloud.HTTPDoer, config cloud.Catalog) *CatalogService {
	return &CatalogService{
		Client:  client,
		Config:  config,
		Timeout: cloud.Seconds(config.TimeoutInSeconds, 8*time.Second),
	}
}

func (s *CatalogService) Name() string {
	return s.Config.Name
}

// Fetch retrieves the records matching the query selector and applies the
// requested window locally.
//
// Errors:
//   - *model.UpstreamError on a non-success status, a transport failure, a
//     timeout or an undecodable body.
func (s *CatalogService) Fetch(ctx context.Context, query model.CatalogQuery) ([]model.Exercise, error) {
	var records []model.Exercise
	if err := s.get(ctx, SelectorPath(query), &records); err != nil {
		return nil, err
	}
	return Window(records, query.Offset, query.Limit), nil
}

func (s *CatalogService) ListBodyParts(ctx context.Context) ([]string, error) {
	return s.list(ctx, "/exercises/bodyPartList")
}

func (s *CatalogService) ListTargets(ctx context.Context) ([]string, error) {
	return s.list(ctx, "/exercises/targetList")
}

func (s *CatalogService) ListEquipment(ctx context.Context) ([]string, error) {
	return s.list(ctx, "/exercises/equipmentList")
}

func (s *CatalogService) list(ctx context.Context, path string) ([]string, error) {
	values := make([]string, 0)
	if err := s.get(ctx, path, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// SelectorPath returns the catalog path for the most specific selector in query.
func SelectorPath(query model.CatalogQuery) string {
	segment := func(v string) string {
		return url.PathEscape(strings.ToLower(strings.TrimSpace(v)))
	}
	switch {
	case strings.TrimSpace(query.Search) != "":
		return "/exercises/name/" + segment(query.Search)
	case strings.TrimSpace(query.Target) != "":
		return "/exercises/target/" + segment(query.Target)
	case strings.TrimSpace(query.BodyPart) != "":
		return "/exercises/bodyPart/" + segment(query.BodyPart)
	}
	return "/exercises?limit=0"
}

// Window returns records[offset:offset+limit], clipped to the slice bounds.
func Window[T any](records []T, offset int, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []T{}
	}
	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end]
}

func (s *CatalogService) get(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.Config.BaseURL, "/")+path, nil)
	if err != nil {
		return &model.UpstreamError{Source: s.Name(), Err: errors.New("malformed catalog url")}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-RapidAPI-Key", s.Config.APIKey)
	req.Header.Set("X-RapidAPI-Host", s.Config.Host)

	resp, err := s.Client.Do(req)
	if err != nil {
		return &model.UpstreamError{Source: s.Name(), Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &model.UpstreamError{Source: s.Name(), StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &model.UpstreamError{Source: s.Name(), Err: fmt.Errorf("failed to decode %s: %w", path, unwrapURLError(err))}
	}
	return nil
}

// unwrapURLError drops the request URL from transport errors.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
