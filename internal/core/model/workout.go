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

// Package model defines the core data structures for the application.
// This file, `workout.go`, contains the unified content model returned to
// callers (`WorkoutContent`), the raw record shape produced by the exercise
// catalog (`Exercise`), and the request/response envelopes used by the
// search orchestrator and the media resolution proxy.
//
// Raw records and enrichments are transient: they only live for the duration
// of a single request, except for enrichments held by the process-wide
// enrichment cache.
package model

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MediaType enumerates the kinds of demonstration media a WorkoutContent can reference.
type MediaType string

const (
	MediaTypeGIF   MediaType = "gif"
	MediaTypeMP4   MediaType = "mp4"
	MediaTypeImage MediaType = "image"
)

// MaxAuxiliaryEntries bounds the length of the auxiliary arrays on WorkoutContent.
const MaxAuxiliaryEntries = 6

// MaxFilterLength is the longest filter value (in runes) accepted at the boundary.
const MaxFilterLength = 64

// Exercise is the raw record shape returned by the primary exercise catalog.
// The static fallback catalog uses the same shape so that it can be
// substituted transparently.
type Exercise struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	BodyPart         string   `json:"bodyPart"`
	Target           string   `json:"target"`
	Equipment        string   `json:"equipment"`
	GifURL           string   `json:"gifUrl"`
	SecondaryMuscles []string `json:"secondaryMuscles,omitempty"`
}

// Enrichment is the free-text description found by the enrichment source for
// an exercise name. A nil *Enrichment is an enrichment miss.
type Enrichment struct {
	DescriptionHTML string `json:"descriptionHtml"`
	DescriptionText string `json:"descriptionText"`
}

// WorkoutContent is the unified output record produced by the content normalizer.
type WorkoutContent struct {
	ID               string    `json:"id"`                         // Stable identifier from the primary catalog.
	Title            string    `json:"title"`                      // Title-cased exercise name.
	MediaURL         string    `json:"mediaUrl,omitempty"`         // Proxied media reference. Authoritative.
	PreviewURL       string    `json:"previewUrl,omitempty"`       // Proxied preview, same underlying asset as MediaURL.
	ThumbnailURL     string    `json:"thumbnailUrl,omitempty"`     // Proxied thumbnail, same underlying asset as MediaURL.
	MediaType        MediaType `json:"mediaType"`                  // gif, mp4 or image.
	Description      string    `json:"description"`                // Plain-text instructions. Never empty.
	InstructionsHTML string    `json:"instructionsHtml"`           // Sanitized markup rendering of Description.
	BodyPart         string    `json:"bodyPart,omitempty"`         // Classification from the catalog.
	Target           string    `json:"target,omitempty"`           // Classification from the catalog.
	Equipment        string    `json:"equipment,omitempty"`        // Classification from the catalog.
	Source           string    `json:"source"`                     // Provenance tag (catalog + enrichment combination).
	PrimaryMuscles   []string  `json:"primaryMuscles,omitempty"`   // Bounded to MaxAuxiliaryEntries.
	SecondaryMuscles []string  `json:"secondaryMuscles,omitempty"` // Bounded to MaxAuxiliaryEntries.
	EquipmentList    []string  `json:"equipmentList,omitempty"`    // Bounded to MaxAuxiliaryEntries.
}

// SearchFilters are the optional, mutually non-exclusive search filters.
type SearchFilters struct {
	Query     string `json:"q,omitempty"`
	BodyPart  string `json:"bodyPart,omitempty"`
	Target    string `json:"target,omitempty"`
	Equipment string `json:"equipment,omitempty"`
}

// Normalize trims surrounding whitespace from every filter value.
func (f SearchFilters) Normalize() SearchFilters {
	return SearchFilters{
		Query:     strings.TrimSpace(f.Query),
		BodyPart:  strings.TrimSpace(f.BodyPart),
		Target:    strings.TrimSpace(f.Target),
		Equipment: strings.TrimSpace(f.Equipment),
	}
}

// Validate rejects filter values that are too long or carry control characters.
func (f SearchFilters) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"q", f.Query},
		{"bodyPart", f.BodyPart},
		{"target", f.Target},
		{"equipment", f.Equipment},
	}
	for _, field := range fields {
		if utf8.RuneCountInString(field.value) > MaxFilterLength {
			return &ValidationError{Field: field.name, Reason: "value is too long"}
		}
		if strings.IndexFunc(field.value, unicode.IsControl) >= 0 {
			return &ValidationError{Field: field.name, Reason: "value contains control characters"}
		}
	}
	return nil
}

// CatalogQuery is the selector sent to an exercise catalog. Exactly one of
// Search, Target or BodyPart is honoured, in that priority order; when none is
// present the unfiltered catalog is fetched. Offset and Limit describe the
// in-memory page applied after the fetch.
type CatalogQuery struct {
	Search   string
	Target   string
	BodyPart string
	Offset   int
	Limit    int
}

// SearchSources records which collaborators produced a search response.
type SearchSources struct {
	Catalog    string `json:"catalog"`
	Enrichment string `json:"enrichment"`
	Fallback   bool   `json:"fallback"`
}

// SearchMeta is the metadata block returned alongside search items.
type SearchMeta struct {
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
	NextOffset *int          `json:"nextOffset"` // nil (JSON null) when the page is exhausted.
	Filters    SearchFilters `json:"filters"`
	Sources    SearchSources `json:"sources"`
	TookMs     int64         `json:"tookMs"`
}

// SearchResult is the response of the search orchestrator.
type SearchResult struct {
	Items []*WorkoutContent `json:"items"`
	Meta  SearchMeta        `json:"meta"`
}

// FilterOptions lists the values available to populate filter pickers.
type FilterOptions struct {
	BodyParts []string `json:"bodyParts"`
	Equipment []string `json:"equipment"`
	Targets   []string `json:"targets"`
}

// MediaParams identifies the media to resolve: either a catalog id or a raw URL.
type MediaParams struct {
	ID  string
	Src string
}

// MediaStream is the result of a successful media resolution. Only the body
// and the content type cross the proxy boundary.
type MediaStream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64  // -1 when unknown.
	Tier          string // Name of the tier that produced the stream.
}

// Close releases the underlying body.
func (m *MediaStream) Close() error {
	if m == nil || m.Body == nil {
		return nil
	}
	return m.Body.Close()
}

// MirrorRequest asks the background mirror workflow to copy the media of an
// exercise into the object store.
type MirrorRequest struct {
	ID string `json:"id"`
}
