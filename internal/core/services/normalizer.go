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

package services

import (
	"net/url"
	"path"
	"strings"

	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SynthesizedSource is the provenance suffix of generated descriptions.
const SynthesizedSource = "synthesized"

// Normalizer maps a raw record and its optional enrichment to WorkoutContent.
// It is pure: the same inputs always produce the same output.
type Normalizer struct {
	ProxyPath string // Path of the media proxy endpoint.
}

func NewNormalizer(proxyPath string) *Normalizer {
	return &Normalizer{ProxyPath: proxyPath}
}

// Normalize builds the unified record. catalogName and enrichmentName feed
// the provenance tag; enrichment may be nil.
func (n *Normalizer) Normalize(catalogName string, enrichmentName string, e model.Exercise, enrichment *model.Enrichment) *model.WorkoutContent {
	title := Title(e.Name)
	mediaURL := n.MediaURL(e)

	out := &model.WorkoutContent{
		ID:               e.ID,
		Title:            title,
		MediaURL:         mediaURL,
		PreviewURL:       mediaURL,
		ThumbnailURL:     mediaURL,
		MediaType:        MediaTypeOf(e.GifURL),
		BodyPart:         e.BodyPart,
		Target:           e.Target,
		Equipment:        e.Equipment,
		PrimaryMuscles:   bounded(nonEmpty(e.Target)),
		SecondaryMuscles: bounded(nonEmpty(e.SecondaryMuscles...)),
		EquipmentList:    bounded(nonEmpty(e.Equipment)),
	}

	if enrichment != nil && strings.TrimSpace(enrichment.DescriptionText) != "" {
		out.Description = enrichment.DescriptionText
		out.InstructionsHTML = enrichment.DescriptionHTML
		out.Source = catalogName + "+" + enrichmentName
		return out
	}
	out.Description = SynthesizeDescription(title, e)
	out.InstructionsHTML = paragraph(out.Description)
	out.Source = catalogName + "+" + SynthesizedSource
	return out
}

// MediaURL returns the proxied media reference for e: by source URL when the
// record carries one, by id otherwise. Empty when neither is known.
func (n *Normalizer) MediaURL(e model.Exercise) string {
	if src := strings.TrimSpace(e.GifURL); src != "" {
		return n.ProxyPath + "?src=" + url.QueryEscape(src)
	}
	if id := strings.TrimSpace(e.ID); id != "" {
		return n.ProxyPath + "?id=" + url.QueryEscape(id)
	}
	return ""
}

// MediaTypeOf classifies a raw media URL by extension.
func MediaTypeOf(rawURL string) model.MediaType {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".mp4":
		return model.MediaTypeMP4
	case ".png", ".jpg", ".jpeg", ".webp":
		return model.MediaTypeImage
	}
	return model.MediaTypeGIF
}

// Title title-cases an exercise name. A Caser keeps state, so one is built per call.
func Title(name string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

// SynthesizeDescription builds instructions from the classification fields.
// The result is never empty.
func SynthesizeDescription(title string, e model.Exercise) string {
	if title == "" {
		title = "exercise"
	}
	clauses := []string{"Start in a stable position to perform the " + title + "."}
	if t := strings.TrimSpace(e.Target); t != "" {
		clauses = append(clauses, "Focus on engaging your "+t+".")
	}
	if b := strings.TrimSpace(e.BodyPart); b != "" {
		clauses = append(clauses, "Keep the movement controlled to protect your "+b+".")
	}
	if eq := strings.TrimSpace(e.Equipment); eq != "" {
		clauses = append(clauses, "Use the "+eq+" with a steady grip and tempo.")
	}
	return strings.Join(clauses, " ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func bounded(values []string) []string {
	if len(values) > model.MaxAuxiliaryEntries {
		return values[:model.MaxAuxiliaryEntries]
	}
	return values
}
