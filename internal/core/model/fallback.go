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

// Package model defines the data structures for the application. This file,
// `fallback.go`, holds the static fallback catalog: a small, hardcoded list of
// generic exercises in the same raw-record shape the live catalog returns.
//
// The fallback catalog is substituted by callers when the primary catalog is
// entirely unreachable, and its derived accessors populate the filter pickers
// when the live option-listing calls fail. The data is immutable; every
// accessor returns a fresh copy so callers cannot mutate the shared list.
package model

import (
	"slices"
	"strings"
)

// FallbackCatalogName is the provenance tag used for records served from the static catalog.
const FallbackCatalogName = "static"

var fallbackExercises = []Exercise{
	{ID: "0001", Name: "3/4 sit-up", BodyPart: "waist", Target: "abs", Equipment: "body weight", SecondaryMuscles: []string{"hip flexors", "lower back"}},
	{ID: "0025", Name: "barbell bench press", BodyPart: "chest", Target: "pectorals", Equipment: "barbell", SecondaryMuscles: []string{"triceps", "shoulders"}},
	{ID: "0032", Name: "barbell deadlift", BodyPart: "upper legs", Target: "glutes", Equipment: "barbell", SecondaryMuscles: []string{"hamstrings", "lower back"}},
	{ID: "0294", Name: "dumbbell biceps curl", BodyPart: "upper arms", Target: "biceps", Equipment: "dumbbell", SecondaryMuscles: []string{"forearms"}},
	{ID: "0405", Name: "dumbbell seated shoulder press", BodyPart: "shoulders", Target: "delts", Equipment: "dumbbell", SecondaryMuscles: []string{"triceps"}},
	{ID: "0652", Name: "pull-up", BodyPart: "back", Target: "lats", Equipment: "body weight", SecondaryMuscles: []string{"biceps", "forearms"}},
	{ID: "0662", Name: "push-up", BodyPart: "chest", Target: "pectorals", Equipment: "body weight", SecondaryMuscles: []string{"triceps", "shoulders", "core"}},
	{ID: "1160", Name: "burpee", BodyPart: "cardio", Target: "cardiovascular system", Equipment: "body weight", SecondaryMuscles: []string{"quadriceps", "shoulders"}},
	{ID: "1373", Name: "bodyweight standing calf raise", BodyPart: "lower legs", Target: "calves", Equipment: "body weight"},
	{ID: "3214", Name: "kettlebell goblet squat", BodyPart: "upper legs", Target: "quads", Equipment: "kettlebell", SecondaryMuscles: []string{"glutes", "hamstrings"}},
}

// GetFallbackExercises returns a copy of the static fallback catalog, in its fixed order.
func GetFallbackExercises() []Exercise {
	out := make([]Exercise, 0, len(fallbackExercises))
	for _, e := range fallbackExercises {
		e.SecondaryMuscles = slices.Clone(e.SecondaryMuscles)
		out = append(out, e)
	}
	return out
}

// UniqueBodyParts returns the sorted, de-duplicated body parts of the fallback catalog.
func UniqueBodyParts() []string {
	return uniqueField(func(e Exercise) string { return e.BodyPart })
}

// UniqueTargets returns the sorted, de-duplicated target muscles of the fallback catalog.
func UniqueTargets() []string {
	return uniqueField(func(e Exercise) string { return e.Target })
}

// UniqueEquipment returns the sorted, de-duplicated equipment of the fallback catalog.
func UniqueEquipment() []string {
	return uniqueField(func(e Exercise) string { return e.Equipment })
}

func uniqueField(field func(Exercise) string) []string {
	out := make([]string, 0, len(fallbackExercises))
	for _, e := range fallbackExercises {
		if v := strings.TrimSpace(field(e)); v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
