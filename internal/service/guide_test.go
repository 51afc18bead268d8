package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGuide(t *testing.T, dir, slug, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guides", slug+".md"), []byte(content), 0o644))
}

func newGuideLibrary(t *testing.T) *GuideService {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "guides"), 0o755))

	writeGuide(t, dir, "building-a-streak", `---
title: Building a Training Streak
description: Why daily notes beat perfect notes.
date: "2026-01-10"
tags:
  - habits
---

## Start small

Write one line after every session.
`)
	writeGuide(t, dir, "jump-shot-form", `---
title: Fixing Your Jump Shot
sport: basketball
date: "2026-02-01"
tags:
  - shooting
  - form
---

## Elbow in

Film yourself from the baseline.
`)
	writeGuide(t, dir, "offseason-notes", "Just a body, no frontmatter at all.\n")

	return NewGuideService(dir)
}

func TestGuidesSortedByDate(t *testing.T) {
	svc := newGuideLibrary(t)

	guides, err := svc.Guides()
	require.NoError(t, err)
	require.Len(t, guides, 3)
	assert.Equal(t, "jump-shot-form", guides[0].Slug)
	assert.Equal(t, "building-a-streak", guides[1].Slug)
	// Undated guides sink to the end.
	assert.Equal(t, "offseason-notes", guides[2].Slug)
}

func TestGuideParsesFrontmatter(t *testing.T) {
	svc := newGuideLibrary(t)

	guide, err := svc.Guide("jump-shot-form")
	require.NoError(t, err)
	assert.Equal(t, "Fixing Your Jump Shot", guide.Title)
	assert.Equal(t, "basketball", guide.Sport)
	assert.Equal(t, []string{"shooting", "form"}, guide.Tags)
	assert.Equal(t, 2026, guide.Date.Year())
	assert.Contains(t, guide.HTMLContent, "<h2")
	assert.GreaterOrEqual(t, guide.ReadTime, 1)
}

func TestGuideTitleFallsBackToSlug(t *testing.T) {
	svc := newGuideLibrary(t)

	guide, err := svc.Guide("offseason-notes")
	require.NoError(t, err)
	assert.Equal(t, "Offseason Notes", guide.Title)
	assert.Empty(t, guide.Sport)
}

func TestGuideNotFound(t *testing.T) {
	svc := newGuideLibrary(t)

	_, err := svc.Guide("does-not-exist")
	assert.ErrorContains(t, err, "guide not found")
}

func TestGuidesBySport(t *testing.T) {
	svc := newGuideLibrary(t)

	// Sportless guides apply to everyone, so a basketball player sees
	// all three.
	basketball, err := svc.GuidesBySport("Basketball")
	require.NoError(t, err)
	assert.Len(t, basketball, 3)

	soccer, err := svc.GuidesBySport("soccer")
	require.NoError(t, err)
	require.Len(t, soccer, 2)
	for _, g := range soccer {
		assert.Empty(t, g.Sport)
	}
}

func TestGuidesByTag(t *testing.T) {
	svc := newGuideLibrary(t)

	shooting, err := svc.GuidesByTag("Shooting")
	require.NoError(t, err)
	require.Len(t, shooting, 1)
	assert.Equal(t, "jump-shot-form", shooting[0].Slug)

	none, err := svc.GuidesByTag("nutrition")
	require.NoError(t, err)
	assert.Empty(t, none)
}
