// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"strings"
	"testing"
	"time"
)

func TestNewSitemapBuilder(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	if builder == nil {
		t.Fatal("NewSitemapBuilder() returned nil")
	}
	if builder.siteURL != "https://example.com" {
		t.Errorf("siteURL = %q, want %q", builder.siteURL, "https://example.com")
	}
	if len(builder.urls) != 0 {
		t.Errorf("urls length = %d, want 0", len(builder.urls))
	}
}

func TestSitemapBuilderAddHomepage(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	builder.AddHomepage()

	if len(builder.urls) != 1 {
		t.Fatalf("urls length = %d, want 1", len(builder.urls))
	}

	url := builder.urls[0]
	if url.Loc != "https://example.com" {
		t.Errorf("Loc = %q, want %q", url.Loc, "https://example.com")
	}
	if url.Priority != "1.0" {
		t.Errorf("Priority = %q, want %q", url.Priority, "1.0")
	}
	if url.ChangeFreq != ChangeFreqDaily {
		t.Errorf("ChangeFreq = %q, want %q", url.ChangeFreq, ChangeFreqDaily)
	}
}

func TestSitemapBuilderAddPage(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	updatedAt := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	builder.AddPage(SitemapPage{
		Slug:      "about-us",
		UpdatedAt: updatedAt,
	})

	if len(builder.urls) != 1 {
		t.Fatalf("urls length = %d, want 1", len(builder.urls))
	}

	url := builder.urls[0]
	if url.Loc != "https://example.com/about-us" {
		t.Errorf("Loc = %q, want %q", url.Loc, "https://example.com/about-us")
	}
	if url.Priority != "0.8" {
		t.Errorf("Priority = %q, want %q", url.Priority, "0.8")
	}
	if url.ChangeFreq != ChangeFreqWeekly {
		t.Errorf("ChangeFreq = %q, want %q", url.ChangeFreq, ChangeFreqWeekly)
	}
	if !strings.Contains(url.LastMod, "2026-01-15") {
		t.Errorf("LastMod = %q, should contain 2026-01-15", url.LastMod)
	}
}

func TestSitemapBuilderAddPageZeroTime(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	builder.AddPage(SitemapPage{Slug: "no-date"})

	if builder.urls[0].LastMod != "" {
		t.Errorf("LastMod = %q, want empty for zero time", builder.urls[0].LastMod)
	}
}

func TestSitemapBuilderAddRegion(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	updatedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	builder.AddRegion(SitemapRegion{
		Slug:      "austin-tx",
		UpdatedAt: updatedAt,
	})

	url := builder.urls[0]
	if url.Loc != "https://example.com/locations/austin-tx" {
		t.Errorf("Loc = %q, want %q", url.Loc, "https://example.com/locations/austin-tx")
	}
	if url.Priority != "0.6" {
		t.Errorf("Priority = %q, want %q", url.Priority, "0.6")
	}
	if url.ChangeFreq != ChangeFreqMonthly {
		t.Errorf("ChangeFreq = %q, want %q", url.ChangeFreq, ChangeFreqMonthly)
	}
}

func TestSitemapBuilderBuild(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	builder.AddHomepage()
	builder.AddPages([]SitemapPage{
		{Slug: "one"},
		{Slug: "two"},
	})
	builder.AddRegions([]SitemapRegion{
		{Slug: "austin-tx"},
	})

	output, err := builder.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	content := string(output)
	if !strings.HasPrefix(content, "<?xml") {
		t.Error("Build() output should start with XML declaration")
	}
	if !strings.Contains(content, XMLNamespace) {
		t.Error("Build() output should contain the sitemap namespace")
	}
	for _, loc := range []string{
		"<loc>https://example.com</loc>",
		"<loc>https://example.com/one</loc>",
		"<loc>https://example.com/two</loc>",
		"<loc>https://example.com/locations/austin-tx</loc>",
	} {
		if !strings.Contains(content, loc) {
			t.Errorf("Build() output missing %q", loc)
		}
	}
}

func TestGenerateSitemap(t *testing.T) {
	output, err := GenerateSitemap("https://example.com",
		[]SitemapPage{{Slug: "welcome"}},
		[]SitemapRegion{{Slug: "dallas-tx"}},
	)
	if err != nil {
		t.Fatalf("GenerateSitemap() error = %v", err)
	}

	content := string(output)
	if !strings.Contains(content, "https://example.com/welcome") {
		t.Error("GenerateSitemap() should include pages")
	}
	if !strings.Contains(content, "https://example.com/locations/dallas-tx") {
		t.Error("GenerateSitemap() should include regions")
	}
}
