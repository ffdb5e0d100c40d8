// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"already slug", "hello-world", "hello-world"},
		{"accents", "Café au Lait", "cafe-au-lait"},
		{"german umlauts", "Über Straße", "uber-strasse"},
		{"cyrillic", "Привет мир", "privet-mir"},
		{"punctuation stripped", "Hello, World!", "hello-world"},
		{"multiple spaces", "hello   world", "hello-world"},
		{"leading trailing", " hello ", "hello"},
		{"numbers kept", "Top 10 Tips", "top-10-tips"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
		{"mixed case", "CamelCaseTitle", "camelcasetitle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"hello-world", true},
		{"hello", true},
		{"a1-b2", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"UpperCase", false},
		{"with space", false},
		{"with_underscore", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			if got := IsValidSlug(tt.slug); got != tt.want {
				t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
			}
		})
	}
}
