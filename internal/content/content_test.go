// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/blockcms/internal/model"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		blockType string
		raw       string
		wantErr   bool
	}{
		{"text valid", model.BlockTypeText, `{"value":"hello"}`, false},
		{"richtext valid", model.BlockTypeRichtext, `{"markdown":"# Hi"}`, false},
		{"image valid", model.BlockTypeImage, `{"url":"/img/a.png","alt":"a"}`, false},
		{"cta valid", model.BlockTypeCTA, `{"text":"Go","url":"https://example.com"}`, false},
		{"list valid", model.BlockTypeList, `{"items":["a","b"]}`, false},
		{"faq valid", model.BlockTypeFAQ, `{"items":[{"question":"Q?","answer":"A"}]}`, false},
		{"banner valid", model.BlockTypeBanner, `{"heading":"Big"}`, false},
		{"unknown type", "carousel", `{}`, true},
		{"unknown field rejected", model.BlockTypeText, `{"value":"x","extra":1}`, true},
		{"malformed json", model.BlockTypeText, `{"value":`, true},
		{"wrong shape", model.BlockTypeList, `{"items":"not-a-list"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.blockType, []byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		blockType string
		raw       string
		wantField string // empty means valid
	}{
		{"text ok", model.BlockTypeText, `{"value":"hello"}`, ""},
		{"text empty", model.BlockTypeText, `{"value":"   "}`, "value"},
		{"richtext needs one of", model.BlockTypeRichtext, `{}`, "html"},
		{"richtext markdown only ok", model.BlockTypeRichtext, `{"markdown":"hi"}`, ""},
		{"image missing url", model.BlockTypeImage, `{"alt":"x"}`, "url"},
		{"image bad url", model.BlockTypeImage, `{"url":"javascript:alert(1)"}`, "url"},
		{"image internal path ok", model.BlockTypeImage, `{"url":"/uploads/a.png"}`, ""},
		{"cta missing text", model.BlockTypeCTA, `{"url":"/go"}`, "text"},
		{"list empty items", model.BlockTypeList, `{"items":[]}`, "items"},
		{"list blank item", model.BlockTypeList, `{"items":["a","  "]}`, "items[1]"},
		{"faq blank question", model.BlockTypeFAQ, `{"items":[{"question":""}]}`, "items[0].question"},
		{"banner missing heading", model.BlockTypeBanner, `{"subheading":"s"}`, "heading"},
		{"banner cta text without url", model.BlockTypeBanner, `{"heading":"h","cta_text":"go"}`, "cta_url"},
		{"decode failure reported", model.BlockTypeText, `not json`, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.blockType, []byte(tt.raw))
			if tt.wantField == "" {
				require.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			require.True(t, found, "expected error on field %q, got %v", tt.wantField, errs)
		})
	}
}

func TestSanitizeDraft_Richtext(t *testing.T) {
	raw := `{"html":"<p>ok</p><script>alert(1)</script>","markdown":""}`

	out, err := SanitizeDraft(model.BlockTypeRichtext, []byte(raw))
	require.NoError(t, err)

	var rc RichtextContent
	require.NoError(t, json.Unmarshal(out, &rc))
	require.Contains(t, rc.HTML, "<p>ok</p>")
	require.NotContains(t, rc.HTML, "script")
}

func TestSanitizeDraft_NonRichtextPassthrough(t *testing.T) {
	raw := `{"value":"<script>x</script>"}`

	out, err := SanitizeDraft(model.BlockTypeText, []byte(raw))
	require.NoError(t, err)
	// Plain text content is stored as-is; escaping is the renderer's job
	require.JSONEq(t, raw, string(out))
}

func TestSanitizeDraft_MalformedJSON(t *testing.T) {
	_, err := SanitizeDraft(model.BlockTypeText, []byte(`not json`))
	require.ErrorIs(t, err, ErrMalformedContent)

	_, err = SanitizeDraft(model.BlockTypeRichtext, []byte(`{broken`))
	require.ErrorIs(t, err, ErrMalformedContent)
}

func TestRenderPublished_MarkdownToHTML(t *testing.T) {
	raw := `{"markdown":"## Heading\n\nSome **bold** text."}`

	out, err := RenderPublished(model.BlockTypeRichtext, []byte(raw))
	require.NoError(t, err)

	var rc RichtextContent
	require.NoError(t, json.Unmarshal(out, &rc))
	require.Contains(t, rc.HTML, "<h2")
	require.Contains(t, rc.HTML, "<strong>bold</strong>")
	require.Empty(t, rc.Markdown, "markdown source must not be exposed")
}

func TestRenderPublished_SanitizesRenderedHTML(t *testing.T) {
	raw := `{"markdown":"hello <script>alert(1)</script>"}`

	out, err := RenderPublished(model.BlockTypeRichtext, []byte(raw))
	require.NoError(t, err)
	require.False(t, strings.Contains(string(out), "<script>"))
}

func TestRenderPublished_HTMLWins(t *testing.T) {
	raw := `{"html":"<p>stored</p>","markdown":"# ignored"}`

	out, err := RenderPublished(model.BlockTypeRichtext, []byte(raw))
	require.NoError(t, err)

	var rc RichtextContent
	require.NoError(t, json.Unmarshal(out, &rc))
	require.Equal(t, "<p>stored</p>", rc.HTML)
}

func TestRenderPublished_OtherTypesUnchanged(t *testing.T) {
	raw := `{"value":"plain"}`

	out, err := RenderPublished(model.BlockTypeText, []byte(raw))
	require.NoError(t, err)
	require.Equal(t, raw, string(out))
}

func TestIsValidLink(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{"/internal/path", true},
		{"https://example.com/a", true},
		{"http://example.com", true},
		{"//protocol-relative", false},
		{"javascript:alert(1)", false},
		{"ftp://example.com", false},
		{"", false},
		{"relative/path", false},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			if got := IsValidLink(tt.link); got != tt.want {
				t.Errorf("IsValidLink(%q) = %v, want %v", tt.link, got, tt.want)
			}
		})
	}
}
