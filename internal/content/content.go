// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content defines the typed content schemas for each block type and
// the boundary validation applied before content enters a block draft.
package content

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/olegiv/blockcms/internal/model"
)

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Content is the interface implemented by all typed block content shapes.
type Content interface {
	// BlockType returns the block type this content belongs to.
	BlockType() string
	// Validate returns field-level errors. An empty slice means valid.
	Validate() []FieldError
}

// TextContent is the payload of a "text" block.
type TextContent struct {
	Value string `json:"value"`
}

func (TextContent) BlockType() string { return model.BlockTypeText }

func (c TextContent) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(c.Value) == "" {
		errs = append(errs, FieldError{Field: "value", Message: "value is required"})
	}
	return errs
}

// RichtextContent is the payload of a "richtext" block. Either HTML or
// Markdown must be present; Markdown is rendered to HTML on the read path.
type RichtextContent struct {
	HTML     string `json:"html,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

func (RichtextContent) BlockType() string { return model.BlockTypeRichtext }

func (c RichtextContent) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(c.HTML) == "" && strings.TrimSpace(c.Markdown) == "" {
		errs = append(errs, FieldError{Field: "html", Message: "either html or markdown is required"})
	}
	return errs
}

// ImageContent is the payload of an "image" block.
type ImageContent struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

func (ImageContent) BlockType() string { return model.BlockTypeImage }

func (c ImageContent) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(c.URL) == "" {
		errs = append(errs, FieldError{Field: "url", Message: "url is required"})
	} else if !IsValidLink(c.URL) {
		errs = append(errs, FieldError{Field: "url", Message: "url must be an absolute URL or an internal path"})
	}
	return errs
}

// CTAContent is the payload of a "cta" (call to action) block.
type CTAContent struct {
	Text  string `json:"text"`
	URL   string `json:"url"`
	Style string `json:"style,omitempty"`
}

func (CTAContent) BlockType() string { return model.BlockTypeCTA }

func (c CTAContent) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(c.Text) == "" {
		errs = append(errs, FieldError{Field: "text", Message: "text is required"})
	}
	if strings.TrimSpace(c.URL) == "" {
		errs = append(errs, FieldError{Field: "url", Message: "url is required"})
	} else if !IsValidLink(c.URL) {
		errs = append(errs, FieldError{Field: "url", Message: "url must be an absolute URL or an internal path"})
	}
	return errs
}

// ListContent is the payload of a "list" block.
type ListContent struct {
	Title string   `json:"title,omitempty"`
	Items []string `json:"items"`
}

func (ListContent) BlockType() string { return model.BlockTypeList }

func (c ListContent) Validate() []FieldError {
	var errs []FieldError
	if len(c.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, item := range c.Items {
		if strings.TrimSpace(item) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("items[%d]", i),
				Message: "item must not be empty",
			})
		}
	}
	return errs
}

// FAQItem is a single question/answer pair in a "faq" block.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
}

// FAQContent is the payload of a "faq" block.
type FAQContent struct {
	Title string    `json:"title,omitempty"`
	Items []FAQItem `json:"items"`
}

func (FAQContent) BlockType() string { return model.BlockTypeFAQ }

func (c FAQContent) Validate() []FieldError {
	var errs []FieldError
	if len(c.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, item := range c.Items {
		if strings.TrimSpace(item.Question) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("items[%d].question", i),
				Message: "question must not be empty",
			})
		}
	}
	return errs
}

// BannerContent is the payload of a "banner" block.
type BannerContent struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	CTAText    string `json:"cta_text,omitempty"`
	CTAURL     string `json:"cta_url,omitempty"`
}

func (BannerContent) BlockType() string { return model.BlockTypeBanner }

func (c BannerContent) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(c.Heading) == "" {
		errs = append(errs, FieldError{Field: "heading", Message: "heading is required"})
	}
	if c.ImageURL != "" && !IsValidLink(c.ImageURL) {
		errs = append(errs, FieldError{Field: "image_url", Message: "image_url must be an absolute URL or an internal path"})
	}
	if c.CTAText != "" && strings.TrimSpace(c.CTAURL) == "" {
		errs = append(errs, FieldError{Field: "cta_url", Message: "cta_url is required when cta_text is set"})
	}
	if c.CTAURL != "" && !IsValidLink(c.CTAURL) {
		errs = append(errs, FieldError{Field: "cta_url", Message: "cta_url must be an absolute URL or an internal path"})
	}
	return errs
}

// Decode parses raw JSON into the typed content shape for blockType.
// Unknown fields are rejected so ad-hoc shapes cannot sneak into drafts.
func Decode(blockType string, raw []byte) (Content, error) {
	var c Content
	switch blockType {
	case model.BlockTypeText:
		c = &TextContent{}
	case model.BlockTypeRichtext:
		c = &RichtextContent{}
	case model.BlockTypeImage:
		c = &ImageContent{}
	case model.BlockTypeCTA:
		c = &CTAContent{}
	case model.BlockTypeList:
		c = &ListContent{}
	case model.BlockTypeFAQ:
		c = &FAQContent{}
	case model.BlockTypeBanner:
		c = &BannerContent{}
	default:
		return nil, fmt.Errorf("unknown block type: %q", blockType)
	}

	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding %s content: %w", blockType, err)
	}
	return deref(c), nil
}

// deref unwraps the pointer used for decoding so callers get value types.
func deref(c Content) Content {
	switch v := c.(type) {
	case *TextContent:
		return *v
	case *RichtextContent:
		return *v
	case *ImageContent:
		return *v
	case *CTAContent:
		return *v
	case *ListContent:
		return *v
	case *FAQContent:
		return *v
	case *BannerContent:
		return *v
	default:
		return c
	}
}

// Validate decodes raw content for blockType and returns field-level
// errors. A decode failure is reported as a single "content" field error.
// Validation is advisory: callers decide whether errors block a publish.
func Validate(blockType string, raw []byte) []FieldError {
	c, err := Decode(blockType, raw)
	if err != nil {
		return []FieldError{{Field: "content", Message: err.Error()}}
	}
	errs := c.Validate()
	if errs == nil {
		errs = []FieldError{}
	}
	return errs
}

// IsValidLink reports whether s is an absolute http(s) URL or an internal
// path starting with "/".
func IsValidLink(s string) bool {
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
