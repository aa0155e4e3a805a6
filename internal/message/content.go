// Package message provides typed MCP result payloads and the content
// blocks they carry.
package message

import (
	"encoding/json"
	"fmt"
)

// Content type constants.
const (
	ContentTypeText         = "text"
	ContentTypeImage        = "image"
	ContentTypeAudio        = "audio"
	ContentTypeResourceLink = "resource_link"
	ContentTypeResource     = "resource"
)

// Content is a block of content in a tool result or prompt message.
// Use a type switch to determine the concrete type; the set is closed.
type Content interface {
	ContentType() string
	isContent()
}

// Compile-time verification that all content types implement Content.
var (
	_ Content = (*TextContent)(nil)
	_ Content = (*ImageContent)(nil)
	_ Content = (*AudioContent)(nil)
	_ Content = (*ResourceLink)(nil)
	_ Content = (*EmbeddedResource)(nil)
)

// TextContent contains plain text.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ContentType implements the Content interface.
func (c *TextContent) ContentType() string { return ContentTypeText }
func (c *TextContent) isContent()          {}

// ImageContent contains base64-encoded image data.
type ImageContent struct {
	Type     string `json:"type"`
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// ContentType implements the Content interface.
func (c *ImageContent) ContentType() string { return ContentTypeImage }
func (c *ImageContent) isContent()          {}

// AudioContent contains base64-encoded audio data.
type AudioContent struct {
	Type     string `json:"type"`
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// ContentType implements the Content interface.
func (c *AudioContent) ContentType() string { return ContentTypeAudio }
func (c *AudioContent) isContent()          {}

// ResourceLink points at a resource the client may read separately.
type ResourceLink struct {
	Type        string `json:"type"`
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
}

// ContentType implements the Content interface.
func (c *ResourceLink) ContentType() string { return ContentTypeResourceLink }
func (c *ResourceLink) isContent()          {}

// EmbeddedResource carries resource contents inline.
type EmbeddedResource struct {
	Type     string          `json:"type"`
	Resource ResourceContent `json:"resource"`
}

// ContentType implements the Content interface.
func (c *EmbeddedResource) ContentType() string { return ContentTypeResource }
func (c *EmbeddedResource) isContent()          {}

// UnmarshalContent unmarshals a single content block from JSON.
// Blocks with a missing or unknown type are rejected.
func UnmarshalContent(data []byte) (Content, error) {
	var typeHolder struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &typeHolder); err != nil {
		return nil, err
	}

	var block Content

	switch typeHolder.Type {
	case ContentTypeText:
		block = &TextContent{}
	case ContentTypeImage:
		block = &ImageContent{}
	case ContentTypeAudio:
		block = &AudioContent{}
	case ContentTypeResourceLink:
		block = &ResourceLink{}
	case ContentTypeResource:
		block = &EmbeddedResource{}
	case "":
		return nil, fmt.Errorf("content: missing type")
	default:
		return nil, fmt.Errorf("content: unknown type %q", typeHolder.Type)
	}

	if err := json.Unmarshal(data, block); err != nil {
		return nil, fmt.Errorf("%s content: %w", typeHolder.Type, err)
	}

	switch b := block.(type) {
	case *ResourceLink:
		if b.URI == "" {
			return nil, fmt.Errorf("resource_link content: missing uri")
		}
	case *EmbeddedResource:
		if b.Resource.URI == "" {
			return nil, fmt.Errorf("resource content: missing resource.uri")
		}
	}

	return block, nil
}

// unmarshalContentList decodes a JSON array of content blocks.
func unmarshalContentList(raw json.RawMessage) ([]Content, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var rawBlocks []json.RawMessage
	if err := json.Unmarshal(raw, &rawBlocks); err != nil {
		return nil, err
	}

	content := make([]Content, 0, len(rawBlocks))

	for i, rawBlock := range rawBlocks {
		block, err := UnmarshalContent(rawBlock)
		if err != nil {
			return nil, fmt.Errorf("content[%d]: %w", i, err)
		}

		content = append(content, block)
	}

	return content, nil
}
