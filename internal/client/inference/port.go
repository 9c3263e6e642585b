// Package inference is the port to the external generative service and its
// Gemini REST implementation.
package inference

import (
	"context"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// InlineData is a binary attachment, typically an image.
type InlineData struct {
	MimeType string
	Data     []byte
}

// Part holds either text or inline data.
type Part struct {
	Text   string
	Inline *InlineData
}

type Message struct {
	Role  Role
	Parts []Part
}

type LatLng struct {
	Latitude  float64
	Longitude float64
}

type Tools struct {
	WebSearch  bool
	MapsSearch *LatLng
}

func (t Tools) Any() bool { return t.WebSearch || t.MapsSearch != nil }

// Request is one generation call. When ResponseSchema is set the returned
// Text is expected to be a JSON document conforming to it.
type Request struct {
	// Model overrides the client default when non-empty.
	Model             string
	SystemInstruction string
	Messages          []Message
	ResponseSchema    map[string]any
	Tools             Tools
}

type Response struct {
	Text                string
	GroundingReferences []models.GroundingSource
}

// Generator is implemented by inference backends. Transport failures,
// non-success statuses and timeouts are reported as
// common.ErrInferenceUnavailable.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (Response, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// UserText is a single-part user message.
func UserText(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{{Text: text}}}
}

// UserParts builds a user message from text followed by optional attachments.
func UserParts(text string, attachments ...*InlineData) Message {
	m := Message{Role: RoleUser}
	if text != "" {
		m.Parts = append(m.Parts, Part{Text: text})
	}
	for _, a := range attachments {
		if a != nil {
			m.Parts = append(m.Parts, Part{Inline: a})
		}
	}
	return m
}
