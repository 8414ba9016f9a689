package ai

import "context"

// GenerationInput describes the question set a teacher asks the provider for.
type GenerationInput struct {
	Topic           string
	Difficulty      string
	QuestionCount   int
	PointsPer       int
	AdditionalNotes string
}

// GeneratedQuestion is the question shape handed back by the provider. It
// mirrors the fields quiz creation accepts.
type GeneratedQuestion struct {
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer *string  `json:"correct_answer,omitempty"`
	Points        int      `json:"points"`
}

// Generator describes an opaque question-generation provider. The core never
// depends on its internals, only on the resulting question shape.
type Generator interface {
	Generate(ctx context.Context, input GenerationInput) ([]GeneratedQuestion, error)
}
