package usecase

import (
	"fmt"
	"strings"
)

// SystemPersona is the fixed system role describing the assistant's domain.
const SystemPersona = "You are an expert assistant in health and beauty products. " +
	"Respond helpfully and accurately based only on the information provided."

// PromptInput contains the pieces that feed into the prompt builder.
type PromptInput struct {
	Query   string
	Context string
}

// PromptBuilder assembles the user-role grounding prompt sent to generation.
type PromptBuilder interface {
	Build(input PromptInput) (string, error)
}

// GroundedPromptBuilder instructs the model to answer only from the supplied
// context, to state when information is unavailable, to surface prices and
// product specifics, and to justify recommendations.
type GroundedPromptBuilder struct{}

// NewGroundedPromptBuilder creates the default prompt builder.
func NewGroundedPromptBuilder() PromptBuilder {
	return &GroundedPromptBuilder{}
}

func (b *GroundedPromptBuilder) Build(input PromptInput) (string, error) {
	if input.Context == "" {
		return "", fmt.Errorf("context is required")
	}

	var sb strings.Builder
	sb.WriteString("Available product information:\n")
	sb.WriteString(input.Context)
	sb.WriteString("\n\nUser question: ")
	sb.WriteString(input.Query)
	sb.WriteString("\n\nInstructions:\n")
	sb.WriteString("- Answer based ONLY on the information provided\n")
	sb.WriteString("- If information is not available, say you don't have that specific information\n")
	sb.WriteString("- Be specific about products, prices and ingredients when available\n")
	sb.WriteString("- Maintain a friendly and professional tone\n")
	sb.WriteString("- Include prices if available\n")
	sb.WriteString("- If recommending a product, explain why it's suitable\n")
	sb.WriteString("\nResponse:")

	return sb.String(), nil
}
