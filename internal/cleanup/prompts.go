// Package cleanup holds the prompt templates shared by LLM cleaners.
package cleanup

import (
	"context"
	"fmt"
	"strings"

	"voxtype/internal/domain"
)

const outputOnly = "Output ONLY the cleaned text with no explanations, comments, or annotations."

var systemPrompts = map[domain.CleanupMode]string{
	domain.CleanupModeBasic:  "You clean up transcribed speech. " + outputOnly + " Remove filler words (um, uh, like, you know), fix grammar, and improve clarity while preserving meaning.",
	domain.CleanupModeFormal: "You are a professional editor. " + outputOnly + " Transform transcribed speech into formal, polished prose suitable for business communication.",
	domain.CleanupModeCasual: "You clean up transcribed speech. " + outputOnly + " Fix grammar and remove filler words while keeping a casual, conversational tone.",
}

var instructions = map[domain.CleanupMode]string{
	domain.CleanupModeBasic:  "Clean up the following transcribed speech. Remove filler words (um, uh, like, you know), fix grammar and punctuation, but keep the original meaning and tone. Do not add any new information or change the meaning. Only output the cleaned text, nothing else.",
	domain.CleanupModeFormal: "Clean up the following transcribed speech and make it more formal and professional. Remove filler words, fix grammar, and adjust the tone to be suitable for professional communication. Keep the original meaning. Only output the cleaned text, nothing else.",
	domain.CleanupModeCasual: "Clean up the following transcribed speech while keeping a casual, friendly tone. Remove filler words and fix obvious errors, but keep contractions and conversational language. Only output the cleaned text, nothing else.",
}

// SystemPrompt returns the system instruction for mode. Custom mode uses the
// user's prompt, or the default prompt when that is empty.
func SystemPrompt(mode domain.CleanupMode, custom string) string {
	if mode == domain.CleanupModeCustom {
		if strings.TrimSpace(custom) == "" {
			return domain.DefaultCleanupPrompt
		}
		return custom
	}
	if prompt, ok := systemPrompts[mode]; ok {
		return prompt
	}
	return systemPrompts[domain.CleanupModeBasic]
}

// UserPrompt wraps text in the per-mode instruction. Custom mode sends the
// text alone since the instruction lives in the system prompt.
func UserPrompt(mode domain.CleanupMode, text string) string {
	instruction, ok := instructions[mode]
	if !ok {
		return text
	}
	return fmt.Sprintf("%s\n\nText: %s\n\nCleaned text:", instruction, text)
}

var answerPrefixes = []string{"cleaned text:", "here is the cleaned text:", "here's the cleaned text:"}

// Sanitize strips the answer scaffolding models sometimes echo back.
func Sanitize(output string) string {
	text := strings.TrimSpace(output)
	lower := strings.ToLower(text)
	for _, prefix := range answerPrefixes {
		if strings.HasPrefix(lower, prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			break
		}
	}
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

// Passthrough is the cleaner used when no cleanup backend is configured.
type Passthrough struct{}

func (Passthrough) Cleanup(_ context.Context, text string, _ domain.CleanupMode, _ string) (string, error) {
	return text, nil
}
