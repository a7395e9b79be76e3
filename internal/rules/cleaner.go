package rules

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"voxtype/internal/domain"
)

// builtinRules drops filler words. Hesitations go in every mode, discourse
// markers in all but casual, and formal also expands contractions.
var builtinRules = mustParseRuleSet(`
[casual, basic, formal, custom]
s/\b(?:um+|uh+|erm|er|ah+|hmm+)\b[,.]?\s*//g

[basic, formal, custom]
s/\b(?:you know|i mean|basically)\b,?\s*//g
s/^\s*(?:so|well|okay|ok|right)\b,?\s+//

[formal]
s/\bcan't\b/cannot/g
s/\bwon't\b/will not/g
s/\bdon't\b/do not/g
s/\bdoesn't\b/does not/g
s/\bdidn't\b/did not/g
s/\bisn't\b/is not/g
s/\baren't\b/are not/g
s/\bI'm\b/I am/g
s/\bI've\b/I have/g
s/\bI'll\b/I will/g
s/\bit's\b/it is/g
s/\bthat's\b/that is/g
s/\bwe're\b/we are/g
s/\bthey're\b/they are/g
s/\byou're\b/you are/g
s/\bgonna\b/going to/g
s/\bwanna\b/want to/g
`)

func mustParseRuleSet(contents string) ruleSet {
	set, err := parseRuleSet(contents)
	if err != nil {
		panic(err)
	}
	return set
}

// Cleanup removes filler words for mode, applies the user rules scoped to
// mode and tidies spacing, capitalisation and the closing period. Custom
// prompts cannot be followed locally; custom mode cleans like basic.
func (e *Engine) Cleanup(_ context.Context, text string, mode domain.CleanupMode, _ string) (string, error) {
	result := e.rewrite(text, e.builtin.forMode(mode))
	result = e.rewrite(result, e.user.forMode(mode))
	return finishSentence(result), nil
}

var (
	spaceRun         = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([,.!?;:])`)
	leadingPunct     = regexp.MustCompile(`^[\s,.;:]+`)
	trailingPunct    = regexp.MustCompile(`[\s,;:]+$`)
)

func finishSentence(text string) string {
	text = spaceRun.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = leadingPunct.ReplaceAllString(text, "")
	text = trailingPunct.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	first, size := utf8.DecodeRuneInString(text)
	text = string(unicode.ToUpper(first)) + text[size:]

	if last, _ := utf8.DecodeLastRuneInString(text); unicode.IsLetter(last) || unicode.IsDigit(last) {
		text += "."
	}
	return text
}
