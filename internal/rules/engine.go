package rules

import (
	"os"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"voxtype/internal/domain"
)

// A rules file holds one substitution per line:
//
//	pull request => PR                 literal, case-insensitive
//	s/\bdeep\s*gram\b/Deepgram/g       sed-style regex, flags i g m s
//	[formal, custom]                   scopes the following rules
//
// Rules before the first section header, or under [*], apply in every
// cleanup mode.

type compiledRule interface {
	Apply(input string) (output string, changed bool)
}

// scopedRule is a rule plus the cleanup modes it runs in; nil modes means all.
type scopedRule struct {
	rule  compiledRule
	modes map[domain.CleanupMode]bool
}

type ruleSet []scopedRule

// forMode returns the rules that run in mode, in file order. An empty mode
// selects only the unscoped rules.
func (s ruleSet) forMode(mode domain.CleanupMode) []compiledRule {
	out := make([]compiledRule, 0, len(s))
	for _, r := range s {
		if r.modes == nil || (mode != "" && r.modes[mode]) {
			out = append(out, r.rule)
		}
	}
	return out
}

// Engine rewrites transcripts with the built-in filler rules for each cleanup
// mode plus the user's substitutions file. It is the offline cleaner.
type Engine struct {
	builtin   ruleSet
	user      ruleSet
	loopLimit int
}

// NewEngine loads the user rules at path. An empty path or a missing file
// leaves only the built-in rules.
func NewEngine(path string, loopLimit int) (*Engine, error) {
	if loopLimit <= 0 {
		loopLimit = 30
	}
	engine := &Engine{builtin: builtinRules, loopLimit: loopLimit}
	if strings.TrimSpace(path) == "" {
		return engine, nil
	}

	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return engine, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read rules file %q", path)
	}

	engine.user, err = parseRuleSet(string(contents))
	if err != nil {
		return nil, errors.Wrapf(err, "parse rules file %q", path)
	}
	return engine, nil
}

// Apply runs the unscoped user rules to a fixed point.
func (e *Engine) Apply(text string) (string, error) {
	return e.rewrite(text, e.user.forMode("")), nil
}

// rewrite applies rules in order, repeating until a pass changes nothing or
// loopLimit passes have run.
func (e *Engine) rewrite(text string, rules []compiledRule) string {
	for pass := 0; pass < e.loopLimit && len(rules) > 0; pass++ {
		changed := false
		for _, rule := range rules {
			if next, ok := rule.Apply(text); ok {
				text, changed = next, true
			}
		}
		if !changed {
			break
		}
	}
	return text
}

func parseRuleSet(contents string) (ruleSet, error) {
	var (
		set   ruleSet
		modes map[domain.CleanupMode]bool
	)
	for n, raw := range strings.Split(contents, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			scope, err := parseScope(line[1 : len(line)-1])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", n+1)
			}
			modes = scope
		default:
			rule, err := parseRule(line)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", n+1)
			}
			set = append(set, scopedRule{rule: rule, modes: modes})
		}
	}
	return set, nil
}

// parseScope reads a section header body such as "formal, custom". "*"
// resets the scope to every mode.
func parseScope(body string) (map[domain.CleanupMode]bool, error) {
	names := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(names) == 0 {
		return nil, errors.New("empty section header")
	}
	modes := make(map[domain.CleanupMode]bool, len(names))
	for _, name := range names {
		if name == "*" {
			return nil, nil
		}
		mode := domain.CleanupMode(strings.ToLower(name))
		switch mode {
		case domain.CleanupModeBasic, domain.CleanupModeCasual, domain.CleanupModeFormal, domain.CleanupModeCustom:
			modes[mode] = true
		default:
			return nil, errors.Newf("unknown cleanup mode %q", name)
		}
	}
	return modes, nil
}

func parseRule(line string) (compiledRule, error) {
	if len(line) > 1 && line[0] == 's' && !isWordByte(line[1]) {
		return parseRegexRule(line)
	}
	if strings.Contains(line, "=>") {
		return parseLiteralRule(line)
	}
	return nil, errors.New("unsupported rule format")
}

// literalRule matches case-insensitively and inserts its replacement verbatim.
type literalRule struct {
	re          *regexp.Regexp
	replacement string
}

func parseLiteralRule(line string) (compiledRule, error) {
	from, to, _ := strings.Cut(line, "=>")
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" {
		return nil, errors.New("literal rule source cannot be empty")
	}
	return literalRule{re: regexp.MustCompile("(?i)" + regexp.QuoteMeta(from)), replacement: to}, nil
}

func (r literalRule) Apply(input string) (string, bool) {
	out := r.re.ReplaceAllLiteralString(input, r.replacement)
	return out, out != input
}

// regexRule replaces the first match, or every match with the g flag. The
// replacement may reference groups as $1 or ${name}.
type regexRule struct {
	re          *regexp.Regexp
	replacement string
	global      bool
}

func parseRegexRule(line string) (compiledRule, error) {
	if len(line) < 2 || isWordByte(line[1]) {
		return nil, errors.New("regex delimiter must be non-alphanumeric")
	}
	fields, flags, err := splitDelimited(line[2:], line[1], 2)
	if err != nil {
		return nil, errors.Wrap(err, "invalid regex rule")
	}

	prefix, global, err := regexFlags(flags)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile("(?" + prefix + ")" + fields[0])
	if err != nil {
		return nil, errors.Wrap(err, "invalid regex")
	}
	return regexRule{re: re, replacement: fields[1], global: global}, nil
}

// regexFlags maps sed-style flags onto Go inline flags. Matching is always
// case-insensitive.
func regexFlags(flags string) (prefix string, global bool, err error) {
	inline := map[rune]bool{'i': true}
	for _, f := range strings.TrimSpace(flags) {
		switch f {
		case 'g':
			global = true
		case 'i', 'm', 's':
			inline[f] = true
		case ' ':
		default:
			return "", false, errors.Newf("unsupported regex flag %q", f)
		}
	}
	for _, f := range "ims" {
		if inline[f] {
			prefix += string(f)
		}
	}
	return prefix, global, nil
}

func (r regexRule) Apply(input string) (string, bool) {
	if r.global {
		out := r.re.ReplaceAllString(input, r.replacement)
		return out, out != input
	}
	m := r.re.FindStringSubmatchIndex(input)
	if m == nil {
		return input, false
	}
	expanded := r.re.ExpandString(nil, r.replacement, input, m)
	out := input[:m[0]] + string(expanded) + input[m[1]:]
	return out, out != input
}

// splitDelimited reads count fields terminated by delim from body and returns
// them with whatever follows the last delimiter. Backslash escapes are kept
// so the regexp compiler sees them.
func splitDelimited(body string, delim byte, count int) ([]string, string, error) {
	fields := make([]string, 0, count)
	start := 0
	for i := 0; i < len(body) && len(fields) < count; i++ {
		switch body[i] {
		case '\\':
			i++
		case delim:
			fields = append(fields, body[start:i])
			start = i + 1
		}
	}
	if len(fields) < count {
		return nil, "", errors.New("unterminated expression")
	}
	return fields, body[start:], nil
}

func isWordByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
