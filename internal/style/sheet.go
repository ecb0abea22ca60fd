package style

import (
	"errors"
	"strings"
)

// Rule is one "selectors { declarations }" block.
type Rule struct {
	Selectors    []string
	Declarations []Declaration
}

// Declaration is a property-value pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet is a parsed list of rules in source order.
type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses CSS text. Rules it cannot read are skipped, as a
// browser would; at-rules such as @page are ignored.
func ParseStylesheet(content string) *Stylesheet {
	sheet := &Stylesheet{}
	for _, raw := range splitRules(removeComments(content)) {
		if strings.HasPrefix(strings.TrimSpace(raw), "@") {
			continue
		}
		rule, err := parseRule(raw)
		if err != nil {
			continue
		}
		sheet.Rules = append(sheet.Rules, rule)
	}
	return sheet
}

func parseRule(raw string) (Rule, error) {
	selectorStr, body, ok := strings.Cut(raw, "{")
	if !ok {
		return Rule{}, errors.New("invalid rule format")
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "}")

	var selectors []string
	for _, s := range strings.Split(selectorStr, ",") {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	if len(selectors) == 0 {
		return Rule{}, errors.New("no selectors found")
	}
	return Rule{Selectors: selectors, Declarations: ParseDeclarations(body)}, nil
}

// ParseDeclarations parses the body of a rule or a style attribute.
// Property names are lower-cased.
func ParseDeclarations(s string) []Declaration {
	var out []Declaration
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}

		important := false
		if strings.HasSuffix(value, "!important") {
			important = true
			value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		}
		out = append(out, Declaration{Property: prop, Value: value, Important: important})
	}
	return out
}

func removeComments(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "/*")
		if start < 0 {
			b.WriteString(content)
			return b.String()
		}
		b.WriteString(content[:start])
		end := strings.Index(content[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		content = content[start+2+end+2:]
	}
}

// splitRules splits content at top-level closing braces. Nested blocks
// (as in @media) stay inside their outer rule.
func splitRules(content string) []string {
	var (
		rules []string
		cur   strings.Builder
		depth int
	)
	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				cur.WriteByte(ch)
				rules = append(rules, strings.TrimSpace(cur.String()))
				cur.Reset()
				continue
			}
		}
		if depth > 0 || !isWhitespace(ch) || cur.Len() > 0 {
			cur.WriteByte(ch)
		}
	}
	return rules
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
