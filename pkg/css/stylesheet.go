package css

import (
	"strings"
)

// Selector is one of Tag, Class, ID or Descendant. A Descendant selector
// matches Subject with some ancestor matching Ancestor.
type Selector struct {
	Type        SelectorType
	Value       string // tag name, class name or id; empty for Descendant
	Ancestor    *Selector
	Subject     *Selector
	Specificity int
}

type SelectorType int

const (
	TagSelector SelectorType = iota // div, p, span
	ClassSelector                   // .classname
	IDSelector                      // #idname
	DescendantSelector              // ancestor descendant
)

func (s Selector) String() string {
	switch s.Type {
	case ClassSelector:
		return "." + s.Value
	case IDSelector:
		return "#" + s.Value
	case DescendantSelector:
		return s.Ancestor.String() + " " + s.Subject.String()
	}
	return s.Value
}

// Rule is a selector with its declarations. Order is the position of the
// rule in its sheet and breaks specificity ties (later wins).
type Rule struct {
	Selector     Selector
	Declarations map[string]string
	Order        int
}

// Parse parses a stylesheet. It never fails: a malformed declaration is
// skipped up to the next ';' or '}', a malformed rule up to the next '}',
// and at-rules are skipped entirely. Comma-separated selector lists
// produce one rule per selector sharing the same declarations.
func Parse(text string) []Rule {
	p := &parser{s: stripCSSComments(text)}
	var rules []Rule
	for {
		p.whitespace()
		if p.eof() {
			return rules
		}
		if p.peek() == '@' {
			p.skipAtRule()
			continue
		}
		selectors, ok := p.selectorList()
		if !ok {
			p.skipPast('}')
			continue
		}
		p.i++ // '{'
		decls := p.body()
		if p.eof() {
			return rules
		}
		p.i++ // '}'
		for _, sel := range selectors {
			rules = append(rules, Rule{Selector: sel, Declarations: decls, Order: len(rules)})
		}
	}
}

// ParseInline parses the declarations of a style attribute.
func ParseInline(style string) map[string]string {
	p := &parser{s: stripCSSComments(style)}
	return p.body()
}

// ParseSelector parses a single selector such as "div .note #x".
func ParseSelector(text string) (Selector, bool) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return Selector{}, false
	}
	var out Selector
	for i, w := range words {
		sel, ok := parseSimpleSelector(w)
		if !ok {
			return Selector{}, false
		}
		if i == 0 {
			out = sel
			continue
		}
		anc := out
		out = Selector{
			Type:        DescendantSelector,
			Ancestor:    &anc,
			Subject:     &sel,
			Specificity: anc.Specificity + sel.Specificity,
		}
	}
	return out, true
}

func parseSimpleSelector(word string) (Selector, bool) {
	switch {
	case strings.HasPrefix(word, "#"):
		if !isIdent(word[1:]) {
			return Selector{}, false
		}
		return Selector{Type: IDSelector, Value: word[1:], Specificity: 100}, true
	case strings.HasPrefix(word, "."):
		if !isIdent(word[1:]) {
			return Selector{}, false
		}
		return Selector{Type: ClassSelector, Value: word[1:], Specificity: 10}, true
	}
	if !isIdent(word) {
		return Selector{}, false
	}
	return Selector{Type: TagSelector, Value: strings.ToLower(word), Specificity: 1}, true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// stripCSSComments removes /* ... */ comments. An unterminated comment
// runs to the end of the input.
func stripCSSComments(s string) string {
	var sb strings.Builder
	for {
		start := strings.Index(s, "/*")
		if start < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:start])
		end := strings.Index(s[start+2:], "*/")
		if end < 0 {
			return sb.String()
		}
		s = s[start+2+end+2:]
	}
}

type parser struct {
	s string
	i int
}

func (p *parser) eof() bool  { return p.i >= len(p.s) }
func (p *parser) peek() byte { return p.s[p.i] }

func (p *parser) whitespace() {
	for !p.eof() && isSpace(p.peek()) {
		p.i++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// until advances to the first byte in chars and returns it, or 0 at EOF.
func (p *parser) until(chars string) byte {
	for !p.eof() {
		if strings.IndexByte(chars, p.peek()) >= 0 {
			return p.peek()
		}
		p.i++
	}
	return 0
}

func (p *parser) skipPast(c byte) {
	if p.until(string(c)) != 0 {
		p.i++
	}
}

// skipAtRule skips "@name ...;" or "@name ... { balanced }".
func (p *parser) skipAtRule() {
	if p.until(";{") == ';' {
		p.i++
		return
	}
	depth := 0
	for !p.eof() {
		switch p.peek() {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.i++
				return
			}
		}
		p.i++
	}
}

// selectorList reads up to, but not past, the opening brace.
func (p *parser) selectorList() ([]Selector, bool) {
	start := p.i
	if p.until("{}") != '{' {
		return nil, false
	}
	var out []Selector
	for _, part := range strings.Split(p.s[start:p.i], ",") {
		sel, ok := ParseSelector(part)
		if !ok {
			return nil, false
		}
		out = append(out, sel)
	}
	return out, true
}

// body parses declarations up to a closing brace or EOF, leaving the
// brace unconsumed.
func (p *parser) body() map[string]string {
	decls := make(map[string]string)
	for {
		p.whitespace()
		if p.eof() || p.peek() == '}' {
			return decls
		}
		if p.peek() == ';' {
			p.i++
			continue
		}
		start := p.i
		stop := p.until(":;}")
		if stop != ':' {
			// no colon: skip the declaration
			if stop == ';' {
				p.i++
			}
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(p.s[start:p.i]))
		p.i++
		vstart := p.i
		p.until(";}")
		value := cleanValue(p.s[vstart:p.i])
		if !p.eof() && p.peek() == ';' {
			p.i++
		}
		if !isIdent(prop) || value == "" {
			continue
		}
		expandShorthand(decls, prop, value)
	}
}

func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.LastIndex(strings.ToLower(v), "!important"); i >= 0 && strings.TrimSpace(v[i+len("!important"):]) == "" {
		v = strings.TrimSpace(v[:i])
	}
	return v
}
