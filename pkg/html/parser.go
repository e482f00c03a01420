package html

import (
	gohtml "html"
	"strings"
	"unicode"
)

var selfClosingTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// headTags may only appear inside <head>.
var headTags = map[string]bool{
	"base": true, "basefont": true, "bgsound": true, "noscript": true,
	"link": true, "meta": true, "title": true, "style": true, "script": true,
}

// rawTextTags have their content captured verbatim in RawText.
var rawTextTags = map[string]bool{"script": true, "style": true}

// IsSelfClosing returns true for void elements that never take children.
func IsSelfClosing(tag string) bool {
	return selfClosingTags[tag]
}

// Parser builds a tree from markup with a single-pass character scanner.
// It never fails: malformed markup is repaired by synthesizing html, head
// and body elements and by closing whatever is still open at the end.
type Parser struct {
	body       string
	unfinished []*Node
}

func NewParser(body string) *Parser {
	return &Parser{body: body}
}

// Parse parses body and returns the root <html> element.
func Parse(body string) *Node {
	return NewParser(body).Parse()
}

func (p *Parser) Parse() *Node {
	var text strings.Builder
	inTag := false
	for i := 0; i < len(p.body); i++ {
		c := p.body[i]
		switch {
		case c == '<':
			inTag = true
			if text.Len() > 0 {
				p.addText(text.String())
				text.Reset()
			}
			if strings.HasPrefix(p.body[i:], "<!--") {
				end := strings.Index(p.body[i+4:], "-->")
				if end < 0 {
					i = len(p.body)
				} else {
					i += 4 + end + 2
				}
				inTag = false
			}
		case c == '>' && inTag:
			inTag = false
			if tag := p.addTag(text.String()); rawTextTags[tag] {
				i = p.captureRawText(tag, i+1) - 1
			}
			text.Reset()
		default:
			text.WriteByte(c)
		}
	}
	if !inTag && text.Len() > 0 {
		p.addText(text.String())
	}
	return p.Finish()
}

// captureRawText stores everything up to the matching close tag in the
// open raw-text element and returns the index of that close tag.
func (p *Parser) captureRawText(tag string, start int) int {
	rest := p.body[start:]
	end := strings.Index(strings.ToLower(rest), "</"+tag)
	if end < 0 {
		end = len(rest)
	}
	if top := p.top(); top != nil && top.TagName == tag {
		top.RawText = rest[:end]
	}
	return start + end
}

func (p *Parser) top() *Node {
	if len(p.unfinished) == 0 {
		return nil
	}
	return p.unfinished[len(p.unfinished)-1]
}

func (p *Parser) openTags() []string {
	tags := make([]string, len(p.unfinished))
	for i, n := range p.unfinished {
		tags[i] = n.TagName
	}
	return tags
}

// implicitTag returns the tag to synthesize before tag can be inserted
// given the currently open tags, or "" when none is needed. tag is ""
// for text. Applying its result and asking again reaches a fixed point
// within three steps.
func implicitTag(open []string, tag string) string {
	switch {
	case len(open) == 0 && tag != "html":
		return "html"
	case len(open) == 1 && open[0] == "html" && tag != "head" && tag != "body" && tag != "/html":
		if headTags[tag] {
			return "head"
		}
		return "body"
	case len(open) == 2 && open[0] == "html" && open[1] == "head" && tag != "/head" && !headTags[tag]:
		return "/head"
	}
	return ""
}

func (p *Parser) implicitTags(tag string) {
	for {
		repair := implicitTag(p.openTags(), tag)
		if repair == "" {
			return
		}
		p.insertTag(repair, nil)
	}
}

func (p *Parser) addText(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	for _, open := range p.unfinished {
		if rawTextTags[open.TagName] {
			return
		}
	}
	p.implicitTags("")
	p.top().AddChild(NewText(gohtml.UnescapeString(text)))
}

// addTag handles the text between '<' and '>' and returns the tag name.
func (p *Parser) addTag(text string) string {
	if strings.HasPrefix(text, "!") || strings.HasPrefix(text, "?") {
		return ""
	}
	tag, attrs := parseAttributes(text)
	if tag == "" || tag == "/" {
		return ""
	}
	p.implicitTags(tag)
	p.insertTag(tag, attrs)
	return tag
}

func (p *Parser) insertTag(tag string, attrs map[string]string) {
	switch {
	case strings.HasPrefix(tag, "/"):
		if len(p.unfinished) <= 1 {
			return
		}
		node := p.unfinished[len(p.unfinished)-1]
		p.unfinished = p.unfinished[:len(p.unfinished)-1]
		p.top().AddChild(node)
	case selfClosingTags[tag]:
		p.top().AddChild(NewElement(tag, attrs))
	default:
		node := NewElement(tag, attrs)
		node.Parent = p.top()
		p.unfinished = append(p.unfinished, node)
	}
}

// Finish closes every open element and returns the root.
func (p *Parser) Finish() *Node {
	if len(p.unfinished) == 0 {
		p.implicitTags("")
	}
	for len(p.unfinished) > 1 {
		node := p.unfinished[len(p.unfinished)-1]
		p.unfinished = p.unfinished[:len(p.unfinished)-1]
		p.top().AddChild(node)
	}
	root := p.unfinished[0]
	p.unfinished = nil
	root.Parent = nil
	return root
}

// parseAttributes splits tag text into a lower-cased tag name and its
// attributes. Values may be bare or wrapped in one layer of matching
// quotes; a bare attribute name maps to "".
func parseAttributes(text string) (string, map[string]string) {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "/")
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(text), make(map[string]string)
	}
	tag := strings.ToLower(text[:i])
	attrs := make(map[string]string)
	rest := text[i:]
	for {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}
		end := strings.IndexFunc(rest, func(r rune) bool { return r == '=' || unicode.IsSpace(r) })
		if end < 0 {
			attrs[strings.ToLower(rest)] = ""
			break
		}
		name := strings.ToLower(rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
		if !strings.HasPrefix(rest, "=") {
			attrs[name] = ""
			continue
		}
		rest = strings.TrimLeftFunc(rest[1:], unicode.IsSpace)
		var value string
		if rest != "" && (rest[0] == '"' || rest[0] == '\'') {
			q := rest[0]
			if j := strings.IndexByte(rest[1:], q); j >= 0 {
				value, rest = rest[1:1+j], rest[2+j:]
			} else {
				value, rest = rest[1:], ""
			}
		} else {
			j := strings.IndexFunc(rest, unicode.IsSpace)
			if j < 0 {
				j = len(rest)
			}
			value, rest = rest[:j], rest[j:]
		}
		if name != "" {
			attrs[name] = gohtml.UnescapeString(value)
		}
	}
	return tag, attrs
}

// ParseFragment parses markup as the content of a <body> element and
// returns the detached top-level nodes.
func ParseFragment(s string) []*Node {
	root := Parse("<body>" + s + "</body>")
	for _, n := range root.Children {
		if n.IsElement("body") {
			nodes := append([]*Node(nil), n.Children...)
			n.ReplaceChildren(nil)
			return nodes
		}
	}
	return nil
}
