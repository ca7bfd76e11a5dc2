package parser

import (
	"regexp"
	"strings"
)

// blockKind identifies what a stack frame was opened by.
type blockKind int

const (
	blockClass blockKind = iota
	blockModule
	blockMethod
	blockOther // if/case/do/begin and friends, tracked only so end pops correctly
)

type frame struct {
	kind       blockKind
	name       string
	visibility Visibility
}

// Scanner is a heuristic, line-oriented structural scanner.
//
// It is explicitly not a parser: there is no grammar, no backtracking and no
// recovery strategy beyond "the context stack does not go negative". A line
// that fails recognition contributes no node. Scan never fails on malformed
// input.
type Scanner struct{}

// NewScanner creates a structural scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan extracts tagged nodes from source text.
func (s *Scanner) Scan(source string) []Node {
	var nodes []Node
	var stack []frame

	currentClass := func() string {
		var parts []string
		for _, f := range stack {
			if f.kind == blockClass || f.kind == blockModule {
				parts = append(parts, f.name)
			}
		}
		return strings.Join(parts, "::")
	}
	currentMethod := func() string {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].kind == blockMethod {
				return stack[i].name
			}
		}
		return ""
	}
	currentVisibility := func() Visibility {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].kind == blockClass || stack[i].kind == blockModule {
				return stack[i].visibility
			}
		}
		return Public
	}

	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			nodes = append(nodes, Node{
				Kind:        NodeComment,
				Line:        lineNo,
				Text:        strings.TrimSpace(strings.TrimPrefix(line, "#")),
				OwnerClass:  currentClass(),
				OwnerMethod: currentMethod(),
			})
			continue
		}

		if m := classRe.FindStringSubmatch(line); m != nil {
			owner := currentClass()
			node := Node{Kind: NodeClass, Line: lineNo, Name: m[1], Superclass: m[3], OwnerClass: owner}
			nodes = append(nodes, node)
			stack = append(stack, frame{kind: blockClass, name: m[1], visibility: Public})
			continue
		}

		if m := moduleRe.FindStringSubmatch(line); m != nil {
			node := Node{Kind: NodeModule, Line: lineNo, Name: m[1], OwnerClass: currentClass()}
			nodes = append(nodes, node)
			stack = append(stack, frame{kind: blockModule, name: m[1], visibility: Public})
			continue
		}

		if m := methodRe.FindStringSubmatch(line); m != nil {
			node := Node{
				Kind:       NodeMethod,
				Line:       lineNo,
				Name:       m[2],
				SelfMethod: m[1] != "",
				Params:     parseParams(m[3]),
				Visibility: currentVisibility(),
				OwnerClass: currentClass(),
			}
			nodes = append(nodes, node)
			// One-line bodies (def x = expr, def x; ...; end) never open a block.
			if !strings.Contains(line, ";") && !oneLineDefRe.MatchString(line) {
				stack = append(stack, frame{kind: blockMethod, name: m[2]})
			}
			continue
		}

		if line == "private" || line == "protected" || line == "public" {
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].kind == blockClass || stack[i].kind == blockModule {
					stack[i].visibility = Visibility(line)
					break
				}
			}
			continue
		}

		if m := associationRe.FindStringSubmatch(line); m != nil {
			nodes = append(nodes, Node{
				Kind:        NodeAssociation,
				Line:        lineNo,
				Association: AssociationKind(m[1]),
				Name:        m[2],
				OwnerClass:  currentClass(),
			})
			continue
		}

		if m := mixinRe.FindStringSubmatch(line); m != nil {
			nodes = append(nodes, Node{
				Kind:       NodeMixin,
				Line:       lineNo,
				MixinKind:  m[1],
				Name:       m[2],
				OwnerClass: currentClass(),
			})
			continue
		}

		if m := requireRe.FindStringSubmatch(line); m != nil {
			nodes = append(nodes, Node{Kind: NodeRequire, Line: lineNo, Path: m[2], OwnerClass: currentClass()})
			continue
		}

		if m := constantRe.FindStringSubmatch(line); m != nil && currentMethod() == "" {
			nodes = append(nodes, Node{Kind: NodeConstant, Line: lineNo, Name: m[1], OwnerClass: currentClass()})
			continue
		}

		if line == "end" || strings.HasPrefix(line, "end ") || strings.HasPrefix(line, "end#") {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		// Inside a method body, extract naive call tokens.
		if currentMethod() != "" {
			nodes = append(nodes, scanCalls(line, lineNo, currentClass(), currentMethod())...)
		}

		// Lines that open a non-semantic block still consume a matching end.
		if opensBlock(line) {
			stack = append(stack, frame{kind: blockOther})
		}
	}

	return nodes
}

// scanCalls extracts receiver?.method(args)? tokens from a body line.
func scanCalls(line string, lineNo int, ownerClass, ownerMethod string) []Node {
	var nodes []Node
	seen := make(map[string]bool)

	for _, m := range receiverCallRe.FindAllStringSubmatch(line, -1) {
		receiver, method := m[1], m[2]
		if rubyKeywords[method] {
			continue
		}
		key := receiver + "." + method
		if seen[key] {
			continue
		}
		seen[key] = true
		nodes = append(nodes, Node{
			Kind:        NodeCall,
			Line:        lineNo,
			Receiver:    receiver,
			Name:        method,
			Args:        callArgs(line, method),
			OwnerClass:  ownerClass,
			OwnerMethod: ownerMethod,
		})
	}

	if m := bareCallRe.FindStringSubmatch(line); m != nil && !rubyKeywords[m[1]] && !seen["."+m[1]] {
		nodes = append(nodes, Node{
			Kind:        NodeCall,
			Line:        lineNo,
			Name:        m[1],
			Args:        callArgs(line, m[1]),
			OwnerClass:  ownerClass,
			OwnerMethod: ownerMethod,
		})
	}

	return nodes
}

// callArgs pulls the parenthesized argument text following the method token,
// if any. Best effort: nested parens are not balanced.
func callArgs(line, method string) string {
	idx := strings.Index(line, method+"(")
	if idx < 0 {
		return ""
	}
	rest := line[idx+len(method)+1:]
	if close := strings.Index(rest, ")"); close >= 0 {
		return rest[:close]
	}
	return rest
}

// parseParams splits a def parameter list into structured params.
func parseParams(list string) []Param {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil
	}
	var params []Param
	for _, part := range splitTopLevel(list) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p := Param{}
		switch {
		case strings.HasPrefix(part, "&"):
			p.Block = true
			p.Name = strings.TrimPrefix(part, "&")
		case strings.HasPrefix(part, "**"):
			p.Splat = true
			p.Keyword = true
			p.Name = strings.TrimPrefix(part, "**")
		case strings.HasPrefix(part, "*"):
			p.Splat = true
			p.Name = strings.TrimPrefix(part, "*")
		case strings.Contains(part, ":"):
			p.Keyword = true
			kv := strings.SplitN(part, ":", 2)
			p.Name = strings.TrimSpace(kv[0])
			p.Default = strings.TrimSpace(kv[1])
		case strings.Contains(part, "="):
			kv := strings.SplitN(part, "=", 2)
			p.Name = strings.TrimSpace(kv[0])
			p.Default = strings.TrimSpace(kv[1])
		default:
			p.Name = part
		}
		if p.Name != "" {
			params = append(params, p)
		}
	}
	return params
}

// splitTopLevel splits on commas outside brackets so hash/array defaults
// survive parameter splitting.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	last := 0
	for i, r := range s {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// opensBlock reports whether a line opens a block that a later end will close.
func opensBlock(line string) bool {
	if strings.HasSuffix(line, " do") || strings.Contains(line, " do |") {
		return true
	}
	for _, kw := range []string{"if ", "unless ", "while ", "until ", "case ", "begin"} {
		if strings.HasPrefix(line, kw) || line == strings.TrimSpace(kw) {
			return true
		}
	}
	return false
}

var (
	classRe       = regexp.MustCompile(`^class\s+([A-Z][A-Za-z0-9_:]*)(\s*<\s*([A-Z][A-Za-z0-9_:]*))?`)
	moduleRe      = regexp.MustCompile(`^module\s+([A-Z][A-Za-z0-9_:]*)`)
	methodRe      = regexp.MustCompile(`^def\s+(self\.)?([a-z_][A-Za-z0-9_]*[?!=]?)\s*(?:\(([^)]*)\))?`)
	oneLineDefRe  = regexp.MustCompile(`^def\s+[^=]+=\s*\S`)
	associationRe = regexp.MustCompile(`^(has_many|has_one|belongs_to|has_and_belongs_to_many)\s+:([a-z_][a-z0-9_]*)`)
	mixinRe       = regexp.MustCompile(`^(include|extend|prepend)\s+([A-Z][A-Za-z0-9_:]*)`)
	requireRe     = regexp.MustCompile(`^(require|require_relative)\s+["']([^"']+)["']`)
	constantRe    = regexp.MustCompile(`^([A-Z][A-Z0-9_]*)\s*=[^=]`)

	receiverCallRe = regexp.MustCompile(`([A-Za-z_@][A-Za-z0-9_]*)\.([a-z_][A-Za-z0-9_]*[?!]?)`)
	bareCallRe     = regexp.MustCompile(`^([a-z_][A-Za-z0-9_]*[?!]?)\(`)
)

var rubyKeywords = map[string]bool{
	"new":     false, // instantiation is a call worth keeping
	"if":      true,
	"unless":  true,
	"while":   true,
	"until":   true,
	"do":      true,
	"end":     true,
	"then":    true,
	"else":    true,
	"elsif":   true,
	"return":  true,
	"yield":   true,
	"class":   true,
	"def":     true,
	"module":  true,
	"require": true,
}
