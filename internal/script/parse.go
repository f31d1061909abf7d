package script

import (
	"fmt"
	"strings"
)

// Script is a parsed directive file.
type Script struct {
	Paths    []string
	Modules  []string
	Call     *Call
	CallText string
}

// Call is a parsed call expression.
type Call struct {
	Module string
	Name   string
	Args   []*Arg
}

// ArgKind classifies one parsed argument.
type ArgKind int

const (
	// ArgCall is a nested call expression.
	ArgCall ArgKind = iota
	// ArgLiteral is a deserialize("...") placeholder.
	ArgLiteral
	// ArgKwargs is the trailing **deserialize("...") keyword spread.
	ArgKwargs
)

// Arg is one parsed argument.
type Arg struct {
	Kind    ArgKind
	Call    *Call
	Literal string
}

// Parse parses a synthesized script.
func Parse(data []byte) (*Script, error) {
	s := &Script{}
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		directive, rest, _ := strings.Cut(line, " ")
		if rest == "" {
			return nil, fmt.Errorf("line %d: directive %q has no payload", i+1, directive)
		}

		switch directive {
		case "path":
			s.Paths = append(s.Paths, rest)
		case "module":
			s.Modules = append(s.Modules, rest)
		case "call":
			if s.Call != nil {
				return nil, fmt.Errorf("line %d: multiple call directives", i+1)
			}
			call, err := ParseExpression(rest)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			s.Call = call
			s.CallText = rest
		default:
			return nil, fmt.Errorf("line %d: unknown directive %q", i+1, directive)
		}
	}

	if s.Call == nil {
		return nil, fmt.Errorf("script has no call directive")
	}
	return s, nil
}

// ParseExpression parses one call expression of the form
// module.name(arg, ...) where arguments are nested calls,
// deserialize("...") literals, or a trailing **deserialize("...") spread.
func ParseExpression(text string) (*Call, error) {
	p := &parser{input: strings.TrimSpace(text)}
	call, err := p.parseCall()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("trailing text after expression at offset %d", p.pos)
	}
	return call, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) rest() string {
	return p.input[p.pos:]
}

func (p *parser) parseCall() (*Call, error) {
	open := strings.IndexByte(p.rest(), '(')
	if open < 0 {
		return nil, p.errorf("expected '(' in call expression")
	}

	qualified := p.input[p.pos : p.pos+open]
	if qualified == "" || strings.ContainsAny(qualified, `,)"* `) {
		return nil, p.errorf("malformed call target %q", qualified)
	}
	dot := strings.LastIndex(qualified, ".")
	if dot <= 0 || dot == len(qualified)-1 {
		return nil, p.errorf("call target %q is not module-qualified", qualified)
	}

	call := &Call{Module: qualified[:dot], Name: qualified[dot+1:]}
	p.pos += open + 1

	p.skipSpaces()
	if strings.HasPrefix(p.rest(), ")") {
		p.pos++
		return call, nil
	}

	for {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		p.skipSpaces()
		if p.pos >= len(p.input) {
			return nil, p.errorf("unterminated argument list")
		}
		switch p.input[p.pos] {
		case ',':
			if arg.Kind == ArgKwargs {
				return nil, p.errorf("keyword spread must be the last argument")
			}
			p.pos++
			p.skipSpaces()
		case ')':
			p.pos++
			return call, nil
		default:
			return nil, p.errorf("expected ',' or ')' after argument")
		}
	}
}

const (
	literalPrefix = `deserialize("`
	kwargsPrefix  = `**deserialize("`
)

func (p *parser) parseArg() (*Arg, error) {
	switch rest := p.rest(); {
	case strings.HasPrefix(rest, kwargsPrefix):
		literal, err := p.parseLiteral(kwargsPrefix)
		if err != nil {
			return nil, err
		}
		return &Arg{Kind: ArgKwargs, Literal: literal}, nil
	case strings.HasPrefix(rest, literalPrefix):
		literal, err := p.parseLiteral(literalPrefix)
		if err != nil {
			return nil, err
		}
		return &Arg{Kind: ArgLiteral, Literal: literal}, nil
	default:
		call, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		return &Arg{Kind: ArgCall, Call: call}, nil
	}
}

// parseLiteral consumes prefix + base64 text + `")`.
func (p *parser) parseLiteral(prefix string) (string, error) {
	p.pos += len(prefix)
	quote := strings.IndexByte(p.rest(), '"')
	if quote < 0 {
		return "", p.errorf("unterminated literal")
	}
	literal := p.input[p.pos : p.pos+quote]
	p.pos += quote + 1
	if p.pos >= len(p.input) || p.input[p.pos] != ')' {
		return "", p.errorf("expected ')' after literal")
	}
	p.pos++
	return literal, nil
}
