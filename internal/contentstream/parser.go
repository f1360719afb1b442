// Package contentstream tokenizes decoded PDF page content streams into
// operator/operand sequences.
package contentstream

import (
	"bytes"
	"fmt"
	"strconv"
)

// OperandKind classifies an operand token.
type OperandKind int

const (
	OperandNumber OperandKind = iota
	OperandName
	OperandString
	OperandArray
	OperandDict
	OperandKeyword // true, false, null
)

// Operand is a single operand preceding an operator. Number is only valid
// for OperandNumber, Value holds the raw token otherwise (names without the
// leading slash).
type Operand struct {
	Kind   OperandKind
	Number float64
	Value  string
}

// Operation is an operator together with the operands that precede it.
type Operation struct {
	Operator string
	Operands []Operand
}

// Numbers returns the numeric operands in order.
func (op Operation) Numbers() []float64 {
	nums := make([]float64, 0, len(op.Operands))
	for _, o := range op.Operands {
		if o.Kind == OperandNumber {
			nums = append(nums, o.Number)
		}
	}
	return nums
}

// Parser walks a content stream once.
type Parser struct {
	data     []byte
	pos      int
	operands []Operand
	ops      []Operation
}

// NewParser creates a parser for the decoded content stream data.
func NewParser(data []byte) *Parser {
	return &Parser{data: data}
}

// Parse is a convenience wrapper around NewParser(data).Parse().
func Parse(data []byte) ([]Operation, error) {
	return NewParser(data).Parse()
}

// Parse returns all operations in stream order. Inline image data between
// ID and EI is skipped.
func (p *Parser) Parse() ([]Operation, error) {
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			break
		}
		if err := p.parseNext(); err != nil {
			return nil, fmt.Errorf("content stream at offset %d: %w", p.pos, err)
		}
	}
	return p.ops, nil
}

func (p *Parser) parseNext() error {
	c := p.data[p.pos]
	switch {
	case c == '/':
		p.push(Operand{Kind: OperandName, Value: p.readName()})
	case c == '(':
		s, err := p.readLiteralString()
		if err != nil {
			return err
		}
		p.push(Operand{Kind: OperandString, Value: s})
	case c == '<' && p.peek(1) == '<':
		raw, err := p.readBalanced("<<", ">>")
		if err != nil {
			return err
		}
		p.push(Operand{Kind: OperandDict, Value: raw})
	case c == '<':
		s, err := p.readHexString()
		if err != nil {
			return err
		}
		p.push(Operand{Kind: OperandString, Value: s})
	case c == '[':
		raw, err := p.readBalanced("[", "]")
		if err != nil {
			return err
		}
		p.push(Operand{Kind: OperandArray, Value: raw})
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		tok := p.readToken()
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			p.push(Operand{Kind: OperandNumber, Number: v, Value: tok})
		}
	case isDelimiter(c):
		// stray ')', '>', ']', '{', '}'
		p.pos++
	default:
		tok := p.readToken()
		switch tok {
		case "true", "false", "null":
			p.push(Operand{Kind: OperandKeyword, Value: tok})
		default:
			p.emit(tok)
			if tok == "ID" {
				p.skipInlineImageData()
			}
		}
	}
	return nil
}

func (p *Parser) push(o Operand) {
	p.operands = append(p.operands, o)
}

func (p *Parser) emit(operator string) {
	op := Operation{Operator: operator}
	if len(p.operands) > 0 {
		op.Operands = make([]Operand, len(p.operands))
		copy(op.Operands, p.operands)
	}
	p.ops = append(p.ops, op)
	p.operands = p.operands[:0]
}

func (p *Parser) peek(off int) byte {
	if p.pos+off < len(p.data) {
		return p.data[p.pos+off]
	}
	return 0
}

func (p *Parser) skipWhitespaceAndComments() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) {
			p.pos++
			continue
		}
		if c == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		return
	}
}

func (p *Parser) readToken() string {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		p.pos++
	}
	if p.pos == start {
		p.pos++
	}
	return string(p.data[start:p.pos])
}

func (p *Parser) readName() string {
	p.pos++ // '/'
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		p.pos++
	}
	return string(p.data[start:p.pos])
}

func (p *Parser) readLiteralString() (string, error) {
	p.pos++ // '('
	var buf bytes.Buffer
	depth := 1
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		switch c {
		case '\\':
			if p.pos < len(p.data) {
				buf.WriteByte(p.data[p.pos])
				p.pos++
			}
		case '(':
			depth++
			buf.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return buf.String(), nil
			}
			buf.WriteByte(c)
		default:
			buf.WriteByte(c)
		}
	}
	return "", fmt.Errorf("unclosed string")
}

func (p *Parser) readHexString() (string, error) {
	p.pos++ // '<'
	start := p.pos
	for p.pos < len(p.data) {
		if p.data[p.pos] == '>' {
			s := string(p.data[start:p.pos])
			p.pos++
			return s, nil
		}
		p.pos++
	}
	return "", fmt.Errorf("unclosed hex string")
}

// readBalanced returns the raw text of a nested array or dictionary,
// honouring literal strings inside it.
func (p *Parser) readBalanced(open, close string) (string, error) {
	start := p.pos
	depth := 0
	for p.pos < len(p.data) {
		switch {
		case p.data[p.pos] == '(':
			if _, err := p.readLiteralString(); err != nil {
				return "", err
			}
			continue
		case bytes.HasPrefix(p.data[p.pos:], []byte(open)):
			depth++
			p.pos += len(open)
			continue
		case bytes.HasPrefix(p.data[p.pos:], []byte(close)):
			depth--
			p.pos += len(close)
			if depth == 0 {
				return string(p.data[start:p.pos]), nil
			}
			continue
		}
		p.pos++
	}
	return "", fmt.Errorf("unclosed %s", open)
}

// skipInlineImageData advances past the binary payload of an inline image
// up to, but not including, the EI operator.
func (p *Parser) skipInlineImageData() {
	if p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}
	for i := p.pos; i+1 < len(p.data); i++ {
		if p.data[i] != 'E' || p.data[i+1] != 'I' {
			continue
		}
		if i > 0 && !isWhitespace(p.data[i-1]) {
			continue
		}
		if i+2 < len(p.data) && !isWhitespace(p.data[i+2]) && !isDelimiter(p.data[i+2]) {
			continue
		}
		p.pos = i
		return
	}
	p.pos = len(p.data)
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
