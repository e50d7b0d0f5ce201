package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adder-lang/adder/util"
)

// A tab counts as this many indentation units; a space counts as one.
const tabWidth = 4

// Lexer turns source text into a token sequence. Each logical line is
// measured against a stack of open indentation widths; INDENT and DEDENT
// tokens mark the transitions, and the stream always ends with enough
// DEDENTs to close every open level, then EOF.
type Lexer struct {
	src         []rune
	pos         int
	line        int
	col         int
	indents     []int
	tokens      []Token
	atLineStart bool
}

func NewLexer(src string) *Lexer {
	return &Lexer{
		src:         []rune(src),
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
	}
}

// Tokenize scans the whole input. The first lexical error aborts the scan.
func (lexer *Lexer) Tokenize() ([]Token, error) {
	for !lexer.eof() {
		if lexer.atLineStart {
			if err := lexer.handleLineStart(); err != nil {
				return nil, err
			}
			continue
		}
		if err := lexer.handleToken(); err != nil {
			return nil, err
		}
	}
	lexer.finish()
	return lexer.tokens, nil
}

// handleLineStart measures the indentation of the next logical line. Blank
// and comment-only lines are consumed without affecting the stack.
func (lexer *Lexer) handleLineStart() error {
	pos := lexer.position()
	width := 0
	for {
		r := lexer.peek()
		if r == ' ' {
			width++
		} else if r == '\t' {
			width += tabWidth
		} else if r == '\r' {
			// carried over from CRLF input, no width
		} else {
			break
		}
		lexer.advance()
	}
	if lexer.eof() {
		return nil
	}
	if lexer.peek() == '\n' {
		lexer.advance()
		return nil
	}
	if lexer.peek() == '/' && lexer.peekNext() == '/' {
		lexer.skipComment()
		if lexer.peek() == '\n' {
			lexer.advance()
		}
		return nil
	}
	top := lexer.indents[len(lexer.indents)-1]
	switch {
	case width > top:
		lexer.indents = append(lexer.indents, width)
		lexer.emit(IndentTP, "", pos)
	case width < top:
		for lexer.indents[len(lexer.indents)-1] > width {
			lexer.indents = lexer.indents[:len(lexer.indents)-1]
			lexer.emit(DedentTP, "", pos)
		}
		if lexer.indents[len(lexer.indents)-1] != width {
			return lexer.makeError(pos, "indentation width %d does not match any enclosing level", width)
		}
	}
	lexer.atLineStart = false
	return nil
}

func (lexer *Lexer) handleToken() error {
	r := lexer.peek()
	switch {
	case r == ' ' || r == '\t' || r == '\r':
		lexer.advance()
		return nil
	case r == '\n':
		pos := lexer.position()
		lexer.advance()
		lexer.emit(NewlineTP, "", pos)
		lexer.atLineStart = true
		return nil
	case r == '/' && lexer.peekNext() == '/':
		lexer.skipComment()
		return nil
	case util.IsIdentStart(r):
		lexer.handleIdentifier()
		return nil
	case util.IsDigit(r):
		return lexer.handleNumber()
	case r == '\'' || r == '"':
		return lexer.handleString()
	default:
		return lexer.handleOperator()
	}
}

func (lexer *Lexer) handleIdentifier() {
	pos := lexer.position()
	start := lexer.pos
	for util.IsIdentPart(lexer.peek()) {
		lexer.advance()
	}
	word := string(lexer.src[start:lexer.pos])
	if word == "true" || word == "false" {
		lexer.emitVal(BoolTP, word, Value{Kind: BoolValue, Bool: word == "true"}, pos)
		return
	}
	if tp, ok := keyWordTPMap[word]; ok {
		lexer.emit(tp, word, pos)
		return
	}
	lexer.emit(IdentifierTP, word, pos)
}

func (lexer *Lexer) handleNumber() error {
	pos := lexer.position()
	start := lexer.pos
	seenDot := false
	for {
		r := lexer.peek()
		if util.IsDigit(r) {
			lexer.advance()
			continue
		}
		if r == '.' && util.IsDigit(lexer.peekNext()) {
			if seenDot {
				return lexer.makeError(lexer.position(), "malformed number: second decimal point")
			}
			seenDot = true
			lexer.advance()
			continue
		}
		break
	}
	text := string(lexer.src[start:lexer.pos])
	if seenDot {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return lexer.makeError(pos, "malformed number %s", text)
		}
		lexer.emitVal(FloatTP, text, Value{Kind: FloatValue, Float: f}, pos)
		return nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return lexer.makeError(pos, "number %s is out of range", text)
	}
	lexer.emitVal(IntTP, text, Value{Kind: IntValue, Int: n}, pos)
	return nil
}

// handleString scans a quoted literal. The only recognized escape is a
// backslash before the opening quote character; every other rune, the
// backslash included, is kept as written.
func (lexer *Lexer) handleString() error {
	pos := lexer.position()
	quote := lexer.advance()
	var sb strings.Builder
	for {
		if lexer.eof() {
			return lexer.makeError(pos, "unterminated string")
		}
		r := lexer.advance()
		if r == quote {
			break
		}
		if r == '\\' && lexer.peek() == quote {
			sb.WriteRune(lexer.advance())
			continue
		}
		sb.WriteRune(r)
	}
	lexer.emitVal(StringTP, sb.String(), Value{Kind: StringValue, Str: sb.String()}, pos)
	return nil
}

func (lexer *Lexer) handleOperator() error {
	pos := lexer.position()
	r := lexer.advance()
	switch r {
	case '+':
		lexer.emit(PlusTP, "+", pos)
	case '-':
		lexer.emit(MinusTP, "-", pos)
	case '*':
		lexer.emit(StarTP, "*", pos)
	case '/':
		lexer.emit(SlashTP, "/", pos)
	case '%':
		lexer.emit(PercentTP, "%", pos)
	case '^':
		lexer.emit(CaretTP, "^", pos)
	case '(':
		lexer.emit(LeftParenTP, "(", pos)
	case ')':
		lexer.emit(RightParenTP, ")", pos)
	case '[':
		lexer.emit(LeftBracketTP, "[", pos)
	case ']':
		lexer.emit(RightBracketTP, "]", pos)
	case ',':
		lexer.emit(CommaTP, ",", pos)
	case '.':
		lexer.emit(DotTP, ".", pos)
	case ':':
		lexer.emit(ColonTP, ":", pos)
	case '=':
		if lexer.match('=') {
			lexer.emit(EqualTP, "==", pos)
		} else {
			lexer.emit(AssignTP, "=", pos)
		}
	case '!':
		if lexer.match('=') {
			lexer.emit(NotEqualTP, "!=", pos)
		} else {
			lexer.emit(NotTP, "!", pos)
		}
	case '>':
		if lexer.match('=') {
			lexer.emit(GreaterEqualTP, ">=", pos)
		} else {
			lexer.emit(GreaterTP, ">", pos)
		}
	case '<':
		if lexer.match('=') {
			lexer.emit(LessEqualTP, "<=", pos)
		} else {
			lexer.emit(LessTP, "<", pos)
		}
	case '&':
		if !lexer.match('&') {
			return lexer.makeError(pos, "unexpected character '&', expected '&&'")
		}
		lexer.emit(AndTP, "&&", pos)
	case '|':
		if !lexer.match('|') {
			return lexer.makeError(pos, "unexpected character '|', expected '||'")
		}
		lexer.emit(OrTP, "||", pos)
	default:
		return lexer.makeError(pos, "unexpected character %q", r)
	}
	return nil
}

// finish closes the stream: a NEWLINE is synthesized when the final line
// had tokens but no trailing newline, open indentation levels are closed
// with DEDENTs, and EOF is appended.
func (lexer *Lexer) finish() {
	pos := lexer.position()
	if !lexer.atLineStart {
		lexer.emit(NewlineTP, "", pos)
	}
	for len(lexer.indents) > 1 {
		lexer.indents = lexer.indents[:len(lexer.indents)-1]
		lexer.emit(DedentTP, "", pos)
	}
	lexer.emit(EOFTP, "", pos)
}

func (lexer *Lexer) skipComment() {
	for !lexer.eof() && lexer.peek() != '\n' {
		lexer.advance()
	}
}

func (lexer *Lexer) eof() bool {
	return lexer.pos >= len(lexer.src)
}

func (lexer *Lexer) peek() rune {
	if lexer.eof() {
		return 0
	}
	return lexer.src[lexer.pos]
}

func (lexer *Lexer) peekNext() rune {
	if lexer.pos+1 >= len(lexer.src) {
		return 0
	}
	return lexer.src[lexer.pos+1]
}

func (lexer *Lexer) advance() rune {
	r := lexer.src[lexer.pos]
	lexer.pos++
	if r == '\n' {
		lexer.line++
		lexer.col = 1
	} else {
		lexer.col++
	}
	return r
}

func (lexer *Lexer) match(r rune) bool {
	if lexer.peek() != r {
		return false
	}
	lexer.advance()
	return true
}

func (lexer *Lexer) position() Position {
	return Position{Line: lexer.line, Col: lexer.col}
}

func (lexer *Lexer) emit(tp TokenType, lexeme string, pos Position) {
	lexer.tokens = append(lexer.tokens, Token{Tp: tp, Lexeme: lexeme, Pos: pos})
}

func (lexer *Lexer) emitVal(tp TokenType, lexeme string, val Value, pos Position) {
	lexer.tokens = append(lexer.tokens, Token{Tp: tp, Lexeme: lexeme, Val: val, Pos: pos})
}

func (lexer *Lexer) makeError(pos Position, format string, args ...interface{}) error {
	return &Error{Phase: PhaseLex, Msg: fmt.Sprintf(format, args...), Line: pos.Line, Col: pos.Col}
}
