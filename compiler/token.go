package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a 1-based source location.
type Position struct {
	Line int
	Col  int
}

func (pos Position) String() string {
	return fmt.Sprintf("%d:%d", pos.Line, pos.Col)
}

// TokenType tags a Token with its lexical class.
type TokenType int

const (
	// Structural markers.
	NewlineTP TokenType = iota // end of a logical line
	IndentTP                   // one level deeper than the previous line
	DedentTP                   // back to an enclosing level
	EOFTP                      // end of input

	// Literals and names.
	IntTP        // 42
	FloatTP      // 3.14
	StringTP     // "hi" or 'hi'
	BoolTP       // true, false
	IdentifierTP // counter

	// Keywords.
	VarTP    // var
	FuncTP   // func
	ReturnTP // return
	IfTP     // if
	ElseTP   // else
	WhileTP  // while
	LoopTP   // loop
	InTP     // in
	TimesTP  // times
	PrintTP  // print
	InputTP  // input

	// Operators and delimiters.
	PlusTP         // +
	MinusTP        // -
	StarTP         // *
	SlashTP        // /
	PercentTP      // %
	CaretTP        // ^ (concatenation)
	AssignTP       // =
	EqualTP        // ==
	NotEqualTP     // !=
	GreaterTP      // >
	LessTP         // <
	GreaterEqualTP // >=
	LessEqualTP    // <=
	AndTP          // &&
	OrTP           // ||
	NotTP          // !
	LeftParenTP    // (
	RightParenTP   // )
	LeftBracketTP  // [
	RightBracketTP // ]
	CommaTP        // ,
	DotTP          // .
	ColonTP        // :
)

var keyWordTPMap = map[string]TokenType{
	"var":    VarTP,
	"func":   FuncTP,
	"return": ReturnTP,
	"if":     IfTP,
	"else":   ElseTP,
	"while":  WhileTP,
	"loop":   LoopTP,
	"in":     InTP,
	"times":  TimesTP,
	"print":  PrintTP,
	"input":  InputTP,
}

var tokenTPNames = map[TokenType]string{
	NewlineTP:      "NEWLINE",
	IndentTP:       "INDENT",
	DedentTP:       "DEDENT",
	EOFTP:          "EOF",
	IntTP:          "INT",
	FloatTP:        "FLOAT",
	StringTP:       "STRING",
	BoolTP:         "BOOL",
	IdentifierTP:   "IDENT",
	VarTP:          "'var'",
	FuncTP:         "'func'",
	ReturnTP:       "'return'",
	IfTP:           "'if'",
	ElseTP:         "'else'",
	WhileTP:        "'while'",
	LoopTP:         "'loop'",
	InTP:           "'in'",
	TimesTP:        "'times'",
	PrintTP:        "'print'",
	InputTP:        "'input'",
	PlusTP:         "'+'",
	MinusTP:        "'-'",
	StarTP:         "'*'",
	SlashTP:        "'/'",
	PercentTP:      "'%'",
	CaretTP:        "'^'",
	AssignTP:       "'='",
	EqualTP:        "'=='",
	NotEqualTP:     "'!='",
	GreaterTP:      "'>'",
	LessTP:         "'<'",
	GreaterEqualTP: "'>='",
	LessEqualTP:    "'<='",
	AndTP:          "'&&'",
	OrTP:           "'||'",
	NotTP:          "'!'",
	LeftParenTP:    "'('",
	RightParenTP:   "')'",
	LeftBracketTP:  "'['",
	RightBracketTP: "']'",
	CommaTP:        "','",
	DotTP:          "'.'",
	ColonTP:        "':'",
}

func (tp TokenType) String() string { return tokenTPNames[tp] }

// operatorText maps operator token types to their source spelling. The AST
// dump uses it and the IR generator carries it as the operator tag operand.
var operatorText = map[TokenType]string{
	PlusTP:         "+",
	MinusTP:        "-",
	StarTP:         "*",
	SlashTP:        "/",
	PercentTP:      "%",
	CaretTP:        "^",
	AssignTP:       "=",
	EqualTP:        "==",
	NotEqualTP:     "!=",
	GreaterTP:      ">",
	LessTP:         "<",
	GreaterEqualTP: ">=",
	LessEqualTP:    "<=",
	AndTP:          "&&",
	OrTP:           "||",
	NotTP:          "!",
}

// ValueKind tags a literal Value.
type ValueKind int

const (
	IntValue ValueKind = iota
	FloatValue
	BoolValue
	StringValue
)

// Value is a typed literal payload. It is carried unchanged from the token
// that lexed it through the AST and IR to code emission, so no stage ever
// has to re-derive a literal's kind from its text.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

func (val Value) String() string {
	switch val.Kind {
	case IntValue:
		return strconv.FormatInt(val.Int, 10)
	case FloatValue:
		return formatFloat(val.Float)
	case BoolValue:
		return strconv.FormatBool(val.Bool)
	default:
		return strconv.Quote(val.Str)
	}
}

// formatFloat keeps a decimal point in the text so it reads back as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Token is one lexical unit. Val is meaningful only for literal tokens.
type Token struct {
	Tp     TokenType
	Lexeme string
	Val    Value
	Pos    Position
}

func (token Token) String() string {
	switch token.Tp {
	case IntTP, FloatTP, StringTP, BoolTP:
		return fmt.Sprintf("%s %s at %s", token.Tp, token.Val, token.Pos)
	case IdentifierTP:
		return fmt.Sprintf("%s %s at %s", token.Tp, token.Lexeme, token.Pos)
	default:
		return fmt.Sprintf("%s at %s", token.Tp, token.Pos)
	}
}
