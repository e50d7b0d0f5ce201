package compiler

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
)

func parseSource(t *testing.T, src string) *Program {
	tokens, err := NewLexer(src).Tokenize()
	assert.Nil(t, err, src)
	program, err := NewParser(tokens).Parse()
	assert.Nil(t, err, src)
	return program
}

func parseError(t *testing.T, src string) error {
	tokens, err := NewLexer(src).Tokenize()
	assert.Nil(t, err, src)
	_, err = NewParser(tokens).Parse()
	assert.NotNil(t, err, src)
	return err
}

func TestParser_Precedence(t *testing.T) {
	testData := []struct {
		src      string
		expected string
	}{
		{
			// Multiplication binds tighter than addition.
			src: "2 + 3 * 4\n",
			expected: "Program\n" +
				"  ExpressionStmt\n" +
				"    Binary +\n" +
				"      Literal 2\n" +
				"      Binary *\n" +
				"        Literal 3\n" +
				"        Literal 4\n",
		},
		{
			// Same level associates to the left; concat sits with + and -.
			src: "1 + 2 ^ \"s\"\n",
			expected: "Program\n" +
				"  ExpressionStmt\n" +
				"    Binary ^\n" +
				"      Binary +\n" +
				"        Literal 1\n" +
				"        Literal 2\n" +
				"      Literal \"s\"\n",
		},
		{
			src: "1 < 2 == true\n",
			expected: "Program\n" +
				"  ExpressionStmt\n" +
				"    Binary ==\n" +
				"      Binary <\n" +
				"        Literal 1\n" +
				"        Literal 2\n" +
				"      Literal true\n",
		},
		{
			src: "a || b && c\n",
			expected: "Program\n" +
				"  ExpressionStmt\n" +
				"    Binary ||\n" +
				"      Variable a\n" +
				"      Binary &&\n" +
				"        Variable b\n" +
				"        Variable c\n",
		},
		{
			src: "-x * y\n",
			expected: "Program\n" +
				"  ExpressionStmt\n" +
				"    Binary *\n" +
				"      Unary -\n" +
				"        Variable x\n" +
				"      Variable y\n",
		},
		{
			// Assignment associates to the right and yields a value.
			src: "x = y = 1\n",
			expected: "Program\n" +
				"  ExpressionStmt\n" +
				"    Binary =\n" +
				"      Variable x\n" +
				"      Binary =\n" +
				"        Variable y\n" +
				"        Literal 1\n",
		},
	}
	for _, data := range testData {
		program := parseSource(t, data.src)
		assert.Equal(t, data.expected, program.Dump(), data.src)
	}
}

func TestParser_Statements(t *testing.T) {
	testData := []struct {
		src      string
		expected string
	}{
		{
			src: "var x = 10\ninput x\n",
			expected: "Program\n" +
				"  VarDecl x\n" +
				"    Literal 10\n" +
				"  Input x\n",
		},
		{
			src: "func add(a, b):\n    return a + b\n",
			expected: "Program\n" +
				"  FuncDecl add(a, b)\n" +
				"    Block\n" +
				"      Return\n" +
				"        Binary +\n" +
				"          Variable a\n" +
				"          Variable b\n",
		},
		{
			src: "loop x in arr:\n    print x\n",
			expected: "Program\n" +
				"  LoopIn x\n" +
				"    Variable arr\n" +
				"    Block\n" +
				"      Print\n" +
				"        Variable x\n",
		},
		{
			src: "loop 3 times:\n    print 1\n",
			expected: "Program\n" +
				"  LoopTimes\n" +
				"    Literal 3\n" +
				"    Block\n" +
				"      Print\n" +
				"        Literal 1\n",
		},
		{
			// A bare identifier before 'times' is a count expression, not
			// a loop variable.
			src: "loop n times:\n    print 1\n",
			expected: "Program\n" +
				"  LoopTimes\n" +
				"    Variable n\n" +
				"    Block\n" +
				"      Print\n" +
				"        Literal 1\n",
		},
		{
			src: "while i < 3:\n    i = i + 1\n",
			expected: "Program\n" +
				"  While\n" +
				"    Binary <\n" +
				"      Variable i\n" +
				"      Literal 3\n" +
				"    Block\n" +
				"      ExpressionStmt\n" +
				"        Binary =\n" +
				"          Variable i\n" +
				"          Binary +\n" +
				"            Variable i\n" +
				"            Literal 1\n",
		},
		{
			src: "return\n",
			expected: "Program\n" +
				"  Return\n",
		},
	}
	for _, data := range testData {
		program := parseSource(t, data.src)
		assert.Equal(t, data.expected, program.Dump(), data.src)
	}
}

func TestParser_IfElseChain(t *testing.T) {
	src := "if a:\n" +
		"    print 1\n" +
		"else if b:\n" +
		"    print 2\n" +
		"else:\n" +
		"    print 3\n"
	expected := "Program\n" +
		"  If\n" +
		"    Variable a\n" +
		"    Block\n" +
		"      Print\n" +
		"        Literal 1\n" +
		"  Else\n" +
		"    If\n" +
		"      Variable b\n" +
		"      Block\n" +
		"        Print\n" +
		"          Literal 2\n" +
		"    Else\n" +
		"      Block\n" +
		"        Print\n" +
		"          Literal 3\n"
	program := parseSource(t, src)
	assert.Equal(t, expected, program.Dump())
}

func TestParser_PostfixChains(t *testing.T) {
	testData := []struct {
		src      string
		expected string
	}{
		{
			src: "m[0].length\n",
			expected: "Program\n" +
				"  ExpressionStmt\n" +
				"    Member length\n" +
				"      Index\n" +
				"        Variable m\n" +
				"        Literal 0\n",
		},
		{
			src: "f(1, g(2))\n",
			expected: "Program\n" +
				"  ExpressionStmt\n" +
				"    Call f\n" +
				"      Literal 1\n" +
				"      Call g\n" +
				"        Literal 2\n",
		},
		{
			src: "[1, 2.5, \"x\"]\n",
			expected: "Program\n" +
				"  ExpressionStmt\n" +
				"    ArrayLiteral\n" +
				"      Literal 1\n" +
				"      Literal 2.5\n" +
				"      Literal \"x\"\n",
		},
	}
	for _, data := range testData {
		program := parseSource(t, data.src)
		assert.Equal(t, data.expected, program.Dump(), data.src)
	}
}

func TestParser_Errors(t *testing.T) {
	testData := []struct {
		src      string
		expected string
	}{
		{src: "var 1\n", expected: "expected IDENT after 'var'"},
		{src: "1 = 2\n", expected: "invalid assignment target, near '='"},
		{src: "a + b = 3\n", expected: "invalid assignment target"},
		{src: "f() = 1\n", expected: "invalid assignment target"},
		{src: "f()(1)\n", expected: "only named functions can be called"},
		{src: "arr[0](1)\n", expected: "only named functions can be called"},
		{src: "if x\n    print 1\n", expected: "expected ':' after if condition, near NEWLINE"},
		{src: "while x print\n", expected: "expected ':' after while condition, near 'print'"},
		{src: "if x:\nprint 1\n", expected: "expected INDENT to begin a block, near 'print'"},
		{src: "loop 3:\n    print 1\n", expected: "expected 'times' after loop count"},
		{src: "f(1\n", expected: "expected ')' after call arguments, near NEWLINE"},
		{src: "input 3\n", expected: "expected IDENT after 'input', near '3'"},
		{src: "print\n", expected: "unexpected token in expression, near NEWLINE"},
	}
	for _, data := range testData {
		err := parseError(t, data.src)
		assert.Contains(t, err.Error(), data.expected, data.src)
	}
}

func TestParser_ErrorPosition(t *testing.T) {
	err := parseError(t, "var x = 1\nvar 2\n")
	compileErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, PhaseParse, compileErr.Phase)
	assert.Equal(t, 2, compileErr.Line)
	assert.Equal(t, 5, compileErr.Col)
}

func TestParser_CollectAll(t *testing.T) {
	src := "var = 1\nvar = 2\nprint 3\n"
	tokens, err := NewLexer(src).Tokenize()
	assert.Nil(t, err)

	parser := NewParser(tokens)
	parser.CollectAll = true
	program, err := parser.Parse()
	assert.Nil(t, program)
	multi, ok := err.(*multierror.Error)
	assert.True(t, ok)
	assert.Len(t, multi.Errors, 2)
	assert.Contains(t, multi.Errors[0].Error(), "expected IDENT after 'var'")
	assert.Contains(t, multi.Errors[1].Error(), "expected IDENT after 'var'")
}

func TestParser_StopsAtFirstErrorByDefault(t *testing.T) {
	err := parseError(t, "var = 1\nvar = 2\n")
	compileErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, 1, compileErr.Line)
}
