package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func analyzeSource(t *testing.T, src string) error {
	tokens, err := NewLexer(src).Tokenize()
	assert.Nil(t, err, src)
	program, err := NewParser(tokens).Parse()
	assert.Nil(t, err, src)
	return NewAnalyzer().Analyze(program)
}

func TestAnalyzer_Checks(t *testing.T) {
	testData := []struct {
		src      string
		expected string // empty means the program is valid
	}{
		{src: "var x = 1\nprint x\n"},
		{src: "x = 1\n", expected: "'x' is not declared"},
		{src: "var x\nprint x\n", expected: "'x' is used before it has a value"},
		{src: "var x\nx = 1\nprint x\n"},
		{src: "var x\nvar y = x + 1\n", expected: "'x' is used before it has a value"},
		{src: "var x\nvar x\n", expected: "'x' is already declared in this scope"},
		{src: "var x = 1\nif x > 0:\n    var x = 2\n    print x\n"},
		{src: "return 1\n", expected: "return outside of a function"},
		{src: "if true:\n    return\n", expected: "return outside of a function"},
		{src: "func f():\n    return 1\n"},
		{src: "func f(a):\n    if a:\n        return 1\n    return 2\n"},
		{src: "func f(a):\n    var a = 1\n", expected: "'a' is already declared in this scope"},
		{src: "func f(a):\n    if a:\n        var a = 2\n        print a\n"},
		{src: "input x\n", expected: "input target 'x' is not declared"},
		{src: "var x\ninput x\nprint x\n"},
		{src: "print f()\n", expected: "function 'f' is not declared"},
		{src: "var g = 1\ng()\n", expected: "'g' is not a function"},
		{src: "func f(a, b):\n    return a\nprint f(1)\n", expected: "f() takes 2 arguments, got 1"},
		{src: "func f():\n    return 1\nprint f()\n"},
		{src: "print int(1, 2)\n", expected: "int() takes exactly 1 argument, got 2"},
		{src: "print str(42)\n"},
		{src: "print bool(0)\nprint float(1)\n"},
		{src: "var arr = [1, 2]\nloop v in arr:\n    print v\n"},
		{src: "var arr = [1]\nloop v in arr:\n    print v\nprint v\n", expected: "'v' is not declared"},
		{src: "var arr = [1]\nloop v in arr:\n    var v = 5\n", expected: "'v' is already declared in this scope"},
		{src: "var arr = [1]\nprint arr[0]\nprint arr.length\n"},
		{src: "print a.length\n", expected: "'a' is not declared"},
		{src: "var a = [1]\na[0] = 2\n"},
		{src: "func f(a):\n    print a\n"},
		{src: "loop 3 times:\n    var t = 1\n    print t\n"},
	}
	for _, data := range testData {
		err := analyzeSource(t, data.src)
		if data.expected == "" {
			assert.Nil(t, err, data.src)
			continue
		}
		assert.NotNil(t, err, data.src)
		if err != nil {
			assert.Contains(t, err.Error(), data.expected, data.src)
		}
	}
}

// Conversions resolve before user functions of the same name, so the
// single-argument arity still applies.
func TestAnalyzer_ConversionShadowsUserFunction(t *testing.T) {
	assert.Nil(t, analyzeSource(t, "func int(a):\n    return a\nprint int(5)\n"))

	err := analyzeSource(t, "func int(a, b):\n    return a\nprint int(5, 6)\n")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "int() takes exactly 1 argument, got 2")
}

func TestAnalyzer_ErrorPosition(t *testing.T) {
	err := analyzeSource(t, "print 1\nx = 1\n")
	compileErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, PhaseSemantic, compileErr.Phase)
	assert.Equal(t, 2, compileErr.Line)
	assert.Equal(t, 1, compileErr.Col)
}

func TestAnalyzer_SymbolTable(t *testing.T) {
	src := "var count = 1\n" +
		"func twice(n):\n" +
		"    var result = n * 2\n" +
		"    return result\n"
	tokens, err := NewLexer(src).Tokenize()
	assert.Nil(t, err)
	program, err := NewParser(tokens).Parse()
	assert.Nil(t, err)

	analyzer := NewAnalyzer()
	assert.Nil(t, analyzer.Analyze(program))

	// Frames appear in pop order, innermost first; symbols are sorted.
	// Parameters and body locals land in the same frame.
	expected := "scope func twice (depth 1):\n" +
		"  var n (initialized)\n" +
		"  var result (initialized)\n" +
		"scope global (depth 0):\n" +
		"  var count (initialized)\n" +
		"  func twice/1\n"
	assert.Equal(t, expected, analyzer.SymbolTable())
}
