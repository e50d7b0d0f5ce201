package compiler

import (
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
)

func TestCompile_Scenarios(t *testing.T) {
	testData := []struct {
		name    string
		src     string
		needles []string
	}{
		{
			"variable then print",
			"var x = 1\nprint x\n",
			[]string{"def __main__():", "t0 = 1", "x = t0", "print(t1)"},
		},
		{
			"function declaration and call",
			"func add(a, b):\n    return a + b\nprint add(2, 3)\n",
			[]string{"def add(a, b):", "t2 = t0 + t1", "return t2", "t2 = add(t0, t1)", "print(t2)"},
		},
		{
			"counted loop",
			"loop 3 times:\n    print \"hi\"\n",
			[]string{"t2 = t1 < t0", "if not t2:", "t3 = \"hi\"", "print(t3)", "_pc = 2"},
		},
		{
			"collection loop",
			"var arr = [1, 2, 3]\nloop v in arr:\n    print v\n",
			[]string{"t0 = [t1, t2, t3]", "arr = t0", "t5 = len(t4)", "t8 = t4[t6]", "v = t8", "print(t9)"},
		},
	}
	for _, test := range testData {
		result, err := Compile(test.src, Options{})
		assert.Nil(t, err, test.name)
		assert.True(t, len(result.Tokens) > 0, test.name)
		assert.NotNil(t, result.Program, test.name)
		assert.Contains(t, result.SymbolTable, "scope global", test.name)
		assert.NotNil(t, result.IR, test.name)
		for _, needle := range test.needles {
			assert.Contains(t, result.Output, needle, test.name)
		}
		assert.True(t, strings.HasSuffix(result.Output, "if __name__ == \"__main__\":\n    __main__()\n"), test.name)
	}
}

// Codegen errors require IR the generator never produces, so the phases
// reachable from source text are lex, parse, and semantic.
func TestCompile_ErrorPhases(t *testing.T) {
	testData := []struct {
		src   string
		phase Phase
		msg   string
	}{
		{"if true:\n    print 1\n   print 2\n", PhaseLex, "indentation width 3 does not match any enclosing level"},
		{"var 1\n", PhaseParse, "expected IDENT after 'var', near '1'"},
		{"x = 1\n", PhaseSemantic, "'x' is not declared"},
	}
	for _, test := range testData {
		_, err := Compile(test.src, Options{})
		cerr, ok := err.(*Error)
		assert.True(t, ok, test.src)
		assert.Equal(t, test.phase, cerr.Phase, test.src)
		assert.Contains(t, cerr.Msg, test.msg, test.src)
	}
}

// A failed stage must still leave the artifacts of the stages before it
// on the result, and nothing from the stages after it.
func TestCompile_PartialResult(t *testing.T) {
	result, err := Compile("var x\nprint y\n", Options{})
	cerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, PhaseSemantic, cerr.Phase)
	assert.True(t, len(result.Tokens) > 0)
	assert.NotNil(t, result.Program)
	assert.Equal(t, "", result.SymbolTable)
	assert.Nil(t, result.IR)
	assert.Equal(t, "", result.Output)
}

func TestCompile_CollectParseErrors(t *testing.T) {
	src := "var = 1\nvar = 2\nprint 3\n"

	_, err := Compile(src, Options{})
	first, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, 1, first.Line)

	_, err = Compile(src, Options{CollectParseErrors: true})
	multi, ok := err.(*multierror.Error)
	assert.True(t, ok)
	assert.Len(t, multi.Errors, 2)
	for _, each := range multi.Errors {
		cerr, ok := each.(*Error)
		assert.True(t, ok)
		assert.Equal(t, PhaseParse, cerr.Phase)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	src := "var arr = [1, 2, 3]\nloop v in arr:\n    if v > 1:\n        print v ^ \"!\"\n"
	first, err := Compile(src, Options{})
	assert.Nil(t, err)
	second, err := Compile(src, Options{})
	assert.Nil(t, err)
	assert.Equal(t, first.IR.Dump(), second.IR.Dump())
	assert.Equal(t, first.Output, second.Output)
}
