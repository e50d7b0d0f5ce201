// Package compiler translates Adder source into Python 3 source. The
// pipeline runs five stages: the Lexer turns the indentation-structured
// text into tokens, the Parser builds the AST, the Analyzer validates
// scopes and arities, the IRGenerator lowers the tree to linear label
// and jump instructions, and the CodeGenerator renders those as a Python
// program whose control flow is a program counter dispatch loop.
package compiler

import (
	"github.com/golang/glog"
)

// Options controls how a single compilation behaves.
type Options struct {
	// CollectParseErrors keeps parsing after a syntax error and reports
	// every error found instead of only the first.
	CollectParseErrors bool
}

// Result carries the artifacts of every stage, so callers can dump
// intermediate forms as well as the final Python text.
type Result struct {
	Tokens      []Token
	Program     *Program
	SymbolTable string
	IR          *IRProgram
	Output      string
}

// Compile runs the full pipeline over src. On error the returned Result
// still holds the artifacts of the stages that finished.
func Compile(src string, opts Options) (*Result, error) {
	result := &Result{}

	tokens, err := NewLexer(src).Tokenize()
	if err != nil {
		return result, err
	}
	result.Tokens = tokens
	glog.V(3).Infof("lex: %d tokens", len(tokens))

	parser := NewParser(tokens)
	parser.CollectAll = opts.CollectParseErrors
	program, err := parser.Parse()
	if err != nil {
		return result, err
	}
	result.Program = program
	glog.V(3).Infof("parse: %d top level statements", len(program.Stmts))

	analyzer := NewAnalyzer()
	if err = analyzer.Analyze(program); err != nil {
		return result, err
	}
	result.SymbolTable = analyzer.SymbolTable()
	glog.V(3).Info("semantic analysis passed")

	result.IR = NewIRGenerator().Generate(program)
	glog.V(3).Infof("ir: %d functions", len(result.IR.Functions))

	output, err := NewCodeGenerator().Generate(result.IR)
	if err != nil {
		return result, err
	}
	result.Output = output
	glog.V(3).Infof("codegen: %d bytes of python", len(output))
	return result, nil
}
