// Package query selects manifest records with boolean filter expressions
// written in expr or CEL.
package query

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/cel-go/cel"

	"github.com/yooasset/manifestTools/pkg/manifest"
)

// Language is a filter expression dialect.
type Language string

const (
	LangExpr Language = "expr"
	LangCEL  Language = "cel"
)

// Target is the record collection a filter runs over.
type Target string

const (
	TargetBundles Target = "bundles"
	TargetAssets  Target = "assets"
)

// ParseTarget parses a target name; singular forms are accepted.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "bundles", "bundle":
		return TargetBundles, nil
	case "assets", "asset":
		return TargetAssets, nil
	}
	return "", fmt.Errorf("unknown query target %q", s)
}

// Match is a record accepted by a filter.
type Match struct {
	Index  int            // position in the manifest collection
	Fields map[string]any // the environment the filter saw
}

// Filter is a compiled boolean expression over one record collection.
type Filter struct {
	lang   Language
	target Target
	source string
	eval   func(env map[string]any) (bool, error)
}

// CompileBundles compiles an expr filter over bundle records.
func CompileBundles(source string) (*Filter, error) {
	return Compile(LangExpr, TargetBundles, source)
}

// CompileAssets compiles an expr filter over asset records.
func CompileAssets(source string) (*Filter, error) {
	return Compile(LangExpr, TargetAssets, source)
}

// Compile compiles source for the given dialect and target. An empty source
// matches every record. Expressions that do not yield a boolean are rejected.
func Compile(lang Language, target Target, source string) (*Filter, error) {
	if source == "" {
		source = "true"
	}

	vars, err := variables(target)
	if err != nil {
		return nil, err
	}

	f := &Filter{lang: lang, target: target, source: source}
	switch lang {
	case LangExpr, "":
		f.lang = LangExpr
		f.eval, err = compileExpr(source, vars)
	case LangCEL:
		f.eval, err = compileCEL(source, vars)
	default:
		return nil, fmt.Errorf("unknown query language %q", lang)
	}
	if err != nil {
		return nil, fmt.Errorf("compile %s filter %q: %w", f.lang, source, err)
	}
	return f, nil
}

func compileExpr(source string, vars map[string]varType) (func(map[string]any) (bool, error), error) {
	sample := make(map[string]any, len(vars))
	for name, typ := range vars {
		sample[name] = typ.zero()
	}

	program, err := expr.Compile(source, expr.Env(sample), expr.AsBool())
	if err != nil {
		return nil, err
	}

	return func(env map[string]any) (bool, error) {
		out, err := vm.Run(program, env)
		if err != nil {
			return false, err
		}
		return out.(bool), nil
	}, nil
}

func compileCEL(source string, vars map[string]varType) (func(map[string]any) (bool, error), error) {
	opts := make([]cel.EnvOption, 0, len(vars))
	for name, typ := range vars {
		opts = append(opts, cel.Variable(name, typ.cel()))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create environment: %w", err)
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression yields %s, not bool", ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return func(env map[string]any) (bool, error) {
		val, _, err := program.Eval(env)
		if err != nil {
			return false, err
		}
		b, ok := val.Value().(bool)
		if !ok {
			return false, fmt.Errorf("expression yielded %T", val.Value())
		}
		return b, nil
	}, nil
}

// Language returns the filter dialect.
func (f *Filter) Language() Language {
	return f.lang
}

// Target returns the collection the filter runs over.
func (f *Filter) Target() Target {
	return f.target
}

func (f *Filter) String() string {
	return f.source
}

// Run applies the filter to the collection it was compiled for.
func (f *Filter) Run(m *manifest.Manifest) ([]Match, error) {
	if f.target == TargetAssets {
		return f.Assets(m)
	}
	return f.Bundles(m)
}

// Bundles returns the bundle records the filter accepts, in manifest order.
func (f *Filter) Bundles(m *manifest.Manifest) ([]Match, error) {
	if f.target != TargetBundles {
		return nil, fmt.Errorf("filter compiled for %s, not bundles", f.target)
	}
	var matches []Match
	for i := range m.Bundles {
		env := BundleEnv(i, &m.Bundles[i])
		ok, err := f.eval(env)
		if err != nil {
			return nil, fmt.Errorf("evaluate bundle %d: %w", i, err)
		}
		if ok {
			matches = append(matches, Match{Index: i, Fields: env})
		}
	}
	return matches, nil
}

// Assets returns the asset records the filter accepts, in manifest order.
func (f *Filter) Assets(m *manifest.Manifest) ([]Match, error) {
	if f.target != TargetAssets {
		return nil, fmt.Errorf("filter compiled for %s, not assets", f.target)
	}
	var matches []Match
	for i := range m.Assets {
		env := AssetEnv(m, i)
		ok, err := f.eval(env)
		if err != nil {
			return nil, fmt.Errorf("evaluate asset %d: %w", i, err)
		}
		if ok {
			matches = append(matches, Match{Index: i, Fields: env})
		}
	}
	return matches, nil
}
