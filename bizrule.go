package azguard

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RuleEvaluator evaluates a task business rule against the contextual
// parameters of an access check. A rule grants only when it yields true.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, rule string, params map[string]any) (bool, error)
}

// DefaultRuleEvaluator returns the expr-lang based evaluator. Compiled
// programs are kept in cache when it is non-nil.
func DefaultRuleEvaluator(cache RuleCache) RuleEvaluator {
	return &exprEvaluator{cache: cache}
}

// CompileRule checks that rule is a valid business rule expression.
func CompileRule(rule string) error {
	_, err := compileRule(rule)
	return err
}

type exprEvaluator struct {
	cache RuleCache
}

func (e *exprEvaluator) Evaluate(_ context.Context, rule string, params map[string]any) (bool, error) {
	program, err := e.program(rule)
	if err != nil {
		return false, err
	}
	if params == nil {
		params = map[string]any{}
	}
	out, err := expr.Run(program, params)
	if err != nil {
		return false, fmt.Errorf("%w: run %q: %w", ErrInvalidBizRule, rule, err)
	}
	ok, isBool := out.(bool)
	return isBool && ok, nil
}

func (e *exprEvaluator) program(rule string) (*vm.Program, error) {
	if e.cache != nil {
		if p, ok := e.cache.Get(rule); ok {
			return p, nil
		}
	}
	p, err := compileRule(rule)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(rule, p)
	}
	return p, nil
}

func compileRule(rule string) (*vm.Program, error) {
	p, err := expr.Compile(rule, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %w", ErrInvalidBizRule, rule, err)
	}
	return p, nil
}
