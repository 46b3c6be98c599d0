package policyadmin

import (
	"context"
	"errors"

	"herald/internal/domain"

	"github.com/open-policy-agent/opa/rego"
)

const defaultQuery = "data.herald.admin.allow"

// Engine evaluates the admin allow rule from a rego bundle. It is an
// optional second source next to the static allow-list.
type Engine struct {
	query rego.PreparedEvalQuery
}

var _ domain.AdminPolicy = (*Engine)(nil)

func NewEngineFromPath(ctx context.Context, bundlePath string) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		rego.Load([]string{bundlePath}, nil),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Allow(ctx context.Context, identity string) (bool, error) {
	if e == nil {
		return false, errors.New("policy engine is nil")
	}
	input := map[string]any{"identity": identity}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, errors.New("allow rule did not yield a boolean")
	}
	return allowed, nil
}
