// Package policy decides whether a declared transaction intent may run
// directly, requires human approval, or is blocked outright.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by Evaluate.
const (
	DecisionAllow           = "allow"
	DecisionRequireApproval = "require_approval"
	DecisionBlock           = "block"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given rego policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.intent_policy.decision"),
		rego.Module("intent_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the intent policy. Input carries keys like intent,
// consumer_agent_id, service_id and the raw payload. An evaluation that
// produces no result, or a result of an unexpected shape, falls back to
// DecisionAllow only when the policy genuinely had nothing to say; malformed
// results are reported as errors so the caller can fail closed.
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default, so this only happens with an empty
		// ruleset.
		return DecisionAllow, nil
	}

	decision, ok := results[0].Expressions[0].Value.(string)
	if !ok {
		return "", fmt.Errorf("policy returned unexpected type %T", results[0].Expressions[0].Value)
	}

	switch decision {
	case DecisionAllow, DecisionRequireApproval, DecisionBlock:
		return decision, nil
	default:
		return "", fmt.Errorf("policy returned unknown decision %q", decision)
	}
}

// DefaultPolicy gates the intents the orchestrator treats as sensitive.
const DefaultPolicy = `
package intent_policy

default decision = "allow"

# Committing a transaction moves real resources; require a human in the loop.
decision = "require_approval" {
	input.intent == "transaction.commit"
}

decision = "require_approval" {
	input.intent == "payments.transfer"
}

# Identity-destroying operations never run through the router.
decision = "block" {
	input.intent == "agent.deregister"
}
`
