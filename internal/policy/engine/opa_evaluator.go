package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/rs/zerolog"

	"teatime-live/internal/logging"
)

const admissionQuery = "data.teatime.admission.admit"

// DefaultAdmissionPolicy admits the owner always, and anyone else while the room is below the board's
// max audience. A max audience of 0 means unlimited.
const DefaultAdmissionPolicy = `package teatime.admission

default admit = false

admit if {
	input.actor.is_owner
}

admit if {
	input.board.max_audience <= 0
}

admit if {
	input.room.audience_count < input.board.max_audience
}
`

// OPAEvaluator evaluates the admission policy with an in-process OPA Rego engine.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
	log   zerolog.Logger
}

// NewOPAEvaluator compiles policy (DefaultAdmissionPolicy when empty) and prepares the admit query.
func NewOPAEvaluator(ctx context.Context, policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = DefaultAdmissionPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"admission.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile admission policy: %w", err)
	}
	q, err := rego.New(
		rego.Query(admissionQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare admission policy: %w", err)
	}
	return &OPAEvaluator{query: q, log: logging.Module("policy")}, nil
}

// LoadPolicyFile reads a Rego module from path. An empty path returns the default policy.
func LoadPolicyFile(path string) (string, error) {
	if path == "" {
		return DefaultAdmissionPolicy, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read admission policy: %w", err)
	}
	return string(b), nil
}

// HealthCheck evaluates the prepared query against a minimal input. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	_, err := e.eval(ctx, AdmissionInput{MaxAudience: 1})
	return err
}

// EvaluateAdmission runs the policy. If evaluation fails the actor is admitted and Fallback is set.
func (e *OPAEvaluator) EvaluateAdmission(ctx context.Context, in AdmissionInput) (AdmissionResult, error) {
	admit, err := e.eval(ctx, in)
	if err != nil {
		e.log.Warn().Err(err).Msg("admission evaluation failed, admitting")
		return AdmissionResult{Admit: true, Fallback: true}, nil
	}
	return AdmissionResult{Admit: admit}, nil
}

func (e *OPAEvaluator) eval(ctx context.Context, in AdmissionInput) (bool, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(buildInput(in)))
	if err != nil {
		return false, fmt.Errorf("eval admission policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("admission query returned no result")
	}
	admit, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("admission query returned %T, want bool", rs[0].Expressions[0].Value)
	}
	return admit, nil
}

func buildInput(in AdmissionInput) map[string]interface{} {
	return map[string]interface{}{
		"board": map[string]interface{}{"max_audience": in.MaxAudience},
		"room":  map[string]interface{}{"audience_count": in.AudienceCount},
		"actor": map[string]interface{}{"is_owner": in.IsOwner},
	}
}
