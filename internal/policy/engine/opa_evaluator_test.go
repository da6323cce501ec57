package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	ctx := context.Background()
	e, err := NewOPAEvaluator(ctx, "")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	if err := e.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_DefaultPolicy(t *testing.T) {
	ctx := context.Background()
	e, err := NewOPAEvaluator(ctx, "")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	testCases := []struct {
		name string
		in   AdmissionInput
		want bool
	}{
		{"room has space", AdmissionInput{MaxAudience: 3, AudienceCount: 2}, true},
		{"room full", AdmissionInput{MaxAudience: 3, AudienceCount: 3}, false},
		{"room over full", AdmissionInput{MaxAudience: 3, AudienceCount: 5}, false},
		{"owner in full room", AdmissionInput{MaxAudience: 3, AudienceCount: 3, IsOwner: true}, true},
		{"unlimited", AdmissionInput{MaxAudience: 0, AudienceCount: 100}, true},
		{"empty room", AdmissionInput{MaxAudience: 1}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := e.EvaluateAdmission(ctx, tc.in)
			if err != nil {
				t.Fatalf("EvaluateAdmission: %v", err)
			}
			if res.Admit != tc.want {
				t.Errorf("Admit = %v, want %v", res.Admit, tc.want)
			}
			if res.Fallback {
				t.Error("Fallback should be false for a healthy policy")
			}
		})
	}
}

func TestOPAEvaluator_CustomPolicy(t *testing.T) {
	policy := `package teatime.admission

default admit = false

admit if {
	input.actor.is_owner
}
`
	ctx := context.Background()
	e, err := NewOPAEvaluator(ctx, policy)
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	res, _ := e.EvaluateAdmission(ctx, AdmissionInput{MaxAudience: 10})
	if res.Admit {
		t.Error("owner-only policy should refuse viewers")
	}
}

func TestOPAEvaluator_NonBooleanFallsBack(t *testing.T) {
	policy := `package teatime.admission

admit := "yes"
`
	ctx := context.Background()
	e, err := NewOPAEvaluator(ctx, policy)
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	res, err := e.EvaluateAdmission(ctx, AdmissionInput{MaxAudience: 1, AudienceCount: 1})
	if err != nil {
		t.Fatalf("EvaluateAdmission: %v", err)
	}
	if !res.Admit || !res.Fallback {
		t.Errorf("result = %+v, want fallback admit", res)
	}
	if err := e.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck should report a non-boolean decision")
	}
}

func TestOPAEvaluator_UndefinedFallsBack(t *testing.T) {
	policy := `package teatime.other

allow := true
`
	ctx := context.Background()
	e, err := NewOPAEvaluator(ctx, policy)
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}
	res, _ := e.EvaluateAdmission(ctx, AdmissionInput{MaxAudience: 1, AudienceCount: 1})
	if !res.Admit || !res.Fallback {
		t.Errorf("result = %+v, want fallback admit", res)
	}
}

func TestNewOPAEvaluator_InvalidPolicy(t *testing.T) {
	if _, err := NewOPAEvaluator(context.Background(), "package broken\n\nadmit if {"); err == nil {
		t.Error("NewOPAEvaluator should reject a policy that does not compile")
	}
}

func TestLoadPolicyFile(t *testing.T) {
	got, err := LoadPolicyFile("")
	if err != nil || got != DefaultAdmissionPolicy {
		t.Errorf("LoadPolicyFile(\"\") = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "admission.rego")
	if err := os.WriteFile(path, []byte("package teatime.admission\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = LoadPolicyFile(path)
	if err != nil || got != "package teatime.admission\n" {
		t.Errorf("LoadPolicyFile(file) = %q, %v", got, err)
	}

	if _, err := LoadPolicyFile(filepath.Join(t.TempDir(), "missing.rego")); err == nil {
		t.Error("LoadPolicyFile should fail for a missing file")
	}
}
