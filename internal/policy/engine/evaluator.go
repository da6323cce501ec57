package engine

import "context"

// AdmissionInput describes a join attempt against a live room.
type AdmissionInput struct {
	MaxAudience   int
	AudienceCount int
	IsOwner       bool
}

// AdmissionResult is the policy's verdict. Fallback is set when evaluation failed and the default applied.
type AdmissionResult struct {
	Admit    bool
	Fallback bool
}

// Admitter evaluates whether an actor may enter a live room.
type Admitter interface {
	EvaluateAdmission(ctx context.Context, in AdmissionInput) (AdmissionResult, error)
}
