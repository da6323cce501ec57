package webhook

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	lkwebhook "github.com/livekit/protocol/webhook"
	"google.golang.org/protobuf/encoding/protojson"
)

// EventParticipantLeft is the only webhook event the reconciler acts on.
const EventParticipantLeft = "participant_left"

// Status classifies an inbound webhook.
type Status int

const (
	// StatusInvalid: failed authentication or an unparseable payload.
	StatusInvalid Status = iota
	// StatusUnknownEvent: authentic, but not an event the reconciler handles.
	StatusUnknownEvent
	// StatusVerified: an authentic participant_left event.
	StatusVerified
)

func (s Status) String() string {
	switch s {
	case StatusVerified:
		return "verified"
	case StatusUnknownEvent:
		return "unknown_event"
	}
	return "invalid"
}

// Verification is the result of Verify. Event is set unless Status is StatusInvalid.
type Verification struct {
	Status Status
	Event  *livekit.WebhookEvent
	Reason string
}

// Verifier authenticates webhooks signed by the control plane with the shared API key pair.
type Verifier struct {
	apiKey    string
	apiSecret string
}

// NewVerifier returns a Verifier for the given key pair.
func NewVerifier(apiKey, apiSecret string) Verifier {
	return Verifier{apiKey: apiKey, apiSecret: apiSecret}
}

// Verify authenticates body and authHeader with the control plane's webhook receiver, then decodes the body.
func (v Verifier) Verify(body []byte, authHeader string) Verification {
	if v.apiKey == "" || v.apiSecret == "" {
		return invalid("webhook verification is not configured")
	}
	token := strings.TrimSpace(authHeader)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}

	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return invalid("request: " + err.Error())
	}
	req.Header.Set("Authorization", token)
	if _, err := lkwebhook.Receive(req, auth.NewSimpleKeyProvider(v.apiKey, v.apiSecret)); err != nil {
		return invalid(rejectReason(err))
	}

	event := &livekit.WebhookEvent{}
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(body, event); err != nil {
		return invalid("payload: " + err.Error())
	}
	if event.GetEvent() != EventParticipantLeft {
		return Verification{Status: StatusUnknownEvent, Event: event, Reason: event.GetEvent()}
	}
	return Verification{Status: StatusVerified, Event: event}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, lkwebhook.ErrNoAuthHeader):
		return "missing authorization"
	case errors.Is(err, lkwebhook.ErrSecretNotFound):
		return "unknown api key"
	case errors.Is(err, lkwebhook.ErrInvalidChecksum):
		return "body hash mismatch"
	}
	return "signature: " + err.Error()
}

func invalid(reason string) Verification {
	return Verification{Status: StatusInvalid, Reason: reason}
}
