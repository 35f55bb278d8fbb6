package models

import "testing"

func TestEmbedDomainStatusTransitions(t *testing.T) {
	tests := []struct {
		from EmbedDomainStatus
		to   EmbedDomainStatus
		want bool
	}{
		{EmbedDomainSubmitted, EmbedDomainApproved, true},
		{EmbedDomainSubmitted, EmbedDomainDenied, true},
		{EmbedDomainPending, EmbedDomainApproved, true},
		{EmbedDomainPending, EmbedDomainDenied, true},
		{EmbedDomainDenied, EmbedDomainPending, true},

		// no backward or sideways paths besides denied -> pending
		{EmbedDomainApproved, EmbedDomainDenied, false},
		{EmbedDomainApproved, EmbedDomainPending, false},
		{EmbedDomainApproved, EmbedDomainSubmitted, false},
		{EmbedDomainDenied, EmbedDomainApproved, false},
		{EmbedDomainDenied, EmbedDomainSubmitted, false},
		{EmbedDomainPending, EmbedDomainSubmitted, false},
		{EmbedDomainSubmitted, EmbedDomainPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestEmbedDomainStatusAwaitingDecision(t *testing.T) {
	if !EmbedDomainSubmitted.AwaitingDecision() || !EmbedDomainPending.AwaitingDecision() {
		t.Error("submitted and pending must count as awaiting decision")
	}
	if EmbedDomainApproved.AwaitingDecision() || EmbedDomainDenied.AwaitingDecision() {
		t.Error("terminal statuses must not count as awaiting decision")
	}
}

func TestEmbedDomainStatusValid(t *testing.T) {
	for _, s := range []EmbedDomainStatus{EmbedDomainSubmitted, EmbedDomainPending, EmbedDomainApproved, EmbedDomainDenied} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if EmbedDomainStatus("rejected").Valid() {
		t.Error("unknown status should be invalid")
	}
}
