package posting

import (
	"errors"
	"testing"
)

func TestPolicy_Transition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		kind          Kind
		from          Status
		to            Status
		approvals     int
		want          error
		wantStatus    Status
		wantPublished bool
	}{
		{name: "draft to active with approval", kind: KindRequisition, from: StatusDraft, to: StatusActive, approvals: 1, wantStatus: StatusActive, wantPublished: true},
		{name: "draft to active without approval", kind: KindRequisition, from: StatusDraft, to: StatusActive, approvals: 0, want: ErrInsufficientApprovals, wantStatus: StatusDraft},
		{name: "client position draft to active needs no approval", kind: KindClientPosition, from: StatusDraft, to: StatusActive, wantStatus: StatusActive, wantPublished: true},
		{name: "draft to cancelled", kind: KindRequisition, from: StatusDraft, to: StatusCancelled, wantStatus: StatusCancelled},
		{name: "active to closed unpublishes", kind: KindClientPosition, from: StatusActive, to: StatusClosed, wantStatus: StatusClosed},
		{name: "active to draft unpublishes", kind: KindRequisition, from: StatusActive, to: StatusDraft, wantStatus: StatusDraft},
		{name: "closed to active republishes", kind: KindRequisition, from: StatusClosed, to: StatusActive, wantStatus: StatusActive, wantPublished: true},
		{name: "cancelled is terminal", kind: KindRequisition, from: StatusCancelled, to: StatusActive, want: ErrInvalidTransition, wantStatus: StatusCancelled},
		{name: "closed to draft is illegal", kind: KindClientPosition, from: StatusClosed, to: StatusDraft, want: ErrInvalidTransition, wantStatus: StatusClosed},
		{name: "unknown status", kind: KindRequisition, from: StatusDraft, to: Status("archived"), want: ErrInvalidStatus, wantStatus: StatusDraft},
	}

	policy := NewPolicy(1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &Posting{Kind: tt.kind, Status: tt.from, Published: tt.from == StatusActive}
			err := policy.Transition(p, tt.to, tt.approvals)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected error %v, got %v", tt.want, err)
			}
			if p.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s", tt.wantStatus, p.Status)
			}
			if tt.want == nil && p.Published != tt.wantPublished {
				t.Fatalf("expected published %v, got %v", tt.wantPublished, p.Published)
			}
		})
	}
}

func TestPolicy_SameStatusIsNoop(t *testing.T) {
	t.Parallel()

	p := &Posting{Kind: KindRequisition, Status: StatusCancelled}
	if err := NewPolicy(1).Transition(p, StatusCancelled, 0); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestPolicy_InsufficientApprovalsIsInvalidTransition(t *testing.T) {
	t.Parallel()

	p := &Posting{Kind: KindRequisition, Status: StatusDraft}
	err := NewPolicy(3).Transition(p, StatusActive, 2)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestPolicy_Initial(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(0)
	if policy.RequiredApprovals != DefaultRequiredApprovals {
		t.Fatalf("expected default approvals, got %d", policy.RequiredApprovals)
	}
	if status, published := policy.Initial(KindRequisition); status != StatusDraft || published {
		t.Fatalf("unexpected requisition initial state: %s %v", status, published)
	}
	if status, published := policy.Initial(KindClientPosition); status != StatusActive || !published {
		t.Fatalf("unexpected client position initial state: %s %v", status, published)
	}
}
