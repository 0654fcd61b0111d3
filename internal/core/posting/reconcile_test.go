package posting

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func ptr[T any](v T) *T {
	return &v
}

func sequentialIDs(prefix string) func() string {
	seq := 0
	return func() string {
		seq++
		return fmt.Sprintf("%s-%d", prefix, seq)
	}
}

func sequentialUUIDs() func() string {
	seq := 0
	return func() string {
		seq++
		return fmt.Sprintf("00000000-0000-4000-8000-%012d", seq)
	}
}

func fullPatch(title string, stage, order int) StepPatch {
	return StepPatch{
		ProcessType: ptr(ProcessPhoneInterview),
		Title:       ptr(title),
		Description: ptr(""),
		Order:       ptr(order),
		Stage:       ptr(stage),
	}
}

func twoSteps() []PipelineStep {
	return []PipelineStep{
		{ID: "step-a", ProcessType: ProcessResumeScreening, Title: "A", Order: 1, Stage: 1},
		{ID: "step-b", ProcessType: ProcessPhoneInterview, Title: "B", Order: 2, Stage: 1},
	}
}

func TestReconcilePipeline_UpdateAndInsert(t *testing.T) {
	t.Parallel()

	plan, err := ReconcilePipeline(twoSteps(), []StepPatch{
		{ID: "step-a", Title: ptr("X")},
		fullPatch("C", 2, 1),
	}, sequentialIDs("new"))
	if err != nil {
		t.Fatalf("ReconcilePipeline returned error: %v", err)
	}

	if len(plan.Deletes) != 0 {
		t.Fatalf("expected no deletes, got %v", plan.Deletes)
	}
	if len(plan.Updates) != 1 || plan.Updates[0].ID != "step-a" || plan.Updates[0].Title != "X" {
		t.Fatalf("unexpected updates: %+v", plan.Updates)
	}
	if plan.Updates[0].ProcessType != ProcessResumeScreening || plan.Updates[0].Order != 1 {
		t.Fatalf("expected untouched fields to be kept: %+v", plan.Updates[0])
	}
	if len(plan.Inserts) != 1 || plan.Inserts[0].ID != "new-1" || plan.Inserts[0].Title != "C" {
		t.Fatalf("unexpected inserts: %+v", plan.Inserts)
	}

	titles := make([]string, 0, len(plan.Result))
	for _, s := range plan.Result {
		titles = append(titles, s.Title)
	}
	if !reflect.DeepEqual(titles, []string{"X", "B", "C"}) {
		t.Fatalf("unexpected resulting pipeline: %v", titles)
	}
}

func TestReconcilePipeline_DeleteAndReorder(t *testing.T) {
	t.Parallel()

	plan, err := ReconcilePipeline(twoSteps(), []StepPatch{
		{ID: "step-a", Delete: true},
		{ID: "step-b", Order: ptr(1)},
	}, sequentialIDs("new"))
	if err != nil {
		t.Fatalf("ReconcilePipeline returned error: %v", err)
	}

	if !reflect.DeepEqual(plan.Deletes, []string{"step-a"}) {
		t.Fatalf("unexpected deletes: %v", plan.Deletes)
	}
	if len(plan.Result) != 1 || plan.Result[0].ID != "step-b" || plan.Result[0].Order != 1 {
		t.Fatalf("unexpected result: %+v", plan.Result)
	}
}

func TestReconcilePipeline_SwapOrders(t *testing.T) {
	t.Parallel()

	plan, err := ReconcilePipeline(twoSteps(), []StepPatch{
		{ID: "step-a", Order: ptr(2)},
		{ID: "step-b", Order: ptr(1)},
	}, sequentialIDs("new"))
	if err != nil {
		t.Fatalf("expected swap to succeed, got %v", err)
	}
	if plan.Result[0].ID != "step-b" || plan.Result[1].ID != "step-a" {
		t.Fatalf("expected result ordered by (stage, order): %+v", plan.Result)
	}
}

func TestReconcilePipeline_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		patches []StepPatch
		want    error
	}{
		{name: "delete foreign id", patches: []StepPatch{{ID: "other", Delete: true}}, want: ErrStepNotFoundInScope},
		{name: "update foreign id", patches: []StepPatch{{ID: "other", Title: ptr("X")}}, want: ErrStepNotFoundInScope},
		{name: "update deleted step", patches: []StepPatch{{ID: "step-a", Delete: true}, {ID: "step-a", Title: ptr("X")}}, want: ErrStepNotFoundInScope},
		{name: "delete everything", patches: []StepPatch{{ID: "step-a", Delete: true}, {ID: "step-b", Delete: true}}, want: ErrPipelineRequired},
		{name: "duplicate stage order", patches: []StepPatch{fullPatch("C", 1, 2)}, want: ErrDuplicateStepOrder},
		{name: "stage out of range", patches: []StepPatch{fullPatch("C", 5, 1)}, want: ErrValidation},
		{name: "empty title on update", patches: []StepPatch{{ID: "step-a", Title: ptr("  ")}}, want: ErrValidation},
		{name: "missing fields", patches: []StepPatch{{Title: ptr("C")}}, want: ErrMissingFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ReconcilePipeline(twoSteps(), tt.patches, sequentialIDs("new")); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestReconcilePipeline_MissingFieldsAreNamed(t *testing.T) {
	t.Parallel()

	_, err := ReconcilePipeline(twoSteps(), []StepPatch{{Title: ptr("C"), Stage: ptr(3)}}, sequentialIDs("new"))

	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	want := []string{"process_type", "description", "order"}
	if !reflect.DeepEqual(missing.Fields, want) {
		t.Fatalf("expected missing fields %v, got %v", want, missing.Fields)
	}
}

func TestReconcilePipeline_NoPatchesKeepsPipeline(t *testing.T) {
	t.Parallel()

	plan, err := ReconcilePipeline(twoSteps(), nil, sequentialIDs("new"))
	if err != nil {
		t.Fatalf("ReconcilePipeline returned error: %v", err)
	}
	if !plan.Empty() || len(plan.Result) != 2 {
		t.Fatalf("expected empty plan with untouched result, got %+v", plan)
	}
}
