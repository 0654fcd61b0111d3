package posting

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ogurasousui/recruitment-api/internal/core/identity"
)

var (
	baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	owner    = identity.Actor{UserID: "owner", Role: identity.RoleHiringManager}
	other    = identity.Actor{UserID: "other", Role: identity.RoleHiringManager}
)

type testEnv struct {
	repo   *fakeRepo
	clock  *stubClock
	events *recordingPublisher
	svc    *Service
}

func newTestEnv() *testEnv {
	repo := newFakeRepo()
	clock := &stubClock{now: baseTime}
	events := &recordingPublisher{}
	svc := NewService(repo, clock, fakeTx{repo: repo}, NewPolicy(1), WithEventPublisher(events))
	svc.newID = sequentialUUIDs()
	return &testEnv{repo: repo, clock: clock, events: events, svc: svc}
}

func requisitionInput() CreateRequisitionInput {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	return CreateRequisitionInput{
		Header: HeaderInput{
			JobTitle:         " Backend Engineer ",
			DepartmentName:   "Engineering",
			TargetStartDate:  &start,
			ReasonForPosting: "new_position",
			EmploymentType:   "full_time",
			MinSalary:        1000,
			MaxSalary:        2000,
			IsSalaryRange:    true,
		},
		BusinessUnit:          "oodc",
		NumberOfVacancies:     2,
		InterviewLevels:       3,
		ImmediateSupervisorID: "sup-1",
		WorkScheduleFrom:      "09:00",
		WorkScheduleTo:        "18:00",
		HiringManagerIDs:      []string{"hm-1", "hm-2", "hm-1"},
		AssessmentTypes:       []string{"Coding test"},
		HardwareRequirements:  []string{"Laptop"},
		SoftwareRequirements:  []string{"IDE", " "},
	}
}

func clientPositionInput() CreateClientPositionInput {
	needed := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	return CreateClientPositionInput{
		Header: HeaderInput{
			JobTitle:       "QA Analyst",
			EmploymentType: "contract",
		},
		ClientID:        "client-1",
		EducationLevel:  "bachelor",
		ExperienceLevel: "mid",
		Headcount:       3,
		WorkSetup:       "hybrid",
		DateNeeded:      &needed,
		Location:        "Manila",
		ApplicationForm: map[string]FieldSetting{"email": FieldRequired, "signature": FieldDisabled},
		Pipeline: []StepPatch{
			fullPatch("Final", 2, 1),
			fullPatch("Screening", 1, 1),
		},
	}
}

func TestService_CreateRequisition_Success(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	agg, err := env.svc.CreateRequisition(context.Background(), owner, requisitionInput())
	if err != nil {
		t.Fatalf("CreateRequisition returned error: %v", err)
	}

	p := agg.Posting
	if p.Kind != KindRequisition || p.Status != StatusDraft || p.Published || !p.Active {
		t.Fatalf("unexpected initial state: %+v", p)
	}
	if !p.OwnedBy("owner") {
		t.Fatalf("expected posting to be owned by actor, got %+v", p.PostedBy)
	}
	if p.JobTitle != "Backend Engineer" {
		t.Fatalf("expected trimmed title, got %q", p.JobTitle)
	}

	req, ok := agg.Detail.(*Requisition)
	if !ok {
		t.Fatalf("expected requisition detail, got %T", agg.Detail)
	}
	if !reflect.DeepEqual(req.HiringManagerIDs, []string{"hm-1", "hm-2"}) {
		t.Fatalf("expected deduplicated hiring managers, got %v", req.HiringManagerIDs)
	}
	if req.InterviewLevels != 3 {
		t.Fatalf("expected interview levels to be kept, got %d", req.InterviewLevels)
	}
	if len(req.Tags) != 3 {
		t.Fatalf("expected 3 tags, got %+v", req.Tags)
	}
	if len(env.events.events) != 1 || env.events.events[0].Type != EventCreated {
		t.Fatalf("expected created event, got %+v", env.events.events)
	}
}

func TestService_CreateRequisition_NormalizesSupervisorAndInterviewLevels(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	in := requisitionInput()
	in.HiringManagerIDs = nil
	in.ImmediateSupervisorID = "no_supervisor"

	agg, err := env.svc.CreateRequisition(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("CreateRequisition returned error: %v", err)
	}

	req := agg.Detail.(*Requisition)
	if req.InterviewLevels != 0 {
		t.Fatalf("expected interview levels forced to 0, got %d", req.InterviewLevels)
	}
	if req.ImmediateSupervisorID != nil {
		t.Fatalf("expected supervisor to be cleared, got %v", *req.ImmediateSupervisorID)
	}
}

func TestService_CreateRequisition_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(in *CreateRequisitionInput)
		field  string
	}{
		{name: "empty title", mutate: func(in *CreateRequisitionInput) { in.Header.JobTitle = " " }, field: "job_title"},
		{name: "others without detail", mutate: func(in *CreateRequisitionInput) { in.Header.ReasonForPosting = "others" }, field: "other_reason_for_posting"},
		{name: "inverted salary range", mutate: func(in *CreateRequisitionInput) { in.Header.MinSalary = 3000 }, field: "max_salary"},
		{name: "unknown business unit", mutate: func(in *CreateRequisitionInput) { in.BusinessUnit = "xyz" }, field: "business_unit"},
		{name: "no vacancies", mutate: func(in *CreateRequisitionInput) { in.NumberOfVacancies = 0 }, field: "number_of_vacancies"},
		{name: "bad schedule", mutate: func(in *CreateRequisitionInput) { in.WorkScheduleFrom = "9am" }, field: "work_schedule_from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			in := requisitionInput()
			tt.mutate(&in)

			_, err := env.svc.CreateRequisition(context.Background(), owner, in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Fatalf("expected field %s in %v", tt.field, verr.Fields)
			}
			if env.repo.rowCount() != 0 {
				t.Fatalf("expected nothing persisted, got %d rows", env.repo.rowCount())
			}
		})
	}
}

func TestService_CreateRequisition_AtomicOnFailure(t *testing.T) {
	t.Parallel()

	for _, op := range []string{"CreatePosting", "CreateRequisition", "ReplaceHiringManagers", "InsertTags"} {
		t.Run(op, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			env.repo.failOn = op

			if _, err := env.svc.CreateRequisition(context.Background(), owner, requisitionInput()); !errors.Is(err, errInjected) {
				t.Fatalf("expected injected failure, got %v", err)
			}
			if env.repo.rowCount() != 0 {
				t.Fatalf("expected no rows after failure at %s, got %d", op, env.repo.rowCount())
			}
			if len(env.events.events) != 0 {
				t.Fatalf("expected no events after rollback, got %+v", env.events.events)
			}
		})
	}
}

func TestService_CreateRequisition_UnknownHiringManagerRollsBack(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	in := requisitionInput()
	in.HiringManagerIDs = []string{"ghost"}

	if _, err := env.svc.CreateRequisition(context.Background(), owner, in); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if env.repo.rowCount() != 0 {
		t.Fatalf("expected nothing persisted, got %d rows", env.repo.rowCount())
	}
}

func TestService_CreateClientPosition_Success(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	agg, err := env.svc.CreateClientPosition(context.Background(), owner, clientPositionInput())
	if err != nil {
		t.Fatalf("CreateClientPosition returned error: %v", err)
	}

	if agg.Posting.Status != StatusActive || !agg.Posting.Published {
		t.Fatalf("expected client position to start active and published: %+v", agg.Posting)
	}

	cp, ok := agg.Detail.(*ClientPosition)
	if !ok {
		t.Fatalf("expected client position detail, got %T", agg.Detail)
	}
	if cp.ClientName != "Acme" {
		t.Fatalf("expected client name to be resolved, got %q", cp.ClientName)
	}
	if len(cp.ApplicationForm) != len(ApplicationFormFields) {
		t.Fatalf("expected every form field to be stored, got %d", len(cp.ApplicationForm))
	}
	if cp.ApplicationForm["email"] != FieldRequired || cp.ApplicationForm["signature"] != FieldDisabled || cp.ApplicationForm["name"] != FieldOptional {
		t.Fatalf("unexpected application form: %v", cp.ApplicationForm)
	}
	if len(cp.Pipeline) != 2 || cp.Pipeline[0].Title != "Screening" || cp.Pipeline[1].Title != "Final" {
		t.Fatalf("expected pipeline ordered by stage, got %+v", cp.Pipeline)
	}
}

func TestService_CreateClientPosition_AtomicOnFailure(t *testing.T) {
	t.Parallel()

	for _, op := range []string{"CreatePosting", "CreateClientPosition", "SaveApplicationForm", "InsertSteps"} {
		t.Run(op, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			env.repo.failOn = op

			if _, err := env.svc.CreateClientPosition(context.Background(), owner, clientPositionInput()); !errors.Is(err, errInjected) {
				t.Fatalf("expected injected failure, got %v", err)
			}
			if env.repo.rowCount() != 0 {
				t.Fatalf("expected no rows after failure at %s, got %d", op, env.repo.rowCount())
			}
		})
	}
}

func TestService_CreateClientPosition_PipelineErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pipeline []StepPatch
		want     error
	}{
		{name: "duplicate stage and order", pipeline: []StepPatch{fullPatch("A", 1, 1), fullPatch("B", 1, 1)}, want: ErrDuplicateStepOrder},
		{name: "empty pipeline", pipeline: nil, want: ErrPipelineRequired},
		{name: "missing fields", pipeline: []StepPatch{{Title: ptr("A")}}, want: ErrMissingFields},
		{name: "step with id", pipeline: []StepPatch{{ID: "step-1", Title: ptr("A")}}, want: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			in := clientPositionInput()
			in.Pipeline = tt.pipeline

			if _, err := env.svc.CreateClientPosition(context.Background(), owner, in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if env.repo.rowCount() != 0 || len(env.repo.calls) != 0 {
				t.Fatalf("expected nothing written, got %d rows and calls %v", env.repo.rowCount(), env.repo.calls)
			}
		})
	}
}

func TestService_CreateClientPosition_UnknownClient(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	in := clientPositionInput()
	in.ClientID = "missing"

	if _, err := env.svc.CreateClientPosition(context.Background(), owner, in); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
	if env.repo.rowCount() != 0 {
		t.Fatalf("expected rollback, got %d rows", env.repo.rowCount())
	}
}

func TestService_Update_ReconcilesPipeline(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	in := clientPositionInput()
	in.Pipeline = []StepPatch{fullPatch("A", 1, 1), fullPatch("B", 1, 2)}
	created, err := env.svc.CreateClientPosition(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("CreateClientPosition returned error: %v", err)
	}
	steps := created.Detail.(*ClientPosition).Pipeline
	stepA, stepB := steps[0], steps[1]

	updated, err := env.svc.Update(context.Background(), owner, UpdateInput{
		ID: created.Posting.ID,
		ClientPosition: &ClientPositionPatch{
			Pipeline: []StepPatch{
				{ID: stepA.ID, Title: ptr("X")},
				fullPatch("C", 2, 1),
			},
		},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	pipeline := updated.Detail.(*ClientPosition).Pipeline
	if len(pipeline) != 3 {
		t.Fatalf("expected 3 steps, got %+v", pipeline)
	}
	if pipeline[0].ID != stepA.ID || pipeline[0].Title != "X" {
		t.Fatalf("expected step A renamed in place, got %+v", pipeline[0])
	}
	if pipeline[1] != stepB {
		t.Fatalf("expected step B untouched, got %+v", pipeline[1])
	}
	if pipeline[2].Title != "C" || pipeline[2].Stage != 2 {
		t.Fatalf("expected step C inserted, got %+v", pipeline[2])
	}
	if len(env.events.events) != 2 || env.events.events[1].Type != EventUpdated {
		t.Fatalf("expected updated event, got %+v", env.events.events)
	}
}

func TestService_Update_ForeignStepRollsBack(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	first, err := env.svc.CreateClientPosition(context.Background(), owner, clientPositionInput())
	if err != nil {
		t.Fatalf("CreateClientPosition returned error: %v", err)
	}
	second, err := env.svc.CreateClientPosition(context.Background(), owner, clientPositionInput())
	if err != nil {
		t.Fatalf("CreateClientPosition returned error: %v", err)
	}
	foreign := second.Detail.(*ClientPosition).Pipeline[0].ID

	_, err = env.svc.Update(context.Background(), owner, UpdateInput{
		ID:     first.Posting.ID,
		Header: HeaderPatch{JobTitle: ptr("Changed")},
		ClientPosition: &ClientPositionPatch{
			Pipeline: []StepPatch{{ID: foreign, Delete: true}},
		},
	})
	if !errors.Is(err, ErrStepNotFoundInScope) {
		t.Fatalf("expected ErrStepNotFoundInScope, got %v", err)
	}

	got, err := env.svc.Get(context.Background(), &owner, first.Posting.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Posting.JobTitle != "QA Analyst" {
		t.Fatalf("expected header change to be rolled back, got %q", got.Posting.JobTitle)
	}
	if len(env.repo.state.steps[second.Posting.ID]) != 2 {
		t.Fatalf("expected foreign pipeline untouched")
	}
}

func TestService_Update_StatusTransition(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	created, err := env.svc.CreateRequisition(context.Background(), owner, requisitionInput())
	if err != nil {
		t.Fatalf("CreateRequisition returned error: %v", err)
	}
	id := created.Posting.ID

	_, err = env.svc.Update(context.Background(), owner, UpdateInput{
		ID:     id,
		Status: ptr(StatusActive),
		Header: HeaderPatch{JobTitle: ptr("Should not stick")},
	})
	if !errors.Is(err, ErrInsufficientApprovals) {
		t.Fatalf("expected ErrInsufficientApprovals, got %v", err)
	}
	if env.repo.state.postings[id].JobTitle != "Backend Engineer" {
		t.Fatalf("expected invalid transition to abort the whole update")
	}

	updated, err := env.svc.Update(context.Background(), owner, UpdateInput{ID: id, Status: ptr(StatusActive), Approvals: 1})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Posting.Status != StatusActive || !updated.Posting.Published {
		t.Fatalf("expected active and published, got %+v", updated.Posting)
	}

	updated, err = env.svc.Update(context.Background(), owner, UpdateInput{ID: id, Status: ptr(StatusCancelled)})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Posting.Published {
		t.Fatal("expected cancelled posting to be unpublished")
	}

	if _, err := env.svc.Update(context.Background(), owner, UpdateInput{ID: id, Status: ptr(StatusActive), Approvals: 5}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected cancelled to be terminal, got %v", err)
	}
}

func TestService_Update_RequisitionChildren(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	created, err := env.svc.CreateRequisition(context.Background(), owner, requisitionInput())
	if err != nil {
		t.Fatalf("CreateRequisition returned error: %v", err)
	}
	sibling, err := env.svc.CreateRequisition(context.Background(), owner, requisitionInput())
	if err != nil {
		t.Fatalf("CreateRequisition returned error: %v", err)
	}
	ownTag := created.Detail.(*Requisition).Tags[0]
	foreignTag := sibling.Detail.(*Requisition).Tags[0]

	empty := []string{}
	updated, err := env.svc.Update(context.Background(), owner, UpdateInput{
		ID: created.Posting.ID,
		Requisition: &RequisitionPatch{
			HiringManagerIDs: &empty,
			Tags: []TagPatch{
				{ID: ownTag.ID, Name: "Live coding"},
				{ID: foreignTag.ID, Name: "Hijacked"},
				{Name: "No id"},
			},
		},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	req := updated.Detail.(*Requisition)
	if len(req.HiringManagerIDs) != 0 || req.InterviewLevels != 0 {
		t.Fatalf("expected hiring managers cleared and interview levels reset, got %+v", req)
	}
	if len(req.Tags) != 3 || req.Tags[0].Name != "Live coding" {
		t.Fatalf("expected own tag renamed only, got %+v", req.Tags)
	}
	if env.repo.state.tags[sibling.Posting.ID][0].Name != foreignTag.Name {
		t.Fatalf("expected foreign tag untouched, got %+v", env.repo.state.tags[sibling.Posting.ID][0])
	}
}

func TestService_Update_ScopeAndKind(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	created, err := env.svc.CreateRequisition(context.Background(), owner, requisitionInput())
	if err != nil {
		t.Fatalf("CreateRequisition returned error: %v", err)
	}

	if _, err := env.svc.Update(context.Background(), other, UpdateInput{ID: created.Posting.ID}); !errors.Is(err, ErrPostingNotFound) {
		t.Fatalf("expected ErrPostingNotFound for non-owner, got %v", err)
	}
	if _, err := env.svc.Update(context.Background(), owner, UpdateInput{ID: created.Posting.ID, ClientPosition: &ClientPositionPatch{}}); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
	if _, err := env.svc.Update(context.Background(), owner, UpdateInput{ID: " "}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_DeleteAndVisibility(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	created, err := env.svc.CreateClientPosition(context.Background(), owner, clientPositionInput())
	if err != nil {
		t.Fatalf("CreateClientPosition returned error: %v", err)
	}
	id := created.Posting.ID

	if _, err := env.svc.Get(context.Background(), nil, id); err != nil {
		t.Fatalf("expected published posting to be visible anonymously: %v", err)
	}

	if err := env.svc.Delete(context.Background(), other, id); !errors.Is(err, ErrPostingNotFound) {
		t.Fatalf("expected ErrPostingNotFound for non-owner delete, got %v", err)
	}
	if err := env.svc.Delete(context.Background(), owner, id); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := env.svc.Get(context.Background(), nil, id); !errors.Is(err, ErrPostingNotFound) {
		t.Fatalf("expected deleted posting hidden from anonymous viewers, got %v", err)
	}
	if _, err := env.svc.Get(context.Background(), &other, id); !errors.Is(err, ErrPostingNotFound) {
		t.Fatalf("expected deleted posting hidden from other users, got %v", err)
	}
	got, err := env.svc.Get(context.Background(), &owner, id)
	if err != nil {
		t.Fatalf("expected owner to still read the posting: %v", err)
	}
	if got.Posting.Active {
		t.Fatal("expected posting to be inactive")
	}
	if env.repo.rowCount() == 0 {
		t.Fatal("expected logical delete to keep rows")
	}
}

func TestService_BulkDelete_Idempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	mine, err := env.svc.CreateClientPosition(context.Background(), owner, clientPositionInput())
	if err != nil {
		t.Fatalf("CreateClientPosition returned error: %v", err)
	}
	theirs, err := env.svc.CreateClientPosition(context.Background(), other, clientPositionInput())
	if err != nil {
		t.Fatalf("CreateClientPosition returned error: %v", err)
	}

	ids := []string{mine.Posting.ID, theirs.Posting.ID, "missing", mine.Posting.ID}

	first, err := env.svc.BulkDelete(context.Background(), owner, ids)
	if err != nil {
		t.Fatalf("BulkDelete returned error: %v", err)
	}
	snapshot := env.repo.state.clone()

	second, err := env.svc.BulkDelete(context.Background(), owner, ids)
	if err != nil {
		t.Fatalf("second BulkDelete returned error: %v", err)
	}

	if !reflect.DeepEqual(first, []string{mine.Posting.ID}) || !reflect.DeepEqual(second, first) {
		t.Fatalf("unexpected deleted ids: first=%v second=%v", first, second)
	}
	if env.repo.state.postings[mine.Posting.ID].Active {
		t.Fatal("expected own posting to be inactive")
	}
	if !env.repo.state.postings[theirs.Posting.ID].Active {
		t.Fatal("expected other user's posting to be untouched")
	}
	if !reflect.DeepEqual(snapshot.postings, env.repo.state.postings) {
		t.Fatal("expected second bulk delete to leave state unchanged")
	}
	for _, sent := range env.repo.deactivated {
		for _, id := range sent {
			if id == "missing" {
				t.Fatalf("expected malformed id to be filtered before the repository, got %v", sent)
			}
		}
	}

	malformed, err := env.svc.BulkDelete(context.Background(), owner, []string{"missing", "1 OR 1=1"})
	if err != nil || len(malformed) != 0 {
		t.Fatalf("expected malformed ids to be ignored, got %v %v", malformed, err)
	}
	if len(env.repo.deactivated) != 2 {
		t.Fatalf("expected no repository call for malformed ids only, got %d calls", len(env.repo.deactivated))
	}

	empty, err := env.svc.BulkDelete(context.Background(), owner, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result for no ids, got %v %v", empty, err)
	}
}

func TestService_PublishFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	events := &recordingPublisher{err: errors.New("broker down")}
	log := &recordingLogger{}
	svc := NewService(repo, &stubClock{now: baseTime}, fakeTx{repo: repo}, NewPolicy(1), WithEventPublisher(events), WithLogger(log))

	if _, err := svc.CreateClientPosition(context.Background(), owner, clientPositionInput()); err != nil {
		t.Fatalf("expected create to succeed despite publish failure: %v", err)
	}
	if len(log.warnings) != 1 {
		t.Fatalf("expected publish failure to be logged, got %v", log.warnings)
	}
}

func TestService_MalformedIDIsNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	const malformed = "not-a-uuid"

	if _, err := env.svc.Get(ctx, &owner, malformed); !errors.Is(err, ErrPostingNotFound) {
		t.Fatalf("Get: expected ErrPostingNotFound, got %v", err)
	}
	if _, err := env.svc.Update(ctx, owner, UpdateInput{ID: malformed}); !errors.Is(err, ErrPostingNotFound) {
		t.Fatalf("Update: expected ErrPostingNotFound, got %v", err)
	}
	if err := env.svc.Delete(ctx, owner, malformed); !errors.Is(err, ErrPostingNotFound) {
		t.Fatalf("Delete: expected ErrPostingNotFound, got %v", err)
	}
	if len(env.repo.calls) != 0 {
		t.Fatalf("expected malformed ids to be rejected before the repository, got %v", env.repo.calls)
	}
}
