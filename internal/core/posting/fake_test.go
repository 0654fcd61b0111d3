package posting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

var errInjected = errors.New("injected failure")

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeState struct {
	postings        map[string]*Posting
	requisitions    map[string]*Requisition
	clientPositions map[string]*ClientPosition
	forms           map[string]ApplicationForm
	steps           map[string][]PipelineStep
	hiringManagers  map[string][]string
	tags            map[string][]Tag
}

func newFakeState() fakeState {
	return fakeState{
		postings:        make(map[string]*Posting),
		requisitions:    make(map[string]*Requisition),
		clientPositions: make(map[string]*ClientPosition),
		forms:           make(map[string]ApplicationForm),
		steps:           make(map[string][]PipelineStep),
		hiringManagers:  make(map[string][]string),
		tags:            make(map[string][]Tag),
	}
}

func (s fakeState) clone() fakeState {
	c := newFakeState()
	for k, v := range s.postings {
		c.postings[k] = clonePosting(v)
	}
	for k, v := range s.requisitions {
		c.requisitions[k] = cloneRequisition(v)
	}
	for k, v := range s.clientPositions {
		cp := *v
		c.clientPositions[k] = &cp
	}
	for k, v := range s.forms {
		c.forms[k] = cloneForm(v)
	}
	for k, v := range s.steps {
		c.steps[k] = append([]PipelineStep(nil), v...)
	}
	for k, v := range s.hiringManagers {
		c.hiringManagers[k] = append([]string(nil), v...)
	}
	for k, v := range s.tags {
		c.tags[k] = append([]Tag(nil), v...)
	}
	return c
}

// fakeRepo はメモリ上で求人集約を保持し、指定した操作で失敗を注入できます。
type fakeRepo struct {
	state   fakeState
	users   map[string]bool
	clients map[string]string
	failOn  string
	calls   []string
	// deactivated は DeactivatePostings に渡された ID を記録します。
	deactivated [][]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		state:   newFakeState(),
		users:   map[string]bool{"owner": true, "other": true, "hm-1": true, "hm-2": true, "sup-1": true},
		clients: map[string]string{"client-1": "Acme"},
	}
}

func (r *fakeRepo) call(op string) error {
	r.calls = append(r.calls, op)
	if r.failOn == op {
		return errInjected
	}
	return nil
}

func (r *fakeRepo) rowCount() int {
	n := len(r.state.postings) + len(r.state.requisitions) + len(r.state.clientPositions) + len(r.state.forms)
	for _, v := range r.state.steps {
		n += len(v)
	}
	for _, v := range r.state.hiringManagers {
		n += len(v)
	}
	for _, v := range r.state.tags {
		n += len(v)
	}
	return n
}

func (r *fakeRepo) CreatePosting(_ context.Context, p *Posting) error {
	if err := r.call("CreatePosting"); err != nil {
		return err
	}
	r.state.postings[p.ID] = clonePosting(p)
	return nil
}

func (r *fakeRepo) UpdatePosting(_ context.Context, p *Posting) error {
	if err := r.call("UpdatePosting"); err != nil {
		return err
	}
	if _, ok := r.state.postings[p.ID]; !ok {
		return ErrPostingNotFound
	}
	r.state.postings[p.ID] = clonePosting(p)
	return nil
}

func (r *fakeRepo) FindPosting(_ context.Context, id string) (*Posting, error) {
	p, ok := r.state.postings[id]
	if !ok {
		return nil, ErrPostingNotFound
	}
	return clonePosting(p), nil
}

func (r *fakeRepo) DeactivatePostings(_ context.Context, ownerID string, ids []string, at time.Time) ([]string, error) {
	if err := r.call("DeactivatePostings"); err != nil {
		return nil, err
	}
	r.deactivated = append(r.deactivated, append([]string(nil), ids...))
	var matched []string
	for _, id := range ids {
		p, ok := r.state.postings[id]
		if !ok || !p.OwnedBy(ownerID) {
			continue
		}
		p.Active = false
		p.UpdatedAt = at
		matched = append(matched, id)
	}
	return matched, nil
}

func (r *fakeRepo) ListPostings(_ context.Context, filter ListFilter) ([]*Posting, error) {
	var rows []*Posting
	for _, p := range r.state.postings {
		if p.Kind != filter.Kind {
			continue
		}
		if filter.OwnerID != "" && !p.OwnedBy(filter.OwnerID) {
			continue
		}
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		if filter.Published != nil && p.Published != *filter.Published {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.ExcludeStatus != nil && p.Status == *filter.ExcludeStatus {
			continue
		}
		rows = append(rows, clonePosting(p))
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}
	return rows, nil
}

func (r *fakeRepo) CreateRequisition(_ context.Context, postingID string, req *Requisition) error {
	if err := r.call("CreateRequisition"); err != nil {
		return err
	}
	if req.ImmediateSupervisorID != nil && !r.users[*req.ImmediateSupervisorID] {
		return ErrUserNotFound
	}
	stored := cloneRequisition(req)
	stored.HiringManagerIDs = nil
	stored.Tags = nil
	r.state.requisitions[postingID] = stored
	return nil
}

func (r *fakeRepo) UpdateRequisition(_ context.Context, postingID string, req *Requisition) error {
	if err := r.call("UpdateRequisition"); err != nil {
		return err
	}
	if _, ok := r.state.requisitions[postingID]; !ok {
		return ErrPostingNotFound
	}
	stored := cloneRequisition(req)
	stored.HiringManagerIDs = nil
	stored.Tags = nil
	r.state.requisitions[postingID] = stored
	return nil
}

func (r *fakeRepo) FindRequisition(_ context.Context, postingID string) (*Requisition, error) {
	req, ok := r.state.requisitions[postingID]
	if !ok {
		return nil, ErrPostingNotFound
	}
	out := cloneRequisition(req)
	out.HiringManagerIDs = append([]string(nil), r.state.hiringManagers[postingID]...)
	out.Tags = append([]Tag(nil), r.state.tags[postingID]...)
	return out, nil
}

func (r *fakeRepo) ReplaceHiringManagers(_ context.Context, postingID string, userIDs []string) error {
	if err := r.call("ReplaceHiringManagers"); err != nil {
		return err
	}
	for _, id := range userIDs {
		if !r.users[id] {
			return ErrUserNotFound
		}
	}
	r.state.hiringManagers[postingID] = append([]string(nil), userIDs...)
	return nil
}

func (r *fakeRepo) InsertTags(_ context.Context, postingID string, tags []Tag) error {
	if err := r.call("InsertTags"); err != nil {
		return err
	}
	r.state.tags[postingID] = append(r.state.tags[postingID], tags...)
	return nil
}

func (r *fakeRepo) RenameTags(_ context.Context, postingID string, tags []Tag) error {
	if err := r.call("RenameTags"); err != nil {
		return err
	}
	stored := r.state.tags[postingID]
	for _, tag := range tags {
		for i := range stored {
			if stored[i].ID == tag.ID {
				stored[i].Name = tag.Name
			}
		}
	}
	return nil
}

func (r *fakeRepo) CreateClientPosition(_ context.Context, postingID string, c *ClientPosition) error {
	if err := r.call("CreateClientPosition"); err != nil {
		return err
	}
	if _, ok := r.clients[c.ClientID]; !ok {
		return ErrClientNotFound
	}
	stored := *c
	stored.ApplicationForm = nil
	stored.Pipeline = nil
	r.state.clientPositions[postingID] = &stored
	return nil
}

func (r *fakeRepo) UpdateClientPosition(_ context.Context, postingID string, c *ClientPosition) error {
	if err := r.call("UpdateClientPosition"); err != nil {
		return err
	}
	if _, ok := r.clients[c.ClientID]; !ok {
		return ErrClientNotFound
	}
	stored := *c
	stored.ApplicationForm = nil
	stored.Pipeline = nil
	r.state.clientPositions[postingID] = &stored
	return nil
}

func (r *fakeRepo) FindClientPosition(_ context.Context, postingID string) (*ClientPosition, error) {
	c, ok := r.state.clientPositions[postingID]
	if !ok {
		return nil, ErrPostingNotFound
	}
	out := *c
	out.ClientName = r.clients[c.ClientID]
	out.ApplicationForm = cloneForm(r.state.forms[postingID])
	out.Pipeline = append([]PipelineStep(nil), r.state.steps[postingID]...)
	return &out, nil
}

func (r *fakeRepo) SaveApplicationForm(_ context.Context, postingID string, form ApplicationForm) error {
	if err := r.call("SaveApplicationForm"); err != nil {
		return err
	}
	r.state.forms[postingID] = cloneForm(form)
	return nil
}

func (r *fakeRepo) DeleteSteps(_ context.Context, postingID string, ids []string) error {
	if err := r.call("DeleteSteps"); err != nil {
		return err
	}
	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	var kept []PipelineStep
	for _, step := range r.state.steps[postingID] {
		if !remove[step.ID] {
			kept = append(kept, step)
		}
	}
	r.state.steps[postingID] = kept
	return nil
}

func (r *fakeRepo) UpdateSteps(_ context.Context, postingID string, steps []PipelineStep) error {
	if err := r.call("UpdateSteps"); err != nil {
		return err
	}
	stored := r.state.steps[postingID]
	for _, step := range steps {
		found := false
		for i := range stored {
			if stored[i].ID == step.ID {
				stored[i] = step
				found = true
			}
		}
		if !found {
			return fmt.Errorf("step %s: %w", step.ID, ErrStepNotFoundInScope)
		}
	}
	return nil
}

func (r *fakeRepo) InsertSteps(_ context.Context, postingID string, steps []PipelineStep) error {
	if err := r.call("InsertSteps"); err != nil {
		return err
	}
	r.state.steps[postingID] = append(r.state.steps[postingID], steps...)
	return nil
}

// fakeTx は失敗時に状態を巻き戻すトランザクションの代替です。
type fakeTx struct {
	repo *fakeRepo
}

func (t fakeTx) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (t fakeTx) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	snapshot := t.repo.state.clone()
	if err := fn(ctx); err != nil {
		t.repo.state = snapshot
		return err
	}
	return nil
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.events = append(p.events, event)
	return p.err
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.warnings = append(l.warnings, msg)
}

func clonePosting(p *Posting) *Posting {
	out := *p
	if p.PostedBy != nil {
		owner := *p.PostedBy
		out.PostedBy = &owner
	}
	return &out
}

func cloneRequisition(r *Requisition) *Requisition {
	out := *r
	out.OtherAssessments = append([]string(nil), r.OtherAssessments...)
	out.HiringManagerIDs = append([]string(nil), r.HiringManagerIDs...)
	out.Tags = append([]Tag(nil), r.Tags...)
	return &out
}

func cloneForm(f ApplicationForm) ApplicationForm {
	if f == nil {
		return nil
	}
	out := make(ApplicationForm, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
