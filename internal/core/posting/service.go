package posting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/recruitment-api/internal/core/identity"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ogurasousui/recruitment-api/internal/core/posting"

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は求人集約の作成・更新・削除・参照をまとめます。
type Service struct {
	repo   Repository
	clock  Clock
	tx     TransactionManager
	policy Policy
	events EventPublisher
	log    Logger
	tracer trace.Tracer
	newID  func() string
}

// UseCase は求人ユースケースの公開インターフェースです。
type UseCase interface {
	CreateRequisition(ctx context.Context, actor identity.Actor, in CreateRequisitionInput) (*Aggregate, error)
	CreateClientPosition(ctx context.Context, actor identity.Actor, in CreateClientPositionInput) (*Aggregate, error)
	Update(ctx context.Context, actor identity.Actor, in UpdateInput) (*Aggregate, error)
	Delete(ctx context.Context, actor identity.Actor, id string) error
	BulkDelete(ctx context.Context, actor identity.Actor, ids []string) ([]string, error)
	Get(ctx context.Context, viewer *identity.Actor, id string) (*Aggregate, error)
	List(ctx context.Context, viewer *identity.Actor, in ListInput) (*ListResult, error)
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithEventPublisher はコミット後のイベント配信先を設定します。
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithLogger はロガーを設定します。
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, policy Policy, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		repo:   repo,
		clock:  clock,
		tx:     tx,
		policy: policy,
		events: noopPublisher{},
		log:    noopLogger{},
		tracer: otel.Tracer(tracerName),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HeaderInput は求人ヘッダーの入力値です。
type HeaderInput struct {
	JobTitle              string
	DepartmentName        string
	TargetStartDate       *time.Time
	ReasonForPosting      string
	OtherReasonForPosting string
	WorkingSite           string
	EmploymentType        string
	WorkArrangement       string
	Description           string
	Responsibilities      string
	Qualifications        string
	NonNegotiables        string
	MinSalary             float64
	MaxSalary             float64
	IsSalaryRange         bool
}

// CreateRequisitionInput は要求 (PRF) 作成時の入力です。
type CreateRequisitionInput struct {
	Header                HeaderInput
	BusinessUnit          string
	NumberOfVacancies     int
	InterviewLevels       int
	ImmediateSupervisorID string
	ContractType          string
	Category              string
	PositionLevel         string
	WorkScheduleFrom      string
	WorkScheduleTo        string
	SalaryBudget          float64
	AssessmentRequired    bool
	OtherAssessments      []string
	HiringManagerIDs      []string
	AssessmentTypes       []string
	HardwareRequirements  []string
	SoftwareRequirements  []string
}

// CreateClientPositionInput は取引先求人作成時の入力です。
type CreateClientPositionInput struct {
	Header          HeaderInput
	ClientID        string
	EducationLevel  string
	ExperienceLevel string
	Headcount       int
	WorkSetup       string
	DateNeeded      *time.Time
	Location        string
	ApplicationForm map[string]FieldSetting
	Pipeline        []StepPatch
}

// HeaderPatch は求人ヘッダーの部分更新です。nil のフィールドは変更しません。
type HeaderPatch struct {
	JobTitle              *string
	DepartmentName        *string
	TargetStartDate       *time.Time
	ReasonForPosting      *string
	OtherReasonForPosting *string
	WorkingSite           *string
	EmploymentType        *string
	WorkArrangement       *string
	Description           *string
	Responsibilities      *string
	Qualifications        *string
	NonNegotiables        *string
	MinSalary             *float64
	MaxSalary             *float64
	IsSalaryRange         *bool
}

// TagPatch は既存タグの名前変更です。
type TagPatch struct {
	ID   string
	Name string
}

// RequisitionPatch は要求詳細の部分更新です。
type RequisitionPatch struct {
	BusinessUnit          *string
	NumberOfVacancies     *int
	InterviewLevels       *int
	ImmediateSupervisorID *string
	ContractType          *string
	Category              *string
	PositionLevel         *string
	WorkScheduleFrom      *string
	WorkScheduleTo        *string
	SalaryBudget          *float64
	AssessmentRequired    *bool
	OtherAssessments      []string
	// HiringManagerIDs が nil 以外の場合は採用担当者を置き換えます。
	HiringManagerIDs *[]string
	Tags             []TagPatch
}

// ClientPositionPatch は取引先求人詳細の部分更新です。
type ClientPositionPatch struct {
	ClientID        *string
	EducationLevel  *string
	ExperienceLevel *string
	Headcount       *int
	WorkSetup       *string
	DateNeeded      *time.Time
	Location        *string
	ApplicationForm map[string]FieldSetting
	Pipeline        []StepPatch
}

// UpdateInput は求人更新時の入力です。Status の遷移はフィールドの反映より先に検証されます。
type UpdateInput struct {
	ID             string
	Status         *Status
	Approvals      int
	Header         HeaderPatch
	Requisition    *RequisitionPatch
	ClientPosition *ClientPositionPatch
}

// CreateRequisition は要求を下書きとして作成します。ヘッダー、詳細、採用担当者、タグを一括で保存します。
func (s *Service) CreateRequisition(ctx context.Context, actor identity.Actor, in CreateRequisitionInput) (agg *Aggregate, err error) {
	ctx, span := s.tracer.Start(ctx, "posting.CreateRequisition")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(actor.UserID) == "" {
		return nil, fmt.Errorf("actor: %w", ErrInvalidID)
	}

	p := s.newPosting(KindRequisition, actor, in.Header)
	req := &Requisition{
		BusinessUnit:          strings.TrimSpace(in.BusinessUnit),
		NumberOfVacancies:     in.NumberOfVacancies,
		InterviewLevels:       in.InterviewLevels,
		ImmediateSupervisorID: normalizeSupervisor(in.ImmediateSupervisorID),
		ContractType:          strings.TrimSpace(in.ContractType),
		Category:              strings.TrimSpace(in.Category),
		PositionLevel:         strings.TrimSpace(in.PositionLevel),
		WorkScheduleFrom:      strings.TrimSpace(in.WorkScheduleFrom),
		WorkScheduleTo:        strings.TrimSpace(in.WorkScheduleTo),
		SalaryBudget:          in.SalaryBudget,
		AssessmentRequired:    in.AssessmentRequired,
		OtherAssessments:      in.OtherAssessments,
		HiringManagerIDs:      in.HiringManagerIDs,
	}
	req.Tags = append(req.Tags, s.newTags(TagAssessment, in.AssessmentTypes)...)
	req.Tags = append(req.Tags, s.newTags(TagHardware, in.HardwareRequirements)...)
	req.Tags = append(req.Tags, s.newTags(TagSoftware, in.SoftwareRequirements)...)
	normalizeRequisition(req)

	if err := validateHeader(p); err != nil {
		return nil, err
	}
	if err := validateRequisition(req); err != nil {
		return nil, err
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreatePosting(txCtx, p); err != nil {
			return err
		}
		if err := s.repo.CreateRequisition(txCtx, p.ID, req); err != nil {
			return err
		}
		if len(req.HiringManagerIDs) > 0 {
			if err := s.repo.ReplaceHiringManagers(txCtx, p.ID, req.HiringManagerIDs); err != nil {
				return err
			}
		}
		if len(req.Tags) > 0 {
			if err := s.repo.InsertTags(txCtx, p.ID, req.Tags); err != nil {
				return err
			}
		}

		loaded, err := s.loadAggregate(txCtx, p.ID)
		if err != nil {
			return err
		}
		agg = loaded
		return nil
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, EventCreated, agg.Posting, actor)
	return agg, nil
}

// CreateClientPosition は取引先求人を公開状態で作成します。応募フォームとパイプラインも同時に保存します。
func (s *Service) CreateClientPosition(ctx context.Context, actor identity.Actor, in CreateClientPositionInput) (agg *Aggregate, err error) {
	ctx, span := s.tracer.Start(ctx, "posting.CreateClientPosition")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(actor.UserID) == "" {
		return nil, fmt.Errorf("actor: %w", ErrInvalidID)
	}

	p := s.newPosting(KindClientPosition, actor, in.Header)
	cp := &ClientPosition{
		ClientID:        strings.TrimSpace(in.ClientID),
		EducationLevel:  strings.TrimSpace(in.EducationLevel),
		ExperienceLevel: strings.TrimSpace(in.ExperienceLevel),
		Headcount:       in.Headcount,
		WorkSetup:       strings.TrimSpace(in.WorkSetup),
		DateNeeded:      in.DateNeeded,
		Location:        strings.TrimSpace(in.Location),
	}

	if err := validateHeader(p); err != nil {
		return nil, err
	}
	if err := validateClientPosition(cp, p.EmploymentType); err != nil {
		return nil, err
	}

	form, err := mergeApplicationForm(nil, in.ApplicationForm)
	if err != nil {
		return nil, err
	}
	cp.ApplicationForm = form

	for _, patch := range in.Pipeline {
		if patch.ID != "" || patch.Delete {
			return nil, &ValidationError{Fields: map[string]string{"pipeline": "new steps must not carry an id"}}
		}
	}
	plan, err := ReconcilePipeline(nil, in.Pipeline, s.newID)
	if err != nil {
		return nil, err
	}
	cp.Pipeline = plan.Result

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreatePosting(txCtx, p); err != nil {
			return err
		}
		if err := s.repo.CreateClientPosition(txCtx, p.ID, cp); err != nil {
			return err
		}
		if err := s.repo.SaveApplicationForm(txCtx, p.ID, cp.ApplicationForm); err != nil {
			return err
		}
		if err := s.repo.InsertSteps(txCtx, p.ID, plan.Inserts); err != nil {
			return err
		}

		loaded, err := s.loadAggregate(txCtx, p.ID)
		if err != nil {
			return err
		}
		agg = loaded
		return nil
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, EventCreated, agg.Posting, actor)
	return agg, nil
}

// Update は登録者本人の求人を更新します。ステータス遷移、ヘッダー、詳細、子要素を 1 トランザクションで反映します。
func (s *Service) Update(ctx context.Context, actor identity.Actor, in UpdateInput) (agg *Aggregate, err error) {
	ctx, span := s.tracer.Start(ctx, "posting.Update", trace.WithAttributes(attribute.String("posting.id", in.ID)))
	defer func() { endSpan(span, err) }()

	if err := checkPostingID(in.ID); err != nil {
		return nil, err
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		p, err := s.findOwned(txCtx, actor, in.ID)
		if err != nil {
			return err
		}

		if in.Requisition != nil && p.Kind != KindRequisition {
			return ErrKindMismatch
		}
		if in.ClientPosition != nil && p.Kind != KindClientPosition {
			return ErrKindMismatch
		}

		if in.Status != nil {
			if err := s.policy.Transition(p, *in.Status, in.Approvals); err != nil {
				return err
			}
		}

		applyHeaderPatch(p, in.Header)
		if err := validateHeader(p); err != nil {
			return err
		}
		p.UpdatedAt = s.clock.Now()

		if err := s.repo.UpdatePosting(txCtx, p); err != nil {
			return err
		}

		switch p.Kind {
		case KindRequisition:
			if err := s.updateRequisition(txCtx, p.ID, in.Requisition); err != nil {
				return err
			}
		case KindClientPosition:
			if err := s.updateClientPosition(txCtx, p, in.ClientPosition); err != nil {
				return err
			}
		default:
			return ErrInvalidKind
		}

		loaded, err := s.loadAggregate(txCtx, p.ID)
		if err != nil {
			return err
		}
		agg = loaded
		return nil
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, EventUpdated, agg.Posting, actor)
	return agg, nil
}

func (s *Service) updateRequisition(ctx context.Context, postingID string, patch *RequisitionPatch) error {
	req, err := s.repo.FindRequisition(ctx, postingID)
	if err != nil {
		return err
	}
	if patch == nil {
		return nil
	}

	applyRequisitionPatch(req, patch)
	normalizeRequisition(req)
	if err := validateRequisition(req); err != nil {
		return err
	}

	if err := s.repo.UpdateRequisition(ctx, postingID, req); err != nil {
		return err
	}
	if patch.HiringManagerIDs != nil {
		if err := s.repo.ReplaceHiringManagers(ctx, postingID, req.HiringManagerIDs); err != nil {
			return err
		}
	}

	renames := ownedTagRenames(req.Tags, patch.Tags)
	if len(renames) > 0 {
		if err := s.repo.RenameTags(ctx, postingID, renames); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) updateClientPosition(ctx context.Context, p *Posting, patch *ClientPositionPatch) error {
	cp, err := s.repo.FindClientPosition(ctx, p.ID)
	if err != nil {
		return err
	}
	if patch == nil {
		return validateClientPosition(cp, p.EmploymentType)
	}

	applyClientPositionPatch(cp, patch)
	if err := validateClientPosition(cp, p.EmploymentType); err != nil {
		return err
	}
	if err := s.repo.UpdateClientPosition(ctx, p.ID, cp); err != nil {
		return err
	}

	if patch.ApplicationForm != nil {
		form, err := mergeApplicationForm(cp.ApplicationForm, patch.ApplicationForm)
		if err != nil {
			return err
		}
		if err := s.repo.SaveApplicationForm(ctx, p.ID, form); err != nil {
			return err
		}
	}

	if patch.Pipeline != nil {
		plan, err := ReconcilePipeline(cp.Pipeline, patch.Pipeline, s.newID)
		if err != nil {
			return err
		}
		if len(plan.Deletes) > 0 {
			if err := s.repo.DeleteSteps(ctx, p.ID, plan.Deletes); err != nil {
				return err
			}
		}
		if len(plan.Updates) > 0 {
			if err := s.repo.UpdateSteps(ctx, p.ID, plan.Updates); err != nil {
				return err
			}
		}
		if len(plan.Inserts) > 0 {
			if err := s.repo.InsertSteps(ctx, p.ID, plan.Inserts); err != nil {
				return err
			}
		}
	}
	return nil
}

// Delete は登録者本人の求人を論理削除します。
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "posting.Delete", trace.WithAttributes(attribute.String("posting.id", id)))
	defer func() { endSpan(span, err) }()

	if err := checkPostingID(id); err != nil {
		return err
	}

	var deleted *Posting
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		p, err := s.findOwned(txCtx, actor, id)
		if err != nil {
			return err
		}
		p.Active = false
		p.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdatePosting(txCtx, p); err != nil {
			return err
		}
		deleted = p
		return nil
	}); err != nil {
		return err
	}

	s.publish(ctx, EventDeleted, deleted, actor)
	return nil
}

// BulkDelete は ids のうち actor が登録した求人のみを論理削除し、対象となった ID を返します。
// 他者の求人や存在しない ID は無視されます。
func (s *Service) BulkDelete(ctx context.Context, actor identity.Actor, ids []string) (deleted []string, err error) {
	ctx, span := s.tracer.Start(ctx, "posting.BulkDelete", trace.WithAttributes(attribute.Int("posting.requested", len(ids))))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(actor.UserID) == "" {
		return nil, fmt.Errorf("actor: %w", ErrInvalidID)
	}

	targets := wellFormedIDs(uniqueNonEmpty(ids))
	if len(targets) == 0 {
		return []string{}, nil
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.DeactivatePostings(txCtx, actor.UserID, targets, s.clock.Now())
		if err != nil {
			return err
		}
		deleted = result
		return nil
	}); err != nil {
		return nil, err
	}
	if deleted == nil {
		deleted = []string{}
	}

	for _, id := range deleted {
		s.publish(ctx, EventDeleted, &Posting{ID: id}, actor)
	}
	return deleted, nil
}

// Get は求人集約を取得します。公開中かつ有効な求人、または閲覧者自身の求人のみ参照できます。
func (s *Service) Get(ctx context.Context, viewer *identity.Actor, id string) (*Aggregate, error) {
	if err := checkPostingID(id); err != nil {
		return nil, err
	}

	var agg *Aggregate
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		p, err := s.repo.FindPosting(txCtx, id)
		if err != nil {
			return err
		}
		if !p.VisibleTo(viewerID(viewer)) {
			return ErrPostingNotFound
		}
		loaded, err := s.loadDetail(txCtx, p)
		if err != nil {
			return err
		}
		agg = loaded
		return nil
	}); err != nil {
		return nil, err
	}
	return agg, nil
}

// checkPostingID は空の ID を ErrInvalidID、UUID として解釈できない ID を ErrPostingNotFound とします。
func checkPostingID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrPostingNotFound
	}
	return nil
}

func wellFormedIDs(ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func (s *Service) findOwned(ctx context.Context, actor identity.Actor, id string) (*Posting, error) {
	p, err := s.repo.FindPosting(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(actor.UserID) {
		return nil, ErrPostingNotFound
	}
	return p, nil
}

func (s *Service) loadAggregate(ctx context.Context, id string) (*Aggregate, error) {
	p, err := s.repo.FindPosting(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, p)
}

func (s *Service) loadDetail(ctx context.Context, p *Posting) (*Aggregate, error) {
	switch p.Kind {
	case KindRequisition:
		req, err := s.repo.FindRequisition(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		return &Aggregate{Posting: p, Detail: req}, nil
	case KindClientPosition:
		cp, err := s.repo.FindClientPosition(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		SortSteps(cp.Pipeline)
		return &Aggregate{Posting: p, Detail: cp}, nil
	default:
		return nil, ErrInvalidKind
	}
}

func (s *Service) newPosting(kind Kind, actor identity.Actor, in HeaderInput) *Posting {
	now := s.clock.Now()
	status, published := s.policy.Initial(kind)
	owner := actor.UserID
	return &Posting{
		ID:                    s.newID(),
		Kind:                  kind,
		Status:                status,
		Published:             published,
		Active:                true,
		PostedBy:              &owner,
		JobTitle:              strings.TrimSpace(in.JobTitle),
		DepartmentName:        strings.TrimSpace(in.DepartmentName),
		TargetStartDate:       in.TargetStartDate,
		ReasonForPosting:      strings.TrimSpace(in.ReasonForPosting),
		OtherReasonForPosting: strings.TrimSpace(in.OtherReasonForPosting),
		WorkingSite:           strings.TrimSpace(in.WorkingSite),
		EmploymentType:        strings.TrimSpace(in.EmploymentType),
		WorkArrangement:       strings.TrimSpace(in.WorkArrangement),
		Description:           strings.TrimSpace(in.Description),
		Responsibilities:      strings.TrimSpace(in.Responsibilities),
		Qualifications:        strings.TrimSpace(in.Qualifications),
		NonNegotiables:        strings.TrimSpace(in.NonNegotiables),
		MinSalary:             in.MinSalary,
		MaxSalary:             in.MaxSalary,
		IsSalaryRange:         in.IsSalaryRange,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func (s *Service) newTags(category TagCategory, names []string) []Tag {
	var tags []Tag
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		tags = append(tags, Tag{ID: s.newID(), Category: category, Name: name})
	}
	return tags
}

func (s *Service) publish(ctx context.Context, typ EventType, p *Posting, actor identity.Actor) {
	if p == nil {
		return
	}
	event := Event{
		Type:       typ,
		PostingID:  p.ID,
		Kind:       p.Kind,
		Status:     p.Status,
		ActorID:    actor.UserID,
		OccurredAt: s.clock.Now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish posting event", "type", string(typ), "posting_id", p.ID, "error", err)
	}
}

func applyHeaderPatch(p *Posting, patch HeaderPatch) {
	if patch.JobTitle != nil {
		p.JobTitle = trimmed(patch.JobTitle)
	}
	if patch.DepartmentName != nil {
		p.DepartmentName = trimmed(patch.DepartmentName)
	}
	if patch.TargetStartDate != nil {
		d := *patch.TargetStartDate
		p.TargetStartDate = &d
	}
	if patch.ReasonForPosting != nil {
		p.ReasonForPosting = trimmed(patch.ReasonForPosting)
	}
	if patch.OtherReasonForPosting != nil {
		p.OtherReasonForPosting = trimmed(patch.OtherReasonForPosting)
	}
	if patch.WorkingSite != nil {
		p.WorkingSite = trimmed(patch.WorkingSite)
	}
	if patch.EmploymentType != nil {
		p.EmploymentType = trimmed(patch.EmploymentType)
	}
	if patch.WorkArrangement != nil {
		p.WorkArrangement = trimmed(patch.WorkArrangement)
	}
	if patch.Description != nil {
		p.Description = trimmed(patch.Description)
	}
	if patch.Responsibilities != nil {
		p.Responsibilities = trimmed(patch.Responsibilities)
	}
	if patch.Qualifications != nil {
		p.Qualifications = trimmed(patch.Qualifications)
	}
	if patch.NonNegotiables != nil {
		p.NonNegotiables = trimmed(patch.NonNegotiables)
	}
	if patch.MinSalary != nil {
		p.MinSalary = *patch.MinSalary
	}
	if patch.MaxSalary != nil {
		p.MaxSalary = *patch.MaxSalary
	}
	if patch.IsSalaryRange != nil {
		p.IsSalaryRange = *patch.IsSalaryRange
	}
}

func applyRequisitionPatch(r *Requisition, patch *RequisitionPatch) {
	if patch.BusinessUnit != nil {
		r.BusinessUnit = trimmed(patch.BusinessUnit)
	}
	if patch.NumberOfVacancies != nil {
		r.NumberOfVacancies = *patch.NumberOfVacancies
	}
	if patch.InterviewLevels != nil {
		r.InterviewLevels = *patch.InterviewLevels
	}
	if patch.ImmediateSupervisorID != nil {
		r.ImmediateSupervisorID = normalizeSupervisor(*patch.ImmediateSupervisorID)
	}
	if patch.ContractType != nil {
		r.ContractType = trimmed(patch.ContractType)
	}
	if patch.Category != nil {
		r.Category = trimmed(patch.Category)
	}
	if patch.PositionLevel != nil {
		r.PositionLevel = trimmed(patch.PositionLevel)
	}
	if patch.WorkScheduleFrom != nil {
		r.WorkScheduleFrom = trimmed(patch.WorkScheduleFrom)
	}
	if patch.WorkScheduleTo != nil {
		r.WorkScheduleTo = trimmed(patch.WorkScheduleTo)
	}
	if patch.SalaryBudget != nil {
		r.SalaryBudget = *patch.SalaryBudget
	}
	if patch.AssessmentRequired != nil {
		r.AssessmentRequired = *patch.AssessmentRequired
	}
	if patch.OtherAssessments != nil {
		r.OtherAssessments = patch.OtherAssessments
	}
	if patch.HiringManagerIDs != nil {
		r.HiringManagerIDs = *patch.HiringManagerIDs
	}
}

func applyClientPositionPatch(c *ClientPosition, patch *ClientPositionPatch) {
	if patch.ClientID != nil {
		c.ClientID = trimmed(patch.ClientID)
	}
	if patch.EducationLevel != nil {
		c.EducationLevel = trimmed(patch.EducationLevel)
	}
	if patch.ExperienceLevel != nil {
		c.ExperienceLevel = trimmed(patch.ExperienceLevel)
	}
	if patch.Headcount != nil {
		c.Headcount = *patch.Headcount
	}
	if patch.WorkSetup != nil {
		c.WorkSetup = trimmed(patch.WorkSetup)
	}
	if patch.DateNeeded != nil {
		d := *patch.DateNeeded
		c.DateNeeded = &d
	}
	if patch.Location != nil {
		c.Location = trimmed(patch.Location)
	}
}

// ownedTagRenames は既存タグに属する変更のみを返します。ID なしや他の要求のタグは無視されます。
func ownedTagRenames(existing []Tag, patches []TagPatch) []Tag {
	if len(patches) == 0 {
		return nil
	}
	byID := make(map[string]Tag, len(existing))
	for _, tag := range existing {
		byID[tag.ID] = tag
	}

	var renames []Tag
	for _, patch := range patches {
		tag, ok := byID[patch.ID]
		name := strings.TrimSpace(patch.Name)
		if patch.ID == "" || !ok || name == "" {
			continue
		}
		tag.Name = name
		renames = append(renames, tag)
	}
	return renames
}

func viewerID(viewer *identity.Actor) string {
	if viewer == nil {
		return ""
	}
	return viewer.UserID
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
