package handler

import (
	"time"

	"github.com/ogurasousui/recruitment-api/internal/adapters/http/response"
	"github.com/ogurasousui/recruitment-api/internal/core/posting"
)

const dateLayout = "2006-01-02"

type headerRequest struct {
	JobTitle              *string  `json:"job_title"`
	DepartmentName        *string  `json:"department_name"`
	TargetStartDate       *string  `json:"target_start_date"`
	ReasonForPosting      *string  `json:"reason_for_posting"`
	OtherReasonForPosting *string  `json:"other_reason_for_posting"`
	WorkingSite           *string  `json:"working_site"`
	EmploymentType        *string  `json:"employment_type"`
	WorkArrangement       *string  `json:"work_arrangement"`
	Description           *string  `json:"description"`
	Responsibilities      *string  `json:"responsibilities"`
	Qualifications        *string  `json:"qualifications"`
	NonNegotiables        *string  `json:"non_negotiables"`
	MinSalary             *float64 `json:"min_salary"`
	MaxSalary             *float64 `json:"max_salary"`
	IsSalaryRange         *bool    `json:"is_salary_range"`
}

func (h headerRequest) toInput() (posting.HeaderInput, error) {
	start, err := parseDate("target_start_date", h.TargetStartDate)
	if err != nil {
		return posting.HeaderInput{}, err
	}
	return posting.HeaderInput{
		JobTitle:              deref(h.JobTitle),
		DepartmentName:        deref(h.DepartmentName),
		TargetStartDate:       start,
		ReasonForPosting:      deref(h.ReasonForPosting),
		OtherReasonForPosting: deref(h.OtherReasonForPosting),
		WorkingSite:           deref(h.WorkingSite),
		EmploymentType:        deref(h.EmploymentType),
		WorkArrangement:       deref(h.WorkArrangement),
		Description:           deref(h.Description),
		Responsibilities:      deref(h.Responsibilities),
		Qualifications:        deref(h.Qualifications),
		NonNegotiables:        deref(h.NonNegotiables),
		MinSalary:             deref(h.MinSalary),
		MaxSalary:             deref(h.MaxSalary),
		IsSalaryRange:         deref(h.IsSalaryRange),
	}, nil
}

func (h headerRequest) toPatch() (posting.HeaderPatch, error) {
	start, err := parseDate("target_start_date", h.TargetStartDate)
	if err != nil {
		return posting.HeaderPatch{}, err
	}
	return posting.HeaderPatch{
		JobTitle:              h.JobTitle,
		DepartmentName:        h.DepartmentName,
		TargetStartDate:       start,
		ReasonForPosting:      h.ReasonForPosting,
		OtherReasonForPosting: h.OtherReasonForPosting,
		WorkingSite:           h.WorkingSite,
		EmploymentType:        h.EmploymentType,
		WorkArrangement:       h.WorkArrangement,
		Description:           h.Description,
		Responsibilities:      h.Responsibilities,
		Qualifications:        h.Qualifications,
		NonNegotiables:        h.NonNegotiables,
		MinSalary:             h.MinSalary,
		MaxSalary:             h.MaxSalary,
		IsSalaryRange:         h.IsSalaryRange,
	}, nil
}

// statusRequest は PATCH で受け付けるステータス遷移です。
type statusRequest struct {
	Status    *string `json:"status"`
	Approvals int     `json:"approvals"`
}

func (s statusRequest) target() *posting.Status {
	if s.Status == nil {
		return nil
	}
	status := posting.Status(*s.Status)
	return &status
}

type tagRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type requisitionRequest struct {
	headerRequest
	statusRequest
	BusinessUnit         *string      `json:"business_unit"`
	NumberOfVacancies    *int         `json:"number_of_vacancies"`
	InterviewLevels      *int         `json:"interview_levels"`
	ImmediateSupervisor  *string      `json:"immediate_supervisor"`
	ContractType         *string      `json:"contract_type"`
	Category             *string      `json:"category"`
	PositionLevel        *string      `json:"position_level"`
	WorkScheduleFrom     *string      `json:"work_schedule_from"`
	WorkScheduleTo       *string      `json:"work_schedule_to"`
	SalaryBudget         *float64     `json:"salary_budget"`
	AssessmentRequired   *bool        `json:"assessment_required"`
	OtherAssessments     []string     `json:"other_assessments"`
	HiringManagers       *[]string    `json:"hiring_managers"`
	AssessmentTypes      []string     `json:"assessment_types"`
	HardwareRequirements []string     `json:"hardware_requirements"`
	SoftwareRequirements []string     `json:"software_requirements"`
	Tags                 []tagRequest `json:"tags"`
}

func (r requisitionRequest) toCreateInput() (posting.CreateRequisitionInput, error) {
	header, err := r.headerRequest.toInput()
	if err != nil {
		return posting.CreateRequisitionInput{}, err
	}
	var managers []string
	if r.HiringManagers != nil {
		managers = *r.HiringManagers
	}
	return posting.CreateRequisitionInput{
		Header:                header,
		BusinessUnit:          deref(r.BusinessUnit),
		NumberOfVacancies:     deref(r.NumberOfVacancies),
		InterviewLevels:       deref(r.InterviewLevels),
		ImmediateSupervisorID: deref(r.ImmediateSupervisor),
		ContractType:          deref(r.ContractType),
		Category:              deref(r.Category),
		PositionLevel:         deref(r.PositionLevel),
		WorkScheduleFrom:      deref(r.WorkScheduleFrom),
		WorkScheduleTo:        deref(r.WorkScheduleTo),
		SalaryBudget:          deref(r.SalaryBudget),
		AssessmentRequired:    deref(r.AssessmentRequired),
		OtherAssessments:      r.OtherAssessments,
		HiringManagerIDs:      managers,
		AssessmentTypes:       r.AssessmentTypes,
		HardwareRequirements:  r.HardwareRequirements,
		SoftwareRequirements:  r.SoftwareRequirements,
	}, nil
}

func (r requisitionRequest) toUpdateInput(id string) (posting.UpdateInput, error) {
	header, err := r.headerRequest.toPatch()
	if err != nil {
		return posting.UpdateInput{}, err
	}
	tags := make([]posting.TagPatch, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, posting.TagPatch{ID: t.ID, Name: t.Name})
	}
	return posting.UpdateInput{
		ID:        id,
		Status:    r.target(),
		Approvals: r.Approvals,
		Header:    header,
		Requisition: &posting.RequisitionPatch{
			BusinessUnit:          r.BusinessUnit,
			NumberOfVacancies:     r.NumberOfVacancies,
			InterviewLevels:       r.InterviewLevels,
			ImmediateSupervisorID: r.ImmediateSupervisor,
			ContractType:          r.ContractType,
			Category:              r.Category,
			PositionLevel:         r.PositionLevel,
			WorkScheduleFrom:      r.WorkScheduleFrom,
			WorkScheduleTo:        r.WorkScheduleTo,
			SalaryBudget:          r.SalaryBudget,
			AssessmentRequired:    r.AssessmentRequired,
			OtherAssessments:      r.OtherAssessments,
			HiringManagerIDs:      r.HiringManagers,
			Tags:                  tags,
		},
	}, nil
}

type stepRequest struct {
	ID          string  `json:"id"`
	Delete      bool    `json:"delete"`
	ProcessType *string `json:"process_type"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
	Stage       *int    `json:"stage"`
}

func (s stepRequest) toPatch() posting.StepPatch {
	patch := posting.StepPatch{
		ID:          s.ID,
		Delete:      s.Delete,
		Title:       s.Title,
		Description: s.Description,
		Order:       s.Order,
		Stage:       s.Stage,
	}
	if s.ProcessType != nil {
		pt := posting.ProcessType(*s.ProcessType)
		patch.ProcessType = &pt
	}
	return patch
}

type clientPositionRequest struct {
	headerRequest
	statusRequest
	Client          *string           `json:"client"`
	EducationLevel  *string           `json:"education_level"`
	ExperienceLevel *string           `json:"experience_level"`
	Headcount       *int              `json:"headcount"`
	WorkSetup       *string           `json:"work_setup"`
	DateNeeded      *string           `json:"date_needed"`
	Location        *string           `json:"location"`
	ApplicationForm map[string]string `json:"application_form"`
	Pipeline        []stepRequest     `json:"pipeline"`
}

func (r clientPositionRequest) steps() []posting.StepPatch {
	if r.Pipeline == nil {
		return nil
	}
	steps := make([]posting.StepPatch, 0, len(r.Pipeline))
	for _, s := range r.Pipeline {
		steps = append(steps, s.toPatch())
	}
	return steps
}

func (r clientPositionRequest) form() map[string]posting.FieldSetting {
	if r.ApplicationForm == nil {
		return nil
	}
	form := make(map[string]posting.FieldSetting, len(r.ApplicationForm))
	for name, setting := range r.ApplicationForm {
		form[name] = posting.FieldSetting(setting)
	}
	return form
}

func (r clientPositionRequest) toCreateInput() (posting.CreateClientPositionInput, error) {
	header, err := r.headerRequest.toInput()
	if err != nil {
		return posting.CreateClientPositionInput{}, err
	}
	needed, err := parseDate("date_needed", r.DateNeeded)
	if err != nil {
		return posting.CreateClientPositionInput{}, err
	}
	return posting.CreateClientPositionInput{
		Header:          header,
		ClientID:        deref(r.Client),
		EducationLevel:  deref(r.EducationLevel),
		ExperienceLevel: deref(r.ExperienceLevel),
		Headcount:       deref(r.Headcount),
		WorkSetup:       deref(r.WorkSetup),
		DateNeeded:      needed,
		Location:        deref(r.Location),
		ApplicationForm: r.form(),
		Pipeline:        r.steps(),
	}, nil
}

func (r clientPositionRequest) toUpdateInput(id string) (posting.UpdateInput, error) {
	header, err := r.headerRequest.toPatch()
	if err != nil {
		return posting.UpdateInput{}, err
	}
	needed, err := parseDate("date_needed", r.DateNeeded)
	if err != nil {
		return posting.UpdateInput{}, err
	}
	return posting.UpdateInput{
		ID:        id,
		Status:    r.target(),
		Approvals: r.Approvals,
		Header:    header,
		ClientPosition: &posting.ClientPositionPatch{
			ClientID:        r.Client,
			EducationLevel:  r.EducationLevel,
			ExperienceLevel: r.ExperienceLevel,
			Headcount:       r.Headcount,
			WorkSetup:       r.WorkSetup,
			DateNeeded:      needed,
			Location:        r.Location,
			ApplicationForm: r.form(),
			Pipeline:        r.steps(),
		},
	}, nil
}

type postingResponse struct {
	ID                    string    `json:"id"`
	Kind                  string    `json:"kind"`
	Status                string    `json:"status"`
	Published             bool      `json:"published"`
	Active                bool      `json:"active"`
	PostedBy              *string   `json:"posted_by"`
	PostedByName          string    `json:"posted_by_name"`
	JobTitle              string    `json:"job_title"`
	DepartmentName        string    `json:"department_name"`
	TargetStartDate       *string   `json:"target_start_date"`
	ReasonForPosting      string    `json:"reason_for_posting"`
	OtherReasonForPosting string    `json:"other_reason_for_posting"`
	WorkingSite           string    `json:"working_site"`
	EmploymentType        string    `json:"employment_type"`
	WorkArrangement       string    `json:"work_arrangement"`
	Description           string    `json:"description"`
	Responsibilities      string    `json:"responsibilities"`
	Qualifications        string    `json:"qualifications"`
	NonNegotiables        string    `json:"non_negotiables"`
	MinSalary             float64   `json:"min_salary"`
	MaxSalary             float64   `json:"max_salary"`
	IsSalaryRange         bool      `json:"is_salary_range"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type tagResponse struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

type requisitionResponse struct {
	BusinessUnit        string        `json:"business_unit"`
	NumberOfVacancies   int           `json:"number_of_vacancies"`
	InterviewLevels     int           `json:"interview_levels"`
	ImmediateSupervisor *string       `json:"immediate_supervisor"`
	ContractType        string        `json:"contract_type"`
	Category            string        `json:"category"`
	PositionLevel       string        `json:"position_level"`
	WorkScheduleFrom    string        `json:"work_schedule_from"`
	WorkScheduleTo      string        `json:"work_schedule_to"`
	SalaryBudget        float64       `json:"salary_budget"`
	AssessmentRequired  bool          `json:"assessment_required"`
	OtherAssessments    []string      `json:"other_assessments"`
	HiringManagers      []string      `json:"hiring_managers"`
	Tags                []tagResponse `json:"tags"`
}

type stepResponse struct {
	ID          string `json:"id"`
	ProcessType string `json:"process_type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	Stage       int    `json:"stage"`
}

type clientPositionResponse struct {
	Client          string            `json:"client"`
	ClientName      string            `json:"client_name"`
	EducationLevel  string            `json:"education_level"`
	ExperienceLevel string            `json:"experience_level"`
	Headcount       int               `json:"headcount"`
	WorkSetup       string            `json:"work_setup"`
	DateNeeded      *string           `json:"date_needed"`
	Location        string            `json:"location"`
	ApplicationForm map[string]string `json:"application_form"`
	Pipeline        []stepResponse    `json:"pipeline"`
}

// aggregateResponse は kind と、種別に応じて requisition または client_position のいずれか一方を持ちます。
type aggregateResponse struct {
	postingResponse
	Requisition    *requisitionResponse    `json:"requisition,omitempty"`
	ClientPosition *clientPositionResponse `json:"client_position,omitempty"`
}

type listPostingsResponse struct {
	Results       []postingResponse `json:"results"`
	NextPageToken string            `json:"next_page_token"`
}

func toPostingResponse(p *posting.Posting) postingResponse {
	return postingResponse{
		ID:                    p.ID,
		Kind:                  string(p.Kind),
		Status:                string(p.Status),
		Published:             p.Published,
		Active:                p.Active,
		PostedBy:              p.PostedBy,
		PostedByName:          p.PostedByName,
		JobTitle:              p.JobTitle,
		DepartmentName:        p.DepartmentName,
		TargetStartDate:       formatDate(p.TargetStartDate),
		ReasonForPosting:      p.ReasonForPosting,
		OtherReasonForPosting: p.OtherReasonForPosting,
		WorkingSite:           p.WorkingSite,
		EmploymentType:        p.EmploymentType,
		WorkArrangement:       p.WorkArrangement,
		Description:           p.Description,
		Responsibilities:      p.Responsibilities,
		Qualifications:        p.Qualifications,
		NonNegotiables:        p.NonNegotiables,
		MinSalary:             p.MinSalary,
		MaxSalary:             p.MaxSalary,
		IsSalaryRange:         p.IsSalaryRange,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func toAggregateResponse(agg *posting.Aggregate) aggregateResponse {
	res := aggregateResponse{postingResponse: toPostingResponse(agg.Posting)}

	switch d := agg.Detail.(type) {
	case *posting.Requisition:
		tags := make([]tagResponse, 0, len(d.Tags))
		for _, t := range d.Tags {
			tags = append(tags, tagResponse{ID: t.ID, Category: string(t.Category), Name: t.Name})
		}
		res.Requisition = &requisitionResponse{
			BusinessUnit:        d.BusinessUnit,
			NumberOfVacancies:   d.NumberOfVacancies,
			InterviewLevels:     d.InterviewLevels,
			ImmediateSupervisor: d.ImmediateSupervisorID,
			ContractType:        d.ContractType,
			Category:            d.Category,
			PositionLevel:       d.PositionLevel,
			WorkScheduleFrom:    d.WorkScheduleFrom,
			WorkScheduleTo:      d.WorkScheduleTo,
			SalaryBudget:        d.SalaryBudget,
			AssessmentRequired:  d.AssessmentRequired,
			OtherAssessments:    nonNil(d.OtherAssessments),
			HiringManagers:      nonNil(d.HiringManagerIDs),
			Tags:                tags,
		}
	case *posting.ClientPosition:
		form := make(map[string]string, len(posting.ApplicationFormFields))
		for _, name := range posting.ApplicationFormFields {
			form[name] = string(d.ApplicationForm.Setting(name))
		}
		steps := make([]stepResponse, 0, len(d.Pipeline))
		for _, s := range d.Pipeline {
			steps = append(steps, stepResponse{
				ID:          s.ID,
				ProcessType: string(s.ProcessType),
				Title:       s.Title,
				Description: s.Description,
				Order:       s.Order,
				Stage:       s.Stage,
			})
		}
		res.ClientPosition = &clientPositionResponse{
			Client:          d.ClientID,
			ClientName:      d.ClientName,
			EducationLevel:  d.EducationLevel,
			ExperienceLevel: d.ExperienceLevel,
			Headcount:       d.Headcount,
			WorkSetup:       d.WorkSetup,
			DateNeeded:      formatDate(d.DateNeeded),
			Location:        d.Location,
			ApplicationForm: form,
			Pipeline:        steps,
		}
	}
	return res
}

func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, &response.BadRequest{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
