package posting

import "time"

// Kind は求人の種別です。作成後に変更されることはありません。
type Kind string

const (
	KindRequisition    Kind = "requisition"
	KindClientPosition Kind = "client_position"
)

// Status は求人のライフサイクル上の状態です。
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

// Posting は種別に依存しない求人ヘッダーです。
// Status と Published は Policy を通してのみ変更されます。
type Posting struct {
	ID                    string
	Kind                  Kind
	Status                Status
	Published             bool
	Active                bool
	PostedBy              *string
	PostedByName          string
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
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// OwnedBy は指定ユーザーが登録者かどうかを返します。
func (p *Posting) OwnedBy(userID string) bool {
	return userID != "" && p.PostedBy != nil && *p.PostedBy == userID
}

// VisibleTo は閲覧者から参照可能かどうかを返します。
func (p *Posting) VisibleTo(userID string) bool {
	return (p.Active && p.Published) || p.OwnedBy(userID)
}

// Detail は種別ごとの詳細です。実装は *Requisition と *ClientPosition に限られます。
type Detail interface {
	Kind() Kind
	isDetail()
}

// Aggregate は求人ヘッダーと種別ごとの詳細をまとめた読み取りモデルです。
type Aggregate struct {
	Posting *Posting
	Detail  Detail
}

// Requisition は社内の人員要求 (PRF) の詳細です。
type Requisition struct {
	BusinessUnit          string
	NumberOfVacancies     int
	InterviewLevels       int
	ImmediateSupervisorID *string
	ContractType          string
	Category              string
	PositionLevel         string
	WorkScheduleFrom      string
	WorkScheduleTo        string
	SalaryBudget          float64
	AssessmentRequired    bool
	OtherAssessments      []string
	HiringManagerIDs      []string
	Tags                  []Tag
}

func (*Requisition) Kind() Kind { return KindRequisition }
func (*Requisition) isDetail()  {}

// ClientPosition は取引先から依頼された求人の詳細です。
type ClientPosition struct {
	ClientID        string
	ClientName      string
	EducationLevel  string
	ExperienceLevel string
	Headcount       int
	WorkSetup       string
	DateNeeded      *time.Time
	Location        string
	ApplicationForm ApplicationForm
	Pipeline        []PipelineStep
}

func (*ClientPosition) Kind() Kind { return KindClientPosition }
func (*ClientPosition) isDetail()  {}

// TagCategory は要求タグの分類です。
type TagCategory string

const (
	TagAssessment TagCategory = "assessment"
	TagHardware   TagCategory = "hardware"
	TagSoftware   TagCategory = "software"
)

// Tag は要求に紐づく評価・ハードウェア・ソフトウェアの名前付き項目です。
type Tag struct {
	ID       string
	Category TagCategory
	Name     string
}

// ProcessType は選考ステップの種類です。
type ProcessType string

const (
	ProcessResumeScreening  ProcessType = "resume_screening"
	ProcessPhoneInterview   ProcessType = "phone_interview"
	ProcessInitialInterview ProcessType = "initial_interview"
	ProcessAssessments      ProcessType = "assessments"
	ProcessFinalInterview   ProcessType = "final_interview"
	ProcessOffer            ProcessType = "offer"
	ProcessOnboarding       ProcessType = "onboarding"
)

const (
	minStage = 1
	maxStage = 4
)

// PipelineStep は選考パイプラインの 1 ステップです。(Stage, Order) は求人内で一意です。
type PipelineStep struct {
	ID          string
	ProcessType ProcessType
	Title       string
	Description string
	Order       int
	Stage       int
}

// FieldSetting は応募フォーム項目の表示設定です。
type FieldSetting string

const (
	FieldRequired FieldSetting = "required"
	FieldOptional FieldSetting = "optional"
	FieldDisabled FieldSetting = "disabled"
)

// ApplicationFormFields は応募フォームの項目名を表示順に列挙します。
var ApplicationFormFields = []string{
	"name",
	"birth_date",
	"gender",
	"primary_contact_number",
	"secondary_contact_number",
	"email",
	"linkedin_profile",
	"address",
	"expected_salary",
	"willing_to_work_onsite",
	"photo_2x2",
	"upload_med_cert",
	"preferred_interview_schedule",
	"education_attained",
	"year_graduated",
	"university",
	"course",
	"work_experience",
	"how_did_you_hear_about_us",
	"agreement",
	"signature",
}

// ApplicationForm は項目名から表示設定への対応です。
type ApplicationForm map[string]FieldSetting

// Setting は項目の設定を返します。未設定の場合は optional です。
func (f ApplicationForm) Setting(field string) FieldSetting {
	if s, ok := f[field]; ok && s != "" {
		return s
	}
	return FieldOptional
}
