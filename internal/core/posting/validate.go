package posting

import (
	"strings"
	"time"
)

const (
	maxTitleLength     = 255
	maxHeadcount       = 100
	reasonOthers       = "others"
	noSupervisor       = "no_supervisor"
	workScheduleLayout = "15:04"
)

var (
	businessUnits    = map[string]bool{"oodc": true, "oors": true}
	educationLevels  = map[string]bool{"high_school": true, "associate": true, "bachelor": true, "master": true, "doctorate": true}
	experienceLevels = map[string]bool{"entry": true, "junior": true, "mid": true, "senior": true, "lead": true, "executive": true}
	employmentTypes  = map[string]bool{"full_time": true, "part_time": true, "contract": true, "internship": true, "temporary": true}
	workSetups       = map[string]bool{"onsite": true, "remote": true, "hybrid": true}
)

func validateHeader(p *Posting) error {
	var v validator
	v.check(p.JobTitle != "" && len(p.JobTitle) <= maxTitleLength, "job_title", "must be between 1 and 255 characters")
	v.check(!strings.EqualFold(p.ReasonForPosting, reasonOthers) || p.OtherReasonForPosting != "",
		"other_reason_for_posting", "required when reason_for_posting is others")
	v.check(p.MinSalary >= 0, "min_salary", "must not be negative")
	v.check(p.MaxSalary >= 0, "max_salary", "must not be negative")
	v.check(!p.IsSalaryRange || p.MinSalary <= p.MaxSalary, "max_salary", "must not be less than min_salary")
	return v.err()
}

func validateRequisition(r *Requisition) error {
	var v validator
	v.check(businessUnits[r.BusinessUnit], "business_unit", "must be one of oodc, oors")
	v.check(r.NumberOfVacancies > 0, "number_of_vacancies", "must be a positive integer")
	v.check(r.InterviewLevels >= 0, "interview_levels", "must not be negative")
	v.check(isWorkSchedule(r.WorkScheduleFrom), "work_schedule_from", "must be in HH:MM format")
	v.check(isWorkSchedule(r.WorkScheduleTo), "work_schedule_to", "must be in HH:MM format")
	v.check(r.SalaryBudget >= 0, "salary_budget", "must not be negative")
	for _, tag := range r.Tags {
		v.check(isValidTagCategory(tag.Category), "tags", "unknown tag category")
		v.check(tag.Name != "", "tags", "tag name must not be empty")
	}
	return v.err()
}

func validateClientPosition(c *ClientPosition, employmentType string) error {
	var v validator
	v.check(c.ClientID != "", "client", "must be set")
	v.check(educationLevels[c.EducationLevel], "education_level", "unknown education level")
	v.check(experienceLevels[c.ExperienceLevel], "experience_level", "unknown experience level")
	v.check(employmentTypes[employmentType], "employment_type", "unknown employment type")
	v.check(c.Headcount >= 0 && c.Headcount <= maxHeadcount, "headcount", "must be between 0 and 100")
	v.check(workSetups[c.WorkSetup], "work_setup", "must be one of onsite, remote, hybrid")
	v.check(c.DateNeeded != nil, "date_needed", "must be set")
	return v.err()
}

// normalizeRequisition は採用担当者がいない場合に面接回数を 0 に揃えます。
func normalizeRequisition(r *Requisition) {
	r.HiringManagerIDs = uniqueNonEmpty(r.HiringManagerIDs)
	r.OtherAssessments = uniqueNonEmpty(r.OtherAssessments)
	if len(r.HiringManagerIDs) == 0 {
		r.InterviewLevels = 0
	}
}

func normalizeSupervisor(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == noSupervisor {
		return nil
	}
	return &trimmed
}

// mergeApplicationForm は base に patch を上書きし、全項目の設定を持つフォームを返します。
func mergeApplicationForm(base ApplicationForm, patch map[string]FieldSetting) (ApplicationForm, error) {
	var v validator
	known := make(map[string]bool, len(ApplicationFormFields))
	for _, name := range ApplicationFormFields {
		known[name] = true
	}
	for name, setting := range patch {
		v.check(known[name], "application_form."+name, "unknown field")
		v.check(setting == "" || isValidFieldSetting(setting), "application_form."+name, "must be one of required, optional, disabled")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	merged := make(ApplicationForm, len(ApplicationFormFields))
	for _, name := range ApplicationFormFields {
		merged[name] = base.Setting(name)
		if setting, ok := patch[name]; ok && setting != "" {
			merged[name] = setting
		}
	}
	return merged, nil
}

func isValidFieldSetting(s FieldSetting) bool {
	switch s {
	case FieldRequired, FieldOptional, FieldDisabled:
		return true
	default:
		return false
	}
}

func isValidTagCategory(c TagCategory) bool {
	switch c {
	case TagAssessment, TagHardware, TagSoftware:
		return true
	default:
		return false
	}
}

func isWorkSchedule(raw string) bool {
	if raw == "" {
		return true
	}
	_, err := time.Parse(workScheduleLayout, raw)
	return err == nil
}

func uniqueNonEmpty(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
