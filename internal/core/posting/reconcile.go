package posting

import (
	"sort"
	"strconv"
	"strings"
)

// StepPatch はパイプラインステップの変更要求です。
// ID なしは追加、ID ありは更新、Delete を伴う ID は削除を表します。
type StepPatch struct {
	ID          string
	Delete      bool
	ProcessType *ProcessType
	Title       *string
	Description *string
	Order       *int
	Stage       *int
}

// PipelinePlan は差分の適用順 (削除、更新、追加) と適用後のステップ集合です。
type PipelinePlan struct {
	Deletes []string
	Updates []PipelineStep
	Inserts []PipelineStep
	Result  []PipelineStep
}

// Empty は変更がない場合に true を返します。
func (p *PipelinePlan) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Updates) == 0 && len(p.Inserts) == 0
}

// ReconcilePipeline は既存ステップと変更要求の差分を計算します。
// 結果は空であってはならず、(stage, order) が重複してはなりません。
func ReconcilePipeline(existing []PipelineStep, patches []StepPatch, newID func() string) (*PipelinePlan, error) {
	current := make(map[string]PipelineStep, len(existing))
	order := make([]string, 0, len(existing))
	for _, step := range existing {
		current[step.ID] = step
		order = append(order, step.ID)
	}

	plan := &PipelinePlan{}

	deleted := make(map[string]bool)
	for _, patch := range patches {
		if !patch.Delete {
			continue
		}
		if patch.ID == "" {
			continue
		}
		if _, ok := current[patch.ID]; !ok || deleted[patch.ID] {
			return nil, ErrStepNotFoundInScope
		}
		deleted[patch.ID] = true
		plan.Deletes = append(plan.Deletes, patch.ID)
	}

	updated := make(map[string]int)
	for i, patch := range patches {
		if patch.Delete || patch.ID == "" {
			continue
		}
		step, ok := current[patch.ID]
		if !ok || deleted[patch.ID] {
			return nil, ErrStepNotFoundInScope
		}
		applyStepPatch(&step, patch)
		if err := validateStep(step, "pipeline["+strconv.Itoa(i)+"]"); err != nil {
			return nil, err
		}
		current[patch.ID] = step
		if idx, seen := updated[patch.ID]; seen {
			plan.Updates[idx] = step
			continue
		}
		updated[patch.ID] = len(plan.Updates)
		plan.Updates = append(plan.Updates, step)
	}

	for i, patch := range patches {
		if patch.Delete || patch.ID != "" {
			continue
		}
		if missing := missingStepFields(patch); len(missing) > 0 {
			return nil, &MissingFieldsError{Fields: missing}
		}
		step := PipelineStep{ID: newID()}
		applyStepPatch(&step, patch)
		if err := validateStep(step, "pipeline["+strconv.Itoa(i)+"]"); err != nil {
			return nil, err
		}
		plan.Inserts = append(plan.Inserts, step)
	}

	for _, id := range order {
		if deleted[id] {
			continue
		}
		plan.Result = append(plan.Result, current[id])
	}
	plan.Result = append(plan.Result, plan.Inserts...)

	if len(plan.Result) == 0 {
		return nil, ErrPipelineRequired
	}

	seen := make(map[[2]int]bool, len(plan.Result))
	for _, step := range plan.Result {
		key := [2]int{step.Stage, step.Order}
		if seen[key] {
			return nil, ErrDuplicateStepOrder
		}
		seen[key] = true
	}

	SortSteps(plan.Result)
	return plan, nil
}

// SortSteps はステップを (stage, order) の昇順に並べ替えます。
func SortSteps(steps []PipelineStep) {
	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].Stage != steps[j].Stage {
			return steps[i].Stage < steps[j].Stage
		}
		return steps[i].Order < steps[j].Order
	})
}

func applyStepPatch(step *PipelineStep, patch StepPatch) {
	if patch.ProcessType != nil {
		step.ProcessType = *patch.ProcessType
	}
	if patch.Title != nil {
		step.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		step.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Order != nil {
		step.Order = *patch.Order
	}
	if patch.Stage != nil {
		step.Stage = *patch.Stage
	}
}

func missingStepFields(patch StepPatch) []string {
	var missing []string
	if patch.ProcessType == nil {
		missing = append(missing, "process_type")
	}
	if patch.Title == nil {
		missing = append(missing, "title")
	}
	if patch.Description == nil {
		missing = append(missing, "description")
	}
	if patch.Order == nil {
		missing = append(missing, "order")
	}
	if patch.Stage == nil {
		missing = append(missing, "stage")
	}
	return missing
}

func validateStep(step PipelineStep, prefix string) error {
	var v validator
	v.check(isValidProcessType(step.ProcessType), prefix+".process_type", "unknown process type")
	v.check(step.Title != "", prefix+".title", "must not be empty")
	v.check(step.Order > 0, prefix+".order", "must be a positive integer")
	v.check(step.Stage >= minStage && step.Stage <= maxStage, prefix+".stage", "must be between 1 and 4")
	return v.err()
}

func isValidProcessType(t ProcessType) bool {
	switch t {
	case ProcessResumeScreening, ProcessPhoneInterview, ProcessInitialInterview,
		ProcessAssessments, ProcessFinalInterview, ProcessOffer, ProcessOnboarding:
		return true
	default:
		return false
	}
}
