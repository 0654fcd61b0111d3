package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/recruitment-api/internal/core/posting"
	pgdb "github.com/ogurasousui/recruitment-api/internal/platform/db/postgres"
)

const (
	clientFKConstraint       = "client_positions_client_id_fkey"
	pipelineOrderConstraint  = "pipeline_steps_stage_order_key"
	postingStatusConstraint  = "job_postings_status_check"
	requisitionDetailTable   = "requisitions"
	clientPositionTableName  = "client_positions"
	applicationFormTableName = "application_forms"
)

const postingColumns = `p.id, p.kind, p.status, p.published, p.active, p.posted_by,
               COALESCE(u.first_name || ' ' || u.last_name, ''),
               p.job_title, p.department_name, p.target_start_date, p.reason_for_posting,
               p.other_reason_for_posting, p.working_site, p.employment_type, p.work_arrangement,
               p.description, p.responsibilities, p.qualifications, p.non_negotiables,
               p.min_salary, p.max_salary, p.is_salary_range, p.created_at, p.updated_at`

// PostingRepository は PostgreSQL を利用した求人集約の永続化実装です。
type PostingRepository struct {
	pool pgdb.Queryer
}

// NewPostingRepository は PostingRepository を生成します。
func NewPostingRepository(pool pgdb.Queryer) *PostingRepository {
	return &PostingRepository{pool: pool}
}

// CreatePosting は求人ヘッダーを登録します。
func (r *PostingRepository) CreatePosting(ctx context.Context, p *posting.Posting) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO job_postings (id, kind, status, published, active, posted_by, job_title, department_name,
                                  target_start_date, reason_for_posting, other_reason_for_posting, working_site,
                                  employment_type, work_arrangement, description, responsibilities, qualifications,
                                  non_negotiables, min_salary, max_salary, is_salary_range, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
    `, p.ID, string(p.Kind), string(p.Status), p.Published, p.Active, nullableString(p.PostedBy), p.JobTitle, p.DepartmentName,
		p.TargetStartDate, p.ReasonForPosting, p.OtherReasonForPosting, p.WorkingSite,
		p.EmploymentType, p.WorkArrangement, p.Description, p.Responsibilities, p.Qualifications,
		p.NonNegotiables, p.MinSalary, p.MaxSalary, p.IsSalaryRange, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return translatePostingPgError(err)
	}
	return nil
}

// UpdatePosting は求人ヘッダーを更新します。種別と登録者は変更しません。
func (r *PostingRepository) UpdatePosting(ctx context.Context, p *posting.Posting) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE job_postings
           SET status = $1,
               published = $2,
               active = $3,
               job_title = $4,
               department_name = $5,
               target_start_date = $6,
               reason_for_posting = $7,
               other_reason_for_posting = $8,
               working_site = $9,
               employment_type = $10,
               work_arrangement = $11,
               description = $12,
               responsibilities = $13,
               qualifications = $14,
               non_negotiables = $15,
               min_salary = $16,
               max_salary = $17,
               is_salary_range = $18,
               updated_at = $19
         WHERE id = $20
    `, string(p.Status), p.Published, p.Active, p.JobTitle, p.DepartmentName, p.TargetStartDate,
		p.ReasonForPosting, p.OtherReasonForPosting, p.WorkingSite, p.EmploymentType, p.WorkArrangement,
		p.Description, p.Responsibilities, p.Qualifications, p.NonNegotiables, p.MinSalary, p.MaxSalary,
		p.IsSalaryRange, p.UpdatedAt, p.ID)
	if err != nil {
		return translatePostingPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return posting.ErrPostingNotFound
	}
	return nil
}

// FindPosting は ID で求人ヘッダーを取得します。無効化された求人も返します。
func (r *PostingRepository) FindPosting(ctx context.Context, id string) (*posting.Posting, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+postingColumns+`
          FROM job_postings p
          LEFT JOIN users u ON u.id = p.posted_by
         WHERE p.id = $1
         LIMIT 1
    `, id)

	found, err := scanPosting(row)
	if err != nil {
		if isInvalidTextRepresentation(err) {
			return nil, posting.ErrPostingNotFound
		}
		return nil, translatePostingPgError(err)
	}
	return found, nil
}

// DeactivatePostings は登録者が一致する求人のみを無効化します。
func (r *PostingRepository) DeactivatePostings(ctx context.Context, ownerID string, ids []string, at time.Time) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        UPDATE job_postings
           SET active = FALSE,
               updated_at = $3
         WHERE posted_by = $1
           AND id = ANY($2::uuid[])
           AND active = TRUE
        RETURNING id
    `, ownerID, ids, at)
	if err != nil {
		return nil, translatePostingPgError(err)
	}
	defer rows.Close()

	var deactivated []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, translatePostingPgError(err)
		}
		deactivated = append(deactivated, id)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePostingPgError(err)
	}
	return deactivated, nil
}

// ListPostings は 1 種別分の求人ヘッダーを作成日時の降順で取得します。
func (r *PostingRepository) ListPostings(ctx context.Context, filter posting.ListFilter) ([]*posting.Posting, error) {
	if filter.Limit <= 0 {
		return nil, posting.ErrInvalidPageSize
	}

	var detailTable string
	switch filter.Kind {
	case posting.KindRequisition:
		detailTable = requisitionDetailTable
	case posting.KindClientPosition:
		detailTable = clientPositionTableName
	default:
		return nil, posting.ErrInvalidKind
	}

	args := make([]any, 0, 7)
	conditions := make([]string, 0, 6)

	nextPlaceholder := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	conditions = append(conditions, "p.kind = "+nextPlaceholder(string(filter.Kind)))
	if filter.OwnerID != "" {
		conditions = append(conditions, "p.posted_by = "+nextPlaceholder(filter.OwnerID))
	}
	if filter.Active != nil {
		conditions = append(conditions, "p.active = "+nextPlaceholder(*filter.Active))
	}
	if filter.Published != nil {
		conditions = append(conditions, "p.published = "+nextPlaceholder(*filter.Published))
	}
	if filter.Status != nil {
		conditions = append(conditions, "p.status = "+nextPlaceholder(string(*filter.Status)))
	}
	if filter.ExcludeStatus != nil {
		conditions = append(conditions, "p.status <> "+nextPlaceholder(string(*filter.ExcludeStatus)))
	}
	limitPlaceholder := nextPlaceholder(filter.Limit)

	query := `
        SELECT ` + postingColumns + `
          FROM job_postings p
          JOIN ` + detailTable + ` d ON d.posting_id = p.id
          LEFT JOIN users u ON u.id = p.posted_by
         WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY p.created_at DESC, p.id DESC
         LIMIT ` + limitPlaceholder

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePostingPgError(err)
	}
	defer rows.Close()

	var postings []*posting.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, translatePostingPgError(err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePostingPgError(err)
	}
	return postings, nil
}

// CreateRequisition は要求の詳細を登録します。採用担当者とタグは別メソッドで登録します。
func (r *PostingRepository) CreateRequisition(ctx context.Context, postingID string, req *posting.Requisition) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO requisitions (posting_id, business_unit, number_of_vacancies, interview_levels,
                                  immediate_supervisor_id, contract_type, category, position_level,
                                  work_schedule_from, work_schedule_to, salary_budget, assessment_required,
                                  other_assessments)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, postingID, req.BusinessUnit, req.NumberOfVacancies, req.InterviewLevels,
		nullableString(req.ImmediateSupervisorID), req.ContractType, req.Category, req.PositionLevel,
		req.WorkScheduleFrom, req.WorkScheduleTo, req.SalaryBudget, req.AssessmentRequired,
		nonNilStrings(req.OtherAssessments))
	if err != nil {
		return translatePostingPgError(err)
	}
	return nil
}

// UpdateRequisition は要求の詳細を更新します。
func (r *PostingRepository) UpdateRequisition(ctx context.Context, postingID string, req *posting.Requisition) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE requisitions
           SET business_unit = $1,
               number_of_vacancies = $2,
               interview_levels = $3,
               immediate_supervisor_id = $4,
               contract_type = $5,
               category = $6,
               position_level = $7,
               work_schedule_from = $8,
               work_schedule_to = $9,
               salary_budget = $10,
               assessment_required = $11,
               other_assessments = $12
         WHERE posting_id = $13
    `, req.BusinessUnit, req.NumberOfVacancies, req.InterviewLevels, nullableString(req.ImmediateSupervisorID),
		req.ContractType, req.Category, req.PositionLevel, req.WorkScheduleFrom, req.WorkScheduleTo,
		req.SalaryBudget, req.AssessmentRequired, nonNilStrings(req.OtherAssessments), postingID)
	if err != nil {
		return translatePostingPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return posting.ErrPostingNotFound
	}
	return nil
}

// FindRequisition は要求の詳細を採用担当者とタグを含めて取得します。
func (r *PostingRepository) FindRequisition(ctx context.Context, postingID string) (*posting.Requisition, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT business_unit, number_of_vacancies, interview_levels, immediate_supervisor_id,
               contract_type, category, position_level, work_schedule_from, work_schedule_to,
               salary_budget, assessment_required, other_assessments
          FROM requisitions
         WHERE posting_id = $1
    `, postingID)

	var (
		req        posting.Requisition
		supervisor sql.NullString
	)
	if err := row.Scan(&req.BusinessUnit, &req.NumberOfVacancies, &req.InterviewLevels, &supervisor,
		&req.ContractType, &req.Category, &req.PositionLevel, &req.WorkScheduleFrom, &req.WorkScheduleTo,
		&req.SalaryBudget, &req.AssessmentRequired, &req.OtherAssessments); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, posting.ErrPostingNotFound
		}
		return nil, translatePostingPgError(err)
	}
	if supervisor.Valid {
		id := supervisor.String
		req.ImmediateSupervisorID = &id
	}

	managers, err := r.listHiringManagers(ctx, exec, postingID)
	if err != nil {
		return nil, err
	}
	req.HiringManagerIDs = managers

	tags, err := r.listTags(ctx, exec, postingID)
	if err != nil {
		return nil, err
	}
	req.Tags = tags

	return &req, nil
}

func (r *PostingRepository) listHiringManagers(ctx context.Context, exec pgdb.Queryer, postingID string) ([]string, error) {
	rows, err := exec.Query(ctx, `
        SELECT user_id
          FROM requisition_hiring_managers
         WHERE posting_id = $1
         ORDER BY position ASC
    `, postingID)
	if err != nil {
		return nil, translatePostingPgError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, translatePostingPgError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePostingPgError(err)
	}
	return ids, nil
}

func (r *PostingRepository) listTags(ctx context.Context, exec pgdb.Queryer, postingID string) ([]posting.Tag, error) {
	rows, err := exec.Query(ctx, `
        SELECT id, category, name
          FROM requisition_tags
         WHERE posting_id = $1
         ORDER BY category ASC, name ASC, id ASC
    `, postingID)
	if err != nil {
		return nil, translatePostingPgError(err)
	}
	defer rows.Close()

	var tags []posting.Tag
	for rows.Next() {
		var (
			tag      posting.Tag
			category string
		)
		if err := rows.Scan(&tag.ID, &category, &tag.Name); err != nil {
			return nil, translatePostingPgError(err)
		}
		tag.Category = posting.TagCategory(category)
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePostingPgError(err)
	}
	return tags, nil
}

// ReplaceHiringManagers は採用担当者の一覧を置き換えます。指定順を保持します。
func (r *PostingRepository) ReplaceHiringManagers(ctx context.Context, postingID string, userIDs []string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, `DELETE FROM requisition_hiring_managers WHERE posting_id = $1`, postingID); err != nil {
		return translatePostingPgError(err)
	}

	for i, userID := range userIDs {
		if _, err := exec.Exec(ctx, `
            INSERT INTO requisition_hiring_managers (posting_id, user_id, position)
            VALUES ($1, $2, $3)
        `, postingID, userID, i); err != nil {
			return translatePostingPgError(err)
		}
	}
	return nil
}

// InsertTags はタグを追加します。
func (r *PostingRepository) InsertTags(ctx context.Context, postingID string, tags []posting.Tag) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	for _, tag := range tags {
		if _, err := exec.Exec(ctx, `
            INSERT INTO requisition_tags (id, posting_id, category, name)
            VALUES ($1, $2, $3, $4)
        `, tag.ID, postingID, string(tag.Category), tag.Name); err != nil {
			return translatePostingPgError(err)
		}
	}
	return nil
}

// RenameTags は postingID に属するタグの名前のみを更新します。他の求人のタグは変更しません。
func (r *PostingRepository) RenameTags(ctx context.Context, postingID string, tags []posting.Tag) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	for _, tag := range tags {
		if _, err := exec.Exec(ctx, `
            UPDATE requisition_tags
               SET name = $1
             WHERE id = $2
               AND posting_id = $3
        `, tag.Name, tag.ID, postingID); err != nil {
			return translatePostingPgError(err)
		}
	}
	return nil
}

// CreateClientPosition は取引先求人の詳細を登録します。
func (r *PostingRepository) CreateClientPosition(ctx context.Context, postingID string, c *posting.ClientPosition) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO client_positions (posting_id, client_id, education_level, experience_level, headcount,
                                      work_setup, date_needed, location)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, postingID, c.ClientID, c.EducationLevel, c.ExperienceLevel, c.Headcount, c.WorkSetup, c.DateNeeded, c.Location)
	if err != nil {
		return translatePostingPgError(err)
	}
	return nil
}

// UpdateClientPosition は取引先求人の詳細を更新します。
func (r *PostingRepository) UpdateClientPosition(ctx context.Context, postingID string, c *posting.ClientPosition) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE client_positions
           SET client_id = $1,
               education_level = $2,
               experience_level = $3,
               headcount = $4,
               work_setup = $5,
               date_needed = $6,
               location = $7
         WHERE posting_id = $8
    `, c.ClientID, c.EducationLevel, c.ExperienceLevel, c.Headcount, c.WorkSetup, c.DateNeeded, c.Location, postingID)
	if err != nil {
		return translatePostingPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return posting.ErrPostingNotFound
	}
	return nil
}

// FindClientPosition は取引先求人の詳細を応募フォームとパイプラインを含めて取得します。
func (r *PostingRepository) FindClientPosition(ctx context.Context, postingID string) (*posting.ClientPosition, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT cp.client_id, COALESCE(c.name, ''), cp.education_level, cp.experience_level, cp.headcount,
               cp.work_setup, cp.date_needed, cp.location
          FROM client_positions cp
          LEFT JOIN clients c ON c.id = cp.client_id
         WHERE cp.posting_id = $1
    `, postingID)

	var cp posting.ClientPosition
	if err := row.Scan(&cp.ClientID, &cp.ClientName, &cp.EducationLevel, &cp.ExperienceLevel, &cp.Headcount,
		&cp.WorkSetup, &cp.DateNeeded, &cp.Location); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, posting.ErrPostingNotFound
		}
		return nil, translatePostingPgError(err)
	}

	form, err := r.findApplicationForm(ctx, exec, postingID)
	if err != nil {
		return nil, err
	}
	cp.ApplicationForm = form

	steps, err := r.listSteps(ctx, exec, postingID)
	if err != nil {
		return nil, err
	}
	cp.Pipeline = steps

	return &cp, nil
}

func (r *PostingRepository) findApplicationForm(ctx context.Context, exec pgdb.Queryer, postingID string) (posting.ApplicationForm, error) {
	row := exec.QueryRow(ctx, `
        SELECT `+strings.Join(posting.ApplicationFormFields, ", ")+`
          FROM `+applicationFormTableName+`
         WHERE posting_id = $1
    `, postingID)

	values := make([]string, len(posting.ApplicationFormFields))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return posting.ApplicationForm{}, nil
		}
		return nil, translatePostingPgError(err)
	}

	form := make(posting.ApplicationForm, len(values))
	for i, name := range posting.ApplicationFormFields {
		form[name] = posting.FieldSetting(values[i])
	}
	return form, nil
}

func (r *PostingRepository) listSteps(ctx context.Context, exec pgdb.Queryer, postingID string) ([]posting.PipelineStep, error) {
	rows, err := exec.Query(ctx, `
        SELECT id, process_type, title, description, step_order, stage
          FROM pipeline_steps
         WHERE posting_id = $1
         ORDER BY stage ASC, step_order ASC
    `, postingID)
	if err != nil {
		return nil, translatePostingPgError(err)
	}
	defer rows.Close()

	var steps []posting.PipelineStep
	for rows.Next() {
		var (
			step        posting.PipelineStep
			processType string
		)
		if err := rows.Scan(&step.ID, &processType, &step.Title, &step.Description, &step.Order, &step.Stage); err != nil {
			return nil, translatePostingPgError(err)
		}
		step.ProcessType = posting.ProcessType(processType)
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePostingPgError(err)
	}
	return steps, nil
}

// SaveApplicationForm は応募フォームを登録または上書きします。
func (r *PostingRepository) SaveApplicationForm(ctx context.Context, postingID string, form posting.ApplicationForm) error {
	fields := posting.ApplicationFormFields
	placeholders := make([]string, 0, len(fields)+1)
	assignments := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)

	args = append(args, postingID)
	placeholders = append(placeholders, "$1")
	for _, name := range fields {
		args = append(args, string(form.Setting(name)))
		placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
		assignments = append(assignments, name+" = EXCLUDED."+name)
	}

	query := `
        INSERT INTO ` + applicationFormTableName + ` (posting_id, ` + strings.Join(fields, ", ") + `)
        VALUES (` + strings.Join(placeholders, ", ") + `)
        ON CONFLICT (posting_id) DO UPDATE
           SET ` + strings.Join(assignments, ", ")

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, query, args...); err != nil {
		return translatePostingPgError(err)
	}
	return nil
}

// DeleteSteps は postingID に属するステップのみを削除します。
func (r *PostingRepository) DeleteSteps(ctx context.Context, postingID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        DELETE FROM pipeline_steps
         WHERE posting_id = $1
           AND id = ANY($2::uuid[])
    `, postingID, ids)
	if err != nil {
		return translatePostingPgError(err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return posting.ErrStepNotFoundInScope
	}
	return nil
}

// UpdateSteps は postingID に属するステップを更新します。
func (r *PostingRepository) UpdateSteps(ctx context.Context, postingID string, steps []posting.PipelineStep) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	for _, step := range steps {
		tag, err := exec.Exec(ctx, `
            UPDATE pipeline_steps
               SET process_type = $1,
                   title = $2,
                   description = $3,
                   step_order = $4,
                   stage = $5
             WHERE id = $6
               AND posting_id = $7
        `, string(step.ProcessType), step.Title, step.Description, step.Order, step.Stage, step.ID, postingID)
		if err != nil {
			return translatePostingPgError(err)
		}
		if tag.RowsAffected() == 0 {
			return posting.ErrStepNotFoundInScope
		}
	}
	return nil
}

// InsertSteps はステップを追加します。
func (r *PostingRepository) InsertSteps(ctx context.Context, postingID string, steps []posting.PipelineStep) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	for _, step := range steps {
		if _, err := exec.Exec(ctx, `
            INSERT INTO pipeline_steps (id, posting_id, process_type, title, description, step_order, stage)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, step.ID, postingID, string(step.ProcessType), step.Title, step.Description, step.Order, step.Stage); err != nil {
			return translatePostingPgError(err)
		}
	}
	return nil
}

func scanPosting(row pgx.Row) (*posting.Posting, error) {
	var (
		p        posting.Posting
		kind     string
		status   string
		postedBy sql.NullString
	)

	if err := row.Scan(&p.ID, &kind, &status, &p.Published, &p.Active, &postedBy, &p.PostedByName,
		&p.JobTitle, &p.DepartmentName, &p.TargetStartDate, &p.ReasonForPosting,
		&p.OtherReasonForPosting, &p.WorkingSite, &p.EmploymentType, &p.WorkArrangement,
		&p.Description, &p.Responsibilities, &p.Qualifications, &p.NonNegotiables,
		&p.MinSalary, &p.MaxSalary, &p.IsSalaryRange, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, posting.ErrPostingNotFound
		}
		return nil, err
	}

	p.Kind = posting.Kind(kind)
	p.Status = posting.Status(status)
	if postedBy.Valid {
		id := postedBy.String
		p.PostedBy = &id
	}
	return &p, nil
}

func translatePostingPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == clientFKConstraint {
				return posting.ErrClientNotFound
			}
			return posting.ErrUserNotFound
		case uniqueViolationCode:
			if pgErr.ConstraintName == pipelineOrderConstraint {
				return posting.ErrDuplicateStepOrder
			}
		case checkViolationCode:
			if pgErr.ConstraintName == postingStatusConstraint {
				return posting.ErrInvalidStatus
			}
			return posting.ErrValidation
		case invalidTextRepresentationCode:
			return posting.ErrMalformedReference
		}
	}
	return err
}

// TranslateDeferredConstraintError は COMMIT 時に報告される遅延制約の違反をドメインエラーへ変換します。
func TranslateDeferredConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == pipelineOrderConstraint {
		return posting.ErrDuplicateStepOrder
	}
	return err
}

func isInvalidTextRepresentation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentationCode
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
