package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/recruitment-api/internal/core/identity"
	pgdb "github.com/ogurasousui/recruitment-api/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	// invalidTextRepresentationCode は UUID 列へ解釈できない文字列を渡した場合に返されます。
	invalidTextRepresentationCode = "22P02"
)

const userColumns = `id, email, first_name, middle_name, last_name, password_hash, attempt,
               business_unit, department, role, is_staff, is_superuser, is_active, created_at, updated_at`

// IdentityRepository は PostgreSQL を利用したユーザー永続化の実装です。
type IdentityRepository struct {
	pool pgdb.Queryer
}

// NewIdentityRepository は IdentityRepository を生成します。
func NewIdentityRepository(pool pgdb.Queryer) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Create はユーザーを新規作成します。
func (r *IdentityRepository) Create(ctx context.Context, u *identity.User) (*identity.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO users (id, email, first_name, middle_name, last_name, password_hash, attempt,
                           business_unit, department, role, is_staff, is_superuser, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING `+userColumns+`
    `, u.ID, u.Email, u.FirstName, u.MiddleName, u.LastName, u.PasswordHash, u.Attempt,
		u.BusinessUnit, u.Department, string(u.Role), u.IsStaff, u.IsSuperuser, u.IsActive, u.CreatedAt, u.UpdatedAt)

	created, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return created, nil
}

// Update はユーザー情報を更新します。ログイン失敗回数は専用のメソッドでのみ変更します。
func (r *IdentityRepository) Update(ctx context.Context, u *identity.User) (*identity.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE users
           SET email = $1,
               first_name = $2,
               middle_name = $3,
               last_name = $4,
               password_hash = $5,
               business_unit = $6,
               department = $7,
               role = $8,
               is_staff = $9,
               is_superuser = $10,
               is_active = $11,
               updated_at = $12
         WHERE id = $13
        RETURNING `+userColumns+`
    `, u.Email, u.FirstName, u.MiddleName, u.LastName, u.PasswordHash, u.BusinessUnit, u.Department,
		string(u.Role), u.IsStaff, u.IsSuperuser, u.IsActive, u.UpdatedAt, u.ID)

	updated, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return updated, nil
}

// FindByID は ID でユーザーを取得します。
func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*identity.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE email = $1
         LIMIT 1
    `, email)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// List は有効なユーザーの一覧を取得します。
func (r *IdentityRepository) List(ctx context.Context, filter identity.ListUsersFilter) ([]*identity.User, string, error) {
	if filter.Limit <= 0 {
		return nil, "", identity.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", identity.ErrInvalidPageToken
	}

	args := make([]any, 0, 3)
	conditions := []string{"is_active = TRUE"}

	if filter.BusinessUnit != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "business_unit = "+placeholder)
		args = append(args, filter.BusinessUnit)
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Limit+1)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + userColumns + `
          FROM users
         WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY last_name ASC, first_name ASC, id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateUserPgError(err)
	}
	defer rows.Close()

	var users []*identity.User
	for rows.Next() {
		found, err := scanUser(rows)
		if err != nil {
			return nil, "", translateUserPgError(err)
		}
		users = append(users, found)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateUserPgError(err)
	}

	var nextToken string
	if len(users) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		users = users[:filter.Limit]
	}

	return users, nextToken, nil
}

// IncrementAttempt はログイン失敗回数を 1 増やし、更新後の値を返します。
func (r *IdentityRepository) IncrementAttempt(ctx context.Context, id string) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var attempt int
	err := exec.QueryRow(ctx, `
        UPDATE users
           SET attempt = attempt + 1
         WHERE id = $1
        RETURNING attempt
    `, id).Scan(&attempt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, identity.ErrUserNotFound
		}
		return 0, err
	}
	return attempt, nil
}

// ResetAttempt はログイン失敗回数を 0 に戻します。
func (r *IdentityRepository) ResetAttempt(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `UPDATE users SET attempt = 0 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*identity.User, error) {
	var (
		u                    identity.User
		role                 string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.MiddleName, &u.LastName, &u.PasswordHash, &u.Attempt,
		&u.BusinessUnit, &u.Department, &role, &u.IsStaff, &u.IsSuperuser, &u.IsActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}

	u.Role = identity.Role(role)
	u.CreatedAt = createdAt
	u.UpdatedAt = updatedAt
	return &u, nil
}

func translateUserPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return identity.ErrEmailAlreadyExists
		case checkViolationCode:
			return identity.ErrInvalidRole
		case invalidTextRepresentationCode:
			return identity.ErrUserNotFound
		}
	}
	return err
}
