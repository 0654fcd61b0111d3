package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/recruitment-api/internal/core/client"
	pgdb "github.com/ogurasousui/recruitment-api/internal/platform/db/postgres"
)

const clientSelect = `
        SELECT c.id, c.name, c.email, c.contact_number, c.active, c.posted_by,
               COALESCE(u.first_name || ' ' || u.last_name, ''), c.created_at, c.updated_at
          FROM clients c
          LEFT JOIN users u ON u.id = c.posted_by`

// ClientRepository は PostgreSQL を利用した取引先永続化の実装です。
type ClientRepository struct {
	pool pgdb.Queryer
}

// NewClientRepository は ClientRepository を生成します。
func NewClientRepository(pool pgdb.Queryer) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// Create は取引先を新規作成します。
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) (*client.Client, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO clients (id, name, email, contact_number, active, posted_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, c.ID, c.Name, c.Email, c.ContactNumber, c.Active, nullableString(c.PostedBy), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, translateClientPgError(err)
	}
	return r.FindByID(ctx, c.ID)
}

// Update は取引先情報を更新します。
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) (*client.Client, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE clients
           SET name = $1,
               email = $2,
               contact_number = $3,
               active = $4,
               updated_at = $5
         WHERE id = $6
    `, c.Name, c.Email, c.ContactNumber, c.Active, c.UpdatedAt, c.ID)
	if err != nil {
		return nil, translateClientPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, client.ErrClientNotFound
	}
	return r.FindByID(ctx, c.ID)
}

// FindByID は ID で取引先を取得します。
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*client.Client, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, clientSelect+`
         WHERE c.id = $1
         LIMIT 1
    `, id)

	found, err := scanClient(row)
	if err != nil {
		return nil, translateClientPgError(err)
	}
	return found, nil
}

// FindByName は名前で取引先を取得します。
func (r *ClientRepository) FindByName(ctx context.Context, name string) (*client.Client, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, clientSelect+`
         WHERE c.name = $1
         LIMIT 1
    `, name)

	found, err := scanClient(row)
	if err != nil {
		return nil, translateClientPgError(err)
	}
	return found, nil
}

// List は取引先の一覧を取得します。
func (r *ClientRepository) List(ctx context.Context, filter client.ListClientsFilter) ([]*client.Client, string, error) {
	if filter.Limit <= 0 {
		return nil, "", client.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", client.ErrInvalidPageToken
	}

	whereClause := ""
	if filter.ActiveOnly {
		whereClause = `
         WHERE c.active = TRUE`
	}

	query := clientSelect + whereClause + `
         ORDER BY c.name ASC, c.id ASC
         LIMIT $1
        OFFSET $2
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, filter.Limit+1, filter.Offset)
	if err != nil {
		return nil, "", translateClientPgError(err)
	}
	defer rows.Close()

	var clients []*client.Client
	for rows.Next() {
		found, err := scanClient(rows)
		if err != nil {
			return nil, "", translateClientPgError(err)
		}
		clients = append(clients, found)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateClientPgError(err)
	}

	var nextToken string
	if len(clients) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		clients = clients[:filter.Limit]
	}

	return clients, nextToken, nil
}

func scanClient(row pgx.Row) (*client.Client, error) {
	var (
		c                    client.Client
		postedBy             sql.NullString
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.ContactNumber, &c.Active, &postedBy, &c.PostedByName, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, client.ErrClientNotFound
		}
		return nil, err
	}

	if postedBy.Valid {
		id := postedBy.String
		c.PostedBy = &id
	}
	c.CreatedAt = createdAt
	c.UpdatedAt = updatedAt
	return &c, nil
}

func translateClientPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return client.ErrNameAlreadyExists
		case checkViolationCode:
			return client.ErrInvalidContactNumber
		case invalidTextRepresentationCode:
			return client.ErrClientNotFound
		}
	}
	return err
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
