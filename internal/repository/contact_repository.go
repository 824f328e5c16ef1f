package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository/common"
)

var ErrContactNotFound = errors.New("contact not found")

// ContactRepository отвечает за работу с контактами.
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository создаёт новый экземпляр.
func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// ContactListParams содержит параметры фильтрации списка контактов.
type ContactListParams struct {
	Search    string
	Status    string
	AccountID *uuid.UUID
	OwnerID   *uuid.UUID
	Tags      []string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// ContactListResult содержит страницу контактов и общее число совпадений.
type ContactListResult struct {
	Items []models.Contact `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func buildContactFilter(workspaceID uuid.UUID, p ContactListParams) *common.Filter {
	f := common.NewFilter()
	f.Where("c.workspace_id = ?", workspaceID)

	if p.Search != "" {
		pat := likePattern(p.Search)
		f.Where("(c.first_name ILIKE ? OR c.last_name ILIKE ? OR c.email ILIKE ? OR c.title ILIKE ?)", pat, pat, pat, pat)
	}
	if p.Status != "" {
		f.Where("c.status = ?", p.Status)
	}
	if p.AccountID != nil {
		f.Where("c.account_id = ?", *p.AccountID)
	}
	if p.OwnerID != nil {
		f.Where("c.owner_id = ?", *p.OwnerID)
	}
	if len(p.Tags) > 0 {
		f.Where("c.tags && ?", pq.Array(p.Tags))
	}

	return f
}

var contactSortColumns = map[string]string{
	"first_name": "c.first_name",
	"last_name":  "c.last_name",
	"email":      "c.email",
	"created_at": "c.created_at",
	"updated_at": "c.updated_at",
}

func contactSortExpr(sortBy, sortOrder string) string {
	col, ok := contactSortColumns[sortBy]
	if !ok {
		col = "c.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s NULLS LAST, c.id", col, dir)
}

// List возвращает страницу контактов воркспейса.
func (r *ContactRepository) List(ctx context.Context, workspaceID uuid.UUID, p ContactListParams) (*ContactListResult, error) {
	where, args, next := buildContactFilter(workspaceID, p).Render(1)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM contacts c WHERE `+where, args...); err != nil {
		return nil, fmt.Errorf("contact repository: count %w", err)
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT c.* FROM contacts c
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, where, contactSortExpr(p.SortBy, p.SortOrder), next, next+1)
	args = append(args, limit, (page-1)*limit)

	var items []models.Contact
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("contact repository: list %w", err)
	}

	return &ContactListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetByID возвращает контакт в пределах воркспейса.
func (r *ContactRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Contact, error) {
	c, err := common.GetByID[models.Contact](ctx, r.db, "contacts", workspaceID, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("contact repository: get by id %w", err)
	}
	return c, nil
}

// Create сохраняет контакт и заполняет сгенерированные поля.
func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	query := `
		INSERT INTO contacts (workspace_id, account_id, owner_id, first_name, last_name, email, title, phone, status, tags, custom_fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		c.WorkspaceID, c.AccountID, c.OwnerID, c.FirstName, c.LastName,
		c.Email, c.Title, c.Phone, c.Status, c.Tags, c.CustomFields,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("contact repository: create %w", err)
	}
	return nil
}

// ContactUpdate — разреженное частичное обновление контакта.
type ContactUpdate struct {
	AccountID    *uuid.UUID
	FirstName    *string
	LastName     *string
	Email        *string
	Title        *string
	Phone        *string
	Status       *string
	Tags         *[]string
	CustomFields types.JSONText
}

func buildContactSet(upd ContactUpdate) *common.SetClause {
	s := common.NewSetClause()
	if upd.AccountID != nil {
		s.Set("account_id", *upd.AccountID)
	}
	if upd.FirstName != nil {
		s.Set("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		s.Set("last_name", *upd.LastName)
	}
	if upd.Email != nil {
		s.Set("email", *upd.Email)
	}
	if upd.Title != nil {
		s.Set("title", *upd.Title)
	}
	if upd.Phone != nil {
		s.Set("phone", *upd.Phone)
	}
	if upd.Status != nil {
		s.Set("status", *upd.Status)
	}
	if upd.Tags != nil {
		s.Set("tags", pq.Array(*upd.Tags))
	}
	if len(upd.CustomFields) > 0 {
		s.Set("custom_fields", upd.CustomFields)
	}
	return s
}

// Update применяет частичное обновление и возвращает свежую запись.
func (r *ContactRepository) Update(ctx context.Context, workspaceID, id uuid.UUID, upd ContactUpdate) (*models.Contact, error) {
	set := buildContactSet(upd)
	if set.Empty() {
		return nil, common.ErrNoFieldsToUpdate
	}
	set.SetRaw("updated_at = NOW()")

	setSQL, args, next := set.Render(1)
	query := fmt.Sprintf(`
		UPDATE contacts SET %s
		WHERE id = $%d AND workspace_id = $%d
		RETURNING *`, setSQL, next, next+1)
	args = append(args, id, workspaceID)

	var c models.Contact
	if err := r.db.GetContext(ctx, &c, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("contact repository: update %w", err)
	}
	return &c, nil
}

// Delete удаляет контакт воркспейса.
func (r *ContactRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("contact repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("contact repository: delete rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}
