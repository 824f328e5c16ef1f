package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository/common"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountRepository отвечает за работу с компаниями.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository создаёт новый экземпляр.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// AccountListParams содержит параметры фильтрации списка компаний.
type AccountListParams struct {
	Search      string
	Industry    string
	CompanySize string
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int
}

// AccountListResult содержит страницу компаний и общее число совпадений.
type AccountListResult struct {
	Items []models.Account `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func buildAccountFilter(workspaceID uuid.UUID, p AccountListParams) *common.Filter {
	f := common.NewFilter()
	f.Where("a.workspace_id = ?", workspaceID)

	if p.Search != "" {
		pat := likePattern(p.Search)
		f.Where("(a.name ILIKE ? OR a.domain ILIKE ?)", pat, pat)
	}
	if p.Industry != "" {
		f.Where("a.industry = ?", p.Industry)
	}
	if p.CompanySize != "" {
		f.Where("a.company_size = ?", p.CompanySize)
	}

	return f
}

var accountSortColumns = map[string]string{
	"name":       "a.name",
	"domain":     "a.domain",
	"created_at": "a.created_at",
	"updated_at": "a.updated_at",
}

func accountSortExpr(sortBy, sortOrder string) string {
	col, ok := accountSortColumns[sortBy]
	if !ok {
		col = "a.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s NULLS LAST, a.id", col, dir)
}

// List возвращает страницу компаний воркспейса.
func (r *AccountRepository) List(ctx context.Context, workspaceID uuid.UUID, p AccountListParams) (*AccountListResult, error) {
	where, args, next := buildAccountFilter(workspaceID, p).Render(1)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM accounts a WHERE `+where, args...); err != nil {
		return nil, fmt.Errorf("account repository: count %w", err)
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
		SELECT a.* FROM accounts a
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, where, accountSortExpr(p.SortBy, p.SortOrder), next, next+1)
	args = append(args, limit, (page-1)*limit)

	var items []models.Account
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("account repository: list %w", err)
	}

	return &AccountListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetByID возвращает компанию в пределах воркспейса.
func (r *AccountRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Account, error) {
	a, err := common.GetByID[models.Account](ctx, r.db, "accounts", workspaceID, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account repository: get by id %w", err)
	}
	return a, nil
}

// Create сохраняет компанию и заполняет сгенерированные поля.
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (workspace_id, created_by, name, domain, industry, company_size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		a.WorkspaceID, a.CreatedBy, a.Name, a.Domain, a.Industry, a.CompanySize,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("account repository: create %w", err)
	}
	return nil
}

// AccountUpdate — разреженное частичное обновление компании.
type AccountUpdate struct {
	Name        *string
	Domain      *string
	Industry    *string
	CompanySize *string
}

func buildAccountSet(upd AccountUpdate) *common.SetClause {
	s := common.NewSetClause()
	if upd.Name != nil {
		s.Set("name", *upd.Name)
	}
	if upd.Domain != nil {
		s.Set("domain", *upd.Domain)
	}
	if upd.Industry != nil {
		s.Set("industry", *upd.Industry)
	}
	if upd.CompanySize != nil {
		s.Set("company_size", *upd.CompanySize)
	}
	return s
}

// Update применяет частичное обновление и возвращает свежую запись.
func (r *AccountRepository) Update(ctx context.Context, workspaceID, id uuid.UUID, upd AccountUpdate) (*models.Account, error) {
	set := buildAccountSet(upd)
	if set.Empty() {
		return nil, common.ErrNoFieldsToUpdate
	}
	set.SetRaw("updated_at = NOW()")

	setSQL, args, next := set.Render(1)
	query := fmt.Sprintf(`
		UPDATE accounts SET %s
		WHERE id = $%d AND workspace_id = $%d
		RETURNING *`, setSQL, next, next+1)
	args = append(args, id, workspaceID)

	var a models.Account
	if err := r.db.GetContext(ctx, &a, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("account repository: update %w", err)
	}
	return &a, nil
}

// Delete удаляет компанию воркспейса. Контакты остаются, ссылка обнуляется на уровне схемы.
func (r *AccountRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("account repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("account repository: delete rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
