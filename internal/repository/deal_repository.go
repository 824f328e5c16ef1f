package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository/common"
)

var ErrDealNotFound = errors.New("deal not found")

// DealRepository отвечает за сделки и сводку по воронке.
type DealRepository struct {
	db *sqlx.DB
}

// NewDealRepository создаёт новый экземпляр.
func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

// DealListParams содержит параметры фильтрации списка сделок.
type DealListParams struct {
	Search    string
	Stage     string
	OwnerID   *uuid.UUID
	AccountID *uuid.UUID
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// DealListResult содержит страницу сделок и общее число совпадений.
type DealListResult struct {
	Items []models.Deal `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func buildDealFilter(workspaceID uuid.UUID, p DealListParams) *common.Filter {
	f := common.NewFilter()
	f.Where("d.workspace_id = ?", workspaceID)

	if p.Search != "" {
		f.Where("d.name ILIKE ?", likePattern(p.Search))
	}
	if p.Stage != "" {
		f.Where("d.stage = ?", p.Stage)
	}
	if p.OwnerID != nil {
		f.Where("d.owner_id = ?", *p.OwnerID)
	}
	if p.AccountID != nil {
		f.Where("d.account_id = ?", *p.AccountID)
	}

	return f
}

var dealSortColumns = map[string]string{
	"name":              "d.name",
	"amount":            "d.amount",
	"expected_close_at": "d.expected_close_at",
	"created_at":        "d.created_at",
	"updated_at":        "d.updated_at",
}

func dealSortExpr(sortBy, sortOrder string) string {
	col, ok := dealSortColumns[sortBy]
	if !ok {
		col = "d.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s NULLS LAST, d.id", col, dir)
}

// List возвращает страницу сделок воркспейса.
func (r *DealRepository) List(ctx context.Context, workspaceID uuid.UUID, p DealListParams) (*DealListResult, error) {
	where, args, next := buildDealFilter(workspaceID, p).Render(1)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM deals d WHERE `+where, args...); err != nil {
		return nil, fmt.Errorf("deal repository: count %w", err)
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
		SELECT d.* FROM deals d
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, where, dealSortExpr(p.SortBy, p.SortOrder), next, next+1)
	args = append(args, limit, (page-1)*limit)

	var items []models.Deal
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("deal repository: list %w", err)
	}

	return &DealListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetByID возвращает сделку в пределах воркспейса.
func (r *DealRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Deal, error) {
	d, err := common.GetByID[models.Deal](ctx, r.db, "deals", workspaceID, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deal repository: get by id %w", err)
	}
	return d, nil
}

// Create сохраняет сделку и заполняет сгенерированные поля.
func (r *DealRepository) Create(ctx context.Context, d *models.Deal) error {
	query := `
		INSERT INTO deals (workspace_id, owner_id, contact_id, account_id, name, stage, amount, expected_close_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		d.WorkspaceID, d.OwnerID, d.ContactID, d.AccountID,
		d.Name, d.Stage, d.Amount, d.ExpectedCloseAt,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return fmt.Errorf("deal repository: create %w", err)
	}
	return nil
}

// DealUpdate — разреженное частичное обновление сделки.
type DealUpdate struct {
	Name            *string
	Stage           *string
	Amount          *float64
	ContactID       *uuid.UUID
	AccountID       *uuid.UUID
	ExpectedCloseAt *time.Time
}

func buildDealSet(upd DealUpdate) *common.SetClause {
	s := common.NewSetClause()
	if upd.Name != nil {
		s.Set("name", *upd.Name)
	}
	if upd.Stage != nil {
		s.Set("stage", *upd.Stage)
	}
	if upd.Amount != nil {
		s.Set("amount", *upd.Amount)
	}
	if upd.ContactID != nil {
		s.Set("contact_id", *upd.ContactID)
	}
	if upd.AccountID != nil {
		s.Set("account_id", *upd.AccountID)
	}
	if upd.ExpectedCloseAt != nil {
		s.Set("expected_close_at", *upd.ExpectedCloseAt)
	}
	return s
}

// Update применяет частичное обновление и возвращает свежую запись.
func (r *DealRepository) Update(ctx context.Context, workspaceID, id uuid.UUID, upd DealUpdate) (*models.Deal, error) {
	set := buildDealSet(upd)
	if set.Empty() {
		return nil, common.ErrNoFieldsToUpdate
	}
	set.SetRaw("updated_at = NOW()")

	setSQL, args, next := set.Render(1)
	query := fmt.Sprintf(`
		UPDATE deals SET %s
		WHERE id = $%d AND workspace_id = $%d
		RETURNING *`, setSQL, next, next+1)
	args = append(args, id, workspaceID)

	var d models.Deal
	if err := r.db.GetContext(ctx, &d, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("deal repository: update %w", err)
	}
	return &d, nil
}

// Delete удаляет сделку воркспейса.
func (r *DealRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM deals WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("deal repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deal repository: delete rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrDealNotFound
	}
	return nil
}

// GetPipelineSummary возвращает количество и сумму сделок по каждому этапу воронки.
func (r *DealRepository) GetPipelineSummary(ctx context.Context, workspaceID uuid.UUID) ([]models.StageSummary, error) {
	query := `
		SELECT stage, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount
		FROM deals
		WHERE workspace_id = $1
		GROUP BY stage
	`
	var summary []models.StageSummary
	if err := r.db.SelectContext(ctx, &summary, query, workspaceID); err != nil {
		return nil, fmt.Errorf("deal repository: pipeline summary %w", err)
	}
	return summary, nil
}
