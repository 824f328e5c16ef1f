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

var (
	ErrSequenceNotFound   = errors.New("sequence not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

// SequenceRepository отвечает за последовательности писем, их шаги и записи участников.
type SequenceRepository struct {
	db *sqlx.DB
}

// NewSequenceRepository создаёт новый экземпляр.
func NewSequenceRepository(db *sqlx.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// SequenceListParams содержит параметры фильтрации списка последовательностей.
type SequenceListParams struct {
	Search    string
	Status    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// SequenceListResult содержит страницу последовательностей и общее число совпадений.
type SequenceListResult struct {
	Items []models.Sequence `json:"items"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

func buildSequenceFilter(workspaceID uuid.UUID, p SequenceListParams) *common.Filter {
	f := common.NewFilter()
	f.Where("s.workspace_id = ?", workspaceID)

	if p.Search != "" {
		f.Where("s.name ILIKE ?", likePattern(p.Search))
	}
	if p.Status != "" {
		f.Where("s.status = ?", p.Status)
	}

	return f
}

var sequenceSortColumns = map[string]string{
	"name":       "s.name",
	"created_at": "s.created_at",
	"updated_at": "s.updated_at",
}

func sequenceSortExpr(sortBy, sortOrder string) string {
	col, ok := sequenceSortColumns[sortBy]
	if !ok {
		col = "s.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s NULLS LAST, s.id", col, dir)
}

// List возвращает страницу последовательностей без шагов.
func (r *SequenceRepository) List(ctx context.Context, workspaceID uuid.UUID, p SequenceListParams) (*SequenceListResult, error) {
	where, args, next := buildSequenceFilter(workspaceID, p).Render(1)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sequences s WHERE `+where, args...); err != nil {
		return nil, fmt.Errorf("sequence repository: count %w", err)
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
		SELECT s.* FROM sequences s
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, where, sequenceSortExpr(p.SortBy, p.SortOrder), next, next+1)
	args = append(args, limit, (page-1)*limit)

	var items []models.Sequence
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("sequence repository: list %w", err)
	}

	return &SequenceListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetByID возвращает последовательность вместе с шагами, отсортированными по номеру.
func (r *SequenceRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Sequence, error) {
	s, err := common.GetByID[models.Sequence](ctx, r.db, "sequences", workspaceID, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, ErrSequenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sequence repository: get by id %w", err)
	}

	if err := r.db.SelectContext(ctx, &s.Steps,
		`SELECT * FROM sequence_steps WHERE sequence_id = $1 ORDER BY step_number`, id); err != nil {
		return nil, fmt.Errorf("sequence repository: get steps %w", err)
	}

	return s, nil
}

// Create сохраняет последовательность и её шаги в одной транзакции.
func (r *SequenceRepository) Create(ctx context.Context, s *models.Sequence) error {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO sequences (workspace_id, created_by, name, status, max_emails_per_day)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, query,
			s.WorkspaceID, s.CreatedBy, s.Name, s.Status, s.MaxEmailsPerDay,
		).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return fmt.Errorf("insert sequence: %w", err)
		}

		return insertSteps(ctx, tx, s.ID, s.Steps)
	})
	if err != nil {
		return fmt.Errorf("sequence repository: create %w", err)
	}
	return nil
}

func insertSteps(ctx context.Context, tx *sqlx.Tx, sequenceID uuid.UUID, steps []models.SequenceStep) error {
	if len(steps) == 0 {
		return nil
	}

	bi := common.NewBatchInserter(tx,
		"INSERT INTO sequence_steps (sequence_id, template_id, step_number, delay_days)", 4, 100)
	for i := range steps {
		steps[i].SequenceID = sequenceID
		if err := bi.Add(ctx, sequenceID, steps[i].TemplateID, steps[i].StepNumber, steps[i].DelayDays); err != nil {
			return fmt.Errorf("insert steps: %w", err)
		}
	}
	return bi.Flush(ctx)
}

// SequenceUpdate — разреженное частичное обновление последовательности.
// Steps == nil означает «шаги не трогать»; непустой срез заменяет их целиком.
type SequenceUpdate struct {
	Name            *string
	Status          *string
	MaxEmailsPerDay *int
	Steps           []models.SequenceStep
	ReplaceSteps    bool
}

// Update применяет частичное обновление. Шаги при замене перезаписываются
// целиком внутри той же транзакции.
func (r *SequenceRepository) Update(ctx context.Context, workspaceID, id uuid.UUID, upd SequenceUpdate) (*models.Sequence, error) {
	set := common.NewSetClause()
	if upd.Name != nil {
		set.Set("name", *upd.Name)
	}
	if upd.Status != nil {
		set.Set("status", *upd.Status)
	}
	if upd.MaxEmailsPerDay != nil {
		set.Set("max_emails_per_day", *upd.MaxEmailsPerDay)
	}
	if set.Empty() && !upd.ReplaceSteps {
		return nil, common.ErrNoFieldsToUpdate
	}
	set.SetRaw("updated_at = NOW()")

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		setSQL, args, next := set.Render(1)
		query := fmt.Sprintf(`
			UPDATE sequences SET %s
			WHERE id = $%d AND workspace_id = $%d`, setSQL, next, next+1)
		args = append(args, id, workspaceID)

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update sequence: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrSequenceNotFound
		}

		if upd.ReplaceSteps {
			if _, err := tx.ExecContext(ctx, `DELETE FROM sequence_steps WHERE sequence_id = $1`, id); err != nil {
				return fmt.Errorf("delete old steps: %w", err)
			}
			if err := insertSteps(ctx, tx, id, upd.Steps); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSequenceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("sequence repository: update %w", err)
	}

	return r.GetByID(ctx, workspaceID, id)
}

// Delete удаляет последовательность; шаги и записи участников удаляются каскадно.
func (r *SequenceRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sequences WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("sequence repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sequence repository: delete rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrSequenceNotFound
	}
	return nil
}

// Enroll добавляет контакт в последовательность. Повторная попытка не создаёт дубль.
func (r *SequenceRepository) Enroll(ctx context.Context, e *models.SequenceEnrollment) error {
	query := `
		INSERT INTO sequence_enrollments (sequence_id, contact_id, enrolled_by, status, current_step)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sequence_id, contact_id) DO NOTHING
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(
		ctx, query,
		e.SequenceID, e.ContactID, e.EnrolledBy, e.Status, e.CurrentStep,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Контакт уже в последовательности, возвращаем существующую запись.
		return r.db.GetContext(ctx, e,
			`SELECT * FROM sequence_enrollments WHERE sequence_id = $1 AND contact_id = $2`,
			e.SequenceID, e.ContactID)
	}
	if err != nil {
		return fmt.Errorf("sequence repository: enroll %w", err)
	}
	return nil
}

// ListEnrollments возвращает записи участников последовательности.
func (r *SequenceRepository) ListEnrollments(ctx context.Context, sequenceID uuid.UUID, status string) ([]models.SequenceEnrollment, error) {
	f := common.NewFilter()
	f.Where("sequence_id = ?", sequenceID)
	if status != "" {
		f.Where("status = ?", status)
	}
	where, args, _ := f.Render(1)

	var items []models.SequenceEnrollment
	query := `SELECT * FROM sequence_enrollments WHERE ` + where + ` ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("sequence repository: list enrollments %w", err)
	}
	return items, nil
}

// UpdateEnrollmentStatus переводит запись участника в новый статус.
// Запись должна принадлежать последовательности этого воркспейса.
func (r *SequenceRepository) UpdateEnrollmentStatus(ctx context.Context, workspaceID, enrollmentID uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sequence_enrollments e
		 SET status = $1, updated_at = NOW()
		 FROM sequences s
		 WHERE e.id = $2 AND s.id = e.sequence_id AND s.workspace_id = $3`,
		status, enrollmentID, workspaceID)
	if err != nil {
		return fmt.Errorf("sequence repository: update enrollment %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sequence repository: update enrollment rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}
