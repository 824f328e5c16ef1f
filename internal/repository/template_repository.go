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

// Ошибки уровня репозитория.
var (
	ErrTemplateNotFound   = errors.New("template not found")
	ErrCollectionNotFound = errors.New("collection not found")
)

// TemplateRepository отвечает за работу с шаблонами, избранным и подборками.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository создаёт новый экземпляр.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

const templateColumns = `t.id, t.workspace_id, t.created_by, t.name, t.subject_line, t.body_html, t.body_text,
	t.category, t.persona, t.industry, t.company_size, t.sales_stage, t.tone, t.language, t.status,
	t.access_level, t.tags, t.custom_fields, t.use_count, t.last_used_at, t.created_at, t.updated_at`

var templateColumnsBare = strings.ReplaceAll(templateColumns, "t.", "")

// TemplateListParams содержит параметры фильтрации, сортировки и пагинации
// списка шаблонов. Нулевое значение поля означает "фильтр не задан".
type TemplateListParams struct {
	Search       string
	Category     string
	Persona      string
	Industry     string
	CompanySize  string
	SalesStage   string
	Tone         string
	Status       string
	AccessLevel  string
	Tags         []string
	ReplyRateMin *float64
	ReplyRateMax *float64
	FavoriteOnly bool
	CollectionID *uuid.UUID
	SortBy       string
	SortOrder    string
	Page         int
	Limit        int
}

// TemplateListResult содержит страницу шаблонов и общее число совпадений.
type TemplateListResult struct {
	Items []models.Template `json:"items"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// likePattern оборачивает значение в маркеры подстроки для ILIKE,
// экранируя спецсимволы шаблона, чтобы пользовательский ввод не
// превращался в собственный wildcard.
func likePattern(s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + escaped + "%"
}

// buildTemplateFilter собирает предикаты списка шаблонов.
// Предикат воркспейса обязателен и всегда идёт первым, все остальные
// фильтры опциональны.
func buildTemplateFilter(workspaceID, viewerID uuid.UUID, p TemplateListParams) *common.Filter {
	f := common.NewFilter()
	f.Where("t.workspace_id = ?", workspaceID)

	if p.Search != "" {
		pat := likePattern(p.Search)
		f.Where("(t.name ILIKE ? OR t.subject_line ILIKE ? OR t.body_html ILIKE ?)", pat, pat, pat)
	}
	if p.Category != "" {
		f.Where("t.category = ?", p.Category)
	}
	if p.Persona != "" {
		f.Where("t.persona = ?", p.Persona)
	}
	if p.Industry != "" {
		f.Where("t.industry = ?", p.Industry)
	}
	if p.CompanySize != "" {
		f.Where("t.company_size = ?", p.CompanySize)
	}
	if p.SalesStage != "" {
		f.Where("t.sales_stage = ?", p.SalesStage)
	}
	if p.Tone != "" {
		f.Where("t.tone = ?", p.Tone)
	}
	if p.Status != "" {
		f.Where("t.status = ?", p.Status)
	}
	if p.AccessLevel != "" {
		f.Where("t.access_level = ?", p.AccessLevel)
	}
	if len(p.Tags) > 0 {
		// Пересечение множеств: достаточно одного общего тега.
		f.Where("t.tags && ?", pq.Array(p.Tags))
	}
	if p.ReplyRateMin != nil {
		f.Where("tp.reply_rate >= ?", *p.ReplyRateMin)
	}
	if p.ReplyRateMax != nil {
		f.Where("tp.reply_rate <= ?", *p.ReplyRateMax)
	}
	if p.FavoriteOnly {
		f.Where("EXISTS (SELECT 1 FROM template_favorites tf WHERE tf.template_id = t.id AND tf.user_id = ?)", viewerID)
	}
	if p.CollectionID != nil {
		f.Where("EXISTS (SELECT 1 FROM template_collection_items ci WHERE ci.template_id = t.id AND ci.collection_id = ?)", *p.CollectionID)
	}

	return f
}

// templateSortColumns — закрытый список полей, по которым разрешена сортировка.
// Клиентский ключ никогда не попадает в SQL напрямую.
var templateSortColumns = map[string]string{
	"name":         "t.name",
	"created_at":   "t.created_at",
	"updated_at":   "t.updated_at",
	"use_count":    "t.use_count",
	"last_used_at": "t.last_used_at",
	"sends":        "tp.sends",
	"open_rate":    "tp.open_rate",
	"reply_rate":   "tp.reply_rate",
}

// templateSortExpr возвращает безопасное выражение ORDER BY.
// Неизвестный ключ деградирует к дате создания, направление — к убыванию.
// NULLS LAST держит строки без значения в конце независимо от направления,
// иначе пагинация по метрикам перфоманса была бы нестабильной.
func templateSortExpr(sortBy, sortOrder string) string {
	col, ok := templateSortColumns[sortBy]
	if !ok {
		col = "t.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s NULLS LAST, t.id", col, dir)
}

// templateRow — строка расширенной выборки: шаблон плюс метрики и флаг избранного.
type templateRow struct {
	models.Template
	PerfSends     *int     `db:"perf_sends"`
	PerfOpens     *int     `db:"perf_opens"`
	PerfClicks    *int     `db:"perf_clicks"`
	PerfReplies   *int     `db:"perf_replies"`
	PerfOpenRate  *float64 `db:"perf_open_rate"`
	PerfClickRate *float64 `db:"perf_click_rate"`
	PerfReplyRate *float64 `db:"perf_reply_rate"`
	RowIsFavorite bool     `db:"row_is_favorite"`
}

// toTemplate переносит обогащение из строки выборки в модель.
func (row templateRow) toTemplate() models.Template {
	t := row.Template
	t.IsFavorite = row.RowIsFavorite
	if row.PerfSends != nil {
		t.Performance = &models.TemplatePerformance{
			TemplateID: t.ID,
			Sends:      *row.PerfSends,
			Opens:      *row.PerfOpens,
			Clicks:     *row.PerfClicks,
			Replies:    *row.PerfReplies,
			OpenRate:   *row.PerfOpenRate,
			ClickRate:  *row.PerfClickRate,
			ReplyRate:  *row.PerfReplyRate,
		}
	}
	return t
}

const templateEnrichedColumns = templateColumns + `,
	tp.sends AS perf_sends, tp.opens AS perf_opens, tp.clicks AS perf_clicks, tp.replies AS perf_replies,
	tp.open_rate AS perf_open_rate, tp.click_rate AS perf_click_rate, tp.reply_rate AS perf_reply_rate`

// List возвращает страницу шаблонов с общим числом совпадений.
// Count-запрос и data-запрос используют один и тот же набор предикатов,
// поэтому total не расходится со страницей; COUNT(DISTINCT) защищает от
// раздувания числа за счёт JOIN.
func (r *TemplateRepository) List(ctx context.Context, workspaceID, viewerID uuid.UUID, p TemplateListParams) (*TemplateListResult, error) {
	where, args, next := buildTemplateFilter(workspaceID, viewerID, p).Render(1)

	countQuery := `
		SELECT COUNT(DISTINCT t.id)
		FROM templates t
		LEFT JOIN template_performance tp ON tp.template_id = t.id
		WHERE ` + where

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("template repository: count %w", err)
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
	offset := (page - 1) * limit

	query := fmt.Sprintf(`
		SELECT %s,
			EXISTS (SELECT 1 FROM template_favorites tf WHERE tf.template_id = t.id AND tf.user_id = $%d) AS row_is_favorite
		FROM templates t
		LEFT JOIN template_performance tp ON tp.template_id = t.id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		templateEnrichedColumns, next, where, templateSortExpr(p.SortBy, p.SortOrder), next+1, next+2)

	dataArgs := append(append([]interface{}{}, args...), viewerID, limit, offset)

	var rows []templateRow
	if err := r.db.SelectContext(ctx, &rows, query, dataArgs...); err != nil {
		return nil, fmt.Errorf("template repository: list %w", err)
	}

	items := make([]models.Template, len(rows))
	for i, row := range rows {
		items[i] = row.toTemplate()
	}

	return &TemplateListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetByID возвращает обогащённый шаблон в пределах воркспейса.
func (r *TemplateRepository) GetByID(ctx context.Context, workspaceID, viewerID, id uuid.UUID) (*models.Template, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			EXISTS (SELECT 1 FROM template_favorites tf WHERE tf.template_id = t.id AND tf.user_id = $1) AS row_is_favorite
		FROM templates t
		LEFT JOIN template_performance tp ON tp.template_id = t.id
		WHERE t.id = $2 AND t.workspace_id = $3`,
		templateEnrichedColumns)

	var row templateRow
	if err := r.db.GetContext(ctx, &row, query, viewerID, id, workspaceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("template repository: get by id %w", err)
	}

	t := row.toTemplate()
	return &t, nil
}

// Create сохраняет шаблон и заполняет сгенерированные поля.
func (r *TemplateRepository) Create(ctx context.Context, t *models.Template) error {
	query := `
		INSERT INTO templates (workspace_id, created_by, name, subject_line, body_html, body_text,
			category, persona, industry, company_size, sales_stage, tone, language, status,
			access_level, tags, custom_fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, use_count, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		t.WorkspaceID, t.CreatedBy, t.Name, t.SubjectLine, t.BodyHTML, t.BodyText,
		t.Category, t.Persona, t.Industry, t.CompanySize, t.SalesStage, t.Tone,
		t.Language, t.Status, t.AccessLevel, t.Tags, t.CustomFields,
	).Scan(&t.ID, &t.UseCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("template repository: create %w", err)
	}

	return nil
}

// TemplateUpdate — разреженное частичное обновление: изменяются только
// явно присутствующие (ненулевые) поля.
type TemplateUpdate struct {
	Name         *string
	SubjectLine  *string
	BodyHTML     *string
	BodyText     *string
	Category     *string
	Persona      *string
	Industry     *string
	CompanySize  *string
	SalesStage   *string
	Tone         *string
	Language     *string
	Status       *string
	AccessLevel  *string
	Tags         *[]string
	CustomFields types.JSONText
}

// buildTemplateSet превращает частичное обновление в список присваиваний.
func buildTemplateSet(upd TemplateUpdate) *common.SetClause {
	s := common.NewSetClause()
	if upd.Name != nil {
		s.Set("name", *upd.Name)
	}
	if upd.SubjectLine != nil {
		s.Set("subject_line", *upd.SubjectLine)
	}
	if upd.BodyHTML != nil {
		s.Set("body_html", *upd.BodyHTML)
	}
	if upd.BodyText != nil {
		s.Set("body_text", *upd.BodyText)
	}
	if upd.Category != nil {
		s.Set("category", *upd.Category)
	}
	if upd.Persona != nil {
		s.Set("persona", *upd.Persona)
	}
	if upd.Industry != nil {
		s.Set("industry", *upd.Industry)
	}
	if upd.CompanySize != nil {
		s.Set("company_size", *upd.CompanySize)
	}
	if upd.SalesStage != nil {
		s.Set("sales_stage", *upd.SalesStage)
	}
	if upd.Tone != nil {
		s.Set("tone", *upd.Tone)
	}
	if upd.Language != nil {
		s.Set("language", *upd.Language)
	}
	if upd.Status != nil {
		s.Set("status", *upd.Status)
	}
	if upd.AccessLevel != nil {
		s.Set("access_level", *upd.AccessLevel)
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
// Пустое обновление отклоняется до обращения к базе.
func (r *TemplateRepository) Update(ctx context.Context, workspaceID, id uuid.UUID, upd TemplateUpdate) (*models.Template, error) {
	set := buildTemplateSet(upd)
	if set.Empty() {
		return nil, common.ErrNoFieldsToUpdate
	}
	set.SetRaw("updated_at = NOW()")

	setSQL, args, next := set.Render(1)
	query := fmt.Sprintf(`
		UPDATE templates
		SET %s
		WHERE id = $%d AND workspace_id = $%d
		RETURNING %s`, setSQL, next, next+1, templateColumnsBare)
	args = append(args, id, workspaceID)

	var t models.Template
	if err := r.db.GetContext(ctx, &t, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("template repository: update %w", err)
	}

	return &t, nil
}

// Delete безусловно удаляет шаблон воркспейса.
func (r *TemplateRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("template repository: delete %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("template repository: delete rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

// RecordUse инкрементирует счётчик использований шаблона.
func (r *TemplateRepository) RecordUse(ctx context.Context, workspaceID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE templates SET use_count = use_count + 1, last_used_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("template repository: record use %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("template repository: record use rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

// AddFavorite добавляет шаблон в избранное пользователя.
// Повторное добавление — no-op за счёт подавления конфликта.
func (r *TemplateRepository) AddFavorite(ctx context.Context, userID, templateID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO template_favorites (user_id, template_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, template_id) DO NOTHING
	`, userID, templateID)
	if err != nil {
		return fmt.Errorf("template repository: add favorite %w", err)
	}
	return nil
}

// RemoveFavorite убирает шаблон из избранного.
// Удаление несуществующей пары — no-op, а не ошибка.
func (r *TemplateRepository) RemoveFavorite(ctx context.Context, userID, templateID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM template_favorites WHERE user_id = $1 AND template_id = $2
	`, userID, templateID)
	if err != nil {
		return fmt.Errorf("template repository: remove favorite %w", err)
	}
	return nil
}

// CreateCollection сохраняет новую подборку.
func (r *TemplateRepository) CreateCollection(ctx context.Context, c *models.TemplateCollection) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO template_collections (workspace_id, created_by, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, c.WorkspaceID, c.CreatedBy, c.Name, c.Description).Scan(&c.ID, &c.CreatedAt)
}

// ListCollections возвращает подборки воркспейса.
func (r *TemplateRepository) ListCollections(ctx context.Context, workspaceID uuid.UUID) ([]models.TemplateCollection, error) {
	var collections []models.TemplateCollection
	err := r.db.SelectContext(ctx, &collections, `
		SELECT * FROM template_collections WHERE workspace_id = $1 ORDER BY name
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("template repository: list collections %w", err)
	}
	return collections, nil
}

// GetCollectionByID возвращает подборку в пределах воркспейса.
func (r *TemplateRepository) GetCollectionByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.TemplateCollection, error) {
	var c models.TemplateCollection
	err := r.db.GetContext(ctx, &c, `
		SELECT * FROM template_collections WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCollectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("template repository: get collection %w", err)
	}
	return &c, nil
}

// DeleteCollection удаляет подборку вместе с членствами (каскад в схеме).
func (r *TemplateRepository) DeleteCollection(ctx context.Context, workspaceID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM template_collections WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("template repository: delete collection %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("template repository: delete collection rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrCollectionNotFound
	}

	return nil
}

// AddToCollection добавляет шаблон в подборку, повторное добавление — no-op.
func (r *TemplateRepository) AddToCollection(ctx context.Context, collectionID, templateID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO template_collection_items (collection_id, template_id)
		VALUES ($1, $2)
		ON CONFLICT (collection_id, template_id) DO NOTHING
	`, collectionID, templateID)
	if err != nil {
		return fmt.Errorf("template repository: add to collection %w", err)
	}
	return nil
}

// RemoveFromCollection убирает шаблон из подборки, отсутствие пары — no-op.
func (r *TemplateRepository) RemoveFromCollection(ctx context.Context, collectionID, templateID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM template_collection_items WHERE collection_id = $1 AND template_id = $2
	`, collectionID, templateID)
	if err != nil {
		return fmt.Errorf("template repository: remove from collection %w", err)
	}
	return nil
}

// GetWorkspaceTemplateStats возвращает сводку по шаблонам воркспейса.
func (r *TemplateRepository) GetWorkspaceTemplateStats(ctx context.Context, workspaceID uuid.UUID) (map[string]int, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE t.status = 'active') AS active,
			COUNT(*) FILTER (WHERE t.status = 'draft') AS draft,
			COUNT(*) FILTER (WHERE t.status = 'archived') AS archived,
			COALESCE(SUM(t.use_count), 0) AS total_uses,
			COALESCE(SUM(tp.sends), 0) AS total_sends,
			COALESCE(SUM(tp.opens), 0) AS total_opens,
			COALESCE(SUM(tp.replies), 0) AS total_replies
		FROM templates t
		LEFT JOIN template_performance tp ON tp.template_id = t.id
		WHERE t.workspace_id = $1
	`

	var result struct {
		Total        int `db:"total"`
		Active       int `db:"active"`
		Draft        int `db:"draft"`
		Archived     int `db:"archived"`
		TotalUses    int `db:"total_uses"`
		TotalSends   int `db:"total_sends"`
		TotalOpens   int `db:"total_opens"`
		TotalReplies int `db:"total_replies"`
	}

	if err := r.db.GetContext(ctx, &result, query, workspaceID); err != nil {
		return nil, fmt.Errorf("template repository: workspace stats %w", err)
	}

	return map[string]int{
		"total":         result.Total,
		"active":        result.Active,
		"draft":         result.Draft,
		"archived":      result.Archived,
		"total_uses":    result.TotalUses,
		"total_sends":   result.TotalSends,
		"total_opens":   result.TotalOpens,
		"total_replies": result.TotalReplies,
	}, nil
}

// UpsertPerformance создаёт или обновляет агрегаты рассылки шаблона.
// Доли пересчитываются от количества отправок прямо в запросе.
func (r *TemplateRepository) UpsertPerformance(ctx context.Context, p *models.TemplatePerformance) error {
	query := `
		INSERT INTO template_performance (template_id, sends, opens, clicks, replies, open_rate, click_rate, reply_rate, updated_at)
		VALUES ($1, $2, $3, $4, $5,
			CASE WHEN $2 > 0 THEN $3::float / $2 ELSE 0 END,
			CASE WHEN $2 > 0 THEN $4::float / $2 ELSE 0 END,
			CASE WHEN $2 > 0 THEN $5::float / $2 ELSE 0 END,
			NOW())
		ON CONFLICT (template_id) DO UPDATE
		SET sends = EXCLUDED.sends,
			opens = EXCLUDED.opens,
			clicks = EXCLUDED.clicks,
			replies = EXCLUDED.replies,
			open_rate = EXCLUDED.open_rate,
			click_rate = EXCLUDED.click_rate,
			reply_rate = EXCLUDED.reply_rate,
			updated_at = NOW()
		RETURNING open_rate, click_rate, reply_rate, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		p.TemplateID, p.Sends, p.Opens, p.Clicks, p.Replies,
	).Scan(&p.OpenRate, &p.ClickRate, &p.ReplyRate, &p.UpdatedAt); err != nil {
		return fmt.Errorf("template repository: upsert performance %w", err)
	}

	return nil
}
