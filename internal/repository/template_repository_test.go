package repository

import (
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/reachbase/reachbase-backend/internal/repository/common"
)

func TestBuildTemplateFilter_WorkspaceAlwaysFirst(t *testing.T) {
	workspaceID := uuid.New()
	viewerID := uuid.New()

	sql, args, _ := buildTemplateFilter(workspaceID, viewerID, TemplateListParams{}).Render(1)

	assert.Equal(t, "t.workspace_id = $1", sql)
	assert.Equal(t, []interface{}{workspaceID}, args)
}

func TestBuildTemplateFilter_SearchBindsWrappedValue(t *testing.T) {
	workspaceID := uuid.New()

	sql, args, next := buildTemplateFilter(workspaceID, uuid.New(), TemplateListParams{
		Search: "enterprise",
	}).Render(1)

	assert.Equal(t, "t.workspace_id = $1 AND (t.name ILIKE $2 OR t.subject_line ILIKE $3 OR t.body_html ILIKE $4)", sql)
	assert.Equal(t, []interface{}{workspaceID, "%enterprise%", "%enterprise%", "%enterprise%"}, args)
	assert.Equal(t, 5, next)
}

func TestBuildTemplateFilter_SearchEscapesWildcards(t *testing.T) {
	// Значение с wildcard-символами не должно менять структуру шаблона поиска.
	_, args, _ := buildTemplateFilter(uuid.New(), uuid.New(), TemplateListParams{
		Search: "100%_done",
	}).Render(1)

	assert.Equal(t, `%100\%\_done%`, args[1])
}

func TestBuildTemplateFilter_TagsUseOverlap(t *testing.T) {
	sql, args, _ := buildTemplateFilter(uuid.New(), uuid.New(), TemplateListParams{
		Tags: []string{"a", "b"},
	}).Render(1)

	assert.Contains(t, sql, "t.tags && $2")
	assert.Equal(t, pq.Array([]string{"a", "b"}), args[1])
}

func TestBuildTemplateFilter_ReplyRateBoundsAreIndependent(t *testing.T) {
	low := 0.25

	sql, args, _ := buildTemplateFilter(uuid.New(), uuid.New(), TemplateListParams{
		ReplyRateMin: &low,
	}).Render(1)

	assert.Contains(t, sql, "tp.reply_rate >= $2")
	assert.NotContains(t, sql, "reply_rate <=")
	assert.Equal(t, 0.25, args[1])

	high := 0.75
	sql, args, _ = buildTemplateFilter(uuid.New(), uuid.New(), TemplateListParams{
		ReplyRateMax: &high,
	}).Render(1)

	assert.Contains(t, sql, "tp.reply_rate <= $2")
	assert.NotContains(t, sql, "reply_rate >=")
	assert.Equal(t, 0.75, args[1])
}

func TestBuildTemplateFilter_FavoriteOnlyBindsViewer(t *testing.T) {
	viewerID := uuid.New()

	sql, args, _ := buildTemplateFilter(uuid.New(), viewerID, TemplateListParams{
		FavoriteOnly: true,
	}).Render(1)

	assert.Contains(t, sql, "EXISTS (SELECT 1 FROM template_favorites tf WHERE tf.template_id = t.id AND tf.user_id = $2)")
	assert.Equal(t, viewerID, args[1])
}

func TestBuildTemplateFilter_FullSetKeepsIndexAlignment(t *testing.T) {
	low, high := 0.1, 0.9
	collectionID := uuid.New()

	f := buildTemplateFilter(uuid.New(), uuid.New(), TemplateListParams{
		Search:       "intro",
		Category:     "cold-outreach",
		Persona:      "cto",
		Industry:     "fintech",
		CompanySize:  "51-200",
		SalesStage:   "prospecting",
		Tone:         "casual",
		Status:       "active",
		AccessLevel:  "workspace",
		Tags:         []string{"saas"},
		ReplyRateMin: &low,
		ReplyRateMax: &high,
		FavoriteOnly: true,
		CollectionID: &collectionID,
	})

	sql, args, next := f.Render(1)

	// Каждый плейсхолдер получает ровно один аргумент, нумерация сплошная.
	assert.Equal(t, len(args)+1, next)
	for i := 1; i < next; i++ {
		assert.Contains(t, sql, "$"+strconv.Itoa(i))
	}
}

func TestTemplateSortExpr_Allowlist(t *testing.T) {
	assert.Equal(t, "t.name ASC NULLS LAST, t.id", templateSortExpr("name", "asc"))
	assert.Equal(t, "tp.reply_rate DESC NULLS LAST, t.id", templateSortExpr("reply_rate", "desc"))
	assert.Equal(t, "t.use_count DESC NULLS LAST, t.id", templateSortExpr("use_count", ""))
}

func TestTemplateSortExpr_UnknownKeyFallsBack(t *testing.T) {
	// Клиентский ввод никогда не попадает в ORDER BY напрямую.
	assert.Equal(t, "t.created_at DESC NULLS LAST, t.id", templateSortExpr("id; DROP TABLE templates", "desc"))
	assert.Equal(t, "t.created_at DESC NULLS LAST, t.id", templateSortExpr("", ""))
}

func TestTemplateSortExpr_BadDirectionDefaultsToDesc(t *testing.T) {
	assert.Equal(t, "t.name DESC NULLS LAST, t.id", templateSortExpr("name", "sideways"))
	assert.Equal(t, "t.name ASC NULLS LAST, t.id", templateSortExpr("name", "ASC"))
}

func TestBuildTemplateSet_Sparse(t *testing.T) {
	name := "Intro"
	status := "active"

	s := buildTemplateSet(TemplateUpdate{Name: &name, Status: &status})
	sql, args, _ := s.Render(1)

	assert.Equal(t, "name = $1, status = $2", sql)
	assert.Equal(t, []interface{}{"Intro", "active"}, args)
}

func TestBuildTemplateSet_EmptyUpdate(t *testing.T) {
	s := buildTemplateSet(TemplateUpdate{})
	assert.True(t, s.Empty())
}

func TestBuildTemplateSet_TagsBoundAsArray(t *testing.T) {
	tags := []string{"a", "b"}
	s := buildTemplateSet(TemplateUpdate{Tags: &tags})

	sql, args, _ := s.Render(1)
	assert.Equal(t, "tags = $1", sql)
	assert.Equal(t, pq.Array(tags), args[0])
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%enterprise%", likePattern("enterprise"))
	assert.Equal(t, `%50\%%`, likePattern("50%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\temp%`, likePattern(`c:\temp`))
}

func TestErrNoFieldsToUpdateSentinel(t *testing.T) {
	assert.EqualError(t, common.ErrNoFieldsToUpdate, "no fields to update")
}
