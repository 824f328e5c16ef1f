package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Render_NumbersFragmentsInOrder(t *testing.T) {
	f := NewFilter()
	f.Where("t.workspace_id = ?", "ws-1")
	f.Where("t.status = ?", "active")
	f.Where("t.name ILIKE ?", "%intro%")

	sql, args, next := f.Render(1)

	assert.Equal(t, "t.workspace_id = $1 AND t.status = $2 AND t.name ILIKE $3", sql)
	assert.Equal(t, []interface{}{"ws-1", "active", "%intro%"}, args)
	assert.Equal(t, 4, next)
}

func TestFilter_Render_MultiplePlaceholdersInOneFragment(t *testing.T) {
	f := NewFilter()
	f.Where("t.workspace_id = ?", "ws-1")
	f.Where("(tp.reply_rate >= ? AND tp.reply_rate <= ?)", 0.1, 0.5)

	sql, args, next := f.Render(1)

	assert.Equal(t, "t.workspace_id = $1 AND (tp.reply_rate >= $2 AND tp.reply_rate <= $3)", sql)
	assert.Equal(t, []interface{}{"ws-1", 0.1, 0.5}, args)
	assert.Equal(t, 4, next)
}

func TestFilter_Render_StartOffset(t *testing.T) {
	f := NewFilter()
	f.Where("c.status = ?", "active")

	sql, args, next := f.Render(5)

	assert.Equal(t, "c.status = $5", sql)
	assert.Equal(t, []interface{}{"active"}, args)
	assert.Equal(t, 6, next)
}

func TestFilter_Where_PanicsOnPlaceholderMismatch(t *testing.T) {
	f := NewFilter()
	assert.Panics(t, func() {
		f.Where("t.status = ?", "a", "b")
	})
	assert.Panics(t, func() {
		f.Where("t.status = ? AND t.name = ?", "a")
	})
}

func TestFilter_Render_Empty(t *testing.T) {
	f := NewFilter()
	sql, args, next := f.Render(1)

	assert.Equal(t, "", sql)
	assert.Empty(t, args)
	assert.Equal(t, 1, next)
}

func TestSetClause_Render(t *testing.T) {
	s := NewSetClause()
	s.Set("name", "Intro")
	s.Set("status", "active")
	s.SetRaw("updated_at = NOW()")

	sql, args, next := s.Render(1)

	assert.Equal(t, "name = $1, status = $2, updated_at = NOW()", sql)
	assert.Equal(t, []interface{}{"Intro", "active"}, args)
	assert.Equal(t, 3, next)
}

func TestSetClause_Empty(t *testing.T) {
	s := NewSetClause()
	assert.True(t, s.Empty())

	// Только SetRaw без значений — всё ещё пустое обновление.
	s.SetRaw("updated_at = NOW()")
	assert.True(t, s.Empty())

	s.Set("name", "Intro")
	assert.False(t, s.Empty())
}
