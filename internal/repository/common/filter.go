package common

import (
	"strconv"
	"strings"
)

// Filter накапливает булевы фрагменты WHERE, каждый вместе со своими
// связанными значениями. Плейсхолдеры внутри фрагмента записываются как "?"
// и превращаются в позиционные $N только при рендере, поэтому порядок
// добавления фрагментов не требует ручного счётчика аргументов.
type Filter struct {
	conds []clause
}

type clause struct {
	fragment string
	args     []interface{}
}

// NewFilter создаёт пустой фильтр.
func NewFilter() *Filter {
	return &Filter{}
}

// Where добавляет фрагмент условия. Число "?" во фрагменте должно совпадать
// с числом аргументов — несовпадение это ошибка программиста, а не данных.
func (f *Filter) Where(fragment string, args ...interface{}) *Filter {
	if strings.Count(fragment, "?") != len(args) {
		panic("common: число плейсхолдеров не совпадает с числом аргументов: " + fragment)
	}
	f.conds = append(f.conds, clause{fragment: fragment, args: args})
	return f
}

// Len возвращает число накопленных условий.
func (f *Filter) Len() int {
	return len(f.conds)
}

// Render соединяет фрагменты через AND и заменяет каждый "?" на очередной
// позиционный плейсхолдер, начиная с start. Возвращает SQL, значения в том же
// порядке и индекс следующего свободного плейсхолдера.
func (f *Filter) Render(start int) (string, []interface{}, int) {
	parts := make([]string, 0, len(f.conds))
	args := make([]interface{}, 0, len(f.conds))
	next := start
	for _, c := range f.conds {
		sql, n := expand(c.fragment, next)
		parts = append(parts, sql)
		args = append(args, c.args...)
		next = n
	}
	return strings.Join(parts, " AND "), args, next
}

// SetClause накапливает присваивания для UPDATE ... SET по тем же правилам,
// что и Filter: позиционные номера появляются только при рендере.
type SetClause struct {
	assigns []clause
}

// NewSetClause создаёт пустой список присваиваний.
func NewSetClause() *SetClause {
	return &SetClause{}
}

// Set добавляет присваивание колонки связанному значению.
func (s *SetClause) Set(column string, value interface{}) *SetClause {
	s.assigns = append(s.assigns, clause{fragment: column + " = ?", args: []interface{}{value}})
	return s
}

// SetRaw добавляет присваивание без связанного значения, например "updated_at = NOW()".
func (s *SetClause) SetRaw(fragment string) *SetClause {
	s.assigns = append(s.assigns, clause{fragment: fragment})
	return s
}

// Empty сообщает, что ни одного присваивания со значением не добавлено.
// Фрагменты из SetRaw не считаются: в одиночку они означают пустое обновление.
func (s *SetClause) Empty() bool {
	for _, a := range s.assigns {
		if len(a.args) > 0 {
			return false
		}
	}
	return true
}

// Render соединяет присваивания через запятую, заменяя "?" на $N начиная со start.
func (s *SetClause) Render(start int) (string, []interface{}, int) {
	parts := make([]string, 0, len(s.assigns))
	args := make([]interface{}, 0, len(s.assigns))
	next := start
	for _, a := range s.assigns {
		sql, n := expand(a.fragment, next)
		parts = append(parts, sql)
		args = append(args, a.args...)
		next = n
	}
	return strings.Join(parts, ", "), args, next
}

// expand заменяет каждый "?" во фрагменте на $N, нумеруя со start.
func expand(fragment string, start int) (string, int) {
	var b strings.Builder
	n := start
	for _, r := range fragment {
		if r == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), n
}
