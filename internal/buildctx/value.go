package buildctx

import (
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind discriminates the closed set of Context values.
type Kind int

const (
	KindText Kind = iota
	KindList
	KindTable
	KindTableList
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindTable:
		return "table"
	case KindTableList:
		return "table-list"
	default:
		return "text"
	}
}

// Value is one of Text, List of text, Table, or List of tables.
type Value struct {
	kind   Kind
	text   string
	list   []string
	table  *Table
	tables []*Table
}

func Text(s string) Value { return Value{kind: KindText, text: s} }

func List(items ...string) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

func TableValue(t *Table) Value { return Value{kind: KindTable, table: t} }

// Tables wraps a list of tables; a nil or empty list is still a table list.
func Tables(ts ...*Table) Value {
	return Value{kind: KindTableList, tables: slices.Clone(ts)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsText() (string, bool) { return v.text, v.kind == KindText }

func (v Value) AsList() ([]string, bool) { return v.list, v.kind == KindList }

func (v Value) AsTable() (*Table, bool) { return v.table, v.kind == KindTable && v.table != nil }

func (v Value) AsTables() ([]*Table, bool) { return v.tables, v.kind == KindTableList }

// Clone returns a deep copy.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		return List(v.list...)
	case KindTable:
		return TableValue(v.table.Clone())
	case KindTableList:
		ts := make([]*Table, len(v.tables))
		for i, t := range v.tables {
			ts[i] = t.Clone()
		}
		return Value{kind: KindTableList, tables: ts}
	default:
		return v
	}
}

// Equal compares values structurally; table key order is significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindList:
		return slices.Equal(v.list, o.list)
	case KindTable:
		return v.table.Equal(o.table)
	case KindTableList:
		return slices.EqualFunc(v.tables, o.tables, (*Table).Equal)
	default:
		return v.text == o.text
	}
}

// Table is an insertion-ordered string-keyed map of values.
type Table struct {
	m *orderedmap.OrderedMap[string, Value]
}

func NewTable() *Table {
	return &Table{m: orderedmap.New[string, Value]()}
}

// Set inserts or replaces key. Replacing keeps the original position.
func (t *Table) Set(key string, v Value) *Table {
	t.m.Set(key, v)
	return t
}

func (t *Table) SetText(key, s string) *Table { return t.Set(key, Text(s)) }

func (t *Table) Get(key string) (Value, bool) {
	if t == nil {
		return Value{}, false
	}
	return t.m.Get(key)
}

// Text returns key's text value; false when absent or not text.
func (t *Table) Text(key string) (string, bool) {
	v, ok := t.Get(key)
	if !ok {
		return "", false
	}
	return v.AsText()
}

func (t *Table) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

func (t *Table) Delete(key string) {
	t.m.Delete(key)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.m.Len()
}

// Keys returns keys in insertion order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every entry in order until fn returns false.
func (t *Table) Each(fn func(key string, v Value) bool) {
	if t == nil {
		return
	}
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := NewTable()
	t.Each(func(k string, v Value) bool {
		c.m.Set(k, v.Clone())
		return true
	})
	return c
}

func (t *Table) Equal(o *Table) bool {
	if t.Len() != o.Len() {
		return false
	}
	if t.Len() == 0 {
		return true
	}
	equal := true
	a, b := t.m.Oldest(), o.m.Oldest()
	for ; a != nil && b != nil; a, b = a.Next(), b.Next() {
		if a.Key != b.Key || !a.Value.Equal(b.Value) {
			equal = false
			break
		}
	}
	return equal
}
