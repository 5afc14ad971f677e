package catalog

import (
	"sync/atomic"
)

// Catalog is an immutable snapshot of the dataset.
type Catalog struct {
	records []Record
	display []Record
	byName  map[string]int
}

// New builds a snapshot. display is the subset shown on the index page.
// When two rows share a name the first one wins.
func New(records, display []Record) *Catalog {
	c := &Catalog{
		records: append([]Record(nil), records...),
		display: append([]Record(nil), display...),
		byName:  make(map[string]int, len(records)),
	}
	for i, record := range c.records {
		key := NameKey(record.Name)
		if key == "" {
			continue
		}
		if _, exists := c.byName[key]; !exists {
			c.byName[key] = i
		}
	}
	return c
}

// Lookup finds a record by name, ignoring case and Unicode width differences.
func (c *Catalog) Lookup(name string) (Record, bool) {
	if c == nil {
		return Record{}, false
	}
	idx, ok := c.byName[NameKey(name)]
	if !ok {
		return Record{}, false
	}
	return c.records[idx], true
}

// All returns a copy of every record in the snapshot.
func (c *Catalog) All() []Record {
	if c == nil {
		return nil
	}
	return append([]Record(nil), c.records...)
}

// Display returns a copy of the display subset.
func (c *Catalog) Display() []Record {
	if c == nil {
		return nil
	}
	return append([]Record(nil), c.display...)
}

// Len 记录数
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Store holds the current snapshot; readers never block writers.
type Store struct {
	current atomic.Pointer[Catalog]
}

// NewStore 创建快照存储
func NewStore(initial *Catalog) *Store {
	s := &Store{}
	if initial == nil {
		initial = New(nil, nil)
	}
	s.current.Store(initial)
	return s
}

// Current returns the latest snapshot.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Swap replaces the snapshot.
func (s *Store) Swap(c *Catalog) {
	if c == nil {
		return
	}
	s.current.Store(c)
}
