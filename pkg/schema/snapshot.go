// Package schema holds the catalog snapshot that query generation runs
// against. A Snapshot is loaded once at startup and never mutated, so it can
// be shared by concurrent requests without locking.
package schema

import (
	"fmt"
	"os"
	"strings"

	"github.com/jinzhu/inflection"
	"gopkg.in/yaml.v3"
)

// Column describes one column of a catalog table.
type Column struct {
	Name     string `yaml:"name"`
	DataType string `yaml:"data_type"`
}

// ForeignKey describes a join edge between two catalog tables.
type ForeignKey struct {
	Column           string `yaml:"column"`
	ReferencedTable  string `yaml:"referenced_table"`
	ReferencedColumn string `yaml:"referenced_column"`
}

// Table describes one catalog table.
type Table struct {
	Name        string       `yaml:"name"`
	Columns     []Column     `yaml:"columns"`
	ForeignKeys []ForeignKey `yaml:"foreign_keys,omitempty"`
}

// HasColumn reports whether the table has a column with the given name.
// Comparison is case-insensitive since generated SQL rarely agrees with the
// catalog on identifier case.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// ColumnNames returns the table's column names in catalog order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Snapshot is a read-only view of the catalog. Construct via Load or
// NewSnapshot; do not modify after construction.
type Snapshot struct {
	Tables    []Table `yaml:"tables"`
	MainTable string  `yaml:"main_table"`

	byName map[string]*Table
}

// NewSnapshot builds a snapshot from already-loaded metadata and indexes it.
func NewSnapshot(tables []Table, mainTable string) (*Snapshot, error) {
	s := &Snapshot{Tables: tables, MainTable: mainTable}
	if err := s.index(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads a catalog snapshot from a YAML file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema snapshot: %w", err)
	}

	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema snapshot: %w", err)
	}
	if err := s.index(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Snapshot) index() error {
	if len(s.Tables) == 0 {
		return fmt.Errorf("schema snapshot has no tables")
	}

	s.byName = make(map[string]*Table, len(s.Tables))
	for i := range s.Tables {
		s.byName[strings.ToLower(s.Tables[i].Name)] = &s.Tables[i]
	}

	if s.MainTable == "" {
		s.MainTable = s.Tables[0].Name
	}
	if _, ok := s.byName[strings.ToLower(s.MainTable)]; !ok {
		return fmt.Errorf("main table %q not present in snapshot", s.MainTable)
	}
	return nil
}

// Table looks up a table by name, case-insensitively.
func (s *Snapshot) Table(name string) (*Table, bool) {
	t, ok := s.byName[strings.ToLower(name)]
	return t, ok
}

// TableNames returns all table names in catalog order.
func (s *Snapshot) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// JoinColumn returns the conventional join key for a table: the singularized
// table name with an _id suffix ("instruments" -> "instrument_id"). Callers
// must still verify the column exists on both sides before using it.
func JoinColumn(tableName string) string {
	return strings.ToLower(inflection.Singular(tableName)) + "_id"
}
