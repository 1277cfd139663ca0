// Package criteria holds the catalog of compliance rules a document can be
// reviewed against and builds the per-run selection from it.
package criteria

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownCriterion = errors.New("unknown criterion")

type Criterion struct {
	ID      string `json:"id" yaml:"id"`
	Text    string `json:"text" yaml:"text"`
	Default bool   `json:"default" yaml:"default"`
}

// Catalog is an ordered list of criteria. Order only affects numbering in
// the rendered instructions.
type Catalog struct {
	items []Criterion
	byID  map[string]int
}

func NewCatalog(items []Criterion) (*Catalog, error) {
	c := &Catalog{
		items: make([]Criterion, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("criterion %q has no id", item.Text)
		}
		if _, dup := c.byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate criterion id %q", item.ID)
		}
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c, nil
}

type catalogFile struct {
	Criteria []Criterion `yaml:"criteria"`
}

// LoadFile reads a catalog from a YAML file of the form
//
//	criteria:
//	  - id: datetime-format
//	    text: Datetime Format MUST follow dd-mmm-yyyy
//	    default: true
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read criteria file: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse criteria file %s: %w", path, err)
	}
	if len(f.Criteria) == 0 {
		return nil, fmt.Errorf("criteria file %s lists no criteria", path)
	}
	return NewCatalog(f.Criteria)
}

// All returns a copy of every catalog entry in order.
func (c *Catalog) All() []Criterion {
	out := make([]Criterion, len(c.items))
	copy(out, c.items)
	return out
}

// Defaults returns the texts of the default-enabled entries in catalog order.
func (c *Catalog) Defaults() []string {
	var out []string
	for _, item := range c.items {
		if item.Default {
			out = append(out, item.Text)
		}
	}
	return out
}

// Select builds the criteria for one run. A nil ids slice means "the
// defaults"; an empty non-nil slice selects nothing from the catalog. A
// non-blank custom check is appended verbatim as the last criterion.
func (c *Catalog) Select(ids []string, custom string) ([]string, error) {
	var selected []string
	if ids == nil {
		selected = c.Defaults()
	} else {
		selected = make([]string, 0, len(ids)+1)
		for _, id := range ids {
			idx, ok := c.byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownCriterion, id)
			}
			selected = append(selected, c.items[idx].Text)
		}
	}

	if strings.TrimSpace(custom) != "" {
		selected = append(selected, custom)
	}
	return selected, nil
}
