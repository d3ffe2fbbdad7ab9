package directory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/text/cases"
)

var _ Finder = (*Memory)(nil)

// Memory is an in-process directory. Name and DN lookups fold case, the
// way directory servers compare those attributes; SIDs match exactly.
type Memory struct {
	mu     sync.RWMutex
	byName map[string]*Entry
	bySID  map[string]*Entry
	byDN   map[string]*Entry
}

// NewMemory creates a directory holding the given entries.
func NewMemory(entries ...*Entry) *Memory {
	m := &Memory{
		byName: make(map[string]*Entry),
		bySID:  make(map[string]*Entry),
		byDN:   make(map[string]*Entry),
	}
	for _, e := range entries {
		m.Add(e)
	}
	return m
}

// Add inserts or replaces an entry.
func (m *Memory) Add(e *Entry) {
	c := copyEntry(e)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byName[foldKey(c.Name)] = c
	if c.SID != "" {
		m.bySID[c.SID] = c
	}
	if c.DistinguishedName != "" {
		m.byDN[foldKey(c.DistinguishedName)] = c
	}
}

// FindPrincipalByIdentity implements Finder.
func (m *Memory) FindPrincipalByIdentity(_ context.Context, typ IdentityType, value string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var e *Entry
	switch typ {
	case IdentityName:
		e = m.byName[foldKey(value)]
	case IdentitySID:
		e = m.bySID[value]
	case IdentityDistinguishedName:
		e = m.byDN[foldKey(value)]
	default:
		return nil, fmt.Errorf("directory: unsupported identity type %s", typ)
	}
	if e == nil {
		return nil, fmt.Errorf("%s %q: %w", typ, value, ErrNotFound)
	}
	return copyEntry(e), nil
}

func copyEntry(e *Entry) *Entry {
	c := *e
	c.GroupSIDs = slices.Clone(e.GroupSIDs)
	if e.Attributes != nil {
		c.Attributes = make(map[string][]string, len(e.Attributes))
		for k, v := range e.Attributes {
			c.Attributes[k] = slices.Clone(v)
		}
	}
	return &c
}

// foldKey returns the case-folded form of s. A Caser is stateful, so each
// call builds its own.
func foldKey(s string) string {
	return cases.Fold().String(s)
}
