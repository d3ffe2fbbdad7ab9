// Package directory resolves user names to security identifiers.
//
// A Finder looks up a principal by name, SID or distinguished name and
// returns its SID together with the SIDs of every group it belongs to.
// Role membership is granted to SIDs, so group SIDs matter as much as the
// user's own.
package directory

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no directory entry matches.
var ErrNotFound = errors.New("directory: principal not found")

// IdentityType selects the attribute a lookup matches on.
type IdentityType int

const (
	IdentityName IdentityType = iota
	IdentitySID
	IdentityDistinguishedName
)

func (t IdentityType) String() string {
	switch t {
	case IdentityName:
		return "name"
	case IdentitySID:
		return "sid"
	case IdentityDistinguishedName:
		return "dn"
	default:
		return fmt.Sprintf("IdentityType(%d)", int(t))
	}
}

// Entry is a resolved directory principal.
type Entry struct {
	Name              string              `json:"name"`
	SID               string              `json:"sid"`
	GroupSIDs         []string            `json:"group_sids,omitempty"`
	DistinguishedName string              `json:"distinguished_name,omitempty"`
	Attributes        map[string][]string `json:"attributes,omitempty"`
}

// Finder looks up directory principals.
type Finder interface {
	// FindPrincipalByIdentity returns the entry whose attribute selected by
	// typ equals value, or an error wrapping ErrNotFound.
	FindPrincipalByIdentity(ctx context.Context, typ IdentityType, value string) (*Entry, error)
}
