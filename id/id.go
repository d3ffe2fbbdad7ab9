// Package id defines TypeID-based identifiers for azguard policy entities.
//
// Applications, scopes, operations, tasks, roles, role assignments and
// check log entries share one ID struct. The prefix names the entity kind;
// the suffix is a UUIDv7, so IDs sort by creation time.
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Entity prefixes.
const (
	PrefixApplication Prefix = "azapp"
	PrefixScope       Prefix = "azscope"
	PrefixOperation   Prefix = "azop"
	PrefixTask        Prefix = "aztask"
	PrefixRole        Prefix = "azrole"
	PrefixAssignment  Prefix = "azasgn"
	PrefixCheckLog    Prefix = "azchk"
)

// ID identifies a stored policy entity. The zero value is Nil.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "azrole_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// MustParseWithPrefix is like ParseWithPrefix but panics on error.
func MustParseWithPrefix(s string, expected Prefix) ID {
	parsed, err := ParseWithPrefix(s, expected)
	if err != nil {
		panic(fmt.Sprintf("id: must parse with prefix %q: %v", expected, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Entity aliases
// ──────────────────────────────────────────────────

// ApplicationID identifies a policy application (prefix: "azapp").
type ApplicationID = ID

// ScopeID identifies a scope inside an application (prefix: "azscope").
type ScopeID = ID

// OperationID identifies a stored operation row (prefix: "azop").
// It is distinct from the numeric operation id used in access checks.
type OperationID = ID

// TaskID identifies a task or role definition (prefix: "aztask").
type TaskID = ID

// RoleID identifies a role (prefix: "azrole").
type RoleID = ID

// AssignmentID identifies a role membership (prefix: "azasgn").
type AssignmentID = ID

// CheckLogID identifies an access check log entry (prefix: "azchk").
type CheckLogID = ID

// AnyID accepts any valid prefix.
type AnyID = ID

// ──────────────────────────────────────────────────
// Constructors
// ──────────────────────────────────────────────────

func NewApplicationID() ID { return New(PrefixApplication) }
func NewScopeID() ID       { return New(PrefixScope) }
func NewOperationID() ID   { return New(PrefixOperation) }
func NewTaskID() ID        { return New(PrefixTask) }
func NewRoleID() ID        { return New(PrefixRole) }
func NewAssignmentID() ID  { return New(PrefixAssignment) }
func NewCheckLogID() ID    { return New(PrefixCheckLog) }

// ──────────────────────────────────────────────────
// Parsers
// ──────────────────────────────────────────────────

// ParseApplicationID parses s and requires the "azapp" prefix.
func ParseApplicationID(s string) (ID, error) { return ParseWithPrefix(s, PrefixApplication) }

// ParseScopeID parses s and requires the "azscope" prefix.
func ParseScopeID(s string) (ID, error) { return ParseWithPrefix(s, PrefixScope) }

// ParseOperationID parses s and requires the "azop" prefix.
func ParseOperationID(s string) (ID, error) { return ParseWithPrefix(s, PrefixOperation) }

// ParseTaskID parses s and requires the "aztask" prefix.
func ParseTaskID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTask) }

// ParseRoleID parses s and requires the "azrole" prefix.
func ParseRoleID(s string) (ID, error) { return ParseWithPrefix(s, PrefixRole) }

// ParseAssignmentID parses s and requires the "azasgn" prefix.
func ParseAssignmentID(s string) (ID, error) { return ParseWithPrefix(s, PrefixAssignment) }

// ParseCheckLogID parses s and requires the "azchk" prefix.
func ParseCheckLogID(s string) (ID, error) { return ParseWithPrefix(s, PrefixCheckLog) }

// ParseAny parses s without checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns "prefix_suffix", or "" for Nil.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer. Nil is stored as NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
