// Package policyfile reads policy documents that describe a complete
// application: its scopes, operations, tasks, roles and role members, plus
// an optional list of directory principals. A document can seed any
// store.Store and a directory.Memory, which is how tests, demos and the
// azguard command evaluate policy without a database or directory server.
//
// Documents are YAML, TOML or JSON:
//
//	application:
//	  name: Billing
//	operations:
//	  - {name: ViewInvoice, id: 1}
//	tasks:
//	  - {name: Review, operations: [ViewInvoice], biz_rule: "IsPrivateIp"}
//	roles:
//	  - {name: Reviewer, tasks: [Review], members: [alice]}
//	principals:
//	  - {name: alice, sid: S-1-5-21-1000-1}
package policyfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ErrInvalidDocument is returned when a document fails validation.
var ErrInvalidDocument = errors.New("policyfile: invalid document")

// Document is a complete policy for one application.
type Document struct {
	Application Application `json:"application" yaml:"application" toml:"application"`
	Scopes      []Scope     `json:"scopes,omitempty" yaml:"scopes" toml:"scopes"`
	Operations  []Operation `json:"operations,omitempty" yaml:"operations" toml:"operations"`
	Tasks       []Task      `json:"tasks,omitempty" yaml:"tasks" toml:"tasks"`
	Roles       []Role      `json:"roles,omitempty" yaml:"roles" toml:"roles"`
	Principals  []Principal `json:"principals,omitempty" yaml:"principals" toml:"principals"`
}

// Application names the policy container.
type Application struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description,omitempty" yaml:"description" toml:"description"`
	Version     string `json:"version,omitempty" yaml:"version" toml:"version"`
}

// Scope is a named partition of the application.
type Scope struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description,omitempty" yaml:"description" toml:"description"`
}

// Operation is a permission unit with its numeric id.
type Operation struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	ID          int    `json:"id" yaml:"id" toml:"id"`
	Description string `json:"description,omitempty" yaml:"description" toml:"description"`
}

// Task bundles operations and nested tasks. Scope "" places it at the
// application level.
type Task struct {
	Name           string   `json:"name" yaml:"name" toml:"name"`
	Scope          string   `json:"scope,omitempty" yaml:"scope" toml:"scope"`
	Description    string   `json:"description,omitempty" yaml:"description" toml:"description"`
	BizRule        string   `json:"biz_rule,omitempty" yaml:"biz_rule" toml:"biz_rule"`
	RoleDefinition bool     `json:"role_definition,omitempty" yaml:"role_definition" toml:"role_definition"`
	Operations     []string `json:"operations,omitempty" yaml:"operations" toml:"operations"`
	Tasks          []string `json:"tasks,omitempty" yaml:"tasks" toml:"tasks"`
}

// Role grants tasks and operations to members. Members are principal
// names declared in the document or literal SIDs.
type Role struct {
	Name        string   `json:"name" yaml:"name" toml:"name"`
	Scope       string   `json:"scope,omitempty" yaml:"scope" toml:"scope"`
	Description string   `json:"description,omitempty" yaml:"description" toml:"description"`
	Tasks       []string `json:"tasks,omitempty" yaml:"tasks" toml:"tasks"`
	Operations  []string `json:"operations,omitempty" yaml:"operations" toml:"operations"`
	Members     []string `json:"members,omitempty" yaml:"members" toml:"members"`
}

// Principal is a directory entry. Groups lists the names of group
// principals the entry belongs to, or their SIDs.
type Principal struct {
	Name              string   `json:"name" yaml:"name" toml:"name"`
	SID               string   `json:"sid" yaml:"sid" toml:"sid"`
	DistinguishedName string   `json:"dn,omitempty" yaml:"dn" toml:"dn"`
	Groups            []string `json:"groups,omitempty" yaml:"groups" toml:"groups"`
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("policyfile: unknown document extension %q", filepath.Ext(path))
	}
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policyfile: read %s: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("policyfile: %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a document. Unknown keys are rejected.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("decode toml: unknown key %q", undecoded[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("policyfile: unknown format %q", format)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
