// Package checklog defines the access check audit record.
package checklog

import (
	"time"

	"github.com/xraph/azguard/id"
)

// Entry records one access check: who asked, under which audit identifier,
// for which operation ids, and the resulting decision vector.
type Entry struct {
	ID           id.CheckLogID    `json:"id" db:"id"`
	AppID        id.ApplicationID `json:"app_id" db:"app_id"`
	AuditID      string           `json:"audit_id" db:"audit_id"`
	UserName     string           `json:"user_name" db:"user_name"`
	UserSID      string           `json:"user_sid" db:"user_sid"`
	Scope        string           `json:"scope,omitempty" db:"scope"`
	OperationIDs []int            `json:"operation_ids" db:"operation_ids"`
	Results      []int            `json:"results" db:"results"`
	Allowed      bool             `json:"allowed" db:"allowed"`
	EvalTimeNs   int64            `json:"eval_time_ns" db:"eval_time_ns"`
	Params       map[string]any   `json:"params,omitempty" db:"params"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying check logs. Results are
// ordered newest first.
type QueryFilter struct {
	AppID    id.ApplicationID `json:"app_id,omitempty"`
	UserName string           `json:"user_name,omitempty"`
	AuditID  string           `json:"audit_id,omitempty"`
	Allowed  *bool            `json:"allowed,omitempty"`
	After    *time.Time       `json:"after,omitempty"`
	Before   *time.Time       `json:"before,omitempty"`
	Limit    int              `json:"limit,omitempty"`
	Offset   int              `json:"offset,omitempty"`
}
