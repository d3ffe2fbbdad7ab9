package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xraph/azguard"
)

func TestSatisfies(t *testing.T) {
	anonymous := azguard.NewPrincipal("", false, nil, nil, nil, false)
	alice := azguard.NewPrincipal("alice", true, []string{"Approver"},
		[]string{"ApproveInvoice", "ViewInvoice"}, []string{"Approve"}, false)

	tests := []struct {
		name string
		p    *azguard.Principal
		req  Requirement
		want bool
	}{
		{"zero requirement admits anonymous", anonymous, Requirement{}, true},
		{"authenticated rejects anonymous", anonymous, Requirement{Authenticated: true}, false},
		{"authenticated admits alice", alice, Requirement{Authenticated: true}, true},
		{"granted operation", alice, Requirement{Operation: "ViewInvoice"}, true},
		{"missing operation", alice, Requirement{Operation: "DeleteInvoice"}, false},
		{"granted task", alice, Requirement{Task: "Approve"}, true},
		{"missing task", alice, Requirement{Task: "Admin"}, false},
		{"operation and task", alice, Requirement{Authenticated: true, Operation: "ApproveInvoice", Task: "Approve"}, true},
		{"anonymous never holds operations", anonymous, Requirement{Operation: "ViewInvoice"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, satisfies(tt.p, tt.req))
		})
	}
}
