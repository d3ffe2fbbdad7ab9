// Package azguard evaluates role, task and operation grants for directory
// principals against an application policy store.
//
// The policy model follows Authorization Manager: an application defines
// operations (numbered permission units), tasks (bundles of operations and
// nested tasks, optionally guarded by a business rule) and roles that grant
// tasks and operations to member SIDs. Scopes partition an application.
//
//	eng, err := azguard.NewEngine(
//	    azguard.WithStore(memStore),
//	    azguard.WithDirectory(dir),
//	    azguard.WithConfig(azguard.Config{ApplicationName: "Billing"}),
//	)
//	ok, err := eng.Authorize(ctx, "alice", "O:ApproveInvoice")
//
// Every check opens its own policy store Handle and closes it before
// returning, so operation ids never outlive the snapshot that produced them.
package azguard

// Access check results. Zero means allowed; any other value is a denial.
const (
	DecisionAllow        = 0
	DecisionAccessDenied = 5
)

// Identity is a resolved directory principal.
type Identity struct {
	Name      string   `json:"name"`
	SID       string   `json:"sid"`
	GroupSIDs []string `json:"group_sids,omitempty"`
}

// SIDs returns the user SID followed by the group SIDs.
func (i *Identity) SIDs() []string {
	out := make([]string, 0, len(i.GroupSIDs)+1)
	out = append(out, i.SID)
	return append(out, i.GroupSIDs...)
}

// AccessCheckRequest describes one access check. Plugins receive it in
// BeforeCheck and AfterCheck.
type AccessCheckRequest struct {
	AuditID      string   `json:"audit_id"`
	UserName     string   `json:"user_name"`
	UserSID      string   `json:"user_sid"`
	Scope        string   `json:"scope,omitempty"`
	OperationIDs []int    `json:"operation_ids"`
	ParamNames   []string `json:"param_names,omitempty"`
	ParamValues  []any    `json:"param_values,omitempty"`
}

// AccessCheckResult is the decision vector of an access check, aligned
// with AccessCheckRequest.OperationIDs.
type AccessCheckResult struct {
	Results    []int `json:"results"`
	EvalTimeNs int64 `json:"eval_time_ns"`
}

// Allowed reports whether every result is DecisionAllow. An empty vector
// is not allowed.
func (r *AccessCheckResult) Allowed() bool {
	return allAllowed(r.Results)
}

func allAllowed(results []int) bool {
	if len(results) == 0 {
		return false
	}
	for _, v := range results {
		if v != DecisionAllow {
			return false
		}
	}
	return true
}
