package api

import "github.com/xraph/azguard"

// AuthorizeResponse is the response for an authorization context check.
type AuthorizeResponse struct {
	User    string `json:"user" description:"User name that was checked"`
	Context string `json:"context" description:"Authorization context: O:<operation> or a task name"`
	Allowed bool   `json:"allowed" description:"Whether every operation in the context is granted"`
}

// AllowedResponse reports a single yes/no answer.
type AllowedResponse struct {
	Allowed bool `json:"allowed" description:"Whether the check passed"`
}

// NamesResponse is a list of role, operation or task names.
type NamesResponse struct {
	Names []string `json:"names" description:"Names in evaluation order"`
}

// PrincipalResponse is the evaluated grant set of a user.
type PrincipalResponse struct {
	Name          string   `json:"name" description:"User name"`
	Authenticated bool     `json:"authenticated" description:"Whether the user was resolved"`
	Roles         []string `json:"roles" description:"Roles held"`
	Operations    []string `json:"operations" description:"Operations granted"`
	Tasks         []string `json:"tasks" description:"Tasks fully granted"`
}

// TaskOperationsResponse lists the operation ids a task expands to.
type TaskOperationsResponse struct {
	Task         string `json:"task" description:"Task name"`
	OperationIDs []int  `json:"operation_ids" description:"Operation ids, de-duplicated in definition order"`
}

// ListResponse wraps a list of items with pagination metadata.
type ListResponse[T any] struct {
	Items  []T   `json:"items" description:"List of items"`
	Total  int64 `json:"total" description:"Total count"`
	Limit  int   `json:"limit" description:"Page size"`
	Offset int   `json:"offset" description:"Page offset"`
}

func toPrincipalResponse(p *azguard.Principal) *PrincipalResponse {
	return &PrincipalResponse{
		Name:          p.Name(),
		Authenticated: p.IsAuthenticated(),
		Roles:         nonNil(p.Roles()),
		Operations:    nonNil(p.Operations()),
		Tasks:         nonNil(p.Tasks()),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
