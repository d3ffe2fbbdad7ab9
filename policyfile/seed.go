package policyfile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/directory"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/task"
)

// Seed writes the document's application into s. It fails with an error
// wrapping store.ErrDuplicate when the application already exists; use
// Replace to overwrite it.
func (d *Document) Seed(ctx context.Context, s store.Store) (*application.Application, error) {
	if _, err := s.GetApplicationByName(ctx, d.Application.Name); err == nil {
		return nil, fmt.Errorf("policyfile: application %q: %w", d.Application.Name, store.ErrDuplicate)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("policyfile: lookup application: %w", err)
	}
	return d.write(ctx, s)
}

// Replace removes an existing application of the same name together with
// everything it owns, then seeds the document.
func (d *Document) Replace(ctx context.Context, s store.Store) (*application.Application, error) {
	existing, err := s.GetApplicationByName(ctx, d.Application.Name)
	switch {
	case err == nil:
		if err := purge(ctx, s, existing); err != nil {
			return nil, err
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("policyfile: lookup application: %w", err)
	}
	return d.write(ctx, s)
}

func purge(ctx context.Context, s store.Store, app *application.Application) error {
	steps := []struct {
		what string
		fn   func(context.Context, id.ApplicationID) error
	}{
		{"assignments", s.DeleteAssignmentsByApp},
		{"roles", s.DeleteRolesByApp},
		{"tasks", s.DeleteTasksByApp},
		{"operations", s.DeleteOperationsByApp},
		{"check logs", s.DeleteCheckLogsByApp},
	}
	for _, step := range steps {
		if err := step.fn(ctx, app.ID); err != nil {
			return fmt.Errorf("policyfile: delete %s: %w", step.what, err)
		}
	}
	scopes, err := s.ListScopes(ctx, app.ID)
	if err != nil {
		return fmt.Errorf("policyfile: list scopes: %w", err)
	}
	for _, sc := range scopes {
		if err := s.DeleteScope(ctx, sc.ID); err != nil {
			return fmt.Errorf("policyfile: delete scope %q: %w", sc.Name, err)
		}
	}
	if err := s.DeleteApplication(ctx, app.ID); err != nil {
		return fmt.Errorf("policyfile: delete application: %w", err)
	}
	return nil
}

func (d *Document) write(ctx context.Context, s store.Store) (*application.Application, error) {
	now := time.Now().UTC()
	app := &application.Application{
		ID:          id.NewApplicationID(),
		Name:        d.Application.Name,
		Description: d.Application.Description,
		Version:     d.Application.Version,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("policyfile: create application: %w", err)
	}

	for _, sc := range d.Scopes {
		if err := s.CreateScope(ctx, &application.Scope{
			ID:          id.NewScopeID(),
			AppID:       app.ID,
			Name:        sc.Name,
			Description: sc.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return nil, fmt.Errorf("policyfile: create scope %q: %w", sc.Name, err)
		}
	}

	for _, o := range d.Operations {
		if err := s.CreateOperation(ctx, &operation.Operation{
			ID:          id.NewOperationID(),
			AppID:       app.ID,
			Name:        o.Name,
			Description: o.Description,
			OperationID: o.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return nil, fmt.Errorf("policyfile: create operation %q: %w", o.Name, err)
		}
	}

	// Creation times follow document order so listings keep it.
	for i, t := range d.Tasks {
		at := now.Add(time.Duration(i) * time.Microsecond)
		if err := s.CreateTask(ctx, &task.Task{
			ID:               id.NewTaskID(),
			AppID:            app.ID,
			Scope:            t.Scope,
			Name:             t.Name,
			Description:      t.Description,
			BizRule:          t.BizRule,
			IsRoleDefinition: t.RoleDefinition,
			Operations:       t.Operations,
			Tasks:            t.Tasks,
			CreatedAt:        at,
			UpdatedAt:        at,
		}); err != nil {
			return nil, fmt.Errorf("policyfile: create task %q: %w", t.Name, err)
		}
	}

	sids := d.principalSIDs()
	for i, r := range d.Roles {
		at := now.Add(time.Duration(i) * time.Microsecond)
		rl := &role.Role{
			ID:          id.NewRoleID(),
			AppID:       app.ID,
			Scope:       r.Scope,
			Name:        r.Name,
			Description: r.Description,
			Tasks:       r.Tasks,
			Operations:  r.Operations,
			CreatedAt:   at,
			UpdatedAt:   at,
		}
		if err := s.CreateRole(ctx, rl); err != nil {
			return nil, fmt.Errorf("policyfile: create role %q: %w", r.Name, err)
		}
		for _, m := range r.Members {
			a := &assignment.Assignment{
				ID:        id.NewAssignmentID(),
				AppID:     app.ID,
				RoleID:    rl.ID,
				SID:       m,
				GrantedBy: "policyfile",
				CreatedAt: at,
			}
			if sid, ok := sids[m]; ok {
				a.SID = sid
				a.MemberName = m
			}
			if err := s.CreateAssignment(ctx, a); err != nil {
				return nil, fmt.Errorf("policyfile: add %q to role %q: %w", m, r.Name, err)
			}
		}
	}
	return app, nil
}

// Directory builds an in-memory directory from the declared principals.
// Group membership is transitive: a member of a group that belongs to
// another group carries both group SIDs.
func (d *Document) Directory() *directory.Memory {
	sids := d.principalSIDs()
	byName := make(map[string]*Principal, len(d.Principals))
	for i := range d.Principals {
		byName[d.Principals[i].Name] = &d.Principals[i]
	}

	dir := directory.NewMemory()
	for _, p := range d.Principals {
		var groups []string
		seen := map[string]struct{}{p.SID: {}}
		var walk func(refs []string)
		walk = func(refs []string) {
			for _, g := range refs {
				sid, ok := sids[g]
				if !ok {
					sid = g
				}
				if _, dup := seen[sid]; dup {
					continue
				}
				seen[sid] = struct{}{}
				groups = append(groups, sid)
				if gp, ok := byName[g]; ok {
					walk(gp.Groups)
				}
			}
		}
		walk(p.Groups)
		dir.Add(&directory.Entry{
			Name:              p.Name,
			SID:               p.SID,
			DistinguishedName: p.DistinguishedName,
			GroupSIDs:         groups,
		})
	}
	return dir
}

func (d *Document) principalSIDs() map[string]string {
	sids := make(map[string]string, len(d.Principals))
	for _, p := range d.Principals {
		sids[p.Name] = p.SID
	}
	return sids
}
