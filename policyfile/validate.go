package policyfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/azguard"
	"github.com/xraph/azguard/directory"
)

type scopedName struct{ scope, name string }

// Validate checks names, references and business rules. Every problem is
// reported; the returned error wraps ErrInvalidDocument.
func (d *Document) Validate() error {
	v := &validator{doc: d}
	v.run()
	return errors.Join(v.errs...)
}

type validator struct {
	doc  *Document
	errs []error

	scopes     map[string]struct{}
	operations map[string]struct{}
	tasks      map[scopedName]*Task
	principals map[string]*Principal
}

func (v *validator) fail(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidDocument}, args...)...))
}

func (v *validator) run() {
	d := v.doc
	if !validName(d.Application.Name) {
		v.fail("application name %q", d.Application.Name)
	}

	v.scopes = make(map[string]struct{}, len(d.Scopes))
	for i, s := range d.Scopes {
		if !validName(s.Name) {
			v.fail("scopes[%d]: invalid name %q", i, s.Name)
			continue
		}
		if _, dup := v.scopes[s.Name]; dup {
			v.fail("scopes[%d]: duplicate scope %q", i, s.Name)
		}
		v.scopes[s.Name] = struct{}{}
	}

	v.operations = make(map[string]struct{}, len(d.Operations))
	ids := make(map[int]string, len(d.Operations))
	for i, o := range d.Operations {
		if !validName(o.Name) {
			v.fail("operations[%d]: invalid name %q", i, o.Name)
			continue
		}
		if _, dup := v.operations[o.Name]; dup {
			v.fail("operations[%d]: duplicate operation %q", i, o.Name)
		}
		v.operations[o.Name] = struct{}{}
		if o.ID <= 0 {
			v.fail("operation %q: id must be positive", o.Name)
		} else if other, dup := ids[o.ID]; dup {
			v.fail("operation %q: id %d already used by %q", o.Name, o.ID, other)
		}
		ids[o.ID] = o.Name
	}

	v.principals = make(map[string]*Principal, len(d.Principals))
	for i := range d.Principals {
		p := &d.Principals[i]
		if strings.TrimSpace(p.Name) == "" {
			v.fail("principals[%d]: name is required", i)
			continue
		}
		if _, dup := v.principals[p.Name]; dup {
			v.fail("principals[%d]: duplicate principal %q", i, p.Name)
		}
		if !isSID(p.SID) {
			v.fail("principal %q: invalid SID %q", p.Name, p.SID)
		}
		v.principals[p.Name] = p
	}
	for _, p := range d.Principals {
		for _, g := range p.Groups {
			if _, ok := v.principals[g]; !ok && !isSID(g) {
				v.fail("principal %q: unknown group %q", p.Name, g)
			}
		}
	}

	v.tasks = make(map[scopedName]*Task, len(d.Tasks))
	for i := range d.Tasks {
		t := &d.Tasks[i]
		if !validName(t.Name) {
			v.fail("tasks[%d]: invalid name %q", i, t.Name)
			continue
		}
		v.checkScope("task", t.Name, t.Scope)
		key := scopedName{t.Scope, t.Name}
		if _, dup := v.tasks[key]; dup {
			v.fail("task %q: duplicate in scope %q", t.Name, t.Scope)
		}
		v.tasks[key] = t
	}
	for i := range d.Tasks {
		t := &d.Tasks[i]
		v.checkOperations("task", t.Name, t.Operations)
		v.checkTasks("task", t.Name, t.Scope, t.Tasks)
		if t.BizRule != "" {
			if err := azguard.CompileRule(t.BizRule); err != nil {
				v.fail("task %q: %v", t.Name, err)
			}
		}
	}
	v.checkCycles()

	roles := make(map[scopedName]struct{}, len(d.Roles))
	for i, r := range d.Roles {
		if !validName(r.Name) {
			v.fail("roles[%d]: invalid name %q", i, r.Name)
			continue
		}
		v.checkScope("role", r.Name, r.Scope)
		key := scopedName{r.Scope, r.Name}
		if _, dup := roles[key]; dup {
			v.fail("role %q: duplicate in scope %q", r.Name, r.Scope)
		}
		roles[key] = struct{}{}
		v.checkOperations("role", r.Name, r.Operations)
		v.checkTasks("role", r.Name, r.Scope, r.Tasks)
		for _, m := range r.Members {
			if _, ok := v.principals[m]; !ok && !isSID(m) {
				v.fail("role %q: member %q is neither a declared principal nor a SID", r.Name, m)
			}
		}
	}
}

func (v *validator) checkScope(kind, name, scope string) {
	if scope == "" {
		return
	}
	if _, ok := v.scopes[scope]; !ok {
		v.fail("%s %q: unknown scope %q", kind, name, scope)
	}
}

func (v *validator) checkOperations(kind, name string, ops []string) {
	for _, o := range ops {
		if _, ok := v.operations[o]; !ok {
			v.fail("%s %q: unknown operation %q", kind, name, o)
		}
	}
}

func (v *validator) checkTasks(kind, name, scope string, tasks []string) {
	for _, t := range tasks {
		if v.lookupTask(t, scope) == nil {
			v.fail("%s %q: unknown task %q", kind, name, t)
		}
	}
}

// lookupTask resolves a task reference the way a policy handle does: the
// scope's own task first, then the application-level one.
func (v *validator) lookupTask(name, scope string) *Task {
	if t, ok := v.tasks[scopedName{scope, name}]; ok {
		return t
	}
	return v.tasks[scopedName{"", name}]
}

func (v *validator) checkCycles() {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*Task]int, len(v.tasks))
	var visit func(t *Task) bool
	visit = func(t *Task) bool {
		switch state[t] {
		case visiting:
			return false
		case done:
			return true
		}
		state[t] = visiting
		for _, sub := range t.Tasks {
			if st := v.lookupTask(sub, t.Scope); st != nil && !visit(st) {
				return false
			}
		}
		state[t] = done
		return true
	}
	for i := range v.doc.Tasks {
		t := &v.doc.Tasks[i]
		if state[t] == 0 && !visit(t) {
			v.fail("task %q: nested tasks form a cycle", t.Name)
		}
	}
}

func validName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && !strings.Contains(name, ",")
}

func isSID(s string) bool {
	_, err := directory.EncodeBinarySID(s)
	return err == nil
}
