package azguard

import "github.com/expr-lang/expr/vm"

// RuleCache caches compiled business rule programs keyed by rule source.
// Cached programs are immutable and safe to share between handles.
type RuleCache interface {
	// Get returns a compiled program for the rule source, if cached.
	Get(rule string) (*vm.Program, bool)

	// Set stores a compiled program.
	Set(rule string, program *vm.Program)

	// Purge drops every cached program.
	Purge()
}
