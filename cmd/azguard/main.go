// azguard evaluates a policy document from the command line. The document
// is loaded into an in-memory store and directory, so checks run without a
// database or directory server:
//
//	azguard authorize --policy billing.yaml --user alice O:ApproveInvoice
//	azguard operations --policy billing.yaml --user dave --ip 10.0.0.7
//	azguard members --policy billing.yaml Admins
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/xraph/azguard"
	"github.com/xraph/azguard/cache"
	"github.com/xraph/azguard/policyfile"
	"github.com/xraph/azguard/store/memory"
)

// exitDenied is the exit status of a denied authorize or enforce check.
const exitDenied = 3

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	policy  string
	user    string
	scope   string
	ip      string
	secure  bool
	asJSON  bool
	verbose bool
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.policy, "policy", "p", "", "policy document (.yaml, .toml or .json)")
	fs.StringVarP(&o.user, "user", "u", "", "user name as known to the policy directory")
	fs.StringVarP(&o.scope, "scope", "s", "", "scope name (default: application level)")
	fs.StringVar(&o.ip, "ip", "", "client IP address for business rules")
	fs.BoolVar(&o.secure, "secure", false, "treat the client connection as secure")
	fs.BoolVar(&o.asJSON, "json", false, "print results as JSON")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log engine activity to stderr")
}

type command struct {
	name    string
	args    string
	summary string
	user    bool
	run     func(ctx context.Context, eng *azguard.Engine, o *options, args []string) (any, error)
}

var commands = []command{
	{name: "validate", summary: "check a policy document and exit", run: runValidate},
	{name: "authorize", args: "<task | O:operation>", summary: "check one authorization context", user: true, run: runAuthorize},
	{name: "roles", summary: "list the user's roles", user: true, run: runRoles},
	{name: "operations", summary: "list the operations the user may perform", user: true, run: runOperations},
	{name: "tasks", summary: "list the tasks the user may perform", user: true, run: runTasks},
	{name: "principal", summary: "print the user's roles, operations and tasks", user: true, run: runPrincipal},
	{name: "members", args: "<role>", summary: "list the members of a role", run: runMembers},
	{name: "task-operations", args: "<task>", summary: "list the operation ids a task expands to", run: runTaskOperations},
}

func run(ctx context.Context, argv []string) error {
	if len(argv) == 0 || argv[0] == "-h" || argv[0] == "--help" || argv[0] == "help" {
		printUsage()
		return nil
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == argv[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		printUsage()
		return fmt.Errorf("unknown command %q", argv[0])
	}

	var o options
	fs := pflag.NewFlagSet("azguard "+cmd.name, pflag.ContinueOnError)
	o.addFlags(fs)
	if err := fs.Parse(argv[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if o.policy == "" {
		return errors.New("--policy is required")
	}
	if cmd.user && o.user == "" {
		return errors.New("--user is required")
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	doc, err := policyfile.Load(o.policy)
	if err != nil {
		return err
	}
	var eng *azguard.Engine
	if cmd.name != "validate" {
		if eng, err = newEngine(ctx, doc, logger); err != nil {
			return err
		}
	}

	ctx = azguard.WithScope(ctx, o.scope)
	if o.ip != "" || o.secure {
		ctx = azguard.WithParams(ctx, azguard.NewParams(o.ip, o.secure))
	}

	out, err := cmd.run(ctx, eng, &o, fs.Args())
	if err != nil {
		return err
	}
	return emit(o.asJSON, out)
}

func newEngine(ctx context.Context, doc *policyfile.Document, logger *slog.Logger) (*azguard.Engine, error) {
	s := memory.New()
	if _, err := doc.Seed(ctx, s); err != nil {
		return nil, err
	}
	cfg := azguard.DefaultConfig()
	cfg.ApplicationName = doc.Application.Name
	// Nothing reads the check log of a throwaway store.
	cfg.DisableCheckLog = true
	return azguard.NewEngine(
		azguard.WithStore(s),
		azguard.WithDirectory(doc.Directory()),
		azguard.WithConfig(cfg),
		azguard.WithLogger(logger),
		azguard.WithRuleCache(cache.NewMemory(cache.WithMaxSize(cfg.RuleCacheSize))),
	)
}

func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one %s argument, got %d", what, len(args))
	}
	return args[0], nil
}

func runValidate(_ context.Context, _ *azguard.Engine, o *options, _ []string) (any, error) {
	return fmt.Sprintf("%s: ok", o.policy), nil
}

type decision struct {
	User    string `json:"user"`
	Context string `json:"context"`
	Allowed bool   `json:"allowed"`
}

func runAuthorize(ctx context.Context, eng *azguard.Engine, o *options, args []string) (any, error) {
	authContext, err := oneArg(args, "context")
	if err != nil {
		return nil, err
	}
	ok, err := eng.Authorize(ctx, o.user, authContext)
	if err != nil {
		return nil, err
	}
	d := decision{User: o.user, Context: authContext, Allowed: ok}
	if !ok {
		if perr := emit(o.asJSON, d); perr != nil {
			return nil, perr
		}
		return nil, &exitError{code: exitDenied, err: fmt.Errorf("denied: %s may not %s", o.user, authContext)}
	}
	return d, nil
}

func runRoles(ctx context.Context, eng *azguard.Engine, o *options, _ []string) (any, error) {
	return eng.RolesForUser(ctx, o.user)
}

func runOperations(ctx context.Context, eng *azguard.Engine, o *options, _ []string) (any, error) {
	return eng.OperationsForUser(ctx, o.user, nil)
}

func runTasks(ctx context.Context, eng *azguard.Engine, o *options, _ []string) (any, error) {
	return eng.TasksForUser(ctx, o.user, nil)
}

type principalView struct {
	Name          string   `json:"name"`
	Authenticated bool     `json:"authenticated"`
	Roles         []string `json:"roles"`
	Operations    []string `json:"operations"`
	Tasks         []string `json:"tasks"`
}

func (p principalView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "name:        %s\n", p.Name)
	fmt.Fprintf(&b, "roles:       %s\n", strings.Join(p.Roles, ", "))
	fmt.Fprintf(&b, "operations:  %s\n", strings.Join(p.Operations, ", "))
	fmt.Fprintf(&b, "tasks:       %s", strings.Join(p.Tasks, ", "))
	return b.String()
}

func runPrincipal(ctx context.Context, eng *azguard.Engine, o *options, _ []string) (any, error) {
	p, err := eng.Principal(ctx, o.user, nil)
	if err != nil {
		return nil, err
	}
	return principalView{
		Name:          p.Name(),
		Authenticated: p.IsAuthenticated(),
		Roles:         p.Roles(),
		Operations:    p.Operations(),
		Tasks:         p.Tasks(),
	}, nil
}

func runMembers(ctx context.Context, eng *azguard.Engine, _ *options, args []string) (any, error) {
	roleName, err := oneArg(args, "role")
	if err != nil {
		return nil, err
	}
	return eng.UsersInRole(ctx, roleName)
}

func runTaskOperations(ctx context.Context, eng *azguard.Engine, _ *options, args []string) (any, error) {
	taskName, err := oneArg(args, "task")
	if err != nil {
		return nil, err
	}
	h, err := eng.OpenHandle(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	ids, err := h.OperationsForTask(taskName, h.Scope())
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int{}
	}
	return ids, nil
}

func emit(asJSON bool, v any) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	switch x := v.(type) {
	case []string:
		for _, s := range x {
			fmt.Println(s)
		}
	case []int:
		for _, n := range x {
			fmt.Println(n)
		}
	case decision:
		if x.Allowed {
			fmt.Printf("allowed: %s may %s\n", x.User, x.Context)
		}
	default:
		fmt.Println(v)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "azguard evaluates role-based policy documents.\n\nUsage:\n  azguard <command> --policy <file> [flags] [args]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-16s %-22s %s\n", c.name, c.args, c.summary)
	}
	fs := pflag.NewFlagSet("azguard", pflag.ContinueOnError)
	var o options
	o.addFlags(fs)
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	fs.SetOutput(os.Stderr)
	fs.PrintDefaults()
}
