// ABOUTME: CLI entry point for gatomia: agent discovery and hook automation
// ABOUTME: Parses flags, wires stores and runners, dispatches to bridge or watch mode

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eitatech/gatomia/internal/acp"
	"github.com/eitatech/gatomia/internal/agents"
	"github.com/eitatech/gatomia/internal/bridge"
	"github.com/eitatech/gatomia/internal/completion"
	"github.com/eitatech/gatomia/internal/config"
	"github.com/eitatech/gatomia/internal/eventbus"
	"github.com/eitatech/gatomia/internal/execlog"
	"github.com/eitatech/gatomia/internal/ghops"
	"github.com/eitatech/gatomia/internal/gitops"
	"github.com/eitatech/gatomia/internal/hooks"
	"github.com/eitatech/gatomia/internal/log"
	"github.com/eitatech/gatomia/internal/mcptool"
	"github.com/eitatech/gatomia/internal/statestore"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Intercept subcommands before flag parsing.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "agents", "hooks":
			if err := runSubcommand(os.Args[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			os.Exit(0)
		}
	}

	args := parseFlags()

	if args.version {
		fmt.Printf("gatomia %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired components shared by every mode.
type app struct {
	workspace string
	cfg       *config.Settings
	state     *statestore.Store
	prefs     *agents.Prefs
	detector  *agents.Detector
	discovery *agents.Service
	hookStore *hooks.Store
	executor  *hooks.Executor
	registry  *hooks.Registry
	execLog   *execlog.Store
	bus       *eventbus.Bus[completion.FileChangeEvent]
}

// newApp performs the full initialization sequence: config, state store,
// discovery, execution log, hook storage and runners.
func newApp(workspace string, debug bool) (*app, error) {
	if workspace == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		workspace = cwd
	}

	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if debug || cfg.Debug {
		log.SetLevel(log.LevelDebug)
	}

	if err := os.MkdirAll(config.GlobalDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating global dir: %w", err)
	}

	state, err := statestore.Open(config.StateFile("global", workspace))
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	execLog, err := execlog.Open(config.ExecLogFile(), cfg.ExecLogLimit)
	if err != nil {
		return nil, fmt.Errorf("opening execution log: %w", err)
	}

	agentsDir := cfg.AgentsDir
	if agentsDir == "" {
		agentsDir = config.AgentsDir(workspace)
	}

	prefs := agents.NewPrefs(state)
	detector := agents.NewDetector()

	hookStore := hooks.NewStore(state)
	executor := &hooks.Executor{
		Git:    gitops.NewRunner(workspace),
		GitHub: ghops.NewRunner(workspace),
		MCP:    mcptool.NewInvoker(cfg.MCPServers),
		ACP:    acp.NewRunner(workspace, time.Duration(cfg.ACPSessionTimeout)*time.Second),
		Shell:  hooks.DefaultShell{},
		Store:  hookStore,
		Logger: execLog,
	}

	return &app{
		workspace: workspace,
		cfg:       cfg,
		state:     state,
		prefs:     prefs,
		detector:  detector,
		discovery: agents.NewService(agentsDir, prefs, detector),
		hookStore: hookStore,
		executor:  executor,
		registry:  hooks.NewRegistry(hookStore, executor, cfg.MaxChainDepth),
		execLog:   execLog,
		bus:       eventbus.New[completion.FileChangeEvent](),
	}, nil
}

func (a *app) close() {
	if err := a.execLog.Close(); err != nil {
		log.Warn("closing execution log: %v", err)
	}
}

// fireCompletion translates a validated artifact completion into a hook
// trigger with the firing's template context.
func (a *app) fireCompletion(f completion.Firing) {
	trigger := hooks.Trigger{
		Agent:     completion.Namespace,
		Operation: f.Operation,
		Timing:    hooks.After,
	}
	vars := map[string]string{
		"agent":         trigger.Agent,
		"operation":     f.Operation,
		"timing":        string(trigger.Timing),
		"outputPath":    f.OutputPath,
		"outputContent": f.OutputContent,
		"workspace":     a.workspace,
	}
	a.registry.Fire(context.Background(), trigger, vars)
}

// run wires the daemon modes selected by flags. Bridge and watch can run
// together; with neither, a one-shot discovery summary prints and exits.
func run(args cliArgs) error {
	a, err := newApp(args.workspace, args.debug)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if args.watch {
		detector := completion.NewDetector(a.workspace,
			time.Duration(a.cfg.DebounceMs)*time.Millisecond, a.fireCompletion, a.bus)
		defer detector.Close()

		watcher := completion.NewWatcher(a.workspace, detector.HandleEvent)
		watcher.Start()
		defer watcher.Stop()

		log.Info("watching %s for artifact completions", a.workspace)
	}

	if args.bridge {
		return a.serveBridge()
	}

	if args.watch {
		<-ctx.Done()
		return nil
	}

	return a.printAgents(ctx)
}

// serveBridge runs the JSONL protocol on stdin/stdout until EOF.
func (a *app) serveBridge() error {
	router := bridge.NewRouter()
	deps := &bridge.Deps{
		Discovery: a.discovery,
		Prefs:     a.prefs,
		Hooks:     a.hookStore,
		Execute: func(ctx context.Context, hook hooks.Hook, vars map[string]string) hooks.Result {
			return a.executor.Execute(ctx, hook, vars, 0)
		},
		Logs: a.execLog.List,
		Bus:  a.bus,
	}

	srv := bridge.NewServer(os.Stdin, os.Stdout, router)
	deps.Notify = srv.Notify
	bridge.RegisterHandlers(router, deps)

	log.Info("bridge serving on stdio")
	return srv.Run()
}

// printAgents is the default one-shot mode: discover and list agents.
func (a *app) printAgents(ctx context.Context) error {
	descriptors := a.discovery.Discover(ctx)
	if len(descriptors) == 0 {
		fmt.Println("no agents discovered")
		return nil
	}
	for _, d := range descriptors {
		fmt.Printf("%-24s %-10s %s\n", d.DisplayName, d.Source, d.AgentCommand)
	}
	return nil
}

// runSubcommand handles `gatomia agents ...` and `gatomia hooks ...`.
func runSubcommand(argv []string) error {
	a, err := newApp("", false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()

	verb := ""
	if len(argv) > 1 {
		verb = argv[1]
	}

	switch argv[0] {
	case "agents":
		switch verb {
		case "list", "":
			return a.printAgents(ctx)
		case "detect":
			return a.printDetection(ctx)
		default:
			return fmt.Errorf("unknown agents subcommand %q (want list or detect)", verb)
		}
	case "hooks":
		switch verb {
		case "list", "":
			return a.printHooks()
		case "logs":
			hookID := ""
			if len(argv) > 2 {
				hookID = argv[2]
			}
			return a.printLogs(hookID)
		case "run":
			if len(argv) < 3 {
				return fmt.Errorf("usage: gatomia hooks run <hook-id>")
			}
			return a.runHook(ctx, argv[2])
		default:
			return fmt.Errorf("unknown hooks subcommand %q (want list, logs or run)", verb)
		}
	}
	return fmt.Errorf("unknown subcommand %q", argv[0])
}

// printDetection probes every catalog entry and reports install state.
func (a *app) printDetection(ctx context.Context) error {
	a.detector.PreloadAll(ctx, agents.Catalog())
	for _, st := range a.discovery.KnownStatus(ctx) {
		detected := "not installed"
		if st.Detected {
			detected = "installed"
		}
		enabled := "disabled"
		if st.Enabled {
			enabled = "enabled"
		}
		fmt.Printf("%-16s %-14s %s\n", st.ID, detected, enabled)
	}
	return nil
}

func (a *app) printHooks() error {
	defs := a.hookStore.List()
	if len(defs) == 0 {
		fmt.Println("no hooks defined")
		return nil
	}
	for _, h := range defs {
		state := "disabled"
		if h.Enabled {
			state = "enabled"
		}
		fmt.Printf("%-36s %-24s %-8s %s/%s/%s -> %s (runs: %d)\n",
			h.ID, h.Name, state,
			h.Trigger.Agent, h.Trigger.Operation, h.Trigger.Timing,
			h.Action.Type, h.ExecutionCount)
	}
	return nil
}

func (a *app) printLogs(hookID string) error {
	entries, err := a.execLog.List(hookID, 0)
	if err != nil {
		return fmt.Errorf("listing execution log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("no executions recorded")
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s %-36s depth=%d %-8s %dms",
			e.TriggeredAt.Format(time.RFC3339), e.HookID, e.ChainDepth, e.Status, e.DurationMs)
		if e.Error != "" {
			line += " " + e.Error
		}
		fmt.Println(line)
	}
	return nil
}

func (a *app) runHook(ctx context.Context, id string) error {
	hook, ok := a.hookStore.Get(id)
	if !ok {
		return fmt.Errorf("unknown hook id %q", id)
	}

	res := a.executor.Execute(ctx, hook, nil, 0)
	fmt.Printf("%s: %s\n", hook.Name, res.Status)
	if res.Output != "" {
		fmt.Println(res.Output)
	}
	return res.Err
}
