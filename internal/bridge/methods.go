// ABOUTME: Handler implementations for bridge methods (agents, hooks, events)
// ABOUTME: Dispatches requests to the discovery and hook layers with validation

package bridge

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/eitatech/gatomia/internal/agents"
	"github.com/eitatech/gatomia/internal/completion"
	"github.com/eitatech/gatomia/internal/eventbus"
	"github.com/eitatech/gatomia/internal/execlog"
	"github.com/eitatech/gatomia/internal/hooks"
)

// Deps holds the collaborators that bridge handlers call into. Function
// fields keep the hook execution and log paths swappable in tests.
type Deps struct {
	Discovery *agents.Service
	Prefs     *agents.Prefs
	Hooks     *hooks.Store
	Execute   func(ctx context.Context, hook hooks.Hook, vars map[string]string) hooks.Result
	Logs      func(hookID string, limit int) ([]execlog.Entry, error)
	Bus       *eventbus.Bus[completion.FileChangeEvent]
	Notify    func(method string, params any)

	subMu      sync.Mutex
	subscribed bool
}

// AgentListResult wraps a descriptor list.
type AgentListResult struct {
	Agents []agents.Descriptor `json:"agents"`
}

// KnownStatusResult wraps the per-catalog-entry status list.
type KnownStatusResult struct {
	Agents []agents.KnownStatus `json:"agents"`
}

// HookListResult wraps the persisted hook definitions.
type HookListResult struct {
	Hooks []hooks.Hook `json:"hooks"`
}

// TriggerResult reports the outcome of a manual hook run.
type TriggerResult struct {
	HookID      string `json:"hookId"`
	ExecutionID string `json:"executionId"`
	Status      string `json:"status"`
	Output      string `json:"output,omitempty"`
	Error       string `json:"error,omitempty"`
}

// LogListResult wraps execution-log entries.
type LogListResult struct {
	Entries []execlog.Entry `json:"entries"`
}

// RegisterHandlers wires all bridge method handlers into the given router.
func RegisterHandlers(r *Router, d *Deps) {
	r.Register(MethodAgentsDiscover, handleAgentsDiscover(d))
	r.Register(MethodAgentsKnownStatus, handleKnownStatus(d))
	r.Register(MethodAgentsKnownToggle, handleKnownToggle(d))
	r.Register(MethodAgentsSearch, handleAgentsSearch(d))
	r.Register(MethodHooksList, handleHooksList(d))
	r.Register(MethodHooksCreate, handleHooksCreate(d))
	r.Register(MethodHooksUpdate, handleHooksUpdate(d))
	r.Register(MethodHooksDelete, handleHooksDelete(d))
	r.Register(MethodHooksTrigger, handleHooksTrigger(d))
	r.Register(MethodHooksLogs, handleHooksLogs(d))
	r.Register(MethodEventsSubscribe, handleEventsSubscribe(d))
}

func handleAgentsDiscover(d *Deps) HandlerFunc {
	return func(_ json.RawMessage) Response {
		descriptors := d.Discovery.Discover(context.Background())
		if descriptors == nil {
			descriptors = []agents.Descriptor{}
		}
		return Response{Result: AgentListResult{Agents: descriptors}}
	}
}

func handleKnownStatus(d *Deps) HandlerFunc {
	return func(_ json.RawMessage) Response {
		return Response{Result: knownStatus(d)}
	}
}

func handleKnownToggle(d *Deps) HandlerFunc {
	return func(params json.RawMessage) Response {
		var p struct {
			ID      string `json:"id"`
			Enabled bool   `json:"enabled"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return Response{Error: NewInvalidParamsError(err.Error())}
		}
		if _, ok := agents.LookupCatalog(p.ID); !ok {
			return Response{Error: NewInvalidParamsError("unknown agent id: " + p.ID)}
		}
		if err := d.Prefs.Toggle(p.ID, p.Enabled); err != nil {
			return Response{Error: NewInternalError(err.Error())}
		}
		// Toggle answers with the refreshed status list so the client
		// never renders a stale view after a mutation.
		return Response{Result: knownStatus(d)}
	}
}

func handleAgentsSearch(d *Deps) HandlerFunc {
	return func(params json.RawMessage) Response {
		var p struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return Response{Error: NewInvalidParamsError(err.Error())}
		}
		matches := d.Discovery.Search(context.Background(), p.Query)
		if matches == nil {
			matches = []agents.Descriptor{}
		}
		return Response{Result: AgentListResult{Agents: matches}}
	}
}

func handleHooksList(d *Deps) HandlerFunc {
	return func(_ json.RawMessage) Response {
		return Response{Result: HookListResult{Hooks: d.Hooks.List()}}
	}
}

func handleHooksCreate(d *Deps) HandlerFunc {
	return func(params json.RawMessage) Response {
		var h hooks.Hook
		if err := json.Unmarshal(params, &h); err != nil {
			return Response{Error: NewInvalidParamsError(err.Error())}
		}
		if h.Name == "" {
			return Response{Error: NewInvalidParamsError("hook name is required")}
		}
		if h.Action.Type == "" {
			return Response{Error: NewInvalidParamsError("action type is required")}
		}
		created, err := d.Hooks.Create(h)
		if err != nil {
			return Response{Error: NewInternalError(err.Error())}
		}
		return Response{Result: created}
	}
}

func handleHooksUpdate(d *Deps) HandlerFunc {
	return func(params json.RawMessage) Response {
		var h hooks.Hook
		if err := json.Unmarshal(params, &h); err != nil {
			return Response{Error: NewInvalidParamsError(err.Error())}
		}
		if h.ID == "" {
			return Response{Error: NewInvalidParamsError("hook id is required")}
		}
		if err := d.Hooks.Update(h); err != nil {
			return Response{Error: NewInvalidParamsError(err.Error())}
		}
		return Response{Result: h}
	}
}

func handleHooksDelete(d *Deps) HandlerFunc {
	return func(params json.RawMessage) Response {
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return Response{Error: NewInvalidParamsError(err.Error())}
		}
		if err := d.Hooks.Delete(p.ID); err != nil {
			return Response{Error: NewInvalidParamsError(err.Error())}
		}
		return Response{Result: map[string]bool{"deleted": true}}
	}
}

func handleHooksTrigger(d *Deps) HandlerFunc {
	return func(params json.RawMessage) Response {
		var p struct {
			ID        string            `json:"id"`
			Variables map[string]string `json:"variables"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return Response{Error: NewInvalidParamsError(err.Error())}
		}
		hook, ok := d.Hooks.Get(p.ID)
		if !ok {
			return Response{Error: NewInvalidParamsError("unknown hook id: " + p.ID)}
		}

		res := d.Execute(context.Background(), hook, p.Variables)
		out := TriggerResult{
			HookID:      res.HookID,
			ExecutionID: res.ExecutionID,
			Status:      string(res.Status),
			Output:      res.Output,
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		return Response{Result: out}
	}
}

func handleHooksLogs(d *Deps) HandlerFunc {
	return func(params json.RawMessage) Response {
		var p struct {
			HookID string `json:"hookId"`
			Limit  int    `json:"limit"`
		}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &p); err != nil {
				return Response{Error: NewInvalidParamsError(err.Error())}
			}
		}
		entries, err := d.Logs(p.HookID, p.Limit)
		if err != nil {
			return Response{Error: NewInternalError(err.Error())}
		}
		if entries == nil {
			entries = []execlog.Entry{}
		}
		return Response{Result: LogListResult{Entries: entries}}
	}
}

func handleEventsSubscribe(d *Deps) HandlerFunc {
	return func(_ json.RawMessage) Response {
		d.subMu.Lock()
		defer d.subMu.Unlock()
		// Idempotent: a second subscribe does not double the stream.
		if !d.subscribed {
			d.Bus.Subscribe(func(ev completion.FileChangeEvent) {
				d.Notify(NotifyFileChange, ev)
			})
			d.subscribed = true
		}
		return Response{Result: map[string]bool{"subscribed": true}}
	}
}

// knownStatus assembles the catalog status list, never nil.
func knownStatus(d *Deps) KnownStatusResult {
	statuses := d.Discovery.KnownStatus(context.Background())
	if statuses == nil {
		statuses = []agents.KnownStatus{}
	}
	return KnownStatusResult{Agents: statuses}
}
