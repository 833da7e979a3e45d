// ABOUTME: Trigger registry matching fired triggers against enabled hooks
// ABOUTME: Chained firings carry a depth counter with a hard recursion limit

package hooks

import (
	"context"
	"fmt"
	"maps"

	"github.com/eitatech/gatomia/internal/execlog"
	"github.com/eitatech/gatomia/internal/log"
)

// ChainAgent is the synthetic trigger agent used for chained firings: a
// hook's completion fires (ChainAgent, <hook name>, after).
const ChainAgent = "hook"

// Registry fires matching hooks when a trigger event arrives.
type Registry struct {
	store    *Store
	exec     *Executor
	maxDepth int
}

// NewRegistry creates a registry. maxDepth bounds chained firings; values
// below 1 fall back to 5.
func NewRegistry(store *Store, exec *Executor, maxDepth int) *Registry {
	if maxDepth < 1 {
		maxDepth = 5
	}
	return &Registry{store: store, exec: exec, maxDepth: maxDepth}
}

// Fire matches the trigger against all enabled hooks and executes each
// match. One hook's failure never prevents its siblings from running.
// Successful executions cascade into chained firings up to the depth limit.
func (r *Registry) Fire(ctx context.Context, trigger Trigger, vars map[string]string) []Result {
	return r.fireAtDepth(ctx, trigger, vars, 0)
}

func (r *Registry) fireAtDepth(ctx context.Context, trigger Trigger, vars map[string]string, depth int) []Result {
	var results []Result

	for _, hook := range r.store.List() {
		if !hook.Matches(trigger) {
			continue
		}

		// The depth guard is the only cycle protection in the system: a
		// hook chain that reaches the limit is skipped, never looped.
		if depth >= r.maxDepth {
			log.Warn("registry: hook %q skipped, chain depth %d reached limit %d", hook.Name, depth, r.maxDepth)
			results = append(results, r.exec.LogSkipped(hook, depth,
				fmt.Sprintf("chain depth limit %d reached", r.maxDepth)))
			continue
		}

		log.Info("registry: firing hook %q for %s.%s (%s, depth %d)",
			hook.Name, trigger.Agent, trigger.Operation, trigger.Timing, depth)

		res := r.exec.Execute(ctx, hook, vars, depth)
		results = append(results, res)

		if res.Status != execlog.StatusSuccess {
			continue
		}

		// Completion of this hook is itself a trigger.
		chainVars := maps.Clone(vars)
		if chainVars == nil {
			chainVars = make(map[string]string)
		}
		chainVars["previousHook"] = hook.Name
		chainVars["previousOutput"] = res.Output

		chained := Trigger{Agent: ChainAgent, Operation: hook.Name, Timing: After}
		results = append(results, r.fireAtDepth(ctx, chained, chainVars, depth+1)...)
	}

	return results
}
