package api

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/civitools/cv/internal/host"
)

// Handler implements one Entity.action pair.
type Handler func(ctx context.Context, rt *host.Runtime, p Params) (any, error)

// Kernel routes calls to handlers.
type Kernel struct {
	rt       *host.Runtime
	logger   *slog.Logger
	handlers map[string]Handler
	names    map[string]string
}

// NewKernel returns a kernel with the built-in actions registered.
func NewKernel(rt *host.Runtime) *Kernel {
	logger := slog.New(slog.DiscardHandler)
	if rt != nil && rt.Logger != nil {
		logger = rt.Logger
	}
	k := &Kernel{
		rt:       rt,
		logger:   logger,
		handlers: map[string]Handler{},
		names:    map[string]string{},
	}
	k.Register("Extension", "get", extensionGet)
	k.Register("Extension", "getremote", extensionGetRemote)
	k.Register("Extension", "refresh", extensionRefresh)
	k.Register("System", "get", systemGet)
	k.Register("Setting", "get", settingGet)
	return k
}

// Register adds or replaces a handler. Entity and action match
// case-insensitively.
func (k *Kernel) Register(entity, action string, h Handler) {
	id := routeID(entity, action)
	k.handlers[id] = h
	k.names[id] = entity + "." + action
}

// Actions returns the registered Entity.action names, sorted.
func (k *Kernel) Actions() []string {
	out := make([]string, 0, len(k.names))
	for _, name := range k.names {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Call runs entity.action. Errors, including panics in handlers, are
// reported in the result.
func (k *Kernel) Call(ctx context.Context, entity, action string, p Params) (res *Result) {
	h, ok := k.handlers[routeID(entity, action)]
	if !ok {
		return failure(fmt.Errorf("unknown API action %s.%s", entity, action))
	}

	defer func() {
		if r := recover(); r != nil {
			k.logger.Error("api handler panicked", "entity", entity, "action", action, "panic", r)
			res = failure(fmt.Errorf("%s.%s: internal error: %v", entity, action, r))
		}
	}()

	k.logger.Debug("api call", "entity", entity, "action", action, "params", p.JSON())
	values, err := h(ctx, k.rt, p)
	if err != nil {
		return failure(err)
	}
	return success(values)
}

// SplitAction parses "Entity.action".
func SplitAction(s string) (entity, action string, err error) {
	entity, action, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || entity == "" || action == "" {
		return "", "", fmt.Errorf("malformed API action %q (want Entity.action)", s)
	}
	return entity, action, nil
}

func routeID(entity, action string) string {
	return strings.ToLower(entity) + "." + strings.ToLower(action)
}
