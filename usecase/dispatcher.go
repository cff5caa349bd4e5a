package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fastygo/tracker/domain"
)

type CommandHandler func(ctx context.Context, payload interface{}) (interface{}, error)
type QueryHandler func(ctx context.Context, params interface{}) (interface{}, error)

// Dispatcher routes named commands and queries to the use case that
// registered them, so transport code does not depend on concrete use cases.
type Dispatcher struct {
	cmdHandlers map[string]CommandHandler
	qryHandlers map[string]QueryHandler
	mu          sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		cmdHandlers: make(map[string]CommandHandler),
		qryHandlers: make(map[string]QueryHandler),
	}
}

func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cmdHandlers[name] = handler
}

func (d *Dispatcher) RegisterQuery(name string, handler QueryHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.qryHandlers[name] = handler
}

func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.cmdHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, notRegistered("command", name)
	}
	return handler(ctx, payload)
}

func (d *Dispatcher) ExecuteQuery(ctx context.Context, name string, params interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.qryHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, notRegistered("query", name)
	}
	return handler(ctx, params)
}

// Queries lists registered query names, sorted.
func (d *Dispatcher) Queries() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.qryHandlers))
	for name := range d.qryHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Query runs a query and asserts its result type.
func Query[R any](ctx context.Context, d *Dispatcher, name string, params interface{}) (R, error) {
	var zero R
	out, err := d.ExecuteQuery(ctx, name, params)
	if err != nil {
		return zero, err
	}
	result, ok := out.(R)
	if !ok {
		return zero, domain.NewError(domain.ErrCodeInternal, fmt.Sprintf("query %s returned %T", name, out))
	}
	return result, nil
}

// Params asserts the parameter type a handler was registered for.
func Params[P any](name string, params interface{}) (P, error) {
	p, ok := params.(P)
	if !ok {
		var zero P
		return zero, domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("%s: unexpected parameters %T", name, params))
	}
	return p, nil
}

func notRegistered(kind, name string) error {
	return domain.NewError(domain.ErrCodeInternal, fmt.Sprintf("%s handler %s not registered", kind, name))
}
