package strategy

import (
	"github.com/monkbacktest/engine/order"
	"github.com/monkbacktest/engine/position"
	"github.com/monkbacktest/engine/simerrors"
)

// Factory constructs a fresh Strategy instance.
type Factory func() Strategy

var registry = map[string]Factory{
	"noop": func() Strategy { return &NoopStrategy{} },
}

// Register associates name with factory, so config.Config's STRATEGY value
// can resolve to a concrete implementation without the engine importing
// every strategy package directly. A strategy package's init() typically
// calls this.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// Resolve looks up name in the registry and constructs a fresh instance.
func Resolve(name string) (Strategy, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, simerrors.Newf(simerrors.SettingError, "unknown strategy %q", name)
	}
	return factory(), nil
}

// NoopStrategy implements Strategy with every callback a no-op. It is
// registered as "noop" and useful as a smoke-test default.
type NoopStrategy struct{}

func (*NoopStrategy) Setup(*Context) error { return nil }
func (*NoopStrategy) Tick(*Context) error  { return nil }
func (*NoopStrategy) OnTrade(*Context, *order.Trade, position.Effect) error {
	return nil
}
func (*NoopStrategy) HandleBar(*Context) error { return nil }
