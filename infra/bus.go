package infra

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

// NullBus is a no-op event bus implementation.
type NullBus struct{}

func (NullBus) Emit(ctx context.Context, event string, fields map[string]any) error { return nil }

// LogBus writes every event to a logger at debug level.
type LogBus struct{ Log hclog.Logger }

func (b LogBus) Emit(ctx context.Context, event string, fields map[string]any) error {
	args := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		args = append(args, k, v)
	}
	b.Log.Debug(event, args...)
	return nil
}

// MultiBus fans an event out to several buses.
type MultiBus []plugin.EventBus

func (m MultiBus) Emit(ctx context.Context, event string, fields map[string]any) error {
	var result *multierror.Error
	for _, b := range m {
		if err := b.Emit(ctx, event, fields); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

var (
	_ plugin.EventBus = NullBus{}
	_ plugin.EventBus = LogBus{}
	_ plugin.EventBus = MultiBus{}
)
