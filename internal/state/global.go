// Package state carries the process-wide runtime: config, logger,
// lifecycle. One Global travels through context to the subcommands.
package state

import (
	"context"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"

	"github.com/softkvm/softkvm/log2"
)

type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Config       *Config
	Log          *log2.Log
}

const ContextKey = "run/state-global"

func NewContext(ctx context.Context, g *Global) context.Context {
	if g == nil {
		panic("code error state.NewContext() g=nil")
	}
	return context.WithValue(ctx, ContextKey, g)
}

func GetGlobal(ctx context.Context) (*Global, error) {
	v := ctx.Value(ContextKey)
	if v == nil {
		return nil, errors.Errorf("context['%s'] is empty", ContextKey)
	}
	if g, ok := v.(*Global); ok {
		return g, nil
	}
	return nil, errors.Errorf("context['%s'] expected type *Global", ContextKey)
}

func MustGetGlobal(ctx context.Context) *Global {
	g, err := GetGlobal(ctx)
	if err != nil {
		panic(err)
	}
	return g
}
