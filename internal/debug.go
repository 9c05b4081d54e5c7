package internal

import (
	"context"
	"io"
	"time"

	"github.com/davidmdm/ansi"
)

type debugKey struct{}

func WithDebugFlag(ctx context.Context, debug *bool) context.Context {
	return context.WithValue(ctx, debugKey{}, debug)
}

func IsDebug(ctx context.Context) bool {
	debug, _ := ctx.Value(debugKey{}).(*bool)
	return debug != nil && *debug
}

func Debug(ctx context.Context) ansi.Terminal {
	if !IsDebug(ctx) {
		return ansi.Terminal{Writer: io.Discard}
	}
	return ansi.Terminal{Writer: Stderr(ctx)}
}

func DebugTimer(ctx context.Context, msg string) func() {
	start := time.Now()
	Debug(ctx).Printf("start: %s\n", msg)
	return func() {
		Debug(ctx).Printf("done:  %s: %s\n\n", msg, time.Since(start).Round(time.Millisecond))
	}
}
