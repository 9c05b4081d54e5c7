package internal

import (
	"context"
	"io"
	"os"
)

type (
	stdoutKey struct{}
	stderrKey struct{}
	stdinKey  struct{}
)

// WithStdio redirects the streams used by commands and by the processes they
// launch. A nil stream keeps the current one.
func WithStdio(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) context.Context {
	if stdin != nil {
		ctx = context.WithValue(ctx, stdinKey{}, stdin)
	}
	if stdout != nil {
		ctx = context.WithValue(ctx, stdoutKey{}, stdout)
	}
	if stderr != nil {
		ctx = context.WithValue(ctx, stderrKey{}, stderr)
	}
	return ctx
}

func Stdout(ctx context.Context) io.Writer {
	w, ok := ctx.Value(stdoutKey{}).(io.Writer)
	if !ok {
		return os.Stdout
	}
	return w
}

func Stderr(ctx context.Context) io.Writer {
	w, ok := ctx.Value(stderrKey{}).(io.Writer)
	if !ok {
		return os.Stderr
	}
	return w
}

func Stdin(ctx context.Context) io.Reader {
	r, ok := ctx.Value(stdinKey{}).(io.Reader)
	if !ok {
		return os.Stdin
	}
	return r
}
