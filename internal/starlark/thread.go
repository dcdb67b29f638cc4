package starlark

import (
	"context"

	"go.starlark.net/starlark"
)

// NewThread creates a new Starlark thread for a single evaluation.
// Templates never print and never load modules.
func NewThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, _ string) {
			// Template execution should not print - this is a no-op
		},
	}
}

// NewThreadContext creates a thread that is cancelled when ctx is done.
// The returned stop function must be called once evaluation finishes.
func NewThreadContext(ctx context.Context, name string) (*starlark.Thread, func() bool) {
	thread := NewThread(name)
	if ctx.Done() == nil {
		return thread, func() bool { return true }
	}
	if ctx.Err() != nil {
		thread.Cancel(context.Cause(ctx).Error())
		return thread, func() bool { return true }
	}
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	return thread, stop
}
