package core

import "fmt"

// ConfigError reports an invalid runtime configuration: duplicate middleware
// names, colliding state schema fields, a hook writing a field outside its
// declared schema, or a jump directive naming an undeclared target. It is
// always fatal and never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config error: " + e.Reason }

// Configf creates a ConfigError with a formatted reason.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// HookError reports a failure raised by a node-style hook. Node hooks have no
// enclosing handler, so a HookError terminates the invocation.
type HookError struct {
	Middleware string
	Phase      Phase
	Err        error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %s/%s: %v", e.Middleware, e.Phase, e.Err)
}

// Unwrap exposes the underlying hook failure for errors.Is / errors.As.
func (e *HookError) Unwrap() error { return e.Err }
