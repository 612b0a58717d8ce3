// Package middleware implements the composable interceptor pipeline of the
// agent runtime. A Middleware bundles node-style hooks (sequential observers
// and mutators bound to loop phases), wrap-style hooks (nested interceptors
// around model and tool invocations) and an optional state schema extension.
//
// The Chain validates an ordered middleware list at construction and derives
// the execution orders: before_* hooks run in registration order, after_*
// hooks in reverse registration order, and wrap hooks nest so the first
// registered middleware is outermost. The Dispatcher drives node-hook passes,
// merging each hook's result into agent state before the next hook runs and
// honoring only the first jump directive of a pass.
package middleware
