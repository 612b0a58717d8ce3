// Package agentware is a middleware-driven execution engine for
// conversational agents. A pipeline of independently authored middlewares
// observes, mutates, short-circuits, retries or redirects each step of the
// agent's request/response loop while the runtime merges their contributions
// into shared, schema-validated state.
//
// Most applications interact with the library by:
//  1. Implementing or choosing a model.Model (openai, anthropic, mock)
//  2. Assembling an ordered middleware list (built-ins in package middleware,
//     custom hooks via middleware.New or the single-hook constructors)
//  3. Creating an agent.Agent and calling Invoke per conversation turn
//
// See the examples directory for complete programs.
package agentware

// Version is the current release of agentware.
const Version = "0.1.0"
