package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/hupe1980/agentware/core"
	"github.com/hupe1980/agentware/model"
)

// ModelCache returns a wrap_model_call middleware that short-circuits
// repeated requests with a cached response, never reaching the inner
// handler on a hit. The cache key covers system prompt, model reference and
// message history. The shared cache map is the middleware's construction
// concern, not per-invocation state, and is guarded for concurrent
// invocations.
func ModelCache(name string) *Middleware {
	var mu sync.RWMutex
	cache := map[string]*model.Response{}

	return WrapModelCall(name, func(ic *core.InvocationContext, req model.Request, next ModelHandler) (*model.Response, error) {
		key := cacheKey(req)

		mu.RLock()
		cached, hit := cache[key]
		mu.RUnlock()
		if hit {
			ic.LogDebug("model.cache_hit", "middleware", name)
			// Copy so an outer hook mutating the returned response cannot
			// corrupt the cached entry.
			c := *cached
			return &c, nil
		}

		resp, err := next(ic.Context, req)
		if err != nil {
			return nil, err
		}

		stored := *resp
		mu.Lock()
		cache[key] = &stored
		mu.Unlock()
		return resp, nil
	})
}

func cacheKey(req model.Request) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(req.System)
	_ = enc.Encode(req.Model)
	for _, m := range req.Messages {
		_ = enc.Encode(m.Role)
		_ = enc.Encode(m.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}
