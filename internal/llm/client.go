package llm

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/tutorgen-ai/tutorgen/internal/cache"
	"github.com/tutorgen-ai/tutorgen/internal/llmlog"
)

// CachedCaller wraps a Caller with the response cache and the call log.
// Identical requests hit the cache instead of the provider, within and across
// process lifetimes; concurrent identical requests are collapsed into one
// upstream call. A cache persistence failure is logged as a warning and the
// response is returned anyway; caching never fails a generation.
type CachedCaller struct {
	caller Caller
	store  cache.Store
	log    *llmlog.Logger
	group  singleflight.Group
}

// NewCachedCaller creates a CachedCaller. The store and log are injected so
// callers control backing file, enablement, and log destination.
func NewCachedCaller(caller Caller, store cache.Store, log *llmlog.Logger) *CachedCaller {
	return &CachedCaller{caller: caller, store: store, log: log}
}

func (c *CachedCaller) Name() string { return c.caller.Name() }

func (c *CachedCaller) Model() string { return c.caller.Model() }

func (c *CachedCaller) Generate(ctx context.Context, req Request) (Response, error) {
	c.log.Prompt(req.Prompt)

	fp := cache.BuildFingerprint(c.caller.Name(), c.caller.Model(), req.Prompt)
	if text, ok := c.store.Get(fp); ok {
		c.log.CachedResponse(text)
		return Response{Text: text, Cached: true}, nil
	}

	v, err, shared := c.group.Do(fp, func() (any, error) {
		resp, err := c.caller.Generate(ctx, req)
		if err != nil {
			c.log.Errorf("provider %s: %v", c.caller.Name(), err)
			return Response{}, err
		}
		c.log.Response(resp.Text)
		if perr := c.store.Put(fp, resp.Text); perr != nil {
			c.log.Warningf("failed to save cache: %v", perr)
		}
		return resp, nil
	})
	if err != nil {
		return Response{}, err
	}
	resp := v.(Response)
	resp.Cached = resp.Cached || shared
	return resp, nil
}
