package registry

import (
	"context"

	"github.com/randalmurphal/singleton/pkg/singleton/key"
)

type chainCtxKey struct{}

// chainLink records one key under construction. Links form a stack through
// parent, innermost first.
type chainLink struct {
	reg    *Registry
	key    key.Key
	parent *chainLink
}

func withConstructing(ctx context.Context, r *Registry, k key.Key) context.Context {
	parent, _ := ctx.Value(chainCtxKey{}).(*chainLink)
	return context.WithValue(ctx, chainCtxKey{}, &chainLink{reg: r, key: k, parent: parent})
}

// constructingIn reports whether ctx belongs to a builder that is constructing k in r.
func constructingIn(ctx context.Context, r *Registry, k key.Key) bool {
	for l, _ := ctx.Value(chainCtxKey{}).(*chainLink); l != nil; l = l.parent {
		if l.reg == r && l.key == k {
			return true
		}
	}
	return false
}

// constructionChain returns the keys under construction, outermost first.
func constructionChain(ctx context.Context) []key.Key {
	var chain []key.Key
	for l, _ := ctx.Value(chainCtxKey{}).(*chainLink); l != nil; l = l.parent {
		chain = append(chain, l.key)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
