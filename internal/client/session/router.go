package session

import "github.com/dmitrijs2005/medtrack/internal/client/models"

// Router applies the routing policy to a Navigator whenever the principal
// or the location changes.
type Router struct {
	store       *Store
	nav         *Navigator
	unsubscribe func()
}

func NewRouter(store *Store, nav *Navigator) *Router {
	r := &Router{store: store, nav: nav}
	r.unsubscribe = store.Subscribe(func(*models.Principal) { r.enforce() })
	return r
}

// Go navigates to location, then redirects if the policy says so.
func (r *Router) Go(location string) {
	r.nav.Push(location)
	r.enforce()
}

// Current returns the location to show and whether it may render yet.
func (r *Router) Current() (string, Gating) {
	loc := r.nav.Current()
	p, ready := r.store.Snapshot()
	return loc, Gate(p, ready, loc)
}

func (r *Router) Close() {
	r.unsubscribe()
}

func (r *Router) enforce() {
	p, ready := r.store.Snapshot()
	if d := Decide(p, ready, r.nav.Current()); d.Redirect != "" {
		r.nav.Push(d.Redirect)
	}
}
