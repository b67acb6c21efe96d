// Package inspect exposes a container's entries and type queries over HTTP.
package inspect

import (
	"errors"
	"net/http"
	"reflect"
	"sort"

	"github.com/km-arc/go-registry/framework/container"
	gohttp "github.com/km-arc/go-registry/framework/http"
	"github.com/km-arc/go-registry/framework/routing"
)

// EntryView is the JSON form of a container.Entry.
type EntryView struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	Scope    string `json:"scope,omitempty"`
	Declared string `json:"declared,omitempty"`
	Produced string `json:"produced,omitempty"`
	Type     string `json:"type,omitempty"`
}

// NamesView is the JSON form of a NamesForType result.
type NamesView struct {
	Type                 string   `json:"type"`
	IncludeAncestors     bool     `json:"includeAncestors"`
	IncludeNonSingletons bool     `json:"includeNonSingletons"`
	Names                []string `json:"names"`
}

// Handler serves read-only views of a container. None of its endpoints
// resolve entries.
type Handler struct {
	c *container.Container
}

// NewHandler creates a Handler for c.
func NewHandler(c *container.Container) *Handler {
	return &Handler{c: c}
}

// Routes mounts the endpoints on r:
//
//	GET /entries          → all entries
//	GET /entries/{name}   → one entry
//	GET /types            → every known TypeKey
//	GET /names?type=...   → NamesForType
func (h *Handler) Routes(r *routing.Router) {
	r.Get("/entries", h.Entries)
	r.Get("/entries/{name}", h.Entry)
	r.Get("/types", h.Types)
	r.Get("/names", h.Names)
}

// Entries lists every entry in registration order.
func (h *Handler) Entries(w http.ResponseWriter, r *http.Request) {
	entries := h.c.Entries()
	out := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, view(e))
	}
	gohttp.NewResponse(w).Success(out)
}

// Entry shows a single entry. Factory-prefixed names are accepted.
func (h *Handler) Entry(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	name := gohttp.NewRequest(r).RouteParam("name")
	e, err := h.c.Entry(name)
	if errors.Is(err, container.ErrNoSuchEntry) {
		res.NotFound(err.Error())
		return
	}
	if err != nil {
		res.ServerError(err.Error())
		return
	}
	res.Success(view(e))
}

// Types lists the TypeKey of every type the container knows about.
func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	known := h.c.KnownTypes()
	keys := make([]string, 0, len(known))
	for k := range known {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	gohttp.NewResponse(w).Success(keys)
}

// Names runs NamesForType for the type named by the "type" query parameter.
// "ancestors" and "nonSingletons" are optional booleans.
//
// Only types listed by /types can be named here: a reflect.Type cannot be
// rebuilt from its key, so an interface that is merely embedded in a
// declared or produced type (repository.Repository inside
// repository.UserRepository) is rejected as unknown, although the Go API
// matches it.
func (h *Handler) Names(w http.ResponseWriter, r *http.Request) {
	req := gohttp.NewRequest(r)
	res := gohttp.NewResponse(w)

	key := req.Query("type")
	if key == "" {
		res.BadRequest("missing query parameter: type")
		return
	}
	t, ok := h.c.KnownTypes()[key]
	if !ok {
		res.BadRequest("unknown type: " + key)
		return
	}
	ancestors, err := req.QueryBool("ancestors", false)
	if err != nil {
		res.BadRequest(err.Error())
		return
	}
	nonSingletons, err := req.QueryBool("nonSingletons", false)
	if err != nil {
		res.BadRequest(err.Error())
		return
	}

	names := h.c.NamesForType(container.Query{
		Type:                 t,
		IncludeAncestors:     ancestors,
		IncludeNonSingletons: nonSingletons,
	})
	if names == nil {
		names = []string{}
	}
	res.Success(NamesView{
		Type:                 key,
		IncludeAncestors:     ancestors,
		IncludeNonSingletons: nonSingletons,
		Names:                names,
	})
}

func view(e container.Entry) EntryView {
	v := EntryView{Name: e.Name, State: e.State.String(), Type: typeString(e.Type)}
	if d := e.Descriptor; d != nil {
		v.Scope = e.Scope.String()
		v.Declared = typeString(d.DeclaredType())
		if p, ok := d.ProducedType(); ok {
			v.Produced = typeString(p)
		}
	}
	return v
}

func typeString(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}
