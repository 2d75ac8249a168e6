package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Resource is one REST resource of the order API: a path below the API
// prefix, the guards that run before its handlers, and its routes
type Resource struct {
	path   string
	public bool
	guards []gin.HandlerFunc
	routes []route
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewResource starts a resource mounted at path, e.g. "/orders"
func NewResource(path string) *Resource {
	return &Resource{path: path}
}

// Public mounts the resource outside the API auth chain
func (r *Resource) Public() *Resource {
	r.public = true
	return r
}

// Guard adds handlers that run before every route of the resource
func (r *Resource) Guard(guards ...gin.HandlerFunc) *Resource {
	r.guards = append(r.guards, guards...)
	return r
}

func (r *Resource) add(method, path string, handlers []gin.HandlerFunc) *Resource {
	r.routes = append(r.routes, route{method: method, path: path, handlers: handlers})
	return r
}

func (r *Resource) Get(path string, handlers ...gin.HandlerFunc) *Resource {
	return r.add(http.MethodGet, path, handlers)
}

func (r *Resource) Post(path string, handlers ...gin.HandlerFunc) *Resource {
	return r.add(http.MethodPost, path, handlers)
}

func (r *Resource) Put(path string, handlers ...gin.HandlerFunc) *Resource {
	return r.add(http.MethodPut, path, handlers)
}

func (r *Resource) Delete(path string, handlers ...gin.HandlerFunc) *Resource {
	return r.add(http.MethodDelete, path, handlers)
}

// API collects resources and mounts them under one versioned prefix.
// Auth handlers run for every resource that is not Public.
type API struct {
	engine    *gin.Engine
	prefix    string
	auth      []gin.HandlerFunc
	resources []*Resource
}

// NewAPI creates an API mounted at prefix, e.g. "/api/v1"
func NewAPI(engine *gin.Engine, prefix string, auth ...gin.HandlerFunc) *API {
	return &API{engine: engine, prefix: prefix, auth: auth}
}

// Add queues resources for Mount
func (a *API) Add(resources ...*Resource) *API {
	a.resources = append(a.resources, resources...)
	return a
}

// Mount registers every queued resource with the engine
func (a *API) Mount() {
	open := a.engine.Group(a.prefix)
	guarded := a.engine.Group(a.prefix, a.auth...)
	for _, res := range a.resources {
		parent := guarded
		if res.public {
			parent = open
		}
		group := parent.Group(res.path, res.guards...)
		for _, rt := range res.routes {
			group.Handle(rt.method, rt.path, rt.handlers...)
		}
	}
}
