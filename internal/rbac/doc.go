// Package rbac implements the role-based access control core of the
// application: effective permission resolution, full-replace assignment
// synchronization, the super-admin bypass rule and the write-invalidated
// cache of the role/permission graph.
//
// All reads derive from the database; the graph cache is an optimization
// only and the resolver falls back to the entity store whenever the cached
// entry is missing or unreadable.
package rbac
