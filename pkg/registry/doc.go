// Package registry tracks the backend inference servers and their model
// catalogs.
//
// The request path reads immutable snapshots; mutation happens on two
// paths only: admin actions (add, remove, enable, disable) and the
// periodic catalog refresher, which pulls each backend's model list and
// flips its health flag. A backend is active when it is both enabled by
// the operator and reachable by the refresher.
package registry
