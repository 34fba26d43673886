// Package mockregistry serves fake Docker Hub and Quay.io build APIs.
//
// Every repository requested gets its own build history that moves through
// the registry's states on a randomised schedule, so a demo or a manual run
// of the CLI sees statuses change over time without touching a real
// registry.
package mockregistry
