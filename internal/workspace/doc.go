// Package workspace manages the scratch directory kit checkouts are cloned
// into for the duration of a build.
package workspace
