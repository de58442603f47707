// Package model holds the loaded representation of a guidebook and of the
// profile that remembers answers between sessions. The task graph itself
// lives in the graph sub-package.
package model
