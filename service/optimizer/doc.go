// Package optimizer rewrites guidebook task graphs before execution,
// pruning work that is already satisfied. Passes never mutate their input:
// composites on the path to a change are copied, untouched subtrees are
// shared.
package optimizer
