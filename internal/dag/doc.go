// Package dag is a small directed graph over string IDs. The build session
// uses it to find cycles in container chains before resolving values, since
// a cyclic container chain must abort the instances caught in it.
package dag
