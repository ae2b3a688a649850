// Package shell implements the interactive batch remote-execution shell:
// the command catalog and its parser, the translator into the remote
// protocol's command syntax, the batch execution engine with its CSV audit
// trail, the file-transfer tracker, the session refresh timer, and the REPL
// controller that ties them together.
package shell

import (
	"sort"
	"sync"
)

// ChoiceSet is a runtime-mutable list of valid values for an argument.
// Script and put-file names are discovered from the tenant after the shell
// starts, and must become valid choices (and completion candidates)
// immediately, so readers and writers synchronize on the same lock.
type ChoiceSet struct {
	mu     sync.RWMutex
	values []string
}

// NewChoiceSet creates an empty choice set.
func NewChoiceSet() *ChoiceSet {
	return &ChoiceSet{}
}

// Replace swaps in a new sorted value list.
func (c *ChoiceSet) Replace(values []string) {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = sorted
}

// Values returns a copy of the current values.
func (c *ChoiceSet) Values() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.values...)
}

// Contains reports whether v is a current valid choice.
func (c *ChoiceSet) Contains(v string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, val := range c.values {
		if val == v {
			return true
		}
	}
	return false
}

// Empty reports whether no choices have been loaded yet.
func (c *ChoiceSet) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values) == 0
}
