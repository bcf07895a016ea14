// Package mid interns property-name tokens. Two Mids made from the same
// name are the same comparable value, whichever handle declared them.
package mid

import (
	"fmt"
	"sync"
)

// Mid is an interned property name. The zero Mid is the empty name.
type Mid struct {
	id uint32
}

// process-wide intern table, populated during static setup and read
// thereafter; late interning takes the write lock
var (
	tableMutex sync.RWMutex
	byName     = map[string]Mid{"": {}}
	names      = []string{""}
)

// Intern returns the Mid for name, creating it on first use.
// The empty name is legal; builtin slots such as `base[""]` use it.
func Intern(name string) Mid {
	tableMutex.RLock()
	m, ok := byName[name]
	tableMutex.RUnlock()
	if ok {
		return m
	}

	tableMutex.Lock()
	defer tableMutex.Unlock()
	// Check again, another goroutine may have won the race
	if m, ok := byName[name]; ok {
		return m
	}
	m = Mid{id: uint32(len(names))}
	names = append(names, name)
	byName[name] = m
	return m
}

// Name returns the property name m was interned from.
func (m Mid) Name() string {
	tableMutex.RLock()
	defer tableMutex.RUnlock()
	if int(m.id) >= len(names) {
		panic(fmt.Sprintf("mid: unknown id %d", m.id))
	}
	return names[m.id]
}

// IsEmpty reports whether m is the empty property name.
func (m Mid) IsEmpty() bool { return m.id == 0 }

func (m Mid) String() string { return m.Name() }

// Len returns the number of distinct names interned so far, the empty name
// included.
func Len() int {
	tableMutex.RLock()
	defer tableMutex.RUnlock()
	return len(names)
}
