package state

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Vars holds the shell variables. Every variable is exported to the
// environment of child processes.
type Vars struct {
	rw   sync.RWMutex
	vars map[string]string
}

// NewVars creates an empty variable set.
func NewVars() *Vars {
	return &Vars{}
}

// NewVarsFromList creates a variable set from KEY=value pairs, like the ones
// returned by os.Environ. Entries without '=' are set to the empty string.
func NewVarsFromList(environ []string) *Vars {
	out := &Vars{}
	out.SetList(environ)
	return out
}

// SetList sets each KEY=value pair in order.
func (v *Vars) SetList(environ []string) {
	for _, e := range environ {
		split := strings.SplitN(e, "=", 2)
		key, value := split[0], ""
		if len(split) > 1 {
			value = split[1]
		}
		if key == "" {
			continue
		}
		v.Set(key, value)
	}
}

// Set assigns a variable.
func (v *Vars) Set(key, value string) {
	v.rw.Lock()
	defer v.rw.Unlock()

	if v.vars == nil {
		v.vars = make(map[string]string)
	}
	v.vars[key] = value
}

// Unset removes a variable.
func (v *Vars) Unset(key string) {
	v.rw.Lock()
	defer v.rw.Unlock()
	delete(v.vars, key)
}

// Lookup returns a variable and whether it is set.
func (v *Vars) Lookup(key string) (string, bool) {
	v.rw.RLock()
	defer v.rw.RUnlock()

	val, ok := v.vars[key]
	return val, ok
}

// Get returns a variable, empty if it is unset.
func (v *Vars) Get(key string) string {
	val, _ := v.Lookup(key)
	return val
}

// Environ returns the variables as sorted KEY=value pairs.
func (v *Vars) Environ() []string {
	v.rw.RLock()
	defer v.rw.RUnlock()

	env := make([]string, 0, len(v.vars))
	for k, val := range v.vars {
		env = append(env, fmt.Sprintf("%s=%s", k, val))
	}
	sort.Strings(env)
	return env
}

// Clone returns an independent copy.
func (v *Vars) Clone() *Vars {
	return NewVarsFromList(v.Environ())
}
