package core

import (
	"regexp"
	"strconv"

	"golang.org/x/text/cases"
)

var nameFolder = cases.Fold()

// foldName is the canonical key for a display name. Two names that fold to
// the same key are treated as the same name.
func foldName(name string) string {
	return nameFolder.String(name)
}

type nameEntry[V any] struct {
	display string
	value   V
}

// NameManager is a case-insensitive, collision-avoiding registry from
// display names to associated values. The first spelling used for a name is
// the one preserved for display; later insert attempts that differ only in
// case are collisions.
//
// Observers subscribed with Subscribe are notified synchronously after each
// mutation, or once per batch when the caller wraps mutations in
// BeginUpdate/EndUpdate.
type NameManager[V any] struct {
	entries map[string]nameEntry[V]
	order   []string // folded keys in insertion order

	observers []func()
	suspended int
	dirty     bool
}

func NewNameManager[V any]() *NameManager[V] {
	return &NameManager[V]{
		entries: make(map[string]nameEntry[V]),
	}
}

func (m *NameManager[V]) Size() int { return len(m.entries) }

func (m *NameManager[V]) HasName(name string) bool {
	_, ok := m.entries[foldName(name)]
	return ok
}

// Get returns the value stored for the name (case-insensitively).
func (m *NameManager[V]) Get(name string) (V, bool) {
	e, ok := m.entries[foldName(name)]
	return e.value, ok
}

// DisplayName returns the first-seen spelling for the name, or the input
// unchanged if the name is not registered.
func (m *NameManager[V]) DisplayName(name string) string {
	if e, ok := m.entries[foldName(name)]; ok {
		return e.display
	}
	return name
}

// UsedNames returns every registered display name in insertion order.
func (m *NameManager[V]) UsedNames() []string {
	res := make([]string, 0, len(m.order))
	for _, key := range m.order {
		res = append(res, m.entries[key].display)
	}
	return res
}

// Put inserts the name if it is not already present. It returns false, with
// no state change, on a collision.
func (m *NameManager[V]) Put(name string, value V) bool {
	key := foldName(name)
	if _, exists := m.entries[key]; exists {
		return false
	}
	m.entries[key] = nameEntry[V]{display: name, value: value}
	m.order = append(m.order, key)
	m.notify()
	return true
}

// PutUniquely inserts the name, generating a unique variant if needed, and
// returns the name actually used. It cannot fail.
func (m *NameManager[V]) PutUniquely(name string, value V) string {
	unique := m.GenerateUniqueName(name)
	m.Put(unique, value)
	return unique
}

// Update replaces the value for an existing name without touching its
// display spelling. Returns false if the name is unknown.
func (m *NameManager[V]) Update(name string, value V) bool {
	key := foldName(name)
	e, ok := m.entries[key]
	if !ok {
		return false
	}
	e.value = value
	m.entries[key] = e
	return true
}

// Remove deletes the name case-insensitively. Removing an absent name is a
// no-op.
func (m *NameManager[V]) Remove(name string) {
	key := foldName(name)
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.notify()
}

func (m *NameManager[V]) Clear() {
	if len(m.entries) == 0 {
		return
	}
	m.entries = make(map[string]nameEntry[V])
	m.order = nil
	m.notify()
}

var trailingInt = regexp.MustCompile(`^(.*?)(\d+)$`)

// GenerateUniqueName returns requested unchanged if it is unused. Otherwise
// a trailing integer is incremented ("foo2" -> "foo3", "222" -> "223"), or
// "2" is appended when there is none ("foo" -> "foo2"), until the name is
// free.
func (m *NameManager[V]) GenerateUniqueName(requested string) string {
	name := requested
	for m.HasName(name) {
		if match := trailingInt.FindStringSubmatch(name); match != nil {
			n, err := strconv.Atoi(match[2])
			if err != nil {
				// Digit run too large for an int; fall back to suffixing.
				name += "2"
				continue
			}
			name = match[1] + strconv.Itoa(n+1)
		} else {
			name += "2"
		}
	}
	return name
}

// Subscribe registers a change observer. Observers run synchronously on the
// mutating call; there is no unsubscribe because registries live as long as
// their workspace.
func (m *NameManager[V]) Subscribe(fn func()) {
	m.observers = append(m.observers, fn)
}

// BeginUpdate suspends observer notification until the matching EndUpdate,
// which fires a single notification if anything changed. Used to guarantee
// exactly one notification per batched mutation.
func (m *NameManager[V]) BeginUpdate() {
	m.suspended++
}

func (m *NameManager[V]) EndUpdate() {
	m.suspended--
	if m.suspended == 0 && m.dirty {
		m.dirty = false
		for _, fn := range m.observers {
			fn()
		}
	}
}

func (m *NameManager[V]) notify() {
	if m.suspended > 0 {
		m.dirty = true
		return
	}
	for _, fn := range m.observers {
		fn()
	}
}

// ----------------------------------
// Variables

// VariableInfo is the per-variable bookkeeping the workspace needs: every
// field referencing the variable (for rename propagation) and how many
// procedures currently use it as an argument (such variables cannot be
// deleted).
type VariableInfo struct {
	Fields  []*Field
	ArgRefs int
}

// VariableNameManager specializes NameManager for workspace variables.
type VariableNameManager struct {
	NameManager[*VariableInfo]
}

func NewVariableNameManager() *VariableNameManager {
	return &VariableNameManager{
		NameManager: NameManager[*VariableInfo]{
			entries: make(map[string]nameEntry[*VariableInfo]),
		},
	}
}

// AddVariable registers the name if needed and records the referencing
// field, returning the variable's info.
func (m *VariableNameManager) AddVariable(name string, field *Field) *VariableInfo {
	info, ok := m.Get(name)
	if !ok {
		info = &VariableInfo{}
		m.Put(name, info)
	}
	if field != nil {
		info.Fields = append(info.Fields, field)
	}
	return info
}

// MarkArgument adjusts the procedure-argument reference count for the name,
// registering it first if it is new. delta is +1 or -1. Observers are
// notified either way: deletability depends on the count.
func (m *VariableNameManager) MarkArgument(name string, delta int) {
	info, ok := m.Get(name)
	if !ok {
		info = &VariableInfo{}
	}
	info.ArgRefs += delta
	if info.ArgRefs < 0 {
		info.ArgRefs = 0
	}
	if !ok {
		m.Put(name, info)
		return
	}
	m.notify()
}

// IsArgument reports whether any procedure uses the name as an argument.
func (m *VariableNameManager) IsArgument(name string) bool {
	info, ok := m.Get(name)
	return ok && info.ArgRefs > 0
}

// GenerateVariableName produces a fresh short name: single lowercase
// letters starting at i and skipping l (too close to 1), then i2, j2, and
// so on, never returning a name already in use.
func (m *VariableNameManager) GenerateVariableName() string {
	for round := 1; ; round++ {
		for c := byte('i'); c <= 'z'; c++ {
			if c == 'l' {
				continue
			}
			name := string(c)
			if round > 1 {
				name += strconv.Itoa(round)
			}
			if !m.HasName(name) {
				return name
			}
		}
	}
}
