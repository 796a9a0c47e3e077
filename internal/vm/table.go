package vm

// Table is an open-addressed, linear-probed hash map keyed by interned
// strings, matching the hash table component spec.md §4.3 describes (no
// example in the reference corpus implements a clox-style hash table, so
// this is grounded directly on the spec's algorithm rather than on a
// teacher file — see DESIGN.md). It grows whenever the load factor would
// exceed 0.75, and tracks tombstones (deleted entries) separately from live
// entries so probe chains stay correct after deletion.
type Table struct {
	entries []tableEntry
	count   int // live entries + tombstones
}

type tableEntry struct {
	key   *ObjString // nil means never used; tombstones reuse deletedKey
	value Value
}

const tableMaxLoad = 0.75

// deletedKey marks a tombstone slot: present (non-nil) but logically empty.
var deletedKey = &ObjString{Chars: "\x00tombstone\x00"}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Get returns the value bound to key, if any.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	e := t.findEntry(t.entries, key)
	if e.key == nil || e.key == deletedKey {
		return nil, false
	}
	return e.value, true
}

// Set binds key to value, growing the table first if needed. Reports
// whether this created a brand new key (as opposed to overwriting one).
func (t *Table) Set(key *ObjString, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow()
	}
	e := t.findEntry(t.entries, key)
	isNew := e.key == nil || e.key == deletedKey
	if e.key == nil {
		t.count++
	}
	e.key = key
	e.value = value
	return isNew
}

// Delete removes key, leaving a tombstone so later probe chains that passed
// through this slot still resolve correctly.
func (t *Table) Delete(key *ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = deletedKey
	e.value = true
	return true
}

// FindString is the intern-lookup: returns the existing ObjString with
// matching bytes/hash, if the table already holds one. Used by the string
// interner so byte-equal strings always share one heap object (spec §4.2's
// interning invariant).
func (t *Table) FindString(chars string, hash uint32) *ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	index := hash & mask
	for {
		e := &t.entries[index]
		if e.key == nil {
			return nil
		}
		if e.key != deletedKey && e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) & mask
	}
}

// AddAll copies every live entry of src into t (used by INHERIT to copy a
// superclass's method table into a subclass — spec §4.4).
func (t *Table) AddAll(src *Table) {
	for _, e := range src.entries {
		if e.key != nil && e.key != deletedKey {
			t.Set(e.key, e.value)
		}
	}
}

// Each invokes fn for every live key/value pair; used by the GC to mark
// roots held in globals-like tables.
func (t *Table) Each(fn func(key *ObjString, value Value)) {
	for _, e := range t.entries {
		if e.key != nil && e.key != deletedKey {
			fn(e.key, e.value)
		}
	}
}

// RemoveWhite deletes every entry whose key is unmarked — the GC's "remove
// weak refs" phase over the string interner (spec §4.7 step 3).
func (t *Table) RemoveWhite() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil && e.key != deletedKey && !e.key.Mark {
			e.key = deletedKey
			e.value = true
		}
	}
}

func (t *Table) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	newEntries := make([]tableEntry, newCap)
	newCount := 0
	for _, e := range t.entries {
		if e.key == nil || e.key == deletedKey {
			continue
		}
		dst := t.findEntry(newEntries, e.key)
		dst.key = e.key
		dst.value = e.value
		newCount++
	}
	t.entries = newEntries
	t.count = newCount
}

func (t *Table) findEntry(entries []tableEntry, key *ObjString) *tableEntry {
	mask := uint32(len(entries) - 1)
	index := key.Hash & mask
	var tombstone *tableEntry
	for {
		e := &entries[index]
		switch {
		case e.key == nil:
			if tombstone != nil {
				return tombstone
			}
			return e
		case e.key == deletedKey:
			if tombstone == nil {
				tombstone = e
			}
		case e.key == key:
			return e
		}
		index = (index + 1) & mask
	}
}
