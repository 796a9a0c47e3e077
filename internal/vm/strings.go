package vm

// internTable is the VM's string interner: a Table used purely as a
// (bytes, hash) -> *ObjString set (spec §3, §4.3's "intern-lookup by
// (bytes, length, hash)"). It is shared between the compiler (which
// interns every identifier and string literal it emits as a constant) and
// the running VM (which interns every string produced by concatenation),
// so byte-equal strings are reference-equal everywhere — the interning
// invariant spec §8 tests for.
type internTable struct {
	table *Table

	// onAlloc, when set, is called with every freshly allocated ObjString so
	// the VM can add it to the sweep list and GC byte accounting (spec
	// §4.7). It is nil for an internTable not attached to a VM (as in unit
	// tests), in which case nothing ever collects.
	onAlloc func(*ObjString)
}

func newInternTable() *internTable {
	return &internTable{table: NewTable()}
}

// intern returns the canonical *ObjString for s, allocating one and
// registering it the first time s is seen.
func (it *internTable) intern(s string) *ObjString {
	hash := hashString(s)
	if existing := it.table.FindString(s, hash); existing != nil {
		return existing
	}
	obj := &ObjString{Chars: s, Hash: hash}
	// Pre-mark before the string ever enters the table: onAlloc below may
	// run a full collection (spec §4.7's allocation-time trigger), and its
	// weak-reference sweep over this very table would otherwise see a
	// brand new, still-unmarked entry and tombstone it on the spot, since
	// nothing else roots it yet. clox guards the equivalent window by
	// pushing the new string onto the VM stack before tableSet; marking it
	// directly does the same job without needing a stack to push onto.
	obj.Mark = true
	it.table.Set(obj, true)
	if it.onAlloc != nil {
		it.onAlloc(obj)
	}
	return obj
}

// removeWhite is the GC's weak-reference sweep over the interner (spec
// §4.7 step 3).
func (it *internTable) removeWhite() {
	it.table.RemoveWhite()
}

// each visits every interned string. The GC does not use it: it roots the
// "init" string through vm.initString, and interning itself never roots a
// string (spec §3's "the interner never roots a string by itself").
func (it *internTable) each(fn func(s *ObjString)) {
	it.table.Each(func(key *ObjString, _ Value) { fn(key) })
}
