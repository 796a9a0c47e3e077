package vm

import "testing"

func TestTableSetGetDelete(t *testing.T) {
	tbl := NewTable()
	a := &ObjString{Chars: "a", Hash: hashString("a")}
	b := &ObjString{Chars: "b", Hash: hashString("b")}

	if isNew := tbl.Set(a, 1.0); !isNew {
		t.Fatal("first Set of a fresh key should report isNew")
	}
	if isNew := tbl.Set(a, 2.0); isNew {
		t.Fatal("overwriting an existing key should not report isNew")
	}

	v, ok := tbl.Get(a)
	if !ok || v.(float64) != 2.0 {
		t.Fatalf("got (%v, %v), want (2, true)", v, ok)
	}

	if _, ok := tbl.Get(b); ok {
		t.Fatal("b was never set")
	}

	if !tbl.Delete(a) {
		t.Fatal("Delete should report true for an existing key")
	}
	if _, ok := tbl.Get(a); ok {
		t.Fatal("a should be gone after Delete")
	}
}

func TestTableTombstoneKeepsProbeChainIntact(t *testing.T) {
	tbl := NewTable()
	// give all three keys the same hash so they share one probe chain, then
	// delete the middle one and confirm the one probed past it is still
	// reachable (spec §4.3's "tombstones keep later probe chains correct").
	// Keys are compared by identity, so the inserted pointers are reused.
	keys := []string{"k0", "k1", "k2"}
	objs := make([]*ObjString, len(keys))
	for i, s := range keys {
		objs[i] = &ObjString{Chars: s, Hash: hashString("k")}
		tbl.Set(objs[i], float64(i))
	}
	tbl.Delete(objs[1])

	v, ok := tbl.Get(objs[2])
	if !ok || v.(float64) != 2.0 {
		t.Fatalf("k2 should still resolve past k1's tombstone, got (%v, %v)", v, ok)
	}
}

func TestTableGrowPreservesEntries(t *testing.T) {
	tbl := NewTable()
	for i := 0; i < 100; i++ {
		s := string(rune('a' + i%26))
		tbl.Set(&ObjString{Chars: s + string(rune('0'+i/26)), Hash: hashString(s)}, i)
	}
	count := 0
	tbl.Each(func(*ObjString, Value) { count++ })
	if count != 100 {
		t.Fatalf("got %d live entries after growth, want 100", count)
	}
}

func TestInternTableDedupesByBytes(t *testing.T) {
	it := newInternTable()
	a := it.intern("hello")
	b := it.intern("hello")
	if a != b {
		t.Fatal("interning the same bytes twice must return the same *ObjString")
	}
	c := it.intern("world")
	if a == c {
		t.Fatal("interning different bytes must not collide")
	}
}
