package endpointset

import (
	"reflect"
	"testing"
)

func TestSet_PutGet(t *testing.T) {
	s := New[int]()
	if _, ok := s.Get("a"); ok {
		t.Fatal("expected a miss on an empty set")
	}

	s.Put("a", 1)
	v, ok := s.Get("a")
	if !ok || v != 1 {
		t.Fatalf("expected (1, true), got (%v, %v)", v, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("expected len 1, got %d", s.Len())
	}
}

func TestSet_PutOverwritesInPlace(t *testing.T) {
	s := New[int]()
	s.Put("a", 1)
	s.Put("a", 2)

	if s.Len() != 1 {
		t.Fatalf("expected overwrite to keep len at 1, got %d", s.Len())
	}
	v, _ := s.Get("a")
	if v != 2 {
		t.Fatalf("expected overwritten value 2, got %d", v)
	}
}

func TestSet_Delete(t *testing.T) {
	s := New[int]()
	s.Put("a", 1)

	v, ok := s.Delete("a")
	if !ok || v != 1 {
		t.Fatalf("expected (1, true), got (%v, %v)", v, ok)
	}
	if s.Len() != 0 {
		t.Fatalf("expected len 0 after delete, got %d", s.Len())
	}
	if _, ok := s.Get("a"); ok {
		t.Fatal("expected a miss after delete")
	}

	if _, ok := s.Delete("a"); ok {
		t.Fatal("expected deleting a missing key to report false")
	}
}

// Each and Values must walk entries in key order regardless of insertion
// order.
func TestSet_EachIsKeyOrdered(t *testing.T) {
	s := New[string]()
	s.Put("c", "C")
	s.Put("a", "A")
	s.Put("b", "B")

	var keys []string
	s.Each(func(key string, v string) { keys = append(keys, key) })

	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("expected key-ordered walk %v, got %v", want, keys)
	}

	if vals := s.Values(); !reflect.DeepEqual(vals, []string{"A", "B", "C"}) {
		t.Fatalf("expected values in key order, got %v", vals)
	}
}

func TestSet_Drain(t *testing.T) {
	s := New[int]()
	s.Put("b", 2)
	s.Put("a", 1)

	var seen []string
	s.Drain(func(key string, v int) { seen = append(seen, key) })

	if !reflect.DeepEqual(seen, []string{"a", "b"}) {
		t.Fatalf("expected drain to visit in key order, got %v", seen)
	}
	if s.Len() != 0 {
		t.Fatalf("expected set to be empty after drain, got len %d", s.Len())
	}
}

// Drain empties the set before invoking its callback, so a callback that
// re-Puts a key back into the very set being drained must see that Put
// stick: the Manager's available sweep relies on exactly this to keep an
// endpoint that is still named by the resolver.
func TestSet_DrainAllowsRePutIntoSameSet(t *testing.T) {
	s := New[int]()
	s.Put("a", 1)
	s.Put("b", 2)

	s.Drain(func(key string, v int) {
		if key == "a" {
			s.Put(key, v)
		}
	})

	if s.Len() != 1 {
		t.Fatalf("expected the re-Put key to survive the drain, got len %d", s.Len())
	}
	v, ok := s.Get("a")
	if !ok || v != 1 {
		t.Fatalf("expected a:1 to survive, got (%v, %v)", v, ok)
	}
	if _, ok := s.Get("b"); ok {
		t.Fatal("expected b to be dropped, since its callback never re-Put it")
	}
}

// The real usage pattern: Drain one set, re-Put surviving entries into a
// second set.
func TestSet_DrainIntoAnotherSet(t *testing.T) {
	src := New[int]()
	dst := New[int]()
	src.Put("a", 1)
	src.Put("b", 2)

	src.Drain(func(key string, v int) {
		if key == "a" {
			dst.Put(key, v)
		}
	})

	if src.Len() != 0 {
		t.Fatalf("expected src to be empty after drain, got len %d", src.Len())
	}
	v, ok := dst.Get("a")
	if !ok || v != 1 {
		t.Fatalf("expected a:1 to survive into dst, got (%v, %v)", v, ok)
	}
}
