package forms

import (
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	st := NewMemoryStore()

	if _, ok := st.Get("u1"); ok {
		t.Fatal("empty store should miss")
	}

	s := NewSession("u1", "tpl1", "doc1", nil)
	st.Put("u1", s)

	got, ok := st.Get("u1")
	if !ok || got != s {
		t.Fatalf("Get returned %v/%v; want the stored session", got, ok)
	}

	st.Delete("u1")
	if _, ok := st.Get("u1"); ok {
		t.Fatal("deleted key should miss")
	}

	// Deleting a missing key is a no-op.
	st.Delete("u1")
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	st := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("user-%d", i%10)
			st.Put(key, NewSession(key, "tpl", "doc", nil))
			st.Get(key)
			st.Delete(key)
		}(i)
	}
	wg.Wait()
}
