package session

import (
	"testing"

	"proteinstruct/internal/protein"
)

func TestSessionLifecycle(t *testing.T) {
	s := New()
	if s.Loaded() {
		t.Fatalf("new session should be empty")
	}
	if snap := s.Snapshot(); len(snap.Proteins) != 0 || !snap.LoadedAt.IsZero() {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	s.Replace("Human", 10, []protein.Record{{Accession: "P1"}, {Accession: "P2"}})
	if !s.Loaded() {
		t.Fatalf("session should be loaded after replace")
	}
	if r, ok := s.Protein("P2"); !ok || r.Accession != "P2" {
		t.Fatalf("expected to find P2")
	}

	s.Replace("Yeast", 5, []protein.Record{{Accession: "Y1"}})
	snap := s.Snapshot()
	if snap.Species != "Yeast" || snap.MaxCount != 5 || len(snap.Proteins) != 1 {
		t.Fatalf("collection not replaced wholesale: %+v", snap)
	}
	if _, ok := s.Protein("P1"); ok {
		t.Fatalf("old records should be gone after replace")
	}
}

func TestStoreGetOrCreate(t *testing.T) {
	st := NewStore(0)
	s, created := st.GetOrCreate("")
	if !created || st.Len() != 1 {
		t.Fatalf("expected a new session")
	}
	again, created := st.GetOrCreate(s.ID.String())
	if created || again != s {
		t.Fatalf("expected existing session to be returned")
	}
	if _, created := st.GetOrCreate("not-a-uuid"); !created {
		t.Fatalf("malformed id should create a session")
	}
	if st.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", st.Len())
	}
	if got, ok := st.Get(s.ID); !ok || got != s {
		t.Fatalf("Get did not return the stored session")
	}
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	st := NewStore(2)
	oldest := st.Create()
	kept := st.Create()
	if _, ok := st.Get(kept.ID); !ok {
		t.Fatalf("expected kept session")
	}
	newest := st.Create()

	if st.Len() != 2 {
		t.Fatalf("store should stay at capacity 2, got %d", st.Len())
	}
	if _, ok := st.Get(oldest.ID); ok {
		t.Fatalf("oldest session should have been evicted")
	}
	for _, s := range []*Session{kept, newest} {
		if _, ok := st.Get(s.ID); !ok {
			t.Fatalf("session %s should still be stored", s.ID)
		}
	}
	if again, created := st.GetOrCreate(oldest.ID.String()); !created || again == oldest {
		t.Fatalf("evicted id should get a fresh session")
	}
}
