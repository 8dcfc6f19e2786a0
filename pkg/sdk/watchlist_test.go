package sdk

import "testing"

func TestWatchlist_OptimisticAddThenCommit(t *testing.T) {
	w := NewWatchlist()

	if !w.Add("doc-1") {
		t.Fatal("Add reported no change")
	}
	if !w.Contains("doc-1") {
		t.Error("optimistic add not visible before commit")
	}
	if !w.Pending("doc-1") {
		t.Error("mutation not marked pending")
	}

	w.Commit("doc-1")
	if !w.Contains("doc-1") || w.Pending("doc-1") {
		t.Error("commit did not settle the entry")
	}
}

func TestWatchlist_RollbackRestoresCommittedView(t *testing.T) {
	w := NewWatchlist("doc-1")

	w.Remove("doc-1")
	if w.Contains("doc-1") {
		t.Error("optimistic remove not visible")
	}

	// Persistence failed; the removal never happened.
	w.Rollback("doc-1")
	if !w.Contains("doc-1") {
		t.Error("rollback did not restore the committed entry")
	}

	w.Add("doc-2")
	w.Rollback("doc-2")
	if w.Contains("doc-2") {
		t.Error("rollback left a phantom entry from a failed add")
	}
}

func TestWatchlist_AddRemoveCancelOut(t *testing.T) {
	w := NewWatchlist()

	w.Add("doc-1")
	w.Remove("doc-1")
	if w.Contains("doc-1") || w.Pending("doc-1") {
		t.Error("add then remove before commit should cancel out")
	}

	w2 := NewWatchlist("doc-2")
	w2.Remove("doc-2")
	w2.Add("doc-2")
	if !w2.Contains("doc-2") || w2.Pending("doc-2") {
		t.Error("remove then re-add of a committed entry should cancel out")
	}
}

func TestWatchlist_NoOpMutations(t *testing.T) {
	w := NewWatchlist("doc-1")

	if w.Add("doc-1") {
		t.Error("adding a present id reported a change")
	}
	if w.Remove("doc-9") {
		t.Error("removing an absent id reported a change")
	}
}

func TestWatchlist_LenReflectsOptimisticView(t *testing.T) {
	w := NewWatchlist("a", "b")

	w.Add("c")    // pending add
	w.Remove("a") // pending remove
	if got := w.Len(); got != 2 {
		t.Errorf("Len = %d, want 2 (b stays, c in, a out)", got)
	}

	w.Commit("c")
	w.Rollback("a")
	if got := w.Len(); got != 3 {
		t.Errorf("Len = %d, want 3 after commit+rollback", got)
	}
}
