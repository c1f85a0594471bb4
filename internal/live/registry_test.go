package live

import (
	"testing"
)

func TestRegistry_SetLiveIdempotent(t *testing.T) {
	r := NewRegistry()

	first := r.SetLive("s1", "agent-abc")
	if first.SessionID != "s1" || first.AgentSessionID != "agent-abc" {
		t.Fatalf("SetLive() = %+v", first)
	}
	if first.EnabledAt.IsZero() {
		t.Error("EnabledAt not set")
	}

	// Marking the same session live again keeps exactly one entry.
	r.SetLive("s1", "agent-def")

	if got := len(r.List()); got != 1 {
		t.Fatalf("List() length = %d, want 1", got)
	}
	info, ok := r.Get("s1")
	if !ok {
		t.Fatal("Get() missing after re-enable")
	}
	if info.AgentSessionID != "agent-def" {
		t.Errorf("AgentSessionID = %q, want latest value", info.AgentSessionID)
	}
}

func TestRegistry_SetOffline(t *testing.T) {
	r := NewRegistry()
	r.SetLive("s1", "")

	if !r.IsLive("s1") {
		t.Fatal("IsLive() = false after SetLive")
	}
	if !r.SetOffline("s1") {
		t.Error("SetOffline() = false, want true for live session")
	}
	if r.IsLive("s1") {
		t.Error("IsLive() = true after SetOffline")
	}
	// Offlining twice is harmless and reports not-live.
	if r.SetOffline("s1") {
		t.Error("SetOffline() second call = true, want false")
	}
	if r.SetOffline("never-existed") {
		t.Error("SetOffline(unknown) = true, want false")
	}
}

func TestRegistry_ListOrdered(t *testing.T) {
	r := NewRegistry()
	r.SetLive("charlie", "")
	r.SetLive("alpha", "")
	r.SetLive("bravo", "")

	list := r.List()
	want := []string{"alpha", "bravo", "charlie"}
	if len(list) != len(want) {
		t.Fatalf("List() length = %d, want %d", len(list), len(want))
	}
	for i, id := range want {
		if list[i].SessionID != id {
			t.Errorf("List()[%d] = %q, want %q", i, list[i].SessionID, id)
		}
	}
}

func TestRegistry_OfflineAll(t *testing.T) {
	r := NewRegistry()
	r.SetLive("b", "")
	r.SetLive("a", "")

	ids := r.OfflineAll()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("OfflineAll() = %v, want [a b]", ids)
	}
	if len(r.List()) != 0 {
		t.Error("registry not empty after OfflineAll")
	}
	if got := r.OfflineAll(); len(got) != 0 {
		t.Errorf("second OfflineAll() = %v, want empty", got)
	}
}
