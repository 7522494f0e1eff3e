package identity

import "testing"

func TestSetAndLookup(t *testing.T) {
	reg := NewRegistry()

	reg.Set("conn-1", "Alice")

	nick, ok := reg.Lookup("conn-1")
	if !ok {
		t.Fatal("Expected nickname to be found")
	}
	if nick != "Alice" {
		t.Errorf("Expected nickname Alice, got %s", nick)
	}
}

func TestSet_Overwrites(t *testing.T) {
	reg := NewRegistry()

	reg.Set("conn-1", "Alice")
	reg.Set("conn-1", "Alicia")

	nick, _ := reg.Lookup("conn-1")
	if nick != "Alicia" {
		t.Errorf("Expected overwritten nickname Alicia, got %s", nick)
	}
	if reg.Count() != 1 {
		t.Errorf("Expected a single identity entry, got %d", reg.Count())
	}
}

func TestLookup_Missing(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Lookup("conn-9"); ok {
		t.Error("Expected lookup of an unknown connection to report not found")
	}
}

func TestRemove(t *testing.T) {
	reg := NewRegistry()
	reg.Set("conn-1", "Alice")

	reg.Remove("conn-1")
	if _, ok := reg.Lookup("conn-1"); ok {
		t.Error("Expected identity to be gone after Remove")
	}

	// Removing an absent entry must not panic or error.
	reg.Remove("conn-1")
}
