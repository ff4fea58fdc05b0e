package contenthash

import (
	"strings"
	"testing"
)

func TestCanonicalJSONSortsKeys(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{
		"zebra": 1,
		"alpha": map[string]any{"b": 2, "a": 1},
		"list":  []any{"x", "y"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"alpha":{"a":1,"b":2},"list":["x","y"],"zebra":1}`
	if string(got) != want {
		t.Errorf("canonical encoding = %s; want %s", got, want)
	}
}

func TestSumDeterministic(t *testing.T) {
	a := map[string]any{"author": "family", "amount": 120.5, "timestamp": int64(1700000000000)}
	b := map[string]any{"timestamp": int64(1700000000000), "amount": 120.5, "author": "family"}

	ha, err := Sum(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hb, err := Sum(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ha != hb {
		t.Errorf("equal values hashed differently: %s vs %s", ha, hb)
	}
}

func TestSumSensitiveToEveryField(t *testing.T) {
	base := map[string]any{"author": "family", "amount": 120.5, "timestamp": int64(1)}
	baseHash, err := Sum(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	variants := []map[string]any{
		{"author": "other", "amount": 120.5, "timestamp": int64(1)},
		{"author": "family", "amount": 120.51, "timestamp": int64(1)},
		{"author": "family", "amount": 120.5, "timestamp": int64(2)},
	}
	for i, v := range variants {
		h, err := Sum(v)
		if err != nil {
			t.Fatalf("variant %d: unexpected error: %v", i, err)
		}
		if h == baseHash {
			t.Errorf("variant %d hashed identically to base", i)
		}
	}
}

func TestSumBytesIsMultibaseBase32(t *testing.T) {
	h, err := SumBytes([]byte("budget"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(h, "b") {
		t.Errorf("hash %q lacks the base32 multibase prefix", h)
	}
	again, _ := SumBytes([]byte("budget"))
	if h != again {
		t.Errorf("hashing the same bytes twice differed: %s vs %s", h, again)
	}
}
