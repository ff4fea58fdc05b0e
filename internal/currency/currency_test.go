package currency

import "testing"

func TestFormat(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{-20, "-$20.00"},
		{0.1, "$0.10"},
	}
	for _, tc := range cases {
		if got := Format(tc.amount); got != tc.want {
			t.Errorf("Format(%v) = %q; want %q", tc.amount, got, tc.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal(10.10, 10.10) {
		t.Error("identical amounts reported unequal")
	}
	if Equal(10.10, 10.11) {
		t.Error("different amounts reported equal")
	}
}

func TestSub(t *testing.T) {
	if got := Sub(0.3, 0.1); !Equal(got, 0.2) {
		t.Errorf("Sub(0.3, 0.1) = %v; want 0.2", got)
	}
}
