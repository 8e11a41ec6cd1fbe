package core

import "testing"

func slFormatter(t *testing.T) *Formatter {
	t.Helper()
	f, err := NewFormatter("sl-SI", "€")
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}
	return f
}

func TestFormatterHours(t *testing.T) {
	f := slFormatter(t)
	cases := []struct {
		in   float64
		want string
	}{
		{8, "8,0"}, // minimum one fraction digit
		{8.5, "8,5"},
		{8.25, "8,25"}, // capped at two digits
		{0, "0,0"},
	}
	for _, tc := range cases {
		if got := f.Hours(tc.in); got != tc.want {
			t.Fatalf("Hours(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatterAmount(t *testing.T) {
	f := slFormatter(t)
	if got := f.PlainAmount(Money{Cents: 16000}); got != "160,00" {
		t.Fatalf("PlainAmount = %q, want %q", got, "160,00")
	}
	if got := f.PlainAmount(Money{Cents: 905}); got != "9,05" {
		t.Fatalf("PlainAmount = %q, want %q", got, "9,05")
	}
	// The separator before the symbol is a no-break space.
	if got, want := f.Amount(Money{Cents: 16000}), "160,00\u00a0€"; got != want {
		t.Fatalf("Amount = %q, want %q", got, want)
	}
}

func TestNewFormatterBadLocale(t *testing.T) {
	if _, err := NewFormatter("not a locale", "€"); err == nil {
		t.Fatal("expected error for unparseable locale")
	}
}
