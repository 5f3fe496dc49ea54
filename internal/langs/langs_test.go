package langs

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"jp", "ja"},
		{"JP", "ja"},
		{"zh-CN", "zh"},
		{"zh-tw", "zh-hant"},
		{"pt-BR", "pt"},
		{"  es ", "es"},
		{"en", "en"},
		{"xx", "xx"}, // unknown passes through
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known("es") || !Known("zh-CN") || !Known("jp") {
		t.Error("aliases of translatable codes must be known")
	}
	if Known("xx") || Known("") {
		t.Error("unknown codes must not be known")
	}
}

func TestList(t *testing.T) {
	entries := List()
	if len(entries) == 0 {
		t.Fatal("empty language list")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Name > entries[i].Name {
			t.Errorf("not sorted by name: %q before %q", entries[i-1].Name, entries[i].Name)
		}
	}
	for _, e := range entries {
		if e.Name == "" {
			t.Errorf("entry %q has no display name", e.Code)
		}
	}
	for _, e := range entries {
		if e.Code == "en" && !e.POSSupported {
			t.Error("en must report POS support")
		}
	}
}
