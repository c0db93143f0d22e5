package search

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"São Paulo", "sao paulo"},
		{"sao paulo", "sao paulo"},
		{"SÃO PAULO", "sao paulo"},
		{"Açaí & Café", "acai & cafe"},
		{"Ｆｕｌｌ", "full"},
		{"日本料理 Sushi", " sushi"},
		{"Straße", "strae"},
		{"\xff\xfeabc", "abc"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"", "São Paulo", "Rio de Janeiro", "ÀÉÎÕÜ ç", "Ｆｕｌｌ", "日本料理", "Ωmega", "  spaced  "}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
