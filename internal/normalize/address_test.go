package normalize

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "lowercase and accent folding",
			input: "1240 Rue De La Quémande",
			want:  "1240 rue de la quemande",
		},
		{
			name:  "avenue abbreviation with period",
			input: "725 3e Ave. Ouest",
			want:  "725 3e avenue ouest",
		},
		{
			name:  "av abbreviation",
			input: "725, 3e av Ouest",
			want:  "725 3e avenue ouest",
		},
		{
			name:  "chemin and boulevard abbreviations",
			input: "450 ch. Sullivan / 200 boul Forest",
			want:  "450 chemin sullivan / 200 boulevard forest",
		},
		{
			name:  "punctuation replaced and whitespace collapsed",
			input: "  725,  3e   Avenue.  Ouest ",
			want:  "725 3e avenue ouest",
		},
		{
			name:  "municipality boilerplate removed",
			input: "725 3e Avenue, Val-d'Or (Québec)",
			want:  "725 3e avenue",
		},
		{
			name:  "bare province mention removed",
			input: "1185 des Foreurs, Québec",
			want:  "1185 des foreurs",
		},
		{
			name:  "directionals preserved",
			input: "123 Rue Principale Est",
			want:  "123 rue principale est",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"725, 3e Avenue Ouest, Val-d'Or (Québec)",
		"1185 des Foreurs",
		"450 ch. Sullivan",
		"  ",
		"Boul. Jean-Jacques-Cossette Sud",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestCore(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"725, 3e Avenue Ouest", "725 3e avenue"},
		{"725 3e avenue", "725 3e avenue"},
		{"1185 des Foreurs", "1185 des foreurs"},
		{"123 Rue Principale Est Val-d'Or", "123 rue principale"},
		{"500 boul. Sud", "500 boulevard"},
		{"10 chemin de la Baie-Carrière secteur Dubuisson", "10 chemin de la"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Core(tt.input)
			if got != tt.want {
				t.Errorf("Core(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSimilar(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{
			name: "identical cores with differing directionals",
			a:    "725, 3e Avenue Ouest",
			b:    "725 3e avenue",
			want: true,
		},
		{
			name: "abbreviated vs expanded roadway type",
			a:    "450 ch. Sullivan",
			b:    "450 Chemin Sullivan",
			want: true,
		},
		{
			name: "one core contains the other",
			a:    "725 3e Avenue",
			b:    "725 3e",
			want: true,
		},
		{
			name: "different house numbers",
			a:    "725 3e Avenue",
			b:    "726 3e Avenue",
			want: false,
		},
		{
			name: "empty side never matches",
			a:    "",
			b:    "725 3e Avenue",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similar(tt.a, tt.b); got != tt.want {
				t.Errorf("Similar(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCleanAddress(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"725 3e Avenue\r\nVal-d'Or", "725 3e Avenue, Val-d'Or"},
		{"725 3e Avenue\nVal-d'Or", "725 3e Avenue, Val-d'Or"},
		{"725 3e Avenue", "725 3e Avenue"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanAddress(tt.input); got != tt.want {
			t.Errorf("CleanAddress(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
