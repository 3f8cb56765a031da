package typoutil

import "testing"

func TestDistance(t *testing.T) {
	tests := []struct {
		name  string
		a     string
		b     string
		limit int
		want  int
	}{
		{"both empty", "", "", -1, 0},
		{"a empty", "", "pluto", -1, 5},
		{"identical", "jupiter", "jupiter", 2, 0},
		{"substitution", "saturn", "saturm", 2, 1},
		{"insertion", "venus", "venuss", 2, 1},
		{"deletion", "jupiter", "jupitr", 2, 1},
		{"adjacent swap", "uranus", "uarnus", 2, 1},
		{"unicode", "mặt trời", "mat troi", -1, 2},
		{"exceeds limit", "mercury", "mars", 1, 2},
		{"length gap exceeds limit", "io", "ganymede", 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b, tt.limit)
			if got != tt.want {
				t.Errorf("Distance(%q, %q, %d) = %d, want %d", tt.a, tt.b, tt.limit, got, tt.want)
			}
		})
	}
}

func TestClosest(t *testing.T) {
	candidates := []string{"mercury", "venus", "earth", "mars", "jupiter", "saturn"}

	got, dist, ok := Closest("jupitr", candidates, 1)
	if !ok || got != "jupiter" || dist != 1 {
		t.Errorf("Closest(jupitr) = %q, %d, %v; want jupiter, 1, true", got, dist, ok)
	}

	if got, _, ok := Closest("mars", candidates, 1); !ok || got != "mars" {
		t.Errorf("Closest(mars) = %q, %v; want exact match", got, ok)
	}

	if got, _, ok := Closest("galaxy", candidates, 1); ok {
		t.Errorf("Closest(galaxy) = %q; want no match", got)
	}
}
