package genres

import (
	"reflect"
	"testing"

	"github.com/flicksift/flicksift/internal/tmdb"
)

func TestToAPIGenres(t *testing.T) {
	tests := []struct {
		name      string
		unified   []string
		mediaType string
		want      []int
	}{
		{"single movie genre", []string{"action"}, tmdb.MediaTypeMovie, []int{28}},
		{"movie genres dedup", []string{"action", "adventure"}, tmdb.MediaTypeMovie, []int{28, 12}},
		{"tv action and adventure share a code", []string{"action", "adventure"}, tmdb.MediaTypeTV, []int{10759}},
		{"unknown id skipped", []string{"action", "telenovela"}, tmdb.MediaTypeMovie, []int{28}},
		{"all unknown", []string{"nope", "nada"}, tmdb.MediaTypeMovie, []int{}},
		{"movie-only genre empty for tv", []string{"horror"}, tmdb.MediaTypeTV, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToAPIGenres(tt.unified, tt.mediaType)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToAPIGenres(%v, %q) = %v, want %v", tt.unified, tt.mediaType, got, tt.want)
			}
		})
	}
}

func TestToUnifiedGenres(t *testing.T) {
	got := ToUnifiedGenres([]int{28, 18, 99999}, tmdb.MediaTypeMovie)
	want := []string{"action", "drama"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToUnifiedGenres() = %v, want %v", got, want)
	}
}

func TestToUnifiedGenres_FirstMatchWins(t *testing.T) {
	// TV code 10759 is shared by action and adventure; the first catalog
	// entry that contains it should win, exactly once.
	got := ToUnifiedGenres([]int{10759, 10759}, tmdb.MediaTypeTV)
	want := []string{"action"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToUnifiedGenres() = %v, want %v", got, want)
	}
}

func TestGenreRoundTrip(t *testing.T) {
	unified := ToUnifiedGenres(ToAPIGenres([]string{"action"}, tmdb.MediaTypeMovie), tmdb.MediaTypeMovie)

	found := false
	for _, id := range unified {
		if id == "action" {
			found = true
		}
	}
	if !found {
		t.Errorf("round trip lost 'action': got %v", unified)
	}
}

func TestFormatGenreParam(t *testing.T) {
	tests := []struct {
		name  string
		ids   []int
		logic CombineLogic
		want  string
	}{
		{"and", []int{28, 12}, CombineAnd, "28,12"},
		{"or", []int{28, 12}, CombineOr, "28|12"},
		{"single", []int{878}, CombineOr, "878"},
		{"empty", nil, CombineAnd, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatGenreParam(tt.ids, tt.logic); got != tt.want {
				t.Errorf("FormatGenreParam(%v, %v) = %q, want %q", tt.ids, tt.logic, got, tt.want)
			}
		})
	}
}

func TestCatalogIsCopied(t *testing.T) {
	c := Catalog()
	if len(c) == 0 {
		t.Fatal("catalog is empty")
	}
	c[0].ID = "mutated"
	if Catalog()[0].ID == "mutated" {
		t.Error("Catalog() exposes internal state")
	}
}
