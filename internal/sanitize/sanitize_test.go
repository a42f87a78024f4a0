package sanitize

import "testing"

func TestField(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "Plain ASCII is uppercased",
			raw:  "Radio Gaga",
			want: "RADIO GAGA",
		},
		{
			name: "Accented latin folds to ASCII",
			raw:  "Beyoncé",
			want: "BEYONCE",
		},
		{
			name: "German sharp s expands",
			raw:  "Straße",
			want: "STRASSE",
		},
		{
			name: "Smart quotes become straight quotes",
			raw:  "Don’t Stop Me Now",
			want: "DON'T STOP ME NOW",
		},
		{
			name: "Unfoldable runes are dropped",
			raw:  "夜に駆ける YOASOBI",
			want: "YOASOBI",
		},
		{
			name: "Whitespace runs collapse",
			raw:  "  Daft\t Punk \n",
			want: "DAFT PUNK",
		},
		{
			name: "Empty input stays empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Field(tt.raw); got != tt.want {
				t.Errorf("Field(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("SHORT", 64); got != "SHORT" {
		t.Errorf("short input must pass through, got %q", got)
	}

	long := ""
	for i := 0; i < 10; i++ {
		long += "0123456789"
	}
	got := Truncate(long, DisplayTextLimit)
	if len(got) != DisplayTextLimit {
		t.Errorf("expected %d characters, got %d", DisplayTextLimit, len(got))
	}
	if got != long[:DisplayTextLimit] {
		t.Errorf("truncation must keep the prefix, got %q", got)
	}
}
