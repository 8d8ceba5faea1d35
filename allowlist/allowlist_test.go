package allowlist_test

import (
	"reflect"
	"testing"

	"github.com/nefumc/pgrds/allowlist"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		allowed []string
		denied  []string
	}{
		{
			name:    "simple list",
			input:   "hstore,pgcrypto",
			allowed: []string{"hstore", "pgcrypto"},
			denied:  []string{"plpython3u"},
		},
		{
			name:    "whitespace trimmed",
			input:   " hstore , pgcrypto ",
			allowed: []string{"hstore", "pgcrypto"},
		},
		{
			name:   "empty string permits nothing",
			input:  "",
			denied: []string{"hstore", ""},
		},
		{
			name:    "case sensitive",
			input:   "hstore",
			allowed: []string{"hstore"},
			denied:  []string{"HSTORE", "Hstore"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := allowlist.Parse(tt.input)
			for _, n := range tt.allowed {
				if !l.Allowed(n) {
					t.Errorf("Allowed(%q) = false, want true", n)
				}
			}
			for _, n := range tt.denied {
				if l.Allowed(n) {
					t.Errorf("Allowed(%q) = true, want false", n)
				}
			}
		})
	}
}

func TestNilListPermitsNothing(t *testing.T) {
	var l *allowlist.List
	if l.Allowed("hstore") {
		t.Error("nil list must permit nothing")
	}
	if !l.Empty() {
		t.Error("nil list must be empty")
	}
}

func TestNames_Sorted(t *testing.T) {
	l := allowlist.Parse("pgcrypto,hstore,citext")
	want := []string{"citext", "hstore", "pgcrypto"}
	if got := l.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
