package resolve_test

import (
	"testing"

	"github.com/Tol1/sass-loader/resolve"
)

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want []string
	}{
		{
			name: "bare file",
			url:  "foo.scss",
			want: []string{"foo.scss", "foo.css", "_foo.scss"},
		},
		{
			name: "directory prefix is preserved",
			url:  "shared/colors.scss",
			want: []string{"shared/colors.scss", "shared/colors.css", "shared/_colors.scss"},
		},
		{
			name: "indented dialect",
			url:  "mixins.sass",
			want: []string{"mixins.sass", "mixins.css", "_mixins.sass"},
		},
		{
			name: "css keeps its extension",
			url:  "vendor/normalize.css",
			want: []string{"vendor/normalize.css", "vendor/normalize.css", "vendor/_normalize.css"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := resolve.Candidates(tc.url)
			if len(got) != 3 {
				t.Fatalf("expected exactly 3 candidates, got %d", len(got))
			}
			for i, c := range got {
				if c.Request != tc.want[i] {
					t.Errorf("candidate %d = %q, want %q", i, c.Request, tc.want[i])
				}
			}
			kinds := []resolve.CandidateKind{resolve.CandidateDirect, resolve.CandidateCSS, resolve.CandidatePartial}
			for i, c := range got {
				if c.Kind != kinds[i] {
					t.Errorf("candidate %d kind = %v, want %v", i, c.Kind, kinds[i])
				}
			}
		})
	}
}
