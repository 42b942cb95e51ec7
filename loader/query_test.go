package loader_test

import (
	"testing"

	"github.com/Tol1/sass-loader/loader"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want loader.Options
		fail bool
	}{
		{
			name: "empty",
			blob: "",
			want: loader.Options{},
		},
		{
			name: "full set with leading question mark",
			blob: "?indentedSyntax=true&outputStyle=expanded&sourceMap=true&root=/app/styles&precision=8",
			want: loader.Options{
				IndentedSyntax: true,
				OutputStyle:    "expanded",
				SourceMap:      true,
				Root:           "/app/styles",
				Precision:      8,
			},
		},
		{
			name: "unknown keys are ignored",
			blob: "minimize=1&cacheDirectory=/tmp",
			want: loader.Options{},
		},
		{
			name: "bad boolean",
			blob: "indentedSyntax=maybe",
			fail: true,
		},
		{
			name: "bad precision",
			blob: "precision=high",
			fail: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := loader.ParseQuery(tc.blob)
			if tc.fail {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("options = %+v, want %+v", got, tc.want)
			}
		})
	}
}
