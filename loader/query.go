package loader

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseQuery decodes a query-string-style option blob into Options.
// Recognized keys are indentedSyntax, outputStyle, sourceMap, root and
// precision; everything else is ignored so hosts can carry their own keys
// in the same blob.
func ParseQuery(blob string) (Options, error) {
	var opts Options

	blob = strings.TrimPrefix(blob, "?")
	if blob == "" {
		return opts, nil
	}
	values, err := url.ParseQuery(blob)
	if err != nil {
		return opts, fmt.Errorf("malformed options query: %w", err)
	}

	if v := values.Get("indentedSyntax"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("indentedSyntax: %w", err)
		}
		opts.IndentedSyntax = b
	}
	if v := values.Get("sourceMap"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("sourceMap: %w", err)
		}
		opts.SourceMap = b
	}
	if v := values.Get("precision"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("precision: %w", err)
		}
		opts.Precision = n
	}
	opts.OutputStyle = values.Get("outputStyle")
	opts.Root = values.Get("root")
	return opts, nil
}
