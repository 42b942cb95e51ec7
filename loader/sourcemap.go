package loader

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// reshapeSourceMap adjusts a compiler-produced source map for the host
// pipeline: the map's file becomes the resource path and the first source
// entry, which the compiler labels with the root-document sentinel, is
// rewritten to the resource path relative to the output directory. Trivial
// or unparseable maps are treated as absent.
func reshapeSourceMap(raw []byte, resourcePath, outputDir string, log *zap.Logger) []byte {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "{}" {
		return nil
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		log.Debug("Discarding malformed source map", zap.Error(err))
		return nil
	}
	sources, _ := m["sources"].([]any)
	if len(sources) == 0 {
		return nil
	}

	m["file"] = resourcePath
	entry := resourcePath
	if outputDir != "" {
		if rel, err := filepath.Rel(outputDir, resourcePath); err == nil {
			entry = rel
		}
	}
	sources[0] = entry

	out, err := json.Marshal(m)
	if err != nil {
		log.Debug("Unable to re-encode source map", zap.Error(err))
		return nil
	}
	return out
}
