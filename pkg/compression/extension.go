package compression

import (
	"path"
	"strings"
)

var extensions = map[string]Algorithm{
	".gz":     Gzip,
	".gzip":   Gzip,
	".zst":    Zstd,
	".zstd":   Zstd,
	".lz4":    LZ4,
	".sz":     Snappy,
	".snappy": Snappy,
	".s2":     S2,
}

// FromPath returns the algorithm implied by the last extension of p and the
// path with that extension removed. Unknown extensions yield None and p.
func FromPath(p string) (Algorithm, string) {
	ext := strings.ToLower(path.Ext(p))
	if alg, ok := extensions[ext]; ok {
		return alg, strings.TrimSuffix(p, p[len(p)-len(ext):])
	}
	return None, p
}

// Extension returns the canonical file extension for alg, or "" for None.
func Extension(alg Algorithm) string {
	switch alg {
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	case LZ4:
		return ".lz4"
	case Snappy:
		return ".sz"
	case S2:
		return ".s2"
	}
	return ""
}
