package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/tmgrammar/log"
)

// parsed is a cache entry. The statements of a parsed [File] are never
// modified after parsing, so one entry is shared by every loader that
// imports the same file.
type parsed struct {
	once sync.Once
	file *File
	err  error
}

// parseCache maps the xxh3 hash of path and source to *parsed.
var parseCache sync.Map

func cacheKey(path, src string) uint64 {
	h := xxh3.New()
	_, _ = h.WriteString(path)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(src)

	return h.Sum64()
}

// parseCached parses src once per distinct path and content. Syntax errors
// are cached too.
func parseCached(ctx context.Context, path, src string, logger log.Logger) (*File, error) {
	key := cacheKey(path, src)

	v, hit := parseCache.LoadOrStore(key, new(parsed))
	entry := v.(*parsed)

	logger.TraceContext(ctx, "parse cache",
		slog.String("path", path),
		slog.String("key", strconv.FormatUint(key, 36)),
		slog.Bool("hit", hit))

	entry.once.Do(func() {
		entry.file, entry.err = ParseString(ctx, path, src, WithLogger(logger))
	})

	return entry.file, entry.err
}

// ClearCache drops every cached parse result.
func ClearCache() {
	parseCache.Clear()
}
