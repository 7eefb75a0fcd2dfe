package dataset

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"wine/internal/feature"
	"wine/internal/predict"

	"gopkg.in/natefinch/lumberjack.v2"
)

// timeLayout is the timestamp format of dataset lines.
const timeLayout = "2006-01-02 15:04:05"

// jsonLineHandler is a slog handler writing every record as one flat JSON
// object: a "time" field plus the record attributes, without level or message.
type jsonLineHandler struct {
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
}

func newJSONLineHandler(out io.Writer) *jsonLineHandler {
	return &jsonLineHandler{out: out, mu: &sync.Mutex{}}
}

// Handle serializes the record as a JSON line.
func (h *jsonLineHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs)+1)
	attrs["time"] = r.Time.Format(timeLayout)

	add := func(a slog.Attr) bool {
		if a.Key != "" && a.Value.Any() != nil {
			attrs[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	data, err := json.Marshal(attrs)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(append(data, '\n'))
	return err
}

func (h *jsonLineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &jsonLineHandler{out: h.out, mu: h.mu, attrs: merged}
}

// WithGroup is ignored: dataset lines are flat.
func (h *jsonLineHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *jsonLineHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// JsonDatasetRepository appends predictions to a JSON lines file rotated and
// compressed by lumberjack.
type JsonDatasetRepository struct {
	lumberjack *lumberjack.Logger
	logger     *slog.Logger
}

// NewJsonDatasetRepository creates a repository writing to file.
// maxSize is the file size in megabytes before rotation, maxBackups the number
// of rotated files kept.
func NewJsonDatasetRepository(file string, maxSize, maxBackups int) *JsonDatasetRepository {
	repo := JsonDatasetRepository{}
	repo.lumberjack = &lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	repo.logger = slog.New(newJSONLineHandler(repo.lumberjack))
	return &repo
}

// Append writes one line with the session, the features and the prediction.
func (r *JsonDatasetRepository) Append(session string, rec feature.Record, p predict.Prediction) {
	r.logger.Info("",
		"session", session,
		"features", rec.Map(),
		"score", p.Score,
		"quality", p.Quality,
	)
}

// Close flushes and closes the current file.
func (r *JsonDatasetRepository) Close() {
	r.lumberjack.Close()
}
