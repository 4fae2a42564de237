package instrument

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// initLogging replaces the process-wide slog default with a handler that
// writes JSON to stdout, bridges records to the OTLP log exporter, stamps
// the service name and correlation ID, and masks sensitive fields.
func initLogging(serviceName string, lp *sdklog.LoggerProvider, maskFields []string) {
	targets := []slog.Handler{slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		AddSource:   true,
		ReplaceAttr: renameStandardAttrs,
	})}
	if lp != nil {
		targets = append(targets, otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(lp)))
	}

	slog.SetDefault(slog.New(&rootHandler{
		targets: targets,
		service: serviceName,
		masked:  maskSet(maskFields),
	}))
}

// renameStandardAttrs maps slog's built-in keys onto the log schema the
// collector expects: ts, severity, and file trimmed to the repo-relative path.
func renameStandardAttrs(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		if !strings.Contains(src.File, "/internal/") {
			return slog.Attr{}
		}
		rel := filepath.Join("internal", strings.SplitAfter(src.File, "/internal/")[1])
		return slog.String("file", fmt.Sprintf("%s:%d", rel, src.Line))
	}
	return a
}

// rootHandler fans records out to every target handler after masking the
// configured fields and attaching the service and correlation attributes.
type rootHandler struct {
	targets []slog.Handler
	service string
	masked  map[string]struct{}
}

func (h *rootHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, t := range h.targets {
		if t.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *rootHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.mask(a))
		return true
	})
	if cID := GetCorrelationID(ctx); cID != "" {
		out.AddAttrs(slog.String("_cID", cID))
	}
	out.AddAttrs(slog.String("service", h.service))

	var errs []error
	for _, t := range h.targets {
		if !t.Enabled(ctx, r.Level) {
			continue
		}
		errs = append(errs, t.Handle(ctx, out.Clone()))
	}
	return errors.Join(errs...)
}

func (h *rootHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask(a)
	}
	next := &rootHandler{targets: make([]slog.Handler, len(h.targets)), service: h.service, masked: h.masked}
	for i, t := range h.targets {
		next.targets[i] = t.WithAttrs(masked)
	}
	return next
}

func (h *rootHandler) WithGroup(name string) slog.Handler {
	next := &rootHandler{targets: make([]slog.Handler, len(h.targets)), service: h.service, masked: h.masked}
	for i, t := range h.targets {
		next.targets[i] = t.WithGroup(name)
	}
	return next
}

func maskSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(strings.ToLower(f))
		if f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}

// mask replaces the value of any masked key with "***". Structured values
// are walked recursively, and string or byte payloads that look like JSON
// are parsed so nested masked keys inside request bodies are caught too.
func (h *rootHandler) mask(a slog.Attr) slog.Attr {
	if len(h.masked) == 0 {
		return a
	}
	if _, hit := h.masked[strings.ToLower(a.Key)]; hit {
		return slog.String(a.Key, "***")
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		members := a.Value.Group()
		out := make([]slog.Attr, len(members))
		for i, m := range members {
			out[i] = h.mask(m)
		}
		a.Value = slog.GroupValue(out...)
	case slog.KindString:
		if s, ok := h.maskJSON([]byte(a.Value.String())); ok {
			a.Value = slog.StringValue(s)
		}
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case map[string]any:
			a.Value = slog.AnyValue(h.maskTree(v))
		case map[string]string:
			tree := make(map[string]any, len(v))
			for k, s := range v {
				tree[k] = s
			}
			a.Value = slog.AnyValue(h.maskTree(tree))
		case []any:
			a.Value = slog.AnyValue(h.maskTree(v))
		case []byte:
			if s, ok := h.maskJSON(v); ok {
				a.Value = slog.StringValue(s)
			}
		}
	}
	return a
}

func (h *rootHandler) maskJSON(payload []byte) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}
	var tree any
	if err := json.Unmarshal(payload, &tree); err != nil {
		return "", false
	}
	out, err := json.Marshal(h.maskTree(tree))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func (h *rootHandler) maskTree(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			if _, hit := h.masked[strings.ToLower(k)]; hit {
				out[k] = "***"
			} else {
				out[k] = h.maskTree(child)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = h.maskTree(child)
		}
		return out
	default:
		return v
	}
}
