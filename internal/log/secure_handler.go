package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys that are always masked.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"proxy_authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"password":            true,
	"passwd":              true,
	"secret":              true,
	"token":               true,
	"credentials":         true,
}

// sensitiveKeywords mark a key as sensitive when they appear anywhere in it.
var sensitiveKeywords = []string{"password", "secret", "token", "credential", "auth"}

// sensitivePatterns match values that are masked regardless of their key.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
}

// urlWithUserinfo finds URLs that carry a userinfo component.
var urlWithUserinfo = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://[^/\s@]+@`)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler and masks sensitive attribute values
// before the record reaches the wrapped handler.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the wrapped handler handles records at the given level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(out)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr masks a single attribute, recursing into groups.
func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, g := range group {
			out[i] = sanitizeAttr(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindAny {
		if u, ok := a.Value.Any().(*url.URL); ok && u != nil {
			return slog.String(a.Key, RedactURL(u.String()))
		}
	}

	if a.Value.Kind() == slog.KindString {
		s := a.Value.String()
		for _, p := range sensitivePatterns {
			if p.MatchString(s) {
				return slog.String(a.Key, MaskValue)
			}
		}
		if redacted := RedactURL(s); redacted != s {
			return slog.String(a.Key, redacted)
		}
	}

	return a
}

// isSensitiveKey reports whether an attribute key names a credential.
func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	if sensitiveKeys[k] {
		return true
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(k, kw) {
			return true
		}
	}
	return false
}

// RedactURL replaces the userinfo of every URL in s with MaskValue.
// Strings without userinfo are returned unchanged.
func RedactURL(s string) string {
	return urlWithUserinfo.ReplaceAllStringFunc(s, func(m string) string {
		scheme, _, _ := strings.Cut(m, "://")
		return scheme + "://" + MaskValue + "@"
	})
}

// Options configures NewLogger.
type Options struct {
	// Level is the minimum level that is written.
	Level slog.Level

	// JSON selects the JSON handler instead of the text handler.
	JSON bool
}

// NewLogger creates a slog.Logger that writes sanitized records to w.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: opts.Level}

	var base slog.Handler
	if opts.JSON {
		base = slog.NewJSONHandler(w, hopts)
	} else {
		base = slog.NewTextHandler(w, hopts)
	}
	return slog.New(NewSecureHandler(base))
}

// LevelFor returns Debug when verbose is set and fallback otherwise.
func LevelFor(verbose bool, fallback slog.Level) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return fallback
}

// Discard returns a logger that drops every record. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1})))
}
