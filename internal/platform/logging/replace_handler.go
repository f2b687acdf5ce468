package logging

import (
	"context"
	"log/slog"
	"slices"
)

// ReplaceAttrHandler applies a ReplaceAttr function to every attribute
// before passing the record on. It gives handlers without
// slog.HandlerOptions, such as the charm pretty renderer, the same
// redaction as the built-in slog handlers.
type ReplaceAttrHandler struct {
	next    slog.Handler
	replace func(groups []string, a slog.Attr) slog.Attr
	groups  []string
}

// NewReplaceAttrHandler wraps next with replace.
func NewReplaceAttrHandler(next slog.Handler, replace func(groups []string, a slog.Attr) slog.Attr) *ReplaceAttrHandler {
	return &ReplaceAttrHandler{next: next, replace: replace}
}

// Enabled defers to the wrapped handler.
func (h *ReplaceAttrHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle rebuilds r with replaced attributes.
func (h *ReplaceAttrHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = h.apply(attrs, h.groups, a)
		return true
	})

	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	out.AddAttrs(attrs...)

	return h.next.Handle(ctx, out)
}

// WithAttrs replaces attrs once, up front.
func (h *ReplaceAttrHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	replaced := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		replaced = h.apply(replaced, h.groups, a)
	}

	return &ReplaceAttrHandler{next: h.next.WithAttrs(replaced), replace: h.replace, groups: h.groups}
}

// WithGroup tracks the group so replace sees the full path.
func (h *ReplaceAttrHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &ReplaceAttrHandler{
		next:    h.next.WithGroup(name),
		replace: h.replace,
		groups:  append(slices.Clip(h.groups), name),
	}
}

// apply appends a, replaced, to dst. It mirrors slog's built-in handlers:
// replace runs on group leaves, groups without a key are inlined, and an
// attr replaced with an empty key is dropped.
func (h *ReplaceAttrHandler) apply(dst []slog.Attr, groups []string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() != slog.KindGroup {
		if a = h.replace(groups, a); a.Key != "" {
			dst = append(dst, a)
		}
		return dst
	}

	if a.Key == "" {
		for _, m := range a.Value.Group() {
			dst = h.apply(dst, groups, m)
		}
		return dst
	}

	inner := append(slices.Clip(groups), a.Key)

	var members []slog.Attr
	for _, m := range a.Value.Group() {
		members = h.apply(members, inner, m)
	}

	return append(dst, slog.Attr{Key: a.Key, Value: slog.GroupValue(members...)})
}
