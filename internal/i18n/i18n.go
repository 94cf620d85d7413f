// Package i18n translates user-facing messages into English or Thai.
//
// The language travels in the request context; T is the only accessor.
package i18n

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
)

// Vars fills {name} placeholders of a message.
type Vars map[string]any

type ctxKey struct{}

// WithLang returns a copy of ctx carrying lang.
func WithLang(ctx context.Context, lang domain.Language) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the language stored in ctx, English by default.
func FromContext(ctx context.Context) domain.Language {
	if lang, ok := ctx.Value(ctxKey{}).(domain.Language); ok && lang.Valid() {
		return lang
	}
	return domain.LanguageEN
}

// T translates key for the language in ctx. Unknown keys fall back to the
// English text, then to the key itself.
func T(ctx context.Context, key string, vars ...Vars) string {
	s, ok := dict[FromContext(ctx)][key]
	if !ok {
		s, ok = dict[domain.LanguageEN][key]
	}
	if !ok {
		s = key
	}
	for _, v := range vars {
		for name, val := range v {
			s = strings.ReplaceAll(s, "{"+name+"}", fmt.Sprint(val))
		}
	}
	return s
}

// Negotiate picks the language of a request: the lang query parameter, then
// the lang cookie, then the first supported Accept-Language tag.
func Negotiate(r *http.Request) domain.Language {
	if l := domain.Language(r.URL.Query().Get("lang")); l.Valid() {
		return l
	}
	if c, err := r.Cookie("lang"); err == nil {
		if l := domain.Language(c.Value); l.Valid() {
			return l
		}
	}
	for _, part := range strings.Split(r.Header.Get("Accept-Language"), ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if l := domain.Language(base); l.Valid() {
			return l
		}
	}
	return domain.LanguageEN
}
