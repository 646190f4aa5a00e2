// Package i18n holds the user-facing copy in embedded TOML catalogues.
package i18n

import (
	"embed"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/aretw0/fatefinder/pkg/domain"
)

// DefaultLanguage is used when no requested language matches.
var DefaultLanguage = language.Japanese

//go:embed locales/*.toml
var locales embed.FS

// Catalog is the set of loaded message files.
type Catalog struct {
	bundle  *goi18n.Bundle
	tags    []language.Tag
	matcher language.Matcher
}

// Load parses the embedded catalogues.
func Load() (*Catalog, error) {
	bundle := goi18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(locales, "locales/"+e.Name()); err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
	}
	// The matcher falls back to its first tag.
	tags := []language.Tag{DefaultLanguage}
	for _, t := range bundle.LanguageTags() {
		if t != DefaultLanguage {
			tags = append(tags, t)
		}
	}
	return &Catalog{
		bundle:  bundle,
		tags:    tags,
		matcher: language.NewMatcher(tags),
	}, nil
}

// MustLoad is Load for package-level initialisation.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Languages lists the catalogue languages, default first.
func (c *Catalog) Languages() []language.Tag {
	return c.tags
}

// Localizer picks the best catalogue for the given preferences, which may be
// BCP 47 tags or Accept-Language header values.
func (c *Catalog) Localizer(prefs ...string) *Localizer {
	tag, _ := language.MatchStrings(c.matcher, prefs...)
	base, _ := tag.Base()
	resolved := language.Make(base.String())
	return &Localizer{
		loc: goi18n.NewLocalizer(c.bundle, resolved.String()),
		tag: resolved,
	}
}

// Localizer translates message IDs into one language.
type Localizer struct {
	loc *goi18n.Localizer
	tag language.Tag
}

// Language returns the matched language.
func (l *Localizer) Language() language.Tag {
	return l.tag
}

// T returns the message for id, or id itself when the catalogue lacks it.
func (l *Localizer) T(id string) string {
	msg, err := l.loc.Localize(&goi18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}

// Error renders err for an end user. Unknown errors fall back to the
// generic error message.
func (l *Localizer) Error(err error) string {
	var ve *domain.ValidationError
	var te *domain.TransitionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return l.T(ve.Key)
	case errors.Is(err, domain.ErrRequestInFlight):
		return l.T(ErrorInFlight)
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionClosed):
		return l.T(ErrorSessionNotFound)
	case errors.As(err, &te):
		return l.T(ErrorNotAllowed)
	default:
		return l.T(ErrorMessage)
	}
}
