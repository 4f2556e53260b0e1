// Package lang provides the localized phrases used when scaffolding new
// content, with BCP 47 locale matching.
package lang

import (
	"golang.org/x/text/language"
)

// Translator resolves a phrase key for a requested locale.
type Translator interface {
	// Translate returns the phrase for key in the closest supported
	// locale. Unknown keys are returned verbatim so callers always get a
	// usable string.
	Translate(locale, key string) string
}

// Catalog is an in-memory Translator. The zero value is not usable; build
// one with NewCatalog.
type Catalog struct {
	tags    []language.Tag
	matcher language.Matcher
	phrases map[language.Tag]map[string]string
}

var _ Translator = (*Catalog)(nil)

// NewCatalog builds the default catalog. English is the fallback language.
func NewCatalog() *Catalog {
	phrases := map[language.Tag]map[string]string{
		language.English: {
			"content.course.title":    "New course",
			"content.course.body":     "Course body",
			"content.page.title":      "New page",
			"content.article.title":   "New article",
			"content.block.title":     "New block",
			"content.component.title": "New component",
		},
		language.French: {
			"content.course.title":    "Nouveau cours",
			"content.course.body":     "Corps du cours",
			"content.page.title":      "Nouvelle page",
			"content.article.title":   "Nouvel article",
			"content.block.title":     "Nouveau bloc",
			"content.component.title": "Nouveau composant",
		},
		language.Spanish: {
			"content.course.title":    "Nuevo curso",
			"content.course.body":     "Cuerpo del curso",
			"content.page.title":      "Nueva página",
			"content.article.title":   "Nuevo artículo",
			"content.block.title":     "Nuevo bloque",
			"content.component.title": "Nuevo componente",
		},
	}
	// English first so it wins as the matcher fallback.
	tags := []language.Tag{language.English, language.French, language.Spanish}
	return &Catalog{
		tags:    tags,
		matcher: language.NewMatcher(tags),
		phrases: phrases,
	}
}

// Add registers or overrides phrases for a locale tag.
func (c *Catalog) Add(tag language.Tag, phrases map[string]string) {
	existing, ok := c.phrases[tag]
	if !ok {
		existing = map[string]string{}
		c.phrases[tag] = existing
		c.tags = append(c.tags, tag)
		c.matcher = language.NewMatcher(c.tags)
	}
	for k, v := range phrases {
		existing[k] = v
	}
}

func (c *Catalog) Translate(locale, key string) string {
	tag := language.English
	if locale != "" {
		// the matched tag may carry extensions, so index into the
		// registered tags instead of using it directly
		if _, idx, conf := c.matcher.Match(language.Make(locale)); conf > language.No {
			tag = c.tags[idx]
		}
	}
	if phrase, ok := c.phrases[tag][key]; ok {
		return phrase
	}
	if phrase, ok := c.phrases[language.English][key]; ok {
		return phrase
	}
	return key
}
