// Package locale translates user-facing messages with go-i18n. Translation files
// are TOML documents named translate.<lang>.toml.
package locale

import (
	"io/fs"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/vidfetch/vidfetch/logger"
	"golang.org/x/text/language"
)

const localizerKey = "localizer"

var i18nBundle *i18n.Bundle

func newBundle() *i18n.Bundle {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	return b
}

// InitLocalizer loads every file below the "translation" directory of i18nFS.
func InitLocalizer(i18nFS fs.FS) error {
	bundle := newBundle()
	if err := parseTranslationFiles(i18nFS, bundle); err != nil {
		return err
	}
	i18nBundle = bundle
	return nil
}

// Languages lists the loaded languages.
func Languages() []string {
	if i18nBundle == nil {
		return nil
	}
	tags := i18nBundle.LanguageTags()
	langs := make([]string, 0, len(tags))
	for _, t := range tags {
		langs = append(langs, t.String())
	}
	return langs
}

func createTemplateData(params []string, separator ...string) map[string]any {
	sep := "=="
	if len(separator) > 0 {
		sep = separator[0]
	}

	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) == 2 {
			templateData[parts[0]] = parts[1]
		}
	}
	return templateData
}

// Localize translates key with the given localizer. Params are "name==value" pairs.
// An empty string is returned when the key is unknown.
func Localize(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		return ""
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Debugf("Failed to localize message %q: %v", key, err)
		return ""
	}
	return msg
}

// I18nWeb translates key for the language of the current request.
func I18nWeb(c *gin.Context, key string, params ...string) string {
	v, ok := c.Get(localizerKey)
	if !ok {
		logger.Warning("localizer not set in gin context")
		return ""
	}
	localizer, _ := v.(*i18n.Localizer)
	return Localize(localizer, key, params...)
}

// LocalizerMiddleware picks the request language from the "lang" cookie or the
// Accept-Language header.
func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if i18nBundle == nil {
			i18nBundle = newBundle()
		}
		var lang string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		}
		localizer := i18n.NewLocalizer(i18nBundle, lang, c.GetHeader("Accept-Language"))
		c.Set(localizerKey, localizer)
		c.Next()
	}
}

func parseTranslationFiles(i18nFS fs.FS, bundle *i18n.Bundle) error {
	return fs.WalkDir(i18nFS, "translation", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(i18nFS, path)
		if err != nil {
			return err
		}
		_, err = bundle.ParseMessageFileBytes(data, path)
		return err
	})
}
