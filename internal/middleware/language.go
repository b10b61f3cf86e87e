package middleware

import (
	"github.com/gin-gonic/gin"

	"docanalyzer/internal/i18n"
)

// ContextKeyLanguage holds the language negotiated from Accept-Language.
const ContextKeyLanguage = "language"

// Language negotiates the request language from the Accept-Language header
// (or a ?lang= override) and echoes it in Content-Language.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang, ok := i18n.Normalize(c.Query("lang"))
		if !ok {
			lang = i18n.Match(c.GetHeader("Accept-Language"))
		}
		c.Set(ContextKeyLanguage, lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}

// GetLanguage returns the negotiated request language, or the default
// language when the middleware did not run.
func GetLanguage(c *gin.Context) string {
	if lang := c.GetString(ContextKeyLanguage); lang != "" {
		return lang
	}
	return i18n.Default
}
