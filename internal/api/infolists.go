package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kalita/internal/fieldpath"
	"kalita/internal/lang"
	"kalita/internal/schema"
	"kalita/internal/store"
)

// GET /api/infolists/:module/:name/:id
// Инфолист собирается заново на каждый запрос и заполняется записью его сущности.
func InfolistHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		model, catalogs := s.Registry.Snapshot()
		fqn, ok := normalizeName(model.Infolists, c.Param("module"), c.Param("name"))
		if !ok {
			fail(c, http.StatusNotFound, "Infolist not found", nil)
			return
		}
		def := model.Infolists[fqn]

		rec, err := store.Load(c.Request.Context(), s.Store, model.Entities, def.EntityFQN(), c.Param("id"))
		switch {
		case errors.Is(err, store.ErrNotFound):
			fail(c, http.StatusNotFound, "Record not found", nil)
			return
		case err != nil:
			fail(c, http.StatusInternalServerError, "Record load failed", err)
			return
		}

		l, err := schema.Build(def, schema.Options{
			AssetURL:  s.AssetURL,
			Resolver:  fieldpath.Resolver{Log: s.Log},
			Translate: catalogs.Translator(requestLocale(c)),
		})
		if err != nil {
			fail(c, http.StatusInternalServerError, "Infolist build failed", err)
			return
		}

		props, err := l.Render(rec)
		if err != nil {
			fail(c, http.StatusInternalServerError, "Infolist render failed", err)
			return
		}
		c.JSON(http.StatusOK, props)
	}
}

// requestLocale: ?locale=, затем первый язык Accept-Language.
func requestLocale(c *gin.Context) string {
	if v := strings.TrimSpace(c.Query("locale")); v != "" {
		return v
	}
	al := c.GetHeader("Accept-Language")
	if al == "" {
		return lang.DefaultLocale
	}
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(tag, ";")
	if tag = strings.TrimSpace(tag); tag == "" || tag == "*" {
		return lang.DefaultLocale
	}
	return tag
}
