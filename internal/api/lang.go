package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/lang
func LocalesHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, catalogs := s.Registry.Snapshot()
		c.JSON(http.StatusOK, gin.H{"locales": catalogs.Locales()})
	}
}

// GET /api/lang/:locale
func CatalogHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, catalogs := s.Registry.Snapshot()
		cat, err := catalogs.Get(c.Param("locale"))
		if err != nil {
			fail(c, http.StatusNotFound, "Locale not found", err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}
