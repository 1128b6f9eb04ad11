package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kalita/internal/dsl"
	"kalita/internal/lang"
	"kalita/internal/schema"
)

type reloadReq struct {
	DSLRoot  string `json:"dsl_root"`  // директория с *.dsl
	LangRoot string `json:"lang_root"` // директория с каталогами переводов
}

// POST /api/admin/reload
// Новая модель проходит линтеры; при блокирующих проблемах текущая остаётся.
func AdminReloadHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reloadReq
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			fail(c, http.StatusBadRequest, "Invalid JSON", err)
			return
		}

		dslRoot := strings.TrimSpace(req.DSLRoot)
		if dslRoot == "" {
			dslRoot = s.DSLDir
		}
		langRoot := strings.TrimSpace(req.LangRoot)
		if langRoot == "" {
			langRoot = s.LangDir
		}

		// 1) читаем новые схемы и каталоги
		model, err := dsl.LoadAll(dslRoot)
		if err != nil {
			fail(c, http.StatusBadRequest, "DSL load error", err)
			return
		}
		catalogs, err := lang.LoadDir(langRoot)
		if err != nil {
			fail(c, http.StatusBadRequest, "Lang load error", err)
			return
		}

		// 2) линтеры: сущности и инфолисты
		entityIssues := SchemaLint(model.Entities)
		infolistIssues := schema.LintAll(model)
		if len(entityIssues) > 0 || schema.HasErrors(infolistIssues) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":          "schema has blocking issues",
				"issues":         entityIssues,
				"infolistIssues": infolistIssues,
				"hint":           "fix DSL and retry",
				"dslRoot":        dslRoot,
				"langRoot":       langRoot,
			})
			return
		}

		// 3) хранилище под новую модель (DDL и т.п.), затем атомарная замена
		if s.OnReload != nil {
			if err := s.OnReload(c.Request.Context(), model); err != nil {
				fail(c, http.StatusInternalServerError, "Store reload failed", err)
				return
			}
		}
		s.Registry.swap(model, catalogs)
		s.Log.Info("model reloaded",
			zap.String("dslRoot", dslRoot),
			zap.Int("entities", len(model.Entities)),
			zap.Int("infolists", len(model.Infolists)),
			zap.Int("warnings", len(infolistIssues)))

		c.JSON(http.StatusOK, gin.H{
			"ok":        true,
			"dslRoot":   dslRoot,
			"langRoot":  langRoot,
			"entities":  len(model.Entities),
			"infolists": len(model.Infolists),
			"locales":   catalogs.Locales(),
			"warnings":  infolistIssues,
		})
	}
}
