package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kalita/internal/store"
)

// POST /api/:module/:entity
func CreateHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		model, _ := s.Registry.Snapshot()
		fqn, ok := normalizeName(model.Entities, c.Param("module"), c.Param("entity"))
		if !ok {
			fail(c, http.StatusNotFound, "Entity not found", nil)
			return
		}
		schema := model.Entities[fqn]

		var obj map[string]any
		if err := c.ShouldBindJSON(&obj); err != nil {
			fail(c, http.StatusBadRequest, "Invalid JSON", err)
			return
		}
		if obj == nil {
			obj = map[string]any{}
		}

		errs, err := store.Validate(c.Request.Context(), s.Store, schema, obj)
		if err != nil {
			fail(c, http.StatusInternalServerError, "Validation failed", err)
			return
		}
		if len(errs) > 0 {
			c.JSON(statusForErrors(errs), gin.H{"errors": errs})
			return
		}

		row, err := s.Store.Insert(c.Request.Context(), fqn, obj)
		switch {
		case errors.Is(err, store.ErrConflict):
			fail(c, http.StatusConflict, "Unique constraint violated", err)
			return
		case err != nil:
			fail(c, http.StatusInternalServerError, "Insert failed", err)
			return
		}
		c.JSON(http.StatusCreated, row.Flatten())
	}
}

// GET /api/:module/:entity
func ListHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		model, _ := s.Registry.Snapshot()
		fqn, ok := normalizeName(model.Entities, c.Param("module"), c.Param("entity"))
		if !ok {
			fail(c, http.StatusNotFound, "Entity not found", nil)
			return
		}

		lp := parseListParams(c.Request.URL.Query())
		if err := checkSort(model.Entities[fqn], lp.Sort); err != nil {
			fail(c, http.StatusBadRequest, "Invalid sort", err)
			return
		}

		rows, total, err := s.Store.List(c.Request.Context(), fqn, lp)
		if err != nil {
			fail(c, http.StatusInternalServerError, "List failed", err)
			return
		}

		// ответ - «плоский» + total в заголовке
		out := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.Flatten())
		}
		c.Header("X-Total-Count", strconv.Itoa(total))
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/:module/:entity/:id
func GetOneHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		model, _ := s.Registry.Snapshot()
		fqn, ok := normalizeName(model.Entities, c.Param("module"), c.Param("entity"))
		if !ok {
			fail(c, http.StatusNotFound, "Entity not found", nil)
			return
		}

		row, err := s.Store.Get(c.Request.Context(), fqn, c.Param("id"))
		switch {
		case errors.Is(err, store.ErrNotFound):
			fail(c, http.StatusNotFound, "Record not found", nil)
			return
		case err != nil:
			fail(c, http.StatusInternalServerError, "Get failed", err)
			return
		}
		c.Header("ETag", fmt.Sprintf(`"%d"`, row.Version))
		c.JSON(http.StatusOK, row.Flatten())
	}
}
