// api/router.go
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kalita/internal/dsl"
	"kalita/internal/entry"
	"kalita/internal/logx"
	"kalita/internal/store"
)

// Server - зависимости HTTP-слоя.
type Server struct {
	Registry *Registry
	Store    store.Store
	Log      *zap.Logger
	AssetURL entry.AssetURLFunc
	DSLDir   string
	LangDir  string
	// OnReload готовит хранилище к новой модели до её публикации.
	OnReload func(ctx context.Context, model *dsl.Model) error
}

func (s *Server) Router() *gin.Engine {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	r := gin.New()
	r.Use(logx.Middleware(s.Log), gin.Recovery())

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/meta", MetaListHandler(s))
		apiGroup.GET("/meta/infolists", MetaInfolistsHandler(s))
		apiGroup.GET("/meta/:module/:entity", MetaEntityHandler(s))

		// статические "служебные" маршруты - СНАЧАЛА
		apiGroup.GET("/infolists/:module/:name/:id", InfolistHandler(s))
		apiGroup.GET("/lang", LocalesHandler(s))
		apiGroup.GET("/lang/:locale", CatalogHandler(s))
		apiGroup.POST("/admin/reload", AdminReloadHandler(s))

		apiGroup.POST("/:module/:entity", CreateHandler(s))
		apiGroup.GET("/:module/:entity", ListHandler(s))
		apiGroup.GET("/:module/:entity/:id", GetOneHandler(s))
	}
	return r
}

func RunServer(addr string, s *Server) error {
	return s.Router().Run(addr)
}
