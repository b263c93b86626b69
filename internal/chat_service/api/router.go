package api

import "github.com/gin-gonic/gin"

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/chat", s.chat)

		feedGroup := v1.Group("/feed")
		{
			feedGroup.POST("", s.createEntry)
			feedGroup.GET("", s.listEntries)
			feedGroup.POST("/batch", s.batchCreate)
			feedGroup.POST("/search", s.searchEntries)
			feedGroup.POST("/crawl", s.crawlEntry)
			feedGroup.GET("/stats/summary", s.feedStats)
			feedGroup.GET("/:id", s.getEntry)
			feedGroup.PUT("/:id", s.updateEntry)
			feedGroup.DELETE("/:id", s.deleteEntry)
			feedGroup.GET("/:id/chunks", s.entryChunks)
		}
	}
	return r
}
