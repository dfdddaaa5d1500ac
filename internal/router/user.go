package router

import (
	"github.com/altairhq/usermanagement/internal/constants"
	"github.com/gin-gonic/gin"
)

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	{
		// Registration is open; everything else needs a token.
		users.POST("", r.userHandler.Create)

		protected := users.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.GET("", r.userHandler.GetAll)
			protected.GET("/search", r.userHandler.Search)
			protected.GET("/:id", r.userHandler.GetByID)
			protected.PUT("/:id", r.userHandler.UpdateProfile)

			// Bulk deletion is admin-only.
			protected.DELETE("", r.jwtMw.RequireRole(constants.RoleAdmin), r.userHandler.DeleteUsers)
		}
	}
}
