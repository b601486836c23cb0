package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/minjun0702/nodeskillproject/internal/adapters/http/api/v1/handlers"
)

type Router struct {
	auth      *handlers.AuthHandler
	resumes   *handlers.ResumeHandler
	accessMW  echo.MiddlewareFunc
	refreshMW echo.MiddlewareFunc
}

func NewRouter(auth *handlers.AuthHandler, resumes *handlers.ResumeHandler, accessMW, refreshMW echo.MiddlewareFunc) *Router {
	return &Router{auth: auth, resumes: resumes, accessMW: accessMW, refreshMW: refreshMW}
}

func (r *Router) Register(g *echo.Group) {
	auth := g.Group("/auth")
	auth.POST("/sign-up", r.auth.SignUp)
	auth.POST("/sign-in", r.auth.SignIn)
	auth.POST("/token", r.auth.Refresh, r.refreshMW)
	auth.POST("/sign-out", r.auth.SignOut, r.refreshMW)

	users := g.Group("/users", r.accessMW)
	users.GET("/me", r.auth.Me)

	resumes := g.Group("/resumes", r.accessMW)
	resumes.POST("", r.resumes.Create)
	resumes.GET("", r.resumes.List)
	resumes.GET("/:id", r.resumes.Get)
	resumes.PATCH("/:id", r.resumes.Update)
	resumes.DELETE("/:id", r.resumes.Delete)
	resumes.PATCH("/:id/status", r.resumes.UpdateStatus)
}
