package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paycheckplan/backend/internal/httputil"
)

// RegisterHealthzRoutes registers the routes for the healthz endpoint.
// Health does not require a family scope.
func (co *Controller) RegisterHealthzRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsGet)
	r.GET("", co.GetHealthz)
}

// GetHealthz returns the application health and, if not healthy, an error.
func (co *Controller) GetHealthz(c *gin.Context) {
	sqlDB, err := co.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpError{Error: err.Error()})
		return
	}

	err = sqlDB.Ping()
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
