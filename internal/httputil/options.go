package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OPTIONS handlers, one per method set a resource supports. They answer
// 204 with the "allow" header so clients can discover supported methods.

func optionsResponse(c *gin.Context, allow string) {
	c.Header("allow", allow)
	c.Status(http.StatusNoContent)
}

func OptionsGet(c *gin.Context) {
	optionsResponse(c, "GET")
}

func OptionsGetPost(c *gin.Context) {
	optionsResponse(c, "GET, POST")
}

func OptionsGetDelete(c *gin.Context) {
	optionsResponse(c, "GET, DELETE")
}

func OptionsGetPatchDelete(c *gin.Context) {
	optionsResponse(c, "GET, PATCH, DELETE")
}
