package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	apierrors "github.com/AtSheen/efg/internal/errors"
)

// NoRoute answers requests for unknown paths with the standard 404 envelope.
func NoRoute(c *gin.Context) {
	apierrors.NotFound(c, fmt.Sprintf("No route for %s %s", c.Request.Method, c.Request.URL.Path))
}
