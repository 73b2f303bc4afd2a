package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HomePage is the document served at /
const HomePage = "<h1>Hello from Ubuntu VM!</h1><p>This was built and pushed from a Linux environment.</p>"

const htmlContentType = "text/html; charset=utf-8"

var (
	homePage       = []byte(HomePage)
	homePageLength = strconv.Itoa(len(homePage))
)

// handleHome serves the static home page. Content-Length is explicit so
// HEAD reports the same length as GET.
func (s *Server) handleHome(c *gin.Context) {
	c.Header("Content-Length", homePageLength)
	c.Data(http.StatusOK, htmlContentType, homePage)
}
