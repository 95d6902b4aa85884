package respond

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Empty ends the request with status and no body.
func Empty(c *gin.Context, status int) {
	c.Status(status)
	c.Writer.WriteHeaderNow()
}

// Attachment streams body as a download named filename.
func Attachment(c *gin.Context, filename, contentType string, size int64, body io.Reader) {
	c.DataFromReader(http.StatusOK, size, contentType, body, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": filename}),
	})
}
