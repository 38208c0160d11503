package api

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/response"
	"github.com/Fatumayattani/lumi-hub/internal/services"

	"github.com/gin-gonic/gin"
)

func fileModTime(f *os.File) time.Time {
	if info, err := f.Stat(); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}

// ServePublicObject serves an object from a public bucket
func ServePublicObject(c *gin.Context) {
	bucket := c.Param("bucket")
	objectPath := strings.TrimPrefix(c.Param("path"), "/")

	if !services.IsPublicBucket(bucket) {
		response.ErrorJSON(c, http.StatusForbidden, "Bucket is not public")
		return
	}

	file, err := storageService.Open(bucket, objectPath)
	if err != nil {
		response.ErrorJSON(c, http.StatusNotFound, "Object not found")
		return
	}
	defer file.Close()

	http.ServeContent(c.Writer, c.Request, objectPath, fileModTime(file), file)
}

// ServeSignedObject serves a private object after validating the signed
// URL token. Expired tokens are denied.
func ServeSignedObject(c *gin.Context) {
	bucket := c.Param("bucket")
	objectPath := strings.TrimPrefix(c.Param("path"), "/")
	token := c.Query("token")

	if token == "" {
		response.ErrorJSON(c, http.StatusUnauthorized, "Missing download token")
		return
	}
	if err := storageService.VerifySignedToken(token, bucket, objectPath); err != nil {
		response.ErrorJSON(c, http.StatusForbidden, "Download link is invalid or expired")
		return
	}

	file, err := storageService.Open(bucket, objectPath)
	if err != nil {
		response.ErrorJSON(c, http.StatusNotFound, "Object not found")
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", "attachment")
	http.ServeContent(c.Writer, c.Request, objectPath, fileModTime(file), file)
}
