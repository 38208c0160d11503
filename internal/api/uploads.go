package api

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/Fatumayattani/lumi-hub/internal/middleware"
	"github.com/Fatumayattani/lumi-hub/internal/response"
	"github.com/Fatumayattani/lumi-hub/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadFile stores a multipart upload in the requested bucket under
// <user_id>/<random>.<ext>. Public buckets get a stable public URL;
// product files return only the object path, reachable solely through
// a signed download URL.
func UploadFile(c *gin.Context) {
	bucket := c.PostForm("bucket")
	if bucket == "" {
		response.ErrorJSON(c, http.StatusBadRequest, "Missing bucket")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Missing file")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Failed to read file")
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	objectPath := fmt.Sprintf("%s/%s%s", middleware.UserID(c), uuid.NewString(), ext)

	stored, err := storageService.Upload(bucket, objectPath, file)
	if err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to store file")
		return
	}

	result := gin.H{"bucket": bucket, "path": stored}
	if services.IsPublicBucket(bucket) {
		result["public_url"] = storageService.PublicURL(bucket, stored)
	}
	response.SuccessJSON(c, result)
}
