package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"atelier/gallery"

	"github.com/gin-gonic/gin"
)

// maxFileSize is the per-file upload ceiling.
const maxFileSize = 10 << 20

// UploadImages accepts a multipart batch under the "images" field
// (falling back to a single "image" field) and hands the buffered
// payloads to the reconciliation service.
func UploadImages(svc *gallery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := idParam(c)
		if !ok {
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse multipart form: " + err.Error()})
			return
		}

		files := form.File["images"]
		if len(files) == 0 {
			files = form.File["image"]
		}

		uploads, err := bufferUploads(files)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		count, err := svc.Create(ctx, projectID, uploads)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "images stored",
			"count":   count,
		})
	}
}

func ListGallery(svc *gallery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		entries, err := svc.List(ctx)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, entries)
	}
}

func DeleteImage(svc *gallery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID, ok := idParam(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		if err := svc.Delete(ctx, imageID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "image deleted"})
	}
}

// ReplaceImage swaps an image's content ("image" file field) and/or
// its owning project ("project_id" form field). Both are optional; a
// request with neither only refreshes the upload timestamp.
func ReplaceImage(svc *gallery.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID, ok := idParam(c)
		if !ok {
			return
		}

		var newProjectID *int64
		if raw := c.PostForm("project_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
				return
			}
			newProjectID = &id
		}

		var file *gallery.Upload
		fh, err := c.FormFile("image")
		switch {
		case err == nil:
			up, err := bufferUpload(fh)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			file = &up
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			// No replacement content supplied.
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload: " + err.Error()})
			return
		}

		ctx := c.Request.Context()
		if err := svc.Replace(ctx, imageID, newProjectID, file); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "image updated"})
	}
}

// bufferUploads reads each received file into memory, enforcing the
// per-file size ceiling before buffering.
func bufferUploads(files []*multipart.FileHeader) ([]gallery.Upload, error) {
	uploads := make([]gallery.Upload, 0, len(files))
	for _, fh := range files {
		up, err := bufferUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, up)
	}
	return uploads, nil
}

func bufferUpload(fh *multipart.FileHeader) (gallery.Upload, error) {
	if fh.Size > maxFileSize {
		return gallery.Upload{}, fmt.Errorf("%s exceeds the %d MB limit", fh.Filename, maxFileSize>>20)
	}

	f, err := fh.Open()
	if err != nil {
		return gallery.Upload{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return gallery.Upload{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	if len(data) > maxFileSize {
		return gallery.Upload{}, fmt.Errorf("%s exceeds the %d MB limit", fh.Filename, maxFileSize>>20)
	}

	return gallery.Upload{Name: fh.Filename, Data: data}, nil
}
