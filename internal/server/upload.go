package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/admin"
	"storefront/internal/catalog"
	"storefront/internal/imaging"
)

const (
	maxUploadBytes = 5 << 20
	filesKey       = "uploadedFiles"

	// formOverhead covers multipart headers and the non-file fields.
	formOverhead = 1 << 20
)

// uploadFiles parses the multipart body and keeps between min and max files
// of field in memory for the handler. Only images are accepted.
func (s *Server) uploadFiles(field string, min, max int) gin.HandlerFunc {
	limit := int64(max)*maxUploadBytes + formOverhead
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		form, err := c.MultipartForm()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.fail(c, catalog.Invalid("request body is larger than %d MB", limit>>20))
				return
			}
			s.fail(c, catalog.Invalid("invalid multipart form"))
			return
		}
		headers := form.File[field]
		if len(headers) < min {
			s.fail(c, catalog.Invalid("%s requires at least %d file(s)", field, min))
			return
		}
		if len(headers) > max {
			s.fail(c, catalog.Invalid("%s accepts at most %d file(s)", field, max))
			return
		}
		files := make([]admin.File, 0, len(headers))
		for _, h := range headers {
			f, err := readFile(h)
			if err != nil {
				s.fail(c, err)
				return
			}
			files = append(files, f)
		}
		c.Set(filesKey, files)
		c.Next()
	}
}

func readFile(h *multipart.FileHeader) (admin.File, error) {
	if h.Size == 0 {
		return admin.File{}, catalog.Invalid("%s is empty", h.Filename)
	}
	if h.Size > maxUploadBytes {
		return admin.File{}, catalog.Invalid("%s is larger than %d MB", h.Filename, maxUploadBytes>>20)
	}
	src, err := h.Open()
	if err != nil {
		return admin.File{}, fmt.Errorf("open upload %s: %w", h.Filename, err)
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return admin.File{}, fmt.Errorf("read upload %s: %w", h.Filename, err)
	}
	ct, err := imaging.Sniff(data)
	if err != nil {
		return admin.File{}, err
	}
	return admin.File{Name: h.Filename, ContentType: ct, Data: data}, nil
}

func uploaded(c *gin.Context) []admin.File {
	files, _ := c.Get(filesKey)
	out, _ := files.([]admin.File)
	return out
}
