package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/catalog"
)

const apology = "Something went wrong on our side. Please try again later."

var descriptions = map[int]string{
	http.StatusNotFound:        "The page you are looking for does not exist or was removed.",
	http.StatusTooManyRequests: "You are going too fast. Wait a moment and try again.",
	http.StatusUnauthorized:    "Log in to continue.",
	http.StatusForbidden:       "You do not have access to this page.",
}

// wantsJSON reports whether the request belongs to the admin API, which
// always answers with the JSON envelope. Everything else is a browser page.
func wantsJSON(c *gin.Context) bool {
	p := c.Request.URL.Path
	return strings.HasPrefix(p, "/admin/api/") || strings.HasPrefix(p, "/admin/change/api/")
}

// fail aborts the request with err. Client errors keep their status and
// message; anything else is logged and becomes a 500 with a generic apology.
func (s *Server) fail(c *gin.Context, err error) {
	e, ok := catalog.AsError(err)
	if !ok {
		request := c.Request.Method + " " + c.Request.URL.Path
		log.Printf("%s: %v", request, err)
		if s.errlog != nil {
			if werr := s.errlog.Write(request, err); werr != nil {
				log.Printf("errlog: %v", werr)
			}
		}
		e = &catalog.Error{Status: http.StatusInternalServerError, Message: apology}
	}
	if wantsJSON(c) {
		c.AbortWithStatusJSON(e.Status, e)
		return
	}
	c.HTML(e.Status, "error.tmpl", gin.H{
		"Status":      e.Status,
		"Message":     e.Message,
		"Description": description(e.Status),
	})
	c.Abort()
}

func description(status int) string {
	if d, ok := descriptions[status]; ok {
		return d
	}
	if status >= 500 {
		return apology
	}
	return ""
}

func (s *Server) recovered(c *gin.Context, v any) {
	s.fail(c, fmt.Errorf("panic: %v", v))
}

// done answers a successful mutation.
func done(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"status": http.StatusOK, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}
