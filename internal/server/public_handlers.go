package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/catalog"
	"storefront/internal/storage"
)

func (s *Server) home(c *gin.Context) {
	page, err := s.shop.Page(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "storefront.tmpl", page)
}

// order records the access and sends the visitor to WhatsApp.
func (s *Server) order(c *gin.Context) {
	id, err := catalog.ParseID(c.Param("id"))
	if err != nil {
		s.fail(c, catalog.NotFound("product"))
		return
	}
	link, err := s.shop.Order(c.Request.Context(), int64(id))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, link)
}

// adminPage serves the admin shell to a logged in session and sends
// everyone else to the login page.
func (s *Server) adminPage(c *gin.Context) {
	if err := s.auth.Authenticate(c.Request.Context(), token(c)); err != nil {
		if _, ok := catalog.AsError(err); !ok {
			s.fail(c, err)
			return
		}
		c.Redirect(http.StatusFound, "/admin/login")
		return
	}
	c.HTML(http.StatusOK, "admin.tmpl", gin.H{"Fields": catalog.Fields()})
}

func (s *Server) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_login.tmpl", nil)
}

// media serves objects of the in-memory store in dev mode.
func (s *Server) media(m *storage.Memory) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ct, ok := m.Get(strings.TrimPrefix(c.Param("key"), "/"))
		if !ok {
			s.fail(c, catalog.NotFound("image"))
			return
		}
		c.Header("Cache-Control", "public, max-age=300")
		c.Data(http.StatusOK, ct, data)
	}
}
