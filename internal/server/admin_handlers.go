package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"storefront/internal/admin"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/mask"
)

func (s *Server) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, catalog.Invalid("invalid json"))
		return
	}
	tok, err := s.auth.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.saveToken(c, tok); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "token": tok})
}

func (s *Server) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		s.fail(c, err)
		return
	}
	done(c, "logged out", nil)
}

func (s *Server) saveToken(c *gin.Context, tok string) error {
	session := sessions.Default(c)
	session.Set(sessionToken, tok)
	return session.Save()
}

func (s *Server) readHeader(c *gin.Context) {
	h, err := s.admin.Header(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) readFooter(c *gin.Context) {
	f, err := s.admin.Footer(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) readPropagandas(c *gin.Context) {
	list, err := s.admin.Propagandas(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) readCategories(c *gin.Context) {
	list, err := s.admin.Categories(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) readProducts(c *gin.Context) {
	list, err := s.admin.Products(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type propagandaForm struct {
	ImagesContext []string `schema:"imagesContext"`
}

func (s *Server) createPropaganda(c *gin.Context) {
	var form propagandaForm
	if err := s.decoder.Decode(&form, c.Request.MultipartForm.Value); err != nil {
		s.fail(c, catalog.Invalid("invalid form"))
		return
	}
	p, err := s.admin.CreatePropaganda(c.Request.Context(), uploaded(c), form.ImagesContext)
	if err != nil {
		s.fail(c, err)
		return
	}
	done(c, "propaganda created", gin.H{"id": p.ID, "position": p.Position})
}

type idBody struct {
	ID *catalog.ID `json:"id"`
}

// bindID reads {id} from a JSON body.
func (s *Server) bindID(c *gin.Context) (int64, bool) {
	var body idBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, catalog.Invalid("id must be a number"))
		return 0, false
	}
	if body.ID == nil {
		s.fail(c, catalog.Invalid("id is required"))
		return 0, false
	}
	return int64(*body.ID), true
}

func (s *Server) deletePropaganda(c *gin.Context) {
	id, ok := s.bindID(c)
	if !ok {
		return
	}
	if err := s.admin.DeletePropaganda(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	done(c, "propaganda deleted", nil)
}

func (s *Server) createCategory(c *gin.Context) {
	var body struct {
		Name json.RawMessage `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, catalog.Invalid("invalid json"))
		return
	}
	name, err := stringValue(catalog.CategoryName, body.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	cat, err := s.admin.CreateCategory(c.Request.Context(), name)
	if err != nil {
		s.fail(c, err)
		return
	}
	done(c, "category created", gin.H{"id": cat.ID, "position": cat.Position})
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := s.bindID(c)
	if !ok {
		return
	}
	n, err := s.admin.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	done(c, "category deleted", gin.H{"deletedProducts": n})
}

func (s *Server) createProduct(c *gin.Context) {
	var form admin.ProductForm
	if err := s.decoder.Decode(&form, c.Request.MultipartForm.Value); err != nil {
		s.fail(c, catalog.Invalid("invalid form"))
		return
	}
	p, err := s.admin.CreateProduct(c.Request.Context(), form, uploaded(c)[0])
	if err != nil {
		s.fail(c, err)
		return
	}
	done(c, "product created", gin.H{"id": p.ID, "position": p.Position})
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := s.bindID(c)
	if !ok {
		return
	}
	if err := s.admin.DeleteProduct(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	done(c, "product deleted", nil)
}

// updateText handles PUT {id, <column>: value} for one text field.
func (s *Server) updateText(f catalog.Field) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]json.RawMessage
		if err := c.ShouldBindJSON(&body); err != nil {
			s.fail(c, catalog.Invalid("invalid json"))
			return
		}
		var id catalog.ID
		if !f.Table.Singleton() {
			raw, ok := body["id"]
			if !ok {
				s.fail(c, catalog.Invalid("id is required"))
				return
			}
			if err := json.Unmarshal(raw, &id); err != nil {
				s.fail(c, catalog.Invalid("id must be a number"))
				return
			}
		}
		value, err := stringValue(f, body[f.Column])
		if err != nil {
			s.fail(c, err)
			return
		}
		v, err := s.admin.UpdateText(c.Request.Context(), f, int64(id), value)
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, f.String()+" updated", gin.H{f.Column: v})
	}
}

// numericFields may be sent as JSON numbers; every other field must be a string.
var numericFields = map[catalog.Field]bool{
	catalog.ProductCategory: true,
	catalog.ProductPrice:    true,
	catalog.ProductOff:      true,
}

// stringValue accepts a JSON string, or a number for numeric columns.
func stringValue(f catalog.Field, raw json.RawMessage) (string, error) {
	var n json.Number
	if numericFields[f] && len(raw) > 0 && raw[0] != '"' && json.Unmarshal(raw, &n) == nil {
		return n.String(), nil
	}
	return mask.String(f, raw)
}

type imageForm struct {
	ID string `schema:"id"`
}

func (s *Server) replaceImage(f catalog.Field) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form imageForm
		if err := s.decoder.Decode(&form, c.Request.MultipartForm.Value); err != nil {
			s.fail(c, catalog.Invalid("invalid form"))
			return
		}
		var id catalog.ID
		if !f.Table.Singleton() {
			parsed, err := catalog.ParseID(form.ID)
			if err != nil {
				s.fail(c, catalog.Invalid("id must be a number"))
				return
			}
			id = parsed
		}
		key, err := s.admin.ReplaceImage(c.Request.Context(), f, int64(id), uploaded(c)[0])
		if err != nil {
			s.fail(c, err)
			return
		}
		done(c, f.String()+" updated", gin.H{f.Column: key, "url": s.admin.URL(c.Request.Context(), key)})
	}
}

func (s *Server) reorder(t catalog.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			IDs []catalog.ID `json:"ids"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			s.fail(c, catalog.Invalid("ids must be a list of numbers"))
			return
		}
		if body.IDs == nil {
			s.fail(c, catalog.Invalid("ids is required"))
			return
		}
		if err := s.admin.Reorder(c.Request.Context(), t, catalog.Int64s(body.IDs)); err != nil {
			s.fail(c, err)
			return
		}
		done(c, string(t)+" reordered", nil)
	}
}

func (s *Server) changeCredential(change func(context.Context, auth.Change) (string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body auth.Change
		if err := c.ShouldBindJSON(&body); err != nil {
			s.fail(c, catalog.Invalid("invalid json"))
			return
		}
		tok, err := change(c.Request.Context(), body)
		if err != nil {
			s.fail(c, err)
			return
		}
		if err := s.saveToken(c, tok); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "message": "credential changed", "token": tok})
	}
}
