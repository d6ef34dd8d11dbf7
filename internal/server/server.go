// Package server exposes the storefront and the admin API over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"

	"storefront/internal/admin"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/errlog"
	"storefront/internal/storage"
	"storefront/internal/storefront"
)

const sessionName = "storefront_session"

// Deps are the collaborators the server is built from.
type Deps struct {
	Store         catalog.Store
	Objects       storage.Store
	Auth          *auth.Service
	ErrLog        *errlog.Log
	SessionSecret string
	// RateLimitRequests per RateLimitWindow are allowed per client IP.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSOrigins       []string
}

// Server holds the handlers' shared state.
type Server struct {
	admin   *admin.Service
	shop    *storefront.Shop
	auth    *auth.Service
	errlog  *errlog.Log
	objects storage.Store
	decoder *schema.Decoder
	limiter *limiter
}

// New builds the gin engine with every route registered.
func New(d Deps) *gin.Engine {
	s := &Server{
		admin:   admin.New(d.Store, d.Objects),
		shop:    storefront.New(d.Store, d.Objects),
		auth:    d.Auth,
		errlog:  d.ErrLog,
		objects: d.Objects,
		decoder: schema.NewDecoder(),
		limiter: newLimiter(d.RateLimitRequests, d.RateLimitWindow),
	}
	s.decoder.IgnoreUnknownKeys(true)

	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(gin.Logger(), gin.CustomRecovery(s.recovered))
	if len(d.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = d.CORSOrigins
		cfg.AllowCredentials = true
		cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
		r.Use(cors.New(cfg))
	}
	store := cookie.NewStore([]byte(d.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(s.rateLimit)

	r.SetHTMLTemplate(templates)
	s.routes(r)
	return r
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", s.home)
	r.GET("/api/order/:id", s.order)
	r.GET("/admin", s.adminPage)
	r.GET("/admin/login", s.loginPage)
	if m, ok := s.objects.(*storage.Memory); ok {
		r.GET(m.BasePath+"/*key", s.media(m))
	}

	api := r.Group("/admin/api")
	api.POST("/login", s.login)
	api.POST("/logout", s.logout)

	gated := api.Group("", s.requireAdmin)
	gated.POST("/header", s.readHeader)
	gated.POST("/footer", s.readFooter)
	gated.POST("/propagandas", s.readPropagandas)
	gated.POST("/categories", s.readCategories)
	gated.POST("/products", s.readProducts)

	gated.POST("/propaganda", s.uploadFiles("images", 2, 2), s.createPropaganda)
	gated.DELETE("/propaganda", s.deletePropaganda)
	gated.POST("/category", s.createCategory)
	gated.DELETE("/category", s.deleteCategory)
	gated.POST("/product", s.uploadFiles("image", 1, 1), s.createProduct)
	gated.DELETE("/product", s.deleteProduct)

	for _, f := range catalog.Fields() {
		path := "/" + string(f.Table) + "/" + f.Column
		if f.Kind == catalog.KindImage {
			gated.PUT(path, s.uploadFiles("image", 1, 1), s.replaceImage(f))
		} else {
			gated.PUT(path, s.updateText(f))
		}
	}
	for _, t := range []catalog.Table{catalog.TablePropagandas, catalog.TableCategories, catalog.TableProducts} {
		gated.PUT("/"+string(t), s.reorder(t))
	}

	change := r.Group("/admin/change/api", s.requireAdmin)
	change.PUT("/username", s.changeCredential(s.auth.ChangeUsername))
	change.PUT("/password", s.changeCredential(s.auth.ChangePassword))

	r.NoRoute(func(c *gin.Context) {
		s.fail(c, catalog.NotFound("page"))
	})
}
