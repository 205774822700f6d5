package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"ragd/internal/types"
	"ragd/pkg/engine"
)

type Config struct {
	Addr      string
	JWTSecret string
	RateLimit float64 // requests per second per client IP
}

type Server struct {
	config Config
	echo   *echo.Echo
	engine *engine.Engine
	store  types.FragmentStore
	logger *log.Logger
}

func New(config Config, eng *engine.Engine, store types.FragmentStore) (*Server, error) {
	if config.Addr == "" {
		config.Addr = ":8000"
	}
	if config.RateLimit == 0 {
		config.RateLimit = 20
	}
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("%w: jwt secret is required", types.ErrInvalidConfiguration)
	}

	logger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(config.RateLimit))))
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]string{"detail": msg})
		}
	}

	s := &Server{
		config: config,
		echo:   e,
		engine: eng,
		store:  store,
		logger: logger,
	}

	auth := &authHandler{store: store, secret: []byte(config.JWTSecret)}

	e.GET("/", s.index)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/register", auth.register)
	e.POST("/login", auth.login)

	protected := e.Group("", auth.middleware)
	protected.GET("/documents", s.documents)
	protected.DELETE("/documents/:id", s.deleteDocument)
	protected.POST("/upload", s.upload)
	protected.POST("/query", s.query)
	protected.GET("/ws", s.websocket)

	return s, nil
}

func (s *Server) Start() error {
	s.logger.Printf("listening on %s", s.config.Addr)
	return s.echo.Start(s.config.Addr)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// httpError maps core error kinds onto HTTP statuses. Wrapped detail
// stays in the message; no storage-engine internals are attached.
func httpError(err error) error {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrInvalidConfiguration):
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	case errors.Is(err, types.ErrStorageFailure):
		return echo.NewHTTPError(http.StatusInternalServerError, "storage failure")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
