package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

const (
	logMsgRequest       = "http request"
	logMsgRequestFailed = "http request failed"
	logMsgRefreshFailed = "catalogue refresh after write failed"
	logMsgStaleListing  = "serving last good snapshot after failed refresh"

	logAttrMethod     = "method"
	logAttrURI        = "uri"
	logAttrStatus     = "status"
	logAttrDurationMS = "duration_ms"
	logAttrRequestID  = "request_id"
	logAttrError      = "error"
)

const rateLimiterExpiry = 3 * time.Minute

var (
	// ErrEmptyJWTSecret is returned when the server is created without a signing secret.
	ErrEmptyJWTSecret = errors.New("jwt secret must not be empty")

	// ErrInvalidTokenTTL is returned when the token lifetime is not positive.
	ErrInvalidTokenTTL = errors.New("token ttl must be positive")

	// ErrNilService is returned when the server is created without a Service.
	ErrNilService = errors.New("service must not be nil")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Option configures a Server.
type Option func(*Server) error

// WithLogger logs every request and every failed request through logger.
func WithLogger(logger catalog.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithClock replaces the clock used to stamp issued tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Server) error {
		if now != nil {
			s.issuer.now = now
		}
		return nil
	}
}

// WithRateLimit limits requests per client IP to limit per second with the given burst.
// A non-positive limit disables rate limiting.
func WithRateLimit(limit float64, burst int) Option {
	return func(s *Server) error {
		s.rateLimit = limit
		s.rateBurst = burst
		return nil
	}
}

// Server is the HTTP surface of the catalogue.
type Server struct {
	echo      *echo.Echo
	service   Service
	issuer    tokenIssuer
	logger    catalog.Logger
	rateLimit float64
	rateBurst int
}

// NewServer creates a Server with all routes registered.
func NewServer(service Service, jwtSecret []byte, tokenTTL time.Duration, options ...Option) (*Server, error) {
	if service == nil {
		return nil, ErrNilService
	}

	if len(jwtSecret) == 0 {
		return nil, ErrEmptyJWTSecret
	}

	if tokenTTL <= 0 {
		return nil, ErrInvalidTokenTTL
	}

	s := &Server{
		service: service,
		issuer:  tokenIssuer{secret: jwtSecret, ttl: tokenTTL, now: time.Now},
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.JSONSerializer = jsonSerializer{}

	s.registerMiddleware()
	s.registerRoutes()

	return s, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) registerMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	if s.logger != nil {
		s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:    true,
			LogURI:       true,
			LogStatus:    true,
			LogLatency:   true,
			LogRequestID: true,
			LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
				s.logger.Info(logMsgRequest,
					logAttrMethod, v.Method,
					logAttrURI, v.URI,
					logAttrStatus, v.Status,
					logAttrDurationMS, v.Latency.Milliseconds(),
					logAttrRequestID, v.RequestID,
				)
				return nil
			},
		}))
	}

	if s.rateLimit > 0 {
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: middleware.DefaultSkipper,
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.rateLimit),
				Burst:     s.rateBurst,
				ExpiresIn: rateLimiterExpiry,
			}),
			IdentifierExtractor: func(c echo.Context) (string, error) {
				return c.RealIP(), nil
			},
			ErrorHandler: func(c echo.Context, _ error) error {
				return c.JSON(http.StatusTooManyRequests, errorBody("rate limit exceeded"))
			},
			DenyHandler: func(c echo.Context, _ string, _ error) error {
				return c.JSON(http.StatusTooManyRequests, errorBody("rate limit exceeded"))
			},
		}))
	}
}

func (s *Server) registerRoutes() {
	h := &handlers{service: s.service, issuer: s.issuer, logger: s.logger}

	s.echo.GET("/health", h.health)
	s.echo.POST("/login", h.login)

	api := s.echo.Group("/api", s.issuer.middleware())

	api.GET("/books", list(h, s.service.ListBooks))
	api.GET("/customers", list(h, s.service.ListCustomers))
	api.GET("/discounts", list(h, s.service.ListDiscounts))
	api.GET("/penalties", list(h, s.service.ListPenalties))
	api.GET("/orders", list(h, s.service.ListOrders))
	api.GET("/users", list(h, s.service.ListUsers), requireAdmin)
	api.GET("/orders/:id", h.orderByID)
	api.GET("/lookups/discounts", h.lookupDiscounts)
	api.GET("/lookups/penalties", h.lookupPenalties)

	api.POST("/books", h.addBook, requireAdmin)
	api.DELETE("/books/:isbn", h.deleteBook, requireAdmin)
	api.POST("/customers", h.addCustomer, requireAdmin)
	api.DELETE("/customers/:id", h.deleteCustomer, requireAdmin)
	api.POST("/orders", h.createOrder, requireAdmin)
	api.DELETE("/orders/:id", h.deleteOrder, requireAdmin)
	api.POST("/orders/:id/discounts", h.addDiscountToOrder, requireAdmin)
	api.POST("/orders/:id/penalties", h.addPenaltyToOrder, requireAdmin)
}

// jsonSerializer encodes and decodes request and response bodies with json-iterator.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}

	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i any) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload").SetInternal(err)
	}

	return nil
}
