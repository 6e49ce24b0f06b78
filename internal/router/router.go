package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"farmverify/internal/auth"
	"farmverify/internal/config"
	apperrors "farmverify/internal/errors"
	"farmverify/internal/handler"
	"farmverify/internal/middleware"
)

// Register wires routes and middleware. rdb may be nil, in which case the
// auth endpoints are not rate limited.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *zap.Logger,
	jwtService *auth.JWTService,
	rdb *redis.Client,
	authHandler *handler.AuthHandler,
	farmerHandler *handler.FarmerHandler,
	adminHandler *handler.AdminHandler,
) {
	if log == nil {
		log = zap.NewNop()
	}

	e.HideBanner = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(log)

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: corsOrigins(cfg),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
	}))
	e.Use(middleware.RequestLogger(log))

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("/health", handler.Health)

	// Public routes
	authGroup := api.Group("/auth", middleware.NewTokenBucket(cfg.RateLimit, rdb, log))
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	authenticate := middleware.Authenticate(jwtService)

	// Farmer routes; admins reach certificate and location too
	farmers := api.Group("/farmers", authenticate)
	farmers.GET("/me/status", farmerHandler.GetMyStatus)
	farmers.GET("/:id/certificate", farmerHandler.GetCertificate)
	farmers.PATCH("/:id/location", farmerHandler.UpdateLocation)

	// Admin routes
	admin := api.Group("/admin", authenticate)
	admin.GET("/farmers", adminHandler.ListFarmers)
	admin.GET("/farmers/stats", adminHandler.GetStats)
	admin.GET("/farmers/:id", adminHandler.GetFarmer)
	admin.PATCH("/farmers/:id/status", adminHandler.SetStatus)
}

func corsOrigins(cfg *config.Config) []string {
	if cfg.Env == "development" || cfg.CORSOrigin == "" {
		return []string{"*"}
	}
	return []string{cfg.CORSOrigin}
}

// ErrorHandler renders every failure in the response envelope. Handler
// errors already carry an ErrorResponse; domain errors returned from
// middleware are mapped here.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(cause(err)),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func render(err error) (int, apperrors.ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch msg := he.Message.(type) {
		case apperrors.ErrorResponse:
			return he.Code, msg
		case error:
			return he.Code, apperrors.ErrorResponse{Error: msg.Error()}
		default:
			return he.Code, apperrors.ErrorResponse{Error: fmt.Sprint(msg)}
		}
	}

	httpErr := apperrors.MapErrorToHTTP(err)
	return httpErr.StatusCode, httpErr.ToErrorResponse()
}

func cause(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Internal != nil {
		return he.Internal
	}
	return err
}
