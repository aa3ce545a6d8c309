package server

import (
	"net/http"
	"time"

	"github.com/berfenger/dyson2mqtt/internal/core/domain"
	"github.com/berfenger/dyson2mqtt/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/devices", s.ListDevicesHandler)
	e.GET("/devices/:serial", s.GetDeviceHandler)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) ListDevicesHandler(c echo.Context) error {
	sessions := s.devices.List()
	out := make([]domain.DeviceSummary, 0, len(sessions))
	for _, session := range sessions {
		snapshot, err := session.Snapshot()
		if err != nil {
			s.logger.Warn("device snapshot failed", zap.String("serial", session.GetSerial()), zap.Error(err))
			continue
		}
		out = append(out, snapshot.Summary())
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) GetDeviceHandler(c echo.Context) error {
	session, ok := s.devices.Get(c.Param("serial"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown device")
	}
	snapshot, err := session.Snapshot()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(http.StatusOK, snapshot.Summary())
}
