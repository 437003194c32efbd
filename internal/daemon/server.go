package daemon

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"filemover/internal/logger"
	"filemover/internal/metrics"
	"filemover/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server is the local control API used by the status, stop, sweep and
// history commands.
type Server struct {
	echo     *echo.Echo
	service  *Service
	histRepo *repository.HistoryRepository
	addr     string
	stopCh   chan struct{}
}

func NewServer(service *Service, port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(metrics.EchoMiddleware())

	s := &Server{
		echo:     e,
		service:  service,
		histRepo: repository.NewHistoryRepository(),
		addr:     "127.0.0.1:" + strconv.Itoa(port),
		stopCh:   make(chan struct{}, 1),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)
	s.echo.POST("/stop", s.handleStop)
	s.echo.POST("/sweep", s.handleSweep)
	s.echo.POST("/move", s.handleMove)
	s.echo.GET("/history", s.handleHistory)
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

func (s *Server) Start() {
	go func() {
		logger.Log.Info("control server started",
			zap.String("addr", s.addr))

		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("control server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.service.Snapshot())
}

func (s *Server) handleStop(c echo.Context) error {
	select {
	case s.stopCh <- struct{}{}:
	default:
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

func (s *Server) handleSweep(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Minute)
	defer cancel()

	res, err := s.service.Sweep(ctx)
	if errors.Is(err, ErrNotStarted) {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	body := map[string]any{"result": res}
	if res.Err != nil {
		body["error"] = res.Err.Error()
	}
	return c.JSON(http.StatusOK, body)
}

type moveRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleMove(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil || req.Path == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "path required"})
	}

	outcome, err := s.service.MoveFile(req.Path)
	if errors.Is(err, ErrNotStarted) {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	body := map[string]any{
		"outcome":  outcome.Kind,
		"dst":      outcome.DestPath,
		"attempts": outcome.Attempts,
	}
	if outcome.Err != nil {
		body["error"] = outcome.Err.Error()
	}
	return c.JSON(http.StatusOK, body)
}

func (s *Server) handleHistory(c echo.Context) error {
	n := 20
	if nStr := c.QueryParam("n"); nStr != "" {
		if parsed, err := strconv.Atoi(nStr); err == nil && parsed > 0 {
			n = parsed
		}
	}

	records, err := s.histRepo.GetRecent(n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, records)
}
