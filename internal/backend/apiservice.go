package backend

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/goquantize/internal/backend/database"
	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
	"github.com/jo-hoe/goquantize/internal/backend/imagefile"
	"github.com/jo-hoe/goquantize/internal/core"
)

const mimePNG = "image/png"

type APIService struct {
	config      *core.ServiceConfig
	coreService *core.CoreService
}

// BatchRequest is the body of POST /api/batch
type BatchRequest struct {
	Filter      string   `json:"filter" validate:"required"`
	Source      string   `json:"source" validate:"required"`
	Destination string   `json:"destination"`
	Acceptance  *float64 `json:"acceptance" validate:"omitempty,gte=0,lte=200"`
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService) *APIService {
	return &APIService{
		config:      config,
		coreService: coreService,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	// Probe route for health checks
	e.GET("/probe", func(c echo.Context) error {
		return c.String(http.StatusOK, "API Service is running")
	})

	api := e.Group("/api")
	api.GET("/filters", s.listFiltersHandler)
	api.POST("/filter/:name", s.filterImageHandler)
	api.POST("/batch", s.batchHandler)
	api.GET("/runs", s.listRunsHandler)
	api.GET("/runs/:id", s.getRunHandler)
}

func (s *APIService) listFiltersHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, filterstructure.DefaultRegistry.GetRegisteredNames())
}

func (s *APIService) filterImageHandler(ctx echo.Context) error {
	selector, err := filterstructure.ParseSelector(ctx.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	args, err := filterstructure.NewArgsFromMap(map[string]any{"acceptance": ctx.QueryParam("acceptance")})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		slog.Error("filterImageHandler: failed to get uploaded file",
			"status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "failed to get uploaded file")
	}

	src, err := file.Open()
	if err != nil {
		slog.Error("filterImageHandler: failed to open uploaded file",
			"status", http.StatusInternalServerError, "error", err, "filename", file.Filename)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open uploaded file")
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("filterImageHandler: failed to close uploaded file reader", "error", cerr, "filename", file.Filename)
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		slog.Error("filterImageHandler: failed to read uploaded file",
			"status", http.StatusInternalServerError, "error", err, "filename", file.Filename)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read uploaded file")
	}

	out, err := s.coreService.FilterImage(data, selector, args)
	if errors.Is(err, imagefile.ErrImageTooLarge) {
		slog.Warn("filterImageHandler: rejected oversized image",
			"status", http.StatusRequestEntityTooLarge, "error", err, "filename", file.Filename)
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	}
	if err != nil {
		slog.Error("filterImageHandler: failed to filter uploaded image",
			"status", http.StatusUnprocessableEntity, "error", err, "filename", file.Filename)
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	return ctx.Blob(http.StatusOK, mimePNG, out)
}

func (s *APIService) batchHandler(ctx echo.Context) error {
	var req BatchRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "received invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	selector, err := filterstructure.ParseSelector(req.Filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	report, err := s.coreService.RunBatch(selector, req.Source, req.Destination, filterstructure.Args{Acceptance: req.Acceptance})
	if err != nil {
		slog.Error("batchHandler: batch run failed to start",
			"status", http.StatusBadRequest, "error", err, "source", req.Source)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return ctx.JSON(http.StatusOK, report)
}

func (s *APIService) listRunsHandler(ctx echo.Context) error {
	limit := 50
	if raw := ctx.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	runs, err := s.coreService.GetRuns(limit)
	if err != nil {
		return journalError(err)
	}
	if runs == nil {
		runs = []*database.Run{}
	}
	return ctx.JSON(http.StatusOK, runs)
}

func (s *APIService) getRunHandler(ctx echo.Context) error {
	run, err := s.coreService.GetRun(ctx.Param("id"))
	if err != nil {
		return journalError(err)
	}
	return ctx.JSON(http.StatusOK, run)
}

func journalError(err error) error {
	switch {
	case errors.Is(err, core.ErrJournalDisabled):
		return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
	case errors.Is(err, database.ErrRunNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	slog.Error("failed to read run journal", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "failed to read run journal")
}
