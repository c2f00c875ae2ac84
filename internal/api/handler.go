package api

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bobby-s-dev/weather-cli/internal/cache"
	"github.com/bobby-s-dev/weather-cli/internal/models"
	"github.com/bobby-s-dev/weather-cli/internal/report"
	"github.com/bobby-s-dev/weather-cli/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ForecastReader is the read-only part of services.Forecaster.
type ForecastReader interface {
	Cities(ctx context.Context) ([]models.City, error)
	Stored(ctx context.Context, name string, offsets []int) (report.Selection, error)
	Stats() services.Stats
}

type Handler struct {
	forecaster ForecastReader
	logger     *zap.Logger
	validate   *validator.Validate
	startTime  time.Time
}

type forecastQuery struct {
	Offsets []int `validate:"min=1,max=16,dive,min=0,max=15"`
}

func NewHandler(forecaster ForecastReader, logger *zap.Logger) *Handler {
	return &Handler{
		forecaster: forecaster,
		logger:     logger,
		validate:   validator.New(),
		startTime:  time.Now(),
	}
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
		"stats":     h.forecaster.Stats(),
	})
}

// GetCities handles GET /api/v1/cities
func (h *Handler) GetCities(c *fiber.Ctx) error {
	cities, err := h.forecaster.Cities(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"cities": cities,
	})
}

// GetForecast handles GET /api/v1/cities/:name/forecast
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	name := c.Params("name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	offsets, err := parseOffsets(c)
	if err == nil {
		err = h.validate.Struct(forecastQuery{Offsets: offsets})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "offset must be a day number between 0 and 15",
			"details": err.Error(),
		})
	}

	sel, err := h.forecaster.Stored(c.UserContext(), name, offsets)
	if errors.Is(err, cache.ErrUnknownCity) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "city is not stored",
			"city":  name,
		})
	}
	if err != nil {
		h.logger.Error("Failed to read stored forecast",
			zap.String("city", name),
			zap.Error(err))
		return err
	}

	return c.JSON(sel)
}

// parseOffsets accepts repeated and comma separated offset parameters and
// defaults to today.
func parseOffsets(c *fiber.Ctx) ([]int, error) {
	raw := c.Context().QueryArgs().PeekMulti("offset")
	if len(raw) == 0 {
		return []int{0}, nil
	}

	var offsets []int
	for _, value := range raw {
		for _, part := range strings.Split(string(value), ",") {
			offset, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			offsets = append(offsets, offset)
		}
	}
	return offsets, nil
}
