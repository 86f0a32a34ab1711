package integrity

import (
	"time"

	"position-tally/core/logger"
	"position-tally/core/utils"
	"position-tally/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/exports", h.HandleExportsCheck)
	group.Get("/history", h.HandleHistoryCheck)
}

// HandleIntegrityCheck runs every integrity check.
// GET /integrity?date=2024-12-31
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	date, err := checkDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx := c.Context()
	report := make(map[string]interface{})

	report["exports"] = h.service.CheckExports(ctx, date)

	if hist, err := h.service.CheckHistory(ctx); err != nil {
		report["history"] = map[string]interface{}{"status": checks.StatusError, "error": err.Error()}
	} else {
		report["history"] = hist
	}

	return c.JSON(report)
}

// HandleExportsCheck reports which provider exports are present for a date.
// GET /integrity/exports?date=2024-12-31
func (h *Handler) HandleExportsCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	date, err := checkDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	reports := h.service.CheckExports(c.Context(), date)
	var missing []string
	for _, r := range reports {
		if r.Status != checks.StatusOK {
			missing = append(missing, r.Provider)
		}
	}
	if len(missing) > 0 {
		l.Warn("Provider exports unavailable", zap.Strings("providers", missing))
	}

	return c.JSON(fiber.Map{
		"date":    date.Format(time.DateOnly),
		"exports": reports,
	})
}

// HandleHistoryCheck validates the run history schema.
// GET /integrity/history
func (h *Handler) HandleHistoryCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckHistory(c.Context())
	if err != nil {
		l.Error("History check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// checkDate parses the date query parameter. Empty selects the last business day before today.
func checkDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return utils.LastBusinessDay(time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)), nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	return d, nil
}
