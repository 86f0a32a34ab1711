package reconciliation

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"position-tally/core/logger"
	"position-tally/core/reconcile"
	"position-tally/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles HTTP requests for reconciliations.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the reconciliation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/positions/:provider", h.HandleGetPositions)

	group := app.Group("/reconciliations")
	group.Post("/", h.HandleReconcile)
	if h.service.History() != nil {
		group.Get("/", h.HandleListRuns)
		group.Get("/:id", h.HandleGetRun)
	}
}

// ReconcileRequest is the JSON body of POST /reconciliations.
type ReconcileRequest struct {
	Left     string   `json:"left"`
	Right    []string `json:"right"`
	Date     string   `json:"date"`
	Accounts []string `json:"accounts"`
	Primary  string   `json:"primary"`
	// Fallback is optional. An explicit empty string disables the fallback pass.
	Fallback *string `json:"fallback"`
	Policy   string  `json:"policy"`
	Export   *bool   `json:"export"`
	Store    *bool   `json:"store"`
}

// HandleGetPositions returns the canonical positions of one provider.
// GET /positions/:provider?date=2024-12-31&accounts=U1,U2
func (h *Handler) HandleGetPositions(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	provider := c.Params("provider")

	date, err := parseDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	table, err := h.service.Table(c.Context(), provider, date, splitList(c.Query("accounts")))
	if err != nil {
		l.Error("Failed to load positions", zap.String("provider", provider), zap.Error(err))
		return c.Status(StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"provider":  provider,
		"date":      date.Format(time.DateOnly),
		"positions": table.Rows(),
	})
}

// HandleReconcile runs a reconciliation of one provider against one or more others.
// POST /reconciliations
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var body ReconcileRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Left == "" || len(body.Right) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "left and right providers are required"})
	}
	date, err := parseDate(body.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	req := h.service.Defaults(body.Left, "", date)
	req.Accounts = body.Accounts
	if body.Primary != "" {
		req.Primary = reconcile.Identifier(body.Primary)
	}
	if body.Fallback != nil {
		req.Fallback = reconcile.Identifier(*body.Fallback)
	}
	if body.Policy != "" {
		req.Policy = body.Policy
	}
	if body.Export != nil {
		req.Export = *body.Export
	}
	if body.Store != nil {
		req.Store = *body.Store
	}

	outcomes, err := h.service.RunAll(c.Context(), req, body.Right...)
	if err != nil {
		l.Error("Reconciliation failed",
			zap.String("left", body.Left),
			zap.Strings("right", body.Right),
			zap.Error(err))
		return c.Status(StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"runs": outcomes})
}

// HandleListRuns returns the most recent stored runs.
// GET /reconciliations?limit=20
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
	}

	runs, err := h.service.History().List(c.Context(), limit)
	if err != nil {
		l.Error("Failed to list runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"runs": runs})
}

// HandleGetRun returns one stored run with its breaks.
// GET /reconciliations/:id
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	id := c.Params("id")

	run, err := h.service.History().Get(c.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "run not found"})
	}
	if err != nil {
		l.Error("Failed to get run", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(run)
}

// StatusFor maps a reconciliation error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, reconcile.ErrConfiguration), errors.Is(err, reconcile.ErrUnknownProvider):
		return fiber.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, reconcile.ErrSchemaViolation), errors.Is(err, reconcile.ErrJoinIntegrity):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, reconcile.ErrTransport):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("date is required (YYYY-MM-DD)")
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, errors.New("invalid date, expected YYYY-MM-DD")
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
