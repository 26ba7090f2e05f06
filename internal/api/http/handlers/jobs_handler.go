package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-intel/internal/worker"
	apperrors "github.com/spec-kit/helpdesk-intel/pkg/util"
)

// JobsHandler exposes the job trigger surface for operational tooling.
type JobsHandler struct {
	runner *worker.Runner
}

// NewJobsHandler constructs the handler.
func NewJobsHandler(runner *worker.Runner) *JobsHandler {
	return &JobsHandler{runner: runner}
}

// RunOnce POST /api/v1/jobs/:name/run forces an out-of-band job execution,
// bypassing the timer but still respecting the re-entrancy guard.
func (h *JobsHandler) RunOnce(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return apperrors.NewValidationError("job name required", nil)
	}
	if err := h.runner.RunOnceNow(c.UserContext(), name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"job": name, "triggered": true}})
}
