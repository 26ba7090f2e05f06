package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-intel/internal/api/dto"
	"github.com/spec-kit/helpdesk-intel/internal/domain"
	"github.com/spec-kit/helpdesk-intel/internal/service"
	apperrors "github.com/spec-kit/helpdesk-intel/pkg/util"
)

// IntelligenceHandler exposes the duplicate detection, matching and
// estimation engines over HTTP.
type IntelligenceHandler struct {
	duplicates  *service.DuplicateService
	matcher     *service.MatcherService
	estimates   *service.EstimateService
	assignments *service.AssignmentService
}

// NewIntelligenceHandler constructs the handler.
func NewIntelligenceHandler(duplicates *service.DuplicateService, matcher *service.MatcherService, estimates *service.EstimateService, assignments *service.AssignmentService) *IntelligenceHandler {
	return &IntelligenceHandler{
		duplicates:  duplicates,
		matcher:     matcher,
		estimates:   estimates,
		assignments: assignments,
	}
}

// CheckDuplicates POST /api/v1/tickets/check-duplicates.
func (h *IntelligenceHandler) CheckDuplicates(c *fiber.Ctx) error {
	var req dto.DuplicateCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("title required", nil)
	}

	results, err := h.duplicates.DetectDuplicates(c.UserContext(), req.Title, req.Description, req.Threshold)
	if err != nil {
		return err
	}

	matches := make([]dto.SimilarityMatch, 0, len(results))
	for i := range results {
		matches = append(matches, dto.SimilarityMatchFrom(&results[i]))
	}
	return c.JSON(fiber.Map{"data": matches})
}

// SimilarGroups POST /api/v1/tickets/similar-groups.
func (h *IntelligenceHandler) SimilarGroups(c *fiber.Ctx) error {
	var req dto.SimilarGroupsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.TicketIDs) == 0 {
		return apperrors.NewValidationError("ticket_ids required", nil)
	}

	groups, err := h.duplicates.GroupSimilarTickets(c.UserContext(), req.TicketIDs, req.Threshold)
	if err != nil {
		return err
	}

	response := make([]dto.TicketGroupResponse, 0, len(groups))
	for _, group := range groups {
		response = append(response, dto.TicketGroupResponse{SeedID: group.SeedID, Members: group.Members})
	}
	return c.JSON(fiber.Map{"data": response})
}

// SuggestTechnician GET /api/v1/technicians/suggest.
func (h *IntelligenceHandler) SuggestTechnician(c *fiber.Ctx) error {
	categoryID, priority, err := categoryAndPriority(c)
	if err != nil {
		return err
	}

	candidate, err := h.matcher.SuggestTechnician(c.UserContext(), categoryID, priority)
	if err != nil {
		return err
	}
	if candidate == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": dto.TechnicianCandidateFrom(candidate)})
}

// TopTechnicians GET /api/v1/technicians/top.
func (h *IntelligenceHandler) TopTechnicians(c *fiber.Ctx) error {
	categoryID, priority, err := categoryAndPriority(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 5)

	candidates, err := h.matcher.TopTechnicians(c.UserContext(), categoryID, priority, limit)
	if err != nil {
		return err
	}

	response := make([]dto.TechnicianCandidateResponse, 0, len(candidates))
	for i := range candidates {
		response = append(response, dto.TechnicianCandidateFrom(&candidates[i]))
	}
	return c.JSON(fiber.Map{"data": response})
}

// Estimates GET /api/v1/estimates.
func (h *IntelligenceHandler) Estimates(c *fiber.Ctx) error {
	categoryID, priority, err := categoryAndPriority(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	responseMinutes, err := h.estimates.EstimateResponseTime(ctx, categoryID)
	if err != nil {
		return err
	}
	resolutionMinutes, err := h.estimates.EstimateResolutionTime(ctx, categoryID, priority)
	if err != nil {
		return err
	}
	stats, err := h.estimates.GetTimeStatistics(ctx, categoryID, priority)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.EstimateResponse{
		CategoryID:              categoryID,
		Priority:                priority,
		ResponseMinutes:         responseMinutes,
		ResolutionMinutes:       resolutionMinutes,
		SampleSize:              stats.SampleSize,
		MinResolutionMinutes:    stats.MinMinutes,
		MaxResolutionMinutes:    stats.MaxMinutes,
		MedianResolutionMinutes: stats.MedianMinutes,
		GeneratedAt:             time.Now(),
	}})
}

// Assign POST /api/v1/tickets/:id/assign.
func (h *IntelligenceHandler) Assign(c *fiber.Ctx) error {
	ticketID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}

	technicianID, err := h.assignments.AssignTechnician(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AssignmentResponse{
		TicketID:     ticketID,
		TechnicianID: technicianID,
		Assigned:     technicianID != nil,
	}})
}

// Reassign POST /api/v1/tickets/:id/reassign.
func (h *IntelligenceHandler) Reassign(c *fiber.Ctx) error {
	ticketID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == 0 {
		return apperrors.NewValidationError("technician_id required", nil)
	}

	if err := h.assignments.ReassignTicket(c.UserContext(), ticketID, req.TechnicianID, req.Reason); err != nil {
		return err
	}
	technicianID := req.TechnicianID
	return c.JSON(fiber.Map{"data": dto.AssignmentResponse{
		TicketID:     ticketID,
		TechnicianID: &technicianID,
		Assigned:     true,
	}})
}

func categoryAndPriority(c *fiber.Ctx) (int64, domain.TicketPriority, error) {
	categoryID, err := strconv.ParseInt(c.Query("category_id"), 10, 64)
	if err != nil || categoryID <= 0 {
		return 0, "", apperrors.NewValidationError("category_id required", nil)
	}
	priority := domain.TicketPriority(strings.ToUpper(c.Query("priority", string(domain.TicketPriorityMedium))))
	if !priority.Valid() {
		return 0, "", apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	return categoryID, priority, nil
}
