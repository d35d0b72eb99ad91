package server

import (
	"strings"

	"bullpen/internal/models"
	"bullpen/internal/moderation"

	"github.com/gofiber/fiber/v2"
)

type analyzeRequest struct {
	UserID  uint   `json:"user_id"`
	Content string `json:"content"`
}

// AnalyzeMessage runs the detector pipeline against arbitrary content
// without persisting anything or executing actions. Admin tooling uses this
// to preview how the pipeline would score a message.
func (s *Server) AnalyzeMessage(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Content) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("content is required"))
	}
	if req.UserID == 0 {
		req.UserID = c.Locals("userID").(uint)
	}

	result := s.engine.AnalyzeMessage(c.UserContext(), req.UserID, req.Content, s.config.Moderation)
	return c.JSON(result)
}

type executeActionRequest struct {
	Type            string `json:"type"`
	Reason          string `json:"reason"`
	DurationMinutes *int   `json:"duration_minutes"`
}

// ExecuteUserAction applies a moderator-initiated action against a user.
func (s *Server) ExecuteUserAction(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	moderatorID := c.Locals("userID").(uint)

	var req executeActionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	actionType := models.ActionType(strings.ToLower(strings.TrimSpace(req.Type)))
	switch actionType {
	case models.ActionWarning, models.ActionStrike, models.ActionMute,
		models.ActionBan, models.ActionKick:
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown action type"))
	}
	if req.DurationMinutes != nil && *req.DurationMinutes < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("duration_minutes cannot be negative"))
	}

	if _, err := s.userRepo.GetByID(c.UserContext(), targetID); err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == models.CodeNotFound {
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "Manual moderation action"
	}

	action := moderation.Action{
		Type:            actionType,
		Reason:          reason,
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.engine.ExecuteAction(c.UserContext(), targetID, action, &moderatorID, s.config.Moderation); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	status, err := s.engine.GetUserModerationStatus(c.UserContext(), targetID, s.config.Moderation)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"executed": true,
		"status":   status,
	})
}

// GetUserStatus returns the moderation standing of an arbitrary user.
func (s *Server) GetUserStatus(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	status, err := s.engine.GetUserModerationStatus(c.UserContext(), targetID, s.config.Moderation)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(status)
}

// ListUserActions returns the moderation action history for a user.
func (s *Server) ListUserActions(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	limit := parseLimit(c)

	actions, err := s.actionRepo.ListForUser(c.UserContext(), targetID, limit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"actions": actions,
		"limit":   limit,
	})
}

// RunCleanup triggers an immediate expiry sweep.
func (s *Server) RunCleanup(c *fiber.Ctx) error {
	purged, err := s.engine.CleanupExpiredActions(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"purged": purged,
	})
}
