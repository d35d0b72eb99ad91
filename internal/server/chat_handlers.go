package server

import (
	"log/slog"
	"strings"

	"bullpen/internal/models"
	"bullpen/internal/moderation"

	"github.com/gofiber/fiber/v2"
)

const maxMessageLength = 2000

type postMessageRequest struct {
	RoomID  uint   `json:"room_id"`
	Content string `json:"content"`
}

type postMessageResponse struct {
	Message    *models.Message        `json:"message,omitempty"`
	Accepted   bool                   `json:"accepted"`
	Violations []moderation.Violation `json:"violations,omitempty"`
	Action     *moderation.Action     `json:"action,omitempty"`
	Summary    string                 `json:"summary,omitempty"`
}

// PostMessage accepts a chat message, runs it through the moderation
// pipeline, and persists it only when no actionable violation was found.
func (s *Server) PostMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	ctx := c.UserContext()

	var req postMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Message content is required"))
	}
	if len(content) > maxMessageLength {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Message content too long"))
	}
	if req.RoomID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("room_id is required"))
	}

	status, err := s.engine.GetUserModerationStatus(ctx, userID, s.config.Moderation)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if !status.CanChat {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":        "You are not allowed to chat",
			"is_muted":     status.IsMuted,
			"is_banned":    status.IsBanned,
			"muted_until":  status.MutedUntil,
			"banned_until": status.BannedUntil,
		})
	}

	result := s.engine.AnalyzeMessage(ctx, userID, content, s.config.Moderation)

	// A blocked result means the counter store was down under the fail-closed
	// policy. The message is rejected but nothing is recorded against the
	// user: no action, no trust change, no status mutation.
	if result.Blocked {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewUnavailableError("Moderation checks are temporarily unavailable"))
	}

	if len(result.Violations) > 0 {
		if err := s.engine.ExecuteAction(ctx, userID, result.Action, nil, s.config.Moderation); err != nil {
			slog.ErrorContext(ctx, "automated action failed",
				"user_id", userID, "action", result.Action.Type, "err", err)
		}
	}

	// Warnings let the message through; anything stronger rejects it.
	if len(result.Violations) > 0 && result.Action.Type != models.ActionWarning {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(postMessageResponse{
			Accepted:   false,
			Violations: result.Violations,
			Action:     &result.Action,
			Summary:    result.Summary,
		})
	}

	msg := &models.Message{
		RoomID:  req.RoomID,
		UserID:  userID,
		Content: content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	resp := postMessageResponse{Message: msg, Accepted: true}
	if len(result.Violations) > 0 {
		resp.Violations = result.Violations
		resp.Action = &result.Action
		resp.Summary = result.Summary
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListRoomMessages returns recent messages for a room, newest first.
func (s *Server) ListRoomMessages(c *fiber.Ctx) error {
	roomID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	limit := parseLimit(c)

	messages, err := s.messageRepo.ListByRoom(c.UserContext(), roomID, limit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"messages": messages,
		"limit":    limit,
	})
}

// GetOwnStatus lets an authenticated user see their own moderation standing.
func (s *Server) GetOwnStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	status, err := s.engine.GetUserModerationStatus(c.UserContext(), userID, s.config.Moderation)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(status)
}
