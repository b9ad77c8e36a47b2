package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/themeboard/internal/service"
)

// CommentHandler handles comment reads and writes.
type CommentHandler struct {
	themeService *service.ThemeService
}

// NewCommentHandler creates a new comment handler.
// Parameters:
//   - themeService: theme service instance.
// Returns:
//   - *CommentHandler: initialized handler.
func NewCommentHandler(themeService *service.ThemeService) *CommentHandler {
	return &CommentHandler{
		themeService: themeService,
	}
}

// TextRequest is the body of comment submissions and replies.
type TextRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListComments handles GET /api/v1/comments.
func (h *CommentHandler) ListComments(c *gin.Context) {
	comments, err := h.themeService.Comments(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list comments", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"total":    len(comments),
	})
}

// GetComment handles GET /api/v1/comments/:id.
func (h *CommentHandler) GetComment(c *gin.Context) {
	id, ok := commentID(c)
	if !ok {
		return
	}

	comment, err := h.themeService.Comment(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to get comment", err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// SubmitComment handles POST /api/v1/comments. The new comment is classified
// before it is stored; the response carries its theme.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *CommentHandler) SubmitComment(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	comment, err := h.themeService.ClassifyOne(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, "Failed to classify comment", err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Upvote handles POST /api/v1/comments/:id/upvote.
func (h *CommentHandler) Upvote(c *gin.Context) {
	id, ok := commentID(c)
	if !ok {
		return
	}

	comment, err := h.themeService.Upvote(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to upvote", err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// AddReply handles POST /api/v1/comments/:id/replies.
func (h *CommentHandler) AddReply(c *gin.Context) {
	id, ok := commentID(c)
	if !ok {
		return
	}

	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	comment, err := h.themeService.AddReply(c.Request.Context(), id, req.Text)
	if err != nil {
		respondError(c, "Failed to add reply", err)
		return
	}

	c.JSON(http.StatusOK, comment)
}
