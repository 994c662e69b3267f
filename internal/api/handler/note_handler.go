package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/notely/notes-api/internal/core/ports"
)

// NoteHandler handles HTTP requests for the caller-scoped note surface.
type NoteHandler struct {
	service ports.NoteService
}

func NewNoteHandler(service ports.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

// Create handles POST /api/notes.
//
// @Summary      Create a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createNoteRequest  true  "Note fields"
// @Success      201   {object}  domain.Note
// @Failure      400   {object}  map[string]string
// @Router       /api/notes [post]
func (h *NoteHandler) Create(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	note, err := h.service.Create(c.Request().Context(), actor, ports.CreateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Status:   req.Status,
		Priority: req.Priority,
		Progress: req.Progress,
		Category: req.Category,
		Deadline: req.Deadline,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, note)
}

// List handles GET /api/notes.
//
// @Summary      List visible notes
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Status filter (not_done/done/cancelled)"
// @Param        category  query     string  false  "Category filter"
// @Param        search    query     string  false  "Substring match on title/content/category"
// @Param        scope     query     string  false  "mine or shared; empty means both"
// @Success      200       {array}   noteResponse
// @Router       /api/notes [get]
func (h *NoteHandler) List(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	views, err := h.service.List(c.Request().Context(), actor, ports.ListNotesInput{
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Scope:    c.QueryParam("scope"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toNoteResponses(views))
}

// ListTrash handles GET /api/notes/trash.
//
// @Summary      List the caller's trashed notes
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Note
// @Router       /api/notes/trash [get]
func (h *NoteHandler) ListTrash(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	notes, err := h.service.ListTrash(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notes)
}

// Get handles GET /api/notes/:id.
//
// @Summary      Get a note
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Note id"
// @Success      200  {object}  noteResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/notes/{id} [get]
func (h *NoteHandler) Get(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	view, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toNoteResponse(*view))
}

// Update handles PUT /api/notes/:id.
//
// @Summary      Update note fields
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Note id"
// @Param        body  body      updateNoteRequest  true  "Fields to change"
// @Success      200   {object}  domain.Note
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/notes/{id} [put]
func (h *NoteHandler) Update(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	note, err := h.service.Update(c.Request().Context(), actor, clientMeta(c), c.Param("id"), ports.UpdateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Status:   req.Status,
		Priority: req.Priority,
		Progress: req.Progress,
		Category: req.Category,
		Deadline: req.Deadline,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, note)
}

// UpdateStatus handles PATCH /api/notes/:id/status.
//
// @Summary      Change a note's status
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Note id"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  domain.Note
// @Failure      400   {object}  map[string]string
// @Router       /api/notes/{id}/status [patch]
func (h *NoteHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	note, err := h.service.UpdateStatus(c.Request().Context(), actor, clientMeta(c), c.Param("id"), req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, note)
}

// Trash handles DELETE /api/notes/:id (soft delete, owner only).
//
// @Summary      Move a note to trash
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Note id"
// @Success      200  {object}  domain.Note
// @Failure      403  {object}  map[string]string
// @Router       /api/notes/{id} [delete]
func (h *NoteHandler) Trash(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	note, err := h.service.Trash(c.Request().Context(), actor, clientMeta(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, note)
}

// Restore handles PATCH /api/notes/:id/restore.
//
// @Summary      Restore a trashed note
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Note id"
// @Success      200  {object}  domain.Note
// @Failure      404  {object}  map[string]string
// @Router       /api/notes/{id}/restore [patch]
func (h *NoteHandler) Restore(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	note, err := h.service.Restore(c.Request().Context(), actor, clientMeta(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, note)
}

// HardDelete handles DELETE /api/notes/:id/hard (permanent, owner only,
// trashed notes only).
//
// @Summary      Permanently delete a trashed note
// @Tags         notes
// @Security     BearerAuth
// @Param        id  path  string  true  "Note id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/notes/{id}/hard [delete]
func (h *NoteHandler) HardDelete(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.HardDelete(c.Request().Context(), actor, clientMeta(c), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// ListShares handles GET /api/notes/:id/shares.
//
// @Summary      List a note's share grants
// @Tags         shares
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Note id"
// @Success      200  {array}   ports.ShareView
// @Failure      403  {object}  map[string]string
// @Router       /api/notes/{id}/shares [get]
func (h *NoteHandler) ListShares(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	shares, err := h.service.ListShares(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shares)
}

// Share handles POST /api/notes/:id/share (upsert by target user).
//
// @Summary      Share a note with a user by email
// @Tags         shares
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string        true  "Note id"
// @Param        body  body  shareRequest  true  "Target email and permission"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/notes/{id}/share [post]
func (h *NoteHandler) Share(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req shareRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.Share(c.Request().Context(), actor, clientMeta(c), c.Param("id"), ports.ShareInput{
		Email:      req.Email,
		Permission: req.Permission,
	}); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdateShare handles PATCH /api/notes/:id/share/:userId.
//
// @Summary      Change a share grant's permission
// @Tags         shares
// @Accept       json
// @Security     BearerAuth
// @Param        id      path  string              true  "Note id"
// @Param        userId  path  string              true  "Grantee user id"
// @Param        body    body  updateShareRequest  true  "New permission"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/notes/{id}/share/{userId} [patch]
func (h *NoteHandler) UpdateShare(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateShareRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.UpdateShare(c.Request().Context(), actor, clientMeta(c), c.Param("id"), c.Param("userId"), req.Permission); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// RemoveShare handles DELETE /api/notes/:id/share/:userId.
//
// @Summary      Revoke a share grant
// @Tags         shares
// @Security     BearerAuth
// @Param        id      path  string  true  "Note id"
// @Param        userId  path  string  true  "Grantee user id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/notes/{id}/share/{userId} [delete]
func (h *NoteHandler) RemoveShare(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.RemoveShare(c.Request().Context(), actor, clientMeta(c), c.Param("id"), c.Param("userId")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// ListComments handles GET /api/notes/:id/comments.
//
// @Summary      List a note's comments
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Note id"
// @Success      200  {array}   ports.CommentView
// @Failure      404  {object}  map[string]string
// @Router       /api/notes/{id}/comments [get]
func (h *NoteHandler) ListComments(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	comments, err := h.service.ListComments(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, comments)
}

// AddComment handles POST /api/notes/:id/comments.
//
// @Summary      Add a comment to a note
// @Tags         comments
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string          true  "Note id"
// @Param        body  body  commentRequest  true  "Comment text"
// @Success      201
// @Failure      403  {object}  map[string]string
// @Router       /api/notes/{id}/comments [post]
func (h *NoteHandler) AddComment(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.AddComment(c.Request().Context(), actor, clientMeta(c), c.Param("id"), req.Text); err != nil {
		return err
	}

	return c.NoContent(http.StatusCreated)
}
