package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/notely/notes-api/internal/core/ports"
)

// AdminHandler handles the staff and admin surface. Role gating happens twice:
// coarse at the route group (RBAC middleware) and fine in the service, so a
// wiring mistake in one layer cannot open the surface.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsers handles GET /api/admin/users (admin only).
//
// @Summary      List users with full detail
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Substring match on username/email"
// @Success      200     {array}   domain.User
// @Failure      403     {object}  map[string]string
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	users, err := h.service.ListUsers(c.Request().Context(), actor, c.QueryParam("search"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, users)
}

// ListUsersLite handles GET /api/admin/users-lite (any staff role).
//
// @Summary      List users, role and ban state only
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ports.UserLite
// @Failure      403  {object}  map[string]string
// @Router       /api/admin/users-lite [get]
func (h *AdminHandler) ListUsersLite(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	users, err := h.service.ListUsersLite(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, users)
}

// UpdateUserRole handles PATCH /api/admin/users/:id/role (admin only).
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/admin/users/{id}/role [patch]
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.UpdateUserRole(c.Request().Context(), actor, clientMeta(c), c.Param("id"), req.Role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// SetUserBan handles PATCH /api/admin/users/:id/ban (admin only). The same
// endpoint bans and unbans, driven by the banned flag.
//
// @Summary      Ban or unban a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string      true  "User id"
// @Param        body  body      banRequest  true  "Ban flag and optional reason"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/admin/users/{id}/ban [patch]
func (h *AdminHandler) SetUserBan(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req banRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.SetUserBan(c.Request().Context(), actor, clientMeta(c), c.Param("id"), *req.Banned, req.Reason)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// ListNotes handles GET /api/admin/notes (any staff role).
//
// @Summary      List notes across all users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        owner           query     string  false  "Filter by owner id"
// @Param        includeDeleted  query     bool    false  "Include trashed notes"
// @Param        search          query     string  false  "Substring match on title/content"
// @Success      200             {array}   noteResponse
// @Failure      403             {object}  map[string]string
// @Router       /api/admin/notes [get]
func (h *AdminHandler) ListNotes(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	includeDeleted, _ := strconv.ParseBool(c.QueryParam("includeDeleted"))

	views, err := h.service.ListNotes(c.Request().Context(), actor, ports.StaffListNotesInput{
		OwnerID:        c.QueryParam("owner"),
		IncludeDeleted: includeDeleted,
		Search:         c.QueryParam("search"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toNoteResponses(views))
}

// UpdateNote handles PATCH /api/admin/notes/:id (any staff role, no
// ownership gate).
//
// @Summary      Edit any user's note
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Note id"
// @Param        body  body      updateNoteRequest  true  "Fields to change"
// @Success      200   {object}  noteResponse
// @Failure      404   {object}  map[string]string
// @Router       /api/admin/notes/{id} [patch]
func (h *AdminHandler) UpdateNote(c echo.Context) error {
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

	view, err := h.service.UpdateNote(c.Request().Context(), actor, clientMeta(c), c.Param("id"), ports.UpdateNoteInput{
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

	return c.JSON(http.StatusOK, toNoteResponse(*view))
}

// TrashNote handles PATCH /api/admin/notes/:id/trash (any staff role).
//
// @Summary      Move any user's note to trash
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Note id"
// @Success      200  {object}  noteResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/notes/{id}/trash [patch]
func (h *AdminHandler) TrashNote(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	view, err := h.service.TrashNote(c.Request().Context(), actor, clientMeta(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toNoteResponse(*view))
}

// RestoreNote handles PATCH /api/admin/notes/:id/restore (any staff role).
//
// @Summary      Restore any user's trashed note
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Note id"
// @Success      200  {object}  noteResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/notes/{id}/restore [patch]
func (h *AdminHandler) RestoreNote(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	view, err := h.service.RestoreNote(c.Request().Context(), actor, clientMeta(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toNoteResponse(*view))
}

// DeleteNote handles DELETE /api/admin/notes/:id (admin only,
// permanent, works on any state).
//
// @Summary      Permanently delete any user's note
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "Note id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/notes/{id} [delete]
func (h *AdminHandler) DeleteNote(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteNote(c.Request().Context(), actor, clientMeta(c), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// ListAuditLogs handles GET /api/admin/audit-logs (admin only).
//
// @Summary      Query the audit trail
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        actorId     query     string  false  "Filter by actor id"
// @Param        action      query     string  false  "Filter by action tag"
// @Param        targetType  query     string  false  "Filter by target type (Note/User)"
// @Param        targetId    query     string  false  "Filter by target id"
// @Param        dateFrom    query     string  false  "RFC3339 or YYYY-MM-DD lower bound"
// @Param        dateTo      query     string  false  "RFC3339 or YYYY-MM-DD upper bound"
// @Param        page        query     int     false  "1-based page"
// @Param        limit       query     int     false  "Rows per page, max 500"
// @Success      200         {object}  auditLogPageResponse
// @Failure      400         {object}  map[string]string
// @Router       /api/admin/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	logs, err := h.service.ListAuditLogs(c.Request().Context(), actor, ports.AuditLogQuery{
		ActorID:    c.QueryParam("actorId"),
		Action:     c.QueryParam("action"),
		TargetType: c.QueryParam("targetType"),
		TargetID:   c.QueryParam("targetId"),
		DateFrom:   c.QueryParam("dateFrom"),
		DateTo:     c.QueryParam("dateTo"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuditLogPageResponse(logs))
}
