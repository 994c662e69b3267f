package handler

import (
	"time"

	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user moderator admin"`
}

type banRequest struct {
	Banned *bool  `json:"banned" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// auditLogResponse is one audit record with the actor resolved to a public
// identity. The role is the snapshot taken at action time.
type auditLogResponse struct {
	ID         string          `json:"id"`
	Actor      ports.UserRef   `json:"actor"`
	ActorRole  domain.Role     `json:"actorRole"`
	Action     string          `json:"action"`
	TargetType string          `json:"targetType"`
	TargetID   string          `json:"targetId"`
	Metadata   domain.Metadata `json:"metadata"`
	IP         string          `json:"ip,omitempty"`
	UserAgent  string          `json:"userAgent,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type auditLogPageResponse struct {
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
	Logs  []auditLogResponse `json:"logs"`
}

func toAuditLogPageResponse(page *ports.AuditLogPage) auditLogPageResponse {
	out := auditLogPageResponse{
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
		Logs:  make([]auditLogResponse, 0, len(page.Logs)),
	}
	for _, lv := range page.Logs {
		rec := lv.Record
		out.Logs = append(out.Logs, auditLogResponse{
			ID:         rec.ID,
			Actor:      lv.Actor,
			ActorRole:  rec.ActorRole,
			Action:     rec.Action,
			TargetType: rec.TargetType,
			TargetID:   rec.TargetID,
			Metadata:   rec.Metadata,
			IP:         rec.IP,
			UserAgent:  rec.UserAgent,
			CreatedAt:  rec.CreatedAt,
		})
	}
	return out
}
