package domain

import "time"

// Audit action tags. The set is append-only; renaming a tag would orphan
// existing records.
const (
	ActionNoteEdit            = "NOTE_EDIT"
	ActionNoteTrash           = "NOTE_TRASH"
	ActionNoteRestore         = "NOTE_RESTORE"
	ActionNoteDeletePermanent = "NOTE_DELETE_PERMANENT"
	ActionNoteShareAdd        = "NOTE_SHARE_ADD"
	ActionNoteShareUpdate     = "NOTE_SHARE_UPDATE"
	ActionNoteShareRemove     = "NOTE_SHARE_REMOVE"
	ActionNoteCommentAdd      = "NOTE_COMMENT_ADD"
	ActionUserRoleUpdate      = "USER_ROLE_UPDATE"
	ActionUserBan             = "USER_BAN"
	ActionUserUnban           = "USER_UNBAN"
)

// Audit target types.
const (
	TargetNote = "Note"
	TargetUser = "User"
)

// Metadata is free-form audit context. Values are restricted to a closed set
// of shapes (string, integer, float, bool, nested Metadata) so that audit
// queries stay type-safe; NormalizeMetadata enforces this at record time.
type Metadata map[string]any

// NormalizeMetadata returns a copy of m containing only the allowed value
// shapes. Times and domain enums are converted to strings; anything else is
// omitted.
func NormalizeMetadata(m Metadata) Metadata {
	if len(m) == 0 {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			// skip
		case string, bool, int, int32, int64, float32, float64:
			out[k] = val
		case Metadata:
			out[k] = NormalizeMetadata(val)
		case map[string]any:
			out[k] = NormalizeMetadata(Metadata(val))
		case time.Time:
			out[k] = val.UTC().Format(time.RFC3339)
		case *time.Time:
			if val != nil {
				out[k] = val.UTC().Format(time.RFC3339)
			}
		case Status:
			out[k] = string(val)
		case Permission:
			out[k] = string(val)
		case Role:
			out[k] = string(val)
		}
	}
	return out
}

// AuditRecord is an immutable entry in the append-only audit trail. The actor
// role is a snapshot taken at action time, not a live reference.
type AuditRecord struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor"`
	ActorRole  Role      `json:"actorRole"`
	Action     string    `json:"action"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	Metadata   Metadata  `json:"metadata"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"userAgent"`
	CreatedAt  time.Time `json:"createdAt"`
}
