package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

const collectionAuditLogs = "audit_logs"

// AuditRepository implements ports.AuditRepository on MongoDB. The collection
// is append-only; there is no update or delete path.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuditLogs)}
}

type auditDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ActorID    primitive.ObjectID `bson:"actor"`
	ActorRole  string             `bson:"actorRole"`
	Action     string             `bson:"action"`
	TargetType string             `bson:"targetType"`
	TargetID   string             `bson:"targetId"`
	Metadata   bson.M             `bson:"metadata"`
	IP         string             `bson:"ip"`
	UserAgent  string             `bson:"userAgent"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d *auditDoc) toDomain() *domain.AuditRecord {
	meta := domain.Metadata{}
	for k, v := range d.Metadata {
		meta[k] = v
	}
	return &domain.AuditRecord{
		ID:         d.ID.Hex(),
		ActorID:    d.ActorID.Hex(),
		ActorRole:  domain.Role(d.ActorRole),
		Action:     d.Action,
		TargetType: d.TargetType,
		TargetID:   d.TargetID,
		Metadata:   meta,
		IP:         d.IP,
		UserAgent:  d.UserAgent,
		CreatedAt:  d.CreatedAt,
	}
}

func (r *AuditRepository) Insert(ctx context.Context, rec *domain.AuditRecord) error {
	actor, err := primitive.ObjectIDFromHex(rec.ActorID)
	if err != nil {
		return err
	}

	doc := auditDoc{
		ActorID:    actor,
		ActorRole:  string(rec.ActorRole),
		Action:     rec.Action,
		TargetType: rec.TargetType,
		TargetID:   rec.TargetID,
		Metadata:   bson.M(rec.Metadata),
		IP:         rec.IP,
		UserAgent:  rec.UserAgent,
		CreatedAt:  rec.CreatedAt,
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.col.InsertOne(ctx, doc)
	return err
}

func (r *AuditRepository) List(ctx context.Context, f ports.AuditLogFilter) ([]*domain.AuditRecord, int64, error) {
	filter := bson.M{}
	if f.ActorID != "" {
		actor, err := primitive.ObjectIDFromHex(f.ActorID)
		if err != nil {
			return []*domain.AuditRecord{}, 0, nil
		}
		filter["actor"] = actor
	}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.TargetType != "" {
		filter["targetType"] = f.TargetType
	}
	if f.TargetID != "" {
		filter["targetId"] = f.TargetID
	}
	if !f.DateFrom.IsZero() || !f.DateTo.IsZero() {
		created := bson.M{}
		if !f.DateFrom.IsZero() {
			created["$gte"] = f.DateFrom
		}
		if !f.DateTo.IsZero() {
			created["$lte"] = f.DateTo
		}
		filter["createdAt"] = created
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := int64(f.Page-1) * int64(f.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	records := []*domain.AuditRecord{}
	for cur.Next(ctx) {
		var doc auditDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, err
		}
		records = append(records, doc.toDomain())
	}
	return records, total, cur.Err()
}

// EnsureIndexes creates the indexes the audit-log query filters use.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "actor", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}}},
		{Keys: bson.D{{Key: "targetType", Value: 1}, {Key: "targetId", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
