package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

const collectionNotes = "notes"

// NoteRepository implements ports.NoteRepository on MongoDB. Shares and
// comments are embedded in the note document, so every note operation is a
// single-document write.
type NoteRepository struct {
	col *mongo.Collection
}

func NewNoteRepository(db *mongo.Database) *NoteRepository {
	return &NoteRepository{col: db.Collection(collectionNotes)}
}

type shareDoc struct {
	UserID     primitive.ObjectID `bson:"user"`
	Permission string             `bson:"permission"`
	SharedAt   time.Time          `bson:"sharedAt"`
	SharedBy   primitive.ObjectID `bson:"sharedBy,omitempty"`
}

type commentDoc struct {
	UserID    primitive.ObjectID `bson:"user"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type noteDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID    primitive.ObjectID `bson:"user"`
	Title      string             `bson:"title"`
	Content    string             `bson:"content"`
	Status     string             `bson:"status"`
	Progress   int                `bson:"progress"`
	Category   string             `bson:"category"`
	Deadline   *time.Time         `bson:"deadline"`
	Priority   int                `bson:"priority"`
	IsDeleted  bool               `bson:"isDeleted"`
	DeletedAt  *time.Time         `bson:"deletedAt"`
	SharedWith []shareDoc         `bson:"sharedWith"`
	Comments   []commentDoc       `bson:"comments"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func toNoteDoc(n *domain.Note) (*noteDoc, error) {
	owner, err := primitive.ObjectIDFromHex(n.OwnerID)
	if err != nil {
		return nil, err
	}
	doc := &noteDoc{
		OwnerID:    owner,
		Title:      n.Title,
		Content:    n.Content,
		Status:     string(n.Status),
		Progress:   n.Progress,
		Category:   n.Category,
		Deadline:   n.Deadline,
		Priority:   n.Priority,
		IsDeleted:  n.IsDeleted,
		DeletedAt:  n.DeletedAt,
		SharedWith: make([]shareDoc, 0, len(n.SharedWith)),
		Comments:   make([]commentDoc, 0, len(n.Comments)),
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
	for _, g := range n.SharedWith {
		sd, err := toShareDoc(g)
		if err != nil {
			return nil, err
		}
		doc.SharedWith = append(doc.SharedWith, sd)
	}
	for _, c := range n.Comments {
		cd, err := toCommentDoc(c)
		if err != nil {
			return nil, err
		}
		doc.Comments = append(doc.Comments, cd)
	}
	return doc, nil
}

func toShareDoc(g domain.ShareGrant) (shareDoc, error) {
	uid, err := primitive.ObjectIDFromHex(g.UserID)
	if err != nil {
		return shareDoc{}, err
	}
	sd := shareDoc{UserID: uid, Permission: string(g.Permission), SharedAt: g.SharedAt}
	if by, err := primitive.ObjectIDFromHex(g.SharedBy); err == nil {
		sd.SharedBy = by
	}
	return sd, nil
}

func toCommentDoc(c domain.Comment) (commentDoc, error) {
	uid, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return commentDoc{}, err
	}
	return commentDoc{UserID: uid, Text: c.Text, CreatedAt: c.CreatedAt}, nil
}

func (d *noteDoc) toDomain() *domain.Note {
	n := &domain.Note{
		ID:         d.ID.Hex(),
		OwnerID:    d.OwnerID.Hex(),
		Title:      d.Title,
		Content:    d.Content,
		Status:     domain.Status(d.Status),
		Progress:   d.Progress,
		Category:   d.Category,
		Deadline:   d.Deadline,
		Priority:   d.Priority,
		IsDeleted:  d.IsDeleted,
		DeletedAt:  d.DeletedAt,
		SharedWith: make([]domain.ShareGrant, 0, len(d.SharedWith)),
		Comments:   make([]domain.Comment, 0, len(d.Comments)),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	for _, sd := range d.SharedWith {
		g := domain.ShareGrant{
			UserID:     sd.UserID.Hex(),
			Permission: domain.Permission(sd.Permission),
			SharedAt:   sd.SharedAt,
		}
		if !sd.SharedBy.IsZero() {
			g.SharedBy = sd.SharedBy.Hex()
		}
		n.SharedWith = append(n.SharedWith, g)
	}
	for _, cd := range d.Comments {
		n.Comments = append(n.Comments, domain.Comment{
			UserID:    cd.UserID.Hex(),
			Text:      cd.Text,
			CreatedAt: cd.CreatedAt,
		})
	}
	return n
}

func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	doc, err := toNoteDoc(n)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	created := *n
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *NoteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNoteNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *NoteRepository) FindVisible(ctx context.Context, id, viewerID string) (*domain.Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNoteNotFound
	}
	viewer, err := primitive.ObjectIDFromHex(viewerID)
	if err != nil {
		return nil, domain.ErrNoteNotFound
	}

	filter := bson.M{
		"_id":       oid,
		"isDeleted": false,
		"$or": bson.A{
			bson.M{"user": viewer},
			bson.M{"sharedWith.user": viewer},
		},
	}
	return r.findOne(ctx, filter)
}

func (r *NoteRepository) findOne(ctx context.Context, filter bson.M) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc noteDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *NoteRepository) List(ctx context.Context, f ports.NoteListFilter) ([]*domain.Note, error) {
	viewer, err := primitive.ObjectIDFromHex(f.ViewerID)
	if err != nil {
		return []*domain.Note{}, nil
	}

	conds := bson.A{bson.M{"isDeleted": false}}
	switch f.Scope {
	case ports.ScopeMine:
		conds = append(conds, bson.M{"user": viewer})
	case ports.ScopeShared:
		conds = append(conds, bson.M{"sharedWith.user": viewer})
	default:
		conds = append(conds, bson.M{"$or": bson.A{
			bson.M{"user": viewer},
			bson.M{"sharedWith.user": viewer},
		}})
	}
	if f.Status != "" {
		conds = append(conds, bson.M{"status": string(f.Status)})
	}
	if f.Category != "" {
		conds = append(conds, bson.M{"category": f.Category})
	}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		conds = append(conds, bson.M{"$or": bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"content": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"category": bson.M{"$regex": pattern, "$options": "i"}},
		}})
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: -1},
		{Key: "updatedAt", Value: -1},
	})
	return r.findMany(ctx, bson.M{"$and": conds}, opts)
}

func (r *NoteRepository) ListTrash(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []*domain.Note{}, nil
	}

	filter := bson.M{"user": owner, "isDeleted": true}
	opts := options.Find().SetSort(bson.D{
		{Key: "deletedAt", Value: -1},
		{Key: "updatedAt", Value: -1},
	})
	return r.findMany(ctx, filter, opts)
}

func (r *NoteRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	notes := []*domain.Note{}
	for cur.Next(ctx) {
		var doc noteDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		notes = append(notes, doc.toDomain())
	}
	return notes, cur.Err()
}

// Update persists the note's mutable fields with last-write-wins semantics.
// Comments are excluded; AppendComment is the only comment write path.
func (r *NoteRepository) Update(ctx context.Context, n *domain.Note) error {
	oid, err := primitive.ObjectIDFromHex(n.ID)
	if err != nil {
		return domain.ErrNoteNotFound
	}

	shares := make([]shareDoc, 0, len(n.SharedWith))
	for _, g := range n.SharedWith {
		sd, err := toShareDoc(g)
		if err != nil {
			return err
		}
		shares = append(shares, sd)
	}

	fields := bson.M{
		"title":      n.Title,
		"content":    n.Content,
		"status":     string(n.Status),
		"progress":   n.Progress,
		"category":   n.Category,
		"deadline":   n.Deadline,
		"priority":   n.Priority,
		"isDeleted":  n.IsDeleted,
		"deletedAt":  n.DeletedAt,
		"sharedWith": shares,
		"updatedAt":  time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) AppendComment(ctx context.Context, noteID string, c domain.Comment) error {
	oid, err := primitive.ObjectIDFromHex(noteID)
	if err != nil {
		return domain.ErrNoteNotFound
	}
	cd, err := toCommentDoc(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"comments": cd},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNoteNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) StaffList(ctx context.Context, f ports.StaffNoteFilter) ([]*domain.Note, error) {
	filter := bson.M{}
	if !f.IncludeDeleted {
		filter["isDeleted"] = false
	}
	if f.OwnerID != "" {
		owner, err := primitive.ObjectIDFromHex(f.OwnerID)
		if err != nil {
			return []*domain.Note{}, nil
		}
		filter["user"] = owner
	}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"content": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"category": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return r.findMany(ctx, filter, opts)
}

// EnsureIndexes creates the indexes the listing queries lean on.
func (r *NoteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "isDeleted", Value: 1}}},
		{Keys: bson.D{{Key: "sharedWith.user", Value: 1}}},
		{Keys: bson.D{{Key: "priority", Value: -1}, {Key: "updatedAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
