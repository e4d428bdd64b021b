package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
)

// ChatsCollection is the Mongo collection holding chats
const ChatsCollection = "chats"

// MongoChatRepository stores chats as documents with embedded messages
type MongoChatRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoChatRepository creates a chat repository over db
func NewMongoChatRepository(db *mongo.Database, timeout time.Duration) *MongoChatRepository {
	return &MongoChatRepository{
		coll:    db.Collection(ChatsCollection),
		timeout: timeout,
	}
}

// EnsureIndexes creates the member and activity indexes
func (r *MongoChatRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "users.userId", Value: 1}}},
		{Keys: bson.D{{Key: "lastActivity", Value: -1}}},
		{Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("error creating chat indexes: %w", err)
	}
	return nil
}

// Create inserts a new chat
func (r *MongoChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if chat.ID.IsZero() {
		chat.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, chat); err != nil {
		return fmt.Errorf("error inserting chat: %w", err)
	}
	return nil
}

// GetByID loads one chat
func (r *MongoChatRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var chat models.Chat
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrChatNotFound
		}
		return nil, fmt.Errorf("error finding chat: %w", err)
	}
	return &chat, nil
}

// Save replaces the chat if its version is unchanged since it was loaded
func (r *MongoChatRepository) Save(ctx context.Context, chat *models.Chat) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	loadedVersion := chat.Version
	chat.Version = loadedVersion + 1
	chat.UpdatedAt = time.Now().UTC()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": chat.ID, "version": loadedVersion}, chat)
	if err != nil {
		chat.Version = loadedVersion
		return fmt.Errorf("error saving chat: %w", err)
	}
	if res.MatchedCount == 0 {
		chat.Version = loadedVersion
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": chat.ID})
		if err != nil {
			return fmt.Errorf("error checking chat existence: %w", err)
		}
		if count == 0 {
			return apperrors.ErrChatNotFound
		}
		return apperrors.ErrVersionConflict
	}
	return nil
}

// Delete removes a chat
func (r *MongoChatRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting chat: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrChatNotFound
	}
	return nil
}

// FindByMembers matches on chat type, all requested members present and an
// equal member count. With unique members per chat that is set equality.
func (r *MongoChatRepository) FindByMembers(ctx context.Context, chatType models.ChatType, memberIDs []string) (*models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{
		"chatType":     chatType,
		"users.userId": bson.M{"$all": memberIDs},
		"users":        bson.M{"$size": len(memberIDs)},
	}

	var chat models.Chat
	err := r.coll.FindOne(ctx, filter).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error looking up chat by members: %w", err)
	}
	return &chat, nil
}

// ListByMember returns userID's chats ordered by lastActivity descending
func (r *MongoChatRepository) ListByMember(ctx context.Context, userID string, includeArchived bool) ([]*models.Chat, error) {
	filter := bson.M{"users.userId": userID}
	if !includeArchived {
		filter["isArchived"] = bson.M{"$ne": true}
	}
	return r.find(ctx, filter)
}

// SearchByName matches chatName as a case-insensitive substring
func (r *MongoChatRepository) SearchByName(ctx context.Context, userID, query string) ([]*models.Chat, error) {
	filter := bson.M{
		"users.userId": userID,
		"isArchived":   bson.M{"$ne": true},
		"chatName":     primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"},
	}
	return r.find(ctx, filter)
}

func (r *MongoChatRepository) find(ctx context.Context, filter bson.M) ([]*models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "lastActivity", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying chats: %w", err)
	}
	defer cursor.Close(ctx)

	chats := []*models.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("error decoding chats: %w", err)
	}
	return chats, nil
}
