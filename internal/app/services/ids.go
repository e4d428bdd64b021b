package services

import (
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
)

// parseObjectID validates a chat, event or message id
func parseObjectID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewValidationError(field, field+" must be a 24 character hex id")
	}
	return id, nil
}

// parseUserID validates a user id and returns it in canonical form
func parseUserID(field, raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewValidationError(field, field+" must be a valid UUID")
	}
	return id.String(), nil
}
