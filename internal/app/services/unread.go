package services

import "github.com/Nand2004/GeoConnect-sub000/internal/app/models"

// UnreadPredicate decides whether chat has anything userID has not read
type UnreadPredicate func(chat *models.Chat, userID string) bool

// HasUnreadLiteral counts every message without a read receipt from userID,
// the user's own messages included.
func HasUnreadLiteral(chat *models.Chat, userID string) bool {
	for i := range chat.Messages {
		if !chat.Messages[i].IsReadBy(userID) {
			return true
		}
	}
	return false
}

// HasUnreadExcludingOwn ignores messages userID sent
func HasUnreadExcludingOwn(chat *models.Chat, userID string) bool {
	for i := range chat.Messages {
		msg := &chat.Messages[i]
		if msg.Sender != userID && !msg.IsReadBy(userID) {
			return true
		}
	}
	return false
}

// UnreadPredicateFor picks the predicate for the chat.unread_excludes_own_messages setting
func UnreadPredicateFor(excludeOwn bool) UnreadPredicate {
	if excludeOwn {
		return HasUnreadExcludingOwn
	}
	return HasUnreadLiteral
}
