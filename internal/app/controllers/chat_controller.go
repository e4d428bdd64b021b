package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models/dto"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/services"
	"github.com/Nand2004/GeoConnect-sub000/internal/middleware"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/apperrors"
)

// ChatController handles chat, messaging and group membership endpoints
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{
		chatService: chatService,
	}
}

// CreateChat godoc
// @Summary Create or reuse a chat
// @Description Returns the existing chat when one with the same type and exact member set exists
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.CreateChatRequest true "Participants"
// @Success 201 {object} models.Chat "Chat created"
// @Success 200 {object} models.Chat "Existing chat reused"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /chat/chatCreateChat [post]
func (c *ChatController) CreateChat(ctx *gin.Context) {
	var req dto.CreateChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	chat, created, err := c.chatService.CreateChat(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, chat)
}

// GetChat godoc
// @Summary Get chat by ID
// @Tags chat
// @Produce json
// @Param chatId path string true "Chat ID"
// @Success 200 {object} models.Chat
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /chat/chatGetById/{chatId} [get]
func (c *ChatController) GetChat(ctx *gin.Context) {
	chat, err := c.chatService.GetChat(ctx.Request.Context(), ctx.Param("chatId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, chat)
}

// ListUserChats godoc
// @Summary List a user's chats
// @Description Most recently active first. Archived chats are excluded unless includeArchived=true
// @Tags chat
// @Produce json
// @Param userId path string true "User ID"
// @Param includeArchived query bool false "Include archived chats"
// @Success 200 {array} models.Chat
// @Failure 400 {object} dto.ErrorResponse
// @Router /chat/chatGetByUserId/{userId} [get]
func (c *ChatController) ListUserChats(ctx *gin.Context) {
	includeArchived := false
	if raw := ctx.Query("includeArchived"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("includeArchived", "includeArchived must be a boolean"))
			return
		}
		includeArchived = parsed
	}

	chats, err := c.chatService.ListUserChats(ctx.Request.Context(), ctx.Param("userId"), includeArchived)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, chats)
}

// SearchChats godoc
// @Summary Search a user's chats by name
// @Tags chat
// @Produce json
// @Param userId query string true "User ID"
// @Param q query string true "Name fragment"
// @Success 200 {array} models.Chat
// @Failure 400 {object} dto.ErrorResponse
// @Router /chat/chatSearch [get]
func (c *ChatController) SearchChats(ctx *gin.Context) {
	chats, err := c.chatService.SearchChats(ctx.Request.Context(), ctx.Query("userId"), ctx.Query("q"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, chats)
}

// ArchiveChat sets or clears the archived flag
func (c *ChatController) ArchiveChat(ctx *gin.Context) {
	var req dto.ArchiveChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	chat, err := c.chatService.ArchiveChat(ctx.Request.Context(), ctx.Param("chatId"), *req.Archived)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Chat unarchived"
	if *req.Archived {
		message = "Chat archived"
	}
	ctx.JSON(http.StatusOK, dto.ChatActionResponse{Message: message, Chat: chat})
}

// AddGroupMember godoc
// @Summary Add a user to a group chat
// @Description Idempotent: adding an existing member returns the chat unchanged
// @Tags chat
// @Accept json
// @Produce json
// @Param chatId path string true "Chat ID"
// @Param request body dto.GroupMemberRequest true "Member"
// @Success 200 {object} dto.ChatActionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or not a group chat"
// @Failure 404 {object} dto.ErrorResponse "Chat or user not found"
// @Router /chat/chatAddGroupUser/{chatId} [post]
func (c *ChatController) AddGroupMember(ctx *gin.Context) {
	var req dto.GroupMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	chat, err := c.chatService.AddGroupMember(ctx.Request.Context(), ctx.Param("chatId"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ChatActionResponse{Message: "User added to group chat", Chat: chat})
}

// RemoveGroupMember godoc
// @Summary Remove a user from a group chat
// @Tags chat
// @Accept json
// @Produce json
// @Param chatId path string true "Chat ID"
// @Param request body dto.RemoveGroupMemberRequest true "Member"
// @Success 200 {object} dto.ChatActionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /chat/chatRemoveGroupUser/{chatId} [post]
func (c *ChatController) RemoveGroupMember(ctx *gin.Context) {
	var req dto.RemoveGroupMemberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	chat, err := c.chatService.RemoveGroupMember(ctx.Request.Context(), ctx.Param("chatId"), req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ChatActionResponse{Message: "User removed from group chat", Chat: chat})
}

// UpdateMemberRole godoc
// @Summary Change a group member's role
// @Tags chat
// @Accept json
// @Produce json
// @Param chatId path string true "Chat ID"
// @Param request body dto.UpdateRoleRequest true "Member and role"
// @Success 200 {object} dto.ChatActionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Chat not found or user is not a member"
// @Router /chat/chatGroupRoleUpdate/{chatId} [post]
func (c *ChatController) UpdateMemberRole(ctx *gin.Context) {
	var req dto.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	chat, err := c.chatService.UpdateMemberRole(ctx.Request.Context(), ctx.Param("chatId"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ChatActionResponse{Message: "Member role updated", Chat: chat})
}

// SendMessage godoc
// @Summary Send a message
// @Description Appends the message, refreshes lastActivity and pushes it to connected websocket clients
// @Tags chat
// @Accept json
// @Produce json
// @Param chatId path string true "Chat ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} models.Chat
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Sender is not a member"
// @Failure 404 {object} dto.ErrorResponse
// @Router /chat/chatSendMessage/{chatId} [post]
func (c *ChatController) SendMessage(ctx *gin.Context) {
	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	req.Sender = middleware.ActorID(ctx, req.Sender)

	chat, err := c.chatService.SendMessage(ctx.Request.Context(), ctx.Param("chatId"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, chat)
}

// MarkMessageRead godoc
// @Summary Mark a message as read
// @Tags chat
// @Accept json
// @Produce json
// @Param chatId path string true "Chat ID"
// @Param messageId path string true "Message ID"
// @Param request body dto.MarkReadRequest true "Reader"
// @Success 200 {object} dto.ChatActionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Chat or message not found"
// @Router /chat/messageMarkRead/{chatId}/{messageId} [post]
func (c *ChatController) MarkMessageRead(ctx *gin.Context) {
	var req dto.MarkReadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	chat, err := c.chatService.MarkMessageRead(ctx.Request.Context(), ctx.Param("chatId"), ctx.Param("messageId"),
		middleware.ActorID(ctx, req.UserID))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ChatActionResponse{Message: "Message marked as read", Chat: chat})
}

// ListUnreadChats godoc
// @Summary List chats with unread messages
// @Tags chat
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {array} models.Chat
// @Failure 400 {object} dto.ErrorResponse
// @Router /chat/chatUnread [get]
func (c *ChatController) ListUnreadChats(ctx *gin.Context) {
	chats, err := c.chatService.ListUnreadChats(ctx.Request.Context(), middleware.ActorID(ctx, ctx.Query("userId")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, chats)
}
