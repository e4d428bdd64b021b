package dto

// CreateChatRequest asks for a chat between users, reusing an identical one if present
type CreateChatRequest struct {
	Users    []string `json:"users" binding:"required,min=1,dive,required"`
	ChatType string   `json:"chatType,omitempty" binding:"omitempty,oneof=direct group"`
	ChatName string   `json:"chatName,omitempty" binding:"omitempty,max=100"`
}

// GroupMemberRequest identifies a member and optionally a role
type GroupMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role,omitempty" binding:"omitempty,oneof=member admin"`
}

// RemoveGroupMemberRequest identifies the member to remove
type RemoveGroupMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// UpdateRoleRequest sets a member's role
type UpdateRoleRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=member admin"`
}

// AttachmentRequest is a reference to an already uploaded file
type AttachmentRequest struct {
	URL      string `json:"url" binding:"required"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// SendMessageRequest appends a message to a chat
type SendMessageRequest struct {
	Sender      string              `json:"sender" binding:"required"`
	Message     string              `json:"message,omitempty" binding:"max=5000"`
	Attachments []AttachmentRequest `json:"attachments,omitempty" binding:"omitempty,max=10,dive"`
}

// MarkReadRequest records a read receipt
type MarkReadRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// ArchiveChatRequest toggles the archived flag
type ArchiveChatRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}
