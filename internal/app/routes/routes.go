package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/controllers"
	"github.com/Nand2004/GeoConnect-sub000/internal/middleware"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/metrics"
	"github.com/Nand2004/GeoConnect-sub000/internal/pkg/websocket"
)

// Options toggles the operational endpoints
type Options struct {
	MetricsEnabled bool
	MetricsPath    string
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	chatController *controllers.ChatController,
	eventController *controllers.EventController,
	userController *controllers.UserController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
	opts Options,
) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if opts.MetricsEnabled {
		router.GET(opts.MetricsPath, gin.WrapH(metrics.Handler()))
	}

	// Connected clients receive every broadcast; no authentication
	router.GET("/ws", wsHandler.HandleConnection)

	api := router.Group("")
	api.Use(authMiddleware.OptionalJWT())

	chat := api.Group("/chat")
	{
		chat.POST("/chatCreateChat", chatController.CreateChat)
		chat.GET("/chatGetById/:chatId", chatController.GetChat)
		chat.GET("/chatGetByUserId/:userId", chatController.ListUserChats)
		chat.GET("/chatSearch", chatController.SearchChats)
		chat.GET("/chatUnread", chatController.ListUnreadChats)
		chat.POST("/chatArchive/:chatId", chatController.ArchiveChat)

		chat.POST("/chatAddGroupUser/:chatId", chatController.AddGroupMember)
		chat.POST("/chatRemoveGroupUser/:chatId", chatController.RemoveGroupMember)
		chat.POST("/chatGroupRoleUpdate/:chatId", chatController.UpdateMemberRole)

		chat.POST("/chatSendMessage/:chatId", chatController.SendMessage)
		chat.POST("/messageMarkRead/:chatId/:messageId", chatController.MarkMessageRead)
	}

	event := api.Group("/event")
	{
		event.POST("/createEvent", eventController.CreateEvent)
		event.GET("/getEvent/:eventId", eventController.GetEvent)
		event.GET("/getUserEvents/:userId", eventController.ListUserEvents)
		event.PUT("/updateEvent/:eventId", eventController.UpdateEvent)
		event.DELETE("/deleteEvent/:eventId", eventController.DeleteEvent)
		event.POST("/joinEvent", eventController.JoinEvent)
		event.POST("/leaveEvent", eventController.LeaveEvent)
		event.GET("/getNearbyEvents", eventController.NearbyEvents)
	}

	user := api.Group("/user")
	{
		user.POST("/signup", userController.SignUp)
		user.GET("/getUser/:userId", userController.GetUser)
		user.PUT("/updateLocation/:userId", userController.UpdateLocation)
		user.PUT("/updateHobbies/:userId", userController.UpdateHobbies)
		user.GET("/getNearbyUsers", userController.NearbyUsers)
	}
}
