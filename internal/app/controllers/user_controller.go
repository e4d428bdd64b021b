package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/models/dto"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/services"
	"github.com/Nand2004/GeoConnect-sub000/internal/middleware"
)

// UserController handles user directory operations
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new user controller
func NewUserController(userService services.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// mapUserToResponse converts a user model to the public response DTO
func mapUserToResponse(user *models.User) dto.UserResponse {
	response := dto.UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Hobbies:         user.Hobbies,
		ProfileImageURL: user.ProfileImageURL,
		CreatedAt:       user.CreatedAt,
	}
	if response.Hobbies == nil {
		response.Hobbies = []string{}
	}
	// (0,0) is the unset position
	if user.Longitude != 0 || user.Latitude != 0 {
		response.Location = &dto.Location{Longitude: user.Longitude, Latitude: user.Latitude}
	}
	return response
}

func mapUsersToResponse(users []*models.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, mapUserToResponse(u))
	}
	return out
}

// SignUp registers a user
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Account"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Username or email taken"
// @Router /user/signup [post]
func (c *UserController) SignUp(ctx *gin.Context) {
	var req dto.SignUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, err := c.userService.SignUp(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, mapUserToResponse(user))
}

// GetUser retrieves user information by ID
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /user/getUser/{userId} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	user, err := c.userService.GetUser(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, mapUserToResponse(user))
}

// UpdateLocation stores the user's current position
// @Summary Update location
// @Tags users
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param request body dto.LocationRequest true "Position"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /user/updateLocation/{userId} [put]
func (c *UserController) UpdateLocation(ctx *gin.Context) {
	var req dto.LocationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, err := c.userService.UpdateLocation(ctx.Request.Context(), ctx.Param("userId"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, mapUserToResponse(user))
}

// UpdateHobbies replaces the user's hobby tags
func (c *UserController) UpdateHobbies(ctx *gin.Context) {
	var req dto.UpdateHobbiesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, err := c.userService.UpdateHobbies(ctx.Request.Context(), ctx.Param("userId"), req.Hobbies)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, mapUserToResponse(user))
}

// NearbyUsers lists other users within radius km of a point, nearest first
// @Summary Find nearby users
// @Tags users
// @Produce json
// @Param userId query string true "Requesting user, excluded from results"
// @Param longitude query number true "Longitude"
// @Param latitude query number true "Latitude"
// @Param radius query number false "Radius in km (default 10, max 500)"
// @Success 200 {array} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /user/getNearbyUsers [get]
func (c *UserController) NearbyUsers(ctx *gin.Context) {
	var q dto.NearbyQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	users, err := c.userService.NearbyUsers(ctx.Request.Context(), middleware.ActorID(ctx, ctx.Query("userId")), &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, mapUsersToResponse(users))
}
