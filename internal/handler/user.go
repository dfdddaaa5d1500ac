package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/altairhq/usermanagement/internal/constants"
	"github.com/altairhq/usermanagement/internal/dto"
	apperrors "github.com/altairhq/usermanagement/internal/errors"
	"github.com/altairhq/usermanagement/internal/service"
	ctxutil "github.com/altairhq/usermanagement/pkg/context"
	"github.com/altairhq/usermanagement/pkg/logger"
	"github.com/altairhq/usermanagement/pkg/validation"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// fileUpload wraps a bound multipart file header for the service layer.
func fileUpload(header *multipart.FileHeader) *dto.FileUpload {
	return &dto.FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}

// Create registers a new user from a multipart form. The profile picture is
// optional.
func (h *UserHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Create")

	var req dto.CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid create user request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(http.StatusBadRequest, constants.MsgBadRequest, validation.Messages(err)))
		return
	}

	if header, err := c.FormFile("profile_pic"); err == nil {
		req.ProfilePic = fileUpload(header)
	}

	logger.InfoWithContext(ctx, "Create user request").
		String("email", req.Email).
		Bool("has_picture", req.ProfilePic != nil).
		Log()

	user, err := h.userService.Register(ctx, &req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to register user").
			String("email", req.Email).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse(http.StatusCreated, constants.MsgUserCreated, user))
}

// GetByID returns a single user with their profile.
func (h *UserHandler) GetByID(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "GetByID")

	id := c.Param("id")

	user, err := h.userService.GetByID(ctx, id)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.WarnWithContext(ctx, "Failed to fetch user").
			String("user_id", id).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, constants.MsgUserFetched, user))
}

// GetAll returns one page of users.
func (h *UserHandler) GetAll(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "GetAll")

	pagination := constants.ParsePaginationParams(c)

	users, total, err := h.userService.GetAll(ctx, pagination.Page, pagination.PageSize)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to fetch users").
			Int("page", pagination.Page).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(
		http.StatusOK,
		constants.MsgUsersFetched,
		total,
		pagination.Page,
		pageTotal(total, pagination.PageSize),
		users,
	))
}

// Search returns the page of users matching the keyword. A missing or blank
// keyword is rejected; an empty result page is a normal response.
func (h *UserHandler) Search(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "Search")

	keyword := c.Query(constants.QueryParamKeyword)
	pagination := constants.ParsePaginationParams(c)

	logger.InfoWithContext(ctx, "Search users request").
		String("keyword", keyword).
		Int("page", pagination.Page).
		Int("page_size", pagination.PageSize).
		Log()

	users, total, err := h.userService.Search(ctx, keyword, pagination.Page, pagination.PageSize)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.WarnWithContext(ctx, "Search failed").
			String("keyword", keyword).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(
		http.StatusOK,
		constants.MsgUsersFetched,
		total,
		pagination.Page,
		pageTotal(total, pagination.PageSize),
		users,
	))
}

// UpdateProfile applies a sparse multipart patch to a user and their profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "UpdateProfile")

	id := c.Param("id")

	var req dto.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid update profile request").
			String("user_id", id).
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(http.StatusBadRequest, constants.MsgBadRequest, validation.Messages(err)))
		return
	}

	if header, err := c.FormFile("profile_pic"); err == nil {
		req.ProfilePic = fileUpload(header)
	}

	user, err := h.userService.UpdateProfile(ctx, id, &req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to update profile").
			String("user_id", id).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, constants.MsgProfileUpdated, user))
}

// DeleteUsers removes a batch of users. Partial failures come back as 400
// with one message per failed id in data; successful deletions stay deleted.
func (h *UserHandler) DeleteUsers(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "DeleteUsers")

	var req dto.DeleteUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid delete users request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(http.StatusBadRequest, constants.MsgBadRequest, validation.Messages(err)))
		return
	}

	logger.InfoWithContext(ctx, "Delete users request").
		Int("count", len(req.IDs)).
		Log()

	if err := h.userService.DeleteUsers(ctx, &req); err != nil {
		status := apperrors.ToHTTPStatus(err)

		if bulk, ok := apperrors.AsBulkError(err); ok {
			c.JSON(status, constants.BuildErrorResponse(status, bulk.Message, bulk.Failures))
			return
		}

		logger.ErrorWithContext(ctx, "Failed to delete users").
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(status, apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(http.StatusOK, constants.MsgUsersDeleted, nil))
}

func pageTotal(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
