package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"kali/internal/errors"
	"kali/internal/model"
	"kali/internal/service"
)

// MaxUploadBytes bounds the size of an uploaded profile picture.
const MaxUploadBytes = 10 << 20

// UserHandler bundles the user record handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateUserRequest is the replacement profile for a user record.
type UpdateUserRequest struct {
	ID          string `json:"id"`
	Username    string `json:"username" validate:"required,min=3,max=64"`
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"firstName" validate:"required,max=100"`
	LastName    string `json:"lastName" validate:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,phone"`
}

// UploadResponse carries the stored path of an uploaded profile picture.
type UploadResponse struct {
	ProfilePicturePath string `json:"profilePicturePath"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.GetAll(c.Request().Context(), principal(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.svc.GetByID(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Replace a user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body UpdateUserRequest true "User profile"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	user, err := h.svc.Update(c.Request().Context(), principal(c), c.Param("id"), &model.User{
		ID:          req.ID,
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), principal(c), c.Param("id")); err != nil {
		return handleError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadProfilePicture godoc
// @Summary Upload a profile picture
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param file formData file true "Image file"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Failure 415 {object} errors.ErrorResponse
// @Router /users/{id}/upload-profile-picture [post]
func (h *UserHandler) UploadProfilePicture(c echo.Context) error {
	var (
		data     []byte
		filename string
	)

	// A missing file part is passed on as an empty upload so the service
	// can check existence and ownership first.
	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > MaxUploadBytes {
			return tooLarge()
		}
		f, err := fh.Open()
		if err != nil {
			return badRequest("unreadable file")
		}
		defer f.Close()

		data, err = io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
		if err != nil {
			return badRequest("unreadable file")
		}
		if len(data) > MaxUploadBytes {
			return tooLarge()
		}
		filename = fh.Filename
	}

	assetPath, err := h.svc.UploadAsset(c.Request().Context(), principal(c), c.Param("id"), data, filename)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, UploadResponse{ProfilePicturePath: assetPath})
}

// MakeAdmin godoc
// @Summary Grant the admin role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/make-admin [post]
func (h *UserHandler) MakeAdmin(c echo.Context) error {
	user, err := h.svc.MakeAdmin(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func tooLarge() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusRequestEntityTooLarge, errors.ErrorResponse{
		Error: "file too large",
		Code:  "FILE_TOO_LARGE",
	})
}
