package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-api/internal/models"
	"github.com/adanyl0v/go-task-api/internal/services"
)

type signupRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type userResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	DateJoined time.Time `json:"date_joined"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		DateJoined: user.CreatedAt,
	}
}

// HandleSignup godoc
// @Summary Sign up
// @Description Create a user. The email becomes the username.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body signupRequest true "New user"
// @Success 201 {object} userResponse
// @Failure 400 {object} errorResponse
// @Router /auth/signup [post]
func (h *handlerImpl) HandleSignup(c *gin.Context) {
	var req signupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), services.SignupParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		h.respondError(c, err, "failed to sign up")
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

type tokenRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// HandleToken godoc
// @Summary Obtain tokens
// @Description Exchange credentials for an access and a refresh token.
// @Description The username is the email used at sign up.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body tokenRequest true "Credentials"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /auth/token [post]
func (h *handlerImpl) HandleToken(c *gin.Context) {
	var req tokenRequest
	if !h.bindJSON(c, &req) {
		return
	}

	username := req.Username
	if username == "" {
		username = req.Email
	}

	pair, err := h.auth.Authenticate(c.Request.Context(), services.LoginParams{
		Username: username,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err, "failed to authenticate")
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		Access:  pair.Access.Token,
		Refresh: pair.Refresh.Token,
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// HandleRefresh godoc
// @Summary Refresh the access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh token"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /auth/token/refresh [post]
func (h *handlerImpl) HandleRefresh(c *gin.Context) {
	var req refreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Refresh == "" {
		abort(c, newValidationError(services.NewValidationError("refresh", "this field is required")))
		return
	}

	token, err := h.auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		h.respondError(c, err, "failed to refresh token")
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		Access: token.Access.Token,
	})
}

// HandleLogout godoc
// @Summary Log out
// @Description Revoke the refresh token.
// @Tags auth
// @Accept json
// @Security BearerAuth
// @Param request body refreshRequest true "Refresh token"
// @Success 204
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /auth/logout [post]
func (h *handlerImpl) HandleLogout(c *gin.Context) {
	requester, ok := h.mustGetRequester(c)
	if !ok {
		return
	}

	var req refreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Refresh == "" {
		abort(c, newValidationError(services.NewValidationError("refresh", "this field is required")))
		return
	}

	err := h.auth.Logout(c.Request.Context(), requester, req.Refresh)
	if err != nil {
		h.respondError(c, err, "failed to log out")
		return
	}

	c.Status(http.StatusNoContent)
}
