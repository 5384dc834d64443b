package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/facegate/auth-system/internal/api/metrics"
	"github.com/facegate/auth-system/internal/core/domain"
	"github.com/facegate/auth-system/internal/core/ports"
)

// maxImageBytes caps the face image payload read into memory.
const maxImageBytes = 8 << 20

type AuthHandler struct {
	authService     ports.AuthService
	faceService     ports.FaceService
	externalService ports.ExternalAuthService
}

func NewAuthHandler(auth ports.AuthService, face ports.FaceService, external ports.ExternalAuthService) *AuthHandler {
	return &AuthHandler{authService: auth, faceService: face, externalService: external}
}

// Register creates a new account from a multipart form.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        username          formData  string  true   "Unique username"
// @Param        email             formData  string  false  "Contact email"
// @Param        password          formData  string  true   "Password"
// @Param        confirm_password  formData  string  true   "Password confirmation"
// @Param        face_image        formData  file    false  "Enrollment photo containing exactly one face"
// @Success      201  {object}  authResponse
// @Failure      400  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	faceImage, err := readOptionalImage(c, "face_image")
	if err != nil {
		return err
	}

	account, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Confirm:   req.ConfirmPassword,
		FaceImage: faceImage,
	})
	metrics.RegistrationsTotal.WithLabelValues(registerOutcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: account})
}

// Login authenticates with username and password.
//
// @Summary      Password login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, account, err := h.authService.AuthenticatePassword(c.Request().Context(), req.Username, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("password", passwordOutcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: account})
}

// LoginFace authenticates with a face photo.
//
// @Summary      Face login
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "Probe photo"
// @Success      200    {object}  authResponse
// @Failure      401    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Router       /auth/face [post]
func (h *AuthHandler) LoginFace(c echo.Context) error {
	image, err := readRequiredImage(c, "image")
	if err != nil {
		return err
	}

	start := time.Now()
	token, account, err := h.faceService.AuthenticateFace(c.Request().Context(), image)
	outcome := faceOutcome(err)
	metrics.AuthAttemptsTotal.WithLabelValues("face", outcome).Inc()
	metrics.FaceAuthDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: account})
}

// LoginExternal authenticates with a provider-issued ID token.
//
// @Summary      External identity login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      externalLoginRequest  true  "Provider ID token"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /auth/external [post]
func (h *AuthHandler) LoginExternal(c echo.Context) error {
	var req externalLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, account, err := h.externalService.AuthenticateExternal(c.Request().Context(), req.IDToken)
	metrics.AuthAttemptsTotal.WithLabelValues("external", externalOutcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: account})
}

func readOptionalImage(c echo.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// Absent file is fine for optional enrollment.
		return nil, nil
	}
	return readImage(fh)
}

func readRequiredImage(c echo.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, field+" is required")
	}
	return readImage(fh)
}

func readImage(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxImageBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable image upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable image upload")
	}
	return data, nil
}

// --- metric outcome labels ---

func registerOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrUsernameTaken):
		return "username_taken"
	case errors.Is(err, domain.ErrPasswordMismatch):
		return "password_mismatch"
	case errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrNoFaceDetected),
		errors.Is(err, domain.ErrMultipleFacesDetected):
		return "bad_image"
	default:
		return "error"
	}
}

func passwordOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrWrongPassword):
		return "wrong_password"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}

func faceOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrNoMatch):
		return "no_match"
	case errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrNoFaceDetected),
		errors.Is(err, domain.ErrMultipleFacesDetected):
		return "bad_image"
	default:
		return "error"
	}
}

func externalOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrIdentityProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, domain.ErrProvisioningConflict):
		return "provisioning_conflict"
	default:
		return "error"
	}
}
