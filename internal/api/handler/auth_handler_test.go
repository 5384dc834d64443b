package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/facegate/auth-system/internal/core/domain"
	"github.com/facegate/auth-system/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.Account, error)
	passwordFn func(ctx context.Context, username, password string) (string, *domain.Account, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) AuthenticatePassword(ctx context.Context, username, password string) (string, *domain.Account, error) {
	return s.passwordFn(ctx, username, password)
}

type stubFaceService struct {
	faceFn func(ctx context.Context, image []byte) (string, *domain.Account, error)
}

func (s *stubFaceService) AuthenticateFace(ctx context.Context, image []byte) (string, *domain.Account, error) {
	return s.faceFn(ctx, image)
}

type stubExternalService struct {
	externalFn func(ctx context.Context, rawToken string) (string, *domain.Account, error)
}

func (s *stubExternalService) AuthenticateExternal(ctx context.Context, rawToken string) (string, *domain.Account, error) {
	return s.externalFn(ctx, rawToken)
}

func newTestContext(t *testing.T, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func multipartRegister(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if image != nil {
		fw, err := w.CreateFormFile("face_image", "face.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = fw.Write(image)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.Account, error) {
			if in.Username != "alice" || in.Password != "pw" || in.Confirm != "pw" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if string(in.FaceImage) != "imagebytes" {
				t.Fatalf("face image not forwarded: %q", in.FaceImage)
			}
			return &domain.Account{ID: "acc_1", Username: in.Username, Role: domain.RoleUser}, nil
		},
	}
	h := NewAuthHandler(stub, nil, nil)

	req := multipartRegister(t, map[string]string{
		"username":         "alice",
		"password":         "pw",
		"confirm_password": "pw",
	}, []byte("imagebytes"))
	c, rec := newTestContext(t, req)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		User *domain.Account `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User == nil || resp.User.Username != "alice" {
		t.Fatalf("unexpected response user: %+v", resp.User)
	}
}

func TestAuthHandler_Register_WithoutImage(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.Account, error) {
			if in.FaceImage != nil {
				t.Fatalf("expected no face image, got %d bytes", len(in.FaceImage))
			}
			return &domain.Account{Username: in.Username}, nil
		},
	}
	h := NewAuthHandler(stub, nil, nil)

	req := multipartRegister(t, map[string]string{
		"username":         "bob",
		"password":         "pw",
		"confirm_password": "pw",
	}, nil)
	c, rec := newTestContext(t, req)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, nil, nil)

	req := multipartRegister(t, map[string]string{"username": "alice"}, nil)
	c, _ := newTestContext(t, req)

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_DomainErrorPassesThrough(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.Account, error) {
			return nil, domain.ErrUsernameTaken
		},
	}
	h := NewAuthHandler(stub, nil, nil)

	req := multipartRegister(t, map[string]string{
		"username":         "alice",
		"password":         "pw",
		"confirm_password": "pw",
	}, nil)
	c, _ := newTestContext(t, req)

	if err := h.Register(c); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken to pass to the error handler, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		passwordFn: func(_ context.Context, username, password string) (string, *domain.Account, error) {
			if username != "alice" || password != "pw" {
				t.Fatalf("unexpected credentials: %s/%s", username, password)
			}
			return "tok", &domain.Account{Username: username}, nil
		},
	}
	h := NewAuthHandler(stub, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"alice","password":"pw"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newTestContext(t, req)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"token":"tok"`) {
		t.Fatalf("expected token in response: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	stub := &stubAuthService{
		passwordFn: func(context.Context, string, string) (string, *domain.Account, error) {
			return "", nil, domain.ErrWrongPassword
		},
	}
	h := NewAuthHandler(stub, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"alice","password":"bad"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, _ := newTestContext(t, req)

	if err := h.Login(c); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

func TestAuthHandler_LoginFace(t *testing.T) {
	face := &stubFaceService{
		faceFn: func(_ context.Context, image []byte) (string, *domain.Account, error) {
			if string(image) != "probebytes" {
				t.Fatalf("probe not forwarded: %q", image)
			}
			return "tok", &domain.Account{Username: "alice"}, nil
		},
	}
	h := NewAuthHandler(nil, face, nil)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, _ := w.CreateFormFile("image", "probe.png")
	_, _ = fw.Write([]byte("probebytes"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/auth/face", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	c, rec := newTestContext(t, req)

	if err := h.LoginFace(c); err != nil {
		t.Fatalf("LoginFace returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_LoginFace_MissingImage(t *testing.T) {
	h := NewAuthHandler(nil, &stubFaceService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/face", strings.NewReader(""))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c, _ := newTestContext(t, req)

	err := h.LoginFace(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_LoginExternal(t *testing.T) {
	ext := &stubExternalService{
		externalFn: func(_ context.Context, rawToken string) (string, *domain.Account, error) {
			if rawToken != "provider-token" {
				t.Fatalf("token not forwarded: %q", rawToken)
			}
			return "tok", &domain.Account{Username: "frank"}, nil
		},
	}
	h := NewAuthHandler(nil, nil, ext)

	req := httptest.NewRequest(http.MethodPost, "/auth/external",
		strings.NewReader(`{"id_token":"provider-token"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newTestContext(t, req)

	if err := h.LoginExternal(c); err != nil {
		t.Fatalf("LoginExternal returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
