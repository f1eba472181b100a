package dto

import (
	"net/http"

	"github.com/spec-kit/session-service/internal/domain"
	"github.com/spec-kit/session-service/internal/service"
	apperrors "github.com/spec-kit/session-service/pkg/util"
)

// SignInRequest is the payload of admin_login and user_login.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"pw"`
}

// VerifyAdminTokenRequest is the payload of verify_admin_token.
type VerifyAdminTokenRequest struct {
	Token string `json:"token"`
}

// VerifyTokenRequest is the payload of verify_token.
type VerifyTokenRequest struct {
	Token     string `json:"token"`
	ClassCode string `json:"secret_code"`
}

// RefreshTokenRequest is the payload of user_refresh_token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
	ClassCode    string `json:"secret_code"`
}

// AdminSignInResponse is the success data of admin_login.
type AdminSignInResponse struct {
	AdminInfo   *domain.AdminInfo `json:"admin_info"`
	AccessToken string            `json:"access_token"`
}

// AdminInfoResponse is the success data of verify_admin_token.
type AdminInfoResponse struct {
	AdminInfo *domain.AdminInfo `json:"admin_info"`
}

// UserSessionResponse is the success data of user_login and user_refresh_token.
type UserSessionResponse struct {
	UserInfo     *domain.UserInfo `json:"user_info"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
}

// UserInfoResponse is the success data of verify_token.
type UserInfoResponse struct {
	UserInfo *domain.UserInfo `json:"user_info"`
}

// Envelope is the reply shape shared by every operation.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Messages   string `json:"messages,omitempty"`
	// Code is the outcome code, used for metrics only.
	Code string `json:"-"`
}

// NewSuccess wraps data in a 200 envelope.
func NewSuccess(data any) Envelope {
	return Envelope{StatusCode: http.StatusOK, Data: data, Code: "OK"}
}

// NewFailure maps an error onto its envelope. Causes are never included.
func NewFailure(err error) Envelope {
	de := apperrors.ToDomainError(err)
	return Envelope{StatusCode: de.HTTPStatus, Messages: de.Message, Code: de.Code}
}

func AdminSession(s *service.AdminSession) AdminSignInResponse {
	return AdminSignInResponse{AdminInfo: s.Info, AccessToken: s.AccessToken}
}

func UserSession(s *service.UserSession) UserSessionResponse {
	return UserSessionResponse{UserInfo: s.Info, AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
}
