package services

import (
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/security"
	"github.com/osamaqaseem39/couture-edge/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult holds a sysop authentication outcome.
type AuthResult struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthService handles sysop authentication and token validation.
type AuthService struct {
	logger *logging.ChanneledLogger
}

// NewAuthService creates the sysop authentication service.
func NewAuthService(logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{logger: logger}
}

// AuthenticateSysop validates the sysop password and issues a JWT.
func (a *AuthService) AuthenticateSysop(password string) *AuthResult {
	if config.SysopPasswordHash == "" || config.JWTSecret == "" {
		a.logger.Auth().Warn("Sysop login attempted without configured credentials")
		return &AuthResult{Success: false, Error: "sysop access not configured"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(config.SysopPasswordHash), []byte(password)); err != nil {
		a.logger.Auth().Warn("Sysop login failed")
		return &AuthResult{Success: false, Error: "invalid credentials"}
	}

	token, err := security.GenerateSysopToken(config.JWTSecret, config.SysopTokenTTL)
	if err != nil {
		a.logger.Auth().Error("Sysop token generation failed", "error", err.Error())
		return &AuthResult{Success: false, Error: "token generation failed"}
	}

	a.logger.Auth().Info("Sysop authenticated")
	return &AuthResult{Token: token, Role: "sysop", Success: true}
}

// ValidateSysop checks a bearer token and reports whether it carries the
// sysop role.
func (a *AuthService) ValidateSysop(tokenString string) bool {
	if tokenString == "" || config.JWTSecret == "" {
		return false
	}
	if _, err := security.ValidateSysopToken(tokenString, config.JWTSecret); err != nil {
		return false
	}
	return true
}
