package middleware

import (
	"crypto/subtle"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/abs-dashboard-api/pkg/config"
	appErrors "github.com/noah-isme/abs-dashboard-api/pkg/errors"
	"github.com/noah-isme/abs-dashboard-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated username.
const ContextUserKey = "currentUser"

const authRealm = `Basic realm="ABS Dashboard"`

// SiteAuth guards the dashboard behind one shared credential.
type SiteAuth struct {
	username string
	hash     []byte
	open     map[string]struct{}
	logger   *zap.Logger
}

// NewSiteAuth builds the gate. A plain password is hashed once at start-up so
// requests are always checked against bcrypt. With neither a password nor a
// hash configured the gate lets every request through.
func NewSiteAuth(cfg config.AuthConfig, logger *zap.Logger, openPaths ...string) (*SiteAuth, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	auth := &SiteAuth{username: cfg.Username, open: make(map[string]struct{}, len(openPaths)), logger: logger}
	for _, p := range openPaths {
		auth.open[p] = struct{}{}
	}
	switch {
	case cfg.PasswordHash != "":
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("invalid SITE_PASSWORD_HASH: %w", err)
		}
		auth.hash = []byte(cfg.PasswordHash)
	case cfg.Password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash site password: %w", err)
		}
		auth.hash = hash
	}
	return auth, nil
}

// Enabled reports whether a credential is configured.
func (a *SiteAuth) Enabled() bool {
	return a != nil && len(a.hash) > 0
}

// Middleware enforces HTTP basic authentication.
func (a *SiteAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled() {
			c.Next()
			return
		}
		if _, ok := a.open[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			a.reject(c, "authentication required")
			return
		}
		if subtle.ConstantTimeCompare([]byte(user), []byte(a.username)) != 1 ||
			bcrypt.CompareHashAndPassword(a.hash, []byte(pass)) != nil {
			a.logger.Warn("dashboard login rejected", zap.String("ip", c.ClientIP()))
			a.reject(c, "invalid credentials")
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func (a *SiteAuth) reject(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", authRealm)
	response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, message))
	c.Abort()
}
