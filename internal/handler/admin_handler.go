package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/photofolio/internal/auth"
)

const (
	sessionAdminEmail = "admin_email"
	sessionOAuthState = "oauth_state"
	sessionNext       = "login_next"
)

// Login 跳转到 OAuth 授权页。
func (a *API) Login(c *gin.Context) {
	if a.provider == nil {
		respondError(c, http.StatusServiceUnavailable, "oauth is not configured")
		return
	}
	state, err := auth.NewState()
	if err != nil {
		a.internalError(c, "failed to start login", err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionOAuthState, state)
	if next := safeNext(c.Query("next")); next != "" {
		session.Set(sessionNext, next)
	}
	if err := session.Save(); err != nil {
		a.internalError(c, "failed to save session", err)
		return
	}
	c.Redirect(http.StatusFound, a.provider.AuthCodeURL(state))
}

// Callback 校验 state，换取邮箱并检查管理员名单。
func (a *API) Callback(c *gin.Context) {
	if a.provider == nil {
		respondError(c, http.StatusServiceUnavailable, "oauth is not configured")
		return
	}

	session := sessions.Default(c)
	expected, _ := session.Get(sessionOAuthState).(string)
	session.Delete(sessionOAuthState)
	if expected == "" || c.Query("state") != expected {
		_ = session.Save()
		respondError(c, http.StatusBadRequest, "invalid oauth state")
		return
	}
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		_ = session.Save()
		respondError(c, http.StatusBadRequest, "missing oauth code")
		return
	}

	email, err := a.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		a.log.Warn("OAuth exchange failed", "error", err)
		_ = session.Save()
		respondError(c, http.StatusUnauthorized, "sign-in failed")
		return
	}
	if !a.policy.Allows(email) {
		a.log.Warn("Rejected non-admin sign-in", "email", email)
		session.Clear()
		_ = session.Save()
		respondError(c, http.StatusForbidden, "account is not an administrator")
		return
	}

	next, _ := session.Get(sessionNext).(string)
	session.Delete(sessionNext)
	session.Set(sessionAdminEmail, strings.ToLower(strings.TrimSpace(email)))
	if err := session.Save(); err != nil {
		a.internalError(c, "failed to save session", err)
		return
	}
	a.log.Info("Admin signed in", "email", email)
	if next == "" {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

// Logout 清除会话。
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		a.internalError(c, "failed to save session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me 返回当前会话身份。
func (a *API) Me(c *gin.Context) {
	email, admin := a.adminEmail(c)
	if !admin {
		c.JSON(http.StatusOK, gin.H{"authenticated": false, "admin": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "admin": true, "email": email})
}

// AdminRequired 拦截非管理员请求：API 返回 401，页面跳转登录。
func (a *API) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := a.adminEmail(c); ok {
			c.Next()
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Redirect(http.StatusFound, "/auth/login?next="+c.Request.URL.RequestURI())
		c.Abort()
	}
}

// adminEmail re-checks the allow-list on every request so removing an email revokes access.
func (a *API) adminEmail(c *gin.Context) (string, bool) {
	email, _ := sessions.Default(c).Get(sessionAdminEmail).(string)
	if email == "" || !a.policy.Allows(email) {
		return "", false
	}
	return email, true
}

func (a *API) isAdmin(c *gin.Context) bool {
	_, ok := a.adminEmail(c)
	return ok
}

// safeNext keeps only same-site absolute paths.
func safeNext(raw string) string {
	next := strings.TrimSpace(raw)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
