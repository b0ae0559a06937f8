package middleware

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "session"
	// LoginPath is where anonymous visitors of protected pages are sent.
	LoginPath = "/auth/login/"

	tokenIssuer     = "yatube"
	tokenAudience   = "yatube-web"
	blacklistPrefix = "blacklist:"
)

// Session is a verified session token.
type Session struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// SessionManager issues, verifies and revokes session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
	secure bool
}

// NewSessionManager returns a manager signing with secret. rdb may be nil,
// in which case logout only clears the cookie.
func NewSessionManager(secret string, ttl time.Duration, rdb *redis.Client, secure bool) *SessionManager {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, redis: rdb, secure: secure}
}

// Issue signs a token for the user.
func (m *SessionManager) Issue(userID uint, username string) (string, *Session, error) {
	if len(m.secret) == 0 {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	sess := &Session{
		UserID:    userID,
		Username:  username,
		JTI:       uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      sess.ExpiresAt.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      sess.JTI,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return token, sess, nil
}

// Parse verifies the token and rejects revoked ones.
func (m *SessionManager) Parse(ctx context.Context, tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired session")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid session claims")
	}
	sub, _ := claims["sub"].(string)
	uid, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || uid == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in session")
	}

	sess := &Session{UserID: uint(uid)}
	sess.Username, _ = claims["username"].(string)
	sess.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}

	if m.redis != nil && sess.JTI != "" {
		revoked, err := m.redis.Exists(ctx, blacklistPrefix+sess.JTI).Result()
		if err != nil {
			// fail open
			Logger.WarnContext(ctx, "session blacklist check failed", "error", err)
		} else if revoked > 0 {
			return nil, models.NewUnauthorizedError("Session has been revoked")
		}
	}
	return sess, nil
}

// Revoke blacklists the token id until the token would have expired.
func (m *SessionManager) Revoke(ctx context.Context, sess *Session) error {
	if m.redis == nil || sess == nil || sess.JTI == "" {
		return nil
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return m.redis.Set(ctx, blacklistPrefix+sess.JTI, "1", ttl).Err()
}

func (m *SessionManager) SetCookie(c *fiber.Ctx, token string, sess *Session) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (m *SessionManager) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// LoadSession resolves the session cookie into the userID and username locals.
// A bad cookie is dropped and the request continues anonymously.
func (m *SessionManager) LoadSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(SessionCookie)
		if raw == "" {
			return c.Next()
		}
		sess, err := m.Parse(c.UserContext(), raw)
		if err != nil {
			m.ClearCookie(c)
			return c.Next()
		}
		c.Locals(LocalUserID, sess.UserID)
		c.Locals(LocalUsername, sess.Username)
		c.Locals(localSession, sess)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, sess.UserID))
		return c.Next()
	}
}

const localSession = "session"

// CurrentSession returns the session loaded by LoadSession.
func CurrentSession(c *fiber.Ctx) (*Session, bool) {
	sess, ok := c.Locals(localSession).(*Session)
	return sess, ok
}

// CurrentUserID returns the signed-in user, or false for anonymous requests.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals(LocalUserID).(uint)
	return uid, ok && uid != 0
}

// LoginURL builds the login redirect for next, keeping its slashes readable.
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// LoginRequired redirects anonymous visitors to the login page.
func LoginRequired(c *fiber.Ctx) error {
	if _, ok := CurrentUserID(c); ok {
		return c.Next()
	}
	return c.Redirect(LoginURL(c.OriginalURL()), fiber.StatusFound)
}

// AdminRequired rejects everyone whose account is not flagged as admin.
func AdminRequired(isAdmin func(ctx context.Context, userID uint) (bool, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := CurrentUserID(c)
		if !ok {
			return models.NewUnauthorizedError("Authentication required")
		}
		admin, err := isAdmin(c.UserContext(), uid)
		if err != nil {
			if models.IsNotFound(err) {
				return models.NewForbiddenError("Admin access required")
			}
			return err
		}
		if !admin {
			return models.NewForbiddenError("Admin access required")
		}
		return c.Next()
	}
}

// SafeNext returns next when it is a local absolute path, otherwise fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
