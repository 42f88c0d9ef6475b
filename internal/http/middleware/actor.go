package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/envutil"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/requestdata"
)

const actorKey = "actor"

// ActorMiddleware resolves the authenticated actor for each request.
// Identity arrives from the platform edge as a signed JWT; in development the
// X-User-ID / X-User-Role headers are accepted when no JWT secret is set.
type ActorMiddleware struct {
	log       *logger.Logger
	users     repos.UserRepo
	jwtSecret []byte
}

func NewActorMiddleware(baseLog *logger.Logger, users repos.UserRepo) *ActorMiddleware {
	return &ActorMiddleware{
		log:       baseLog.With("Middleware", "ActorMiddleware"),
		users:     users,
		jwtSecret: []byte(envutil.Str("JWT_SECRET", "")),
	}
}

type actorClaims struct {
	Role       string `json:"role"`
	ScopeKind  string `json:"scope_kind"`
	ScopeValue string `json:"scope_value"`
	jwt.RegisteredClaims
}

func (am *ActorMiddleware) RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		claimed, err := am.identify(c)
		if err != nil || claimed == nil || claimed.ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid identity", "code": "unauthorized"},
			})
			return
		}

		dc := dbctx.Context{Ctx: c.Request.Context()}
		user, err := am.users.GetByID(dc, claimed.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "load user", "code": "internal"},
			})
			return
		}
		if user == nil {
			// first sight of this identity: persist the claimed role/scope
			if _, err := am.users.Upsert(dc, []*types.User{claimed}); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{"message": "register user", "code": "internal"},
				})
				return
			}
			user = claimed
		}

		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
			UserID:  user.ID,
			Role:    user.Role,
			IsAdmin: user.Admin(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set(actorKey, user)
		c.Next()
	}
}

// RequireAdmin must be chained after RequireActor.
func (am *ActorMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := Actor(c); actor == nil || !actor.Admin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "admin required", "code": "forbidden"},
			})
			return
		}
		c.Next()
	}
}

// Actor returns the resolved user for the current request, or nil.
func Actor(c *gin.Context) *types.User {
	if v, ok := c.Get(actorKey); ok {
		if u, ok := v.(*types.User); ok {
			return u
		}
	}
	return nil
}

func (am *ActorMiddleware) identify(c *gin.Context) (*types.User, error) {
	if tokenString := extractToken(c); tokenString != "" && len(am.jwtSecret) > 0 {
		claims := &actorClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return am.jwtSecret, nil
		})
		if err != nil {
			return nil, err
		}
		return &types.User{
			ID:         claims.Subject,
			Role:       claims.Role,
			ScopeKind:  claims.ScopeKind,
			ScopeValue: claims.ScopeValue,
		}, nil
	}

	// header fallback for development and tests
	if len(am.jwtSecret) == 0 {
		if id := c.GetHeader("X-User-ID"); id != "" {
			return &types.User{
				ID:         id,
				Role:       c.GetHeader("X-User-Role"),
				ScopeKind:  c.GetHeader("X-User-Scope-Kind"),
				ScopeValue: c.GetHeader("X-User-Scope-Value"),
			}, nil
		}
	}
	return nil, nil
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
