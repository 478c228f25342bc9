package middleware

import (
	"WinGoApi/internal/models"
	"WinGoApi/pkg/logger"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenAccess  = "TokenAccess"
	TokenRefresh = "TokenRefresh"

	ContextUserIDKey = "user_id"
)

var jwtKey string

func init() {
	var ok bool
	jwtKey, ok = os.LookupEnv("JWT_KEY")
	if !ok {
		// Tokens signed with an ephemeral key die with the process;
		// deployments must set JWT_KEY
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Fatal("unable to generate fallback JWT key: %v", err)
		}
		jwtKey = hex.EncodeToString(buf)
		logger.Warn("JWT_KEY not set, generated an ephemeral signing key")
	}
}

type tokenClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := GetTokenFromAuthorizationHeader(c)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(400)
			return
		}

		userId, tokenType, err := TokenCheck(token, jwtKey)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatus(401)
				return
			}
			logger.Error("%v", err)
			c.AbortWithStatus(400)
			return
		}

		if tokenType != TokenAccess {
			c.AbortWithStatus(401)
			return
		}

		// check if user in database
		exists, err := models.CheckIfUserExistsByID(userId)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(500)
			return
		}

		if !exists {
			c.JSON(401, gin.H{"error": "User not authorized"})
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userId)
		c.Next()
	}
}

// GetTokenFromAuthorizationHeader pulls the bearer token from the header,
// or from the query string for websocket upgrades
func GetTokenFromAuthorizationHeader(c *gin.Context) (string, error) {
	if c.IsWebsocket() {
		token := c.Query("access_token")
		if token == "" {
			return "", logger.WrapError(errors.New("missing access_token query parameter"), "")
		}
		return token, nil
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return "", logger.WrapError(errors.New("missing Authorization header"), "")
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return "", logger.WrapError(errors.New("Authorization header is not a bearer token"), "")
	}

	return token, nil
}

// TokenNew issues a signed token for a user
func TokenNew(key string, userID int64, expiresAt int64, tokenType string) (string, error) {
	claims := tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Unix(expiresAt, 0)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		return "", logger.WrapError(err, "")
	}

	return signed, nil
}

// TokenCheck validates a token and returns the user id and token type
func TokenCheck(tokenString, key string) (int64, string, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected token signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return 0, "", err
	}
	if !token.Valid {
		return 0, "", errors.New("invalid token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, "", logger.WrapError(err, "")
	}

	return userID, claims.TokenType, nil
}

// JWTKey exposes the signing key to the login service
func JWTKey() string {
	return jwtKey
}

func GetUserIDFromGinContext(c *gin.Context) (int64, error) {
	// Get user_id from middleware
	userIDAny, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, logger.WrapError(errors.New("user_id not in GIN context"), "")
	}

	userIDInt, ok := userIDAny.(int64)
	if !ok {
		return 0, logger.WrapError(errors.New("unable to cast user_id value to int"), "")
	}

	return userIDInt, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", logger.WrapError(err, "")
	}
	return string(hash), nil
}

func ComparePasswords(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
