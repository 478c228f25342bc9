package middleware

import (
	"crypto/subtle"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept-Encoding, Authorization, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// OperatorMiddleware gates the result-declaration surface behind a shared
// token. Real operator authorization lives in the admin gateway; this is a
// second fence, not the fence.
func OperatorMiddleware() gin.HandlerFunc {
	operatorToken, ok := os.LookupEnv("OPERATOR_TOKEN")

	return func(c *gin.Context) {
		if !ok || operatorToken == "" {
			c.JSON(503, gin.H{"error": "operator surface disabled"})
			c.Abort()
			return
		}

		provided := c.GetHeader("X-Operator-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(operatorToken)) != 1 {
			c.JSON(403, gin.H{"error": "Forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

var badPaths = []string{
	".env", "php", "mysql", "cgi-bin", "wp-login.php",
	"wp-admin", "xmlrpc.php", "config.php", "passwd", "shadow",
	"cmd.exe", "bin/bash", "bin/sh", "actuator", "manager/html",
}

func BlockBadActorsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestPath := c.Request.URL.Path

		for _, path := range badPaths {
			if strings.Contains(requestPath, path) {
				c.JSON(403, gin.H{"error": "Forbidden"})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
