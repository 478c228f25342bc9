package service

import (
	"WinGoApi/internal/middleware"
	"WinGoApi/internal/models"
	"WinGoApi/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
)

const AccessExpiration = 10 // hours

type Token struct {
	AccessToken string `json:"access_token"`
}

type Login struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

func AuthLogin(c *gin.Context) {
	var req Login
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind request: %v", err)
		c.JSON(400, gin.H{"error": "Invalid data"})
		return
	}

	user, err := models.GetUserWithPassword(req.Nickname)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid data"})
		return
	}

	if !middleware.ComparePasswords(user.Password, req.Password) {
		c.JSON(400, gin.H{"error": "Invalid data"})
		return
	}

	accessExpiration := time.Now().Unix() + int64(AccessExpiration*60*60)

	access, err := middleware.TokenNew(middleware.JWTKey(), user.ID, accessExpiration, middleware.TokenAccess)
	if err != nil {
		logger.Error("%v", err)
		c.AbortWithStatus(500)
		return
	}

	c.JSON(200, Token{AccessToken: access})
}
