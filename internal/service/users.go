package service

import (
	"WinGoApi/cmd/db"
	"WinGoApi/internal/middleware"
	"WinGoApi/internal/models"
	"WinGoApi/pkg/logger"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type signUpInput struct {
	Nickname string `json:"nickname" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=64"`
	AvatarID int    `json:"avatar_id" validate:"required,min=1,max=100"`
}

func SignUp(c *gin.Context) {
	var input signUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := validate.Struct(input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	exists, err := models.CheckIfUserExistsByNickname(input.Nickname)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}
	if exists {
		c.JSON(409, gin.H{"error": "User with this nickname already exists"})
		return
	}

	hash, err := middleware.HashPassword(input.Password)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	user := models.User{
		Nickname: input.Nickname,
		AvatarID: input.AvatarID,
		Password: hash,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return logger.WrapError(err, "")
		}

		if referralID, ok := c.GetQuery("referral"); ok {
			if referrerID, err := strconv.ParseInt(referralID, 10, 64); err == nil && referrerID != user.ID {
				if err := tx.Create(&models.UserReferral{
					ReferrerID:       referrerID,
					ReferredID:       user.ID,
					ReferredNickname: input.Nickname,
				}).Error; err != nil {
					return logger.WrapError(err, "")
				}
			}
		}

		return nil
	})
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{"user_id": user.ID})
}

func GetUser(c *gin.Context) {
	var user models.User
	var err error

	user.ID, err = middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	err = db.DB.First(&user, user.ID).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(404, gin.H{"error": "User not found"})
		return
	} else if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, user)
}

func GetUserReferrals(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	refs, err := models.GetUserReferrals(nil, userID)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if len(refs) == 0 {
		c.String(404, "[]")
		return
	}

	c.JSON(200, refs)
}
