package models

import (
	"WinGoApi/cmd/db"
	"WinGoApi/pkg/logger"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

type User struct {
	ID           int64  `gorm:"primaryKey,autoIncrement"`
	Nickname     string `gorm:"unique"`
	AvatarID     int
	BalanceRupee float64
	CreatedAt    time.Time
	Password     string `json:"-"`
}

func (u *User) Validate() error {
	return validate.Struct(u)
}

func CheckIfUserExistsByID(userID int64) (bool, error) {
	var exists bool
	err := db.DB.Model(&User{}).
		Select("count(*) > 0").
		Where("id = ?", userID).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

func GetUserWithPassword(nickname string) (*User, error) {
	var user User

	err := db.DB.
		Where("nickname = ?", nickname).
		First(&user).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &user, nil
}

func CheckIfUserExistsByNickname(nn string) (bool, error) {
	var exists bool

	err := db.DB.Model(&User{}).
		Select("count(*) > 0").
		Where("nickname = ?", nn).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

// CreditUserBalance adds amount to the user balance inside the given transaction
func CreditUserBalance(tx *gorm.DB, userID int64, amount float64) error {
	if tx == nil {
		tx = db.DB
	}

	err := tx.Model(&User{}).
		Where("id = ?", userID).
		Update("balance_rupee", gorm.Expr("balance_rupee + ?", amount)).Error
	if err != nil {
		return logger.WrapError(err, "")
	}

	return nil
}
