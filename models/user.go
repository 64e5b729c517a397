package models

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/buildtrack/matstock_backend/utils"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     *string   `gorm:"size:100;unique" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('ADMIN','STAFF');default:STAFF" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password" binding:"required,min=8"`
	Role     UserRole `json:"role" binding:"required,oneof=ADMIN STAFF"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginInfo struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func (input *NewUser) validate(ctx context.Context, id int) error {
	// username
	if err := utils.ValidateUnique[User](ctx, "username", input.Username, id); err != nil {
		return err
	}
	// email
	if len(strings.TrimSpace(input.Email)) > 0 {
		if !utils.IsValidEmail(input.Email) {
			return errors.New("invalid email")
		}
		if err := utils.ValidateUnique[User](ctx, "email", input.Email, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Username: html.EscapeString(strings.TrimSpace(input.Username)),
		Name:     input.Name,
		Phone:    input.Phone,
		Password: string(hashed),
		Role:     input.Role,
		IsActive: utils.NewTrue(),
	}
	if len(strings.TrimSpace(input.Email)) > 0 {
		email := strings.TrimSpace(input.Email)
		user.Email = &email
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Create(&user).Error
	if err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

func Login(ctx context.Context, input *LoginInput) (*LoginInfo, error) {

	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).Where("username = ?", input.Username).First(&user).Error
	if err != nil {
		return nil, errors.New("invalid username or password")
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, errors.New("account is inactive")
	}

	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return nil, errors.New("invalid username or password")
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token: token,
		Name:  user.Name,
		Role:  string(user.Role),
	}, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}
	user.PrepareGive()
	return user, nil
}

func ListUser(ctx context.Context, name *string) ([]*User, error) {

	db := config.GetDB()
	var results []*User

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ? OR username LIKE ?", "%"+*name+"%", "%"+*name+"%")
	}
	// db query
	err := dbCtx.Order("username").Find(&results).Error
	if err != nil {
		return nil, err
	}
	for _, result := range results {
		result.PrepareGive()
	}
	return results, nil
}

func ToggleActiveUser(ctx context.Context, id int, isActive bool) (*User, error) {
	user, err := ToggleActiveModel[User](ctx, id, isActive)
	if err != nil {
		return nil, err
	}
	user.PrepareGive()
	return user, nil
}
