package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	FirmId    string    `gorm:"index" json:"firm_id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     *string   `gorm:"size:100;unique" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"password"`
	IsActive  *bool     `gorm:"not null" json:"is_active"`
	Role      UserRole  `gorm:"type:enum('A', 'P', 'S');default:'S'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	FirmId   string   `json:"firm_id"`
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password" binding:"required"`
	IsActive *bool    `json:"is_active"`
	Role     UserRole `json:"role" binding:"required"`
}

/*
caches:
	User:$username
	UserList:$firm_id
*/

func (user User) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[User](user.Username); err != nil {
		return err
	}
	return utils.RemoveRedisList[User](user.FirmId)
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	cached, err := utils.RetrieveRedis[User](username)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	var result User
	// auth lookup runs before the tenant is known
	lookupCtx := utils.SetSkipTenantScopeInContext(ctx, true)
	if err := db.WithContext(lookupCtx).Where("username = ?", username).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	if err := utils.StoreRedis[User](&result, username); err != nil {
		return nil, err
	}
	return &result, nil
}

func GetUserByID(ctx context.Context, id int) (*User, error) {
	lookupCtx := utils.SetSkipTenantScopeInContext(ctx, true)
	return utils.FetchSingleModel[User](lookupCtx, id)
}

// Signin verifies credentials and returns a signed token plus the user record.
func Signin(ctx context.Context, username string, password string) (string, *User, error) {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, errors.New("invalid username or password")
	}
	if user.IsActive == nil || !*user.IsActive {
		return "", nil, errors.New("user is inactive")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return "", nil, errors.New("invalid username or password")
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	db := config.GetDB()

	firmId := input.FirmId
	if firmId == "" {
		ctxFirmId, ok := utils.GetFirmIdFromContext(ctx)
		if !ok || ctxFirmId == "" {
			return nil, errors.New("firm id is required")
		}
		firmId = ctxFirmId
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	isActive := input.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}

	phone := input.Phone
	if phone != "" {
		if err := utils.ValidatePhoneNumber(phone, utils.CountryCode); err != nil {
			return nil, errors.New("invalid phone number")
		}
		phone = utils.FormatPhoneNumber(phone, utils.CountryCode)
	}

	user := User{
		FirmId:   firmId,
		Username: input.Username,
		Name:     input.Name,
		Phone:    phone,
		Password: string(hashed),
		IsActive: isActive,
		Role:     input.Role,
	}
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return nil, errors.New("invalid email")
		}
		user.Email = &input.Email
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[User](firmId); err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUsers(ctx context.Context) ([]*User, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	cached, err := utils.RetrieveRedisList[User](firmId)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	users, err := utils.FetchAllModels[User](ctx, firmId)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedisList[User](users, firmId); err != nil {
		return nil, err
	}
	return users, nil
}
