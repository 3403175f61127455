package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/vidfetch/vidfetch/database"
	"github.com/vidfetch/vidfetch/database/model"
	"github.com/vidfetch/vidfetch/logger"
	"github.com/vidfetch/vidfetch/util/common"
	"github.com/vidfetch/vidfetch/util/crypto"
	"github.com/vidfetch/vidfetch/web/entity"
)

const minPasswordLength = 6

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// FormError is a user-facing form validation failure. Key names the
// translation of Msg.
type FormError struct {
	Key string
	Msg string
}

func (e *FormError) Error() string {
	return e.Msg
}

var (
	errFieldsRequired = &FormError{"register.allFieldsRequired", "All fields are required."}
	errUsernameFormat = &FormError{"register.usernameInvalid", "Username must be 3-20 characters and can only contain letters, numbers, and underscores."}
	errPasswordShort  = &FormError{"register.passwordTooShort", "Password must be at least 6 characters long."}
	errPasswordMatch  = &FormError{"register.passwordMismatch", "Passwords do not match."}
	errUsernameTaken  = &FormError{"register.usernameTaken", "Username already exists."}
	errStoreFailed    = &FormError{"register.storeFailed", "Registration failed, please try again later."}
)

type UserService struct{}

func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

func IsValidPassword(password string) bool {
	return len(password) >= minPasswordLength
}

// ValidateRegistration returns every problem with the form, in display order.
func ValidateRegistration(form *entity.RegisterForm) []*FormError {
	var errs []*FormError
	if form.Username == "" || form.Password == "" || form.ConfirmPassword == "" {
		errs = append(errs, errFieldsRequired)
	}
	if !IsValidUsername(form.Username) {
		errs = append(errs, errUsernameFormat)
	}
	if !IsValidPassword(form.Password) {
		errs = append(errs, errPasswordShort)
	}
	if form.Password != form.ConfirmPassword {
		errs = append(errs, errPasswordMatch)
	}
	return errs
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	if err := db.Model(model.User{}).Where("id = ?", id).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByName(username string) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	if err := db.Model(model.User{}).Where("username = ?", username).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CheckUser returns the user when the password matches, nil otherwise.
func (s *UserService) CheckUser(username string, password string) *model.User {
	user, err := s.GetUserByName(username)
	if database.IsNotFound(err) {
		return nil
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}
	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil
	}
	return user
}

// Register validates the form and creates a regular user. Store failures are
// reported as form errors too.
func (s *UserService) Register(form *entity.RegisterForm) (*model.User, []*FormError) {
	form.Username = strings.TrimSpace(form.Username)
	if errs := ValidateRegistration(form); len(errs) > 0 {
		return nil, errs
	}
	user, err := s.CreateUser(form.Username, form.Password, false)
	if err != nil {
		var fe *FormError
		if errors.As(err, &fe) {
			return nil, []*FormError{fe}
		}
		logger.Warning("register user err:", err)
		return nil, []*FormError{errStoreFailed}
	}
	return user, nil
}

// CreateUser adds a user after checking the username and password rules.
func (s *UserService) CreateUser(username, password string, isAdmin bool) (*model.User, error) {
	if !IsValidUsername(username) {
		return nil, errUsernameFormat
	}
	if !IsValidPassword(password) {
		return nil, errPasswordShort
	}

	db := database.GetDB()
	var count int64
	if err := db.Model(model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errUsernameTaken
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: username,
		Password: hash,
		IsAdmin:  isAdmin,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	logger.Infof("user %s created (admin: %v)", username, isAdmin)
	return user, nil
}

// UpdatePassword sets a new password for username.
func (s *UserService) UpdatePassword(username, password string) error {
	if !IsValidPassword(password) {
		return errPasswordShort
	}
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	res := database.GetDB().Model(model.User{}).
		Where("username = ?", username).
		Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.NewError("user not found: ", username)
	}
	return nil
}

func (s *UserService) ListUsers() ([]model.User, error) {
	var users []model.User
	err := database.GetDB().Model(model.User{}).Order("id").Find(&users).Error
	return users, err
}
