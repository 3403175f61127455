package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidfetch/vidfetch/web/entity"
)

func errorMsgs(errs []*FormError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Msg)
	}
	return out
}

func TestValidateRegistration(t *testing.T) {
	errs := ValidateRegistration(&entity.RegisterForm{})
	assert.Equal(t, []string{
		"All fields are required.",
		"Username must be 3-20 characters and can only contain letters, numbers, and underscores.",
		"Password must be at least 6 characters long.",
	}, errorMsgs(errs))

	errs = ValidateRegistration(&entity.RegisterForm{Username: "bob-1", Password: "secret1", ConfirmPassword: "secret2"})
	assert.Equal(t, []string{
		"Username must be 3-20 characters and can only contain letters, numbers, and underscores.",
		"Passwords do not match.",
	}, errorMsgs(errs))

	assert.Empty(t, ValidateRegistration(&entity.RegisterForm{Username: "bob_1", Password: "secret1", ConfirmPassword: "secret1"}))
}

func TestUsernameRules(t *testing.T) {
	assert.True(t, IsValidUsername("abc"))
	assert.True(t, IsValidUsername("A_b_1234567890123456"))
	assert.False(t, IsValidUsername("ab"))
	assert.False(t, IsValidUsername("abcdefghijklmnopqrstu"))
	assert.False(t, IsValidUsername("héllo"))
	assert.False(t, IsValidPassword("12345"))
	assert.True(t, IsValidPassword("123456"))
}

func TestRegisterAndCheckUser(t *testing.T) {
	setup(t)
	s := UserService{}

	user, errs := s.Register(&entity.RegisterForm{Username: " alice ", Password: "wonderland", ConfirmPassword: "wonderland"})
	require.Empty(t, errs)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "wonderland", user.Password)

	_, errs = s.Register(&entity.RegisterForm{Username: "alice", Password: "another1", ConfirmPassword: "another1"})
	assert.Equal(t, []string{"Username already exists."}, errorMsgs(errs))
	assert.Equal(t, "register.usernameTaken", errs[0].Key)

	assert.NotNil(t, s.CheckUser("alice", "wonderland"))
	assert.Nil(t, s.CheckUser("alice", "wrong"))
	assert.Nil(t, s.CheckUser("nobody", "wonderland"))
	assert.NotNil(t, s.CheckUser("admin", "admin123"), "seeded admin")
}

func TestCreateUserAndPassword(t *testing.T) {
	setup(t)
	s := UserService{}

	_, err := s.CreateUser("x", "secret1", false)
	assert.Error(t, err)

	u, err := s.CreateUser("ops", "secret1", true)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	require.NoError(t, s.UpdatePassword("ops", "secret2"))
	assert.Nil(t, s.CheckUser("ops", "secret1"))
	assert.NotNil(t, s.CheckUser("ops", "secret2"))

	assert.Error(t, s.UpdatePassword("ops", "123"))
	assert.Error(t, s.UpdatePassword("ghost", "secret3"))

	users, err := s.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, "ops", users[1].Username)

	got, err := s.GetUser(u.Id)
	require.NoError(t, err)
	assert.Equal(t, "ops", got.Username)
}
