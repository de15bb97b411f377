package authService

import (
	"VidaSegura/internal/api/auth"
	authRepository "VidaSegura/internal/api/auth/repository"
	"VidaSegura/internal/entity"
	"VidaSegura/pkg/bcrypt"
	"VidaSegura/pkg/utils"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byEmail map[string]entity.User
	byID    map[string]entity.User

	created          []entity.User
	updatedPasswords map[string]string
	deleted          []string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byEmail:          make(map[string]entity.User),
		byID:             make(map[string]entity.User),
		updatedPasswords: make(map[string]string),
	}
}

func (f *fakeUsers) add(user entity.User) {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
}

func (f *fakeUsers) CreateUser(ctx context.Context, user entity.User) error {
	f.created = append(f.created, user)
	f.add(user)
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (entity.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return entity.User{}, auth.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return entity.User{}, auth.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUsers) UpdateUser(ctx context.Context, user entity.User) error {
	f.add(user)
	return nil
}

func (f *fakeUsers) UpdateUserPassword(ctx context.Context, email string, password string) error {
	if _, ok := f.byEmail[email]; !ok {
		return auth.ErrUserNotFound
	}
	f.updatedPasswords[email] = password
	return nil
}

func (f *fakeUsers) SetVerified(ctx context.Context, id string, verified bool) error { return nil }

func (f *fakeUsers) DeleteUser(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAuthRepo struct {
	users *fakeUsers
}

func (f *fakeAuthRepo) NewClient(tx bool) (authRepository.Client, error) {
	return authRepository.Client{
		Users:    f.users,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeOTPStore struct {
	codes  map[string]string
	getErr error
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{codes: make(map[string]string)}
}

func (f *fakeOTPStore) SetOTP(ctx context.Context, key string, code string, expiration time.Duration) error {
	f.codes[key] = code
	return nil
}

func (f *fakeOTPStore) GetOTP(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.codes[key], nil
}

func (f *fakeOTPStore) IncrementAttempt(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 0, nil
}

func (f *fakeOTPStore) GetAttemptCount(ctx context.Context, key string) (int64, error) {
	return 0, nil
}

func (f *fakeOTPStore) SetReferenceFace(ctx context.Context, userID string, imageBase64 string) error {
	return nil
}

func (f *fakeOTPStore) GetReferenceFace(ctx context.Context, userID string) (string, error) {
	return "", nil
}

type fakeOTPMailer struct {
	otps map[string]string
}

func (f *fakeOTPMailer) Send(toAddress string, subject string, body string) error { return nil }

func (f *fakeOTPMailer) SendOTP(userEmail string, otp string) error {
	if f.otps == nil {
		f.otps = make(map[string]string)
	}
	f.otps[userEmail] = otp
	return nil
}

type authFixture struct {
	service AuthService
	users   *fakeUsers
	otp     *fakeOTPStore
	mailer  *fakeOTPMailer
	hasher  bcrypt.IBcrypt
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")

	log := logrus.New()
	log.SetOutput(io.Discard)

	users := newFakeUsers()
	otp := newFakeOTPStore()
	mailer := &fakeOTPMailer{}
	hasher := bcrypt.NewWithCost(4)

	service := New(log, &fakeAuthRepo{users: users}, nil, mailer, otp, hasher, utils.New())

	return &authFixture{service: service, users: users, otp: otp, mailer: mailer, hasher: hasher}
}

func (f *authFixture) seedUser(t *testing.T, email string, password string) entity.User {
	t.Helper()

	hashed, err := f.hasher.HashPassword(password)
	require.NoError(t, err)

	user := entity.User{
		ID:        "01HZXCUSER0000000000000000",
		FirstName: "Carmen",
		LastName:  "Flores",
		Email:     email,
		Password:  hashed,
	}
	f.users.add(user)
	return user
}

func TestLogin(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "carmen@example.com", "secreta123")

	resp, err := fixture.service.Auth().Login(context.Background(), auth.LoginUserRequest{
		Email:    "carmen@example.com",
		Password: "secreta123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.InDelta(t, 60, resp.ExpiresInMinutes, 1)
}

func TestLogin_WrongPassword(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "carmen@example.com", "secreta123")

	_, err := fixture.service.Auth().Login(context.Background(), auth.LoginUserRequest{
		Email:    "carmen@example.com",
		Password: "otra-clave",
	})

	assert.ErrorIs(t, err, auth.ErrInvalidEmailOrPassword)
}

func TestLogin_UnknownEmail(t *testing.T) {
	fixture := newAuthFixture(t)

	_, err := fixture.service.Auth().Login(context.Background(), auth.LoginUserRequest{
		Email:    "nadie@example.com",
		Password: "secreta123",
	})

	assert.ErrorIs(t, err, auth.ErrInvalidEmailOrPassword)
}

func TestRegisterUser(t *testing.T) {
	fixture := newAuthFixture(t)

	err := fixture.service.User().RegisterUser(context.Background(), auth.CreateUserRequest{
		FirstName:      "Carmen",
		LastName:       "Flores",
		Gender:         "F",
		Email:          "carmen@example.com",
		PhoneNumber:    "7777-1234",
		BirthDate:      "1990-03-14",
		DocumentType:   "DUI",
		DocumentNumber: "06523981-4",
		Password:       "secreta123",
	})

	require.NoError(t, err)
	require.Len(t, fixture.users.created, 1)

	created := fixture.users.created[0]
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.IsVerified)
	assert.NotEqual(t, "secreta123", created.Password)
	assert.NoError(t, fixture.hasher.ComparePassword(created.Password, "secreta123"))
	assert.Equal(t, 1990, created.BirthDate.Year())
}

func TestRegisterUser_BadBirthDate(t *testing.T) {
	fixture := newAuthFixture(t)

	err := fixture.service.User().RegisterUser(context.Background(), auth.CreateUserRequest{
		FirstName:   "Carmen",
		LastName:    "Flores",
		Email:       "carmen@example.com",
		PhoneNumber: "7777-1234",
		BirthDate:   "14/03/1990",
		Password:    "secreta123",
	})

	assert.Error(t, err)
	assert.Empty(t, fixture.users.created)
}

func TestSendAndVerifyEmailOTP(t *testing.T) {
	fixture := newAuthFixture(t)

	err := fixture.service.Auth().SendEmailOTP(context.Background(), "carmen@example.com")
	require.NoError(t, err)

	code := fixture.otp.codes["carmen@example.com"]
	require.Len(t, code, 5)
	assert.Equal(t, code, fixture.mailer.otps["carmen@example.com"])

	assert.NoError(t, fixture.service.Auth().VerifyEmailOTP(context.Background(), "carmen@example.com", code))
	assert.ErrorIs(t, fixture.service.Auth().VerifyEmailOTP(context.Background(), "carmen@example.com", "00000"), auth.ErrInvalidOTP)
}

func TestUpdatePassword(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "carmen@example.com", "secreta123")
	fixture.otp.codes["carmen@example.com"] = "12345"

	err := fixture.service.Password().UpdatePassword(context.Background(), auth.ResetPassword{
		Email:    "carmen@example.com",
		Code:     "12345",
		Password: "nueva-clave-9",
	})

	require.NoError(t, err)
	stored := fixture.users.updatedPasswords["carmen@example.com"]
	require.NotEmpty(t, stored)
	assert.NoError(t, fixture.hasher.ComparePassword(stored, "nueva-clave-9"))
}

func TestUpdatePassword_SamePassword(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "carmen@example.com", "secreta123")
	fixture.otp.codes["carmen@example.com"] = "12345"

	err := fixture.service.Password().UpdatePassword(context.Background(), auth.ResetPassword{
		Email:    "carmen@example.com",
		Code:     "12345",
		Password: "secreta123",
	})

	assert.ErrorIs(t, err, auth.ErrPasswordSame)
}

func TestUpdatePassword_ExpiredOTP(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "carmen@example.com", "secreta123")
	fixture.otp.getErr = errors.New("redis: nil")

	err := fixture.service.Password().UpdatePassword(context.Background(), auth.ResetPassword{
		Email:    "carmen@example.com",
		Code:     "12345",
		Password: "nueva-clave-9",
	})

	assert.ErrorIs(t, err, auth.ErrorTokenExpired)
}

func TestUpdateUser_PreservesVerification(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.seedUser(t, "carmen@example.com", "secreta123")
	user.IsVerified = true
	fixture.users.add(user)

	err := fixture.service.User().UpdateUser(context.Background(), entity.UserLoginData{ID: user.ID}, auth.UpdateUserRequest{
		FirstName: "Carmen Elena",
	})

	require.NoError(t, err)
	updated := fixture.users.byID[user.ID]
	assert.Equal(t, "Carmen Elena", updated.FirstName)
	assert.True(t, updated.IsVerified)
}
