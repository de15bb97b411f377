package authService

import (
	"VidaSegura/internal/api/auth"
	authRepository "VidaSegura/internal/api/auth/repository"
	"VidaSegura/internal/entity"
	"VidaSegura/pkg/bcrypt"
	"VidaSegura/pkg/google"
	"VidaSegura/pkg/redis"
	"VidaSegura/pkg/smtp"
	"VidaSegura/pkg/utils"
	"context"
	"net/url"

	"github.com/sirupsen/logrus"
)

type AuthService interface {
	User() UserDomain
	Auth() AuthDomain
	Password() PasswordDomain
	GetRepository() authRepository.Repository
}

type UserDomain interface {
	RegisterUser(c context.Context, req auth.CreateUserRequest) error
	GetByID(c context.Context, id string) (entity.User, error)
	GetByEmail(c context.Context, email string) (entity.User, error)
	UpdateUser(c context.Context, user entity.UserLoginData, req auth.UpdateUserRequest) error
	DeleteUser(c context.Context, id string) error
}

type AuthDomain interface {
	Login(c context.Context, req auth.LoginUserRequest) (auth.LoginUserResponse, error)
	LoginGoogle() (*url.URL, error)
	UserLoginGoogle(c context.Context, req auth.LoginUserGoogle) (auth.LoginUserResponse, error)
	SendEmailOTP(c context.Context, email string) error
	VerifyEmailOTP(c context.Context, email string, code string) error
}

type PasswordDomain interface {
	UpdatePassword(c context.Context, req auth.ResetPassword) error
}

type authService struct {
	log            *logrus.Logger
	authRepository authRepository.Repository

	userDomain     UserDomain
	authDomain     AuthDomain
	passwordDomain PasswordDomain
}

func (a *authService) User() UserDomain {
	return a.userDomain
}

func (a *authService) Auth() AuthDomain {
	return a.authDomain
}

func (a *authService) Password() PasswordDomain {
	return a.passwordDomain
}

func (a *authService) GetRepository() authRepository.Repository {
	return a.authRepository
}

type userDomainImpl struct {
	log         *logrus.Logger
	repo        authRepository.Repository
	bcryptUtils bcrypt.IBcrypt
	utils       utils.IUtils
}

type authDomainImpl struct {
	log            *logrus.Logger
	repo           authRepository.Repository
	googleProvider google.ItfGoogle
	redisServer    redis.IRedis
	smtpMailer     smtp.ItfSmtp
	bcryptUtils    bcrypt.IBcrypt
}

type passwordDomainImpl struct {
	log         *logrus.Logger
	repo        authRepository.Repository
	redisServer redis.IRedis
	bcryptUtils bcrypt.IBcrypt
}

func New(log *logrus.Logger,
	authRepo authRepository.Repository,
	googleProvider google.ItfGoogle,
	smtpMailer smtp.ItfSmtp,
	redisServer redis.IRedis,
	bcryptUtils bcrypt.IBcrypt,
	utils utils.IUtils,
) AuthService {
	return &authService{
		log:            log,
		authRepository: authRepo,

		userDomain:     &userDomainImpl{log: log, repo: authRepo, bcryptUtils: bcryptUtils, utils: utils},
		authDomain:     &authDomainImpl{log: log, repo: authRepo, googleProvider: googleProvider, redisServer: redisServer, smtpMailer: smtpMailer, bcryptUtils: bcryptUtils},
		passwordDomain: &passwordDomainImpl{log: log, repo: authRepo, redisServer: redisServer, bcryptUtils: bcryptUtils},
	}
}
