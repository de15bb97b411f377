package authService

import (
	"VidaSegura/internal/api/auth"
	"VidaSegura/internal/entity"
	contextPkg "VidaSegura/pkg/context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *userDomainImpl) RegisterUser(c context.Context, req auth.CreateUserRequest) error {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid birth date format")
		return err
	}

	hashedPassword, err := s.bcryptUtils.HashPassword(req.Password)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to hash password")
		return err
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate user ID")
		return err
	}

	newUser := entity.User{
		ID:             id,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Gender:         req.Gender,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		BirthDate:      birthDate,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		Password:       hashedPassword,
		IsVerified:     false,
	}

	if err := repo.Users.CreateUser(c, newUser); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    id,
	}).Info("User registered")

	return nil
}

func (s *userDomainImpl) GetByID(c context.Context, id string) (entity.User, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return entity.User{}, err
	}

	return repo.Users.GetByID(c, id)
}

func (s *userDomainImpl) GetByEmail(c context.Context, email string) (entity.User, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return entity.User{}, err
	}

	return repo.Users.GetByEmail(c, email)
}

func (s *userDomainImpl) UpdateUser(c context.Context, user entity.UserLoginData, req auth.UpdateUserRequest) error {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	dbUser, err := repo.Users.GetByID(c, user.ID)
	if err != nil {
		return err
	}

	updated, err := applyUserUpdates(dbUser, req)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid user update payload")
		return err
	}

	return repo.Users.UpdateUser(c, updated)
}

func (s *userDomainImpl) DeleteUser(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	if err := repo.Users.DeleteUser(c, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    id,
	}).Info("User deleted")

	return nil
}
