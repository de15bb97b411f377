package authService

import (
	"VidaSegura/internal/api/auth"
	contextPkg "VidaSegura/pkg/context"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// UpdatePassword finishes the email OTP reset flow: the code is checked
// against Redis before the new hash is written.
func (s *passwordDomainImpl) UpdatePassword(c context.Context, req auth.ResetPassword) error {
	requestID := contextPkg.GetRequestID(c)

	storedOTP, err := s.redisServer.GetOTP(c, req.Email)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get OTP from Redis")
		return auth.ErrorTokenExpired
	}

	if storedOTP != req.Code {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("Invalid OTP for password reset")
		return auth.ErrInvalidOTP
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}

	user, err := repo.Users.GetByEmail(c, req.Email)
	if err != nil {
		return err
	}

	if err := s.bcryptUtils.ComparePassword(user.Password, req.Password); err == nil {
		return auth.ErrPasswordSame
	}

	hashedPassword, err := s.bcryptUtils.HashPassword(req.Password)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to hash password")
		return err
	}

	return repo.Users.UpdateUserPassword(c, req.Email, hashedPassword)
}
