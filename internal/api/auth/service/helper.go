package authService

import (
	"VidaSegura/internal/api/auth"
	"VidaSegura/internal/entity"
	"time"
)

func MakeUserData(user entity.User) map[string]interface{} {
	return map[string]interface{}{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.FirstName + " " + user.LastName,
	}
}

// applyUserUpdates overrides only the fields the request actually changes.
func applyUserUpdates(dbUser entity.User, req auth.UpdateUserRequest) (entity.User, error) {
	result := dbUser

	if req.FirstName != "" && req.FirstName != dbUser.FirstName {
		result.FirstName = req.FirstName
	}

	if req.LastName != "" && req.LastName != dbUser.LastName {
		result.LastName = req.LastName
	}

	if req.Gender != "" && req.Gender != dbUser.Gender {
		result.Gender = req.Gender
	}

	if req.PhoneNumber != "" && req.PhoneNumber != dbUser.PhoneNumber {
		result.PhoneNumber = req.PhoneNumber
	}

	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return entity.User{}, err
		}
		if !birthDate.Equal(dbUser.BirthDate) {
			result.BirthDate = birthDate
		}
	}

	// never let a profile update flip the verification status
	result.IsVerified = dbUser.IsVerified

	return result, nil
}
