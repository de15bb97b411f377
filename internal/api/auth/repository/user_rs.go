package authRepository

import (
	"VidaSegura/internal/api/auth"
	"VidaSegura/internal/entity"
	contextPkg "VidaSegura/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type UserDB struct {
	ID             sql.NullString `db:"id"`
	FirstName      sql.NullString `db:"nombres"`
	LastName       sql.NullString `db:"apellidos"`
	Gender         sql.NullString `db:"sexo"`
	Email          sql.NullString `db:"correo"`
	PhoneNumber    sql.NullString `db:"celular"`
	BirthDate      sql.NullTime   `db:"fechanacimiento"`
	DocumentType   sql.NullString `db:"tipodocumento"`
	DocumentNumber sql.NullString `db:"numerodocumento"`
	Password       sql.NullString `db:"contrasena"`
	IsVerified     bool           `db:"verificado"`
	CreatedAt      sql.NullTime   `db:"created_at"`
	UpdatedAt      sql.NullTime   `db:"updated_at"`
}

func (r *userRepository) CreateUser(c context.Context, user entity.User) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":              user.ID,
		"nombres":         user.FirstName,
		"apellidos":       user.LastName,
		"sexo":            user.Gender,
		"correo":          user.Email,
		"celular":         user.PhoneNumber,
		"fechanacimiento": user.BirthDate,
		"tipodocumento":   user.DocumentType,
		"numerodocumento": user.DocumentNumber,
		"contrasena":      user.Password,
		"verificado":      user.IsVerified,
		"created_at":      time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateUser, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateUser")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				r.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      err.Error(),
				}).Warn("Email already exists")
				return auth.ErrEmailAlreadyExists
			}
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating user")

		return err
	}

	return nil
}

func (r *userRepository) GetByID(c context.Context, id string) (entity.User, error) {
	requestID := contextPkg.GetRequestID(c)
	var user UserDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetById, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID named query preparation err")
		return entity.User{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("GetByID no rows found")
			return entity.User{}, auth.ErrUserNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID execution err")
		return entity.User{}, err
	}

	return r.makeUser(user), nil
}

func (r *userRepository) GetByEmail(c context.Context, email string) (entity.User, error) {
	requestID := contextPkg.GetRequestID(c)
	var user UserDB

	argsKV := map[string]interface{}{
		"correo": email,
	}

	query, args, err := sqlx.Named(queryGetByEmail, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByEmail named query preparation err")
		return entity.User{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("GetByEmail no rows found")
			return entity.User{}, auth.ErrUserNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByEmail execution err")
		return entity.User{}, err
	}

	return r.makeUser(user), nil
}

func (r *userRepository) UpdateUser(c context.Context, user entity.User) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":              user.ID,
		"nombres":         user.FirstName,
		"apellidos":       user.LastName,
		"sexo":            user.Gender,
		"celular":         user.PhoneNumber,
		"fechanacimiento": user.BirthDate,
		"updated_at":      time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateUser, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for UpdateUser")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when updating user")
		return err
	}

	return nil
}

func (r *userRepository) UpdateUserPassword(c context.Context, email string, password string) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"correo":     email,
		"contrasena": password,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdatePassword, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for UpdateUserPassword")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when updating password")
		return err
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) SetVerified(c context.Context, id string, verified bool) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":         id,
		"verificado": verified,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(querySetVerified, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for SetVerified")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when updating verified flag")
		return err
	}

	return nil
}

func (r *userRepository) DeleteUser(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteUser, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for DeleteUser")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when deleting user")
		return err
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) makeUser(user UserDB) entity.User {
	return entity.User{
		ID:             user.ID.String,
		FirstName:      user.FirstName.String,
		LastName:       user.LastName.String,
		Gender:         user.Gender.String,
		Email:          user.Email.String,
		PhoneNumber:    user.PhoneNumber.String,
		BirthDate:      user.BirthDate.Time,
		DocumentType:   user.DocumentType.String,
		DocumentNumber: user.DocumentNumber.String,
		Password:       user.Password.String,
		IsVerified:     user.IsVerified,
		CreatedAt:      user.CreatedAt.Time,
		UpdatedAt:      user.UpdatedAt.Time,
	}
}
