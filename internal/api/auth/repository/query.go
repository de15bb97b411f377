package authRepository

const (
	queryCreateUser = `
INSERT INTO usuarios (id, nombres, apellidos, sexo, correo, celular, fechanacimiento,
                      tipodocumento, numerodocumento, contrasena, verificado, created_at)
VALUES (:id, :nombres, :apellidos, :sexo, :correo, :celular, :fechanacimiento,
        :tipodocumento, :numerodocumento, :contrasena, :verificado, :created_at)`

	queryGetById = `
SELECT id, nombres, apellidos, sexo, correo, celular, fechanacimiento,
       tipodocumento, numerodocumento, contrasena, verificado, created_at, updated_at
FROM usuarios
    WHERE id = :id`

	queryGetByEmail = `
SELECT id, nombres, apellidos, sexo, correo, celular, fechanacimiento,
       tipodocumento, numerodocumento, contrasena, verificado, created_at, updated_at
FROM usuarios
    WHERE correo = :correo`

	queryUpdateUser = `
UPDATE usuarios
SET nombres = :nombres,
    apellidos = :apellidos,
    sexo = :sexo,
    celular = :celular,
    fechanacimiento = :fechanacimiento,
    updated_at = :updated_at
    WHERE id = :id`

	queryUpdatePassword = `
UPDATE usuarios
SET contrasena = :contrasena,
    updated_at = :updated_at
    WHERE correo = :correo`

	querySetVerified = `
UPDATE usuarios
SET verificado = :verificado,
    updated_at = :updated_at
    WHERE id = :id`

	queryDeleteUser = `
DELETE FROM usuarios
    WHERE id = :id`
)
