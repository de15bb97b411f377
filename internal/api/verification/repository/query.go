package verificationRepository

const (
	queryInsertOutcome = `
INSERT INTO verificacion_biometrica (id, user_id, dui_text, score, match_result, liveness,
                                     edad_valida, tipo_documento, identificador, resultado_general,
                                     documento_path, ip_usuario, dispositivo, acciones, notificado, created_at)
VALUES (:id, :user_id, :dui_text, :score, :match_result, :liveness,
        :edad_valida, :tipo_documento, :identificador, :resultado_general,
        :documento_path, :ip_usuario, :dispositivo, :acciones, :notificado, :created_at)`

	queryMarkNotified = `
UPDATE verificacion_biometrica
SET notificado = TRUE
    WHERE id = :id`

	queryListRecent = `
SELECT v.id, v.user_id, v.dui_text, v.score, v.match_result, v.liveness,
       v.edad_valida, v.tipo_documento, v.identificador, v.resultado_general,
       v.documento_path, v.ip_usuario, v.dispositivo, v.acciones, v.notificado, v.created_at,
       u.nombres, u.apellidos, u.correo
FROM verificacion_biometrica v
         JOIN usuarios u ON u.id = v.user_id
ORDER BY v.created_at DESC
LIMIT :limit`
)
