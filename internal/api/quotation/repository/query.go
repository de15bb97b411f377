package quotationRepository

const (
	queryCreateQuotation = `
INSERT INTO formulariocotizacion (id, usuario_id, nombre, primerapellido, segundoapellido,
                                  celular, correo, monto_asegurar, cesion_beneficios, poliza, created_at)
VALUES (:id, :usuario_id, :nombre, :primerapellido, :segundoapellido,
        :celular, :correo, :monto_asegurar, :cesion_beneficios, :poliza, :created_at)`

	queryGetQuotationByID = `
SELECT id, usuario_id, nombre, primerapellido, segundoapellido,
       celular, correo, monto_asegurar, cesion_beneficios, poliza, created_at
FROM formulariocotizacion
    WHERE id = :id`

	queryCreateContract = `
INSERT INTO contrataciones (id, usuario_id, nombre_completo, correo, celular, created_at)
VALUES (:id, :usuario_id, :nombre_completo, :correo, :celular, :created_at)`
)
