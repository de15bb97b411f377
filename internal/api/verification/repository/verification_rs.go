package verificationRepository

import (
	"VidaSegura/internal/entity"
	contextPkg "VidaSegura/pkg/context"
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type VerificationDB struct {
	ID            sql.NullString  `db:"id"`
	UserID        sql.NullString  `db:"user_id"`
	OCRText       sql.NullString  `db:"dui_text"`
	Score         sql.NullFloat64 `db:"score"`
	MatchResult   bool            `db:"match_result"`
	Liveness      sql.NullBool    `db:"liveness"`
	AgeValid      sql.NullBool    `db:"edad_valida"`
	DocumentType  sql.NullString  `db:"tipo_documento"`
	Identifier    sql.NullString  `db:"identificador"`
	ResultGeneral sql.NullString  `db:"resultado_general"`
	DocumentURL   sql.NullString  `db:"documento_path"`
	IP            sql.NullString  `db:"ip_usuario"`
	Device        sql.NullString  `db:"dispositivo"`
	Actions       sql.NullString  `db:"acciones"`
	Notified      bool            `db:"notificado"`
	CreatedAt     sql.NullTime    `db:"created_at"`
	FirstName     sql.NullString  `db:"nombres"`
	LastName      sql.NullString  `db:"apellidos"`
	Email         sql.NullString  `db:"correo"`
}

func (r *verificationRepository) InsertOutcome(c context.Context, outcome entity.VerificationOutcome) error {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryInsertOutcome, outcome)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for InsertOutcome")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when inserting verification outcome")
		return err
	}

	return nil
}

func (r *verificationRepository) MarkNotified(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryMarkNotified, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for MarkNotified")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when flipping notified flag")
		return err
	}

	return nil
}

func (r *verificationRepository) ListRecent(c context.Context, limit int) ([]entity.AdminVerificationRow, error) {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"limit": limit,
	}

	query, args, err := sqlx.Named(queryListRecent, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListRecent named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	rows, err := r.q.QueryxContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListRecent execution err")
		return nil, err
	}
	defer rows.Close()

	results := make([]entity.AdminVerificationRow, 0)
	for rows.Next() {
		var row VerificationDB
		if err := rows.StructScan(&row); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("ListRecent row scan err")
			return nil, err
		}
		results = append(results, r.makeRow(row))
	}

	return results, rows.Err()
}

func (r *verificationRepository) makeRow(row VerificationDB) entity.AdminVerificationRow {
	out := entity.AdminVerificationRow{
		VerificationOutcome: entity.VerificationOutcome{
			ID:            row.ID.String,
			UserID:        row.UserID.String,
			OCRText:       row.OCRText.String,
			MatchResult:   row.MatchResult,
			DocumentType:  entity.DocumentType(row.DocumentType.String),
			Identifier:    row.Identifier.String,
			ResultGeneral: entity.ResultGeneral(row.ResultGeneral.String),
			DocumentURL:   row.DocumentURL.String,
			IP:            row.IP.String,
			Device:        row.Device.String,
			Actions:       row.Actions.String,
			Notified:      row.Notified,
			CreatedAt:     row.CreatedAt.Time,
		},
		FirstName: row.FirstName.String,
		LastName:  row.LastName.String,
		Email:     row.Email.String,
	}

	if row.Score.Valid {
		score := row.Score.Float64
		out.SimilarityScore = &score
	}
	if row.Liveness.Valid {
		liveness := row.Liveness.Bool
		out.LivenessPassed = &liveness
	}
	if row.AgeValid.Valid {
		ageValid := row.AgeValid.Bool
		out.AgeValid = &ageValid
	}

	return out
}
