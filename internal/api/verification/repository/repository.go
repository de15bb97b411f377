package verificationRepository

import (
	"VidaSegura/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var db sqlx.ExtContext
	var commitFunc, rollbackFunc func() error

	db = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		db = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Verifications: &verificationRepository{q: db, log: r.log},
		Commit:        commitFunc,
		Rollback:      rollbackFunc,
	}, nil
}

type Client struct {
	Verifications interface {
		InsertOutcome(ctx context.Context, outcome entity.VerificationOutcome) error
		MarkNotified(ctx context.Context, id string) error
		ListRecent(ctx context.Context, limit int) ([]entity.AdminVerificationRow, error)
	}

	Commit   func() error
	Rollback func() error
}

type verificationRepository struct {
	q   sqlx.ExtContext
	log *logrus.Logger
}
