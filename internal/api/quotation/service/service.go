package quotationService

import (
	"VidaSegura/internal/api/quotation"
	quotationRepository "VidaSegura/internal/api/quotation/repository"
	"VidaSegura/pkg/smtp"
	"VidaSegura/pkg/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type QuotationService interface {
	CreateQuotation(ctx context.Context, req quotation.CreateQuotationRequest) (quotation.CreateQuotationResponse, error)
	CreateContract(ctx context.Context, req quotation.CreateContractRequest) (quotation.CreateContractResponse, error)
}

type quotationService struct {
	log        *logrus.Logger
	repo       quotationRepository.Repository
	smtpMailer smtp.ItfSmtp
	utils      utils.IUtils
}

func New(
	log *logrus.Logger,
	repo quotationRepository.Repository,
	smtpMailer smtp.ItfSmtp,
	utilsPkg utils.IUtils,
) QuotationService {
	return &quotationService{
		log:        log,
		repo:       repo,
		smtpMailer: smtpMailer,
		utils:      utilsPkg,
	}
}
