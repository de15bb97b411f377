package quotationService

import (
	"VidaSegura/internal/api/quotation"
	"VidaSegura/internal/entity"
	contextPkg "VidaSegura/pkg/context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *quotationService) CreateQuotation(c context.Context, req quotation.CreateQuotationRequest) (quotation.CreateQuotationResponse, error) {
	requestID := contextPkg.GetRequestID(c)

	if req.InsuredAmount <= 0 {
		return quotation.CreateQuotationResponse{}, quotation.ErrInvalidAmount
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate quotation ID")
		return quotation.CreateQuotationResponse{}, err
	}

	benefitTransfer := "No"
	if req.BenefitTransfer {
		benefitTransfer = "Si"
	}

	newQuotation := entity.Quotation{
		ID:              id,
		UserID:          req.UserID,
		FirstName:       req.FirstName,
		FirstSurname:    req.FirstSurname,
		SecondSurname:   req.SecondSurname,
		PhoneNumber:     req.PhoneNumber,
		Email:           req.Email,
		InsuredAmount:   req.InsuredAmount,
		BenefitTransfer: benefitTransfer,
		Policy:          req.Policy,
		CreatedAt:       time.Now(),
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return quotation.CreateQuotationResponse{}, err
	}

	if err := repo.Quotations.CreateQuotation(c, newQuotation); err != nil {
		return quotation.CreateQuotationResponse{}, err
	}

	go s.sendQuotationConfirmation(newQuotation)

	return quotation.CreateQuotationResponse{
		ID:      id,
		Message: "Cotización registrada correctamente",
	}, nil
}

func (s *quotationService) CreateContract(c context.Context, req quotation.CreateContractRequest) (quotation.CreateContractResponse, error) {
	requestID := contextPkg.GetRequestID(c)

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate contract ID")
		return quotation.CreateContractResponse{}, err
	}

	newContract := entity.Contract{
		ID:          id,
		UserID:      req.UserID,
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		CreatedAt:   time.Now(),
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return quotation.CreateContractResponse{}, err
	}

	if err := repo.Contracts.CreateContract(c, newContract); err != nil {
		return quotation.CreateContractResponse{}, err
	}

	go s.sendContractConfirmation(newContract)

	return quotation.CreateContractResponse{
		ID:      id,
		Message: "Solicitud de contratación registrada correctamente",
	}, nil
}

func (s *quotationService) sendQuotationConfirmation(q entity.Quotation) {
	subject := "Hemos recibido tu solicitud de cotización"
	body := fmt.Sprintf(
		"Hola %s, recibimos tu solicitud de cotización por un monto de $%.2f. Un asesor te contactará pronto.",
		q.FirstName, q.InsuredAmount,
	)

	if err := s.smtpMailer.Send(q.Email, subject, body); err != nil {
		s.log.WithFields(logrus.Fields{
			"quotation_id": q.ID,
			"error":        err.Error(),
		}).Error("Failed to send quotation confirmation email")
	}
}

func (s *quotationService) sendContractConfirmation(contract entity.Contract) {
	subject := "Hemos recibido tu solicitud de contratación"
	body := fmt.Sprintf(
		"Hola %s, recibimos tu solicitud de contratación. Un asesor te contactará para continuar el proceso.",
		contract.FullName,
	)

	if err := s.smtpMailer.Send(contract.Email, subject, body); err != nil {
		s.log.WithFields(logrus.Fields{
			"contract_id": contract.ID,
			"error":       err.Error(),
		}).Error("Failed to send contract confirmation email")
	}
}
