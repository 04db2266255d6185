package service

import (
	"context"
	"errors"

	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
	"github.com/akilalakshman/esignet/internal/authenticator/tracer"
	dErrors "github.com/akilalakshman/esignet/pkg/domain-errors"
	audit "github.com/akilalakshman/esignet/pkg/platform/audit"
)

// KycAuth authenticates an individual with the provider. On success it
// returns a single-use kyc token and the partner-specific subject, and parks
// the encrypted identity (possibly empty) for the exchange phase.
//
// A provider rejection surfaces the provider's error code; every other
// failure is reported as a generic auth failure.
func (s *Service) KycAuth(ctx context.Context, relyingPartyID, clientID string, req models.KycAuthRequest) (_ *models.KycAuthResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanKycAuth,
		tracer.String(tracer.AttrRelyingParty, relyingPartyID),
		tracer.String(tracer.AttrTransactionID, req.TransactionID),
		tracer.String(tracer.AttrIndividual, tracer.HashIdentifier(req.IndividualID)),
	)
	defer func() { span.End(err) }()

	f := s.newFlow(ctx, span, req.TransactionID, models.StateIdle)
	f.to(models.StateAuthPending)

	result, psut, err := s.kycAuth(ctx, relyingPartyID, req)
	event := audit.Event{
		Subject:       psut,
		RelyingParty:  relyingPartyID,
		ClientID:      clientID,
		TransactionID: req.TransactionID,
	}
	if err != nil {
		f.to(models.StateFailed)
		outcome, public := s.authFailure(err)
		s.logger.ErrorContext(ctx, "kyc auth failed",
			"transaction_id", req.TransactionID,
			"relying_party_id", relyingPartyID,
			"outcome", outcome,
			"error", err,
		)
		s.recordAuth(outcome)
		event.Decision = outcome
		event.Reason = public.Error()
		s.audit(ctx, span, audit.EventKycAuthFailed, event)
		return nil, public
	}

	f.to(models.StateAuthenticated)
	s.recordAuth("success")
	event.Decision = "success"
	s.audit(ctx, span, audit.EventKycAuthSucceeded, event)
	return result, nil
}

func (s *Service) kycAuth(ctx context.Context, relyingPartyID string, req models.KycAuthRequest) (*models.KycAuthResult, string, error) {
	callCtx, call := s.tracer.Start(ctx, tracer.SpanProviderCall)
	resp, err := s.ida.KycAuth(callCtx, req)
	if err == nil && resp != nil && resp.Response != nil {
		call.SetAttributes(tracer.Bool(tracer.AttrKycStatus, resp.Response.KycStatus))
	}
	call.End(err)
	if err != nil {
		return nil, "", wrapStage("provider kyc auth", err)
	}
	if resp == nil || !resp.Response.Succeeded() {
		if code := resp.FirstErrorCode(); code != "" {
			return nil, "", &models.RejectedError{Code: code, Message: resp.Errors[0].ErrorMessage}
		}
		return nil, "", errors.New("provider returned no positive auth status")
	}

	psut, err := s.tokens.DerivePseudonym(ctx, req.IndividualID, relyingPartyID)
	if err != nil {
		return nil, "", wrapStage("derive subject", err)
	}

	transactionID := resp.TransactionID
	if transactionID == "" {
		transactionID = req.TransactionID
	}
	kycToken, err := s.tokens.DeriveCorrelationToken(transactionID, psut)
	if err != nil {
		return nil, psut, wrapStage("derive kyc token", err)
	}

	var blob string
	kyc := resp.Response
	if kyc.KycStatus && kyc.Identity != "" {
		blob, err = combiner.Assemble(kyc.Identity, kyc.SessionKey, kyc.Thumbprint, s.cfg.KeySplitter)
		if err != nil {
			return nil, psut, wrapStage("assemble identity payload", err)
		}
	}
	if err := s.store.Put(ctx, kycToken, psut, blob); err != nil {
		return nil, psut, wrapStage("store identity payload", err)
	}

	return &models.KycAuthResult{
		KycToken:                 kycToken,
		PartnerSpecificUserToken: psut,
	}, psut, nil
}

// authFailure maps an internal failure to a metrics outcome and the error
// returned to the caller.
func (s *Service) authFailure(err error) (string, error) {
	if code, ok := models.ProviderCode(err); ok {
		return "rejected", dErrors.Replace(err, dErrors.CodeProviderRejected, code)
	}
	return "failed", dErrors.Replace(err, dErrors.CodeAuthFailed, string(dErrors.CodeAuthFailed))
}

func (s *Service) recordAuth(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAuth(outcome)
	}
}
