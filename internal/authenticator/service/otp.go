package service

import (
	"context"
	"fmt"

	"github.com/akilalakshman/esignet/internal/authenticator/models"
	"github.com/akilalakshman/esignet/internal/authenticator/tracer"
	dErrors "github.com/akilalakshman/esignet/pkg/domain-errors"
	audit "github.com/akilalakshman/esignet/pkg/platform/audit"
)

// SendOTP asks the provider to deliver an OTP over the requested channels.
// A provider error code is surfaced as a rejection; anything else is a
// generic send failure.
func (s *Service) SendOTP(ctx context.Context, relyingPartyID, clientID string, req models.SendOTPRequest) (_ *models.SendOTPResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSendOTP,
		tracer.String(tracer.AttrRelyingParty, relyingPartyID),
		tracer.String(tracer.AttrTransactionID, req.TransactionID),
	)
	defer func() { span.End(err) }()

	event := audit.Event{
		RelyingParty:  relyingPartyID,
		ClientID:      clientID,
		TransactionID: req.TransactionID,
	}

	result, err := s.sendOTP(ctx, req)
	if err != nil {
		public := dErrors.Replace(err, dErrors.CodeSendOTPFailed, string(dErrors.CodeSendOTPFailed))
		outcome := "failed"
		if code, ok := models.ProviderCode(err); ok {
			public = dErrors.Replace(err, dErrors.CodeProviderRejected, code)
			outcome = "rejected"
		}
		s.logger.ErrorContext(ctx, "send otp failed",
			"transaction_id", req.TransactionID,
			"relying_party_id", relyingPartyID,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.RecordOTP(outcome)
		}
		event.Decision = outcome
		event.Reason = public.Error()
		s.audit(ctx, span, audit.EventOTPFailed, event)
		return nil, public
	}

	if s.metrics != nil {
		s.metrics.RecordOTP("success")
	}
	event.Decision = "success"
	s.audit(ctx, span, audit.EventOTPSent, event)
	return result, nil
}

func (s *Service) sendOTP(ctx context.Context, req models.SendOTPRequest) (*models.SendOTPResult, error) {
	for _, ch := range req.OTPChannels {
		if !s.IsSupportedOTPChannel(ch) {
			return nil, fmt.Errorf("unsupported otp channel %q", ch)
		}
	}

	callCtx, call := s.tracer.Start(ctx, tracer.SpanProviderCall)
	resp, err := s.ida.SendOTP(callCtx, req)
	call.End(err)
	if err != nil {
		return nil, wrapStage("provider send otp", err)
	}
	if code := resp.FirstErrorCode(); code != "" {
		return nil, &models.RejectedError{Code: code, Message: resp.Errors[0].ErrorMessage}
	}
	if resp.Response == nil {
		return nil, fmt.Errorf("provider returned no otp response")
	}

	transactionID := resp.TransactionID
	if transactionID == "" {
		transactionID = req.TransactionID
	}
	return &models.SendOTPResult{
		TransactionID: transactionID,
		MaskedEmail:   resp.Response.MaskedEmail,
		MaskedMobile:  resp.Response.MaskedMobile,
	}, nil
}
