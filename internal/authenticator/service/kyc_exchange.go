package service

import (
	"context"
	"errors"

	"github.com/akilalakshman/esignet/internal/authenticator/claims"
	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
	"github.com/akilalakshman/esignet/internal/authenticator/tracer"
	dErrors "github.com/akilalakshman/esignet/pkg/domain-errors"
	audit "github.com/akilalakshman/esignet/pkg/platform/audit"
)

// KycExchange redeems a kyc token for the signed claim set. The stored
// payload is consumed whether or not the exchange succeeds.
//
// A missing or empty payload is not an error: the result then carries only
// the subject claim. Any other failure is reported as a generic exchange
// failure.
func (s *Service) KycExchange(ctx context.Context, relyingPartyID, clientID string, req models.KycExchangeRequest) (_ *models.KycExchangeResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanKycExchange,
		tracer.String(tracer.AttrRelyingParty, relyingPartyID),
		tracer.String(tracer.AttrTransactionID, req.TransactionID),
		tracer.String(tracer.AttrIndividual, tracer.HashIdentifier(req.IndividualID)),
	)
	defer func() { span.End(err) }()

	f := s.newFlow(ctx, span, req.TransactionID, models.StateAuthenticated)
	f.to(models.StateExchangePending)

	signed, psut, degraded, err := s.kycExchange(ctx, relyingPartyID, req)
	event := audit.Event{
		Subject:       psut,
		RelyingParty:  relyingPartyID,
		ClientID:      clientID,
		TransactionID: req.TransactionID,
	}
	if err != nil {
		f.to(models.StateFailed)
		s.logger.ErrorContext(ctx, "kyc exchange failed",
			"transaction_id", req.TransactionID,
			"relying_party_id", relyingPartyID,
			"error", err,
		)
		s.recordExchange("failed")
		event.Decision = "failed"
		s.audit(ctx, span, audit.EventKycExchangeFailed, event)
		return nil, dErrors.Replace(err, dErrors.CodeExchangeFailed, string(dErrors.CodeExchangeFailed))
	}

	f.to(models.StateExchanged)
	span.SetAttributes(tracer.Bool(tracer.AttrDegraded, degraded))
	if degraded {
		s.logger.WarnContext(ctx, "kyc exchange without identity payload",
			"transaction_id", req.TransactionID,
			"relying_party_id", relyingPartyID,
		)
		s.recordExchange("degraded")
		event.Decision = "degraded"
		s.audit(ctx, span, audit.EventKycExchangeDegraded, event)
	} else {
		s.recordExchange("success")
		event.Decision = "success"
		s.audit(ctx, span, audit.EventKycExchanged, event)
	}
	return &models.KycExchangeResult{EncryptedKyc: signed}, nil
}

func (s *Service) kycExchange(ctx context.Context, relyingPartyID string, req models.KycExchangeRequest) (signed, psut string, degraded bool, err error) {
	psut, err = s.tokens.DerivePseudonym(ctx, req.IndividualID, relyingPartyID)
	if err != nil {
		return "", "", false, wrapStage("derive subject", err)
	}

	blob, err := s.store.Take(ctx, req.KycToken, psut)
	if err != nil && !errors.Is(err, models.ErrStorageMiss) {
		return "", psut, false, wrapStage("take identity payload", err)
	}
	if blob == "" {
		signed, err = s.sign(ctx, s.subjectOnly(psut))
		return signed, psut, true, err
	}

	plainB64, err := s.decryptor.Decrypt(ctx, blob)
	if err != nil {
		return "", psut, false, wrapStage("decrypt identity payload", err)
	}
	plain, err := combiner.DecodeURL(plainB64)
	if err != nil {
		return "", psut, false, wrapStage("decode identity payload", err)
	}
	record, err := claims.ParseIdentityJSON(plain)
	if err != nil {
		return "", psut, false, wrapStage("parse identity payload", err)
	}

	payload := s.subjectOnly(psut)
	if record.Len() > 0 {
		_, resolve := s.tracer.Start(ctx, tracer.SpanResolve, tracer.Strings(tracer.AttrLocales, req.ClaimsLocales))
		payload = s.resolver.Resolve(ctx, claims.Input{
			Record:       record,
			Subject:      psut,
			IndividualID: req.IndividualID,
			Claims:       req.AcceptedClaims,
			Locales:      req.ClaimsLocales,
		})
		resolve.SetAttributes(tracer.Int(tracer.AttrClaimCount, len(payload)))
		resolve.End(nil)
		if s.metrics != nil {
			s.metrics.ObserveClaims(len(payload))
		}
	}

	signed, err = s.sign(ctx, payload)
	return signed, psut, false, err
}

func (s *Service) subjectOnly(psut string) map[string]any {
	return map[string]any{s.cfg.SubjectClaim: psut}
}

func (s *Service) sign(ctx context.Context, payload map[string]any) (string, error) {
	signed, err := s.signer.SignPayload(ctx, payload, s.cfg.ApplicationID, s.cfg.IncludeCertificate)
	if err != nil {
		return "", wrapStage("sign claims", err)
	}
	return signed, nil
}

func (s *Service) recordExchange(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordExchange(outcome)
	}
}
