package service

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"github.com/akilalakshman/esignet/internal/authenticator/claims"
	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
	dErrors "github.com/akilalakshman/esignet/pkg/domain-errors"
)

const storedBlob = "c3RvcmVkLWJsb2I"

func (s *ServiceSuite) TestKycExchange() {
	identity := combiner.EncodeURL([]byte(`{"name_eng":"John","email":"john@example.org"}`))

	s.Run("success resolves consented claims and signs them", func() {
		resolved := map[string]any{"sub": testPSUT, "name": "John", "email": "john@example.org"}

		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), testIndividual, testRelyingParty).Return(testPSUT, nil)
		s.mockStore.EXPECT().Take(gomock.Any(), testKycToken, testPSUT).Return(storedBlob, nil)
		s.mockDecryptor.EXPECT().Decrypt(gomock.Any(), storedBlob).Return(identity, nil)
		s.mockResolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, in claims.Input) map[string]any {
				s.Equal(testPSUT, in.Subject)
				s.Equal(testIndividual, in.IndividualID)
				s.Equal([]string{"name", "email"}, in.Claims)
				s.Equal([]string{"en"}, in.Locales)
				s.Equal(2, in.Record.Len())
				return resolved
			})
		s.mockSigner.EXPECT().SignPayload(gomock.Any(), resolved, "esignet-partner", false).Return("signed.jwt.value", nil)
		event := s.expectAudit()

		result, err := s.service.KycExchange(s.ctx, testRelyingParty, testClientID, exchangeRequest())
		s.Require().NoError(err)
		s.Equal("signed.jwt.value", result.EncryptedKyc)
		s.Equal("kyc_exchanged", event.Action)
		s.Equal("compliance", string(event.Category))
		s.Equal(testPSUT, event.Subject)
	})

	s.Run("missing payload signs the subject only", func() {
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
		s.mockStore.EXPECT().Take(gomock.Any(), testKycToken, testPSUT).Return("", models.ErrStorageMiss)
		s.mockSigner.EXPECT().SignPayload(gomock.Any(), map[string]any{"sub": testPSUT}, "esignet-partner", false).Return("subject.only.jwt", nil)
		event := s.expectAudit()

		result, err := s.service.KycExchange(s.ctx, testRelyingParty, testClientID, exchangeRequest())
		s.Require().NoError(err)
		s.Equal("subject.only.jwt", result.EncryptedKyc)
		s.Equal("kyc_exchange_degraded", event.Action)
		s.Equal("degraded", event.Decision)
	})

	s.Run("empty stored payload signs the subject only", func() {
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
		s.mockStore.EXPECT().Take(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
		s.mockSigner.EXPECT().SignPayload(gomock.Any(), map[string]any{"sub": testPSUT}, gomock.Any(), gomock.Any()).Return("subject.only.jwt", nil)
		s.expectAudit()

		_, err := s.service.KycExchange(s.ctx, testRelyingParty, testClientID, exchangeRequest())
		s.Require().NoError(err)
	})

	s.Run("empty identity record signs the subject only", func() {
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
		s.mockStore.EXPECT().Take(gomock.Any(), gomock.Any(), gomock.Any()).Return(storedBlob, nil)
		s.mockDecryptor.EXPECT().Decrypt(gomock.Any(), storedBlob).Return(combiner.EncodeURL([]byte(`{}`)), nil)
		s.mockSigner.EXPECT().SignPayload(gomock.Any(), map[string]any{"sub": testPSUT}, gomock.Any(), gomock.Any()).Return("subject.only.jwt", nil)
		event := s.expectAudit()

		_, err := s.service.KycExchange(s.ctx, testRelyingParty, testClientID, exchangeRequest())
		s.Require().NoError(err)
		s.Equal("kyc_exchanged", event.Action)
	})

	s.Run("decryption failure is a generic exchange failure", func() {
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
		s.mockStore.EXPECT().Take(gomock.Any(), gomock.Any(), gomock.Any()).Return(storedBlob, nil)
		s.mockDecryptor.EXPECT().Decrypt(gomock.Any(), storedBlob).Return("", models.ErrDecryption)
		event := s.expectAudit()

		result, err := s.service.KycExchange(s.ctx, testRelyingParty, testClientID, exchangeRequest())
		s.Require().Error(err)
		s.Nil(result)
		s.True(dErrors.HasCode(err, dErrors.CodeExchangeFailed))
		s.Equal("data_exchange_failed", err.Error())
		s.ErrorIs(err, models.ErrDecryption)
		s.Equal("kyc_exchange_failed", event.Action)
		s.Equal("security", string(event.Category))
	})

	s.Run("plaintext that is not a json object fails", func() {
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
		s.mockStore.EXPECT().Take(gomock.Any(), gomock.Any(), gomock.Any()).Return(storedBlob, nil)
		s.mockDecryptor.EXPECT().Decrypt(gomock.Any(), storedBlob).Return(combiner.EncodeURL([]byte(`["x"]`)), nil)
		s.expectAudit()

		_, err := s.service.KycExchange(s.ctx, testRelyingParty, testClientID, exchangeRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeExchangeFailed))
		s.ErrorIs(err, models.ErrDecode)
	})

	s.Run("store failure other than a miss fails", func() {
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
		s.mockStore.EXPECT().Take(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("connection reset"))
		s.expectAudit()

		_, err := s.service.KycExchange(s.ctx, testRelyingParty, testClientID, exchangeRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeExchangeFailed))
	})

	s.Run("derivation failure fails without touching the store", func() {
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return("", models.ErrDerivation)
		event := s.expectAudit()

		_, err := s.service.KycExchange(s.ctx, testRelyingParty, testClientID, exchangeRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeExchangeFailed))
		s.Empty(event.Subject)
	})

	s.Run("signing failure fails", func() {
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
		s.mockStore.EXPECT().Take(gomock.Any(), gomock.Any(), gomock.Any()).Return("", models.ErrStorageMiss)
		s.mockSigner.EXPECT().SignPayload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", models.ErrSigning)
		s.expectAudit()

		_, err := s.service.KycExchange(s.ctx, testRelyingParty, testClientID, exchangeRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeExchangeFailed))
		s.ErrorIs(err, models.ErrSigning)
	})
}

func (s *ServiceSuite) TestKycExchangeMetrics() {
	s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
	s.mockStore.EXPECT().Take(gomock.Any(), gomock.Any(), gomock.Any()).Return("", models.ErrStorageMiss)
	s.mockSigner.EXPECT().SignPayload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("jwt", nil)
	s.expectAudit()

	_, err := s.service.KycExchange(s.ctx, testRelyingParty, testClientID, exchangeRequest())
	s.Require().NoError(err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ExchangeTotal.WithLabelValues("degraded")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.StateTransited.WithLabelValues("exchanged")))
}
