package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"github.com/akilalakshman/esignet/internal/authenticator/combiner"
	"github.com/akilalakshman/esignet/internal/authenticator/models"
	"github.com/akilalakshman/esignet/internal/authenticator/provider"
	dErrors "github.com/akilalakshman/esignet/pkg/domain-errors"
)

func (s *ServiceSuite) TestKycAuth() {
	identity := combiner.EncodeURL([]byte("ciphertext"))
	sessionKey := combiner.EncodeURL([]byte("wrapped-key"))
	thumbprint := "0a0b0c0d"

	s.Run("success stores the assembled payload and returns both tokens", func() {
		expectedBlob, err := combiner.Assemble(identity, sessionKey, thumbprint, "#KEY_SPLITTER#")
		s.Require().NoError(err)

		s.mockIDA.EXPECT().KycAuth(gomock.Any(), authRequest()).Return(kycResponse("txn-from-ida", &provider.KycResponse{
			AuthStatus: true,
			KycStatus:  true,
			Identity:   identity,
			SessionKey: sessionKey,
			Thumbprint: thumbprint,
		}), nil)
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), testIndividual, testRelyingParty).Return(testPSUT, nil)
		s.mockTokens.EXPECT().DeriveCorrelationToken("txn-from-ida", testPSUT).Return(testKycToken, nil)
		s.mockStore.EXPECT().Put(gomock.Any(), testKycToken, testPSUT, expectedBlob).Return(nil)
		event := s.expectAudit()

		result, err := s.service.KycAuth(s.ctx, testRelyingParty, testClientID, authRequest())
		s.Require().NoError(err)
		s.Equal(testKycToken, result.KycToken)
		s.Equal(testPSUT, result.PartnerSpecificUserToken)

		s.Equal("kyc_auth_succeeded", event.Action)
		s.Equal(testPSUT, event.Subject)
		s.Equal(testRelyingParty, event.RelyingParty)
		s.Equal(testClientID, event.ClientID)
		s.Equal("success", event.Decision)
	})

	s.Run("auth without kyc stores an empty payload and falls back to the request transaction", func() {
		s.mockIDA.EXPECT().KycAuth(gomock.Any(), gomock.Any()).Return(kycResponse("", &provider.KycResponse{
			AuthStatus: true,
			Identity:   identity,
		}), nil)
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), testIndividual, testRelyingParty).Return(testPSUT, nil)
		s.mockTokens.EXPECT().DeriveCorrelationToken(testTxID, testPSUT).Return(testKycToken, nil)
		s.mockStore.EXPECT().Put(gomock.Any(), testKycToken, testPSUT, "").Return(nil)
		s.expectAudit()

		_, err := s.service.KycAuth(s.ctx, testRelyingParty, testClientID, authRequest())
		s.Require().NoError(err)
	})

	s.Run("kyc status without identity stores an empty payload", func() {
		s.mockIDA.EXPECT().KycAuth(gomock.Any(), gomock.Any()).Return(kycResponse(testTxID, &provider.KycResponse{
			KycStatus: true,
		}), nil)
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
		s.mockTokens.EXPECT().DeriveCorrelationToken(testTxID, testPSUT).Return(testKycToken, nil)
		s.mockStore.EXPECT().Put(gomock.Any(), testKycToken, testPSUT, "").Return(nil)
		s.expectAudit()

		_, err := s.service.KycAuth(s.ctx, testRelyingParty, testClientID, authRequest())
		s.Require().NoError(err)
	})

	s.Run("provider error code is surfaced as a rejection", func() {
		s.mockIDA.EXPECT().KycAuth(gomock.Any(), gomock.Any()).Return(
			kycResponse(testTxID, nil, provider.Error{ErrorCode: "IDA-MLC-002", ErrorMessage: "invalid UIN"}), nil)
		event := s.expectAudit()

		result, err := s.service.KycAuth(s.ctx, testRelyingParty, testClientID, authRequest())
		s.Require().Error(err)
		s.Nil(result)
		s.True(dErrors.HasCode(err, dErrors.CodeProviderRejected))
		s.Equal("IDA-MLC-002", err.Error())
		s.Equal("kyc_auth_failed", event.Action)
		s.Equal("rejected", event.Decision)
		s.Empty(event.Subject)
	})

	s.Run("negative status without errors is a generic failure", func() {
		s.mockIDA.EXPECT().KycAuth(gomock.Any(), gomock.Any()).Return(
			kycResponse(testTxID, &provider.KycResponse{}), nil)
		s.expectAudit()

		_, err := s.service.KycAuth(s.ctx, testRelyingParty, testClientID, authRequest())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAuthFailed))
		s.Equal("auth_failed", err.Error())
	})

	s.Run("transport failure does not leak the cause", func() {
		s.mockIDA.EXPECT().KycAuth(gomock.Any(), gomock.Any()).Return(nil, models.ErrTransport)
		s.expectAudit()

		_, err := s.service.KycAuth(s.ctx, testRelyingParty, testClientID, authRequest())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAuthFailed))
		s.Equal("auth_failed", err.Error())
		s.ErrorIs(err, models.ErrTransport)
	})

	s.Run("derivation failure collapses to auth failure", func() {
		s.mockIDA.EXPECT().KycAuth(gomock.Any(), gomock.Any()).Return(
			kycResponse(testTxID, &provider.KycResponse{AuthStatus: true}), nil)
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return("", models.ErrDerivation)
		s.expectAudit()

		_, err := s.service.KycAuth(s.ctx, testRelyingParty, testClientID, authRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeAuthFailed))
		s.ErrorIs(err, models.ErrDerivation)
	})

	s.Run("malformed identity fragments fail before storing", func() {
		s.mockIDA.EXPECT().KycAuth(gomock.Any(), gomock.Any()).Return(kycResponse(testTxID, &provider.KycResponse{
			KycStatus: true,
			Identity:  "!!not-base64!!",
		}), nil)
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
		s.mockTokens.EXPECT().DeriveCorrelationToken(gomock.Any(), gomock.Any()).Return(testKycToken, nil)
		event := s.expectAudit()

		_, err := s.service.KycAuth(s.ctx, testRelyingParty, testClientID, authRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeAuthFailed))
		s.ErrorIs(err, models.ErrDecode)
		s.Equal(testPSUT, event.Subject)
	})

	s.Run("store failure collapses to auth failure", func() {
		s.mockIDA.EXPECT().KycAuth(gomock.Any(), gomock.Any()).Return(
			kycResponse(testTxID, &provider.KycResponse{AuthStatus: true}), nil)
		s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
		s.mockTokens.EXPECT().DeriveCorrelationToken(gomock.Any(), gomock.Any()).Return(testKycToken, nil)
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
		s.expectAudit()

		_, err := s.service.KycAuth(s.ctx, testRelyingParty, testClientID, authRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeAuthFailed))
	})
}

func (s *ServiceSuite) TestKycAuthMetrics() {
	s.mockIDA.EXPECT().KycAuth(gomock.Any(), gomock.Any()).Return(
		kycResponse(testTxID, &provider.KycResponse{AuthStatus: true}), nil)
	s.mockTokens.EXPECT().DerivePseudonym(gomock.Any(), gomock.Any(), gomock.Any()).Return(testPSUT, nil)
	s.mockTokens.EXPECT().DeriveCorrelationToken(gomock.Any(), gomock.Any()).Return(testKycToken, nil)
	s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.expectAudit()
	_, err := s.service.KycAuth(s.ctx, testRelyingParty, testClientID, authRequest())
	s.Require().NoError(err)

	s.mockIDA.EXPECT().KycAuth(gomock.Any(), gomock.Any()).Return(
		kycResponse(testTxID, nil, provider.Error{ErrorCode: "IDA-OTA-001"}), nil)
	s.expectAudit()
	_, err = s.service.KycAuth(s.ctx, testRelyingParty, testClientID, authRequest())
	s.Require().Error(err)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.AuthTotal.WithLabelValues("success")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.AuthTotal.WithLabelValues("rejected")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.StateTransited.WithLabelValues("authenticated")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.StateTransited.WithLabelValues("failed")))
}
