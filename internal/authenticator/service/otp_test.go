package service

import (
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"github.com/akilalakshman/esignet/internal/authenticator/models"
	"github.com/akilalakshman/esignet/internal/authenticator/provider"
	dErrors "github.com/akilalakshman/esignet/pkg/domain-errors"
)

func otpRequest(channels ...string) models.SendOTPRequest {
	return models.SendOTPRequest{
		TransactionID: testTxID,
		IndividualID:  testIndividual,
		OTPChannels:   channels,
	}
}

func (s *ServiceSuite) TestSendOTP() {
	s.Run("success returns masked destinations", func() {
		s.mockIDA.EXPECT().SendOTP(gomock.Any(), otpRequest("email", "phone")).Return(&provider.ResponseWrapper[provider.OTPResponse]{
			TransactionID: "txn-ida",
			Response:      &provider.OTPResponse{MaskedEmail: "j***@example.org", MaskedMobile: "******6276"},
		}, nil)
		event := s.expectAudit()

		result, err := s.service.SendOTP(s.ctx, testRelyingParty, testClientID, otpRequest("email", "phone"))
		s.Require().NoError(err)
		s.Equal(&models.SendOTPResult{
			TransactionID: "txn-ida",
			MaskedEmail:   "j***@example.org",
			MaskedMobile:  "******6276",
		}, result)
		s.Equal("otp_sent", event.Action)
		s.Equal("operations", string(event.Category))
	})

	s.Run("missing response transaction falls back to the request", func() {
		s.mockIDA.EXPECT().SendOTP(gomock.Any(), gomock.Any()).Return(&provider.ResponseWrapper[provider.OTPResponse]{
			Response: &provider.OTPResponse{MaskedEmail: "j***@example.org"},
		}, nil)
		s.expectAudit()

		result, err := s.service.SendOTP(s.ctx, testRelyingParty, testClientID, otpRequest("email"))
		s.Require().NoError(err)
		s.Equal(testTxID, result.TransactionID)
	})

	s.Run("unsupported channel fails without calling the provider", func() {
		event := s.expectAudit()

		_, err := s.service.SendOTP(s.ctx, testRelyingParty, testClientID, otpRequest("sms"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeSendOTPFailed))
		s.Equal("send_otp_failed", err.Error())
		s.Equal("otp_failed", event.Action)
	})

	s.Run("provider error code is surfaced", func() {
		s.mockIDA.EXPECT().SendOTP(gomock.Any(), gomock.Any()).Return(&provider.ResponseWrapper[provider.OTPResponse]{
			Errors: []provider.Error{{ErrorCode: "IDA-OTA-008", ErrorMessage: "otp request limit exceeded"}},
		}, nil)
		event := s.expectAudit()

		_, err := s.service.SendOTP(s.ctx, testRelyingParty, testClientID, otpRequest("email"))
		s.True(dErrors.HasCode(err, dErrors.CodeProviderRejected))
		s.Equal("IDA-OTA-008", err.Error())
		s.Equal("rejected", event.Decision)
	})

	s.Run("transport failure is a generic send failure", func() {
		s.mockIDA.EXPECT().SendOTP(gomock.Any(), gomock.Any()).Return(nil, models.ErrTransport)
		s.expectAudit()

		_, err := s.service.SendOTP(s.ctx, testRelyingParty, testClientID, otpRequest("email"))
		s.True(dErrors.HasCode(err, dErrors.CodeSendOTPFailed))
		s.ErrorIs(err, models.ErrTransport)
	})

	s.Run("empty response is a generic send failure", func() {
		s.mockIDA.EXPECT().SendOTP(gomock.Any(), gomock.Any()).Return(&provider.ResponseWrapper[provider.OTPResponse]{}, nil)
		s.expectAudit()

		_, err := s.service.SendOTP(s.ctx, testRelyingParty, testClientID, otpRequest("email"))
		s.True(dErrors.HasCode(err, dErrors.CodeSendOTPFailed))
	})
}

func (s *ServiceSuite) TestSendOTPMetrics() {
	s.expectAudit()
	_, err := s.service.SendOTP(s.ctx, testRelyingParty, testClientID, otpRequest("fax"))
	s.Require().Error(err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.OTPTotal.WithLabelValues("failed")))
}
