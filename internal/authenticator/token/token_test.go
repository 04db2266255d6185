package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/akilalakshman/esignet/internal/authenticator/models"
)

const testSecret = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY" // "0123456789abcdef0123456789abcdef"

type stubGenerator struct {
	psut string
	err  error
}

func (g stubGenerator) Generate(context.Context, string, string) (string, error) {
	return g.psut, g.err
}

type TokenServiceSuite struct {
	suite.Suite
	svc *Service
}

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceSuite))
}

func (s *TokenServiceSuite) SetupTest() {
	fixed := time.Unix(0, 1700000000000000000)
	svc, err := New(testSecret, stubGenerator{psut: "0a1b2c3d"}, WithClock(func() time.Time { return fixed }))
	s.Require().NoError(err)
	s.svc = svc
}

func (s *TokenServiceSuite) TestKeyedHash() {
	s.Run("matches digest of data followed by secret", func() {
		s.Equal("2zLfRy21wtgFtkhz8gP1fjkxuLgfRk1hbKFaCyKiZrsV", s.svc.KeyedHash([]byte("hello")))
	})

	s.Run("deterministic", func() {
		s.Equal(s.svc.KeyedHash([]byte("x")), s.svc.KeyedHash([]byte("x")))
	})

	s.Run("one changed byte changes the hash", func() {
		s.NotEqual(s.svc.KeyedHash([]byte("hello")), s.svc.KeyedHash([]byte("hellp")))
	})
}

func (s *TokenServiceSuite) TestDeriveCorrelationToken() {
	s.Run("known answer for fixed clock", func() {
		tok, err := s.svc.DeriveCorrelationToken("txn-0001", "0a1b2c3d")
		s.Require().NoError(err)
		s.Equal("2GpYgibVU7rfinu97jEorh44E912Jd248qLk8DpVkXAs", tok)
	})

	s.Run("same inputs on a frozen clock still differ", func() {
		first, err := s.svc.DeriveCorrelationToken("txn-0002", "0a1b2c3d")
		s.Require().NoError(err)
		second, err := s.svc.DeriveCorrelationToken("txn-0002", "0a1b2c3d")
		s.Require().NoError(err)
		s.NotEqual(first, second)
	})

	s.Run("base64url subject proof accepted", func() {
		_, err := s.svc.DeriveCorrelationToken("txn-0003", "c3ViamVjdC1wcm9vZg")
		s.NoError(err)
	})

	s.Run("undecodable subject proof", func() {
		_, err := s.svc.DeriveCorrelationToken("txn-0004", "***")
		s.ErrorIs(err, models.ErrDecode)
	})
}

func (s *TokenServiceSuite) TestMonotonicNonce() {
	fixed := time.Unix(0, 1700000000000000000)
	svc, err := New(testSecret, stubGenerator{psut: "0a1b2c3d"}, WithClock(func() time.Time { return fixed }))
	s.Require().NoError(err)

	_, err = svc.DeriveCorrelationToken("txn-0001", "0a1b2c3d")
	s.Require().NoError(err)
	second, err := svc.DeriveCorrelationToken("txn-0001", "0a1b2c3d")
	s.Require().NoError(err)

	// the second call observes nanos+1
	s.Equal("ErB4kgCNRrEftPdBrzYeLRDgvimrEMdFvD514NKftcLD", second)
}

func (s *TokenServiceSuite) TestDerivePseudonym() {
	s.Run("delegates to generator", func() {
		psut, err := s.svc.DerivePseudonym(context.Background(), "5860356276", "rp-1")
		s.Require().NoError(err)
		s.Equal("0a1b2c3d", psut)
	})

	s.Run("generator failure", func() {
		svc, err := New(testSecret, stubGenerator{err: errors.New("hsm offline")})
		s.Require().NoError(err)
		_, err = svc.DerivePseudonym(context.Background(), "5860356276", "rp-1")
		s.ErrorIs(err, models.ErrDerivation)
	})

	s.Run("empty pseudonym", func() {
		svc, err := New(testSecret, stubGenerator{})
		s.Require().NoError(err)
		_, err = svc.DerivePseudonym(context.Background(), "5860356276", "rp-1")
		s.ErrorIs(err, models.ErrDerivation)
	})
}

func TestNew(t *testing.T) {
	t.Run("invalid secret", func(t *testing.T) {
		_, err := New("not base64 !!", stubGenerator{})
		assert.ErrorIs(t, err, models.ErrDecode)
	})

	t.Run("missing generator", func(t *testing.T) {
		_, err := New(testSecret, nil)
		assert.ErrorIs(t, err, models.ErrDerivation)
	})

	t.Run("nil hash factory", func(t *testing.T) {
		_, err := New(testSecret, stubGenerator{}, WithHash(nil))
		assert.ErrorIs(t, err, models.ErrHashUnavailable)
	})
}

func TestHMACGenerator(t *testing.T) {
	gen, err := NewHMACGenerator([]byte("pepper"))
	require.NoError(t, err)
	ctx := context.Background()

	a, err := gen.Generate(ctx, "5860356276", "rp-1")
	require.NoError(t, err)
	again, err := gen.Generate(ctx, "5860356276", "rp-1")
	require.NoError(t, err)
	other, err := gen.Generate(ctx, "5860356276", "rp-2")
	require.NoError(t, err)

	assert.Equal(t, a, again)
	assert.NotEqual(t, a, other)
	assert.Len(t, a, 64)

	_, err = gen.Generate(ctx, "", "rp-1")
	assert.Error(t, err)

	_, err = NewHMACGenerator(nil)
	assert.Error(t, err)
}
