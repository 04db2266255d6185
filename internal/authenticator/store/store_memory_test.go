package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/akilalakshman/esignet/pkg/testutil"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore(time.Minute)
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestPutGet() {
	s.Require().NoError(s.store.Put(s.ctx, "tok", "psut", "blob"))

	got, err := s.store.Get(s.ctx, "tok", "psut")
	s.Require().NoError(err)
	s.Equal("blob", got)

	// Get does not consume
	_, err = s.store.Get(s.ctx, "tok", "psut")
	s.NoError(err)
}

func (s *InMemoryStoreSuite) TestKeyIsTokenAndSubject() {
	s.Require().NoError(s.store.Put(s.ctx, "tok", "psut-a", "a"))

	_, err := s.store.Get(s.ctx, "tok", "psut-b")
	s.ErrorIs(err, ErrNotFound)
}

func (s *InMemoryStoreSuite) TestLastWriteWins() {
	s.Require().NoError(s.store.Put(s.ctx, "tok", "psut", "first"))
	s.Require().NoError(s.store.Put(s.ctx, "tok", "psut", "second"))

	got, err := s.store.Get(s.ctx, "tok", "psut")
	s.Require().NoError(err)
	s.Equal("second", got)
}

func (s *InMemoryStoreSuite) TestEmptyBlobIsStored() {
	s.Require().NoError(s.store.Put(s.ctx, "tok", "psut", ""))

	got, err := s.store.Take(s.ctx, "tok", "psut")
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *InMemoryStoreSuite) TestTakeConsumes() {
	s.Require().NoError(s.store.Put(s.ctx, "tok", "psut", "blob"))

	got, err := s.store.Take(s.ctx, "tok", "psut")
	s.Require().NoError(err)
	s.Equal("blob", got)

	_, err = s.store.Take(s.ctx, "tok", "psut")
	s.ErrorIs(err, ErrNotFound)
	s.Zero(s.store.Len())
}

func (s *InMemoryStoreSuite) TestExpiry() {
	now := time.Now()
	s.store.now = func() time.Time { return now }
	s.Require().NoError(s.store.Put(s.ctx, "tok", "psut", "blob"))

	now = now.Add(time.Minute)
	_, err := s.store.Get(s.ctx, "tok", "psut")
	s.ErrorIs(err, ErrNotFound)
	s.Zero(s.store.Len())
}

func (s *InMemoryStoreSuite) TestConcurrentTakeYieldsOneWinner() {
	s.Require().NoError(s.store.Put(s.ctx, "tok", "psut", "blob"))

	res := testutil.RunConcurrent(16, func(int) error {
		_, err := s.store.Take(s.ctx, "tok", "psut")
		return err
	}, ErrNotFound)

	s.Equal(int32(1), res.Successes)
	s.Equal(int32(15), res.Expected)
	s.Zero(res.Errors)
}

func (s *InMemoryStoreSuite) TestDefaultTTL() {
	s.Equal(DefaultTTL, NewInMemoryStore(0).ttl)
}

func (s *InMemoryStoreSuite) TestDeleteExpired() {
	start := time.Now()
	s.store.now = func() time.Time { return start }
	s.Require().NoError(s.store.Put(s.ctx, "old", "psut", "a"))
	s.store.now = func() time.Time { return start.Add(30 * time.Second) }
	s.Require().NoError(s.store.Put(s.ctx, "new", "psut", "b"))

	n, err := s.store.DeleteExpired(s.ctx, start.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(1, s.store.Len())

	s.store.now = func() time.Time { return start.Add(time.Minute) }
	got, err := s.store.Get(s.ctx, "new", "psut")
	s.Require().NoError(err)
	s.Equal("b", got)
}
