package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/swordgame-go/internal/dependencies/mocks"
	"github.com/mcoot/swordgame-go/internal/model"
	"github.com/mcoot/swordgame-go/internal/storage/memory"
	"github.com/mcoot/swordgame-go/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *RegistrySuite) TestCreateStartsAtBaseState() {
	player, err := s.registry.Create(s.ctx, "conn-1", "Alice")
	s.Require().NoError(err)

	s.Equal(model.ConnectionID("conn-1"), player.ID)
	s.Equal("Alice", player.Nickname)
	s.Equal(0, player.Level)
	s.Equal(InitialMoney, player.Money)
	s.Equal(s.clock.Now(), player.JoinedAt)
}

func (s *RegistrySuite) TestCreateDuplicateConnectionFails() {
	_, _ = s.registry.Create(s.ctx, "conn-1", "Alice")
	original, _ := s.registry.Get(s.ctx, "conn-1")
	original.Level = 4
	s.Require().NoError(s.registry.Save(s.ctx, original))

	_, err := s.registry.Create(s.ctx, "conn-1", "Mallory")
	s.ErrorIs(err, model.ErrDuplicateConnection)

	// Existing record is not overwritten
	stored, _ := s.registry.Get(s.ctx, "conn-1")
	s.Equal("Alice", stored.Nickname)
	s.Equal(4, stored.Level)
}

func (s *RegistrySuite) TestGetUnknownConnection() {
	_, err := s.registry.Get(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrUnknownConnection)
}

func (s *RegistrySuite) TestGetReturnsCopy() {
	_, _ = s.registry.Create(s.ctx, "conn-1", "Alice")

	p, _ := s.registry.Get(s.ctx, "conn-1")
	p.Money = 0

	again, _ := s.registry.Get(s.ctx, "conn-1")
	s.Equal(InitialMoney, again.Money)
}

func (s *RegistrySuite) TestSaveUnknownConnectionFails() {
	err := s.registry.Save(s.ctx, model.Player{ID: "ghost"})
	s.ErrorIs(err, model.ErrUnknownConnection)
}

func (s *RegistrySuite) TestRemove() {
	_, _ = s.registry.Create(s.ctx, "conn-1", "Alice")
	s.clock.Advance(5 * time.Minute)

	removed, ok, err := s.registry.Remove(s.ctx, "conn-1")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("Alice", removed.Nickname)

	_, err = s.registry.Get(s.ctx, "conn-1")
	s.ErrorIs(err, model.ErrUnknownConnection)
}

func (s *RegistrySuite) TestRemoveAbsentIsNoop() {
	_, ok, err := s.registry.Remove(s.ctx, "ghost")
	s.NoError(err)
	s.False(ok)
}

func (s *RegistrySuite) TestSnapshotAllIsDetached() {
	_, _ = s.registry.Create(s.ctx, "conn-1", "Alice")
	_, _ = s.registry.Create(s.ctx, "conn-2", "Bob")

	snapshot, err := s.registry.SnapshotAll(s.ctx)
	s.Require().NoError(err)
	s.Len(snapshot, 2)
	s.Equal("Bob", snapshot["conn-2"].Nickname)

	// Later mutation must not leak into the snapshot
	p, _ := s.registry.Get(s.ctx, "conn-1")
	p.Level = 7
	s.Require().NoError(s.registry.Save(s.ctx, p))

	s.Equal(0, snapshot["conn-1"].Level)
}

func (s *RegistrySuite) TestCountAndReset() {
	_, _ = s.registry.Create(s.ctx, "conn-1", "Alice")
	_, _ = s.registry.Create(s.ctx, "conn-2", "Bob")

	n, err := s.registry.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	s.Require().NoError(s.registry.Reset(s.ctx))

	n, _ = s.registry.Count(s.ctx)
	s.Equal(0, n)
}
