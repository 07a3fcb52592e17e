package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/swordgame-go/internal/api"
	"github.com/mcoot/swordgame-go/internal/api/apierr"
	"github.com/mcoot/swordgame-go/internal/api/response"
	"github.com/mcoot/swordgame-go/internal/factory"
	"github.com/mcoot/swordgame-go/internal/model"
	"github.com/mcoot/swordgame-go/internal/testutil"
)

type APISuite struct {
	suite.Suite
	app     *factory.TestApp
	handler http.Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.Require().NoError(s.app.Start(s.ctx))

	s.handler = api.NewRouter(api.RouterConfig{
		Logger:  testutil.NopLogger(),
		Players: s.app.Dispatcher,
	})
}

func (s *APISuite) TearDownTest() {
	s.cancel()
	s.app.Wait()
}

func (s *APISuite) request(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *APISuite) decode(rr *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), out))
}

// join logs a player in through the dispatcher and sets their progress
func (s *APISuite) join(id model.ConnectionID, nickname string, level int, money int64) {
	s.Require().NoError(s.app.Dispatcher.Submit(s.ctx, model.Inbound{ConnectionID: id, Kind: model.InboundLogin, Text: nickname}))

	p, err := s.app.Dispatcher.Player(s.ctx, id)
	s.Require().NoError(err)
	p.Level = level
	p.Money = money
	s.Require().NoError(s.app.Registry.Save(s.ctx, p))
}

func (s *APISuite) TestHealthCheck() {
	s.join("conn-1", "Alice", 0, 1000)

	rr := s.request("/api/v1/health")
	s.Equal(http.StatusOK, rr.Code)

	var health response.Health
	s.decode(rr, &health)
	s.Equal("ok", health.Status)
	s.Equal(1, health.Players)
}

func (s *APISuite) TestRosterIsLeaderboardOrdered() {
	s.join("conn-1", "Carol", 3, 500)
	s.join("conn-2", "Alice", 7, 100)
	s.join("conn-3", "Bob", 3, 500)
	s.join("conn-4", "Dave", 3, 900)

	rr := s.request("/api/v1/players")
	s.Equal(http.StatusOK, rr.Code)

	var roster response.Roster
	s.decode(rr, &roster)
	s.Equal(4, roster.Count)

	var names []string
	for _, p := range roster.Players {
		names = append(names, p.Nickname)
	}
	s.Equal([]string{"Alice", "Dave", "Bob", "Carol"}, names)
}

func (s *APISuite) TestEmptyRoster() {
	rr := s.request("/api/v1/players")
	s.Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"count":0,"players":[]}`, rr.Body.String())
}

func (s *APISuite) TestGetPlayer() {
	s.join("conn-1", "Alice", 2, 970)

	rr := s.request("/api/v1/players/conn-1")
	s.Equal(http.StatusOK, rr.Code)

	var p response.Player
	s.decode(rr, &p)
	s.Equal("conn-1", p.ID)
	s.Equal("Alice", p.Nickname)
	s.Equal(2, p.Level)
	s.Equal(int64(970), p.Money)
	s.Equal(s.app.MockClock.Now(), p.JoinedAt)
}

func (s *APISuite) TestGetMissingPlayer() {
	rr := s.request("/api/v1/players/ghost")
	s.Equal(http.StatusNotFound, rr.Code)

	var resp apierr.ErrorResponse
	s.decode(rr, &resp)
	s.Equal(apierr.CodePlayerNotFound, resp.Error.Code)
}

func (s *APISuite) TestOddsAtBase() {
	rr := s.request("/api/v1/odds/0")
	s.Equal(http.StatusOK, rr.Code)

	var odds response.Odds
	s.decode(rr, &odds)
	s.Equal(0, odds.Level)
	s.Equal(int64(10), odds.Cost)
	s.InDelta(0.30, odds.Success, 1e-9)
	s.InDelta(0.60, odds.Maintain, 1e-9)
	s.InDelta(0.10, odds.Fail, 1e-9)
	s.False(odds.Milestone)
	s.Equal(int64(0), odds.SaleValue)
}

func (s *APISuite) TestOddsBeforeMilestone() {
	rr := s.request("/api/v1/odds/12")
	s.Equal(http.StatusOK, rr.Code)

	var odds response.Odds
	s.decode(rr, &odds)
	s.Equal(int64(130), odds.Cost)
	s.True(odds.Milestone)
	s.Equal(int64(14400), odds.SaleValue)
	s.InDelta(1.0, odds.Success+odds.Maintain+odds.Fail, 1e-9)
}

func (s *APISuite) TestOddsRejectsBadLevels() {
	for _, level := range []string{"-1", "abc", "1.5"} {
		rr := s.request("/api/v1/odds/" + level)
		s.Equal(http.StatusBadRequest, rr.Code, level)

		var resp apierr.ErrorResponse
		s.decode(rr, &resp)
		s.Equal(apierr.CodeInvalidLevel, resp.Error.Code)
	}
}

func (s *APISuite) TestStoppedDispatcherIsUnavailable() {
	s.cancel()
	s.app.Wait()

	rr := s.request("/api/v1/players")
	s.Equal(http.StatusServiceUnavailable, rr.Code)
}
