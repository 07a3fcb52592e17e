// Package session routes client events to game operations and emits the
// resulting protocol events. All registry mutation happens on one goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/swordgame-go/internal/model"
	"github.com/mcoot/swordgame-go/internal/services/chat"
	"github.com/mcoot/swordgame-go/internal/services/economy"
	"github.com/mcoot/swordgame-go/internal/services/enhance"
	"github.com/mcoot/swordgame-go/internal/services/registry"
)

// inboxSize bounds how many events may wait for the dispatcher loop
const inboxSize = 256

// command is either an inbound event or a read-only query run on the loop
type command struct {
	inbound model.Inbound
	query   func(ctx context.Context)
}

// Dispatcher is the single writer for the player registry
type Dispatcher struct {
	registry *registry.Registry
	engine   *enhance.Engine
	emitter  Emitter
	logger   *slog.Logger

	inbox   chan command
	stopped chan struct{}
}

// NewDispatcher creates a Dispatcher. Call Run to start processing submitted events.
func NewDispatcher(
	registry *registry.Registry,
	engine *enhance.Engine,
	emitter Emitter,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		engine:   engine,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "dispatcher")),
		inbox:    make(chan command, inboxSize),
		stopped:  make(chan struct{}),
	}
}

// Run processes submitted events one at a time until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher started")
	defer close(d.stopped)

	for {
		select {
		case cmd := <-d.inbox:
			if cmd.query != nil {
				cmd.query(ctx)
				continue
			}
			if err := d.Handle(ctx, cmd.inbound); err != nil {
				d.logger.Error("event handling failed",
					slog.String("connection_id", string(cmd.inbound.ConnectionID)),
					slog.String("event", string(cmd.inbound.Kind)),
					slog.String("error", err.Error()),
				)
			}
		case <-ctx.Done():
			d.logger.Info("dispatcher stopped")
			return ctx.Err()
		}
	}
}

// Submit queues an inbound event for the loop
func (d *Dispatcher) Submit(ctx context.Context, in model.Inbound) error {
	return d.enqueue(ctx, command{inbound: in})
}

func (d *Dispatcher) enqueue(ctx context.Context, cmd command) error {
	select {
	case <-d.stopped:
		return model.ErrDispatcherStopped
	default:
	}

	select {
	case d.inbox <- cmd:
		return nil
	case <-d.stopped:
		return model.ErrDispatcherStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Roster returns copies of all live players, read on the dispatcher loop
func (d *Dispatcher) Roster(ctx context.Context) ([]model.Player, error) {
	return query(ctx, d, d.registry.List)
}

// Snapshot returns the client-visible roster, read on the dispatcher loop
func (d *Dispatcher) Snapshot(ctx context.Context) (model.Roster, error) {
	return query(ctx, d, d.registry.SnapshotAll)
}

// Player returns a copy of one live player, read on the dispatcher loop
func (d *Dispatcher) Player(ctx context.Context, id model.ConnectionID) (model.Player, error) {
	return query(ctx, d, func(ctx context.Context) (model.Player, error) {
		return d.registry.Get(ctx, id)
	})
}

func query[T any](ctx context.Context, d *Dispatcher, fn func(context.Context) (T, error)) (T, error) {
	var (
		out T
		err error
	)
	done := make(chan struct{})
	cmd := command{query: func(ctx context.Context) {
		defer close(done)
		out, err = fn(ctx)
	}}

	if qerr := d.enqueue(ctx, cmd); qerr != nil {
		return out, qerr
	}

	select {
	case <-done:
		return out, err
	case <-d.stopped:
		return out, model.ErrDispatcherStopped
	case <-ctx.Done():
		return out, ctx.Err()
	}
}

// Handle applies one inbound event and emits its protocol events.
// Only called from the loop, or directly when the caller already serializes events.
// Expected rejections are reported to the client and return nil.
func (d *Dispatcher) Handle(ctx context.Context, in model.Inbound) error {
	t := &transition{sender: in.ConnectionID}

	res, err := d.apply(ctx, in, t)
	if errors.Is(err, model.ErrUnknownConnection) {
		d.logger.Debug("dropped event for unknown connection",
			slog.String("connection_id", string(in.ConnectionID)),
			slog.String("event", string(in.Kind)),
		)
		return nil
	}
	if errors.Is(err, model.ErrEmptyMessage) {
		return nil
	}
	if errors.Is(err, model.ErrDuplicateConnection) {
		d.logger.Warn("duplicate login, closing connection",
			slog.String("connection_id", string(in.ConnectionID)),
		)
		d.emitter.Close(in.ConnectionID, "duplicate login")
		return err
	}
	if err != nil {
		return err
	}

	d.emit(routeKey{kind: in.Kind, result: res}, t)
	return nil
}

func (d *Dispatcher) apply(ctx context.Context, in model.Inbound, t *transition) (result, error) {
	if in.Kind == model.InboundLogin {
		return d.login(ctx, in, t)
	}
	if !in.Kind.Valid() {
		return "", fmt.Errorf("unknown event %q", in.Kind)
	}

	if in.Kind == model.InboundDisconnect {
		removed, ok, err := d.registry.Remove(ctx, in.ConnectionID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", model.ErrUnknownConnection
		}
		t.player = removed
		return resultLeft, nil
	}

	player, err := d.registry.Get(ctx, in.ConnectionID)
	if err != nil {
		return "", err
	}
	t.player = player

	switch in.Kind {
	case model.InboundMineGold:
		return resultMined, d.commit(ctx, t, economy.Mine(player))

	case model.InboundSellWeapon:
		sale, err := economy.Sell(player)
		if errors.Is(err, model.ErrNothingToSell) {
			return resultNothingToSell, nil
		}
		t.reward = sale.Reward
		t.soldLevel = sale.SoldLevel
		t.outcome = model.OutcomeReset
		return resultSold, d.commit(ctx, t, sale.Player)

	case model.InboundRequestEnhance:
		attempt, err := d.engine.Attempt(player)
		t.cost = attempt.Cost
		if errors.Is(err, model.ErrInsufficientFunds) {
			return resultUnaffordable, nil
		}
		t.outcome = attempt.Outcome
		d.logger.Debug("enhance attempt",
			slog.String("connection_id", string(player.ID)),
			slog.Int("from_level", player.Level),
			slog.Int("to_level", attempt.Player.Level),
			slog.String("outcome", string(attempt.Outcome)),
			slog.Float64("roll", attempt.Roll),
		)
		if attempt.Milestone {
			d.logger.Info("milestone reached",
				slog.String("connection_id", string(player.ID)),
				slog.String("nickname", player.Nickname),
			)
		}
		return enhanceResult(attempt), d.commit(ctx, t, attempt.Player)

	case model.InboundSendChat:
		msg, err := chat.UserMessage(player.Nickname, in.Text)
		if err != nil {
			return "", err
		}
		t.chat = msg
		return resultChatted, nil
	}

	return "", fmt.Errorf("unhandled event %q", in.Kind)
}

func (d *Dispatcher) login(ctx context.Context, in model.Inbound, t *transition) (result, error) {
	player, err := d.registry.Create(ctx, in.ConnectionID, in.Text)
	if err != nil {
		return "", err
	}
	roster, err := d.registry.SnapshotAll(ctx)
	if err != nil {
		return "", err
	}
	t.player = player
	t.roster = roster
	return resultJoined, nil
}

// commit stores the post-transition player and records it for payloads
func (d *Dispatcher) commit(ctx context.Context, t *transition, next model.Player) error {
	if err := d.registry.Save(ctx, next); err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	t.player = next
	return nil
}

func (d *Dispatcher) emit(key routeKey, t *transition) {
	for _, r := range protocol[key] {
		ev := model.Event{Name: r.event, Data: r.payload(t)}
		switch r.audience {
		case toSender:
			d.emitter.Send(t.sender, ev)
		case toAll:
			d.emitter.Broadcast(ev)
		case toOthers:
			d.emitter.BroadcastExcept(t.sender, ev)
		}
	}
}
