package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/lazharichir/marketmaker/domain"
	"github.com/lazharichir/marketmaker/domain/commands"
	"github.com/lazharichir/marketmaker/server/connection"
	"github.com/lazharichir/marketmaker/server/events"
	"github.com/lazharichir/marketmaker/store"
	"github.com/sanity-io/litter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/lazharichir/marketmaker/server/handlers"

// Persister accepts snapshots for background storage
type Persister interface {
	Enqueue(snap store.Snapshot) bool
}

// Config tunes the router
type Config struct {
	// HandDelay is the pause between settlement and the next deal
	HandDelay time.Duration
	// StateHistory is how many archived hands history-bearing pushes carry
	StateHistory int
}

// CommandRouter routes incoming table messages to the appropriate handler.
// Every message for a table is handled while holding that table's lock.
type CommandRouter struct {
	lobby      *domain.Lobby
	connMgr    *connection.Manager
	dispatcher *events.Dispatcher
	persister  Persister
	logger     *slog.Logger
	tracer     trace.Tracer
	cfg        Config

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// NewCommandRouter creates a new command router
func NewCommandRouter(
	lobby *domain.Lobby,
	connMgr *connection.Manager,
	dispatcher *events.Dispatcher,
	persister Persister,
	logger *slog.Logger,
	cfg Config,
) *CommandRouter {
	if cfg.StateHistory <= 0 {
		cfg.StateHistory = domain.StateHistoryHands
	}
	return &CommandRouter{
		lobby:      lobby,
		connMgr:    connMgr,
		dispatcher: dispatcher,
		persister:  persister,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
		cfg:        cfg,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Open registers a new session. The table is created on first reference. A
// seated identity is treated as a reconnection; anyone else receives a
// snapshot without private cards.
func (r *CommandRouter) Open(ctx context.Context, sess *connection.Session) {
	table, created := r.lobby.GetOrCreateTable(sess.TableID())
	if created {
		r.logger.Info("table created", "table", table.ID)
	}
	r.connMgr.Connect(sess)

	table.Lock()
	defer table.Unlock()

	playerID := sess.PlayerID()
	if !table.Reconnect(playerID) {
		r.dispatcher.SendState(playerID, table, 0)
		return
	}

	r.logger.Info("player reconnected", "table", table.ID, "player", playerID)
	r.dispatcher.SendState(playerID, table, 0)
	r.dispatcher.BroadcastState(table, 0)
	r.persist(table)
}

// Close unregisters a session. The player keeps their seat and only their
// last-seen time is stamped. A session already dropped after a failed send
// still stamps; one replaced by a newer connection does not.
func (r *CommandRouter) Close(sess *connection.Session) {
	r.connMgr.Disconnect(sess)
	if r.connMgr.Superseded(sess) {
		return
	}
	table, err := r.lobby.GetTable(sess.TableID())
	if err != nil {
		return
	}

	table.Lock()
	defer table.Unlock()

	if table.MarkDisconnected(sess.PlayerID()) {
		r.logger.Info("player disconnected", "table", table.ID, "player", sess.PlayerID())
		r.persist(table)
	}
}

// HandleCommand processes an incoming message from a session
func (r *CommandRouter) HandleCommand(ctx context.Context, sess *connection.Session, message []byte) {
	cmd, err := commands.Decode(message)
	if err != nil {
		r.logger.Info("rejected message", "table", sess.TableID(), "player", sess.PlayerID(), "error", err)
		r.dispatcher.SendError(sess.PlayerID(), err)
		return
	}

	table, err := r.lobby.GetTable(sess.TableID())
	if err != nil {
		r.logger.Error("message for unknown table", "table", sess.TableID(), "error", err)
		return
	}

	ctx, span := r.tracer.Start(ctx, "table."+cmd.Name(), trace.WithAttributes(
		attribute.String("table.id", table.ID),
		attribute.String("player.id", sess.PlayerID()),
	))
	defer span.End()

	table.Lock()
	defer table.Unlock()

	if err := r.route(ctx, sess, table, cmd); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Info("rejected action",
			"table", table.ID,
			"player", sess.PlayerID(),
			"action", cmd.Name(),
			"error", err,
		)
		r.dispatcher.SendError(sess.PlayerID(), err)
		return
	}

	if _, ok := cmd.(commands.Ping); !ok {
		r.persist(table)
	}
	r.dispatcher.SendState(sess.PlayerID(), table, 0)
}

func (r *CommandRouter) route(ctx context.Context, sess *connection.Session, table *domain.Table, cmd commands.Command) error {
	switch c := cmd.(type) {
	case commands.Join:
		return r.handleJoin(sess, table, c)
	case commands.Quote:
		return r.handleQuote(sess, table, c)
	case commands.Trade:
		return r.handleTrade(ctx, sess, table, c)
	case commands.Leave:
		return r.handleLeave(sess, table)
	case commands.Away:
		return r.handleAway(sess, table)
	case commands.JoinBack:
		return r.handleJoinBack(sess, table)
	case commands.Ping:
		r.dispatcher.SendPong(sess.PlayerID())
		return nil
	}
	return commands.ErrUnknownAction
}

func (r *CommandRouter) handleJoin(sess *connection.Session, table *domain.Table, cmd commands.Join) error {
	buyIn, ok := cmd.BuyInAmount(domain.DefaultBuyIn)
	if !ok {
		// out of range, so Join reports it after the name checks
		buyIn = 0
	}

	player, err := table.Join(sess.PlayerID(), cmd.PlayerName, buyIn)
	if err != nil {
		return err
	}
	r.connMgr.Rekey(sess, player.ID)
	r.dispatcher.SendJoinSuccess(table, player)
	r.logger.Info("player joined", "table", table.ID, "player", player.ID, "name", player.Name, "seat", player.Seat)

	if table.ShouldAutoStart() {
		table.StartNewHand()
		r.logger.Info("hand auto-started", "table", table.ID, "hand", table.HandNumber, "players", table.ActivePlayerCount())
	}

	r.dispatcher.BroadcastState(table, 0)
	return nil
}

func (r *CommandRouter) handleQuote(sess *connection.Session, table *domain.Table, cmd commands.Quote) error {
	if _, err := table.PostQuote(sess.PlayerID(), cmd.Bid, cmd.Ask); err != nil {
		return err
	}
	r.dispatcher.BroadcastState(table, 0)
	return nil
}

func (r *CommandRouter) handleTrade(ctx context.Context, sess *connection.Session, table *domain.Table, cmd commands.Trade) error {
	side, err := domain.ParseSide(cmd.Side)
	if err != nil {
		return err
	}
	if _, err := table.Trade(sess.PlayerID(), side, cmd.Price); err != nil {
		return err
	}
	r.dispatcher.BroadcastState(table, 0)

	progress := table.ProgressRound()
	if !progress.Advanced {
		return nil
	}

	history := 0
	if progress.Settled {
		r.logger.Info("hand settled", "table", table.ID, "hand", table.HandNumber, "total", table.EvaluateTotal())
		r.dispatcher.BroadcastState(table, r.cfg.StateHistory)
		r.persist(table)

		// the table stays locked for the whole pause
		r.sleep(ctx, r.cfg.HandDelay)

		departed := table.FinishHand()
		for _, p := range departed {
			r.logger.Info("player left after hand", "table", table.ID, "player", p.ID)
		}
		if r.logger.Enabled(ctx, slog.LevelDebug) {
			if recent := table.RecentHistory(1); len(recent) == 1 {
				r.logger.Debug("hand archived", "table", table.ID, "record", litter.Sdump(recent[0]))
			}
		}
		history = r.cfg.StateHistory
	}

	r.dispatcher.BroadcastState(table, history)
	return nil
}

func (r *CommandRouter) handleLeave(sess *connection.Session, table *domain.Table) error {
	deferred, err := table.Leave(sess.PlayerID())
	if err != nil {
		return err
	}
	r.logger.Info("player leaving", "table", table.ID, "player", sess.PlayerID(), "deferred", deferred)
	r.dispatcher.BroadcastState(table, 0)
	return nil
}

func (r *CommandRouter) handleAway(sess *connection.Session, table *domain.Table) error {
	if _, err := table.Away(sess.PlayerID()); err != nil {
		return err
	}
	r.dispatcher.BroadcastState(table, 0)
	return nil
}

func (r *CommandRouter) handleJoinBack(sess *connection.Session, table *domain.Table) error {
	changed, err := table.JoinBack(sess.PlayerID())
	if err != nil {
		return err
	}
	if changed {
		r.dispatcher.BroadcastState(table, 0)
	}
	return nil
}

// persist queues a snapshot; the caller must hold the table lock
func (r *CommandRouter) persist(table *domain.Table) {
	if r.persister == nil {
		return
	}
	snap, err := store.TakeSnapshot(table, r.now())
	if err != nil {
		r.logger.Error("snapshot table", "table", table.ID, "error", err)
		return
	}
	r.persister.Enqueue(snap)
}
