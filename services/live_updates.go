package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/Dosada05/chess-tournament/realtime"
)

const (
	defaultStandingsDebounce = 250 * time.Millisecond
	standingsRecomputeBudget = 10 * time.Second
)

// Broadcaster is the push side of the websocket hub.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
	BroadcastAll(message realtime.WebSocketMessage)
}

type pendingRecompute struct {
	timer           *time.Timer
	scheduleChanged bool
}

// LiveUpdates forwards row changes to websocket viewers. Match changes are coalesced per
// tournament so a bulk insert of a schedule produces one standings recomputation.
type LiveUpdates struct {
	hub       Broadcaster
	standings StandingsService
	logger    *slog.Logger
	debounce  time.Duration

	mu      sync.Mutex
	pending map[string]*pendingRecompute
}

func NewLiveUpdates(hub Broadcaster, standings StandingsService, logger *slog.Logger) *LiveUpdates {
	return &LiveUpdates{
		hub:       hub,
		standings: standings,
		logger:    logger,
		debounce:  defaultStandingsDebounce,
		pending:   make(map[string]*pendingRecompute),
	}
}

func (l *LiveUpdates) HandleChange(ctx context.Context, event models.ChangeEvent) {
	if event.Type == models.ChangeResync {
		l.hub.BroadcastAll(realtime.WebSocketMessage{Type: realtime.MessageResync})
		return
	}

	if event.Table == models.TablePlayers {
		l.hub.BroadcastAll(realtime.WebSocketMessage{Type: realtime.MessageTournamentUpdated, Payload: event})
		return
	}

	tournamentID := event.TournamentID()
	if tournamentID == "" {
		l.logger.Debug("change without tournament id ignored", slog.String("table", event.Table))
		return
	}
	room := realtime.RoomForTournament(tournamentID)

	switch event.Table {
	case models.TableMatches:
		if event.Type == models.ChangeUpdate {
			l.hub.BroadcastToRoom(room, realtime.WebSocketMessage{Type: realtime.MessageMatchUpdated, Payload: event.Record, RoomID: room})
		}
		l.scheduleRecompute(tournamentID, event.Type != models.ChangeUpdate)
	default:
		l.hub.BroadcastToRoom(room, realtime.WebSocketMessage{Type: realtime.MessageTournamentUpdated, Payload: event, RoomID: room})
	}
}

func (l *LiveUpdates) scheduleRecompute(tournamentID string, scheduleChanged bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.pending[tournamentID]; ok {
		p.scheduleChanged = p.scheduleChanged || scheduleChanged
		p.timer.Reset(l.debounce)
		return
	}
	p := &pendingRecompute{scheduleChanged: scheduleChanged}
	p.timer = time.AfterFunc(l.debounce, func() { l.flush(tournamentID) })
	l.pending[tournamentID] = p
}

func (l *LiveUpdates) flush(tournamentID string) {
	l.mu.Lock()
	p, ok := l.pending[tournamentID]
	delete(l.pending, tournamentID)
	l.mu.Unlock()
	if !ok {
		return
	}

	room := realtime.RoomForTournament(tournamentID)
	if p.scheduleChanged {
		l.hub.BroadcastToRoom(room, realtime.WebSocketMessage{Type: realtime.MessageScheduleUpdated, RoomID: room})
	}

	ctx, cancel := context.WithTimeout(context.Background(), standingsRecomputeBudget)
	defer cancel()
	board, err := l.standings.ForTournament(ctx, tournamentID)
	if err != nil {
		l.logger.Warn("standings recompute failed", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	l.hub.BroadcastToRoom(room, realtime.WebSocketMessage{Type: realtime.MessageStandingsUpdated, Payload: board, RoomID: room})
}
