// Storyteller Spectator Game
//
// A table of bots plays the storyteller card game: each turn one seat tells a
// clue about a secret card, everyone else slips in a decoy from their hand,
// and the rest vote on which card was the storyteller's. Anyone with the link
// can watch the table as it plays.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - First connection to a game becomes moderator and drives the game
// - Moderator can play one turn at a time or switch on autoplay
// - Every phase change, fallback decision, and turn result is streamed live
// - Late joiners receive the current scores and the last turn played
// - Players identified by cookie (playerID)
// - Games auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - Optional history of every turn, backed by sqlite
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/storyteller/catalog"
	"github.com/Seednode/storyteller/dixit"
	"github.com/Seednode/storyteller/history"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients
type ClientMessage struct {
	Type    string `json:"type"`              // "next_round", "autoplay"
	Enabled *bool  `json:"enabled,omitempty"` // autoplay
}

// ScoreLine is one seat's score, or its change in score.
type ScoreLine struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// SessionInfoMessage is sent immediately on connect so the client knows
// who is at the table and whether it may drive the game.
type SessionInfoMessage struct {
	Type        string   `json:"type"` // "session_info"
	GameID      string   `json:"game_id"`
	IsModerator bool     `json:"is_moderator"`
	Players     []string `json:"players"`
	HandSize    int      `json:"hand_size"`
	Threshold   int      `json:"threshold"`
	Seed        uint64   `json:"seed,string"`
	History     bool     `json:"history"`
}

// GameStateMessage carries the counters and running scores.
type GameStateMessage struct {
	Type        string      `json:"type"` // "game_state"
	Turn        int         `json:"turn"`
	Round       int         `json:"round"`
	Storyteller string      `json:"storyteller"`
	Phase       dixit.Phase `json:"phase"`
	DeckSize    int         `json:"deck_size"`
	DiscardSize int         `json:"discard_size"`
	Scores      []ScoreLine `json:"scores"`
	Running     bool        `json:"running"`
	Autoplay    bool        `json:"autoplay"`
	Over        bool        `json:"over"`
}

type PhaseMessage struct {
	Type  string      `json:"type"` // "phase"
	Turn  int         `json:"turn"`
	Phase dixit.Phase `json:"phase"`
}

// TableCard is one revealed card with the seats that voted for it.
type TableCard struct {
	Card   int      `json:"card"`
	Owner  string   `json:"owner"`
	Voters []string `json:"voters,omitempty"`
}

// RoundResultMessage reveals a finished turn.
type RoundResultMessage struct {
	Type            string      `json:"type"` // "round_result"
	Turn            int         `json:"turn"`
	Round           int         `json:"round"`
	Storyteller     string      `json:"storyteller"`
	StorytellerCard int         `json:"storyteller_card"`
	Clue            string      `json:"clue"`
	Table           []TableCard `json:"table"`
	Deltas          []ScoreLine `json:"deltas"`
}

// IncidentMessage reports a bot decision that was replaced by a fallback.
type IncidentMessage struct {
	Type     string      `json:"type"` // "incident"
	Turn     int         `json:"turn"`
	Phase    dixit.Phase `json:"phase"`
	Player   string      `json:"player"`
	Error    string      `json:"error"`
	Fallback string      `json:"fallback"`
}

type GameOverMessage struct {
	Type      string      `json:"type"` // "game_over"
	Standings []ScoreLine `json:"standings"`
	Winners   []string    `json:"winners"`
}

// SimpleMessage is for generic notifications ("not_moderator", "error", etc.)
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type modCommand struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id      string
	cfg     *Config
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	mods     chan modCommand
	quit     chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	plays  sync.WaitGroup

	game     *dixit.Game
	recorder *history.Recorder
	release  func()
	players  []string
	seed     uint64

	mu sync.RWMutex

	createdAt         time.Time
	lastActive        time.Time
	moderatorPlayerID string // cookie/playerID of moderator

	state     GameStateMessage
	lastRound *RoundResultMessage
	final     *GameOverMessage
	running   bool
	autoplay  bool
}

func newHub(cfg *Config, gameID string, cards *catalog.Catalog, store *history.Store) (*Hub, error) {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()

	h := &Hub{
		id:         gameID,
		cfg:        cfg,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		mods:       make(chan modCommand),
		quit:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		players:    cfg.players,
		seed:       gameSeed(cfg),
		createdAt:  now,
		lastActive: now,
	}

	game, rec, release, err := newGame(ctx, cfg, cards, store, gameID, h.seed, hubObserver{h})
	if err != nil {
		cancel()
		return nil, err
	}
	h.game = game
	h.recorder = rec
	h.release = release

	s := game.State()
	h.state = GameStateMessage{
		Type:        "game_state",
		Round:       s.Round,
		Storyteller: h.players[s.Storyteller],
		Phase:       s.Phase,
		DeckSize:    s.DeckSize,
		DiscardSize: s.DiscardSize,
		Scores:      make([]ScoreLine, len(h.players)),
	}
	for i, name := range h.players {
		h.state.Scores[i] = ScoreLine{Seat: i, Name: name}
	}

	return h, nil
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()

			if h.ctx.Err() != nil {
				close(c.send)
				h.mu.Unlock()

				continue
			}

			h.lastActive = time.Now()

			// First connection becomes moderator
			if h.moderatorPlayerID == "" {
				h.moderatorPlayerID = c.playerID
			}

			h.clients[c] = true

			c.send <- SessionInfoMessage{
				Type:        "session_info",
				GameID:      h.id,
				IsModerator: h.moderatorPlayerID == c.playerID,
				Players:     h.players,
				HandSize:    h.cfg.handSize,
				Threshold:   h.cfg.threshold,
				Seed:        h.seed,
				History:     h.recorder != nil,
			}
			c.send <- h.snapshotLocked()
			if h.lastRound != nil {
				c.send <- *h.lastRound
			}
			if h.final != nil {
				c.send <- *h.final
			}

			h.mu.Unlock()

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case cmd := <-h.mods:
			h.handleModCommand(cmd)

		case <-h.quit:
			return
		}
	}
}

// sendLocked queues msg for one client, dropping the client if it has
// fallen too far behind.
func (h *Hub) sendLocked(c *Client, msg any) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

// snapshotLocked copies the game state so it can be queued while the
// scores keep changing.
func (h *Hub) snapshotLocked() GameStateMessage {
	s := h.state
	s.Scores = slices.Clone(h.state.Scores)
	return s
}

func (h *Hub) broadcastLocked(msg any) {
	for client := range h.clients {
		h.sendLocked(client, msg)
	}
}

// handleModCommand processes moderator commands: play the next turn and
// toggle autoplay.
func (h *Hub) handleModCommand(cmd modCommand) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	// Only moderator may issue these commands
	if h.moderatorPlayerID == "" || cmd.client.playerID != h.moderatorPlayerID {
		h.sendLocked(cmd.client, SimpleMessage{
			Type:    "not_moderator",
			Message: "Only the moderator can control the game.",
		})
		return
	}

	switch cmd.msg.Type {
	case "next_round":
		h.startLocked()

	case "autoplay":
		h.autoplay = cmd.msg.Enabled != nil && *cmd.msg.Enabled
		h.state.Autoplay = h.autoplay
		if h.autoplay {
			h.startLocked()
		}
		h.broadcastLocked(h.snapshotLocked())
	}
}

// startLocked launches a play loop unless one is already running or the
// game is over.
func (h *Hub) startLocked() {
	if h.running || h.final != nil || h.ctx.Err() != nil {
		return
	}

	h.running = true
	h.state.Running = true
	h.broadcastLocked(h.snapshotLocked())

	h.plays.Add(1)
	go h.play()
}

// play advances turns until autoplay is off, the game ends, or the hub is
// closed. It is the only goroutine touching h.game while it runs.
func (h *Hub) play() {
	defer h.plays.Done()

	for {
		_, err := h.game.AdvanceRound(h.ctx)
		if err == nil && h.game.IsGameOver() {
			_, err = h.game.AdvanceRound(h.ctx)
		}

		h.mu.Lock()
		h.lastActive = time.Now()

		if err != nil && !errors.Is(err, dixit.ErrGameOver) && h.ctx.Err() == nil {
			logf(h.cfg, "ERROR: Game %s stopped: %v", h.id, err)
			h.broadcastLocked(SimpleMessage{Type: "error", Message: err.Error()})
		}

		if err != nil || !h.autoplay || h.final != nil {
			h.running = false
			h.state.Running = false
			h.broadcastLocked(h.snapshotLocked())
			h.mu.Unlock()

			return
		}
		h.mu.Unlock()

		t := time.NewTimer(h.cfg.turnDelay)
		select {
		case <-t.C:
		case <-h.ctx.Done():
			t.Stop()

			h.mu.Lock()
			h.running = false
			h.state.Running = false
			h.mu.Unlock()

			return
		}
	}
}

// hubObserver streams engine notifications to the hub's clients.
type hubObserver struct {
	h *Hub
}

func (o hubObserver) OnPhase(s dixit.State) {
	h := o.h
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state.Turn = s.Turn
	h.state.Round = s.Round
	h.state.Storyteller = h.players[s.Storyteller]
	h.state.Phase = s.Phase
	h.state.DeckSize = s.DeckSize
	h.state.DiscardSize = s.DiscardSize

	h.broadcastLocked(PhaseMessage{Type: "phase", Turn: s.Turn, Phase: s.Phase})
}

func (o hubObserver) OnIncident(i dixit.Incident) {
	h := o.h
	h.mu.Lock()
	defer h.mu.Unlock()

	h.broadcastLocked(IncidentMessage{
		Type:     "incident",
		Turn:     i.Turn,
		Phase:    i.Phase,
		Player:   i.Player,
		Error:    i.Err.Error(),
		Fallback: i.Fallback,
	})
}

func (o hubObserver) OnRound(sum dixit.RoundSummary) {
	h := o.h
	h.mu.Lock()
	defer h.mu.Unlock()

	voters := make(map[int][]string, len(sum.Table))
	for _, v := range sum.Votes {
		voters[v.Card.Key] = append(voters[v.Card.Key], h.players[v.Seat])
	}

	msg := RoundResultMessage{
		Type:            "round_result",
		Turn:            sum.Turn,
		Round:           sum.Round,
		Storyteller:     sum.StorytellerName,
		StorytellerCard: sum.StorytellerCard.Key,
		Clue:            sum.Clue,
		Table:           make([]TableCard, len(sum.Table)),
		Deltas:          make([]ScoreLine, len(sum.Deltas)),
	}
	for i, e := range sum.Table {
		msg.Table[i] = TableCard{Card: e.Card.Key, Owner: h.players[e.Seat], Voters: voters[e.Card.Key]}
	}
	for i, d := range sum.Deltas {
		msg.Deltas[i] = ScoreLine{Seat: i, Name: h.players[i], Score: d}
		h.state.Scores[i].Score += d
	}
	h.lastRound = &msg

	next := (sum.Storyteller + 1) % len(h.players)
	h.state.Storyteller = h.players[next]
	if next == 0 {
		h.state.Round = sum.Round + 1
	}

	h.broadcastLocked(msg)
	h.broadcastLocked(h.snapshotLocked())
}

func (o hubObserver) OnGameOver(standings []dixit.Standing) {
	h := o.h
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := GameOverMessage{
		Type:      "game_over",
		Standings: make([]ScoreLine, len(standings)),
	}
	for i, s := range standings {
		msg.Standings[i] = ScoreLine{Seat: s.Seat, Name: s.Name, Score: s.Score}
		if s.Score == standings[0].Score {
			msg.Winners = append(msg.Winners, s.Name)
		}
	}
	h.final = &msg

	h.state.Phase = dixit.PhaseGameOver
	h.state.Over = true
	h.autoplay = false
	h.state.Autoplay = false

	logf(h.cfg, "GAMES: Game %s won by %s", h.id, strings.Join(msg.Winners, ", "))

	h.broadcastLocked(msg)
	h.broadcastLocked(h.snapshotLocked())
}

// closeAll stops the game and disconnects all clients of this hub (used by
// reaper). It returns once any running turn has finished and agent resources
// are released.
func (h *Hub) closeAll() {
	h.once.Do(func() {
		h.cancel()
		close(h.quit)

		h.mu.Lock()
		for c := range h.clients {
			close(c.send)
			_ = c.conn.Close()
			delete(h.clients, c)
		}
		h.mu.Unlock()

		h.plays.Wait()
		h.release()
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "storyteller_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated table.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration

	closing sync.WaitGroup
	done    chan struct{}

	cfg   *Config
	cards *catalog.Catalog
	store *history.Store
}

func newGameManager(ctx context.Context, cfg *Config, cards *catalog.Catalog, store *history.Store) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: cfg.sessionTimeout,
		done:        make(chan struct{}),
		cfg:         cfg,
		cards:       cards,
		store:       store,
	}
	go gm.reaperLoop(ctx)
	return gm
}

func (gm *GameManager) getHub(gameID string) (*Hub, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub, nil
	}

	hub, err := newHub(gm.cfg, gameID, gm.cards, gm.store)
	if err != nil {
		return nil, err
	}
	gm.hubs[gameID] = hub
	go hub.run()

	logf(gm.cfg, "GAMES: Seated %d players at %s (seed %d)", len(hub.players), gameID, hub.seed)

	return hub, nil
}

// lookup returns an existing hub without creating one.
func (gm *GameManager) lookup(gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	return gm.hubs[gameID]
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reap removes hubs that have been idle since before cutoff.
func (gm *GameManager) reap(cutoff time.Time) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		hub.mu.RLock()
		last := hub.lastActive
		hub.mu.RUnlock()

		if last.Before(cutoff) {
			delete(gm.hubs, id)
			logf(gm.cfg, "GAMES: Reaped idle game %s", id)

			gm.closing.Add(1)
			go func() {
				defer gm.closing.Done()
				hub.closeAll()
			}()
		}
	}
}

// reaperLoop periodically reaps idle hubs, and closes every hub once ctx
// is done.
func (gm *GameManager) reaperLoop(ctx context.Context) {
	defer close(gm.done)

	var tick <-chan time.Time
	if gm.idleTimeout > 0 {
		ticker := time.NewTicker(gm.idleTimeout / 2)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-tick:
			gm.reap(time.Now().Add(-gm.idleTimeout))
		case <-ctx.Done():
			gm.reap(time.Now().Add(time.Hour))
			gm.closing.Wait()
			return
		}
	}
}

// Wait blocks until the manager's context is done and every game has
// finished its last turn.
func (gm *GameManager) Wait() {
	<-gm.done
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		hub, err := gm.getHub(gameID)
		if err != nil {
			logf(cfg, "ERROR: Unable to seat game %s: %v", gameID, err)
			http.Error(w, "unable to start game", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 64),
			playerID: playerID,
		}

		select {
		case hub.register <- client:
		case <-hub.quit:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.quit:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "next_round", "autoplay":
			select {
			case h.mods <- modCommand{client: c, msg: msg}:
			case <-h.quit:
				return
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
		path := strings.TrimSuffix(r.URL.Path, "/qr")

		url := scheme + "://" + r.Host + path

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

// HistoryResponse is the stored record of one game.
type HistoryResponse struct {
	Game   history.Game    `json:"game"`
	Rounds []history.Round `json:"rounds"`
}

func serveHistory(cfg *Config, gm *GameManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if gm.store == nil {
			http.Error(w, "history is not enabled", http.StatusNotFound)
			return
		}

		hub := gm.lookup(ps.ByName("gameid"))
		if hub == nil || hub.recorder == nil {
			http.NotFound(w, r)
			return
		}

		game, err := gm.store.Game(r.Context(), hub.recorder.ID())
		if err != nil {
			http.Error(w, "unable to read history", http.StatusInternalServerError)
			errs <- err
			return
		}

		rounds, err := gm.store.Rounds(r.Context(), hub.recorder.ID())
		if err != nil {
			http.Error(w, "unable to read history", http.StatusInternalServerError)
			errs <- err
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(HistoryResponse{Game: game, Rounds: rounds}); err != nil {
			errs <- err
		}
	}
}

func getIndexHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile("assets/storyteller/index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		cacheFor(w, time.Hour)
		securityHeaders(cfg, w)
		w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self' ws: wss:")

		_ = getOrSetPlayerID(w, r)

		if _, err := w.Write(data); err != nil {
			errs <- err
		}
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerStorytellerGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
//   - $path/:gameid/history  → stored turns of that game as JSON
func registerStorytellerGame(ctx context.Context, cfg *Config, path string, mux *httprouter.Router, cards *catalog.Catalog, store *history.Store, errs chan<- error) *GameManager {
	gm := newGameManager(ctx, cfg, cards, store)

	path = cfg.prefix + path

	mux.GET(path, redirectNewGame(cfg, path, gm))
	mux.GET(path+"/:gameid", getIndexHandler(cfg, errs))
	mux.GET(path+"/:gameid/ws", serveWSForManager(cfg, gm))
	mux.GET(path+"/:gameid/qr", qrHandler(cfg, errs))
	mux.GET(path+"/:gameid/history", serveHistory(cfg, gm, errs))

	return gm
}
