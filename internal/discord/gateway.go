package discord

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"badge-radar/internal/logging"
)

const gatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// opcodes do gateway
const (
	opDispatch            = 0
	opHeartbeat           = 1
	opIdentify            = 2
	opHeartbeatACK        = 11
	opHello               = 10
	opRequestGuildMembers = 8
)

type GatewayMessage struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	T  string          `json:"t,omitempty"`
	S  int64           `json:"s,omitempty"`
}

type helloData struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

// GuildMeta é o que o export precisa de cada guild do READY: nome, vanity e
// canais de texto (para tentar criar convite).
type GuildMeta struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	VanityURLCode string        `json:"vanity_url_code"`
	MemberCount   int           `json:"member_count"`
	Channels      []ChannelMeta `json:"channels"`
}

type ChannelMeta struct {
	ID   string `json:"id"`
	Type int    `json:"type"` // 0=text
	Name string `json:"name"`
}

// MemberRecord é um membro recebido em GUILD_MEMBERS_CHUNK.
type MemberRecord struct {
	ID       string
	Username string
	Bot      bool
}

// GatewayClient mantém uma conexão de gateway com credencial de usuário,
// usada só para enumerar membros de um servidor antes do scan.
type GatewayClient struct {
	token  string
	logger *slog.Logger

	conn              *websocket.Conn
	heartbeatInterval time.Duration
	userID            string
	guilds            []GuildMeta

	writeMu sync.Mutex // serializa writes (heartbeat vs op8)
	mu      sync.RWMutex
	lastSeq int64
	stop    chan struct{}
}

func NewGatewayClient(logger *slog.Logger, token string) *GatewayClient {
	return &GatewayClient{
		token:  token,
		logger: logger,
		stop:   make(chan struct{}),
	}
}

// Connect faz o handshake completo: HELLO, IDENTIFY com capabilities de
// cliente real (user token não usa intents) e READY. O heartbeat começa em
// background depois do READY.
func (gc *GatewayClient) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 30 * time.Second,
	}

	headers := http.Header{}
	headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	headers.Set("Origin", "https://discord.com")

	conn, _, err := dialer.DialContext(ctx, gatewayURL, headers)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	gc.conn = conn

	var helloMsg GatewayMessage
	if err := conn.ReadJSON(&helloMsg); err != nil {
		return fmt.Errorf("failed to read HELLO: %w", err)
	}
	if helloMsg.Op != opHello {
		return fmt.Errorf("expected HELLO opcode, got %d", helloMsg.Op)
	}

	var hello helloData
	if err := json.Unmarshal(helloMsg.D, &hello); err != nil {
		return fmt.Errorf("failed to parse HELLO data: %w", err)
	}
	gc.heartbeatInterval = time.Duration(hello.HeartbeatInterval) * time.Millisecond

	identify := map[string]interface{}{
		"op": opIdentify,
		"d": map[string]interface{}{
			"token":        gc.token,
			"capabilities": 16381,
			"properties": map[string]interface{}{
				"os":                 "Windows",
				"browser":            "Chrome",
				"device":             "",
				"system_locale":      "en-US",
				"browser_user_agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"browser_version":    "120.0.0.0",
				"os_version":         "10",
				"release_channel":    "stable",
			},
			"presence": map[string]interface{}{
				"status":     "online",
				"since":      0,
				"activities": []interface{}{},
				"afk":        false,
			},
			"compress": false,
		},
	}
	if err := gc.writeJSON(identify); err != nil {
		return fmt.Errorf("failed to send IDENTIFY: %w", err)
	}

	var readyMsg GatewayMessage
	if err := conn.ReadJSON(&readyMsg); err != nil {
		return fmt.Errorf("failed to read READY: %w", err)
	}
	if readyMsg.Op != opDispatch || readyMsg.T != "READY" {
		return fmt.Errorf("expected READY event, got op=%d t=%s", readyMsg.Op, readyMsg.T)
	}

	var ready struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Guilds []struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			VanityURLCode string `json:"vanity_url_code"`
			MemberCount   int    `json:"member_count"`
			Channels      []struct {
				ID   string `json:"id"`
				Type int    `json:"type"`
				Name string `json:"name"`
			} `json:"channels"`
		} `json:"guilds"`
	}
	if err := json.Unmarshal(readyMsg.D, &ready); err != nil {
		return fmt.Errorf("failed to parse READY data: %w", err)
	}

	gc.userID = ready.User.ID
	gc.guilds = make([]GuildMeta, 0, len(ready.Guilds))
	for _, g := range ready.Guilds {
		meta := GuildMeta{
			ID:            g.ID,
			Name:          g.Name,
			VanityURLCode: g.VanityURLCode,
			MemberCount:   g.MemberCount,
		}
		for _, ch := range g.Channels {
			meta.Channels = append(meta.Channels, ChannelMeta{ID: ch.ID, Type: ch.Type, Name: ch.Name})
		}
		gc.guilds = append(gc.guilds, meta)
	}

	go gc.heartbeatLoop()

	gc.logger.Info("gateway_connected",
		"token", logging.MaskToken(gc.token),
		"user_id", gc.userID,
		"guilds_count", len(gc.guilds),
	)

	return nil
}

func (gc *GatewayClient) Close() error {
	select {
	case <-gc.stop:
	default:
		close(gc.stop)
	}
	if gc.conn != nil {
		return gc.conn.Close()
	}
	return nil
}

// Guild devolve os metadados de uma guild vinda do READY.
func (gc *GatewayClient) Guild(guildID string) (GuildMeta, bool) {
	for _, g := range gc.guilds {
		if g.ID == guildID {
			return g, true
		}
	}
	return GuildMeta{}, false
}

func (gc *GatewayClient) heartbeatLoop() {
	if gc.heartbeatInterval == 0 {
		return
	}
	ticker := time.NewTicker(gc.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gc.sendHeartbeat()
		case <-gc.stop:
			return
		}
	}
}

func (gc *GatewayClient) sendHeartbeat() {
	gc.mu.RLock()
	seq := gc.lastSeq
	gc.mu.RUnlock()

	var seqValue interface{}
	if seq > 0 {
		seqValue = seq
	}
	if err := gc.writeJSON(map[string]interface{}{"op": opHeartbeat, "d": seqValue}); err != nil {
		gc.logger.Debug("heartbeat_failed", "error", err)
	}
}

func (gc *GatewayClient) writeJSON(v interface{}) error {
	gc.writeMu.Lock()
	defer gc.writeMu.Unlock()
	return gc.conn.WriteJSON(v)
}

// memberQueries cobre a lista de membros por busca de prefixo: user tokens
// não recebem a lista inteira, então varremos o alfabeto como a busca do
// cliente faz.
var memberQueries = []string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"_", "-", ".",
}

// CollectMembers enumera os membros de uma guild via op 8 com queries
// alfabéticas, deduplicando por ID. Termina quando todas as queries foram
// respondidas ou quando a conexão fica quieta por idleTimeout.
func (gc *GatewayClient) CollectMembers(ctx context.Context, guildID string, queryDelay time.Duration) ([]MemberRecord, error) {
	if queryDelay <= 0 {
		queryDelay = 250 * time.Millisecond
	}

	nonceBytes := make([]byte, 16)
	if _, err := rand.Read(nonceBytes); err != nil {
		nonceBytes = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
	}
	nonce := hex.EncodeToString(nonceBytes)

	gc.logger.Info("starting_member_collection",
		"guild_id", guildID,
		"total_queries", len(memberQueries),
		"nonce", nonce,
	)

	sendErr := make(chan error, 1)
	go func() {
		for _, query := range memberQueries {
			select {
			case <-ctx.Done():
				sendErr <- ctx.Err()
				return
			default:
			}

			payload := map[string]interface{}{
				"op": opRequestGuildMembers,
				"d": map[string]interface{}{
					"guild_id": guildID,
					"query":    query,
					"limit":    100,
					"nonce":    nonce,
				},
			}
			if err := gc.writeJSON(payload); err != nil {
				sendErr <- fmt.Errorf("failed to send member query %q: %w", query, err)
				return
			}
			time.Sleep(queryDelay)
		}
		sendErr <- nil
	}()

	const idleTimeout = 10 * time.Second

	seen := make(map[string]bool)
	members := make([]MemberRecord, 0, 256)
	queriesDone := false
	chunksReceived := 0

	for {
		select {
		case <-ctx.Done():
			return members, ctx.Err()
		case err := <-sendErr:
			if err != nil {
				return members, err
			}
			queriesDone = true
		default:
		}

		_ = gc.conn.SetReadDeadline(time.Now().Add(idleTimeout))
		var msg GatewayMessage
		if err := gc.conn.ReadJSON(&msg); err != nil {
			if queriesDone {
				// quieto depois de todas as queries: coleta encerrada
				_ = gc.conn.SetReadDeadline(time.Time{})
				break
			}
			return members, fmt.Errorf("gateway read failed: %w", err)
		}

		if msg.S > 0 {
			gc.mu.Lock()
			gc.lastSeq = msg.S
			gc.mu.Unlock()
		}

		switch msg.Op {
		case opHeartbeat:
			gc.sendHeartbeat()
			continue
		case opHeartbeatACK:
			continue
		case opDispatch:
			// segue
		default:
			continue
		}

		if msg.T != "GUILD_MEMBERS_CHUNK" {
			continue
		}

		var chunk struct {
			GuildID    string `json:"guild_id"`
			Nonce      string `json:"nonce"`
			ChunkIndex int    `json:"chunk_index"`
			ChunkCount int    `json:"chunk_count"`
			Members    []struct {
				User struct {
					ID       string `json:"id"`
					Username string `json:"username"`
					Bot      bool   `json:"bot"`
				} `json:"user"`
			} `json:"members"`
		}
		if err := json.Unmarshal(msg.D, &chunk); err != nil {
			gc.logger.Warn("failed_to_parse_member_chunk", "error", err)
			continue
		}
		if chunk.GuildID != guildID || (chunk.Nonce != "" && chunk.Nonce != nonce) {
			continue
		}

		chunksReceived++
		duplicates := 0
		for _, m := range chunk.Members {
			if m.User.ID == "" || seen[m.User.ID] {
				duplicates++
				continue
			}
			seen[m.User.ID] = true
			members = append(members, MemberRecord{
				ID:       m.User.ID,
				Username: m.User.Username,
				Bot:      m.User.Bot,
			})
		}

		gc.logger.Debug("member_chunk_received",
			"guild_id", guildID,
			"chunk", chunk.ChunkIndex,
			"members", len(chunk.Members),
			"duplicates", duplicates,
			"total_unique", len(members),
		)
	}

	gc.logger.Info("member_collection_completed",
		"guild_id", guildID,
		"chunks", chunksReceived,
		"unique_members", len(members),
	)

	return members, nil
}
