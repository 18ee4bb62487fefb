package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"classquest_go/config"
	"classquest_go/database"
	"classquest_go/models"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Queue item structure stored in Redis.
// Kept minimal to reduce payload size; one item may fan out to many users.
// If Redis is down the service falls back to a direct DB insert.
type queuedNotification struct {
	UserIDs   []uint    `json:"user_ids"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Channels  []string  `json:"channels,omitempty"`
	Data      any       `json:"data,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const redisListKey = "notifications:queue"

// Service exposes notification creation with optional Redis queueing.
type Service struct {
	db       *gorm.DB
	redis    *redis.Client
	useRedis bool
	wsHub    WSHub
}

// WSHub interface for WebSocket broadcasting
type WSHub interface {
	BroadcastToUser(userID uint, message interface{})
}

// defaultHub lets services created in different parts of the app (e.g. the
// report scheduler) broadcast over the same WebSocket hub without manual
// wiring per instance.
var defaultHub WSHub

// SetDefaultWSHub sets the package-level default WebSocket hub used by new Service instances.
func SetDefaultWSHub(h WSHub) {
	defaultHub = h
}

// LinePushFunc delivers a message to a linked LINE account.
type LinePushFunc func(lineID, message string) error

var linePusher LinePushFunc

// SetLinePusher configures the function used for the "line" channel. Set from
// main to avoid an import cycle with the messaging service.
func SetLinePusher(fn LinePushFunc) {
	linePusher = fn
}

func NewService() *Service {
	return &Service{
		db:       database.GetDB(),
		redis:    database.GetRedisClient(),
		useRedis: config.AppConfig != nil && config.AppConfig.UseRedisNotifications && database.GetRedisClient() != nil,
		wsHub:    defaultHub,
	}
}

// SetWebSocketHub sets the WebSocket hub for real-time notifications
func (s *Service) SetWebSocketHub(hub WSHub) {
	s.wsHub = hub
}

// normalizeChannels keeps only allowed values and ensures a default channel
func normalizeChannels(in []string) []string {
	if len(in) == 0 {
		return []string{"normal"}
	}
	allowed := map[string]struct{}{"normal": {}, "popup": {}, "line": {}}
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, ch := range in {
		if _, ok := allowed[ch]; ok {
			if _, dup := seen[ch]; !dup {
				out = append(out, ch)
				seen[ch] = struct{}{}
			}
		}
	}
	if len(out) == 0 {
		out = []string{"normal"}
	}
	return out
}

// Queued builds a minimal notification payload.
func Queued(title, message, typ string, channels ...string) queuedNotification {
	ch := normalizeChannels(channels)
	return queuedNotification{Title: title, Message: message, Type: typ, Channels: ch}
}

// QueuedWithData attaches a structured data payload (deep-links/actions).
func QueuedWithData(title, message, typ string, data any, channels ...string) queuedNotification {
	ch := normalizeChannels(channels)
	return queuedNotification{Title: title, Message: message, Type: typ, Channels: ch, Data: data}
}

// EnqueueOrCreate stores notifications via the Redis queue if enabled, else
// inserts directly.
func (s *Service) EnqueueOrCreate(userIDs []uint, n queuedNotification) error {
	if len(userIDs) == 0 {
		return errors.New("no user ids")
	}
	n.UserIDs = userIDs
	n.CreatedAt = time.Now().UTC()

	if s.useRedis {
		b, err := json.Marshal(n)
		if err != nil {
			return err
		}
		if err = s.redis.RPush(context.Background(), redisListKey, b).Err(); err == nil {
			return nil
		}
		log.Printf("[notif] Redis queue failed, falling back to direct insert: %v", err)
	}

	return s.createDirect(userIDs, n)
}

// createDirect writes directly to DB (used by worker or fallback), then takes
// care of WebSocket and LINE delivery.
func (s *Service) createDirect(userIDs []uint, n queuedNotification) error {
	if len(userIDs) == 0 {
		return nil
	}

	channels := normalizeChannels(n.Channels)
	channelsJSON, err := json.Marshal(channels)
	if err != nil {
		channelsJSON = []byte(`["normal"]`)
	}
	var dataJSON []byte
	if n.Data != nil {
		if b, err2 := json.Marshal(n.Data); err2 == nil {
			dataJSON = b
		}
	}

	notifs := make([]models.Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		notifs = append(notifs, models.Notification{
			UserID:   uid,
			Title:    n.Title,
			Message:  n.Message,
			Type:     n.Type,
			Read:     false,
			Channels: channelsJSON,
			Data:     dataJSON,
		})
	}

	if err := s.db.Create(&notifs).Error; err != nil {
		return err
	}

	if s.wsHub != nil {
		for _, notif := range notifs {
			s.wsHub.BroadcastToUser(notif.UserID, map[string]interface{}{
				"type": "notification",
				"data": notif,
			})
		}
	}

	if linePusher != nil && hasChannel(channels, "line") {
		s.pushLine(userIDs, n)
	}

	return nil
}

func hasChannel(channels []string, want string) bool {
	for _, ch := range channels {
		if ch == want {
			return true
		}
	}
	return false
}

// pushLine sends the message to every target user with a linked LINE account.
// Delivery failures are logged, never propagated: the DB row is the source of
// truth and LINE is best-effort.
func (s *Service) pushLine(userIDs []uint, n queuedNotification) {
	var users []models.User
	if err := s.db.Where("id IN ? AND line_id <> ''", userIDs).Find(&users).Error; err != nil {
		log.Printf("[notif] LINE lookup failed: %v", err)
		return
	}
	for _, u := range users {
		if err := linePusher(u.LineID, n.Title+"\n"+n.Message); err != nil {
			log.Printf("[notif] LINE push to user %d failed: %v", u.ID, err)
		}
	}
}

// StartWorker starts a background worker polling the Redis queue and flushing
// to the database.
func (s *Service) StartWorker(stop <-chan struct{}) {
	if !s.useRedis {
		log.Println("[notif] Redis notifications disabled; worker not started")
		return
	}
	go func() {
		log.Println("[notif] Redis notification worker started")
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		ctx := context.Background()
		batchSize := 200
		for {
			select {
			case <-stop:
				log.Println("[notif] Worker stopping")
				return
			case <-ticker.C:
				s.flushBatch(ctx, batchSize)
			}
		}
	}()
}

// flushBatch polls the redis queue and processes notifications in batches.
func (s *Service) flushBatch(ctx context.Context, batchSize int) {
	if s.redis == nil {
		return
	}
	for i := 0; i < 5; i++ { // up to 5 sub-batches per tick
		vals, err := s.redis.LRange(ctx, redisListKey, 0, int64(batchSize-1)).Result()
		if err != nil || len(vals) == 0 {
			return
		}
		// Trim immediately to avoid duplicates (best-effort)
		if err = s.redis.LTrim(ctx, redisListKey, int64(len(vals)), -1).Err(); err != nil {
			log.Printf("[notif] LTrim failed: %v", err)
		}
		for _, raw := range vals {
			var q queuedNotification
			if err := json.Unmarshal([]byte(raw), &q); err != nil {
				continue
			}
			if err := s.createDirect(q.UserIDs, q); err != nil {
				log.Printf("[notif] DB insert failed: %v", err)
			}
		}
		if len(vals) < batchSize {
			return
		}
	}
}
