package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/futig/coverletter-backend/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	warningInterval   = 30 * time.Second
	inactiveThreshold = time.Hour
)

// Sender sends warnings to the chat
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// userLimit tracks rate limit state for a single user
type userLimit struct {
	mu            sync.Mutex
	tokens        float64
	lastRefill    time.Time
	lastWarningAt time.Time
}

// RateLimiterMiddleware implements token bucket rate limiting per user.
// Buckets of users idle for an hour are evicted.
type RateLimiterMiddleware struct {
	limits     *cache.Cache
	mu         sync.Mutex
	maxTokens  float64
	refillRate float64 // tokens per second
	now        func() time.Time
	logger     *zap.Logger
	api        Sender
}

// NewRateLimiterMiddleware creates a new rate limiter middleware
func NewRateLimiterMiddleware(requestsPerMinute int, logger *zap.Logger, api Sender) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		limits:     cache.New(inactiveThreshold, 10*time.Minute),
		maxTokens:  float64(requestsPerMinute),
		refillRate: float64(requestsPerMinute) / 60.0,
		now:        time.Now,
		logger:     logger,
		api:        api,
	}
}

// Handle processes the update through rate limiting
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	userID, chatID, ok := updateIDs(update)
	if !ok {
		// Unknown update type, allow it
		next(update)
		return
	}

	if !rl.Allow(userID, chatID) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

// Allow takes a token from the user's bucket
func (rl *RateLimiterMiddleware) Allow(userID, chatID int64) bool {
	limit := rl.bucket(userID)

	limit.mu.Lock()
	defer limit.mu.Unlock()

	now := rl.now()

	limit.tokens += now.Sub(limit.lastRefill).Seconds() * rl.refillRate
	if limit.tokens > rl.maxTokens {
		limit.tokens = rl.maxTokens
	}
	limit.lastRefill = now

	if limit.tokens >= 1.0 {
		limit.tokens -= 1.0
		return true
	}

	if now.Sub(limit.lastWarningAt) > warningInterval {
		limit.lastWarningAt = now
		rl.sendWarning(chatID)
	}

	return false
}

func (rl *RateLimiterMiddleware) bucket(userID int64) *userLimit {
	key := strconv.FormatInt(userID, 10)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.limits.Get(key); ok {
		limit := v.(*userLimit)
		rl.limits.SetDefault(key, limit)
		return limit
	}

	limit := &userLimit{tokens: rl.maxTokens, lastRefill: rl.now()}
	rl.limits.SetDefault(key, limit)
	return limit
}

func (rl *RateLimiterMiddleware) sendWarning(chatID int64) {
	if rl.api == nil || chatID == 0 {
		return
	}

	if _, err := rl.api.Send(tgbotapi.NewMessage(chatID, render.ErrRateLimited)); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// updateIDs extracts user and chat of supported updates
func updateIDs(update tgbotapi.Update) (userID, chatID int64, ok bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.From.ID, update.CallbackQuery.Message.Chat.ID, true
	default:
		return 0, 0, false
	}
}
