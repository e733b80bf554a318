package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// InitDataHeader carries the raw Telegram WebApp init data.
	InitDataHeader = "X-Telegram-Init-Data"
	// UserIDKey is the context key for the validated Telegram user ID.
	UserIDKey = "telegram_user_id"

	// initDataMaxAge bounds how old the auth_date may be.
	initDataMaxAge = 24 * time.Hour
)

var (
	ErrInitDataInvalid = errors.New("init data validation failed")
	ErrInitDataExpired = errors.New("init data has expired")
)

// WebAppUser is the user object embedded in WebApp init data.
type WebAppUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// ValidateInitData verifies the WebApp init data signature per the
// Telegram scheme: the hash is HMAC-SHA256 of the sorted key=value
// pairs, keyed by HMAC-SHA256("WebAppData", botToken).
func ValidateInitData(initData, botToken string) (*WebAppUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed query", ErrInitDataInvalid)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, fmt.Errorf("%w: missing hash", ErrInitDataInvalid)
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	wantHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(gotHash), []byte(wantHash)) {
		return nil, ErrInitDataInvalid
	}

	if authDate := values.Get("auth_date"); authDate != "" {
		ts, err := strconv.ParseInt(authDate, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad auth_date", ErrInitDataInvalid)
		}
		if time.Since(time.Unix(ts, 0)) > initDataMaxAge {
			return nil, ErrInitDataExpired
		}
	}

	var user WebAppUser
	if raw := values.Get("user"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, fmt.Errorf("%w: bad user payload", ErrInitDataInvalid)
		}
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: missing user", ErrInitDataInvalid)
	}
	return &user, nil
}

// Auth returns a middleware that validates WebApp init data and stores
// the Telegram user ID in the request context.
func Auth(botToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		initData := c.GetHeader(InitDataHeader)
		if initData == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "missing init data",
				},
			})
			return
		}

		user, err := ValidateInitData(initData, botToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "invalid init data",
				},
			})
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// GetUserID returns the validated Telegram user ID from the context.
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
