package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST-TOKEN"

func signInitData(t *testing.T, values url.Values, botToken string) string {
	t.Helper()

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func validInitData(t *testing.T) string {
	values := url.Values{}
	values.Set("user", `{"id":42,"first_name":"Ivan","username":"ivan"}`)
	values.Set("auth_date", fmt.Sprintf("%d", time.Now().Unix()))
	values.Set("query_id", "AAE42")
	return signInitData(t, values, testBotToken)
}

func TestValidateInitData_Valid(t *testing.T) {
	user, err := ValidateInitData(validInitData(t), testBotToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "Ivan", user.FirstName)
}

func TestValidateInitData_WrongToken(t *testing.T) {
	_, err := ValidateInitData(validInitData(t), "other:token")
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestValidateInitData_TamperedUser(t *testing.T) {
	data := validInitData(t)
	tampered := strings.Replace(data, "%22id%22%3A42", "%22id%22%3A999", 1)
	_, err := ValidateInitData(tampered, testBotToken)
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestValidateInitData_Expired(t *testing.T) {
	values := url.Values{}
	values.Set("user", `{"id":42,"first_name":"Ivan"}`)
	values.Set("auth_date", fmt.Sprintf("%d", time.Now().Add(-48*time.Hour).Unix()))
	data := signInitData(t, values, testBotToken)

	_, err := ValidateInitData(data, testBotToken)
	assert.ErrorIs(t, err, ErrInitDataExpired)
}

func TestValidateInitData_MissingHash(t *testing.T) {
	_, err := ValidateInitData("user=%7B%22id%22%3A42%7D", testBotToken)
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}

func TestValidateInitData_MissingUser(t *testing.T) {
	values := url.Values{}
	values.Set("auth_date", fmt.Sprintf("%d", time.Now().Unix()))
	data := signInitData(t, values, testBotToken)

	_, err := ValidateInitData(data, testBotToken)
	assert.ErrorIs(t, err, ErrInitDataInvalid)
}
