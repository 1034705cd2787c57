// README: Login-code collaborator; codes and sessions live in Redis.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sender delivers a login code to a phone. A real deployment plugs in an SMS
// provider here.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// Claims is what a verified session token resolves to.
type Claims struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
}

var (
	ErrBadPhone     = errors.New("invalid phone")
	ErrBadRole      = errors.New("invalid role")
	ErrInvalidToken = errors.New("invalid session token")
)

type Service struct {
	redis      *redis.Client
	sender     Sender
	codeTTL    time.Duration
	sessionTTL time.Duration
}

func NewService(redis *redis.Client, sender Sender, codeTTL, sessionTTL time.Duration) *Service {
	return &Service{redis: redis, sender: sender, codeTTL: codeTTL, sessionTTL: sessionTTL}
}

func codeKey(phone string) string { return "identity:code:" + phone }

func sessionKey(token string) string { return "identity:session:" + token }

// SendLoginCode generates a login code, stores it with a TTL, and hands it to
// the sender. This is the session-establishment code, distinct from the
// per-order delivery OTP.
func (s *Service) SendLoginCode(ctx context.Context, phone string) error {
	if len(phone) < 4 {
		return ErrBadPhone
	}
	code, err := newLoginCode()
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, codeKey(phone), code, s.codeTTL).Err(); err != nil {
		return err
	}
	return s.sender.SendCode(ctx, phone, code)
}

// VerifyLoginCode checks the code, consumes it, and mints a bearer session
// token for the requested role. A wrong or expired code returns ok=false.
func (s *Service) VerifyLoginCode(ctx context.Context, phone, code, role string) (string, bool, error) {
	switch role {
	case "customer", "driver", "admin":
	case "":
		role = "customer"
	default:
		return "", false, ErrBadRole
	}
	stored, err := s.redis.Get(ctx, codeKey(phone)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if stored != code {
		return "", false, nil
	}
	_ = s.redis.Del(ctx, codeKey(phone)).Err()

	token, err := newToken()
	if err != nil {
		return "", false, err
	}
	payload, err := json.Marshal(Claims{UID: phone, Role: role})
	if err != nil {
		return "", false, err
	}
	if err := s.redis.Set(ctx, sessionKey(token), payload, s.sessionTTL).Err(); err != nil {
		return "", false, err
	}
	return token, true, nil
}

// Verify resolves a bearer token to its claims; it satisfies the HTTP auth
// middleware's TokenVerifier.
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	payload, err := s.redis.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	var c Claims
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, ErrInvalidToken
	}
	return &c, nil
}

func newLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(1000+n.Int64(), 10), nil
}

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
