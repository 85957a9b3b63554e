package jwt

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried by an access token.
type Claims struct {
	EmployeeID string
	Role       employee.Role
}

// ClaimsFromMap reads the identity from decoded token claims.
func ClaimsFromMap(claims map[string]interface{}) (Claims, error) {
	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeAccess {
		return Claims{}, ErrInvalidToken
	}
	employeeID, _ := claims["employee_id"].(string)
	if employeeID == "" {
		return Claims{}, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	if !employee.Role(role).IsValid() {
		return Claims{}, ErrInvalidToken
	}
	return Claims{EmployeeID: employeeID, Role: employee.Role(role)}, nil
}

// Service verifies access tokens issued by the identity provider and issues
// the short-lived stream tokens used by the event endpoint.
type Service interface {
	GenerateAccessToken(employeeID string, role employee.Role, ttl time.Duration) (token string, expiresAt int64, err error)
	GenerateSSEToken(topic string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (topic string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
	now       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, acceptableSkew time.Duration) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(acceptableSkew)),
		now:       time.Now,
	}
}

// GenerateAccessToken signs an access token. Production tokens come from the
// identity provider; this is used by tooling and tests sharing the secret.
func (j *JWTService) GenerateAccessToken(employeeID string, role employee.Role, ttl time.Duration) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(ttl).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"role":        string(role),
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token bound to one event topic
func (j *JWTService) GenerateSSEToken(topic string) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"topic": topic,
		"type":  TokenTypeSSE,
		"exp":   expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns its topic
func (j *JWTService) ValidateSSEToken(tokenString string) (topic string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	// Check token type
	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return "", jwt.ErrInvalidJWT()
	}

	topicVal, ok := token.Get("topic")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	topic, ok = topicVal.(string)
	if !ok || topic == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return topic, nil
}
