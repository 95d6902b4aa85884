package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Issuer is stamped on every token and required on verification.
const Issuer = "gdpr-backend"

// TokenTTL is the lifetime of a token signed without an explicit Exp.
const TokenTTL = 24 * time.Hour

// Claims is the identity carried by a session token.
type Claims struct {
	Sub     string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Iss     string `json:"iss,omitempty"`
	Exp     int64  `json:"exp,omitempty"`
	Iat     int64  `json:"iat,omitempty"`
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

var (
	ErrInvalidToken  = errors.New("invalid token")
	errMissingSecret = errors.New("jwt secret not configured")
	errMissingSub    = errors.New("sub is required")
)

var hs256Header = header{Alg: "HS256", Typ: "JWT"}

// SignJWT returns an HS256 token for claims, filling Iss, Iat and Exp.
func SignJWT(claims Claims) (string, error) {
	secret, err := secretKey()
	if err != nil {
		return "", err
	}
	if claims.Sub == "" {
		return "", errMissingSub
	}
	now := time.Now().UTC()
	claims.Iss = Issuer
	if claims.Iat == 0 {
		claims.Iat = now.Unix()
	}
	if claims.Exp == 0 {
		claims.Exp = now.Add(TokenTTL).Unix()
	}

	head, err := encodeSegment(hs256Header)
	if err != nil {
		return "", err
	}
	body, err := encodeSegment(claims)
	if err != nil {
		return "", err
	}
	unsigned := head + "." + body
	return unsigned + "." + sign(unsigned, secret), nil
}

// VerifyJWT checks the signature, algorithm, issuer and expiry of token.
// Every failure is reported as ErrInvalidToken.
func VerifyJWT(token string) (Claims, error) {
	secret, err := secretKey()
	if err != nil {
		return Claims{}, err
	}
	head, body, sig, ok := splitToken(token)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(sign(head+"."+body, secret))) {
		return Claims{}, ErrInvalidToken
	}

	var h header
	if err := decodeSegment(head, &h); err != nil || h.Alg != hs256Header.Alg {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := decodeSegment(body, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.Sub == "" || claims.Iss != Issuer {
		return Claims{}, ErrInvalidToken
	}
	if claims.Exp > 0 && time.Now().UTC().Unix() > claims.Exp {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func splitToken(token string) (head, body, sig string, ok bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

func encodeSegment(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeSegment(seg string, dst any) error {
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func sign(input string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// secretKey reads JWT_SECRET. Outside production a fixed dev secret is used
// when it is unset.
func secretKey() ([]byte, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret != "" {
		return []byte(secret), nil
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))) {
	case "production", "prod":
		return nil, fmt.Errorf("%w: JWT_SECRET required in production", errMissingSecret)
	}
	return []byte("dev-secret"), nil
}
