package token

import (
	"context"
	"errors"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/convoly/chat-api/internal/models"
)

// Verifier verifies bearer tokens. It supports a symmetric algorithm (HS256)
// against a configured shared secret and asymmetric algorithms (RS256, ES256)
// against a cached remote key set. The algorithm is taken from the token
// header as a closed enumeration; declaring anything else is always rejected,
// regardless of whether a signature would happen to validate against a
// guessed key.
type Verifier struct {
	secret   []byte
	keys     *KeySetCache
	audience string
	issuer   string
}

// NewVerifier creates a new token verifier. secret may be empty when only
// asymmetric tokens are expected; keys may be nil when only symmetric tokens
// are expected. audience and issuer are validated when non-empty.
func NewVerifier(secret string, keys *KeySetCache, audience, issuer string) *Verifier {
	v := &Verifier{
		keys:     keys,
		audience: audience,
		issuer:   issuer,
	}
	if secret != "" {
		v.secret = []byte(secret)
	}
	return v
}

// ExtractBearer strips a case-insensitive "Bearer " prefix from an
// Authorization header value and returns the token.
func ExtractBearer(header string) (string, error) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", newError(CodeUnauthenticated, "invalid authorization header format", nil)
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", newError(CodeUnauthenticated, "invalid authorization header format", nil)
	}
	return token, nil
}

// Verify cryptographically verifies a bearer token and validates its claims.
// On success the returned claims always carry a non-empty subject. Failures
// are *VerificationError values classified per the API error contract.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.TokenClaims, error) {
	// Decode without verification to read the declared algorithm. This decode
	// only selects the verification strategy; nothing from it is trusted until
	// the signature checks out.
	msg, err := jws.Parse([]byte(tokenString))
	if err != nil {
		return nil, newError(CodeUnauthenticated, "malformed token", err)
	}
	sigs := msg.Signatures()
	if len(sigs) == 0 {
		return nil, newError(CodeUnauthenticated, "malformed token", nil)
	}
	headers := sigs[0].ProtectedHeaders()
	alg := headers.Algorithm()

	opts := []jwt.ParseOption{jwt.WithValidate(true)}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	var parsed jwt.Token
	switch alg {
	case jwa.HS256:
		if len(v.secret) == 0 {
			return nil, newError(CodeVerificationFailed, "token verification failed", errors.New("symmetric signing secret not configured"))
		}
		key, err := jwk.FromRaw(v.secret)
		if err != nil {
			return nil, newError(CodeVerificationFailed, "token verification failed", err)
		}
		parsed, err = jwt.Parse([]byte(tokenString), append(opts, jwt.WithKey(jwa.HS256, key))...)
		if err != nil {
			return nil, classify(err)
		}

	case jwa.RS256, jwa.ES256:
		if v.keys == nil {
			return nil, newError(CodeVerificationFailed, "token verification failed", errors.New("key set endpoint not configured"))
		}
		key, err := v.keys.Lookup(ctx, headers.KeyID())
		if err != nil {
			return nil, newError(CodeVerificationFailed, "token verification failed", err)
		}
		parsed, err = jwt.Parse([]byte(tokenString), append(opts, jwt.WithKey(alg, key))...)
		if err != nil {
			return nil, classify(err)
		}

	default:
		return nil, newError(CodeVerificationFailed, "token verification failed", errors.New("unsupported signing algorithm "+alg.String()))
	}

	claims := &models.TokenClaims{
		Sub:       parsed.Subject(),
		Iss:       parsed.Issuer(),
		Algorithm: alg.String(),
	}
	if claims.Sub == "" {
		return nil, newError(CodeInvalidToken, "invalid token", errors.New("missing subject claim"))
	}
	if !parsed.Expiration().IsZero() {
		claims.Exp = parsed.Expiration().Unix()
	}
	if aud := parsed.Audience(); len(aud) > 0 {
		claims.Aud = aud[0]
	}
	if email, ok := parsed.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			claims.Email = emailStr
		}
	}

	return claims, nil
}

// classify maps a jwx parse/validate failure onto the error taxonomy. The
// library-level distinction between "expired" and "otherwise invalid" is
// preserved so the caller receives an accurate code.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired()):
		return newError(CodeTokenExpired, "token expired", err)
	case errors.Is(err, jwt.ErrInvalidIssuer()),
		errors.Is(err, jwt.ErrInvalidAudience()),
		errors.Is(err, jwt.ErrTokenNotYetValid()):
		return newError(CodeInvalidToken, "invalid token", err)
	default:
		return newError(CodeInvalidToken, "invalid token", err)
	}
}
