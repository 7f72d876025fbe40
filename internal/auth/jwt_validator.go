package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/ecom-api/internal/common"
)

// TokenValidator checks an access token's claims and resolves the caller it names.
type TokenValidator struct {
	Issuer    string
	Audience  string
	ClockSkew time.Duration
	Algorithm jwa.SignatureAlgorithm
}

// Principal validates tok and returns the user it identifies. The subject
// must be a user id; a missing role claim means USER and an unknown role is
// rejected.
func (v TokenValidator) Principal(tok jwt.Token, algorithm jwa.SignatureAlgorithm, now time.Time) (common.Principal, error) {
	if tok == nil {
		return common.Principal{}, errors.New("auth: token is nil")
	}
	if algorithm == "" {
		return common.Principal{}, errors.New("auth: token missing algorithm")
	}
	if v.Algorithm != "" && algorithm != v.Algorithm {
		return common.Principal{}, fmt.Errorf("auth: unexpected token algorithm %s", algorithm)
	}

	options := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
		jwt.WithRequiredClaim(jwt.ExpirationKey),
		jwt.WithValidator(jwt.ValidatorFunc(validateSubject)),
		jwt.WithValidator(jwt.ValidatorFunc(validateRole)),
	}
	if v.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(v.ClockSkew))
	}
	if v.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		options = append(options, jwt.WithAudience(v.Audience))
	}
	if err := jwt.Validate(tok, options...); err != nil {
		return common.Principal{}, err
	}

	userID, _ := strconv.ParseInt(tok.Subject(), 10, 64)
	role, _ := roleOf(tok)
	return common.Principal{UserID: userID, Role: role}, nil
}

func validateSubject(_ context.Context, tok jwt.Token) jwt.ValidationError {
	id, err := strconv.ParseInt(tok.Subject(), 10, 64)
	if err != nil || id <= 0 {
		return jwt.NewValidationError(fmt.Errorf("auth: subject %q is not a user id", tok.Subject()))
	}
	return nil
}

func validateRole(_ context.Context, tok jwt.Token) jwt.ValidationError {
	if _, ok := roleOf(tok); !ok {
		return jwt.NewValidationError(errors.New("auth: unknown role claim"))
	}
	return nil
}

// roleOf reads the role claim, case-insensitively.
func roleOf(tok jwt.Token) (string, bool) {
	raw, ok := tok.Get(roleClaim)
	if !ok {
		return common.RoleUser, true
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	switch role := strings.ToUpper(strings.TrimSpace(s)); role {
	case common.RoleUser, common.RoleSeller, common.RoleAdmin:
		return role, true
	}
	return "", false
}
