package web

import (
	"errors"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	log "github.com/sirupsen/logrus"
	"meal-manager/internal/auth"
)

// GetClaims returns the session VerifySession attached to the request, or nil.
func GetClaims(ctx iris.Context) *auth.Session {
	claims, _ := jwt.Get(ctx).(*auth.Session)
	return claims
}

// VerifySession requires "Authorization: Bearer <token>". A missing or malformed
// header is 401; a token that fails verification is 403.
func VerifySession(issuer *auth.Issuer) iris.Handler {
	verifier := jwt.NewVerifier(jwt.HS256, issuer.Secret())
	verifier.Extractors = []jwt.TokenExtractor{jwt.FromHeader} // extract token only from Authorization: Bearer $token
	verifier.ErrorHandler = func(ctx iris.Context, err error) {
		if errors.Is(err, jwt.ErrMissing) {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"message": "Unauthorized"})
			return
		}
		log.WithField("request_id", RequestID(ctx)).Debug(err)
		ctx.StopWithJSON(iris.StatusForbidden, iris.Map{"message": "Forbidden"})
	}

	return verifier.Verify(func() interface{} {
		return new(auth.Session)
	}, requireSession{})
}

// requireSession rejects tokens that carry no expiry.
type requireSession struct{}

func (requireSession) ValidateToken(token []byte, claims jwt.Claims, err error) error {
	if err != nil {
		return err
	}
	if claims.Expiry == 0 {
		return auth.ErrInvalidToken
	}
	return nil
}
