package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	Role         string `json:"role,omitempty"`
}

// UserID is the id of the authenticated user.
func (c Claims) UserID() int {
	id, _ := strconv.Atoi(c.Subject)
	return id
}

// User rebuilds the identity carried by the claims.
func (c Claims) User() user.User {
	return user.User{ID: c.UserID(), Email: c.Email, Name: c.Name, Role: c.Role}
}

type authenticator struct {
	conf      *core.Config
	jwtConfig middleware.JWTConfig
}

func newAuthenticator(conf *core.Config) authenticator {
	return authenticator{
		conf: conf,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    "userToken",
			Claims:        new(Claims),
		},
	}
}

func GetUserClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        usr.Email,
		Name:         usr.Name,
		Role:         usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (a authenticator) token(usr user.User, origIat ...int64) (string, error) {
	return GenerateToken(a.conf, GetUserClaims(a.conf, usr, origIat...))
}

func (a authenticator) contextClaims(ctx echo.Context) (Claims, error) {
	return getContextClaims(ctx, a.jwtConfig.ContextKey)
}

func getContextClaims(ctx echo.Context, key string) (Claims, error) {
	if token, ok := ctx.Get(key).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// refresh issues a new token for the context user as long as the original login is recent enough.
func (a authenticator) refresh(ctx echo.Context, svc *user.Service) (string, error) {
	claims, err := a.contextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	// pick up role or name changes
	usr, err := svc.GetByID(ctx.Request().Context(), claims.UserID())
	if err != nil {
		if core.IsNotFound(err) {
			return "", errUnauthorized
		}
		return "", errors.Wrap(err, "finding context user")
	}
	return a.token(usr, claims.OrigIssuedAt)
}
