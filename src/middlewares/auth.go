package middlewares

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"bookingapp/src/db"
	"bookingapp/src/models"
	"bookingapp/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	d := db.GetDb()
	var user models.User
	d.Model(&models.User{}).Where(&models.User{ID: uint(uid)}).Find(&user)
	if uint(uid) != user.ID || user.ID < 1 {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ctx.Set("id", user.ID)
	ctx.Set("email", user.Email)
	ctx.Set("role", user.Role)
}

// ManagerOnly gates management routes. It must run after AuthMiddleware.
func ManagerOnly(ctx *gin.Context) {
	role, ok := ctx.Get("role")
	if !ok || role.(types.Role) != types.ROLE_MANAGER {
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "manager role required"})
		return
	}
}

// CurrentIdentity rebuilds the caller from the context values set by
// AuthMiddleware.
func CurrentIdentity(ctx *gin.Context) types.Identity {
	id := ctx.GetUint("id")
	email := ctx.GetString("email")
	role, _ := ctx.Get("role")
	identity := types.Identity{ID: id, Email: email}
	if r, ok := role.(types.Role); ok {
		identity.Role = r
	}
	return identity
}

// GenerateJWT issues a signed token for the user with a 24 hour lifetime.
func GenerateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := types.Claims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(user.ID)),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(jwtKey)
}
