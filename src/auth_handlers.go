package main

import (
	"errors"
	"net/http"

	"bookingapp/src/db"
	"bookingapp/src/middlewares"
	"bookingapp/src/models"
	"bookingapp/src/types"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func authHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/auth/register", func(ctx *gin.Context) {
			var body types.RegisterUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			user := models.User{
				Email:        body.Email,
				Name:         body.Name,
				PasswordHash: string(hash),
				Role:         types.ROLE_CUSTOMER,
			}
			d := db.GetDb()
			var existing models.User
			err = d.Where(&models.User{Email: body.Email}).First(&existing).Error
			if err == nil {
				ctx.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if err := d.Create(&user).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": user})
		}).
		POST("/auth/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			d := db.GetDb()
			var user models.User
			if err := d.Where(&models.User{Email: body.Email}).First(&user).Error; err != nil {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			token, err := middlewares.GenerateJWT(&user)
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"token": token, "user": user})
		})
	return g
}
