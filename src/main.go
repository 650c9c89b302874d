package main

import (
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"bookingapp/src/apperr"
	"bookingapp/src/boot"
	"bookingapp/src/config"
	"bookingapp/src/middlewares"
	"bookingapp/src/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

// bookabledate accepts a calendar date that is today or later.
var bookableDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	date, err := utils.ParseDate(value)
	if err != nil {
		return false
	}
	return !date.Before(utils.Today())
}

// gtdate requires the field to be strictly after the named sibling field.
var gtdate validator.Func = func(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	date, err := utils.ParseDate(value)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	otherValue, ok := field.Interface().(string)
	if !ok {
		return false
	}
	other, err := utils.ParseDate(otherValue)
	if err != nil {
		return false
	}
	return date.After(other)
}

// respondError maps domain errors onto HTTP statuses.
func respondError(ctx *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Could not complete request: %s\n", err.Error())
		ctx.JSON(status, gin.H{"error": "Error while processing request"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	return g.Group(apiPrefix)
}

func setupRouter(router *gin.Engine) *gin.Engine {
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := apiv1Group(router)
	authHandlers(public)
	paymentRedirectHandlers(public)
	stripeWebhookRoute(public)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		bookingHandlers(authorized)
		paymentHandlers(authorized)
		accommodationHandlers(authorized)
	}
	return router
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}

	boot.InitDb()
	boot.InitServices()
	boot.InitScheduler()
	defer boot.StopScheduler()

	router := gin.Default()

	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
		cc.AllowOrigins = []string{config.GetBaseURL()}
		cc.AllowCredentials = true
		cc.MaxAge = 12 * time.Hour
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookableDateValidatorFunc)
		v.RegisterValidation("gtdate", gtdate)
	}

	router = setupRouter(router)

	if err := router.Run(":8080"); err != nil {
		log.Fatalf("error starting server: %s", err.Error())
	}
}
