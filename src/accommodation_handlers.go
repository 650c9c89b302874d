package main

import (
	"errors"
	"net/http"

	"bookingapp/src/common"
	"bookingapp/src/db"
	"bookingapp/src/middlewares"
	"bookingapp/src/models"
	"bookingapp/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func accommodationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/accommodations", func(ctx *gin.Context) {
			d := db.GetDb()
			var accommodations []models.Accommodation
			if err := d.
				Model(&models.Accommodation{}).
				Order("id").
				Find(&accommodations).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": accommodations, "count": len(accommodations)})
		}).
		GET("/accommodations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			d := db.GetDb()
			var accommodation models.Accommodation
			if err := d.
				Where(&models.Accommodation{ID: params.ID}).
				First(&accommodation).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "accommodation not found"})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": accommodation})
		}).
		GET("/accommodations/:id/availability", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			free, err := common.CachedAvailability(ctx, params.ID)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"accommodation_id": params.ID, "available": free}})
		}).
		POST("/accommodations", middlewares.ManagerOnly, func(ctx *gin.Context) {
			var body types.CreateAccommodationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			amenities := make(types.JSONBArray, 0, len(body.Amenities))
			for _, a := range body.Amenities {
				amenities = append(amenities, a)
			}
			accommodation := models.Accommodation{
				PropertyType: types.PropertyType(body.PropertyType),
				Location: models.Address{
					Street:     body.Street,
					City:       body.City,
					Country:    body.Country,
					PostalCode: body.PostalCode,
				},
				Size:         body.Size,
				Amenities:    amenities,
				PricePerDay:  body.PricePerDay,
				Availability: body.Availability,
			}
			d := db.GetDb()
			if err := d.Create(&accommodation).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": accommodation})
		}).
		PUT("/accommodations/:id", middlewares.ManagerOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateAccommodationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates := map[string]any{}
			if body.PricePerDay != nil {
				updates["price_per_day"] = *body.PricePerDay
			}
			if body.Availability != nil {
				updates["availability"] = *body.Availability
			}
			if body.Size != nil {
				updates["size"] = *body.Size
			}
			if body.Amenities != nil {
				amenities := make(types.JSONBArray, 0, len(body.Amenities))
				for _, a := range body.Amenities {
					amenities = append(amenities, a)
				}
				updates["amenities"] = amenities
			}
			if len(updates) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
				return
			}
			d := db.GetDb()
			res := d.
				Model(&models.Accommodation{}).
				Where(&models.Accommodation{ID: params.ID}).
				Updates(updates)
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "accommodation not found"})
				return
			}
			var accommodation models.Accommodation
			if err := d.
				Where(&models.Accommodation{ID: params.ID}).
				First(&accommodation).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": accommodation})
		}).
		DELETE("/accommodations/:id", middlewares.ManagerOnly, func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			d := db.GetDb()
			var active int64
			if err := d.
				Model(&models.Booking{}).
				Where("accommodation_id = ? AND status IN ?", params.ID,
					[]types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_CONFIRMED}).
				Count(&active).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if active > 0 {
				ctx.JSON(http.StatusConflict, gin.H{"error": "accommodation has active bookings"})
				return
			}
			res := d.Delete(&models.Accommodation{}, params.ID)
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "accommodation not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
