package reservation

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the booking surface on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/booking-window", h.GetBookingWindow)
	rg.GET("/availability", h.GetAvailability)

	reservations := rg.Group("/reservations")
	{
		reservations.POST("", h.CreateReservation)
		reservations.GET("/:id", h.GetReservation)
	}
}

// RegisterAdminRoutes mounts the admin surface. live, when non-nil, serves the
// websocket event feed.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup, live http.Handler) {
	admin := rg.Group("/admin")
	{
		admin.GET("/reservations", h.ListReservations)
		admin.GET("/stats", h.GetStats)
		admin.PATCH("/reservations/:id/status", h.UpdateStatus)
		admin.DELETE("/reservations/:id", h.DeleteReservation)
		if live != nil {
			admin.GET("/ws", gin.WrapH(live))
		}
	}
}
