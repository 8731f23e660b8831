package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-call-booking/internal/handler"
	"github.com/iliyamo/coach-call-booking/internal/middleware"
	"github.com/iliyamo/coach-call-booking/internal/model"
)

// RegisterAdmin registers the console endpoints: slot management,
// booking review and program catalog editing.  Every route requires a
// valid access token with the ADMIN role.
func RegisterAdmin(e *echo.Echo, s *handler.SlotHandler, p *handler.ProgramHandler, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	// Slot inventory.
	g.POST("/slots", s.AddSlot)
	g.POST("/slots/generate", s.GenerateMonthlySlots)
	g.DELETE("/slots/:id", s.DeleteSlot)

	// Booking review.
	g.GET("/bookings", b.ListBookings)
	g.DELETE("/bookings/:id", b.DeleteBooking)

	// Program catalog.
	g.POST("/programs", p.CreateProgram)
	g.PUT("/programs/:id", p.UpdateProgram)
	g.DELETE("/programs/:id", p.DeleteProgram)
	g.POST("/programs/:id/move", p.MoveProgram)
}
