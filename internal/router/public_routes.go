package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-call-booking/internal/handler"
)

// PublicMiddleware carries the optional ambient middleware for the
// visitor-facing routes.  Either field may be nil, in which case the
// concern is simply skipped.  The response cache is deliberately not a
// group-wide middleware: slot availability changes with the clock
// (slots expire between requests) and with every booking, so a cached
// listing would keep presenting slots that are already gone.  Only the
// program catalog, which changes on explicit admin edits, is cached.
type PublicMiddleware struct {
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterPublic registers the unauthenticated visitor endpoints: the
// availability listing, the program catalog and booking submission.
func RegisterPublic(e *echo.Echo, s *handler.SlotHandler, p *handler.ProgramHandler, b *handler.BookingHandler, mw PublicMiddleware) {
	var common []echo.MiddlewareFunc
	if mw.RateLimit != nil {
		common = append(common, mw.RateLimit)
	}
	g := e.Group("/v1", common...)

	// Live slots for a given day; expired slots are swept on every read.
	// Never cached — the listing must reflect the clock at call time.
	g.GET("/slots", s.ListSlots)
	// Booking submission: relay confirmation, then atomic slot claim.
	g.POST("/bookings", b.CreateBooking)

	// Program catalog of one partition, ordered by rank.
	var catalogMW []echo.MiddlewareFunc
	if mw.Cache != nil {
		catalogMW = append(catalogMW, mw.Cache)
	}
	g.GET("/programs/:partition", p.ListPrograms, catalogMW...)
}
