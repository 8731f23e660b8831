package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coach-call-booking/internal/handler"
	"github.com/iliyamo/coach-call-booking/internal/notify"
	"github.com/iliyamo/coach-call-booking/internal/repository"
)

// markerMiddleware tags every response passing through it so a test can
// tell which routes a middleware was mounted on.
func markerMiddleware(header string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(header, "on")
			return next(c)
		}
	}
}

func newPublicTestServer(t *testing.T, mw PublicMiddleware) *echo.Echo {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	programs := repository.NewProgramRepo(db)
	relay := notify.NewRelay("http://127.0.0.1:0", "key", 0)

	e := echo.New()
	RegisterPublic(e,
		handler.NewSlotHandler(slots),
		handler.NewProgramHandler(programs),
		handler.NewBookingHandler(slots, bookings, relay, 0),
		mw)
	return e
}

func TestRegisterPublic_CacheOnlyWrapsCatalog(t *testing.T) {
	e := newPublicTestServer(t, PublicMiddleware{
		RateLimit: markerMiddleware("X-Test-RateLimit"),
		Cache:     markerMiddleware("X-Test-Cache"),
	})

	// The availability listing is rate limited but must never be served
	// from the response cache: slots expire between requests.
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/slots?date=bad", nil))
	assert.Equal(t, "on", rec.Header().Get("X-Test-RateLimit"))
	assert.Empty(t, rec.Header().Get("X-Test-Cache"))

	// The program catalog gets both.
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/programs/archive", nil))
	assert.Equal(t, "on", rec.Header().Get("X-Test-RateLimit"))
	assert.Equal(t, "on", rec.Header().Get("X-Test-Cache"))

	// Booking submission is rate limited, never cached.
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/bookings", nil))
	assert.Equal(t, "on", rec.Header().Get("X-Test-RateLimit"))
	assert.Empty(t, rec.Header().Get("X-Test-Cache"))
}

func TestRegisterPublic_NilMiddlewareIsPassThrough(t *testing.T) {
	e := newPublicTestServer(t, PublicMiddleware{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/slots?date=bad", nil))
	// Bad date reaches the handler and is rejected there, proving the
	// route works without any ambient middleware mounted.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
