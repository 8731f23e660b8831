package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coach-call-booking/internal/model"
	"github.com/iliyamo/coach-call-booking/internal/repository"
)

func newProgramTest(t *testing.T) (*ProgramHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewProgramHandler(repository.NewProgramRepo(db)), mock, func() { db.Close() }
}

func catalogRows(items ...[3]any) *sqlmock.Rows {
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "partition_key", "ord", "title", "subtitle", "overview", "image",
		"content", "outcomes", "differences", "format", "audience", "full_description",
		"created_at", "updated_at",
	})
	for _, it := range items {
		rows.AddRow(it[0], model.PartitionCurrent, it[1], it[2], "", "", "",
			[]byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`{}`), "", now, now)
	}
	return rows
}

func moveRequest(e *echo.Echo, id, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestMoveProgram_SwapsWithNeighbour(t *testing.T) {
	h, mock, done := newProgramTest(t)
	defer done()

	// Catalog before the move: A(1), B(2), C(3).  Moving B up swaps
	// B and A and leaves C untouched.
	mock.ExpectQuery("SELECT id, partition_key, ord").
		WithArgs(model.PartitionCurrent).
		WillReturnRows(catalogRows([3]any{1, 1, "A"}, [3]any{2, 2, "B"}, [3]any{3, 3, "C"}))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE programs SET ord").
		WithArgs(1, uint64(2), model.PartitionCurrent, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE programs SET ord").
		WithArgs(2, uint64(1), model.PartitionCurrent, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT id, partition_key, ord").
		WithArgs(model.PartitionCurrent).
		WillReturnRows(catalogRows([3]any{2, 1, "B"}, [3]any{1, 2, "A"}, [3]any{3, 3, "C"}))

	e := echo.New()
	c, rec := moveRequest(e, "2", `{"partition":"current","direction":"up"}`)
	require.NoError(t, h.MoveProgram(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"moved":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveProgram_BoundaryIsNoOp(t *testing.T) {
	h, mock, done := newProgramTest(t)
	defer done()

	// First item moved up: no transaction, list returned unchanged.
	mock.ExpectQuery("SELECT id, partition_key, ord").
		WithArgs(model.PartitionCurrent).
		WillReturnRows(catalogRows([3]any{1, 1, "A"}, [3]any{2, 2, "B"}))

	e := echo.New()
	c, rec := moveRequest(e, "1", `{"partition":"current","direction":"up"}`)
	require.NoError(t, h.MoveProgram(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"moved":false`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveProgram_ConcurrentReorderConflicts(t *testing.T) {
	h, mock, done := newProgramTest(t)
	defer done()

	mock.ExpectQuery("SELECT id, partition_key, ord").
		WithArgs(model.PartitionCurrent).
		WillReturnRows(catalogRows([3]any{1, 1, "A"}, [3]any{2, 2, "B"}))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE programs SET ord").
		WithArgs(1, uint64(2), model.PartitionCurrent, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	e := echo.New()
	c, rec := moveRequest(e, "2", `{"partition":"current","direction":"up"}`)
	require.NoError(t, h.MoveProgram(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveProgram_DerivesPartitionWhenOmitted(t *testing.T) {
	h, mock, done := newProgramTest(t)
	defer done()

	// GetByID resolves the partition, then the listing runs as usual.
	mock.ExpectQuery("SELECT id, partition_key, ord").
		WithArgs(uint64(1)).
		WillReturnRows(catalogRows([3]any{1, 1, "A"}))
	mock.ExpectQuery("SELECT id, partition_key, ord").
		WithArgs(model.PartitionCurrent).
		WillReturnRows(catalogRows([3]any{1, 1, "A"}, [3]any{2, 2, "B"}))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE programs SET ord").
		WithArgs(2, uint64(1), model.PartitionCurrent, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE programs SET ord").
		WithArgs(1, uint64(2), model.PartitionCurrent, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT id, partition_key, ord").
		WithArgs(model.PartitionCurrent).
		WillReturnRows(catalogRows([3]any{2, 1, "B"}, [3]any{1, 2, "A"}))

	e := echo.New()
	c, rec := moveRequest(e, "1", `{"direction":"down"}`)
	require.NoError(t, h.MoveProgram(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"moved":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveProgram_ValidatesInput(t *testing.T) {
	h, mock, done := newProgramTest(t)
	defer done()

	e := echo.New()

	c, rec := moveRequest(e, "1", `{"partition":"archive","direction":"up"}`)
	require.NoError(t, h.MoveProgram(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = moveRequest(e, "1", `{"partition":"current","direction":"sideways"}`)
	require.NoError(t, h.MoveProgram(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = moveRequest(e, "zero", `{"partition":"current","direction":"up"}`)
	require.NoError(t, h.MoveProgram(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveProgram_UnknownID(t *testing.T) {
	h, mock, done := newProgramTest(t)
	defer done()

	mock.ExpectQuery("SELECT id, partition_key, ord").
		WithArgs(model.PartitionCurrent).
		WillReturnRows(catalogRows([3]any{1, 1, "A"}))

	e := echo.New()
	c, rec := moveRequest(e, "99", `{"partition":"current","direction":"down"}`)
	require.NoError(t, h.MoveProgram(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPrograms_RejectsUnknownPartition(t *testing.T) {
	h, mock, done := newProgramTest(t)
	defer done()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("partition")
	c.SetParamValues("archive")
	require.NoError(t, h.ListPrograms(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProgram_DuplicateOrderConflicts(t *testing.T) {
	h, mock, done := newProgramTest(t)
	defer done()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(model.PartitionCurrent, 1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"partition":"current","order":1,"title":"Dup"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.CreateProgram(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
