package locations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gridstock/frontend/grid"
	"gridstock/infrastructure/audit"
)

// moveRouter serves the move handler over a 2x2 grid holding product A at R1C1.
func moveRouter(t *testing.T, core zapcore.Core) (productID int64, move func(productID int64, location string) *httptest.ResponseRecorder) {
	t.Helper()
	db := openLocationsTestDB(t)
	r := chi.NewRouter()
	r.Post("/api/products/{id}/move", MoveProductCommandHandler(db, audit.NewService(), zap.New(core)))
	do := func(productID int64, location string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/products/"+strconv.FormatInt(productID, 10)+"/move",
			strings.NewReader(`{"location":"`+location+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}
	w := newWarehouse(t, db, 2, 2)
	return placeAt(t, db, w, "A", 1, 1), do
}

func TestMoveHandlerWarnsOnLargeGridGrowth(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	id, move := moveRouter(t, core)

	target := grid.MaxResizeStep + 10
	rec := move(id, "R"+strconv.Itoa(target)+"C1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body moveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, target-2, body.RowsAdded)

	warnings := logs.FilterMessage("move grew the grid past a single resize step").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(target-2), warnings[0].ContextMap()["rows_added"])
}

func TestMoveHandlerSmallGrowthDoesNotWarn(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	id, move := moveRouter(t, core)

	rec := move(id, "R5C2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Zero(t, logs.Len())
}
