package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchlistapp/watchlist-server/internal/errors"
)

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()

	Success(rec, map[string]any{"success": true, "count": 2}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["count"])
}

func TestErrorShape(t *testing.T) {
	rec := httptest.NewRecorder()

	BadRequest(rec, "Username is required", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Username is required", body["error"])
}

func TestHandleErrorDomainMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation maps to 400", errors.Validation("bad format"), http.StatusBadRequest},
		{"auth maps to 401", errors.AuthRequired("no cookie"), http.StatusUnauthorized},
		{"not found maps to 404", errors.NotFound("no anime found"), http.StatusNotFound},
		{"mutation maps to 502", errors.MutationFailed("entry not deleted"), http.StatusBadGateway},
		{"no cache maps to 500", errors.NoCache("no cached data found"), http.StatusInternalServerError},
		{"unknown maps to 500", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()

	Attachment(rec, "alice_anime_list.xml", "application/xml", []byte("<animeList/>"), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="alice_anime_list.xml"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "<animeList/>", rec.Body.String())
}
