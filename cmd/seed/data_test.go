package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/utils"
)

func TestTourRecord(t *testing.T) {
	raw := `{"_id":"5c88fa8cf4afda39709c2951","name":"The Forest Hiker","duration":5,
		"guides":["5c8a22c62f8fb814b56fa18b"],
		"startDates":["2021-04-25,10:00","2021-07-20T10:00:00.000Z","2022-01-05"]}`
	var rec tourRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	tour, err := rec.toModel()

	require.NoError(t, err)
	assert.Equal(t, "5c88fa8cf4afda39709c2951", tour.ID.Hex())
	assert.Equal(t, "The Forest Hiker", tour.Name)
	require.Len(t, tour.Guides, 1)
	assert.Equal(t, "5c8a22c62f8fb814b56fa18b", tour.Guides[0].Hex())
	require.Len(t, tour.StartDates, 3)
	assert.Equal(t, time.Date(2021, time.April, 25, 10, 0, 0, 0, time.UTC), tour.StartDates[0])
	assert.Equal(t, time.July, tour.StartDates[1].Month())
}

func TestTourRecord_BadDate(t *testing.T) {
	rec := tourRecord{StartDates: []string{"next spring"}}

	_, err := rec.toModel()

	assert.Error(t, err)
}

func TestUserRecord(t *testing.T) {
	var plain, hashed, inactive userRecord
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"5c8a1d5b0190b214360dc057","name":"Jonas","email":"admin@example.com","role":"admin","password":"test1234"}`), &plain))
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Sophie","email":"sophie@example.com","password":"$2a$12$Q0grHjH9PXc6SxivC8m12.2mZJ9BbKcgFpwSG4Y1ZEII8HJVzWeyS"}`), &hashed))
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Gone","email":"gone@example.com","password":"test1234","active":false}`), &inactive))

	u, err := plain.toModel(4)
	require.NoError(t, err)
	assert.Equal(t, "5c8a1d5b0190b214360dc057", u.ID.Hex())
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.True(t, u.Active)
	assert.True(t, utils.VerifyPassword(u.Password, "test1234"))

	u, err = hashed.toModel(4)
	require.NoError(t, err)
	assert.Equal(t, "$2a$12$Q0grHjH9PXc6SxivC8m12.2mZJ9BbKcgFpwSG4Y1ZEII8HJVzWeyS", u.Password)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.True(t, u.ID.IsZero())

	u, err = inactive.toModel(4)
	require.NoError(t, err)
	assert.False(t, u.Active)
}

func TestReadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reviews.json"),
		[]byte(`[{"_id":"5c8a34ed14eb5c17645c9108","review":"Cras mollis nisi","rating":5,`+
			`"user":"5c8a1dfa2f8fb814b56fa181","tour":"5c88fa8cf4afda39709c2955"}]`), 0o600))

	var recs []reviewRecord
	require.NoError(t, readJSON(dir, "reviews.json", &recs))
	require.Len(t, recs, 1)
	rv, err := recs[0].toModel()
	require.NoError(t, err)
	assert.Equal(t, "5c8a34ed14eb5c17645c9108", rv.ID.Hex())
	assert.Equal(t, "5c88fa8cf4afda39709c2955", rv.Tour.Hex())
	assert.Equal(t, 5.0, rv.Rating)

	assert.Error(t, readJSON(dir, "missing.json", &recs))
}
