/* handle_test.go
 * Contains unit tests for handle.go
 */

package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"torneos-admin/api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRecord_StringKeyMeansUpdate(t *testing.T) {
	api, c := newFakeAPI(t)
	slice := New(c, zonesDef(), nil)
	slice.Hydrate([]models.Zone{{ID: 5, Nombre: "Zona A"}}, 1, 1, 10, time.Time{})
	api.respond(http.StatusOK, `{"id":5,"nombre":"Zona A2","codcantfechas":8}`)

	saved, err := slice.SaveRecord(context.Background(), Record{"id": "5", "nombre": "Zona A2", "codcantfechas": float64(8)})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, api.last().Method)
	assert.Equal(t, "/api/zonas/5", api.last().Path)
	assert.Equal(t, float64(5), saved["id"])
	assert.Equal(t, "Zona A2", saved["nombre"])
}

func TestSaveRecord_EmptyKeyMeansCreate(t *testing.T) {
	api, c := newFakeAPI(t)
	slice := New(c, zonesDef(), nil)
	api.respond(http.StatusCreated, `{"id":1,"nombre":"Zona A"}`)

	_, err := slice.SaveRecord(context.Background(), Record{"id": "", "nombre": "Zona A"})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, api.last().Method)
	assert.Len(t, slice.Rows(), 1)
}

func TestSaveRecord_TypeMismatch(t *testing.T) {
	_, c := newFakeAPI(t)
	slice := New(c, zonesDef(), nil)

	_, err := slice.SaveRecord(context.Background(), Record{"codcantfechas": "diez"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "zonas")
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	_, c := newFakeAPI(t)
	source := New(c, teamsDef(), nil)
	fetched := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	source.Hydrate([]models.Team{{ID: 1, Nombre: "Los Pumas", Activo: true}}, 30, 2, 10, fetched)

	data, meta, err := source.Snapshot()
	require.NoError(t, err)

	target := New(c, teamsDef(), nil)
	require.NoError(t, target.Restore(data, meta))

	assert.Equal(t, source.Items(), target.Items())
	assert.Equal(t, 30, target.Meta().Total)
	assert.Equal(t, 2, target.Meta().Page)
	assert.Equal(t, fetched, target.Meta().FetchedAt)
}

func TestFindRecordAndLabel(t *testing.T) {
	_, c := newFakeAPI(t)
	slice := New(c, teamsDef(), nil)
	slice.Hydrate([]models.Team{{ID: 3, Nombre: "Deportivo Norte"}}, 1, 1, 10, time.Time{})

	rec, ok := slice.FindRecord(3)
	require.True(t, ok)
	assert.Equal(t, "Deportivo Norte", rec["nombre"])

	label, ok := slice.LabelOf(3)
	assert.True(t, ok)
	assert.Equal(t, "Deportivo Norte", label)

	_, ok = slice.FindRecord(4)
	assert.False(t, ok)
}

func TestKeyOf(t *testing.T) {
	cases := []struct {
		in      any
		want    int64
		wantErr bool
	}{
		{nil, 0, false},
		{"", 0, false},
		{" 12 ", 12, false},
		{float64(7), 7, false},
		{7.5, 0, true},
		{json.Number("9"), 9, false},
		{int(3), 3, false},
		{true, 0, true},
		{"abc", 0, true},
	}
	for _, tc := range cases {
		got, err := KeyOf(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %v", tc.in)
			continue
		}
		assert.NoError(t, err, "input %v", tc.in)
		assert.Equal(t, tc.want, got)
	}
}
