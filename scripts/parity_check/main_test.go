package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBodiesEqualIgnoresVolatileKeysAndNumericStrings(t *testing.T) {
	ignored := map[string]struct{}{"_id": {}, "id": {}, "createdAt": {}}
	legacy := []byte(`{"_id":"abc","studentId":"101","percentage":"75.00","createdAt":"x"}`)
	current := []byte(`{"id":"uuid","studentId":"101","percentage":75.00,"createdAt":"y"}`)
	assert.True(t, bodiesEqual(current, legacy, ignored))

	other := []byte(`{"id":"uuid","studentId":"102","percentage":75}`)
	assert.False(t, bodiesEqual(other, legacy, ignored))
}

func TestBodiesEqualPlainText(t *testing.T) {
	assert.True(t, bodiesEqual([]byte("ok\n"), []byte("ok"), nil))
}

func TestDefaultTargetsUseDayMonth(t *testing.T) {
	targets := defaultTargets("101", "2024-03-04")
	assert.Equal(t, "/attendance/monthly/101/3/2024", targets[2].Path)
	assert.Equal(t, "/attendance/date/2024-03-04", targets[1].Path)
}

func TestCompareFlagsStatusMismatch(t *testing.T) {
	goSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Student Card not found"}`))
	}))
	defer goSrv.Close()
	legacySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Student Card not found"}`))
	}))
	defer legacySrv.Close()

	res := compare(goSrv.Client(), goSrv.URL, legacySrv.URL, target{Path: "student-cards/1"}, nil)
	assert.NoError(t, res.Err)
	assert.False(t, res.StatusMatch)
	assert.True(t, res.BodyMatch)
}
