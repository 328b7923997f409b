package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"hotel_ops/internal/models"
	"hotel_ops/internal/service"

	"github.com/stretchr/testify/require"
)

func TestReportHandlers_CreateJSON(t *testing.T) {
	rep := &mockReports{report: models.ProblemReport{ID: "p1", Priority: models.PriorityUrgent}}
	r := newTestRouter(&service.Service{Reports: rep})

	w := doJSON(t, r, http.MethodPost, "/api/v1/reports", map[string]interface{}{
		"room_number":   "101",
		"description":   "Water leak under sink",
		"employee_name": "Ana",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, "101", rep.lastCreate.RoomNumber)
	require.Equal(t, "Water leak under sink", rep.lastCreate.Description)
	require.Nil(t, rep.lastCreate.Photo)
}

func TestReportHandlers_CreateMultipartWithPhoto(t *testing.T) {
	rep := &mockReports{report: models.ProblemReport{ID: "p1"}}
	r := newTestRouter(&service.Service{Reports: rep})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("is_general_report", "true"))
	require.NoError(t, mw.WriteField("location", "Lobby"))
	require.NoError(t, mw.WriteField("description", "Broken lamp"))

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="photo"; filename="lamp.jpg"`)
	hdr.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, _ = part.Write([]byte{0xff, 0xd8, 0xff})
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.True(t, rep.lastCreate.IsGeneralReport)
	require.Equal(t, "Lobby", rep.lastCreate.Location)
	require.Equal(t, []byte{0xff, 0xd8, 0xff}, rep.lastCreate.Photo)
	require.Equal(t, "image/jpeg", rep.lastCreate.PhotoContentType)
}

func TestReportHandlers_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		method string
		path   string
		err    error
		want   int
	}{
		{"invalid report", http.MethodPost, "/api/v1/reports", service.ErrInvalidReport, http.StatusBadRequest},
		{"no storage", http.MethodPost, "/api/v1/reports", service.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"resolve missing", http.MethodPost, "/api/v1/reports/p9/resolve", service.ErrReportNotFound, http.StatusNotFound},
		{"resolve twice", http.MethodPost, "/api/v1/reports/p1/resolve", service.ErrReportResolved, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Reports: &mockReports{err: tc.err}})
			w := doJSON(t, r, tc.method, tc.path, map[string]string{"description": "x"}, nil)
			require.Equal(t, tc.want, w.Code)
		})
	}
}

func TestReportHandlers_ListUnresolvedFilter(t *testing.T) {
	rep := &mockReports{reports: []models.ProblemReport{{ID: "p1"}}}
	r := newTestRouter(&service.Service{Reports: rep})

	w := doJSON(t, r, http.MethodGet, "/api/v1/reports?unresolved=true", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, rep.lastFilter.UnresolvedOnly)

	w = doJSON(t, r, http.MethodGet, "/api/v1/reports", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, rep.lastFilter.UnresolvedOnly)
}
