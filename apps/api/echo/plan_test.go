package echoapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/logopedika/kabinet/core/plan"
)

func Test_planApi_queryAll(t *testing.T) {
	app := setup(t)
	usr := createUser(t, app, "Ms Owner", "msowner", "owner@kabinet.test", "SecretPwd!", true)
	token := getToken(t, app, usr)

	// all 6 slots are always present, empty or not
	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, map[string][]plan.Activity{
			"1": {}, "2": {}, "3": {}, "4": {}, "5": {}, "6": {},
		}),
	}
	req, rec := newAuthRequest(http.MethodGet, "/v1/plans", token)
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_planApi_addAndQuery(t *testing.T) {
	app := setup(t)
	usr := createUser(t, app, "Ms Owner", "msowner", "owner@kabinet.test", "SecretPwd!", true)
	token := getToken(t, app, usr)

	tests := []httpTest{
		{
			name:     "non-numeric plan type",
			method:   http.MethodPost,
			path:     "/v1/plans/abc",
			body:     marchallObj(t, AddActivityRequest{Text: "r sound"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"planType": "must be an integer"}),
		},
		{
			name:     "plan type out of range",
			method:   http.MethodPost,
			path:     "/v1/plans/0",
			body:     marchallObj(t, AddActivityRequest{Text: "r sound"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"planType": "invalid plan type 0"}),
		},
		{
			name:     "blank text",
			method:   http.MethodPost,
			path:     "/v1/plans/2",
			body:     marchallObj(t, AddActivityRequest{Text: "   "}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"activity_text": "this field is required"}),
		},
		{
			name:     "first activity",
			method:   http.MethodPost,
			path:     "/v1/plans/2",
			body:     marchallObj(t, AddActivityRequest{Text: " r sound "}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, plan.Activity{PlanType: 2, Index: 0, Text: "r sound"}),
		},
		{
			name:     "appends at the end",
			method:   http.MethodPost,
			path:     "/v1/plans/2",
			body:     marchallObj(t, AddActivityRequest{Text: "l sound"}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, plan.Activity{PlanType: 2, Index: 1, Text: "l sound"}),
		},
		{
			name:     "slots are independent",
			method:   http.MethodGet,
			path:     "/v1/plans/3",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []plan.Activity{}),
		},
		{
			name:     "query slot",
			method:   http.MethodGet,
			path:     "/v1/plans/2",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []plan.Activity{
				{PlanType: 2, Index: 0, Text: "r sound"},
				{PlanType: 2, Index: 1, Text: "l sound"},
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_planApi_replaceDeleteClear(t *testing.T) {
	app := setup(t)
	usr := createUser(t, app, "Ms Owner", "msowner", "owner@kabinet.test", "SecretPwd!", true)
	token := getToken(t, app, usr)

	tests := []httpTest{
		{
			name:     "replace trims and drops blank lines",
			method:   http.MethodPut,
			path:     "/v1/plans/1",
			body:     marchallObj(t, ReplaceActivitiesRequest{Activities: []string{" r sound ", "", "l sound", "  ", "s sound"}}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []plan.Activity{
				{PlanType: 1, Index: 0, Text: "r sound"},
				{PlanType: 1, Index: 1, Text: "l sound"},
				{PlanType: 1, Index: 2, Text: "s sound"},
			}),
		},
		{
			name:     "delete unknown index",
			method:   http.MethodDelete,
			path:     "/v1/plans/1/activities/5",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "activity not found"}),
		},
		{
			name:     "delete shifts subsequent indices down",
			method:   http.MethodDelete,
			path:     "/v1/plans/1/activities/0",
			wantCode: http.StatusNoContent,
		},
		{
			name:     "reindexed",
			method:   http.MethodGet,
			path:     "/v1/plans/1",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []plan.Activity{
				{PlanType: 1, Index: 0, Text: "l sound"},
				{PlanType: 1, Index: 1, Text: "s sound"},
			}),
		},
		{
			name:     "clear",
			method:   http.MethodDelete,
			path:     "/v1/plans/1",
			wantCode: http.StatusNoContent,
		},
		{
			name:     "cleared",
			method:   http.MethodGet,
			path:     "/v1/plans/1",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []plan.Activity{}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func newSheetUpload(t *testing.T, token, path string, rows [][]interface{}) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "plan.xlsx")
	require.NoError(t, err)
	_, err = part.Write(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func Test_planApi_importSheet(t *testing.T) {
	app := setup(t)
	usr := createUser(t, app, "Ms Owner", "msowner", "owner@kabinet.test", "SecretPwd!", true)
	token := getToken(t, app, usr)

	t.Run("file is required", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "this field is required"}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/plans/1/import", token)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("not a spreadsheet", func(t *testing.T) {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("file", "plan.xlsx")
		require.NoError(t, err)
		_, err = part.Write([]byte("definitely not a workbook"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/plans/1/import", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("reads the designated column, skips unusable rows", func(t *testing.T) {
		req, rec := newSheetUpload(t, token, "/v1/plans/1/import?column=1", [][]interface{}{
			{"1", "r sound", "week 1"},
			{"2", "  l sound  "},
			{"3"},        // column missing
			{"4", "   "}, // blank
			{"5", "s sound"},
		})
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []plan.Activity{
				{PlanType: 1, Index: 0, Text: "r sound"},
				{PlanType: 1, Index: 1, Text: "l sound"},
				{PlanType: 1, Index: 2, Text: "s sound"},
			}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("import replaces, not appends", func(t *testing.T) {
		req, rec := newSheetUpload(t, token, "/v1/plans/1/import", [][]interface{}{
			{"sh sound"},
		})
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []plan.Activity{{PlanType: 1, Index: 0, Text: "sh sound"}}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("nothing usable", func(t *testing.T) {
		req, rec := newSheetUpload(t, token, "/v1/plans/1/import?column=4", [][]interface{}{
			{"only", "two", "columns"},
		})
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: plan.ErrNoActivities.Error()}),
		}
		checkCodeAndData(t, tt, rec)

		// the stored slot is untouched
		req2, rec2 := newAuthRequest(http.MethodGet, "/v1/plans/1", token)
		app.server.ServeHTTP(rec2, req2)
		var activities []plan.Activity
		require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &activities))
		require.Len(t, activities, 1)
		assert.Equal(t, "sh sound", activities[0].Text)
	})

	t.Run("invalid column", func(t *testing.T) {
		req, rec := newSheetUpload(t, token, fmt.Sprintf("/v1/plans/1/import?column=%d", -1), [][]interface{}{{"x"}})
		app.server.ServeHTTP(rec, req)

		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"column": "must be a non-negative integer"}),
		}
		checkCodeAndData(t, tt, rec)
	})
}
