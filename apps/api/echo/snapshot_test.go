package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logopedika/kabinet/core/progress"
	"github.com/logopedika/kabinet/core/schedule"
	"github.com/logopedika/kabinet/core/snapshot"
	"github.com/logopedika/kabinet/core/student"
)

func exportDoc(t *testing.T, app *testApp, token string) snapshot.Document {
	t.Helper()

	req, rec := newAuthRequest(http.MethodGet, "/v1/snapshot", token)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc snapshot.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}

func Test_snapshotApi_exportEmpty(t *testing.T) {
	app := setup(t)
	usr := createUser(t, app, "Ms Owner", "msowner", "owner@kabinet.test", "SecretPwd!", true)
	token := getToken(t, app, usr)

	doc := exportDoc(t, app, token)
	assert.Empty(t, doc.Students)
	assert.Empty(t, doc.StudentProgress)
	require.Len(t, doc.Schedule, len(schedule.Days))
	for _, cells := range doc.Schedule {
		require.Len(t, cells, schedule.SlotsPerDay)
	}
	require.Len(t, doc.PlanTemplates, 6)
	for key, texts := range doc.PlanTemplates {
		assert.Empty(t, texts, "slot %s", key)
	}
}

func Test_snapshotApi_importRoundTrip(t *testing.T) {
	app := setup(t)
	usr := createUser(t, app, "Ms Owner", "msowner", "owner@kabinet.test", "SecretPwd!", true)
	token := getToken(t, app, usr)

	doc := snapshot.Document{
		Students: []student.Student{
			{ID: "s1", Name: "Ana", Grade: "2A", PlanType: 2},
			{ID: "s2", Name: "Boris", Grade: "3B", PlanType: 1},
		},
		Schedule: map[schedule.Day][][]string{
			// references to students missing from the roster are dropped
			schedule.Monday: {{"s1", "ghost"}, {}, {"s2"}},
		},
		PlanTemplates: map[string][]string{
			"2": {"r sound", "l sound"},
		},
		StudentProgress: map[string]map[string]progress.Record{
			"s1":    {"0": {Completed: true, Date: "05.03.2026", Time: "08:00 - 08:20"}},
			"ghost": {"1": {Completed: true, Date: "06.03.2026"}},
		},
	}

	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, SuccessResponse{Success: "Snapshot imported."}),
	}
	req, rec := newAuthRequest(http.MethodPost, "/v1/snapshot", token, marchallObj(t, doc))
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	out := exportDoc(t, app, token)

	require.Len(t, out.Students, 2)
	assert.Equal(t, "Ana", out.Students[0].Name)
	assert.Equal(t, "Boris", out.Students[1].Name)

	assert.Equal(t, [][]string{{"s1"}, {}, {"s2"}, {}, {}}, out.Schedule[schedule.Monday])
	assert.Equal(t, []string{"r sound", "l sound"}, out.PlanTemplates["2"])
	assert.Empty(t, out.PlanTemplates["1"])

	require.Len(t, out.StudentProgress, 1)
	require.Contains(t, out.StudentProgress, "s1")
	assert.Equal(t, progress.Record{Completed: true, Date: "05.03.2026", Time: "08:00 - 08:20"}, out.StudentProgress["s1"]["0"])
}

func Test_snapshotApi_partialImport(t *testing.T) {
	app := setup(t)
	usr := createUser(t, app, "Ms Owner", "msowner", "owner@kabinet.test", "SecretPwd!", true)
	token := getToken(t, app, usr)

	st := createStudent(t, app, usr.ID, "Ana", "2A", 1)

	// only plan templates: the roster must survive
	doc := snapshot.Document{PlanTemplates: map[string][]string{"1": {"r sound"}}}
	req, rec := newAuthRequest(http.MethodPost, "/v1/snapshot", token, marchallObj(t, doc))
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := exportDoc(t, app, token)
	require.Len(t, out.Students, 1)
	assert.Equal(t, st.ID, out.Students[0].ID)
	assert.Equal(t, []string{"r sound"}, out.PlanTemplates["1"])
}

func Test_snapshotApi_importRejectsMalformed(t *testing.T) {
	app := setup(t)
	usr := createUser(t, app, "Ms Owner", "msowner", "owner@kabinet.test", "SecretPwd!", true)
	token := getToken(t, app, usr)

	st := createStudent(t, app, usr.ID, "Ana", "2A", 1)

	tests := []httpTest{
		{
			name: "unknown plan slot",
			body: marchallObj(t, snapshot.Document{
				PlanTemplates: map[string][]string{"9": {"r sound"}},
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: `unknown plan slot "9"`}),
		},
		{
			name: "unknown day",
			body: marchallObj(t, snapshot.Document{
				Schedule: map[schedule.Day][][]string{"funday": {{}}},
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: `unknown day "funday"`}),
		},
		{
			name: "too many slots in a day",
			body: marchallObj(t, snapshot.Document{
				Schedule: map[schedule.Day][][]string{schedule.Monday: {{}, {}, {}, {}, {}, {}}},
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: `day "monday" has 6 slots, want at most 5`}),
		},
		{
			name: "bad progress index",
			body: marchallObj(t, snapshot.Document{
				StudentProgress: map[string]map[string]progress.Record{
					st.ID: {"x": {Completed: true}},
				},
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: `invalid activity index "x" for student ` + st.ID}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/snapshot", token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			// nothing was applied
			out := exportDoc(t, app, token)
			require.Len(t, out.Students, 1)
			assert.Empty(t, out.StudentProgress)
		})
	}
}
