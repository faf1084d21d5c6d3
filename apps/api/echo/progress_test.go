package echoapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/logopedika/kabinet/core/progress"
)

func Test_progressApi_setCompleted(t *testing.T) {
	app := setup(t)
	usr := createUser(t, app, "Ms Owner", "msowner", "owner@kabinet.test", "SecretPwd!", true)
	token := getToken(t, app, usr)
	st := createStudent(t, app, usr.ID, "Ana", "2A", 1)

	progress.NowFunc = func() time.Time { return time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC) }
	defer func() { progress.NowFunc = time.Now }()

	tests := []httpTest{
		{
			name:     "missing student id",
			body:     marchallObj(t, SetCompletedRequest{ActivityIndex: 0, Completed: true}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_id": "this field is required"}),
		},
		{
			name:     "unknown student",
			body:     marchallObj(t, SetCompletedRequest{StudentID: "ghost", Completed: true}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name:     "completing stamps the current date",
			body:     marchallObj(t, SetCompletedRequest{StudentID: st.ID, ActivityIndex: 2, Completed: true}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, progress.Record{Completed: true, Date: "05.03.2026"}),
		},
		{
			name:     "un-completing deletes the record",
			body:     marchallObj(t, SetCompletedRequest{StudentID: st.ID, ActivityIndex: 2, Completed: false}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, progress.Record{}),
		},
		{
			name:     "un-completing an absent record is a no-op",
			body:     marchallObj(t, SetCompletedRequest{StudentID: st.ID, ActivityIndex: 4, Completed: false}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, progress.Record{}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/progress/completed", token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// absence of a record means "not completed"
	recs, err := app.prgSvc.ByStudent(context.Background(), usr.ID, st.ID)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func Test_progressApi_setDateAndTime(t *testing.T) {
	app := setup(t)
	usr := createUser(t, app, "Ms Owner", "msowner", "owner@kabinet.test", "SecretPwd!", true)
	token := getToken(t, app, usr)
	st := createStudent(t, app, usr.ID, "Ana", "2A", 1)

	tests := []httpTest{
		{
			name:     "date alone does not complete",
			path:     "/v1/progress/date",
			body:     marchallObj(t, SetDateRequest{StudentID: st.ID, ActivityIndex: 0, Date: "12.03.2026"}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, progress.Record{Completed: false, Date: "12.03.2026"}),
		},
		{
			name:     "date plus time completes",
			path:     "/v1/progress/time",
			body:     marchallObj(t, SetTimeRequest{StudentID: st.ID, ActivityIndex: 0, Time: "08:00 - 08:20"}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, progress.Record{Completed: true, Date: "12.03.2026", Time: "08:00 - 08:20"}),
		},
		{
			name:     "time alone does not complete",
			path:     "/v1/progress/time",
			body:     marchallObj(t, SetTimeRequest{StudentID: st.ID, ActivityIndex: 1, Time: "08:45 - 09:05"}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, progress.Record{Completed: false, Time: "08:45 - 09:05"}),
		},
		{
			name:     "unknown student",
			path:     "/v1/progress/date",
			body:     marchallObj(t, SetDateRequest{StudentID: "ghost", Date: "12.03.2026"}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_progressApi_monthly(t *testing.T) {
	app := setup(t)
	usr := createUser(t, app, "Ms Owner", "msowner", "owner@kabinet.test", "SecretPwd!", true)
	token := getToken(t, app, usr)
	ctx := context.Background()

	ana := createStudent(t, app, usr.ID, "Ana", "2A", 1)
	boris := createStudent(t, app, usr.ID, "Boris", "3B", 2)

	_, err := app.planSvc.Replace(ctx, usr.ID, 1, []string{"r sound", "l sound", "s sound", "sh sound"})
	require.NoError(t, err)
	_, err = app.planSvc.Replace(ctx, usr.ID, 2, []string{"breathing"})
	require.NoError(t, err)

	setDone := func(stID string, idx int, date, tm string) {
		_, err := app.prgSvc.SetDate(ctx, usr.ID, stID, idx, date)
		require.NoError(t, err)
		_, err = app.prgSvc.SetTime(ctx, usr.ID, stID, idx, tm)
		require.NoError(t, err)
	}
	// out of order on purpose: the summary sorts by date
	setDone(ana.ID, 2, "20.03.2026", "09:40 - 10:00")
	setDone(ana.ID, 0, "5.3.2026", "08:00 - 08:20") // unpadded dates still parse
	setDone(ana.ID, 1, "10.04.2026", "08:45 - 09:05")
	// orphaned index: template has 4 activities
	_, err = app.prgSvc.SetDate(ctx, usr.ID, ana.ID, 9, "15.03.2026")
	require.NoError(t, err)
	_, err = app.prgSvc.SetTime(ctx, usr.ID, ana.ID, 9, "08:00 - 08:20")
	require.NoError(t, err)

	tests := []httpTest{
		{
			name:     "non-numeric month",
			path:     "/v1/progress/monthly/2026/march",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"month": "must be an integer"}),
		},
		{
			name:     "march",
			path:     "/v1/progress/monthly/2026/3",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []progress.StudentMonthly{
				{
					StudentID: ana.ID,
					Name:      "Ana",
					Grade:     "2A",
					PlanType:  1,
					Completed: []progress.MonthlyEntry{
						{Index: 0, Text: "r sound", Date: "5.3.2026", Time: "08:00 - 08:20"},
						{Index: 2, Text: "s sound", Date: "20.03.2026", Time: "09:40 - 10:00"},
					},
					TotalActivities: 4,
					Percentage:      50,
				},
				{
					StudentID:       boris.ID,
					Name:            "Boris",
					Grade:           "3B",
					PlanType:        2,
					Completed:       []progress.MonthlyEntry{},
					TotalActivities: 1,
					Percentage:      0,
				},
			}),
		},
		{
			name:     "april",
			path:     "/v1/progress/monthly/2026/4",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []progress.StudentMonthly{
				{
					StudentID: ana.ID,
					Name:      "Ana",
					Grade:     "2A",
					PlanType:  1,
					Completed: []progress.MonthlyEntry{
						{Index: 1, Text: "l sound", Date: "10.04.2026", Time: "08:45 - 09:05"},
					},
					TotalActivities: 4,
					Percentage:      25,
				},
				{
					StudentID:       boris.ID,
					Name:            "Boris",
					Grade:           "3B",
					PlanType:        2,
					Completed:       []progress.MonthlyEntry{},
					TotalActivities: 1,
					Percentage:      0,
				},
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
