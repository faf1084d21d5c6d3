package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/logopedika/kabinet/core"
	"github.com/logopedika/kabinet/core/plan"
	"github.com/logopedika/kabinet/core/progress"
	"github.com/logopedika/kabinet/core/report"
	"github.com/logopedika/kabinet/core/schedule"
	"github.com/logopedika/kabinet/core/snapshot"
	"github.com/logopedika/kabinet/core/student"
	"github.com/logopedika/kabinet/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc     *user.Service
		StudentSvc  *student.Service
		PlanSvc     *plan.Service
		ScheduleSvc *schedule.Service
		ProgressSvc *progress.Service
		SnapshotSvc *snapshot.Service
		ReportSvc   *report.Service

		// SignalShutdown is called when an unrecoverable error is caught.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerUserAPI(v1, jwt, conf, s.opts.UserSvc, s.opts.Validate)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc, s.opts.ProgressSvc, s.opts.Validate)
	registerPlanAPI(v1, jwt, s.opts.PlanSvc, s.opts.Validate)
	registerScheduleAPI(v1, jwt, s.opts.ScheduleSvc, s.opts.Validate)
	registerProgressAPI(v1, jwt, s.opts.ProgressSvc, s.opts.Validate)
	registerSnapshotAPI(v1, jwt, s.opts.SnapshotSvc)
	registerReportAPI(v1, jwt, s.opts.ReportSvc, s.opts.Validate)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Kabinet API!")
}
