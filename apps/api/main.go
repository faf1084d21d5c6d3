package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/logopedika/kabinet/apps/api/echo"
	"github.com/logopedika/kabinet/core"
	"github.com/logopedika/kabinet/core/plan"
	"github.com/logopedika/kabinet/core/progress"
	"github.com/logopedika/kabinet/core/report"
	"github.com/logopedika/kabinet/core/schedule"
	"github.com/logopedika/kabinet/core/snapshot"
	"github.com/logopedika/kabinet/core/student"
	"github.com/logopedika/kabinet/core/user"
	emailsvc "github.com/logopedika/kabinet/services/email"
	logsvc "github.com/logopedika/kabinet/services/logger"
	"github.com/logopedika/kabinet/storage/database"
	pgrepos "github.com/logopedika/kabinet/storage/database/postgres"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)

	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!(conf.Debug || conf.TestMode))

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	usrRepo := pgrepos.NewUserRepository(db)
	stdRepo := pgrepos.NewStudentRepository(db)
	planRepo := pgrepos.NewPlanRepository(db)
	schedRepo := pgrepos.NewScheduleRepository(db)
	progRepo := pgrepos.NewProgressRepository(db)

	usrSvc := user.NewService(conf, usrRepo, mailSvc)
	stdSvc := student.NewService(stdRepo)
	planSvc := plan.NewService(planRepo)
	schedSvc := schedule.NewService(schedRepo, stdSvc)
	progSvc := progress.NewService(progRepo, stdSvc, planSvc)
	snapSvc := snapshot.NewService(stdRepo, schedRepo, planRepo, progRepo)
	reportSvc := report.NewService(conf, schedSvc, stdSvc, progSvc, mailSvc)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:        conf.Server.Address(),
			Conf:           conf,
			Logger:         logger,
			Validate:       validate,
			Translator:     translator,
			UserSvc:        usrSvc,
			StudentSvc:     stdSvc,
			PlanSvc:        planSvc,
			ScheduleSvc:    schedSvc,
			ProgressSvc:    progSvc,
			SnapshotSvc:    snapSvc,
			ReportSvc:      reportSvc,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		},
	)
	go app.Start()

	<-shutdown
	std.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		std.Fatalf("graceful shutdown failed: %v", err)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
