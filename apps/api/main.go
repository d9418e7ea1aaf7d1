package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/classb/rollcall/apps/api/echo"
	"github.com/classb/rollcall/core"
	"github.com/classb/rollcall/core/attendance"
	emailsvc "github.com/classb/rollcall/services/email"
	logsvc "github.com/classb/rollcall/services/logger"
	sheetssvc "github.com/classb/rollcall/services/sheets"
	filekv "github.com/classb/rollcall/storage/kv/file"
	"github.com/classb/rollcall/storage/kv/inmem"
	pgkv "github.com/classb/rollcall/storage/kv/postgres"
	rediskv "github.com/classb/rollcall/storage/kv/redis"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	kvLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "KV : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	kvLogger.Enable(!conf.Debug)

	// set up the KV substrate
	kv, closeKV, err := setUpKV(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = closeKV(); err != nil {
			kvLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	attSvc := attendance.NewService(kv, kvLogger)
	sheetsSvc := sheetssvc.NewService(conf, logger, kv)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			AttSvc:     attSvc,
			MailSvc:    mailSvc,
			SheetsSvc:  sheetsSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpKV(conf *core.Config) (core.KV, func() error, error) {
	noop := func() error { return nil }

	switch conf.Storage.Backend {
	case "inmem":
		return inmem.New(), noop, nil
	case "file":
		kv, err := filekv.New(conf.Storage.DataDir)
		return kv, noop, err
	case "redis":
		kv, err := rediskv.New(conf)
		if err != nil {
			return nil, noop, err
		}
		return kv, kv.Close, nil
	case "postgres":
		kv, err := pgkv.New(conf)
		if err != nil {
			return nil, noop, err
		}
		return kv, kv.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown storage backend %q", conf.Storage.Backend)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
