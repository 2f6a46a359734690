package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"skej/src-cal/command"
	"skej/src-cal/metric"
	"skej/src-cal/registry"
	"skej/src-cal/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	script := flag.String("headless", "", "run the commands in this file and exit")
	metricsOn := flag.Bool("metrics", false, "serve Prometheus metrics on PORT")
	flag.Parse()

	config := utils.NewConfig()

	reg, err := registry.New(config.GetPolicy())
	if err != nil {
		slog.Error("can't build registry", "error", err)
		os.Exit(1)
	}

	// a default calendar so the shell is usable right away
	zone := config.GetLocation().String()
	if err := reg.Create("default", zone); err != nil {
		slog.Error("can't create default calendar", "zone", zone, "error", err)
		os.Exit(1)
	}
	if err := reg.Use("default"); err != nil {
		slog.Error("can't select default calendar", "error", err)
		os.Exit(1)
	}

	counters := metric.Init()
	if *metricsOn {
		go func() {
			muxer := http.NewServeMux()
			muxer.Handle("GET /metrics", promhttp.Handler())
			if err := http.ListenAndServe(":"+config.GetPort(), muxer); err != nil {
				slog.Error("cannot start metrics server", "error", err)
			}
		}()
	}

	shell := command.NewShell(reg, counters, os.Stdout)

	if *script != "" {
		file, err := os.Open(*script)
		if err != nil {
			slog.Error("can't open script", "path", *script, "error", err)
			os.Exit(1)
		}
		defer file.Close()
		if err := shell.RunScript(file); err != nil {
			slog.Error("script failed", "path", *script, "error", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("interactive mode, type `exit` to quit", "calendar", "default", "zone", zone)
	if err := shell.Run(os.Stdin); err != nil {
		slog.Error("shell error", "error", err)
		os.Exit(1)
	}
}
