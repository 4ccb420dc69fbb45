package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/coreman2200/ic60led/internal/bus"
	"github.com/coreman2200/ic60led/internal/config"
	"github.com/coreman2200/ic60led/internal/is31"
	"github.com/coreman2200/ic60led/internal/is31/is31test"
	"github.com/coreman2200/ic60led/internal/keymap"
	"github.com/coreman2200/ic60led/internal/led"
	"github.com/coreman2200/ic60led/internal/pin"
	"github.com/coreman2200/ic60led/internal/ws"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		busName    = flag.String("bus", "", "I2C bus name (overrides config)")
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
		simOnly    = flag.Bool("sim-only", false, "drive an in-memory chip instead of hardware")
		logLevel   = flag.String("log-level", "", "debug | info | warn | error")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	if *busName != "" {
		cfg.Bus.Name = *busName
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *simOnly {
		cfg.Driver = "sim"
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	// ---- Hardware ----
	if cfg.Driver != "sim" {
		if _, err := host.Init(); err != nil {
			log.Warn().Err(err).Msg("periph host init failed; falling back to sim")
			cfg.Driver = "sim"
		}
	}

	b, closeBus := openBus(cfg)
	defer closeBus()

	t := bus.New(b)
	t.Timeout = cfg.Timeout()
	speed := is31.Speed
	if cfg.Bus.SpeedHz > 0 {
		speed = physic.Frequency(cfg.Bus.SpeedHz) * physic.Hertz
	}
	if err := t.SetSpeed(speed); err != nil {
		log.Warn().Err(err).Str("speed", speed.String()).Msg("bus speed not applied")
	}

	dev := is31.New(t, &is31.Opts{Addr: cfg.Bus.Addr, Settle: cfg.Settle()})
	enable, closePin := openEnable(cfg)
	defer closePin()

	// ---- Controller & HTTP ----
	ctrl := led.New(dev, keymap.Infinity60(), &led.Options{
		QueueSize: cfg.QueueSize,
		BlinkRate: cfg.BlinkRate,
		Logger:    log.Logger,
	})
	backlight := led.NewBacklight(ctrl, cfg.Backlight)
	state := ws.NewState(ctrl, backlight, log.Logger)
	ctrl.OnFrame(state.Publish)
	ctrl.Boot(enable)
	backlight.Set(cfg.Backlight)

	var srv *http.Server
	if cfg.Addr != "" {
		srv = &http.Server{
			Addr:         cfg.Addr,
			Handler:      withCORS(state.Routes()),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.Addr).Str("driver", cfg.Driver).Msg("HTTP server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("http server crashed")
			}
		}()
	}

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")
	if srv != nil {
		_ = srv.Close()
	}
}

func openBus(cfg *config.Config) (i2c.Bus, func()) {
	if cfg.Driver != "sim" {
		bc, err := i2creg.Open(cfg.Bus.Name)
		if err == nil {
			log.Info().Str("bus", bc.String()).Msg("i2c bus opened")
			return bc, func() { _ = bc.Close() }
		}
		log.Warn().Err(err).Str("bus", cfg.Bus.Name).Msg("i2c open failed; falling back to sim")
		cfg.Driver = "sim"
	}
	return is31test.New(cfg.Bus.Addr), func() {}
}

func openEnable(cfg *config.Config) (is31.EnablePin, func()) {
	if cfg.Driver == "sim" {
		return &gpiotest.Pin{N: "SDB", Num: 16}, func() {}
	}
	if cfg.Enable.Chip != "" {
		l, err := pin.OpenLine(cfg.Enable.Chip, cfg.Enable.Offset)
		if err != nil {
			log.Warn().Err(err).Msg("enable line unavailable; chip may stay in shutdown")
			return nil, func() {}
		}
		return l, func() { _ = l.Close() }
	}
	if cfg.Enable.Pin == "" {
		return nil, func() {}
	}
	p, err := pin.Lookup(cfg.Enable.Pin)
	if err != nil {
		log.Warn().Err(err).Msg("enable pin unavailable; chip may stay in shutdown")
		return nil, func() {}
	}
	return p, func() {}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
