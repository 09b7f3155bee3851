package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/stiedi/internal/config"
	"github.com/danmuck/stiedi/internal/logging"
	"github.com/danmuck/stiedi/internal/observability"
	"github.com/danmuck/stiedi/internal/protocol/edi"
	"github.com/danmuck/stiedi/internal/sti"
	"github.com/rs/zerolog/log"
)

func main() {
	cfgPath := flag.String("config", "cmd/stiedi/config.toml", "path to stiedi config")
	template := flag.String("template", "", "write a config template to this path (- for stdout) and exit")
	force := flag.Bool("force", false, "overwrite an existing template")
	output := flag.String("out", "-", "output file for raw AF packets, - for hex lines on stdout")
	frames := flag.Int("frames", 0, "number of frames to generate (overrides config)")
	pace := flag.Bool("pace", false, "emit one frame every 24ms")
	flag.Parse()

	logging.ConfigureRuntime()

	if *template != "" {
		if err := emitTemplate(os.Stdout, *template, *force); err != nil {
			log.Fatal().Err(err).Msg("write template")
		}
		return
	}

	cfg, err := config.LoadMuxConfig(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *frames > 0 {
		cfg.Frames = *frames
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	if err := run(ctx, cfg, *output, *pace); err != nil {
		log.Fatal().Err(err).Msg("stiedi failed")
	}
}

// emitTemplate writes the config template to path, or to w when path is "-".
func emitTemplate(w io.Writer, path string, force bool) error {
	if path == "-" {
		_, err := io.WriteString(w, config.Template())
		return err
	}
	if err := config.WriteTemplate(path, force); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("wrote config template")
	return nil
}

func run(ctx context.Context, cfg config.MuxConfig, output string, pace bool) (err error) {
	if output == "-" {
		return generate(ctx, cfg, os.Stdout, true, pace)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return generate(ctx, cfg, f, false, pace)
}

func generate(ctx context.Context, cfg config.MuxConfig, out io.Writer, hexLines, pace bool) error {
	bw := bufio.NewWriter(out)

	streams := make([]edi.TagSSm, 0, len(cfg.Streams))
	payloads := make([][]byte, 0, len(cfg.Streams))
	for _, s := range cfg.Streams {
		streams = append(streams, edi.TagSSm{TID: s.TID, TIDExt: s.TIDExt, CRCSTF: s.CRC, STID: s.STID, ID: s.ID})
		// Audio and data encoding happen upstream; the generator carries silence.
		payloads = append(payloads, make([]byte, s.Size))
	}

	asm := sti.NewAssembler(sti.Options{
		Protocol:     cfg.Protocol,
		TAIUTCOffset: cfg.TAIUTCOffset,
		ATST:         cfg.ATST,
		STIHeader:    cfg.STIHeader,
		STAT:         cfg.STAT,
		SPID:         cfg.SPID,
		PadTo:        cfg.PadTo,
		StartDFLC:    cfg.StartDFLC,
		StartSeq:     cfg.StartSeq,
		Logger:       log.Logger,
	}, streams)

	var tick <-chan time.Time
	if pace {
		ticker := time.NewTicker(sti.FrameDuration)
		defer ticker.Stop()
		tick = ticker.C
	}

	written := 0
	for ; written < cfg.Frames; written++ {
		if tick != nil {
			select {
			case <-ctx.Done():
			case <-tick:
			}
		}
		if ctx.Err() != nil {
			break
		}

		frame, err := asm.Next(payloads)
		if err != nil {
			return err
		}
		if hexLines {
			_, err = bw.WriteString(hex.EncodeToString(frame.Packet) + "\n")
		} else {
			_, err = bw.Write(frame.Packet)
		}
		if err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	log.Info().Int("frames", written).Bool("hex", hexLines).Msg("frames written")
	return nil
}

func serveMetrics(addr string) {
	r := observability.NewMetricsRouter(log.Logger)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	log.Info().Str("addr", addr).Msg("metrics listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
