package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/camtune/internal/capture"
	"github.com/smazurov/camtune/internal/config"
	"github.com/smazurov/camtune/internal/hints"
	"github.com/smazurov/camtune/internal/logging"
	"github.com/smazurov/camtune/internal/media"
	"github.com/smazurov/camtune/internal/negotiate"
)

// CreateNegotiateCmd creates the negotiate command.
func CreateNegotiateCmd() *cobra.Command {
	var facing string
	var platform string
	var hold time.Duration
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "negotiate",
		Short: "Negotiate the best verified resolution once",
		Long: `Acquires the camera for the given facing mode, walks the resolution tiers until one ` +
			`delivers live frames at the reported size, prints the result and records the winning tier ` +
			`in the hints file. With --hold the stream stays open for the given duration.`,
		Args: cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, opts *config.Options) {
			req, err := parseNegotiateFlags(facing, platform, opts)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(2)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runNegotiate(ctx, os.Stdout, opts, req, hold, asJSON); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				stop()
				os.Exit(1)
			}
		}),
	}

	cmd.Flags().StringVar(&facing, "facing", "back", "Facing mode: front, back, user or environment")
	cmd.Flags().StringVar(&platform, "platform", "", "Platform class (ios, mobile, desktop); defaults to camera.platform")
	cmd.Flags().DurationVar(&hold, "hold", 0, "Keep the negotiated stream open for this long")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

type negotiateRequest struct {
	Facing   media.FacingRequest
	Platform media.PlatformClass
}

func parseNegotiateFlags(facing, platform string, opts *config.Options) (negotiateRequest, error) {
	f, err := media.ParseFacing(facing)
	if err != nil {
		return negotiateRequest{}, err
	}

	var p media.PlatformClass
	if platform != "" {
		p, err = media.ParsePlatform(platform)
	} else {
		p, err = opts.Platform()
	}
	if err != nil {
		return negotiateRequest{}, err
	}
	return negotiateRequest{Facing: f, Platform: p}, nil
}

func runNegotiate(ctx context.Context, w io.Writer, opts *config.Options, req negotiateRequest, hold time.Duration, asJSON bool) error {
	logger := logging.GetLogger("capture")

	store := hints.NewTOML(opts.HintsFile)
	if err := store.Load(); err != nil {
		logger.Warn("Failed to load hints, starting empty", "file", opts.HintsFile, "error", err)
	}

	ctrl := NewController(opts, config.NewLiveCamera(opts.Camera()), nil, store)
	defer ctrl.Close()

	info, err := ctrl.Negotiate(ctx, req.Facing, req.Platform)
	if err != nil {
		snap := ctrl.Snapshot()
		return fmt.Errorf("%w (camera %s, weak resolution %t)", err, snap.Camera, snap.WeakResolution)
	}

	if err := printResult(w, info, asJSON); err != nil {
		return err
	}

	if hold > 0 {
		logger.Info("Holding stream", "duration", hold)
		timer := time.NewTimer(hold)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}
	return nil
}

func printResult(w io.Writer, info capture.StreamInfo, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	tier := info.Tier
	if info.Fallback {
		tier = "fallback"
	}
	_, err := fmt.Fprintf(w, "facing=%s platform=%s facing_mode=%s tier=%s size=%dx%d\n",
		info.Facing, info.Platform, negotiate.NormalizeFacing(info.Facing, info.Platform), tier, info.Width, info.Height)
	return err
}
