package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dashreel/dashreel/color"
	"github.com/dashreel/dashreel/config"
	"github.com/dashreel/dashreel/drive"
	"github.com/dashreel/dashreel/handover"
	"github.com/dashreel/dashreel/history"
	"github.com/dashreel/dashreel/icon"
	"github.com/dashreel/dashreel/key"
	"github.com/dashreel/dashreel/log"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/metrics"
	"github.com/dashreel/dashreel/monitor"
	"github.com/dashreel/dashreel/player"
	"github.com/dashreel/dashreel/queue"
	"github.com/dashreel/dashreel/resolve"
	"github.com/dashreel/dashreel/session"
	"github.com/dashreel/dashreel/strategy"
	"github.com/dashreel/dashreel/style"
	"github.com/dashreel/dashreel/tui"
	"github.com/dashreel/dashreel/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("mode", "m", "", "Queue mode: sequential, loop or shuffle")
	lo.Must0(playCmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.QueueModes, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.QueueMode, playCmd.Flags().Lookup("mode")))

	playCmd.Flags().StringP("match", "f", "", "Only play items whose name fuzzy matches the pattern")
	playCmd.Flags().Bool("no-tui", false, "Print notices instead of showing the player view")
	playCmd.Flags().BoolP("exit", "x", false, "Close the player view when the queue is exhausted")

	playCmd.Flags().String("metrics-addr", "", "Serve prometheus metrics on this address")
	lo.Must0(viper.BindPFlag(key.MetricsAddr, playCmd.Flags().Lookup("metrics-addr")))

	playCmd.Flags().String("drive-signal", "", "File reporting the driving state")
	lo.Must0(viper.BindPFlag(key.DriveSignalPath, playCmd.Flags().Lookup("drive-signal")))
}

var playCmd = &cobra.Command{
	Use:   "play [paths, urls or playlists...]",
	Short: "Play a queue of videos and images",
	Long: `Play a queue of videos and images.
Every video is sent to the backend the strategy chain picks for it.
When that backend cannot decode the video, playback is handed over to the other one once.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(runPlay(cmd, args))
	},
}

func runPlay(cmd *cobra.Command, args []string) error {
	if err := config.Validate(); err != nil {
		return err
	}

	items, err := queue.Load(args)
	if err != nil {
		return err
	}

	if pattern := lo.Must(cmd.Flags().GetString("match")); pattern != "" {
		items = queue.Match(items, pattern)
	}

	if len(items) == 0 {
		return errors.New("nothing to play")
	}

	mode, err := queue.ParseMode(viper.GetString(key.QueueMode))
	if err != nil {
		return err
	}
	q := queue.New(items, mode)

	chain, err := strategy.Default()
	if err != nil {
		return err
	}

	CheckDependencies(chain.Backends())

	backends, err := player.NewAll(chain.Backends())
	if err != nil {
		return err
	}
	defer func() {
		for id, b := range backends {
			if err := b.Close(); err != nil {
				log.Errorf("close %s: %s", id, err)
			}
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := drive.Init(ctx); err != nil {
		return err
	}
	defer drive.Teardown()

	s, err := session.New(session.Options{
		Chain:         chain,
		Backends:      backends,
		Queue:         q,
		Resolver:      resolve.New(),
		Monitor:       monitor.New(monitor.DefaultThresholds(), monitor.SystemClock),
		Controller:    handover.New(chain, handover.DefaultBudgets()),
		Clock:         monitor.SystemClock,
		Reporter:      history.Recorder{},
		Driving:       drive.Source{},
		Observer:      metrics.Observer{},
		Viewer:        backends[strategy.RobustBackend],
		ImageDuration: config.Millis(key.PlayerImageDuration),
	})
	if err != nil {
		return err
	}

	log.Infof("session %s: %s in %s mode", s.ID(), util.Quantify(q.Len(), "item", "items"), mode)

	return play(ctx, s, q, playOptions{
		headless: lo.Must(cmd.Flags().GetBool("no-tui")),
		exit:     lo.Must(cmd.Flags().GetBool("exit")),
	})
}

type playOptions struct {
	headless bool
	exit     bool
}

// play runs the session alongside its view and the metrics server until one of them ends the run.
func play(ctx context.Context, s *session.Session, q *queue.Queue, options playOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.Run(ctx)
		if options.headless {
			cancel()
		}
		return ignoreCanceled(err)
	})

	if addr := viper.GetString(key.MetricsAddr); addr != "" {
		g.Go(func() error {
			log.Infof("serving metrics on %s", addr)
			return metrics.Serve(ctx, addr)
		})
	}

	g.Go(func() error {
		defer cancel()
		if options.headless {
			printNotices(ctx, s)
			return nil
		}
		return tui.Run(ctx, &tui.Options{Session: s, Queue: q, QuitOnDone: options.exit})
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// printNotices reports the session on stdout until it is done.
func printNotices(ctx context.Context, s *session.Session) {
	var shown *media.Item

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Done():
			fmt.Printf("%s queue finished\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		case snap := <-s.Updates():
			if snap.Item == nil || snap.Item == shown {
				continue
			}
			shown = snap.Item
			if snap.Item.IsVideo() {
				fmt.Printf("%s %s %s\n", icon.Get(icon.Play), snap.Item.Name, style.Faint("on "+snap.Backend))
			} else {
				fmt.Printf("%s %s\n", icon.Get(icon.Image), snap.Item.Name)
			}
		case notice := <-s.Notices():
			printNotice(notice)
		}
	}
}

func printNotice(n session.Notice) {
	switch n.Kind {
	case handover.Abort:
		fmt.Printf("%s %s is unplayable: %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), n.Item.Name, n.Reason)
	case handover.Switch:
		fmt.Printf("%s %s handed over: %s\n", style.Fg(color.Yellow)(icon.Get(icon.Handover)), n.Item.Name, n.Reason)
	default:
		if n.Reason != "" {
			log.Debugf("%s: %s", n.Item, n.Reason)
		}
	}
}
