package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/roach88/bouttime/internal/config"
	"github.com/roach88/bouttime/internal/round"
	"github.com/roach88/bouttime/internal/sampler"
	"github.com/roach88/bouttime/internal/session"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Catalog string
	Rounds  int
	Seconds int
	Seed    uint64

	// Dotenv lists the dotenv files read before the environment.
	// Defaults to config.DefaultDotenv.
	Dotenv []string

	// Clock and Drawer override the real clock and the sampler (for testing).
	Clock  clockwork.Clock
	Drawer session.Drawer
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	return newPlayCommand(&PlayOptions{
		RootOptions: rootOpts,
		Dotenv:      []string{config.DefaultDotenv},
	})
}

func newPlayCommand(opts *PlayOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game in the terminal",
		Long: `Play a game of BoutTime.

Each round shows four events. Put them in chronological order, earliest
first, and submit before the countdown runs out.

Commands:
  swap A B    exchange the events in slots A and B
  up N        move the event in slot N up one slot
  down N      move the event in slot N down one slot
  submit      lock in the order (also: shake)
  info N      show the detail link of the event in slot N (after submitting)
  next        go to the next round
  again       start a new game after the last round
  board       show the current order
  quit        leave the game

Settings come from BOUTTIME_* environment variables or a .env file;
flags override them.

Examples:
  bouttime play
  bouttime play --rounds 3 --seconds 45
  bouttime play --catalog ./events.yaml --seed 7
  bouttime play --catalog ./catalog.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog file or SQLite database (default built-in)")
	cmd.Flags().IntVar(&opts.Rounds, "rounds", 0, "rounds per game (default BOUTTIME_ROUNDS or 6)")
	cmd.Flags().IntVar(&opts.Seconds, "seconds", 0, "seconds per round (default BOUTTIME_ROUND_SECONDS or 30)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "sampler seed; 0 picks a random one")

	return cmd
}

// playConfig merges the environment with any flags given on the command
// line.
func playConfig(opts *PlayOptions, cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(opts.Dotenv...)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Catalog = opts.Catalog
	}
	if flags.Changed("rounds") {
		cfg.Rounds = opts.Rounds
	}
	if flags.Changed("seconds") {
		cfg.RoundSeconds = opts.Seconds
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.Seed
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := playConfig(opts, cmd)
	if err != nil {
		return formatter.FailCode(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
	}
	level, _ := cfg.Level()
	logger := newLogger(cmd.ErrOrStderr(), level, opts.Verbose)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := LoadCatalog(ctx, cfg.Catalog)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to load catalog", err)
	}
	logger.Debug("catalog loaded", "source", cfg.Catalog, "events", cat.Len())

	con := newConsole(cmd.OutOrStdout(), opts.Format == "json", logger)
	sessOpts := []session.Option{
		session.WithLogger(logger),
		session.WithObserver(&consoleObserver{con: con}),
	}
	if opts.Clock != nil {
		sessOpts = append(sessOpts, session.WithClock(opts.Clock))
	}
	switch {
	case opts.Drawer != nil:
		sessOpts = append(sessOpts, session.WithDrawer(opts.Drawer))
	case cfg.Seed != 0:
		sessOpts = append(sessOpts, session.WithDrawer(sampler.NewSeeded(cfg.Seed)))
	}

	s, err := session.New(cat, sessOpts...)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to create session", err)
	}
	defer s.Close()

	p := &player{session: s, con: con, rounds: cfg.Rounds, seconds: cfg.RoundSeconds}
	if err := p.start(); err != nil {
		return formatter.Fail(ExitCommandError, "failed to start game", err)
	}

	lines := readLines(ctx, cmd.InOrStdin())
	for {
		select {
		case <-ctx.Done():
			logger.Info("interrupted, leaving game")
			p.farewell()
			return nil
		case line, ok := <-lines:
			if !ok {
				p.farewell()
				return nil
			}
			if p.exec(line) {
				p.farewell()
				return nil
			}
		}
	}
}

// readLines delivers input lines on a channel that is closed at EOF.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// player turns command lines into session operations. Slots are numbered
// from 1 on screen.
type player struct {
	session *session.Session
	con     *console
	rounds  int
	seconds int
}

func (p *player) start() error {
	return p.session.Start(p.rounds, p.seconds)
}

// exec runs one command line and reports whether the player quit.
func (p *player) exec(line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}

	var err error
	switch cmd, args := fields[0], fields[1:]; cmd {
	case "swap":
		var a, b int
		if a, b, err = twoSlots(args); err == nil {
			if err = p.session.Swap(a, b); err == nil {
				p.board()
			}
		}
	case "up", "down":
		var i int
		if i, err = oneSlot(args); err == nil {
			move := p.session.MoveUp
			if cmd == "down" {
				move = p.session.MoveDown
			}
			if err = move(i); err == nil {
				p.board()
			}
		}
	case "submit", "shake":
		_, err = p.session.Submit()
	case "next":
		err = p.session.Advance()
	case "info":
		var i int
		if i, err = oneSlot(args); err == nil {
			var detail string
			if detail, err = p.session.Detail(i); err == nil {
				p.con.detail(i, detail)
			}
		}
	case "again":
		err = p.start()
	case "board":
		p.board()
	case "help":
		p.con.help()
	case "quit", "exit":
		return true
	default:
		err = fmt.Errorf("unknown command %q (try help)", cmd)
	}

	if err != nil {
		p.con.failure(err)
	}
	return false
}

func (p *player) board() {
	p.con.board(p.session.Snapshot().Events)
}

// farewell reports the score over the rounds finished so far; a round left
// in play does not count.
func (p *player) farewell() {
	snap := p.session.Snapshot()
	p.con.farewell(snap.Score, snap.TotalRounds-snap.RoundsRemaining)
}

// slot converts a 1-based slot argument to a round index.
func slot(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("slot %q is not a number", arg)
	}
	return n - 1, nil
}

func oneSlot(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one slot (1-%d)", round.Size)
	}
	return slot(args[0])
}

func twoSlots(args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected two slots (1-%d)", round.Size)
	}
	a, err := slot(args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := slot(args[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
