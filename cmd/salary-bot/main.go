package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	_ "time/tzdata"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/ivancheban/salary-bot/internal/bot"
	"github.com/ivancheban/salary-bot/internal/config"
	"github.com/ivancheban/salary-bot/internal/message"
	"github.com/ivancheban/salary-bot/internal/policy"
	"github.com/ivancheban/salary-bot/internal/scheduler"
	"github.com/ivancheban/salary-bot/internal/server"
	"github.com/ivancheban/salary-bot/internal/state"
)

// options holds the parsed command line.
type options struct {
	addr       string
	policy     string
	db         string
	chat       string
	notifyCron string
	lang       string
	dates      int
	debug      bool
}

// main delegates to runMain so that deferred calls run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	var opts options
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	setToken := flag.Bool(config.FlagSetToken, false, config.FlagDescSetToken)
	flag.BoolVar(&opts.debug, config.FlagDebug, false, config.FlagDescDebug)
	flag.StringVar(&opts.addr, config.FlagAddr, config.DefaultAddr, config.FlagDescAddr)
	flag.StringVar(&opts.policy, config.FlagPolicy, "", config.FlagDescPolicy)
	flag.StringVar(&opts.db, config.FlagDB, "", config.FlagDescDB)
	flag.StringVar(&opts.chat, config.FlagChat, "", config.FlagDescChat)
	flag.StringVar(&opts.notifyCron, config.FlagNotifyCron, config.DefaultNotifyCron, config.FlagDescNotifyCron)
	flag.StringVar(&opts.lang, config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	flag.IntVar(&opts.dates, config.FlagDates, 0, config.FlagDescDates)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	if *setToken {
		if err := storeToken(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return config.ExitCodeError
		}
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	logCloser := setupLogging(opts.debug)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if opts.dates != 0 {
		if err := printDates(ctx, os.Stdout, opts.policy, opts.dates); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return config.ExitCodeError
		}
		return config.ExitCodeSuccess
	}

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx, opts); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires policy, resolver, delivery, HTTP server and scheduler, then
// blocks until the context is cancelled.
func run(ctx context.Context, opts options) error {
	p, err := policy.Load(ctx, opts.policy, policy.NewHTTPFetcher())
	if err != nil {
		return err
	}
	resolver := p.Resolver()

	lang, err := message.Normalize(opts.lang)
	if err != nil {
		return err
	}
	renderer := message.NewRenderer(lang)

	chatID, err := resolveChatID(opts.chat, os.Getenv(config.EnvChatID))
	if err != nil {
		return err
	}

	token, err := resolveToken(os.Getenv(config.EnvToken))
	if err != nil {
		return err
	}

	store, err := openStore(opts.db)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	tg, err := bot.NewTelegram(token, "", nil)
	if err != nil {
		return err
	}

	svc := bot.NewService(resolver, renderer, store, tg, bot.Options{ChatID: chatID})
	svc.SetBotName(tg.BotName())

	srv := server.New(opts.addr, svc)

	sched := scheduler.New(resolver, svc, srv, scheduler.Options{NotifyCron: opts.notifyCron})
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
	}()

	return srv.Start(ctx)
}

// openStore returns a SQLite store for a non-empty path and an in-memory
// store otherwise.
func openStore(path string) (state.Store, error) {
	if path == "" {
		slog.Info(config.MsgStateStore, config.LogKeyComponent, config.CompMain, config.LogKeyStore, "memory")
		return state.NewMemory(), nil
	}
	s, err := state.NewSQLite(path)
	if err != nil {
		return nil, err
	}
	slog.Info(config.MsgStateStore, config.LogKeyComponent, config.CompMain, config.LogKeyStore, path)
	return s, nil
}

// resolveChatID prefers the flag over the environment. Both empty selects
// the default chat.
func resolveChatID(flagValue, envValue string) (int64, error) {
	raw := flagValue
	if raw == "" {
		raw = envValue
	}
	if raw == "" {
		return config.DefaultChatID, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", config.ErrChatID, raw, err)
	}
	return id, nil
}

// resolveToken returns the environment token, falling back to the keyring.
func resolveToken(envValue string) (string, error) {
	if envValue != "" {
		return envValue, nil
	}
	token, err := keyring.Get(config.KeyringService, config.KeyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", errors.New(config.ErrTokenMissing)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	slog.Info(config.MsgTokenFromKeyring, config.LogKeyComponent, config.CompMain)
	return token, nil
}

// storeToken reads a token without echo when in is a terminal and saves it
// in the OS keyring.
func storeToken(in *os.File, out io.Writer) error {
	var (
		token string
		err   error
	)
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		fmt.Fprint(out, config.MsgTokenPrompt)
		var b []byte
		b, err = term.ReadPassword(fd)
		fmt.Fprintln(out)
		token = string(b)
	} else {
		token, err = readLine(in)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrTokenRead, err)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New(config.ErrTokenEmpty)
	}
	if err := keyring.Set(config.KeyringService, config.KeyringUser, token); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	fmt.Fprint(out, config.MsgTokenStored)
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}

// printDates lists the pay dates and holidays of year under the policy.
func printDates(ctx context.Context, w io.Writer, source string, year int) error {
	p, err := policy.Load(ctx, source, policy.NewHTTPFetcher())
	if err != nil {
		return err
	}
	dates, err := p.Resolver().Year(year)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, config.MsgDatesHeader, year)
	for _, sd := range dates {
		fmt.Fprintf(w, config.MsgDatesLine, sd.At.Format(config.ListLayout))
	}
	fmt.Fprintf(w, config.MsgHolidayHeader, year)
	for _, h := range p.Holidays.Holidays(year) {
		fmt.Fprintf(w, config.MsgHolidayLine, h.Date.Format(config.DateLayout), h.Name)
	}
	return nil
}

func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyBuilt, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging writes JSON logs to stdout and to a file in the user cache
// directory when one can be created.
func setupLogging(debugMode bool) io.Closer {
	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
