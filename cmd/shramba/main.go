package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/shramba/internal/api"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/resource"
	"github.com/erazemk/shramba/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("shramba", flag.ContinueOnError)

	defaultURI := os.Getenv("MONGODB_URI")
	if defaultURI == "" {
		defaultURI = "mongodb://localhost:27017"
	}

	var mongoURI string
	fs.StringVar(&mongoURI, "mongo", defaultURI, "")
	fs.StringVar(&mongoURI, "m", defaultURI, "")

	var dbName string
	fs.StringVar(&dbName, "db", "shramba", "")
	fs.StringVar(&dbName, "d", "shramba", "")

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var adminEmail string
	fs.StringVar(&adminEmail, "email", "admin@localhost", "")
	fs.StringVar(&adminEmail, "e", "admin@localhost", "")

	var jwtSecret string
	fs.StringVar(&jwtSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: shramba [flags]

Flags:
  -m, -mongo <uri>        MongoDB connection URI (default: $MONGODB_URI or mongodb://localhost:27017)
  -d, -db <name>          database name (default: shramba)
  -a, -addr <host:port>   listen address (default: :8080)
  -e, -email <email>      admin email on first run (default: admin@localhost)
  -jwt-secret <secret>    JWT signing secret (default: $JWT_SECRET or generated per process)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if jwtSecret == "" {
		jwtSecret, err = generateSecret()
		if err != nil {
			slog.Error("failed to generate JWT secret", "error", err)
			os.Exit(1)
		}
		slog.Warn("no JWT secret configured, generated one for this process; tokens will not survive a restart")
	}

	conn, err := db.Connect(mongoURI, dbName)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		conn.Close(ctx)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := conn.Ping(ctx); err != nil {
		cancel()
		slog.Error("database unreachable", "uri", mongoURI, "error", err)
		os.Exit(1)
	}

	if err := conn.EnsureIndexes(ctx); err != nil {
		cancel()
		slog.Error("failed to ensure indexes", "error", err)
		os.Exit(1)
	}

	// First run: create an admin account with a one-time generated password.
	count, err := store.CountUsers(ctx, conn)
	if err != nil {
		cancel()
		slog.Error("failed to count users", "error", err)
		os.Exit(1)
	}
	if count == 0 {
		password, err := bootstrapAdmin(ctx, conn, adminEmail)
		if err != nil {
			cancel()
			slog.Error("failed to create admin user", "error", err)
			os.Exit(1)
		}
		printInitResult(adminEmail, password)
	}
	cancel()

	slog.Info("database ready", "db", dbName)

	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(conn, jwtSecret),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

// bootstrapAdmin creates the first admin user through the same schema path the
// API uses, so the stored record matches what a POST /api/users would produce.
func bootstrapAdmin(ctx context.Context, conn *db.Conn, email string) (string, error) {
	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	doc, err := resource.User.Normalize(map[string]any{
		"email":    email,
		"name":     "Admin",
		"password": password,
		"role":     model.RoleAdmin,
	}, false)
	if err != nil {
		return "", fmt.Errorf("preparing admin user: %w", err)
	}

	if _, err := store.Create(ctx, conn, resource.User, doc); err != nil {
		return "", fmt.Errorf("storing admin user: %w", err)
	}
	return password, nil
}

// printInitResult prints the first-run bootstrap result to stdout.
func printInitResult(email, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password — it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// generateSecret creates a random hex-encoded JWT signing secret.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
