package service

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"blogapi/app/config"
	"blogapi/app/database"
)

// Version is the CLI version reported by the version command.
const Version = "1.0.0"

const defaultBackupDir = "data/backups"

// CLI runs subcommands against the given streams.
type CLI struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewCLI returns a CLI bound to the process streams.
func NewCLI() *CLI {
	return &CLI{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// HandleCommand runs one subcommand and returns the process exit code.
func (c *CLI) HandleCommand(args []string) int {
	if len(args) < 1 {
		c.printHelp()
		return 1
	}

	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "serve":
		return c.serve(rest)
	case "init", "clean", "backup", "restore":
		return c.maintenance(cmd, rest)
	case "version":
		fmt.Fprintf(c.Stdout, "blogapi version %s\n", Version)
		return 0
	case "help":
		c.printHelp()
		return 0
	default:
		fmt.Fprintf(c.Stdout, "Unknown command: %s\n\n", args[0])
		c.printHelp()
		return 1
	}
}

func (c *CLI) printHelp() {
	helpText := `Usage: blogapi <command> [options]

Commands:
  serve   [-config file]                 Run the blog API server
  init    [-config file]                 Initialize a new empty badger database
  clean   [-config file] [-y]            Remove the badger database
  backup  [-config file] [-dir path]     Create a backup of the badger database
  restore [-config file] [-y] <file>     Restore the badger database from a backup
  version                                Show version information
  help                                   Display this help message

The config file defaults to $CONFIG_PATH, then config.yaml.
`
	fmt.Fprintln(c.Stdout, helpText)
}

func (c *CLI) loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}
	return config.Load(path)
}

func (c *CLI) serve(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(c.Stderr)
	configPath := fs.String("config", "", "path to the YAML config file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := c.loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(c.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := config.NewLogger(cfg.Server)
	if err != nil {
		fmt.Fprintf(c.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RunAppServer(ctx, cfg, logger); err != nil {
		fmt.Fprintf(c.Stderr, "Server error: %v\n", err)
		return 1
	}
	return 0
}

func (c *CLI) maintenance(cmd string, args []string) int {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(c.Stderr)
	configPath := fs.String("config", "", "path to the YAML config file")
	assumeYes := fs.Bool("y", false, "do not ask for confirmation")
	backupDir := fs.String("dir", defaultBackupDir, "directory for backup files")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := c.loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(c.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if cfg.Storage.Driver != config.DriverBadger {
		fmt.Fprintf(c.Stdout, "The %s command only supports the badger driver (configured: %s)\n", cmd, cfg.Storage.Driver)
		return 1
	}
	dbPath := cfg.Storage.BadgerPath

	switch cmd {
	case "init":
		return c.initDB(dbPath)
	case "clean":
		return c.clean(dbPath, *assumeYes)
	case "backup":
		if _, err := c.backup(dbPath, *backupDir); err != nil {
			fmt.Fprintf(c.Stdout, "Failed to backup database: %v\n", err)
			return 1
		}
		return 0
	default:
		if fs.NArg() < 1 {
			fmt.Fprintln(c.Stdout, "Error: backup file path required for restore")
			return 1
		}
		return c.restore(dbPath, fs.Arg(0), *assumeYes)
	}
}

func (c *CLI) confirm(prompt string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(c.Stdout, "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(c.Stdin).ReadString('\n')
	response := strings.TrimSpace(line)
	return response == "y" || response == "Y"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// initDB initializes a new empty database.
func (c *CLI) initDB(dbPath string) int {
	if exists(dbPath) {
		fmt.Fprintln(c.Stdout, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}

	db, err := database.OpenBadger(dbPath, nil)
	if err != nil {
		fmt.Fprintf(c.Stdout, "Failed to initialize database: %v\n", err)
		return 1
	}
	if err := db.Close(); err != nil {
		fmt.Fprintf(c.Stdout, "Failed to initialize database: %v\n", err)
		return 1
	}

	fmt.Fprintln(c.Stdout, "Database initialized successfully")
	return 0
}

// clean removes the database.
func (c *CLI) clean(dbPath string, assumeYes bool) int {
	if !exists(dbPath) {
		fmt.Fprintln(c.Stdout, "Database is already clean (does not exist)")
		return 0
	}

	if !c.confirm("Are you sure you want to clean the database? This cannot be undone.", assumeYes) {
		fmt.Fprintln(c.Stdout, "Operation cancelled")
		return 1
	}

	if err := os.RemoveAll(dbPath); err != nil {
		fmt.Fprintf(c.Stdout, "Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Fprintln(c.Stdout, "Database cleaned successfully")
	return 0
}

// backup writes a full backup of the database into dir and returns its path.
func (c *CLI) backup(dbPath, dir string) (string, error) {
	if !exists(dbPath) {
		return "", errors.New("no database exists to backup")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	db, err := database.OpenBadger(dbPath, nil)
	if err != nil {
		return "", err
	}
	defer db.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if _, err := db.Backup(f, 0); err != nil {
		return "", err
	}
	if err := f.Sync(); err != nil {
		return "", err
	}

	fmt.Fprintf(c.Stdout, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// restore replaces the database with the contents of backupFile. The backup
// is loaded into a scratch directory first; the existing database is only
// replaced once the load succeeds.
func (c *CLI) restore(dbPath, backupFile string, assumeYes bool) int {
	fi, err := os.Stat(backupFile)
	if err != nil {
		fmt.Fprintf(c.Stdout, "Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Fprintf(c.Stdout, "Backup file is empty: %s\n", backupFile)
		return 1
	}

	if exists(dbPath) && !c.confirm("Existing database found. Do you want to replace it?", assumeYes) {
		fmt.Fprintln(c.Stdout, "Operation cancelled")
		return 1
	}

	parent := filepath.Dir(dbPath)
	if err := os.MkdirAll(parent, 0755); err != nil {
		fmt.Fprintf(c.Stdout, "Failed to create database directory: %v\n", err)
		return 1
	}
	staging, err := os.MkdirTemp(parent, filepath.Base(dbPath)+".restore-")
	if err != nil {
		fmt.Fprintf(c.Stdout, "Failed to create staging directory: %v\n", err)
		return 1
	}
	defer os.RemoveAll(staging)

	if err := loadBackup(staging, backupFile); err != nil {
		fmt.Fprintf(c.Stdout, "Failed to restore database: %v\n", err)
		return 1
	}

	if err := swapInto(staging, dbPath); err != nil {
		fmt.Fprintf(c.Stdout, "Failed to replace database: %v\n", err)
		return 1
	}

	fmt.Fprintln(c.Stdout, "Database restored successfully")
	return 0
}

// swapInto moves staging to dbPath. An existing database is set aside and
// put back if the final rename fails.
func swapInto(staging, dbPath string) error {
	if !exists(dbPath) {
		return os.Rename(staging, dbPath)
	}

	old := dbPath + ".old"
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	if err := os.Rename(dbPath, old); err != nil {
		return err
	}
	if err := os.Rename(staging, dbPath); err != nil {
		if rerr := os.Rename(old, dbPath); rerr != nil {
			return errors.Join(err, fmt.Errorf("previous database left at %s: %w", old, rerr))
		}
		return err
	}
	return os.RemoveAll(old)
}

func loadBackup(dbPath, backupFile string) (err error) {
	db, err := database.OpenBadger(dbPath, nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	// Load panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during restore: %v", r)
		}
	}()
	return db.Load(f, 256)
}
