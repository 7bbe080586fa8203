// Command edushare drives the document-sharing client from the terminal:
// session management, connectivity checks, filtered listing, upload with
// progress, download and delete.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edushare-client/internal/client"
	"github.com/noah-isme/edushare-client/internal/endpoint"
	"github.com/noah-isme/edushare-client/internal/models"
	"github.com/noah-isme/edushare-client/internal/session"
	"github.com/noah-isme/edushare-client/internal/transport"
	"github.com/noah-isme/edushare-client/internal/upload"
	"github.com/noah-isme/edushare-client/pkg/config"
	"github.com/noah-isme/edushare-client/pkg/logger"
)

const usage = `usage: edushare <command> [flags]

commands:
  test                         check connectivity to the resolved endpoint
  login -u <user> -p <pass>    authenticate and persist the session
  logout                       clear the persisted session
  whoami                       show the logged-in user
  list [-type] [-subject] [-search] [-page]
  get <id>                     show one document
  upload -title -type -subject [-description] <file>...
  download <id> [-o <path>]    fetch a document's file
  rm <id>                      delete a document
  users                        list users (admin only)
  dashboard                    corpus statistics and recent uploads
`

type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	sessions  *session.Store
	documents *client.DocumentClient
	users     *client.UserClient
	probe     *client.Probe
	uploads   *upload.Pipeline
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	a := newApp(cfg, logr)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Timeout+time.Minute)
	defer cancel()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "edushare: %v\n", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logr *zap.Logger) *app {
	profile := endpoint.Resolve(endpoint.Signal{
		Hostname:  cfg.Hostname,
		Platform:  cfg.Platform,
		LocalPort: cfg.Endpoint.LocalPort,
		TunnelURL: cfg.Endpoint.TunnelURL,
	})
	logr.Info("endpoint resolved",
		zap.String("base_url", profile.BaseURL),
		zap.Bool("is_local", profile.IsLocal),
	)

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	validate := validator.New()

	sessionPath := cfg.Session.File
	if !filepath.IsAbs(sessionPath) {
		if home, err := os.UserHomeDir(); err == nil {
			sessionPath = filepath.Join(home, sessionPath)
		}
	}

	sessions := session.New(session.NewFileBackend(sessionPath), profile.API(), httpClient, validate, logr)
	api := transport.New(profile.API(), httpClient, sessions, logr)
	documents := client.NewDocumentClient(api, validate, logr)

	return &app{
		cfg:       cfg,
		logger:    logr,
		sessions:  sessions,
		documents: documents,
		users:     client.NewUserClient(api, logr),
		probe:     client.NewProbe(api, logr),
		uploads: upload.NewPipeline(documents, upload.Config{
			TickInterval: cfg.Upload.TickInterval,
			TickStep:     cfg.Upload.TickStep,
			HighWater:    cfg.Upload.HighWater,
		}, logr),
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "test":
		return a.runTest(ctx)
	case "login":
		return a.runLogin(ctx, args)
	case "logout":
		return a.sessions.Logout()
	case "whoami":
		return a.runWhoami()
	case "list":
		return a.runList(ctx, args)
	case "get":
		return a.runGet(ctx, args)
	case "upload":
		return a.runUpload(ctx, args)
	case "download":
		return a.runDownload(ctx, args)
	case "rm":
		return a.runRemove(ctx, args)
	case "users":
		return a.runUsers(ctx)
	case "dashboard":
		return a.runDashboard(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) runTest(ctx context.Context) error {
	report, err := a.probe.Test(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (origin=%s, at=%s)\n", report.Message, report.Origin, report.Timestamp)
	return nil
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := a.sessions.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", sess.User.Username, sess.User.Role)
	return nil
}

func (a *app) runWhoami() error {
	user := a.sessions.CurrentUser()
	if user == nil {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s (%s) id=%s\n", user.Username, user.Role, user.ID)
	return nil
}

func (a *app) runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	docType := fs.String("type", "", "document type (TD, TP, Cours, Examen)")
	subject := fs.String("subject", "", "subject")
	search := fs.String("search", "", "search term")
	page := fs.Int("page", 1, "page index")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pager := client.NewPager(a.documents, a.cfg.Listing.PageSize)
	if err := pager.SetFilter(ctx, models.DocumentFilter{
		Type:    *docType,
		Subject: *subject,
		Search:  *search,
	}); err != nil {
		return err
	}
	pager.SetPage(*page)

	window := pager.Window()
	client.SortByNewest(window)
	for _, doc := range window {
		fmt.Printf("%s  %-7s %-20s %s\n", doc.ID, doc.Type, doc.Subject, doc.Title)
	}
	meta := pager.Pagination()
	fmt.Printf("page %d/%d (%d documents)\n", meta.Page, pager.TotalPages(), meta.TotalCount)
	return nil
}

func (a *app) runGet(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: edushare get <id>")
	}
	doc, err := a.documents.Get(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s\n  type: %s\n  subject: %s\n  created: %s\n  downloads: %d\n",
		doc.Title, doc.Type, doc.Subject, doc.CreatedAt.Format(time.RFC3339), doc.Downloads)
	if doc.Description != "" {
		fmt.Printf("  description: %s\n", doc.Description)
	}
	if user := a.sessions.CurrentUser(); client.CanDelete(user, doc) {
		fmt.Println("  deletable: yes")
	}
	return nil
}

func (a *app) runUpload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	title := fs.String("title", "", "document title")
	docType := fs.String("type", "", "document type")
	subject := fs.String("subject", "", "subject")
	description := fs.String("description", "", "optional description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: edushare upload -title ... -type ... -subject ... <file>...")
	}

	selection := make([]models.FileSelection, 0, fs.NArg())
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		selection = append(selection, models.FileSelection{Name: filepath.Base(path), Data: data})
	}

	task, err := a.uploads.Submit(ctx, models.UploadMetadata{
		Title:       *title,
		Type:        *docType,
		Subject:     *subject,
		Description: *description,
	}, selection)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(a.cfg.Upload.TickInterval)
	defer ticker.Stop()
	for task.Status() == upload.StatusPending || task.Status() == upload.StatusInFlight {
		select {
		case <-ticker.C:
			fmt.Printf("\ruploading... %3d%%", task.Progress())
		case <-ctx.Done():
			fmt.Println()
			return ctx.Err()
		}
	}

	doc, err := task.Wait(ctx)
	if err != nil {
		fmt.Printf("\rupload failed at %d%%\n", task.Progress())
		return err
	}
	fmt.Printf("\ruploading... 100%%\ncreated document %s\n", doc.ID)
	return nil
}

func (a *app) runDownload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	out := fs.String("o", "", "output path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: edushare download <id> [-o path]")
	}
	id := fs.Arg(0)

	body, err := a.documents.Download(ctx, id)
	if err != nil {
		return err
	}
	defer body.Close()

	target := *out
	if target == "" {
		target = id
	}
	file, err := os.Create(target)
	if err != nil {
		return err
	}
	defer file.Close()

	n, err := io.Copy(file, body)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d bytes to %s\n", n, target)
	return nil
}

func (a *app) runRemove(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: edushare rm <id>")
	}
	if err := a.documents.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("document deleted")
	return nil
}

func (a *app) runUsers(ctx context.Context) error {
	users, err := a.users.List(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		fmt.Printf("%s  %-7s %s\n", user.ID, user.Role, user.Username)
	}
	return nil
}

func (a *app) runDashboard(ctx context.Context) error {
	docs, err := a.documents.List(ctx, models.DocumentFilter{})
	if err != nil {
		return err
	}
	stats := client.BuildDashboard(docs, 3)
	fmt.Printf("subjects: %d\ndocuments: %d\ndownloads: %d\nrecent uploads:\n",
		stats.Subjects, stats.Documents, stats.Downloads)
	for _, doc := range stats.Recent {
		fmt.Printf("  %s  %s (%s)\n", doc.CreatedAt.Format("2006-01-02"), doc.Title, doc.Subject)
	}
	return nil
}
