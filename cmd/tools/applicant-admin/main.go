// cmd/tools/applicant-admin/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"loan-intake-workers/internal/common/config"
	"loan-intake-workers/internal/common/database"
	"loan-intake-workers/internal/common/validation"
	"loan-intake-workers/internal/models"
	"loan-intake-workers/internal/store"
)

func main() {
	contactCmd := flag.NewFlagSet("set-contact", flag.ExitOnError)
	searchCmd := flag.NewFlagSet("search", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)

	contactID := contactCmd.String("applicant", "", "Applicant ID")
	contactName := contactCmd.String("name", "", "Applicant name used in greetings")
	contactEmail := contactCmd.String("email", "", "Notification email address")
	contactPhone := contactCmd.String("phone", "", "Phone number for high-priority SMS")

	searchApplicant := searchCmd.String("applicant", "", "Filter by applicant ID")
	searchType := searchCmd.String("type", "", "Filter by document type (e.g., \"PAN Card\")")
	searchFlagged := searchCmd.Bool("flagged", false, "Only documents flagged for review")
	searchText := searchCmd.String("text", "", "Full-text query over OCR text and flag reasons")
	searchSize := searchCmd.Int("size", 20, "Maximum results (1-100)")

	showID := showCmd.String("applicant", "", "Applicant ID")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "set-contact":
		contactCmd.Parse(os.Args[2:])
		contact := models.ApplicantContact{
			ApplicantID: strings.TrimSpace(*contactID),
			Name:        strings.TrimSpace(*contactName),
			Email:       strings.TrimSpace(*contactEmail),
			Phone:       strings.TrimSpace(*contactPhone),
		}
		if err := checkContact(contact); err != nil {
			fmt.Printf("Error: %v\n", err)
			contactCmd.Usage()
			os.Exit(1)
		}
		records, closeDB := openStore(ctx)
		defer closeDB()
		if err := records.UpsertContact(ctx, contact); err != nil {
			fail("saving contact", err)
		}
		fmt.Printf("Saved contact for %s\n", contact.ApplicantID)

	case "search":
		searchCmd.Parse(os.Args[2:])
		index := openIndex(ctx)
		docs, total, err := index.SearchExtractions(ctx, store.SearchFilter{
			ApplicantID:  *searchApplicant,
			DocumentType: *searchType,
			FlaggedOnly:  *searchFlagged,
			Text:         *searchText,
			Size:         *searchSize,
		})
		if err != nil {
			fail("searching extractions", err)
		}
		fmt.Printf("%d matching documents (showing %d)\n", total, len(docs))
		for _, d := range docs {
			fmt.Println(formatDocument(d))
		}

	case "show":
		showCmd.Parse(os.Args[2:])
		if *showID == "" {
			fmt.Println("Error: applicant is required for show.")
			showCmd.Usage()
			os.Exit(1)
		}
		records, closeDB := openStore(ctx)
		defer closeDB()
		summary, err := applicantSummary(ctx, records, *showID)
		if err != nil {
			fail("loading applicant", err)
		}
		out, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(out))

	case "help":
		fallthrough
	default:
		help()
	}
}

func checkContact(c models.ApplicantContact) error {
	if c.ApplicantID == "" || c.Email == "" {
		return errors.New("applicant and email are required")
	}
	if !validation.ValidateEmail(c.Email) {
		return fmt.Errorf("invalid email %q", c.Email)
	}
	if c.Phone != "" && !validation.ValidatePhone(c.Phone) {
		return fmt.Errorf("invalid phone %q", c.Phone)
	}
	return nil
}

func formatDocument(d store.ExtractionDocument) string {
	status := "complete"
	if !d.IsComplete {
		missing := make([]string, 0, len(d.MissingFields))
		for _, f := range d.MissingFields {
			missing = append(missing, string(f))
		}
		status = "missing " + strings.Join(missing, ", ")
	}
	line := fmt.Sprintf("%s  %-20s %-22s %s", d.IndexedAt.Format(time.RFC3339), d.ApplicantID, d.DocumentType, status)
	if d.FlaggedByAI {
		line += "  [flagged: " + d.FlaggedReason + "]"
	}
	return line
}

type summaryStore interface {
	ListExtractions(ctx context.Context, applicantID string) ([]*models.ExtractionRecord, error)
	GetEligibility(ctx context.Context, applicantID string) (*models.EligibilityResult, error)
	GetContact(ctx context.Context, applicantID string) (*models.ApplicantContact, error)
}

type applicantView struct {
	ApplicantID string                     `json:"applicantId"`
	Contact     *models.ApplicantContact   `json:"contact,omitempty"`
	Documents   []*models.ExtractionRecord `json:"documents"`
	Eligibility *models.EligibilityResult  `json:"eligibility,omitempty"`
}

// applicantSummary tolerates missing contact and eligibility records.
func applicantSummary(ctx context.Context, s summaryStore, applicantID string) (*applicantView, error) {
	docs, err := s.ListExtractions(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	view := &applicantView{ApplicantID: applicantID, Documents: docs}

	contact, err := s.GetContact(ctx, applicantID)
	switch {
	case err == nil:
		view.Contact = contact
	case !errors.Is(err, store.ErrRecordNotFound):
		return nil, err
	}

	eligibility, err := s.GetEligibility(ctx, applicantID)
	switch {
	case err == nil:
		view.Eligibility = eligibility
	case !errors.Is(err, store.ErrRecordNotFound):
		return nil, err
	}
	return view, nil
}

func openStore(ctx context.Context) (*store.PostgresStore, func()) {
	cfg := loadConfig()
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fail("connecting to postgres", err)
	}
	if err := pg.Ping(ctx); err != nil {
		fail("connecting to postgres", err)
	}
	return store.NewPostgresStore(pg.DB), func() { _ = pg.Close() }
}

func openIndex(ctx context.Context) *store.SearchIndex {
	cfg := loadConfig()
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		fail("connecting to elasticsearch", err)
	}
	if err := es.Ping(ctx); err != nil {
		fail("connecting to elasticsearch", err)
	}
	return store.NewSearchIndex(es.Client, cfg.Database.Elasticsearch.ExtractionIndex)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fail("loading config", err)
	}
	return cfg
}

func fail(action string, err error) {
	fmt.Printf("Error %s: %v\n", action, err)
	os.Exit(1)
}

func help() {
	fmt.Print(`
Usage: applicant-admin <command> [flags]

Commands:
  set-contact  Store the email and phone used for decision notifications
  search       Search indexed extraction records
  show         Print an applicant's documents, contact and eligibility
  help         Show this help message

Examples:
  applicant-admin set-contact -applicant APP-1001 -name "Asha Rao" -email asha@example.com -phone +919800000000
  applicant-admin search -type "Bank Statement" -flagged
  applicant-admin show -applicant APP-1001
` + "\n")
}
