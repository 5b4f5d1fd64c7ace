package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/dmelnik/token-lending/internal/config"
	"github.com/dmelnik/token-lending/internal/domain"
	"github.com/dmelnik/token-lending/internal/repository"
	"github.com/dmelnik/token-lending/pkg/utils"
)

func main() {
	log.Println("Starting ledger monitor...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	loanRepo := repository.NewLoanRepository(db)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone: %v", err)
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc("@every "+cfg.Scheduler.Interval, func() {
		reportLedgerState(loanRepo)
	})
	if err != nil {
		log.Fatalf("Error scheduling ledger report job: %v", err)
	}

	c.Start()
	log.Println("Ledger monitor started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down ledger monitor...")
	<-c.Stop().Done()
	log.Println("Ledger monitor stopped")
}

// reportLedgerState logs how many loans sit in each state and the token
// amount still committed to pending loans. Purely observational: it never
// mutates the ledger and it is not a reconciliation pass.
func reportLedgerState(loans repository.LoanRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pending, err := loans.Count(ctx, domain.FilterByStatus(domain.StatusPending))
	if err != nil {
		log.Printf("ledger report: counting pending loans failed: %v", err)
		return
	}
	active, err := loans.Count(ctx, domain.FilterByStatus(domain.StatusActive))
	if err != nil {
		log.Printf("ledger report: counting active loans failed: %v", err)
		return
	}

	items, err := loans.Find(ctx, domain.FilterByStatus(domain.StatusPending), domain.DefaultPagination())
	if err != nil {
		log.Printf("ledger report: listing pending loans failed: %v", err)
		return
	}

	var committed uint64
	for _, loan := range items {
		committed += loan.Amount
	}

	log.Printf("ledger report: pending=%d active=%d pending_committed=%s tokens",
		pending, active, utils.FromBaseUnits(committed))
}
