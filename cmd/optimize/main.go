package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ajwhitfield/fpl-optimizer/internal/loader"
	"github.com/ajwhitfield/fpl-optimizer/internal/models"
	"github.com/ajwhitfield/fpl-optimizer/internal/optimizer"
	"github.com/ajwhitfield/fpl-optimizer/internal/solver"
	"github.com/ajwhitfield/fpl-optimizer/pkg/logger"
)

func main() {
	var (
		input        = flag.String("input", "", "CSV file with the player pool (id,name,club,position,price,expected_score)")
		budget       = flag.Float64("budget", 100, "total budget")
		subFactor    = flag.Float64("sub-factor", 0.2, "discount applied to bench forecasts, in [0,1]")
		maxPerClub   = flag.Int("max-per-club", 3, "maximum squad members from one club")
		priceDivisor = flag.Float64("price-divisor", 1, "divide the price column by this (10 for FPL API exports)")
		timeout      = flag.Duration("timeout", 30*time.Second, "solver time budget")
	)
	flag.Parse()

	logger.InitLogger("", true)
	if *input == "" {
		logrus.Fatal("missing -input")
	}

	players, err := loader.ReadFile(*input, loader.Options{PriceDivisor: *priceDivisor})
	if err != nil {
		logrus.Fatalf("Failed to load players: %v", err)
	}

	cfg := optimizer.DefaultConfig()
	cfg.TotalBudget = *budget
	cfg.SubstituteFactor = *subFactor
	cfg.MaxPerClub = *maxPerClub

	result, err := optimizer.Optimize(context.Background(), players, cfg, solver.NewBranchAndBound(), solver.Options{
		Timeout: *timeout,
	})
	if err != nil {
		switch {
		case errors.Is(err, optimizer.ErrNoFeasibleRoster):
			logrus.Fatal("No roster satisfies the constraints; raise the budget or relax the club limit")
		case errors.Is(err, optimizer.ErrSolverTimeout):
			logrus.Fatal("Solver ran out of time before certifying an optimum")
		default:
			logrus.Fatalf("Optimization failed: %v", err)
		}
	}

	printRoster(result)
	os.Exit(0)
}

func printRoster(result *optimizer.Result) {
	roster := result.Roster
	fmt.Printf("Optimal squad  (objective %.2f, cost %.1f, solved in %dms over %d nodes)\n\n",
		roster.ObjectiveValue, roster.TotalCost, result.SolveTime, result.Nodes)

	fmt.Println("Starting XI:")
	for _, p := range roster.Starters {
		marker := "  "
		if p.ID == roster.CaptainID {
			marker = "C "
		}
		printPlayer(marker, p)
	}
	fmt.Println("\nBench:")
	for _, p := range roster.Bench {
		printPlayer("  ", p)
	}
}

func printPlayer(marker string, p models.Player) {
	fmt.Printf("  %s%-4s %-24s %-4s %6.1f %8.2f\n", marker, p.Position, p.Name, p.Club, p.Price, p.ExpectedScore)
}
