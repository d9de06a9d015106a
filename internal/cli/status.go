package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/rpcpulse/internal/core/config"
	"github.com/vietddude/rpcpulse/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest recorded health of all configured chains",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	repo := postgres.NewHistoryRepo(db)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "CHAIN\tSTATUS\tCONGESTION\tLATENCY\tENDPOINTS\tCAPTURED")

	for _, chain := range cfg.Chains {
		cycles, err := repo.GetRecent(ctx, chain.ChainID, 1)
		if err != nil || len(cycles) == 0 {
			_, _ = fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\n", chain.Name)
			continue
		}
		c := cycles[0]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%d/%d\t%s\n",
			chain.Name, c.Status, c.Congestion, c.AvgLatencyMs,
			c.HealthyCount, c.TotalCount, c.CapturedAt.Format("2006-01-02 15:04:05"))
	}
	_ = w.Flush()
}
