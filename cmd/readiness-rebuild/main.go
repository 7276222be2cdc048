package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"bitbucket.org/polifilmdata/films_backend/workflow"
)

// Recomputes the cached readiness of orders from their detail rows. The
// remedy for drift left behind by a saga that died mid-flight.
func main() {
	orderID := flag.Int("order-id", 0, "Optional: rebuild only one order. 0 rebuilds all open orders.")
	dryRun := flag.Bool("dry-run", false, "Report what would change without writing")
	continueOnError := flag.Bool("continue-on-error", false, "Skip failing orders and continue")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx = utils.SetUserIdInContext(ctx, 0)
	ctx = utils.SetUserNameInContext(ctx, "ReadinessRebuild")

	var orders []*models.Order
	query := db.WithContext(ctx).Model(&models.Order{})
	if *orderID > 0 {
		query = query.Where("id = ?", *orderID)
	} else {
		query = query.Where("status NOT IN ?", []models.OrderStatus{
			models.OrderStatusCancelled,
			models.OrderStatusClosed,
			models.OrderStatusShipped,
			models.OrderStatusDelivered,
		})
	}
	if err := query.Find(&orders).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to list orders: %v\n", err)
		os.Exit(1)
	}
	if len(orders) == 0 {
		fmt.Fprintln(os.Stderr, "no orders to rebuild")
		return
	}

	failures := 0
	for _, order := range orders {
		if *dryRun {
			stockKg, err := models.SumOrderStockEntryKg(db.WithContext(ctx), order.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "order %d: %v\n", order.ID, err)
				failures++
				continue
			}
			bobinKg, err := models.SumReadyBobinKgByOrder(db.WithContext(ctx), order.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "order %d: %v\n", order.ID, err)
				failures++
				continue
			}
			entryKg, err := models.SumOrderPieceKgByOrder(db.WithContext(ctx), order.ID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "order %d: %v\n", order.ID, err)
				failures++
				continue
			}
			productionKg := bobinKg.Add(entryKg)
			fmt.Printf("order %d: stock %s -> %s, production %s -> %s\n",
				order.ID,
				order.StockReadyKg.String(), stockKg.String(),
				order.ProductionReadyKg.String(), productionKg.String())
			continue
		}

		// Serialize against live entry recording for this order.
		lock, err := utils.OrderLock(ctx, order.ID, "readiness-rebuild", "main")
		if err != nil {
			fmt.Fprintf(os.Stderr, "order %d: could not obtain lock: %v\n", order.ID, err)
			if !*continueOnError {
				os.Exit(1)
			}
			failures++
			continue
		}

		_, stockErr := workflow.RecomputeStockReadiness(ctx, order.ID)
		_, prodErr := workflow.RecomputeProductionReadiness(ctx, order.ID)
		_ = lock.Release(ctx)

		if stockErr != nil || prodErr != nil {
			fmt.Fprintf(os.Stderr, "order %d: stock=%v production=%v\n", order.ID, stockErr, prodErr)
			if !*continueOnError {
				os.Exit(1)
			}
			failures++
			continue
		}
		fmt.Printf("order %d: rebuilt\n", order.ID)
	}

	if failures > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d orders failed\n", failures, len(orders))
		os.Exit(1)
	}
}
