package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"k9harmony/internal/bookings/reconciliation"
	"k9harmony/internal/events"
	"k9harmony/pkg/kafka"
	kafka_config "k9harmony/pkg/kafka/config"
	kafka_middleware "k9harmony/pkg/kafka/middleware"
	"k9harmony/pkg/model"

	"github.com/spf13/cobra"
)

func newJournalCmd(rt *runtime) *cobra.Command {
	var file string
	c := &cobra.Command{
		Use:   "journal",
		Short: "List charges waiting for manual reconciliation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = rt.config().ReconciliationJournal
			}
			records, err := reconciliation.ReadFile(file)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "journal is empty")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RECORDED\tTRANSACTION\tCUSTOMER\tCHARGE\tAMOUNT\tREFUND ERROR")
			for i := range records {
				writeRecord(w, &records[i])
			}
			return w.Flush()
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", "journal path (defaults to RECONCILIATION_JOURNAL)")
	return c
}

func writeRecord(w io.Writer, rec *model.ReconciliationRecord) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d %s\t%s\n",
		rec.RecordedAt.UTC().Format("2006-01-02 15:04:05"),
		rec.TransactionID,
		rec.CustomerID,
		rec.ChargeReference,
		rec.Amount, rec.Currency,
		rec.RefundError,
	)
}

// reconciliationPrinter prints each alert as it arrives. Other event types on the topic are ignored.
func reconciliationPrinter(out io.Writer) kafka.MessageHandler {
	return func(_ context.Context, msg kafka.Message) error {
		if msg.GetEventType() != events.TypeCompensationFailed {
			return nil
		}
		var rec model.ReconciliationRecord
		if err := msg.DecodeValue(&rec); err != nil {
			return fmt.Errorf("%w: %v", kafka.ErrPermanentFailure, err)
		}
		writeRecord(out, &rec)
		return nil
	}
}

func newWatchReconciliationCmd(rt *runtime) *cobra.Command {
	var groupID string
	c := &cobra.Command{
		Use:   "watch-reconciliation",
		Short: "Follow reconciliation alerts on Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := rt.config()
			kcfg, err := kafka_config.Load()
			if err != nil {
				return err
			}
			consumer, err := kafka.NewConsumer(kcfg, cfg.ReconciliationTopic, groupID, "", reconciliationPrinter(cmd.OutOrStdout()), cfg.Log)
			if err != nil {
				return err
			}
			defer consumer.Close()
			consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

			cfg.Log.Info("Watching reconciliation alerts", "topic", cfg.ReconciliationTopic, "group", groupID)
			if err := consumer.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	c.Flags().StringVar(&groupID, "group", "bookingctl-reconciliation", "consumer group id")
	return c
}
