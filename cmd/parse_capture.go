package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/amoeba/ac-pcap-parser/internal/config"
	"github.com/amoeba/ac-pcap-parser/internal/entity"
	"github.com/amoeba/ac-pcap-parser/internal/log"
	"github.com/amoeba/ac-pcap-parser/internal/metrics"
	"github.com/amoeba/ac-pcap-parser/internal/parse"
)

var (
	serveMetrics bool
	verbose      bool
)

var parseCaptureCmd = &cobra.Command{
	Use:   "parse-capture <path>",
	Short: "Parse a pcap/pcapng capture and print the messages and entities found",
	Long: `parse-capture reads the capture file at <path> and runs it through the
full dissection pipeline. A non-zero exit status indicates the capture
container itself could not be read (bad magic, truncated file); individual
malformed packets or messages are reported as diagnostics and do not fail
the command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParseCapture(args[0])
	},
}

func init() {
	parseCaptureCmd.Flags().BoolVar(&serveMetrics, "metrics", false,
		"serve Prometheus metrics while parsing (overrides config)")
	parseCaptureCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"print every packet and dissected message, not just the summary")
}

func runParseCapture(path string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := log.Init(cfg.Log); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	if serveMetrics || cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Addr)
		if err := srv.Start(context.Background()); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		defer srv.Stop(context.Background())
	}

	pcfg := parse.Config{
		ServerPort: cfg.Transport.ServerPort,
	}
	pcfg.Fragment.MaxGroups = cfg.Fragment.MaxGroups
	pcfg.Fragment.GroupTTL = time.Duration(cfg.Fragment.GroupTTLMs) * time.Millisecond

	result, err := parse.Capture(path, pcfg)
	if err != nil {
		return fmt.Errorf("parse capture: %w", err)
	}

	if verbose {
		for _, p := range result.Packets {
			fmt.Printf("packet %d: %s %s messages=%v\n",
				p.ID, p.Timestamp.UTC().Format(time.RFC3339Nano), p.Direction, p.MessageIDs)
		}
		for _, m := range result.Messages {
			if m.Err != nil {
				fmt.Printf("message %d: %s: error: %v\n", m.ID, m.MessageType, m.Err)
				continue
			}
			fmt.Printf("message %d: %s: %+v\n", m.ID, m.MessageType, m.Fields)
		}
	}

	fmt.Printf("packets:  %d\n", len(result.Packets))
	fmt.Printf("messages: %d\n", len(result.Messages))
	fmt.Printf("entities: %d\n", result.Entities.Len())
	fmt.Printf("diagnostics: %+v\n", result.Diagnostics)

	log.Logger().WithFields(map[string]interface{}{
		"path":     path,
		"packets":  len(result.Packets),
		"messages": len(result.Messages),
		"entities": result.Entities.Len(),
	}).Info("capture parsed")

	logTallySummary(result.Tally)

	return nil
}

// logTallySummary emits one structured log line per message type that
// actually produced an entity update, busiest types first, capped at 20
// so a capture with a long tail of rare types doesn't flood the log.
func logTallySummary(tally entity.Tally) {
	type row struct {
		messageType string
		seen        int
		extracted   int
	}

	rows := make([]row, 0, len(tally.Seen))
	for messageType, seen := range tally.Seen {
		extracted := tally.Extracted[messageType]
		if extracted == 0 {
			continue
		}
		rows = append(rows, row{messageType: messageType, seen: seen, extracted: extracted})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].extracted > rows[j].extracted
	})

	if len(rows) > 20 {
		rows = rows[:20]
	}

	for _, r := range rows {
		log.Logger().WithFields(map[string]interface{}{
			"message_type": r.messageType,
			"seen":         r.seen,
			"extracted":    r.extracted,
		}).Info("extraction tally")
	}
}
