package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/customtruckbeds/site/jobs"
)

// QueueInspector is the part of asynq.Inspector the queue command reads.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string `json:"queue"`
	Size      int    `json:"size"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
	Paused    bool   `json:"paused"`
}

func newQueueCommand(opts Options) *cobra.Command {
	var (
		redisAddr  string
		queue      string
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show lead notification queue statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inspector := opts.Inspector
			if inspector == nil {
				live := asynq.NewInspector(asynq.RedisClientOpt{Addr: redisAddr})
				defer live.Close()
				inspector = live
			}
			stats, err := inspectQueue(inspector, queue)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queue=%s size=%d pending=%d active=%d scheduled=%d retry=%d archived=%d paused=%t\n",
				stats.Queue, stats.Size, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived, stats.Paused)
			return nil
		},
	}
	cmd.Flags().StringVar(&redisAddr, "redis", envOr("REDIS_ADDR", "127.0.0.1:6379"), "Redis address")
	cmd.Flags().StringVar(&queue, "queue", jobs.QueueDefault, "queue name")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	return cmd
}

func inspectQueue(inspector QueueInspector, queue string) (QueueStats, error) {
	info, err := inspector.GetQueueInfo(queue)
	if err != nil {
		if errors.Is(err, asynq.ErrQueueNotFound) {
			return QueueStats{Queue: queue}, nil
		}
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: queue}
	if info != nil {
		stats.Size = info.Size
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
		stats.Archived = info.Archived
		stats.Paused = info.Paused
	}
	return stats, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
