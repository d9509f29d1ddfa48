package scheduler

import (
	"crypto/tls"
	"fmt"

	"lease_portal_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

// NewPeriodicManager wires the snapshot task onto the configured cron spec.
// The manager enqueues; the worker executes.
func NewPeriodicManager(cfg config.SchedulerConfig) (*asynq.PeriodicTaskManager, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	task, err := NewLeaseSnapshotTask(LeaseSnapshotPayload{RequestedBy: "schedule"})
	if err != nil {
		return nil, err
	}

	provider := &staticProvider{
		entries: []*asynq.PeriodicTaskConfig{
			{
				Cronspec: cfg.GetSnapshotCronSpec(),
				Task:     task,
				Opts:     []asynq.Option{asynq.Queue(queueName(cfg))},
			},
		},
	}

	return asynq.NewPeriodicTaskManager(asynq.PeriodicTaskManagerOpts{
		RedisConnOpt:               opt,
		PeriodicTaskConfigProvider: provider,
	})
}

type staticProvider struct {
	entries []*asynq.PeriodicTaskConfig
}

func (p *staticProvider) GetConfigs() ([]*asynq.PeriodicTaskConfig, error) {
	return p.entries, nil
}

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		return "default"
	}
	return queue
}
