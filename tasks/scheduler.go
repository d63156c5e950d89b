package tasks

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// NewScheduler registers the two periodic drivers: the admission cycle
// and the stuck-ticket recovery sweep. Unique+TaskID keeps overlapping
// scheduler instances from stacking duplicate runs; the lease lock
// inside the services is the real mutual exclusion.
func NewScheduler(redisOpt asynq.RedisClientOpt, admissionInterval, recoveryInterval time.Duration) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
	})

	_, err := scheduler.Register(
		fmt.Sprintf("@every %s", admissionInterval),
		asynq.NewTask(TypeAdmissionCycle, nil),
		asynq.TaskID("periodic:"+TypeAdmissionCycle),
		asynq.Queue("scheduler"),
	)
	if err != nil {
		return nil, fmt.Errorf("register admission cycle: %w", err)
	}

	_, err = scheduler.Register(
		fmt.Sprintf("@every %s", recoveryInterval),
		asynq.NewTask(TypeTicketRecover, nil),
		asynq.TaskID("periodic:"+TypeTicketRecover),
		asynq.Queue("scheduler"),
	)
	if err != nil {
		return nil, fmt.Errorf("register ticket recovery: %w", err)
	}

	return scheduler, nil
}

// NewServer builds the worker that consumes settlement and scheduler
// queues.
func NewServer(redisOpt asynq.RedisClientOpt, concurrency int) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"settlement": 6,
			"scheduler":  2,
			"default":    2,
		},
	})
}
