package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskLeaseSnapshot exports the full lease register to a spreadsheet and
// uploads it to object storage.
const TaskLeaseSnapshot = "leases.snapshot"

type LeaseSnapshotPayload struct {
	RequestedBy string `json:"requestedBy"`
}

func NewLeaseSnapshotTask(payload LeaseSnapshotPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeaseSnapshot, data), nil
}

func ParseLeaseSnapshotPayload(task *asynq.Task) (LeaseSnapshotPayload, error) {
	var payload LeaseSnapshotPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeaseSnapshotPayload{}, err
	}
	return payload, nil
}
