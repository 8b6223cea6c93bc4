package cube

import (
	"context"
	"time"
)

// RawMessage is an unprocessed cube payload read from the source topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputMessage is a processed cube payload destined for the sink topic or
// an output file. One raw message may yield several outputs: thresholding
// produces one truth cube per threshold.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
