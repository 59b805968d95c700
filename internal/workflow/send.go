package workflow

import (
	"context"
	"errors"
	"path"

	"go.uber.org/zap"

	"github.com/sftpflow/sftpflow/internal/metrics"
	"github.com/sftpflow/sftpflow/internal/models"
)

// ErrBadEvent is returned when the storage event payload does not name a
// bucket and object key.
var ErrBadEvent = errors.New("event has no bucket or object key")

// sendStarter is the connector surface the send workflow uses.
type sendStarter interface {
	StartSend(ctx context.Context, connectorID string, localPaths []string, remoteDir string) (string, error)
}

// SendResult is the JSON body answered by a send trigger.
type SendResult struct {
	Message    string `json:"message"`
	TransferID string `json:"transferId,omitempty"`
}

// Sender pushes an object that just landed in the bucket out to the remote
// server.
type Sender struct {
	conn        sendStarter
	connectorID string
	remoteDir   string
	metrics     *metrics.Metrics
}

func NewSender(conn sendStarter, connectorID, remoteDir string, m *metrics.Metrics) *Sender {
	return &Sender{
		conn:        conn,
		connectorID: connectorID,
		remoteDir:   remoteDir,
		metrics:     m,
	}
}

// Run starts a send transfer for the object named by the event. The send path
// is /bucket/key, the layout connector send operations expect.
func (s *Sender) Run(ctx context.Context, event models.ObjectCreatedEvent) (*SendResult, error) {
	bucket := event.Detail.Bucket.Name
	key := event.Detail.Object.Key
	if bucket == "" || key == "" {
		return nil, ErrBadEvent
	}

	sendPath := "/" + path.Join(bucket, key)
	transferID, err := s.conn.StartSend(ctx, s.connectorID, []string{sendPath}, s.remoteDir)
	if err != nil {
		return nil, err
	}
	s.metrics.TransfersStarted.WithLabelValues("send").Inc()
	zap.S().Infow("send transfer started", "transfer_id", transferID, "path", sendPath)

	return &SendResult{Message: "Transfer initiated", TransferID: transferID}, nil
}
