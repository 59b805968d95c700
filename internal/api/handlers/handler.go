package handlers

import (
	"context"
	"errors"

	"github.com/sftpflow/sftpflow/internal/models"
	"github.com/sftpflow/sftpflow/internal/workflow"
)

var errMethodNotAllowed = errors.New("method not allowed")

// One runner interface per workflow so tests can substitute fakes.
type RetrieveRunner interface {
	Run(ctx context.Context) (*workflow.RetrieveResult, error)
}

type DirectoryRunner interface {
	Run(ctx context.Context) (*workflow.DirectoryResult, error)
}

type SendRunner interface {
	Run(ctx context.Context, event models.ObjectCreatedEvent) (*workflow.SendResult, error)
}

type ReconcileRunner interface {
	Run(ctx context.Context) (*workflow.ReconcileResult, error)
}

// Handler answers the trigger endpoints.
type Handler struct {
	retriever  RetrieveRunner
	directory  DirectoryRunner
	sender     SendRunner
	reconciler ReconcileRunner
}

func New(retriever RetrieveRunner, directory DirectoryRunner, sender SendRunner, reconciler ReconcileRunner) *Handler {
	return &Handler{
		retriever:  retriever,
		directory:  directory,
		sender:     sender,
		reconciler: reconciler,
	}
}
