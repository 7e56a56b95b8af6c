// daily Lambda runs the full query batch for every registered target.
// It is invoked once per day by an EventBridge schedule.
package main

import (
	"context"
	"sync"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	intlambda "github.com/rankbeam/citewatch/internal/lambda"
	"github.com/rankbeam/citewatch/pkg/types"
)

var (
	deps     *intlambda.Deps
	depsOnce sync.Once
	depsErr  error
)

func getDeps() (*intlambda.Deps, error) {
	depsOnce.Do(func() {
		deps, depsErr = intlambda.Init(context.Background())
	})
	return deps, depsErr
}

func handleDaily(ctx context.Context) (*types.BatchSummary, error) {
	d, err := getDeps()
	if err != nil {
		return nil, err
	}

	summary, err := d.Driver.RunBatch(ctx)
	if err != nil {
		return nil, err
	}

	d.Logger.Info("daily batch complete",
		"batchId", summary.BatchID,
		"targets", summary.Targets,
		"succeeded", summary.Succeeded,
		"failed", len(summary.Failed))
	return summary, nil
}

func main() {
	awslambda.Start(handleDaily)
}
